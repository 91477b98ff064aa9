package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/pavelanni/radiance/internal/assessment"
	appI18n "github.com/pavelanni/radiance/internal/i18n"
	"github.com/pavelanni/radiance/internal/model"
	"github.com/pavelanni/radiance/internal/store"
	"github.com/pavelanni/radiance/internal/tutor"
)

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	store    *store.Store
	runner   *assessment.Runner
	tutor    *tutor.Conversation
	validate *validator.Validate
	config   model.AppConfig
	now      func() time.Time
}

// New creates a Handler. Quiz countdowns are bound to ctx; call Close to
// stop them.
func New(ctx context.Context, s *store.Store, cfg model.AppConfig) *Handler {
	h := &Handler{
		store:    s,
		validate: newValidator(),
		config:   cfg,
		now:      time.Now,
	}
	h.runner = assessment.NewRunner(ctx, assessment.Options{
		Duration:     cfg.QuizDuration,
		TickInterval: cfg.TickInterval,
	}, h.saveQuizReport)
	h.tutor = tutor.NewConversation(s, tutor.NewResponder(cfg.MinReplyDelay, cfg.MaxReplyDelay), cfg.MaxChatHistory)
	return h
}

// Close abandons all running quizzes.
func (h *Handler) Close() {
	h.runner.Close()
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/healthz", h.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/signup", h.handleSignup)
		r.Post("/login", h.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(h.requireAuth)
			r.Post("/logout", h.handleLogout)
			r.Get("/me", h.handleMe)

			r.Get("/tutor/messages", h.handleTutorHistory)
			r.Post("/tutor/messages", h.handleTutorSend)
			r.Delete("/tutor/messages", h.handleTutorClear)

			r.Group(func(r chi.Router) {
				r.Use(requireRole(model.UserRoleStudent))
				r.Post("/track", h.handleSelectTrack)
				r.Get("/quiz", h.handleQuizState)
				r.Post("/quiz/start", h.handleQuizStart)
				r.Post("/quiz/answer", h.handleQuizAnswer)
				r.Post("/quiz/next", h.handleQuizNext)
				r.Post("/quiz/prev", h.handleQuizPrev)
				r.Get("/quiz/report", h.handleQuizReport)
				r.Get("/dashboard/student", h.handleStudentDashboard)
			})

			r.Group(func(r chi.Router) {
				r.Use(requireRole(model.UserRoleTeacher))
				r.Get("/dashboard/teacher", h.handleTeacherDashboard)
				r.Get("/teacher/export.xlsx", h.handleTeacherExport)
			})
		})
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		slog.Error("health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// errorResponse is the body of every non-2xx JSON reply.
type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

// writeMessage replies with a localized error message.
func writeMessage(w http.ResponseWriter, r *http.Request, status int, msgID string) {
	writeJSON(w, status, errorResponse{Error: appI18n.T(r.Context(), msgID)})
}

// newValidator reports field errors under their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeJSON reads a request body into dst, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// writeError maps domain errors to HTTP status codes.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verr   *assessment.ValidationError
		trkErr *assessment.UnknownTrackError
		fields validator.ValidationErrors
	)
	switch {
	case errors.As(err, &fields):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error:  appI18n.T(r.Context(), "ErrInvalidInput"),
			Fields: fieldMessages(fields),
		})
	case errors.As(err, &verr):
		msg := verr.Message
		if verr.Field == "answer" {
			msg = appI18n.T(r.Context(), "ErrAnswerRequired")
		}
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error:  msg,
			Fields: map[string]string{verr.Field: verr.Message},
		})
	case errors.As(err, &trkErr):
		writeMessage(w, r, http.StatusBadRequest, "ErrTrackRequired")
	case errors.Is(err, assessment.ErrSessionCompleted):
		writeMessage(w, r, http.StatusConflict, "ErrQuizCompleted")
	case errors.Is(err, assessment.ErrSessionNotStarted), errors.Is(err, assessment.ErrSessionAbandoned):
		writeMessage(w, r, http.StatusConflict, "ErrNoActiveQuiz")
	case errors.Is(err, tutor.ErrEmptyMessage):
		writeMessage(w, r, http.StatusUnprocessableEntity, "ErrEmptyMessage")
	case errors.Is(err, store.ErrEmailTaken):
		writeMessage(w, r, http.StatusConflict, "ErrEmailTaken")
	case errors.Is(err, context.Canceled):
		// Client went away; nobody is listening.
		slog.Debug("request cancelled", "path", r.URL.Path)
	default:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeMessage(w, r, http.StatusInternalServerError, "ErrInternal")
	}
}

func fieldMessages(errs validator.ValidationErrors) map[string]string {
	out := make(map[string]string, len(errs))
	for _, fe := range errs {
		var msg string
		switch fe.Tag() {
		case "required", "required_if":
			msg = "is required"
		case "email":
			msg = "must be a valid email address"
		case "min":
			msg = "must be at least " + fe.Param() + " characters"
		case "max":
			msg = "must be at most " + fe.Param() + " characters"
		case "eqfield":
			msg = "must match " + strings.ToLower(fe.Param())
		case "oneof":
			msg = "must be one of: " + fe.Param()
		default:
			msg = "is invalid"
		}
		out[fe.Field()] = msg
	}
	return out
}
