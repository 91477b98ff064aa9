package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/pavelanni/radiance/internal/assessment"
	appI18n "github.com/pavelanni/radiance/internal/i18n"
	"github.com/pavelanni/radiance/internal/model"
)

// reportSaveTimeout bounds persistence of a finished quiz, which may run
// from the countdown goroutine with no request attached.
const reportSaveTimeout = 10 * time.Second

// saveQuizReport persists a finished attempt: latest report, history, the
// account's score and every cached session profile.
func (h *Handler) saveQuizReport(userID int64, report model.AssessmentReport) {
	ctx, cancel := context.WithTimeout(context.Background(), reportSaveTimeout)
	defer cancel()

	log := slog.With("user_id", userID, "track", report.Track, "score", report.ScorePercent)
	if err := h.store.SaveReport(ctx, userID, report); err != nil {
		log.Error("failed to save quiz report", "error", err)
		return
	}
	if err := h.store.RecordQuizScore(ctx, userID, report.ScorePercent); err != nil {
		log.Error("failed to record quiz score", "error", err)
		return
	}
	if _, err := h.refreshProfiles(ctx, userID); err != nil {
		log.Error("failed to refresh session profiles", "error", err)
		return
	}
	log.Info("quiz completed",
		"correct", report.CorrectAnswers,
		"weak_topics", len(report.WeakTopics),
		"time_spent_s", report.TimeSpentSeconds,
	)
}

// questionView is a question as shown to the student, without the key.
type questionView struct {
	Number  int      `json:"number"`
	Label   string   `json:"label"`
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
	Subject string   `json:"subject"`
	Topic   string   `json:"topic"`
}

type quizResponse struct {
	assessment.Snapshot
	Total     int                     `json:"total"`
	Summary   string                  `json:"summary"`
	Questions []questionView          `json:"questions"`
	Report    *model.AssessmentReport `json:"report,omitempty"`
}

func quizView(r *http.Request, sess *assessment.Session) quizResponse {
	bank := sess.Questions()
	views := make([]questionView, len(bank))
	for i, q := range bank {
		views[i] = questionView{
			Number:  i + 1,
			Label:   appI18n.Td(r.Context(), "QuestionN", map[string]any{"Number": i + 1, "Total": len(bank)}),
			Prompt:  q.Prompt,
			Options: q.Options,
			Subject: q.Subject,
			Topic:   q.Topic,
		}
	}
	resp := quizResponse{
		Snapshot:  sess.Snapshot(),
		Total:     len(bank),
		Summary:   appI18n.Tp(r.Context(), "QuestionsInQuiz", len(bank)),
		Questions: views,
	}
	if report, ok := sess.Report(); ok {
		resp.Report = &report
	}
	return resp
}

func (h *Handler) currentQuiz(w http.ResponseWriter, r *http.Request) (*assessment.Session, bool) {
	p := model.ProfileFromContext(r.Context())
	sess, ok := h.runner.Get(p.ID)
	if !ok {
		writeMessage(w, r, http.StatusNotFound, "ErrNoActiveQuiz")
		return nil, false
	}
	return sess, true
}

func (h *Handler) handleQuizState(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.currentQuiz(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, quizView(r, sess))
}

func (h *Handler) handleQuizStart(w http.ResponseWriter, r *http.Request) {
	p := model.ProfileFromContext(r.Context())
	sess, err := h.runner.Start(p.ID, p.Name, p.Track)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	slog.Info("quiz started", "user_id", p.ID, "track", p.Track)
	writeJSON(w, http.StatusCreated, quizView(r, sess))
}

type answerRequest struct {
	QuestionIndex *int   `json:"question_index" validate:"required,min=0"`
	Option        string `json:"option" validate:"required"`
}

func (h *Handler) handleQuizAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeMessage(w, r, http.StatusBadRequest, "ErrInvalidInput")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.writeError(w, r, err)
		return
	}
	sess, ok := h.currentQuiz(w, r)
	if !ok {
		return
	}
	answers, err := sess.RecordAnswer(*req.QuestionIndex, req.Option)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"answers": answers})
}

func (h *Handler) handleQuizNext(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.currentQuiz(w, r)
	if !ok {
		return
	}
	outcome, err := sess.Advance()
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}

// handleQuizPrev steps back one question and returns the full quiz state,
// so the client can show the answer already recorded there.
func (h *Handler) handleQuizPrev(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.currentQuiz(w, r)
	if !ok {
		return
	}
	if _, err := sess.Back(); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, quizView(r, sess))
}

func (h *Handler) handleQuizReport(w http.ResponseWriter, r *http.Request) {
	p := model.ProfileFromContext(r.Context())
	report, err := h.store.LatestReport(r.Context(), p.ID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if report == nil {
		writeMessage(w, r, http.StatusNotFound, "ErrNoReport")
		return
	}
	writeJSON(w, http.StatusOK, report)
}
