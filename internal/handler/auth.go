package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	appI18n "github.com/pavelanni/radiance/internal/i18n"
	"github.com/pavelanni/radiance/internal/model"
)

const sessionCookieName = "session"

// requireAuth is middleware that resolves the session cookie to a profile.
func (h *Handler) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookieName)
		if err != nil || cookie.Value == "" {
			writeMessage(w, r, http.StatusUnauthorized, "ErrNotAuthenticated")
			return
		}

		authSess, err := h.store.GetAuthSession(r.Context(), cookie.Value)
		if err != nil {
			slog.Error("failed to get auth session", "error", err)
			writeMessage(w, r, http.StatusUnauthorized, "ErrNotAuthenticated")
			return
		}
		if authSess == nil {
			writeMessage(w, r, http.StatusUnauthorized, "ErrNotAuthenticated")
			return
		}

		profile, err := h.store.SessionProfile(r.Context(), cookie.Value)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		if profile == nil {
			// The KV backend may have been flushed; rebuild from the account.
			profile, err = h.rebuildProfile(r.Context(), cookie.Value, authSess.UserID)
			if err != nil {
				h.writeError(w, r, err)
				return
			}
			if profile == nil {
				writeMessage(w, r, http.StatusUnauthorized, "ErrNotAuthenticated")
				return
			}
		}

		ctx := model.ContextWithProfile(r.Context(), profile)
		ctx = model.ContextWithSessionToken(ctx, cookie.Value)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireRole returns middleware that checks the user has one of the allowed roles.
func requireRole(allowed ...model.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := model.ProfileFromContext(r.Context())
			if p == nil {
				writeMessage(w, r, http.StatusUnauthorized, "ErrNotAuthenticated")
				return
			}
			for _, role := range allowed {
				if p.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeMessage(w, r, http.StatusForbidden, "ErrForbidden")
		})
	}
}

func (h *Handler) rebuildProfile(ctx context.Context, token string, userID int64) (*model.UserProfile, error) {
	user, err := h.store.GetUserByID(ctx, userID)
	if err != nil || user == nil {
		return nil, err
	}
	p := user.Profile()
	if err := h.store.SaveSessionProfile(ctx, token, p); err != nil {
		return nil, err
	}
	return &p, nil
}

// refreshProfiles rewrites the cached profile of every live session of the
// user after the account row changed.
func (h *Handler) refreshProfiles(ctx context.Context, userID int64) (*model.UserProfile, error) {
	user, err := h.store.GetUserByID(ctx, userID)
	if err != nil || user == nil {
		return nil, err
	}
	tokens, err := h.store.AuthSessionTokens(ctx, userID)
	if err != nil {
		return nil, err
	}
	p := user.Profile()
	for _, token := range tokens {
		if err := h.store.SaveSessionProfile(ctx, token, p); err != nil {
			return nil, err
		}
	}
	return &p, nil
}

type signupRequest struct {
	Name            string         `json:"name" validate:"required,min=2,max=100"`
	Email           string         `json:"email" validate:"required,email"`
	Password        string         `json:"password" validate:"required,min=6,max=72"`
	ConfirmPassword string         `json:"confirm_password" validate:"required,eqfield=Password"`
	Role            model.UserRole `json:"role" validate:"required,oneof=student teacher"`
	Track           model.Track    `json:"track" validate:"required_if=Role teacher,omitempty,oneof=JEE NEET"`
}

func (h *Handler) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeMessage(w, r, http.StatusBadRequest, "ErrInvalidInput")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if err := h.validate.Struct(req); err != nil {
		h.writeError(w, r, err)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	user := model.User{
		Name:           req.Name,
		Email:          req.Email,
		PasswordHash:   string(hash),
		Role:           req.Role,
		Track:          req.Track,
		IsFirstAttempt: true,
	}
	id, err := h.store.CreateUser(r.Context(), user)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	user.ID = id

	profile, err := h.startSession(w, r, &user)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, profile)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeMessage(w, r, http.StatusBadRequest, "ErrInvalidInput")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.writeError(w, r, err)
		return
	}

	user, err := h.store.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if user == nil {
		writeMessage(w, r, http.StatusUnauthorized, "ErrInvalidCredentials")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		writeMessage(w, r, http.StatusUnauthorized, "ErrInvalidCredentials")
		return
	}

	profile, err := h.startSession(w, r, user)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// startSession creates an auth session, caches the profile under it and
// sets the session cookie.
func (h *Handler) startSession(w http.ResponseWriter, r *http.Request, user *model.User) (model.UserProfile, error) {
	token, err := h.store.CreateAuthSession(r.Context(), user.ID)
	if err != nil {
		return model.UserProfile{}, err
	}
	profile := user.Profile()
	if err := h.store.SaveSessionProfile(r.Context(), token, profile); err != nil {
		return model.UserProfile{}, err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   h.config.SecureCookies,
	})
	slog.Info("user logged in", "user_id", user.ID, "role", user.Role)
	return profile, nil
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	token := model.SessionTokenFromContext(r.Context())
	if err := h.store.DeleteAuthSession(r.Context(), token); err != nil {
		slog.Warn("failed to delete auth session", "error", err)
	}
	if err := h.store.RemoveSessionProfile(r.Context(), token); err != nil {
		slog.Warn("failed to remove session profile", "error", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.SecureCookies,
	})
	writeJSON(w, http.StatusOK, messageResponse{Message: appI18n.T(r.Context(), "LoggedOut")})
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, model.ProfileFromContext(r.Context()))
}

type trackRequest struct {
	Track model.Track `json:"track" validate:"required,oneof=JEE NEET"`
}

func (h *Handler) handleSelectTrack(w http.ResponseWriter, r *http.Request) {
	var req trackRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeMessage(w, r, http.StatusBadRequest, "ErrInvalidInput")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.writeError(w, r, err)
		return
	}

	p := model.ProfileFromContext(r.Context())
	if err := h.store.SetUserTrack(r.Context(), p.ID, req.Track); err != nil {
		h.writeError(w, r, err)
		return
	}
	if p.Track != req.Track {
		// A running quiz belongs to the old track.
		h.runner.Drop(p.ID)
	}
	updated, err := h.refreshProfiles(r.Context(), p.ID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}
