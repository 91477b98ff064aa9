package handler

import (
	"net/http"

	appI18n "github.com/pavelanni/radiance/internal/i18n"
	"github.com/pavelanni/radiance/internal/model"
)

func (h *Handler) handleTutorHistory(w http.ResponseWriter, r *http.Request) {
	p := model.ProfileFromContext(r.Context())
	msgs, err := h.tutor.Load(r.Context(), p.ID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": msgs})
}

type sendRequest struct {
	Content string `json:"content"`
}

type sendResponse struct {
	User      model.ChatMessage `json:"user"`
	Assistant model.ChatMessage `json:"assistant"`
}

func (h *Handler) handleTutorSend(w http.ResponseWriter, r *http.Request) {
	p := model.ProfileFromContext(r.Context())
	if !p.Track.Valid() {
		writeMessage(w, r, http.StatusBadRequest, "ErrTrackRequired")
		return
	}
	var req sendRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeMessage(w, r, http.StatusBadRequest, "ErrInvalidInput")
		return
	}
	user, reply, err := h.tutor.Send(r.Context(), *p, req.Content)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sendResponse{User: user, Assistant: reply})
}

func (h *Handler) handleTutorClear(w http.ResponseWriter, r *http.Request) {
	p := model.ProfileFromContext(r.Context())
	if err := h.tutor.Clear(r.Context(), p.ID); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: appI18n.T(r.Context(), "ChatCleared")})
}
