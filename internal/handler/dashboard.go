package handler

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/pavelanni/radiance/internal/dashboard"
	"github.com/pavelanni/radiance/internal/export"
	"github.com/pavelanni/radiance/internal/model"
)

func (h *Handler) handleStudentDashboard(w http.ResponseWriter, r *http.Request) {
	p := model.ProfileFromContext(r.Context())
	history, err := h.store.ReportHistory(r.Context(), p.ID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dashboard.Student(*p, history))
}

func (h *Handler) handleTeacherDashboard(w http.ResponseWriter, r *http.Request) {
	p := model.ProfileFromContext(r.Context())
	results, err := h.store.StudentResults(r.Context(), p.Track)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dashboard.Teacher(p.Track, results))
}

// handleTeacherExport serves the teacher's track as a workbook, or as JSON
// with ?format=json.
func (h *Handler) handleTeacherExport(w http.ResponseWriter, r *http.Request) {
	p := model.ProfileFromContext(r.Context())
	results, err := h.store.StudentResults(r.Context(), p.Track)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	exp := export.Build(p.Track, results, h.now())

	if r.URL.Query().Get("format") == "json" {
		writeJSON(w, http.StatusOK, exp)
		return
	}

	// Render fully before writing headers so a failure can still be a 500.
	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, exp); err != nil {
		h.writeError(w, r, err)
		return
	}
	filename := fmt.Sprintf("radiance-%s-%s.xlsx", trackSlug(p.Track), exp.GeneratedAt.Format("20060102"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	_, _ = w.Write(buf.Bytes())
}

func trackSlug(t model.Track) string {
	if t == "" {
		return "all"
	}
	return string(t)
}
