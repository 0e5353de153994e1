package activity

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"
)

// Handler exposes the feature-usage history endpoints.
type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	rows, err := h.svc.List(r.Context())
	if err != nil {
		h.logger.Warnw("list feature usage failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"status": "fail", "message": "Gagal mengambil riwayat"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "data": rows})
}

func (h *Handler) DeleteOne(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"status": "fail", "message": "ID tidak valid"})
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]any{"status": "fail", "message": "Riwayat tidak ditemukan"})
			return
		}
		h.logger.Warnw("delete feature usage failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"status": "fail", "message": "Gagal menghapus riwayat"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "message": "Riwayat dihapus"})
}

func (h *Handler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteAll(r.Context()); err != nil {
		h.logger.Warnw("delete all feature usage failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"status": "fail", "message": "Gagal menghapus riwayat"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "message": "Semua riwayat dihapus"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
