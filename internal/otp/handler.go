package otp

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/webiot/signage-admin-core/internal/auth"
)

// Handler exposes the forgot-password / verify-otp / reset-password endpoints.
type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

type forgotRequest struct {
	Email string `json:"email"`
}

func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "Email wajib diisi"})
		return
	}
	if err := h.svc.Request(r.Context(), req.Email); err != nil {
		if errors.Is(err, ErrEmailNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "message": "Email tidak ditemukan"})
			return
		}
		h.logger.Warnw("otp request failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "message": "Gagal mengirim email OTP"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Kode OTP telah dikirim ke email Anda"})
}

type verifyRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

func (h *Handler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.OTP == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "Email dan OTP wajib diisi"})
		return
	}
	if err := h.svc.Verify(req.Email, req.OTP); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "Kode OTP salah atau sudah kedaluwarsa"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "OTP valid"})
}

type resetRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "Email dan password wajib diisi"})
		return
	}
	if err := h.svc.Reset(r.Context(), req.Email, req.Password); err != nil {
		if errors.Is(err, auth.ErrInvalidPayload) {
			writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "Password minimal 6 karakter"})
			return
		}
		h.logger.Warnw("password reset failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "message": "Gagal mereset password"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Password berhasil direset"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
