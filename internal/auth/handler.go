package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/webiot/signage-admin-core/internal/upload"
)

// Handler exposes HTTP endpoints for registration, login, profile and
// login-history operations.
type Handler struct {
	svc     *Service
	storage *upload.Storage
	logger  *zap.SugaredLogger
}

func NewHandler(db *sqlx.DB, svc *Service, storage *upload.Storage, logger *zap.SugaredLogger) *Handler {
	if svc == nil {
		svc = NewService(db, nil, nil, nil, nil)
	}
	return &Handler{svc: svc, storage: storage, logger: logger}
}

// Service returns the underlying auth service for middleware wiring.
func (h *Handler) Service() *Service { return h.svc }

// RegisterRequest is the registration payload.
type RegisterRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Status    string `json:"status"`
	NIDN      string `json:"nidn"`
	NIM       string `json:"nim"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debugw("invalid register payload", "err", err)
		writeError(w, http.StatusBadRequest, "Payload tidak valid")
		return
	}
	u, err := h.svc.Register(r.Context(), RegisterInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
		Role:      req.Status,
		NIDN:      req.NIDN,
		NIM:       req.NIM,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidPayload):
			writeError(w, http.StatusBadRequest, "Data registrasi tidak lengkap")
		case errors.Is(err, ErrEmailTaken):
			writeError(w, http.StatusConflict, "Email sudah terdaftar")
		default:
			h.logger.Warnw("register failed", "err", err)
			writeError(w, http.StatusInternalServerError, "Registrasi gagal")
		}
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"status":  "success",
		"message": "Registrasi berhasil",
		"data":    map[string]any{"id": u.ID, "email": u.Email},
	})
}

// LoginRequest is the login payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debugw("invalid login payload", "err", err)
		writeError(w, http.StatusBadRequest, "Payload tidak valid")
		return
	}
	token, _, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidPayload):
			writeError(w, http.StatusBadRequest, "Email dan password wajib diisi")
		case errors.Is(err, ErrEmailNotFound):
			writeError(w, http.StatusNotFound, "Email tidak ditemukan")
		case errors.Is(err, ErrBadPassword):
			writeError(w, http.StatusUnauthorized, "Incorrect password")
		default:
			h.logger.Warnw("login failed", "err", err)
			writeError(w, http.StatusInternalServerError, "Login gagal")
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Login successful",
		"token":   token,
	})
}

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Missing credentials")
		return
	}
	u, err := h.svc.GetProfile(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, ErrEmailNotFound) {
			writeError(w, http.StatusNotFound, "User tidak ditemukan")
			return
		}
		h.logger.Warnw("get profile failed", "err", err)
		writeError(w, http.StatusInternalServerError, "Gagal mengambil profil")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": u})
}

// UpdateProfile accepts multipart form data. The optional "photo" part
// replaces the stored profile picture: the new file is saved first and the
// old one removed only afterwards, so a crash mid-operation never loses both.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Missing credentials")
		return
	}
	if err := r.ParseMultipartForm(upload.MaxPhotoBytes); err != nil {
		writeError(w, http.StatusBadRequest, "Form multipart tidak valid")
		return
	}

	upd := ProfileUpdate{
		FirstName: r.FormValue("firstName"),
		LastName:  r.FormValue("lastName"),
	}
	if v := r.FormValue("nidn"); v != "" {
		upd.NIDN = &v
	}
	if v := r.FormValue("nim"); v != "" {
		upd.NIM = &v
	}

	if file, header, err := r.FormFile("photo"); err == nil {
		defer file.Close()
		if header.Size > upload.MaxPhotoBytes {
			writeError(w, http.StatusBadRequest, "Ukuran file melebihi 10MB")
			return
		}
		name, err := h.storage.SavePhoto(file, header.Filename)
		if err != nil {
			if errors.Is(err, upload.ErrUnsupportedType) {
				writeError(w, http.StatusBadRequest, "Tipe file tidak didukung")
				return
			}
			h.logger.Errorw("save photo failed", "err", err)
			writeError(w, http.StatusInternalServerError, "Gagal menyimpan foto")
			return
		}
		upd.Picture = &name
	}

	u, oldPicture, err := h.svc.UpdateProfile(r.Context(), claims.UserID, upd)
	if err != nil {
		// the freshly written photo is now orphaned; remove it
		if upd.Picture != nil {
			_ = h.storage.Remove(*upd.Picture)
		}
		if errors.Is(err, ErrEmailNotFound) {
			writeError(w, http.StatusNotFound, "User tidak ditemukan")
			return
		}
		h.logger.Warnw("update profile failed", "err", err)
		writeError(w, http.StatusInternalServerError, "Gagal memperbarui profil")
		return
	}
	if oldPicture != "" {
		if err := h.storage.Remove(oldPicture); err != nil {
			h.logger.Warnw("remove old photo failed", "file", oldPicture, "err", err)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"user":   u,
	})
}

func (h *Handler) LoginHistory(w http.ResponseWriter, r *http.Request) {
	rows, err := h.svc.LoginHistory(r.Context())
	if err != nil {
		h.logger.Warnw("list login history failed", "err", err)
		writeError(w, http.StatusInternalServerError, "Gagal mengambil riwayat login")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "data": rows})
}

func (h *Handler) DeleteLoginHistory(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "ID tidak valid")
		return
	}
	if err := h.svc.DeleteLoginHistory(r.Context(), id); err != nil {
		if errors.Is(err, ErrHistoryNotFound) {
			writeError(w, http.StatusNotFound, "Riwayat login tidak ditemukan")
			return
		}
		h.logger.Warnw("delete login history failed", "err", err)
		writeError(w, http.StatusInternalServerError, "Gagal menghapus riwayat login")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "message": "Riwayat login dihapus"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"status": "fail", "message": message})
}
