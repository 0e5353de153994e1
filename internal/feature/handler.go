package feature

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/webiot/signage-admin-core/internal/auth"
)

// Handler exposes the feature channel endpoints.
type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func actorFrom(r *http.Request) (Actor, bool) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		return Actor{}, false
	}
	return Actor{UserID: claims.UserID, DisplayName: claims.DisplayName()}, true
}

type editTextRequest struct {
	Text  string `json:"text"`
	Mode  string `json:"mode"`
	Speed *int   `json:"speed,omitempty"`
}

func (h *Handler) EditText(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		writeFail(w, http.StatusUnauthorized, "Missing credentials")
		return
	}
	var req editTextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFail(w, http.StatusBadRequest, "Payload tidak valid")
		return
	}
	st, err := h.svc.EditText(r.Context(), actor, req.Text, req.Mode, req.Speed)
	if err != nil {
		h.respondEditError(w, "edit text", err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"text": st.Value, "mode": st.Mode})
}

func (h *Handler) GetRunningText(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.GetRunningText(r.Context())
	if err != nil {
		h.respondGetError(w, "running text", err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{
		"text": st.Value, "mode": st.Mode, "updated_at": st.CreatedAt,
	})
}

func (h *Handler) GetTextSpeed(w http.ResponseWriter, r *http.Request) {
	speed, err := h.svc.GetTextSpeed(r.Context())
	if err != nil {
		h.logger.Warnw("get text speed failed", "err", err)
		writeFail(w, http.StatusInternalServerError, "Gagal mengambil kecepatan teks")
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"speed": speed})
}

type templateRequest struct {
	Content string `json:"content"`
}

func (h *Handler) SaveTemplate(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		writeFail(w, http.StatusUnauthorized, "Missing credentials")
		return
	}
	var req templateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFail(w, http.StatusBadRequest, "Payload tidak valid")
		return
	}
	t, err := h.svc.SaveTemplate(r.Context(), actor, req.Content)
	if err != nil {
		h.respondEditError(w, "save template", err)
		return
	}
	writeSuccess(w, http.StatusCreated, t)
}

func (h *Handler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.ListTemplates(r.Context())
	if err != nil {
		h.logger.Warnw("list templates failed", "err", err)
		writeFail(w, http.StatusInternalServerError, "Gagal mengambil template")
		return
	}
	writeSuccess(w, http.StatusOK, list)
}

type editDateRequest struct {
	Date string `json:"date"`
	Mode string `json:"mode"`
}

func (h *Handler) EditDate(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		writeFail(w, http.StatusUnauthorized, "Missing credentials")
		return
	}
	var req editDateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFail(w, http.StatusBadRequest, "Payload tidak valid")
		return
	}
	st, err := h.svc.EditDate(r.Context(), actor, req.Date, req.Mode)
	if err != nil {
		h.respondEditError(w, "edit date", err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"date": st.Value, "mode": st.Mode})
}

func (h *Handler) GetDate(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.GetDate(r.Context())
	if err != nil {
		h.respondGetError(w, "date", err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"date": st.Value, "mode": st.Mode})
}

type editTimeRequest struct {
	Time string `json:"time"`
	Mode string `json:"mode"`
}

func (h *Handler) EditTime(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		writeFail(w, http.StatusUnauthorized, "Missing credentials")
		return
	}
	var req editTimeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFail(w, http.StatusBadRequest, "Payload tidak valid")
		return
	}
	st, err := h.svc.EditTime(r.Context(), actor, req.Time, req.Mode)
	if err != nil {
		h.respondEditError(w, "edit time", err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"time": st.Value, "mode": st.Mode})
}

func (h *Handler) GetTime(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.GetTime(r.Context())
	if err != nil {
		h.respondGetError(w, "time", err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"time": st.Value, "mode": st.Mode})
}

type temperatureRequest struct {
	Temperature float64 `json:"temperature"`
	Mode        string  `json:"mode"`
}

func (h *Handler) ManualTemperature(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		writeFail(w, http.StatusUnauthorized, "Missing credentials")
		return
	}
	var req temperatureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFail(w, http.StatusBadRequest, "Payload tidak valid")
		return
	}
	st, err := h.svc.ManualTemperature(r.Context(), actor, req.Temperature, req.Mode)
	if err != nil {
		h.respondEditError(w, "manual temperature", err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"temperature": st.Value, "mode": st.Mode, "source": st.Source})
}

// SensorTemperature is unauthenticated: the display's sensor posts readings
// directly.
func (h *Handler) SensorTemperature(w http.ResponseWriter, r *http.Request) {
	var req temperatureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFail(w, http.StatusBadRequest, "Payload tidak valid")
		return
	}
	st, err := h.svc.SensorTemperature(r.Context(), req.Temperature)
	if err != nil {
		h.logger.Warnw("sensor ingest failed", "err", err)
		writeFail(w, http.StatusInternalServerError, "Gagal menyimpan suhu sensor")
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"temperature": st.Value, "mode": st.Mode, "source": st.Source})
}

func (h *Handler) GetTemperature(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.GetTemperature(r.Context())
	if err != nil {
		h.respondGetError(w, "temperature", err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{
		"temperature": st.Value, "mode": st.Mode, "source": st.Source, "updated_at": st.CreatedAt,
	})
}

func (h *Handler) respondEditError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, ErrInvalidPayload) {
		writeFail(w, http.StatusBadRequest, "Data tidak lengkap atau tidak valid")
		return
	}
	h.logger.Warnw(op+" failed", "err", err)
	writeFail(w, http.StatusInternalServerError, "Operasi gagal")
}

func (h *Handler) respondGetError(w http.ResponseWriter, channel string, err error) {
	if errors.Is(err, ErrNotFound) {
		writeFail(w, http.StatusNotFound, "Belum ada data")
		return
	}
	h.logger.Warnw("get "+channel+" failed", "err", err)
	writeFail(w, http.StatusInternalServerError, "Operasi gagal")
}

func writeSuccess(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"status": "success", "data": data})
}

func writeFail(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"status": "fail", "message": message})
}
