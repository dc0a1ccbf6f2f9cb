package newsletters

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"realestate-backend/internal/httpx"
	"realestate-backend/internal/middleware"
	"realestate-backend/internal/transport"
	"realestate-backend/internal/validation"
)

type Handler struct {
	service  *Service
	location *time.Location
	log      *slog.Logger
}

func NewHandler(service *Service, location *time.Location, log *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		location: location,
		log:      log,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/search", h.Search)
	r.Get("/stats", h.Stats)
	r.Get("/export", h.Export)
	r.Get("/{id}", h.Get)
	r.Post("/", h.Subscribe)
	r.Put("/{id}", h.UpdateStatus)
	r.Delete("/{id}", h.Delete)
}

type subscriberView struct {
	Subscriber
	LegacyID      string `json:"_id"`
	FormattedDate string `json:"formattedDate"`
	FormattedTime string `json:"formattedTime"`
}

func (h *Handler) view(s Subscriber) subscriberView {
	return subscriberView{
		Subscriber:    s,
		LegacyID:      s.ID,
		FormattedDate: transport.FormatDate(s.CreatedAt, h.location),
		FormattedTime: transport.FormatTime(s.CreatedAt, h.location),
	}
}

func (h *Handler) views(items []Subscriber) []subscriberView {
	out := make([]subscriberView, 0, len(items))
	for _, s := range items {
		out = append(out, h.view(s))
	}
	return out
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	items, err := h.service.List(ctx)
	if err != nil {
		log.Error("newsletters list: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "Failed to fetch newsletter subscribers", nil)
		return
	}

	log.Info("newsletters list: ok", slog.Int("count", len(items)))
	transport.WriteList(w, h.views(items), len(items))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id := strings.TrimSpace(chi.URLParam(r, "id"))

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	sub, err := h.service.GetByID(ctx, id)
	if err != nil {
		h.fail(w, log, "newsletters get", "Failed to fetch newsletter subscriber", err)
		return
	}

	log.Info("newsletters get: ok", slog.String("subscriber_id", id))
	transport.WriteData(w, http.StatusOK, "", h.view(sub))
}

func (h *Handler) Subscribe(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	var req SubscribeRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("newsletters subscribe: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	sub, err := h.service.Subscribe(ctx, req)
	if err != nil {
		h.fail(w, log, "newsletters subscribe", "Failed to subscribe to newsletter", err)
		return
	}

	go func(created Subscriber) {
		notifyCtx, notifyCancel := context.WithTimeout(context.Background(), 8*time.Second)
		defer notifyCancel()
		if err := h.service.NotifySubscribed(notifyCtx, created); err != nil {
			h.log.Warn("newsletters subscribe: welcome email failed",
				slog.String("subscriber_id", created.ID),
				slog.String("error", err.Error()),
			)
		}
	}(sub)

	log.Info("newsletters subscribe: ok", slog.String("subscriber_id", sub.ID))
	transport.WriteData(w, http.StatusCreated, "Successfully subscribed to newsletter", h.view(sub))
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id := strings.TrimSpace(chi.URLParam(r, "id"))

	// an empty body means toggle
	var req StatusRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil && !errors.Is(err, io.EOF) {
		log.Warn("newsletters status: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	sub, err := h.service.ToggleStatus(ctx, id, req.IsActive)
	if err != nil {
		h.fail(w, log, "newsletters status", "Failed to update newsletter subscription status", err)
		return
	}

	state := "deactivated"
	if sub.IsActive {
		state = "activated"
	}
	log.Info("newsletters status: ok", slog.String("subscriber_id", id), slog.Bool("active", sub.IsActive))
	transport.WriteData(w, http.StatusOK, "Newsletter subscription "+state+" successfully", h.view(sub))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id := strings.TrimSpace(chi.URLParam(r, "id"))

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.service.Delete(ctx, id); err != nil {
		h.fail(w, log, "newsletters delete", "Failed to delete newsletter subscription", err)
		return
	}

	log.Info("newsletters delete: ok", slog.String("subscriber_id", id))
	transport.WriteMessage(w, http.StatusOK, "Newsletter subscription deleted successfully")
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	items, err := h.service.Search(ctx, r.URL.Query().Get("query"))
	if err != nil {
		h.fail(w, log, "newsletters search", "Failed to search newsletter subscribers", err)
		return
	}

	log.Info("newsletters search: ok", slog.Int("count", len(items)))
	transport.WriteList(w, h.views(items), len(items))
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	stats, err := h.service.Stats(ctx)
	if err != nil {
		log.Error("newsletters stats: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "Failed to fetch newsletter statistics", nil)
		return
	}

	log.Info("newsletters stats: ok", slog.Int64("total", stats.TotalSubscribers))
	transport.WriteData(w, http.StatusOK, "", stats)
}

func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	format := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	rows, err := h.service.Export(ctx)
	if err != nil {
		log.Error("newsletters export: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "Failed to export newsletter subscribers", nil)
		return
	}

	log.Info("newsletters export: ok", slog.Int("count", len(rows)), slog.String("format", format))
	if format == "csv" {
		w.Header().Set("Content-Type", CSVMediaType)
		w.Header().Set("Content-Disposition", "attachment; filename="+CSVFilename)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(EncodeCSV(rows))
		return
	}
	transport.WriteList(w, rows, len(rows))
}

func (h *Handler) fail(w http.ResponseWriter, log *slog.Logger, op, fallback string, err error) {
	var verrs validation.Errors
	switch {
	case errors.As(err, &verrs):
		log.Warn(op+": validation error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusBadRequest, "Validation Error", verrs)
	case errors.Is(err, ErrDuplicateEmail):
		log.Warn(op + ": already subscribed")
		transport.WriteError(w, http.StatusBadRequest, "This email is already subscribed", nil)
	case errors.Is(err, ErrQueryRequired):
		log.Warn(op + ": missing query")
		transport.WriteError(w, http.StatusBadRequest, "Search query is required", nil)
	case errors.Is(err, ErrNotFound):
		log.Warn(op + ": not found")
		transport.WriteError(w, http.StatusNotFound, "Newsletter subscriber not found", nil)
	default:
		log.Error(op+": database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, fallback, nil)
	}
}

func (h *Handler) logWithRequest(r *http.Request) *slog.Logger {
	if r == nil {
		return h.log
	}
	if id := middleware.RequestIDFromContext(r.Context()); id != "" {
		return h.log.With(slog.String("request_id", id))
	}
	return h.log
}
