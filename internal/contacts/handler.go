package contacts

import (
	"context"
	"errors"
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
	r.Get("/{id}", h.Get)
	r.Post("/", h.Create)
	r.Delete("/{id}", h.Delete)
}

type contactView struct {
	Contact
	LegacyID      string `json:"_id"`
	FormattedDate string `json:"formattedDate"`
	FormattedTime string `json:"formattedTime"`
}

func (h *Handler) view(c Contact) contactView {
	return contactView{
		Contact:       c,
		LegacyID:      c.ID,
		FormattedDate: transport.FormatDate(c.CreatedAt, h.location),
		FormattedTime: transport.FormatTime(c.CreatedAt, h.location),
	}
}

func (h *Handler) views(items []Contact) []contactView {
	out := make([]contactView, 0, len(items))
	for _, c := range items {
		out = append(out, h.view(c))
	}
	return out
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	items, err := h.service.List(ctx)
	if err != nil {
		log.Error("contacts list: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "Failed to fetch contact submissions", nil)
		return
	}

	log.Info("contacts list: ok", slog.Int("count", len(items)))
	transport.WriteList(w, h.views(items), len(items))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id := strings.TrimSpace(chi.URLParam(r, "id"))

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	c, err := h.service.GetByID(ctx, id)
	if err != nil {
		h.fail(w, log, "contacts get", "Failed to fetch contact submission", err)
		return
	}

	log.Info("contacts get: ok", slog.String("contact_id", id))
	transport.WriteData(w, http.StatusOK, "", h.view(c))
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	var req CreateRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("contacts create: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	c, err := h.service.Create(ctx, req)
	if err != nil {
		h.fail(w, log, "contacts create", "Failed to submit contact form", err)
		return
	}

	go func(created Contact) {
		notifyCtx, notifyCancel := context.WithTimeout(context.Background(), 8*time.Second)
		defer notifyCancel()
		if err := h.service.NotifyNewContact(notifyCtx, created); err != nil {
			h.log.Warn("contacts create: notification failed",
				slog.String("contact_id", created.ID),
				slog.String("error", err.Error()),
			)
		}
	}(c)

	log.Info("contacts create: ok", slog.String("contact_id", c.ID), slog.String("city", c.City))
	transport.WriteData(w, http.StatusCreated, "Contact form submitted successfully", h.view(c))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id := strings.TrimSpace(chi.URLParam(r, "id"))

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.service.Delete(ctx, id); err != nil {
		h.fail(w, log, "contacts delete", "Failed to delete contact submission", err)
		return
	}

	log.Info("contacts delete: ok", slog.String("contact_id", id))
	transport.WriteMessage(w, http.StatusOK, "Contact submission deleted successfully")
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	items, err := h.service.Search(ctx, r.URL.Query().Get("query"))
	if err != nil {
		h.fail(w, log, "contacts search", "Failed to search contact submissions", err)
		return
	}

	log.Info("contacts search: ok", slog.Int("count", len(items)))
	transport.WriteList(w, h.views(items), len(items))
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	stats, err := h.service.Stats(ctx)
	if err != nil {
		log.Error("contacts stats: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "Failed to fetch contact statistics", nil)
		return
	}

	log.Info("contacts stats: ok", slog.Int64("total", stats.TotalContacts))
	transport.WriteData(w, http.StatusOK, "", stats)
}

func (h *Handler) fail(w http.ResponseWriter, log *slog.Logger, op, fallback string, err error) {
	var verrs validation.Errors
	switch {
	case errors.As(err, &verrs):
		log.Warn(op+": validation error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusBadRequest, "Validation Error", verrs)
	case errors.Is(err, ErrDuplicateEmail):
		log.Warn(op + ": duplicate email")
		transport.WriteError(w, http.StatusBadRequest, "This email has already been submitted", nil)
	case errors.Is(err, ErrQueryRequired):
		log.Warn(op + ": missing query")
		transport.WriteError(w, http.StatusBadRequest, "Search query is required", nil)
	case errors.Is(err, ErrNotFound):
		log.Warn(op + ": not found")
		transport.WriteError(w, http.StatusNotFound, "Contact submission not found", nil)
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
