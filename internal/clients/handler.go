package clients

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"realestate-backend/internal/cache"
	"realestate-backend/internal/httpx"
	"realestate-backend/internal/middleware"
	"realestate-backend/internal/transport"
	"realestate-backend/internal/validation"
)

const listCacheKey = "clients:list"

type Handler struct {
	service   *Service
	cache     cache.Cache
	cacheTTL  time.Duration
	maxUpload int64
	location  *time.Location
	log       *slog.Logger
}

func NewHandler(service *Service, c cache.Cache, cacheTTL time.Duration, maxUpload int64, location *time.Location, log *slog.Logger) *Handler {
	if c == nil {
		c = cache.NewNoop()
	}
	return &Handler{
		service:   service,
		cache:     c,
		cacheTTL:  cacheTTL,
		maxUpload: maxUpload,
		location:  location,
		log:       log,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/search", h.Search)
	r.Get("/{id}", h.Get)
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

type view struct {
	Client
	LegacyID      string `json:"_id"`
	FormattedDate string `json:"formattedDate"`
}

func (h *Handler) view(p Client) view {
	return view{
		Client:        p,
		LegacyID:      p.ID,
		FormattedDate: transport.FormatDate(p.CreatedAt, h.location),
	}
}

func (h *Handler) views(items []Client) []view {
	out := make([]view, 0, len(items))
	for _, p := range items {
		out = append(out, h.view(p))
	}
	return out
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if body, ok, err := h.cache.Get(ctx, listCacheKey); err != nil {
		log.Warn("clients list: cache read failed", slog.String("error", err.Error()))
	} else if ok {
		log.Info("clients list: cache hit")
		transport.WriteRaw(w, http.StatusOK, body)
		return
	}

	items, err := h.service.List(ctx)
	if err != nil {
		log.Error("clients list: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "Failed to fetch clients", nil)
		return
	}

	body, err := json.Marshal(transport.ListEnvelope{Success: true, Count: len(items), Data: h.views(items)})
	if err != nil {
		log.Error("clients list: encode failed", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "Failed to fetch clients", nil)
		return
	}
	if err := h.cache.Set(ctx, listCacheKey, body, h.cacheTTL); err != nil {
		log.Warn("clients list: cache write failed", slog.String("error", err.Error()))
	}

	log.Info("clients list: ok", slog.Int("count", len(items)))
	transport.WriteRaw(w, http.StatusOK, body)
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	items, err := h.service.Search(ctx, r.URL.Query().Get("query"))
	if err != nil {
		h.fail(w, log, "clients search", "Failed to search clients", err)
		return
	}

	log.Info("clients search: ok", slog.Int("count", len(items)))
	transport.WriteList(w, h.views(items), len(items))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id := strings.TrimSpace(chi.URLParam(r, "id"))

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	item, err := h.service.GetByID(ctx, id)
	if err != nil {
		h.fail(w, log, "clients get", "Failed to fetch client", err)
		return
	}

	log.Info("clients get: ok", slog.String("client_id", id))
	transport.WriteData(w, http.StatusOK, "", h.view(item))
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	image, cleanup, err := httpx.ImageUpload(w, r, "image", h.maxUpload)
	if err != nil {
		h.fail(w, log, "clients create", "Failed to create client", err)
		return
	}
	defer cleanup()

	req := CreateRequest{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		Designation: r.FormValue("designation"),
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	item, err := h.service.Create(ctx, req, image)
	if err != nil {
		h.fail(w, log, "clients create", "Failed to create client", err)
		return
	}
	h.invalidate(ctx, log)

	log.Info("clients create: ok", slog.String("client_id", item.ID))
	transport.WriteData(w, http.StatusCreated, "Client created successfully", h.view(item))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id := strings.TrimSpace(chi.URLParam(r, "id"))

	image, cleanup, err := httpx.ImageUpload(w, r, "image", h.maxUpload)
	if err != nil {
		h.fail(w, log, "clients update", "Failed to update client", err)
		return
	}
	defer cleanup()

	req := UpdateRequest{
		Name:        httpx.OptionalFormValue(r, "name"),
		Description: httpx.OptionalFormValue(r, "description"),
		Designation: httpx.OptionalFormValue(r, "designation"),
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	item, err := h.service.Update(ctx, id, req, image)
	if err != nil {
		h.fail(w, log, "clients update", "Failed to update client", err)
		return
	}
	h.invalidate(ctx, log)

	log.Info("clients update: ok", slog.String("client_id", id))
	transport.WriteData(w, http.StatusOK, "Client updated successfully", h.view(item))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id := strings.TrimSpace(chi.URLParam(r, "id"))

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	if err := h.service.Delete(ctx, id); err != nil {
		h.fail(w, log, "clients delete", "Failed to delete client", err)
		return
	}
	h.invalidate(ctx, log)

	log.Info("clients delete: ok", slog.String("client_id", id))
	transport.WriteMessage(w, http.StatusOK, "Client deleted successfully")
}

func (h *Handler) invalidate(ctx context.Context, log *slog.Logger) {
	if err := h.cache.Delete(ctx, listCacheKey); err != nil {
		log.Warn("clients cache: invalidate failed", slog.String("error", err.Error()))
	}
}

func (h *Handler) fail(w http.ResponseWriter, log *slog.Logger, op, fallback string, err error) {
	if status, message, ok := httpx.UploadStatus(err); ok {
		log.Warn(op+": rejected upload", slog.String("error", err.Error()))
		transport.WriteError(w, status, message, nil)
		return
	}

	var verrs validation.Errors
	switch {
	case errors.As(err, &verrs):
		log.Warn(op+": validation error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusBadRequest, "Validation Error", verrs)
	case errors.Is(err, ErrImageRequired):
		log.Warn(op + ": missing image")
		transport.WriteError(w, http.StatusBadRequest, "Client image is required", nil)
	case errors.Is(err, ErrQueryRequired):
		log.Warn(op + ": missing query")
		transport.WriteError(w, http.StatusBadRequest, "Search query is required", nil)
	case errors.Is(err, ErrNotFound):
		log.Warn(op + ": not found")
		transport.WriteError(w, http.StatusNotFound, "Client not found", nil)
	default:
		log.Error(op+": failed", slog.String("error", err.Error()))
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
