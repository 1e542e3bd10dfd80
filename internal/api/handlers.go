package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/evokelektrique/trendyol-scrapper/internal/jobs"
)

// Enqueuer is the slice of the job manager the handlers need.
type Enqueuer interface {
	Enqueue(ctx context.Context, kind jobs.Kind, payload any) (*jobs.Job, error)
	Stats(ctx context.Context) (*jobs.Stats, error)
}

type Handlers struct {
	manager Enqueuer
	logger  *slog.Logger
}

func NewHandlers(manager Enqueuer, logger *slog.Logger) *Handlers {
	return &Handlers{
		manager: manager,
		logger:  logger.With("component", "api"),
	}
}

// ArchiveRequest carries one or more archive page URLs to crawl for product links.
type ArchiveRequest struct {
	URLs []string `json:"urls"`
	UUID string   `json:"uuid"`
}

// ProductRequest carries a single product page URL to extract.
type ProductRequest struct {
	URL  string `json:"url"`
	UUID string `json:"uuid"`
}

// FastSyncRequest carries a product page URL plus the variant labels to refresh.
type FastSyncRequest struct {
	URL                    string   `json:"url"`
	UUID                   string   `json:"uuid"`
	TargetLinkTitles       []string `json:"target_link_titles"`
	VariationCombinationID string   `json:"variation_combination_id"`
}

// QueuedResponse acknowledges that a job was accepted for background processing.
type QueuedResponse struct {
	Status string `json:"status"`
	Data   any    `json:"data"`
}

// ExtractArchiveLinks accepts archive URLs and queues a link discovery job.
func (h *Handlers) ExtractArchiveLinks(w http.ResponseWriter, r *http.Request) {
	var req ArchiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if len(req.URLs) == 0 {
		h.respondError(w, http.StatusUnprocessableEntity, "urls is required")
		return
	}

	job, err := h.manager.Enqueue(r.Context(), jobs.KindArchive, jobs.ArchivePayload{
		URLs: req.URLs,
		UUID: req.UUID,
	})
	if err != nil {
		h.logger.Error("failed to enqueue archive job", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to queue job")
		return
	}

	h.logger.Info("archive job queued", "job_id", job.ID, "urls", len(req.URLs))
	h.respondJSON(w, http.StatusOK, QueuedResponse{
		Status: "in_queue",
		Data:   map[string]any{"links": []string{}},
	})
}

// ExtractProduct accepts a product URL and queues a full extraction job.
func (h *Handlers) ExtractProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.URL == "" {
		h.respondError(w, http.StatusUnprocessableEntity, "url is required")
		return
	}

	job, err := h.manager.Enqueue(r.Context(), jobs.KindProduct, jobs.ProductPayload{
		URL:  req.URL,
		UUID: req.UUID,
	})
	if err != nil {
		h.logger.Error("failed to enqueue product job", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to queue job")
		return
	}

	h.logger.Info("product job queued", "job_id", job.ID, "url", req.URL)
	h.respondJSON(w, http.StatusOK, QueuedResponse{
		Status: "in_queue",
		Data:   []any{},
	})
}

// FastSync accepts a product URL with target variant labels and queues a
// lightweight refresh job.
func (h *Handlers) FastSync(w http.ResponseWriter, r *http.Request) {
	var req FastSyncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.URL == "" {
		h.respondError(w, http.StatusUnprocessableEntity, "url is required")
		return
	}

	job, err := h.manager.Enqueue(r.Context(), jobs.KindFastSync, jobs.FastSyncPayload{
		URL:                    req.URL,
		UUID:                   req.UUID,
		TargetLinkTitles:       req.TargetLinkTitles,
		VariationCombinationID: req.VariationCombinationID,
	})
	if err != nil {
		h.logger.Error("failed to enqueue fast sync job", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to queue job")
		return
	}

	h.logger.Info("fast sync job queued", "job_id", job.ID, "url", req.URL, "targets", len(req.TargetLinkTitles))
	h.respondJSON(w, http.StatusOK, QueuedResponse{
		Status: "in_queue",
		Data:   []any{},
	})
}

// GetStats handles statistics retrieval.
func (h *Handlers) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.manager.Stats(r.Context())
	if err != nil {
		h.logger.Error("failed to get stats", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to get stats")
		return
	}

	h.respondJSON(w, http.StatusOK, stats)
}

func (h *Handlers) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handlers) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
