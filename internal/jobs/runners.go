package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/evokelektrique/trendyol-scrapper/internal/delivery"
	"github.com/evokelektrique/trendyol-scrapper/internal/pagequery"
	"github.com/evokelektrique/trendyol-scrapper/internal/scrape"
)

// Sessions hands out exclusively-owned browser pages. Each job opens one page
// and must close it on every exit path.
type Sessions interface {
	OpenPage(ctx context.Context) (pagequery.Page, error)
}

// Runner executes one job kind and shapes its terminal payloads.
type Runner interface {
	// Run executes the job to completion. A returned error makes the attempt
	// eligible for retry under the pool's backoff policy.
	Run(ctx context.Context, job *Job) (*delivery.Result, error)
	// Failure builds the terminal failure payload delivered once the attempt
	// budget is exhausted: empty result data plus the original request echo.
	Failure(job *Job) *delivery.Result
	// StorePath is the collector path terminal payloads are posted to.
	StorePath() string
}

// ArchiveRunner discovers product links from category listing pages.
type ArchiveRunner struct {
	sessions  Sessions
	extractor *scrape.ArchiveExtractor
	linkLimit int
	logger    *slog.Logger
}

func NewArchiveRunner(sessions Sessions, extractor *scrape.ArchiveExtractor, linkLimit int, logger *slog.Logger) *ArchiveRunner {
	return &ArchiveRunner{
		sessions:  sessions,
		extractor: extractor,
		linkLimit: linkLimit,
		logger:    logger.With("component", "archive_runner"),
	}
}

func (r *ArchiveRunner) Run(ctx context.Context, job *Job) (*delivery.Result, error) {
	var payload ArchivePayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return nil, fmt.Errorf("invalid archive payload: %w", err)
	}

	pg, err := r.sessions.OpenPage(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open browser session: %w", err)
	}
	defer pg.Close()

	var links []string
	for _, url := range payload.URLs {
		r.logger.Debug("extracting archive url", "url", url)

		extracted, err := r.extractor.ExtractLinks(ctx, pg, url, r.linkLimit)
		if err != nil {
			return nil, fmt.Errorf("archive extraction for %s failed: %w", url, err)
		}
		links = append(links, extracted...)
	}

	resolved := scrape.ResolveLinks(links)
	r.logger.Info("archive extracted", "links", len(resolved))

	return &delivery.Result{
		Status: delivery.StatusSuccess,
		Data: delivery.ArchiveData{
			Type:  delivery.TypeArchive,
			UUID:  payload.UUID,
			URL:   firstURL(payload.URLs),
			Links: resolved,
		},
	}, nil
}

func (r *ArchiveRunner) Failure(job *Job) *delivery.Result {
	var payload ArchivePayload
	json.Unmarshal(job.Payload, &payload)

	return &delivery.Result{
		Status: delivery.StatusFailed,
		Data: delivery.ArchiveData{
			Type:  delivery.TypeArchive,
			UUID:  payload.UUID,
			URL:   firstURL(payload.URLs),
			Links: []string{},
		},
	}
}

func (r *ArchiveRunner) StorePath() string {
	return delivery.PathArchiveStore
}

// ProductRunner extracts one full product record.
type ProductRunner struct {
	sessions  Sessions
	extractor *scrape.Extractor
	logger    *slog.Logger
}

func NewProductRunner(sessions Sessions, extractor *scrape.Extractor, logger *slog.Logger) *ProductRunner {
	return &ProductRunner{
		sessions:  sessions,
		extractor: extractor,
		logger:    logger.With("component", "product_runner"),
	}
}

func (r *ProductRunner) Run(ctx context.Context, job *Job) (*delivery.Result, error) {
	var payload ProductPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return nil, fmt.Errorf("invalid product payload: %w", err)
	}

	pg, err := r.sessions.OpenPage(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open browser session: %w", err)
	}
	defer pg.Close()

	product, err := r.extractor.Extract(ctx, pg, payload.URL)
	if err != nil {
		return nil, err
	}

	return &delivery.Result{
		Status: delivery.StatusSuccess,
		Data: delivery.ProductData{
			Type:    delivery.TypeLink,
			UUID:    payload.UUID,
			URL:     payload.URL,
			Product: product,
		},
	}, nil
}

func (r *ProductRunner) Failure(job *Job) *delivery.Result {
	var payload ProductPayload
	json.Unmarshal(job.Payload, &payload)

	return &delivery.Result{
		Status: delivery.StatusFailed,
		Data: delivery.ProductData{
			Type:    delivery.TypeLink,
			UUID:    payload.UUID,
			URL:     payload.URL,
			Product: []any{},
		},
	}
}

func (r *ProductRunner) StorePath() string {
	return delivery.PathLinkStore
}

// FastSyncRunner re-checks a known subset of variant combinations.
type FastSyncRunner struct {
	sessions  Sessions
	extractor *scrape.Extractor
	logger    *slog.Logger
}

func NewFastSyncRunner(sessions Sessions, extractor *scrape.Extractor, logger *slog.Logger) *FastSyncRunner {
	return &FastSyncRunner{
		sessions:  sessions,
		extractor: extractor,
		logger:    logger.With("component", "fast_sync_runner"),
	}
}

func (r *FastSyncRunner) Run(ctx context.Context, job *Job) (*delivery.Result, error) {
	var payload FastSyncPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return nil, fmt.Errorf("invalid fast-sync payload: %w", err)
	}

	pg, err := r.sessions.OpenPage(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open browser session: %w", err)
	}
	defer pg.Close()

	product, err := r.extractor.ExtractFast(ctx, pg, payload.URL, payload.TargetLinkTitles)
	if err != nil {
		return nil, err
	}

	return &delivery.Result{
		Status: delivery.StatusSuccess,
		Data: delivery.FastSyncData{
			Type:                   delivery.TypeLink,
			UUID:                   payload.UUID,
			URL:                    payload.URL,
			VariationCombinationID: payload.VariationCombinationID,
			TargetLinkTitles:       payload.TargetLinkTitles,
			Product:                product,
		},
	}, nil
}

func (r *FastSyncRunner) Failure(job *Job) *delivery.Result {
	var payload FastSyncPayload
	json.Unmarshal(job.Payload, &payload)

	return &delivery.Result{
		Status: delivery.StatusFailed,
		Data: delivery.FastSyncData{
			Type:                   delivery.TypeLink,
			UUID:                   payload.UUID,
			URL:                    payload.URL,
			VariationCombinationID: payload.VariationCombinationID,
			TargetLinkTitles:       payload.TargetLinkTitles,
			Product:                []any{},
		},
	}
}

func (r *FastSyncRunner) StorePath() string {
	return delivery.PathFastLinkStore
}

func firstURL(urls []string) string {
	if len(urls) == 0 {
		return ""
	}
	return urls[0]
}
