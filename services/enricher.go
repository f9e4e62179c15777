package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"avito-parser/classifier"
	"avito-parser/models"
	"avito-parser/utils"
)

// ErrAuthentication aborts an enrichment run: the API rejected the key.
var ErrAuthentication = errors.New("enricher: authentication failed")

// errBatchAbandoned marks a batch given up without retrying.
var errBatchAbandoned = errors.New("batch abandoned")

const dayLayout = "2006-01-02"

// Classifier is the remote classification service.
type Classifier interface {
	Classify(ctx context.Context, titles []string, day string) ([]models.Classification, error)
}

// EnricherConfig tunes the retry policy.
type EnricherConfig struct {
	MaxRetries int
	// ServerErrorWait and TimeoutWait default to one second.
	ServerErrorWait time.Duration
	TimeoutWait     time.Duration
	// RateLimitBase is the first rate-limit wait, doubled on every further
	// attempt (2s, 4s, 8s by default).
	RateLimitBase time.Duration
}

// Enricher classifies ad titles in sequential batches and merges the
// results back onto the ads.
type Enricher struct {
	client Classifier
	cfg    EnricherConfig
	logger *utils.Logger

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewEnricher creates an Enricher backed by client.
func NewEnricher(client Classifier, cfg EnricherConfig, logger *utils.Logger) *Enricher {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.ServerErrorWait <= 0 {
		cfg.ServerErrorWait = time.Second
	}
	if cfg.TimeoutWait <= 0 {
		cfg.TimeoutWait = time.Second
	}
	if cfg.RateLimitBase <= 0 {
		cfg.RateLimitBase = 2 * time.Second
	}
	return &Enricher{
		client: client,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
		sleep:  utils.SleepContext,
	}
}

// Enrich sends the titles of ads in batches of at most batchSize, pausing
// interBatchDelay between batches. Ads the service returns nothing for are
// dropped. Only an authentication failure or a cancelled ctx is returned as
// an error; the records enriched so far are returned with it.
func (e *Enricher) Enrich(ctx context.Context, ads []*models.AdRecord, batchSize int, interBatchDelay time.Duration) ([]*models.EnrichedRecord, *models.EnrichmentStats, error) {
	stats := &models.EnrichmentStats{}
	if batchSize <= 0 {
		return nil, stats, fmt.Errorf("enricher: batch size must be positive, got %d", batchSize)
	}

	results := make([]*models.EnrichedRecord, 0, len(ads))
	totalBatches := (len(ads) + batchSize - 1) / batchSize

	for start := 0; start < len(ads); start += batchSize {
		end := min(start+batchSize, len(ads))
		batch := ads[start:end]

		e.logger.Info("[enricher] Processing batch %d/%d", start/batchSize+1, totalBatches)

		classified, err := e.enrichBatch(ctx, batch, stats)
		if err != nil {
			e.logStats(stats)
			return results, stats, err
		}
		results = append(results, e.merge(batch, classified)...)

		if end < len(ads) {
			if err := e.sleep(ctx, interBatchDelay); err != nil {
				e.logStats(stats)
				return results, stats, err
			}
		}
	}

	e.logStats(stats)
	return results, stats, nil
}

// enrichBatch runs the retry policy for one batch. It returns an error only
// when the whole run must stop.
func (e *Enricher) enrichBatch(ctx context.Context, batch []*models.AdRecord, stats *models.EnrichmentStats) ([]models.Classification, error) {
	titles := make([]string, len(batch))
	for i, ad := range batch {
		titles[i] = ad.Title
	}
	day := e.now().Format(dayLayout)
	stats.TotalSent += len(titles)

	retry := &utils.RetryConfig{MaxAttempts: e.cfg.MaxRetries, Logger: e.logger, Sleep: e.sleep}

	var classified []models.Classification
	retries, err := retry.Do(ctx, "classify-batch", func(attempt int) error {
		got, err := e.client.Classify(ctx, titles, day)
		if err == nil {
			classified = got
			return nil
		}
		return e.classifyFailure(ctx, attempt, len(titles), err, stats)
	})
	stats.RetryCount += retries

	switch {
	case err == nil:
		stats.TotalSuccess += len(classified)
		e.logger.Info("[enricher] Successfully enriched %d/%d items", len(classified), len(titles))
		return classified, nil
	case errors.Is(err, ErrAuthentication):
		e.logger.Error("[enricher] Authentication failed - check API key")
		return nil, err
	case ctx.Err() != nil:
		return nil, ctx.Err()
	case errors.Is(err, utils.ErrRetriesExhausted):
		stats.TotalFailed += len(titles)
		e.logger.Error("[enricher] Failed to enrich batch after %d attempts: %v", e.cfg.MaxRetries, err)
		return nil, nil
	default:
		e.logger.Error("[enricher] Batch abandoned: %v", err)
		return nil, nil
	}
}

// classifyFailure applies the retry table to one failed attempt and updates
// the counters for it.
func (e *Enricher) classifyFailure(ctx context.Context, attempt, size int, err error, stats *models.EnrichmentStats) error {
	var statusErr *classifier.StatusError

	switch {
	case ctx.Err() != nil:
		return ctx.Err()
	case errors.Is(err, classifier.ErrUnauthorized):
		return fmt.Errorf("%w: %w", ErrAuthentication, err)
	case errors.Is(err, classifier.ErrRateLimited):
		stats.RateLimitHits++
		wait := e.cfg.RateLimitBase << (attempt - 1)
		e.logger.Warn("[enricher] Rate limit hit, waiting %v before retry", wait)
		return utils.RetryAfter(wait, err)
	case errors.Is(err, classifier.ErrTimeout):
		stats.TimeoutErrors++
		e.logger.Warn("[enricher] Timeout on attempt %d/%d", attempt, e.cfg.MaxRetries)
		return utils.RetryAfter(e.cfg.TimeoutWait, err)
	case errors.As(err, &statusErr) && statusErr.Retryable():
		e.logger.Warn("[enricher] Server error %d, retrying...", statusErr.Code)
		return utils.RetryAfter(e.cfg.ServerErrorWait, err)
	default:
		stats.OtherErrors++
		e.logger.Error("[enricher] Unexpected error for batch of %d: %v", size, err)
		return fmt.Errorf("%w: %w", errBatchAbandoned, err)
	}
}

// merge pairs the i-th classification with the i-th ad of the batch.
// Trailing ads without a classification are dropped, extra classifications
// are ignored.
func (e *Enricher) merge(batch []*models.AdRecord, classified []models.Classification) []*models.EnrichedRecord {
	n := min(len(batch), len(classified))
	if len(classified) > len(batch) {
		e.logger.Warn("[enricher] Service returned %d results for %d titles, ignoring the rest",
			len(classified), len(batch))
	}

	out := make([]*models.EnrichedRecord, 0, n)
	for i := 0; i < n; i++ {
		c := classified[i]
		if echoed := string(c.Title); echoed != "" && echoed != batch[i].Title {
			e.logger.Warn("[enricher] Result %d echoes %q for submitted title %q", i, echoed, batch[i].Title)
		}
		out = append(out, batch[i].Enrich(c))
	}
	return out
}

func (e *Enricher) logStats(s *models.EnrichmentStats) {
	e.logger.Info("[enricher] === Enrichment Complete ===")
	e.logger.Info("[enricher] Total sent: %d", s.TotalSent)
	e.logger.Info("[enricher] Total success: %d", s.TotalSuccess)
	e.logger.Info("[enricher] Total failed: %d", s.TotalFailed)
	e.logger.Info("[enricher] Success rate: %.1f%%", s.SuccessRate())
	e.logger.Info("[enricher] Rate limit hits: %d", s.RateLimitHits)
	e.logger.Info("[enricher] Timeout errors: %d", s.TimeoutErrors)
	e.logger.Info("[enricher] Other errors: %d", s.OtherErrors)
	e.logger.Info("[enricher] Total retries: %d", s.RetryCount)
}
