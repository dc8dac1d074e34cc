package match

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/onnwee/ideamatch/internal/ranking"
	"github.com/onnwee/ideamatch/internal/tracing"
)

// Validation failure reasons recorded in metrics.
const (
	ReasonSchema    = "schema"
	ReasonTooLarge  = "too_large"
	ReasonMediaType = "media_type"
)

// ServiceConfig configures a Service.
type ServiceConfig struct {
	// Options is the scoring mode used when a request does not override it.
	Options ranking.Options
	// Limits bounds accepted requests.
	Limits Limits
	// Metrics is optional.
	Metrics *Metrics
}

// Service decodes match requests and ranks them.
// It holds only immutable configuration and is safe for concurrent use.
type Service struct {
	options ranking.Options
	limits  Limits
	metrics *Metrics
}

// NewService creates a Service.
func NewService(cfg ServiceConfig) *Service {
	if cfg.Options.MinTokenLength < 1 {
		cfg.Options.MinTokenLength = 1
	}
	return &Service{
		options: cfg.Options,
		limits:  cfg.Limits,
		metrics: cfg.Metrics,
	}
}

// Options returns the default scoring mode.
func (s *Service) Options() ranking.Options {
	return s.options
}

// Limits returns the request limits.
func (s *Service) Limits() Limits {
	return s.limits
}

// Decode reads and validates a request body, counting rejections.
func (s *Service) Decode(ctx context.Context, body io.Reader, contentType string) (Query, error) {
	query, err := DecodeRequest(body, contentType, s.limits)
	if err == nil {
		return query, nil
	}

	reason := ReasonSchema
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxErr):
		reason = ReasonTooLarge
	case errors.Is(err, ErrUnsupportedMediaType):
		reason = ReasonMediaType
	}
	if s.metrics != nil {
		s.metrics.IncValidationFailures(reason)
	}
	slog.DebugContext(ctx, "match request rejected", "reason", reason, "error", err)
	return Query{}, err
}

// Rank scores the query candidates with opts and returns the matches sorted
// by descending score. A positive limit keeps only the first limit matches.
func (s *Service) Rank(ctx context.Context, q Query, opts ranking.Options, limit int) []Match {
	ctx, endSpan := tracing.StartRankSpan(ctx, tracing.RankAttributes{
		Candidates: len(q.Candidates),
		Normalize:  opts.Normalize,
		StopWords:  opts.StopWords,
		Limit:      limit,
	})

	start := time.Now()
	results, stats := ranking.RankWithStats(q.Text, q.Candidates, opts)
	elapsed := time.Since(start)

	results = ranking.Top(results, limit)
	endSpan(stats.VocabularySize, len(results))

	if s.metrics != nil {
		s.metrics.ObserveRank(opts.Normalize, opts.StopWords, stats.Candidates, stats.VocabularySize, elapsed.Seconds())
	}
	slog.DebugContext(ctx, "match ranked",
		"candidates", stats.Candidates,
		"vocabulary_size", stats.VocabularySize,
		"max_raw_score", stats.MaxRawScore,
		"returned", len(results),
		"duration_ms", elapsed.Milliseconds(),
	)

	return FromResults(results)
}
