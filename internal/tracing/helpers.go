package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// instrumentationName is the tracer name used by the helpers.
const instrumentationName = "ideamatch"

// RankSpanName is the name of the span covering one ranking computation.
const RankSpanName = "ranking.rank"

// RankAttributes describes the inputs of a ranking computation.
type RankAttributes struct {
	Candidates int
	Normalize  bool
	StopWords  bool
	Limit      int
}

// StartRankSpan creates an internal span for a ranking computation.
// The returned function ends the span, recording the vocabulary size and the
// number of results returned.
//
// Example usage:
//
//	ctx, endSpan := tracing.StartRankSpan(ctx, tracing.RankAttributes{Candidates: len(users)})
//	results, stats := ranking.RankWithStats(query, candidates, opts)
//	endSpan(stats.VocabularySize, len(results))
func StartRankSpan(ctx context.Context, attrs RankAttributes) (context.Context, func(vocabularySize, returned int)) {
	ctx, span := otel.Tracer(instrumentationName).Start(ctx, RankSpanName,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.Int("ranking.candidates", attrs.Candidates),
			attribute.Bool("ranking.normalize", attrs.Normalize),
			attribute.Bool("ranking.stop_words", attrs.StopWords),
		),
	)
	if attrs.Limit > 0 {
		span.SetAttributes(attribute.Int("ranking.limit", attrs.Limit))
	}

	return ctx, func(vocabularySize, returned int) {
		span.SetAttributes(
			attribute.Int("ranking.vocabulary_size", vocabularySize),
			attribute.Int("ranking.returned", returned),
		)
		span.End()
	}
}

// StartSpan creates a new span for a general operation.
// Returns the new context and a function to end the span.
//
// Example usage:
//
//	ctx, endSpan := tracing.StartSpan(ctx, "match.decode")
//	defer endSpan(err)
func StartSpan(ctx context.Context, name string) (context.Context, func(error)) {
	ctx, span := otel.Tracer(instrumentationName).Start(ctx, name)

	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
}

// AddEvent adds an event to the current span.
func AddEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	span.AddEvent(name, trace.WithAttributes(attrs...))
}

// SetAttributes sets attributes on the current span.
func SetAttributes(ctx context.Context, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	span.SetAttributes(attrs...)
}
