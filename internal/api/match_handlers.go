package api

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/onnwee/ideamatch/internal/match"
	"github.com/onnwee/ideamatch/internal/ranking"
	"github.com/onnwee/ideamatch/internal/validate"
)

// Query parameters accepted by POST /match.
const (
	ParamNormalize = "normalize"
	ParamStopWords = "stopwords"
	ParamLimit     = "limit"
)

// DefaultMaxBodyBytes is the request body limit when none is configured.
const DefaultMaxBodyBytes int64 = 1 << 20

// MatchHandlers serves the ranking endpoint.
type MatchHandlers struct {
	service      *match.Service
	maxBodyBytes int64
}

// NewMatchHandlers creates match handlers. A non-positive maxBodyBytes
// selects DefaultMaxBodyBytes.
func NewMatchHandlers(service *match.Service, maxBodyBytes int64) *MatchHandlers {
	if maxBodyBytes <= 0 {
		maxBodyBytes = DefaultMaxBodyBytes
	}
	return &MatchHandlers{service: service, maxBodyBytes: maxBodyBytes}
}

// Match handles POST /match.
//
// The body is {"ideaText": string, "users": [{"userId": string, "text": string}]}
// in JSON or CBOR. The response is [{"userId": string, "score": number}]
// sorted by descending score, one entry per user unless limit is given.
// Query parameters normalize and stopwords override the scoring mode.
func (h *MatchHandlers) Match(w http.ResponseWriter, r *http.Request) {
	opts, limit, errs := parseMatchParams(r.URL.Query(), h.service.Options())
	if len(errs) > 0 {
		WriteErrorDetails(w, r.Context(), http.StatusUnprocessableEntity, ErrCodeValidation,
			"Invalid query parameters", errs)
		return
	}

	body := http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	query, err := h.service.Decode(r.Context(), body, r.Header.Get("Content-Type"))
	if err != nil {
		h.writeDecodeError(w, r, err)
		return
	}

	matches := h.service.Rank(r.Context(), query, opts, limit)
	writeResponse(w, r, http.StatusOK, matches)
}

func (h *MatchHandlers) writeDecodeError(w http.ResponseWriter, r *http.Request, err error) {
	var fieldErrs validate.Errors
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxErr):
		WriteError(w, r.Context(), http.StatusRequestEntityTooLarge, ErrCodePayloadTooLarge,
			"Request body exceeds "+strconv.FormatInt(maxErr.Limit, 10)+" bytes")
	case errors.Is(err, match.ErrUnsupportedMediaType):
		WriteError(w, r.Context(), http.StatusUnsupportedMediaType, ErrCodeUnsupportedMediaType,
			"Content-Type must be application/json or application/cbor")
	case errors.As(err, &fieldErrs):
		WriteErrorDetails(w, r.Context(), http.StatusUnprocessableEntity, ErrCodeValidation,
			"Request validation failed", fieldErrs)
	default:
		slog.ErrorContext(r.Context(), "failed to decode match request", "error", err)
		WriteError(w, r.Context(), http.StatusInternalServerError, ErrCodeInternal, "Failed to read request")
	}
}

// parseMatchParams applies query parameter overrides to defaults.
func parseMatchParams(values url.Values, defaults ranking.Options) (ranking.Options, int, validate.Errors) {
	opts := defaults
	limit := 0
	var errs validate.Errors

	if v := values.Get(ParamNormalize); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs.Add("query."+ParamNormalize, "must be a boolean")
		}
		opts.Normalize = b
	}
	if v := values.Get(ParamStopWords); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs.Add("query."+ParamStopWords, "must be a boolean")
		}
		opts.StopWords = b
	}
	if v := values.Get(ParamLimit); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			errs.Add("query."+ParamLimit, "must be a non-negative integer")
		}
		limit = n
	}

	return opts, limit, errs
}
