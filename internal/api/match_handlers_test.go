package api

import (
	"net/url"
	"testing"

	"github.com/onnwee/ideamatch/internal/ranking"
)

func TestParseMatchParams(t *testing.T) {
	defaults := ranking.DefaultOptions()
	tests := []struct {
		name      string
		query     string
		want      ranking.Options
		wantLimit int
		wantErrs  int
	}{
		{"defaults", "", defaults, 0, 0},
		{"raw scores", ParamNormalize + "=false", ranking.Options{Normalize: false, StopWords: true, MinTokenLength: 1}, 0, 0},
		{"keep stop words", ParamStopWords + "=0", ranking.Options{Normalize: true, StopWords: false, MinTokenLength: 1}, 0, 0},
		{"limit", ParamLimit + "=10", defaults, 10, 0},
		{"all invalid", "normalize=yes&stopwords=nah&limit=-3", defaults, 0, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := url.ParseQuery(tt.query)
			if err != nil {
				t.Fatalf("parse query: %v", err)
			}
			opts, limit, errs := parseMatchParams(values, defaults)
			if len(errs) != tt.wantErrs {
				t.Fatalf("expected %d errors, got %v", tt.wantErrs, errs)
			}
			if tt.wantErrs > 0 {
				return
			}
			if opts != tt.want {
				t.Errorf("expected options %+v, got %+v", tt.want, opts)
			}
			if limit != tt.wantLimit {
				t.Errorf("expected limit %d, got %d", tt.wantLimit, limit)
			}
		})
	}
}

func TestNewMatchHandlers_DefaultBodyLimit(t *testing.T) {
	h := NewMatchHandlers(nil, 0)
	if h.maxBodyBytes != DefaultMaxBodyBytes {
		t.Errorf("expected default body limit %d, got %d", DefaultMaxBodyBytes, h.maxBodyBytes)
	}
}
