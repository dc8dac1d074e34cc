package ranking

import (
	"log/slog"
	"sort"
)

// Candidate is one text scored against the query.
type Candidate struct {
	ID   string
	Text string
}

// Result pairs a candidate ID with its similarity score.
type Result struct {
	ID    string
	Score float64
}

// Options selects the scoring mode.
type Options struct {
	// Normalize divides every score by the maximum score.
	Normalize bool `json:"normalize" yaml:"normalize"`
	// StopWords drops common English function words before weighting.
	StopWords bool `json:"stop_words" yaml:"stop_words"`
	// MinTokenLength drops terms shorter than this many runes (minimum 1).
	MinTokenLength int `json:"min_token_length" yaml:"min_token_length"`
}

// DefaultOptions returns the production scoring mode: normalized scores with
// stop words removed and every term kept regardless of length.
func DefaultOptions() Options {
	return Options{
		Normalize:      true,
		StopWords:      true,
		MinTokenLength: 1,
	}
}

// Stats describes a single ranking computation.
type Stats struct {
	Candidates     int
	VocabularySize int
	MaxRawScore    float64
}

// Rank scores candidates against query and returns one Result per candidate,
// sorted by descending score with ties kept in input order.
func Rank(query string, candidates []Candidate, opts Options) []Result {
	results, _ := RankWithStats(query, candidates, opts)
	return results
}

// RankWithStats is Rank plus statistics about the computation.
func RankWithStats(query string, candidates []Candidate, opts Options) ([]Result, Stats) {
	stats := Stats{Candidates: len(candidates)}
	if len(candidates) == 0 {
		return []Result{}, stats
	}

	docs := make([]string, 0, len(candidates)+1)
	docs = append(docs, query)
	for _, c := range candidates {
		docs = append(docs, c.Text)
	}

	corpus := Vectorize(docs, NewTokenizer(opts.MinTokenLength, opts.StopWords))
	stats.VocabularySize = len(corpus.Vocabulary)

	scores := make([]float64, len(candidates))
	for i := range candidates {
		scores[i] = CosineSimilarity(corpus.Vectors[0], corpus.Vectors[i+1])
		if scores[i] > stats.MaxRawScore {
			stats.MaxRawScore = scores[i]
		}
	}

	if opts.Normalize {
		divisor := stats.MaxRawScore
		if divisor == 0 {
			divisor = 1
		}
		for i := range scores {
			scores[i] /= divisor
		}
	}

	results := make([]Result, len(candidates))
	for i, c := range candidates {
		results[i] = Result{ID: c.ID, Score: scores[i]}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	slog.Debug("ranked candidates",
		"candidates", stats.Candidates,
		"vocabulary", stats.VocabularySize,
		"max_raw_score", stats.MaxRawScore,
		"normalize", opts.Normalize,
		"stop_words", opts.StopWords)

	return results, stats
}

// Top returns at most n leading results. n <= 0 returns results unchanged.
func Top(results []Result, n int) []Result {
	if n <= 0 || n >= len(results) {
		return results
	}
	return results[:n]
}
