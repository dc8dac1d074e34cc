// Package match defines the request and response schema of the match
// endpoint, validates requests at the boundary and runs validated queries
// through the ranker.
package match

import (
	"github.com/onnwee/ideamatch/internal/ranking"
)

// User is one candidate in a match request.
// Pointer fields distinguish a missing or null value from an empty string.
type User struct {
	UserID *string `json:"userId" cbor:"userId"`
	Text   *string `json:"text" cbor:"text"`
}

// Request is the body of POST /match.
type Request struct {
	IdeaText *string `json:"ideaText" cbor:"ideaText"`
	Users    *[]User `json:"users" cbor:"users"`
}

// Match is one element of the match response.
type Match struct {
	UserID string  `json:"userId" cbor:"userId"`
	Score  float64 `json:"score" cbor:"score"`
}

// Query is a validated request ready for ranking.
type Query struct {
	Text       string
	Candidates []ranking.Candidate
}

// Limits bounds the size of an accepted request.
type Limits struct {
	// MaxCandidates caps the number of users (0 = unbounded).
	MaxCandidates int
	// MaxTextLength caps ideaText and each user text, in characters (0 = unbounded).
	MaxTextLength int
	// MaxIDLength caps each userId, in characters.
	MaxIDLength int
}

// DefaultLimits returns the limits applied when none are configured.
func DefaultLimits() Limits {
	return Limits{
		MaxCandidates: 1000,
		MaxTextLength: 20000,
		MaxIDLength:   256,
	}
}

// FromResults converts ranked results to the response shape, keeping order.
// The result is never nil so an empty ranking encodes as [].
func FromResults(results []ranking.Result) []Match {
	matches := make([]Match, len(results))
	for i, r := range results {
		matches[i] = Match{UserID: r.ID, Score: r.Score}
	}
	return matches
}
