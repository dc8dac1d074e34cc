package match

import (
	"fmt"

	"github.com/onnwee/ideamatch/internal/ranking"
	"github.com/onnwee/ideamatch/internal/validate"
)

// Validate checks the request against limits and converts it to a Query.
// Every problem is reported; the returned error is a validate.Errors.
func (r *Request) Validate(limits Limits) (Query, error) {
	var errs validate.Errors

	var query Query
	if r.IdeaText == nil {
		errs.Add("ideaText", "field required")
	} else if text, err := validate.Text(*r.IdeaText, limits.MaxTextLength); errs.Check("ideaText", err) {
		query.Text = text
	}

	if r.Users == nil {
		errs.Add("users", "field required")
		return Query{}, errs.Err()
	}

	users := *r.Users
	if limits.MaxCandidates > 0 && len(users) > limits.MaxCandidates {
		errs.Addf("users", "at most %d users allowed, got %d", limits.MaxCandidates, len(users))
		return Query{}, errs.Err()
	}

	query.Candidates = make([]ranking.Candidate, 0, len(users))
	seen := make(map[string]int, len(users))
	for i, u := range users {
		prefix := fmt.Sprintf("users[%d]", i)
		var candidate ranking.Candidate
		ok := true

		if u.UserID == nil {
			errs.Add(prefix+".userId", "field required")
			ok = false
		} else if _, err := validate.Identifier(*u.UserID, limits.MaxIDLength); !errs.Check(prefix+".userId", err) {
			ok = false
		} else if first, dup := seen[*u.UserID]; dup {
			errs.Addf(prefix+".userId", "duplicate userId %q (first seen at users[%d])", *u.UserID, first)
			ok = false
		} else {
			// IDs are echoed back byte for byte; trimming only decides emptiness.
			seen[*u.UserID] = i
			candidate.ID = *u.UserID
		}

		if u.Text == nil {
			errs.Add(prefix+".text", "field required")
			ok = false
		} else if text, err := validate.Text(*u.Text, limits.MaxTextLength); !errs.Check(prefix+".text", err) {
			ok = false
		} else {
			candidate.Text = text
		}

		if ok {
			query.Candidates = append(query.Candidates, candidate)
		}
	}

	if err := errs.Err(); err != nil {
		return Query{}, err
	}
	return query, nil
}
