// Package ranking scores candidate texts against a query text by lexical
// similarity and returns them ordered by descending score.
//
// Basic Usage:
//
//	// Load options (typically at startup)
//	opts, err := ranking.LoadOptions("configs/ranking.options.yaml")
//	if err != nil {
//		log.Warn("using default ranking options", "error", err)
//	}
//
//	results := ranking.Rank("machine learning startup", []ranking.Candidate{
//		{ID: "u1", Text: "we build machine learning tools"},
//		{ID: "u2", Text: "we sell shoes"},
//	}, opts)
//
// Scoring:
//
// The query is document 0 of a corpus whose remaining documents are the
// candidate texts in input order. Every document becomes a TF-IDF vector over
// the corpus vocabulary (raw term counts weighted by a smoothed inverse
// document frequency, then L2-normalized) and each candidate is scored by the
// cosine of its vector with the query vector. Scores of non-negative vectors
// fall in [0, 1].
//
// Options:
//
// Normalize rescales every score by the largest one so the best candidate
// scores 1.0; when nothing matches, all scores stay 0. StopWords removes common
// English function words before weighting. Both change the resulting scores
// and are chosen per call.
//
// Ordering is a stable descending sort: candidates with equal scores keep
// their input order.
package ranking
