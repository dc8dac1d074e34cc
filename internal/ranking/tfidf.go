package ranking

import (
	"math"
	"sort"
)

// Term is one weighted vocabulary entry of a Vector.
type Term struct {
	Index  int
	Weight float64
}

// Vector is a sparse TF-IDF vector with terms in ascending Index order.
// Every sum over a Vector walks that order, so equal vectors always yield
// bit-identical norms and dot products.
type Vector []Term

// Norm returns the Euclidean length of v.
func (v Vector) Norm() float64 {
	var sum float64
	for _, t := range v {
		sum += t.Weight * t.Weight
	}
	return math.Sqrt(sum)
}

// Weight returns the weight of vocabulary index idx, or 0 when absent.
func (v Vector) Weight(idx int) float64 {
	i := sort.Search(len(v), func(i int) bool { return v[i].Index >= idx })
	if i < len(v) && v[i].Index == idx {
		return v[i].Weight
	}
	return 0
}

// Dot returns the inner product of a and b.
func Dot(a, b Vector) float64 {
	var dot float64
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i].Index < b[j].Index:
			i++
		case a[i].Index > b[j].Index:
			j++
		default:
			dot += a[i].Weight * b[j].Weight
			i++
			j++
		}
	}
	return dot
}

// Corpus is a set of documents weighted against a shared vocabulary.
type Corpus struct {
	Vocabulary map[string]int
	Vectors    []Vector
}

// Vectorize tokenizes docs and returns their L2-normalized TF-IDF vectors.
//
// Term weight is the raw count in the document times the smoothed inverse
// document frequency ln((1+n)/(1+df)) + 1, so terms present in every document
// still carry weight. Documents without terms get an empty vector.
func Vectorize(docs []string, tok *Tokenizer) *Corpus {
	c := &Corpus{
		Vocabulary: make(map[string]int),
		Vectors:    make([]Vector, len(docs)),
	}

	counts := make([]map[int]int, len(docs))
	var docFreq []int
	for i, doc := range docs {
		counts[i] = make(map[int]int)
		for _, term := range tok.Tokenize(doc) {
			idx, ok := c.Vocabulary[term]
			if !ok {
				idx = len(c.Vocabulary)
				c.Vocabulary[term] = idx
				docFreq = append(docFreq, 0)
			}
			if counts[i][idx] == 0 {
				docFreq[idx]++
			}
			counts[i][idx]++
		}
	}

	n := float64(len(docs))
	idf := make([]float64, len(docFreq))
	for idx, df := range docFreq {
		idf[idx] = math.Log((1+n)/(1+float64(df))) + 1
	}

	for i, tf := range counts {
		vec := make(Vector, 0, len(tf))
		for idx, count := range tf {
			vec = append(vec, Term{Index: idx, Weight: float64(count) * idf[idx]})
		}
		sort.Slice(vec, func(a, b int) bool { return vec[a].Index < vec[b].Index })
		if norm := vec.Norm(); norm > 0 {
			for k := range vec {
				vec[k].Weight /= norm
			}
		}
		c.Vectors[i] = vec
	}
	return c
}

// CosineSimilarity returns the cosine of the angle between a and b, clamped
// to [0, 1]. Returns 0 if either vector has zero norm.
func CosineSimilarity(a, b Vector) float64 {
	na, nb := a.Norm(), b.Norm()
	if na == 0 || nb == 0 {
		return 0
	}
	sim := Dot(a, b) / (na * nb)
	if sim < 0 {
		return 0
	}
	if sim > 1 {
		return 1
	}
	return sim
}
