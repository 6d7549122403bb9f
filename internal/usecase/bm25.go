package usecase

import "math"

// BM25 parameters: k1 controls term saturation, b the strength of length
// normalization. Defaults tuned for short product names.
const (
	bm25K1 = 1.5
	bm25B  = 0.75
)

// CorpusModel holds the BM25 statistics for one ranking request: an inverse
// document frequency weight per token and the mean token-set size. The model
// is built fresh per call over the reference plus every candidate name and
// discarded when the call returns.
type CorpusModel struct {
	idf          map[string]float64
	avgDocLength float64
}

// BuildCorpusModel computes IDF weights and the average document length over
// a set of tokenized names.
//
// IDF follows the BM25 variant ln((N-df+0.5)/(df+0.5)+1), which stays
// positive and rewards tokens that appear in few documents.
func BuildCorpusModel(documents []TokenSet) *CorpusModel {
	model := &CorpusModel{
		idf:          make(map[string]float64),
		avgDocLength: 1.0,
	}
	if len(documents) == 0 {
		return model
	}

	totalDocs := float64(len(documents))
	docFreq := make(map[string]int)
	totalLength := 0

	for _, doc := range documents {
		totalLength += len(doc)
		for term := range doc {
			docFreq[term]++
		}
	}

	for term, df := range docFreq {
		model.idf[term] = math.Log((totalDocs-float64(df)+0.5)/(float64(df)+0.5) + 1.0)
	}

	if totalLength > 0 {
		model.avgDocLength = float64(totalLength) / totalDocs
	}

	return model
}

// Score computes the normalized BM25 similarity of a query token set against
// a document token set, in [0,1].
//
// Term frequency is binary: product names are short and repeated terms are
// unlikely, so a term either contributes its full saturated weight or
// nothing. The raw sum is divided by the theoretical maximum in which every
// query term with an IDF weight is present, then clamped against
// floating-point overshoot. A query term absent from the model contributes
// zero to both sums.
func (m *CorpusModel) Score(query, doc TokenSet) float64 {
	if len(query) == 0 || len(doc) == 0 {
		return 0
	}

	// With tf fixed at 1 the per-term denominator is shared by the raw and
	// maximum scores.
	docLength := float64(len(doc))
	denominator := 1.0 + bm25K1*(1.0-bm25B+bm25B*(docLength/m.avgDocLength))

	var score, maxScore float64
	for term := range query {
		idf, ok := m.idf[term]
		if !ok {
			continue
		}
		contribution := idf * (bm25K1 + 1.0) / denominator
		maxScore += contribution
		if doc.Contains(term) {
			score += contribution
		}
	}

	if maxScore <= 0 {
		return 0
	}
	score /= maxScore
	if score > 1.0 {
		return 1.0
	}
	return score
}
