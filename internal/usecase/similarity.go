package usecase

import (
	"math"
	"strings"

	"github.com/restockly/backend/internal/domain"
)

// Composite score weights: name similarity dominates, price proximity
// narrows the product segment, a shared manufacturer is a small bonus.
// Missing data contributes nothing and is never redistributed, so a
// candidate without price and manufacturer tops out at nameWeight.
const (
	nameWeight         = 0.60
	priceWeight        = 0.30
	manufacturerWeight = 0.10
)

// Price proximity tiers, as relative difference against the reference price.
const (
	priceTightBand  = 0.20
	priceLooseBand  = 0.50
	priceTightScore = 1.0
	priceLooseScore = 0.5
	priceFarScore   = 0.2
)

// JaccardSimilarity returns |a∩b| / |a∪b|, or 0 when either set is empty.
func JaccardSimilarity(a, b TokenSet) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	intersection := 0
	for token := range a {
		if b.Contains(token) {
			intersection++
		}
	}

	union := len(a) + len(b) - intersection
	return float64(intersection) / float64(union)
}

// NameSimilarity is the stateless fallback name scorer for an isolated
// product pair, when no candidate pool exists to build a corpus model from.
// Jaccard overlap of the tokenized names; when both products carry a
// secondary-language name the better of the two languages wins.
func NameSimilarity(reference, candidate *domain.Product) float64 {
	score := JaccardSimilarity(Tokenize(reference.Name), Tokenize(candidate.Name))

	if reference.NameSecondary != "" && candidate.NameSecondary != "" {
		secondary := JaccardSimilarity(Tokenize(reference.NameSecondary), Tokenize(candidate.NameSecondary))
		if secondary > score {
			score = secondary
		}
	}

	return score
}

// contextNameSimilarity scores name overlap with BM25 against the shared
// corpus model, applying the same best-of-both-languages rule as the
// fallback scorer. Both languages were folded into the corpus at model
// build time, so one model serves both pairs.
func contextNameSimilarity(reference, candidate *domain.Product, model *CorpusModel) float64 {
	score := model.Score(Tokenize(reference.Name), Tokenize(candidate.Name))

	if reference.NameSecondary != "" && candidate.NameSecondary != "" {
		secondary := model.Score(Tokenize(reference.NameSecondary), Tokenize(candidate.NameSecondary))
		if secondary > score {
			score = secondary
		}
	}

	return score
}

// priceSimilarity maps the relative price difference (reference price as
// base) onto tiered scores: within 20% is a perfect fit, within 50% is
// acceptable, beyond that a different price segment.
func priceSimilarity(referencePrice, candidatePrice float64) float64 {
	diff := math.Abs(referencePrice-candidatePrice) / referencePrice

	switch {
	case diff <= priceTightBand:
		return priceTightScore
	case diff <= priceLooseBand:
		return priceLooseScore
	default:
		return priceFarScore
	}
}

// CompositeScore combines name, price and manufacturer similarity into one
// weighted score in [0,1]. Price contributes only when both products carry a
// positive price; the manufacturer bonus only when both names are non-empty
// and equal case-insensitively.
func CompositeScore(reference, candidate *domain.Product, model *CorpusModel) float64 {
	score := contextNameSimilarity(reference, candidate, model) * nameWeight

	if reference.Price != nil && candidate.Price != nil && *reference.Price > 0 && *candidate.Price > 0 {
		score += priceSimilarity(*reference.Price, *candidate.Price) * priceWeight
	}

	if reference.ManufacturerName != "" && candidate.ManufacturerName != "" &&
		strings.EqualFold(reference.ManufacturerName, candidate.ManufacturerName) {
		score += manufacturerWeight
	}

	return score
}
