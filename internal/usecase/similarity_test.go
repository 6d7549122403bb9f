package usecase

import (
	"math"
	"testing"

	"github.com/restockly/backend/internal/domain"
)

func priceOf(value float64) *float64 {
	return &value
}

func pairModel(reference, candidate *domain.Product) *CorpusModel {
	return buildRankingCorpus(reference, []domain.Product{*candidate})
}

func TestJaccardSimilarity(t *testing.T) {
	testCases := []struct {
		name string
		a    TokenSet
		b    TokenSet
		want float64
	}{
		{
			name: "identical sets",
			a:    tokenSet("chocolate", "cookie"),
			b:    tokenSet("chocolate", "cookie"),
			want: 1.0,
		},
		{
			name: "half overlap",
			a:    tokenSet("chocolate", "cookie"),
			b:    tokenSet("chocolate", "cake"),
			want: 1.0 / 3.0,
		},
		{
			name: "disjoint sets",
			a:    tokenSet("chocolate"),
			b:    tokenSet("vanilla"),
			want: 0,
		},
		{
			name: "empty first set",
			a:    tokenSet(),
			b:    tokenSet("cookie"),
			want: 0,
		},
		{
			name: "empty second set",
			a:    tokenSet("cookie"),
			b:    tokenSet(),
			want: 0,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := JaccardSimilarity(tc.a, tc.b)
			if math.Abs(got-tc.want) > 1e-12 {
				t.Errorf("JaccardSimilarity = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestNameSimilarity(t *testing.T) {
	t.Run("uses primary names", func(t *testing.T) {
		a := &domain.Product{ID: "1", Name: "Chocolate Cookies"}
		b := &domain.Product{ID: "2", Name: "Chocolate Cookies"}
		if got := NameSimilarity(a, b); got != 1.0 {
			t.Errorf("NameSimilarity = %v, want 1.0", got)
		}
	})

	t.Run("takes the better language", func(t *testing.T) {
		a := &domain.Product{ID: "1", Name: "Oat Cookies", NameSecondary: "Ciastka owsiane"}
		b := &domain.Product{ID: "2", Name: "Rye Crackers", NameSecondary: "Ciastka owsiane"}

		primaryOnly := JaccardSimilarity(Tokenize(a.Name), Tokenize(b.Name))
		got := NameSimilarity(a, b)
		if got <= primaryOnly {
			t.Errorf("NameSimilarity = %v, want > primary-only score %v", got, primaryOnly)
		}
		if got != 1.0 {
			t.Errorf("NameSimilarity = %v, want 1.0 for identical secondary names", got)
		}
	})

	t.Run("ignores secondary name present on one side only", func(t *testing.T) {
		a := &domain.Product{ID: "1", Name: "Oat Cookies", NameSecondary: "Ciastka owsiane"}
		b := &domain.Product{ID: "2", Name: "Oat Cookies"}
		if got := NameSimilarity(a, b); got != 1.0 {
			t.Errorf("NameSimilarity = %v, want 1.0 from primary names", got)
		}
	})
}

func TestPriceSimilarity(t *testing.T) {
	testCases := []struct {
		name           string
		referencePrice float64
		candidatePrice float64
		want           float64
	}{
		{name: "equal prices", referencePrice: 10, candidatePrice: 10, want: 1.0},
		{name: "within tight band", referencePrice: 10, candidatePrice: 11.5, want: 1.0},
		{name: "exactly at tight boundary", referencePrice: 10, candidatePrice: 12, want: 1.0},
		{name: "within loose band", referencePrice: 10, candidatePrice: 14, want: 0.5},
		{name: "exactly at loose boundary", referencePrice: 10, candidatePrice: 15, want: 0.5},
		{name: "far apart", referencePrice: 10, candidatePrice: 30, want: 0.2},
		{name: "cheaper candidate within tight band", referencePrice: 10, candidatePrice: 9, want: 1.0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := priceSimilarity(tc.referencePrice, tc.candidatePrice)
			if got != tc.want {
				t.Errorf("priceSimilarity(%v, %v) = %v, want %v", tc.referencePrice, tc.candidatePrice, got, tc.want)
			}
		})
	}
}

func TestCompositeScore(t *testing.T) {
	t.Run("perfect substitute scores 1", func(t *testing.T) {
		reference := &domain.Product{ID: "x", Name: "Keto Chocolate Cookies", Price: priceOf(10), ManufacturerName: "Bakehouse"}
		candidate := &domain.Product{ID: "1", Name: "Keto Chocolate Cookies", Price: priceOf(10), ManufacturerName: "Bakehouse"}
		model := pairModel(reference, candidate)

		got := CompositeScore(reference, candidate, model)
		if math.Abs(got-1.0) > 1e-12 {
			t.Errorf("CompositeScore = %v, want 1.0", got)
		}
	})

	t.Run("caps at name weight without price and manufacturer", func(t *testing.T) {
		reference := &domain.Product{ID: "x", Name: "Keto Chocolate Cookies"}
		candidate := &domain.Product{ID: "1", Name: "Keto Chocolate Cookies"}
		model := pairModel(reference, candidate)

		got := CompositeScore(reference, candidate, model)
		if math.Abs(got-nameWeight) > 1e-12 {
			t.Errorf("CompositeScore = %v, want %v", got, nameWeight)
		}
	})

	t.Run("skips price when only one side has it", func(t *testing.T) {
		reference := &domain.Product{ID: "x", Name: "Keto Chocolate Cookies", Price: priceOf(10)}
		candidate := &domain.Product{ID: "1", Name: "Keto Chocolate Cookies"}
		model := pairModel(reference, candidate)

		got := CompositeScore(reference, candidate, model)
		if math.Abs(got-nameWeight) > 1e-12 {
			t.Errorf("CompositeScore = %v, want %v", got, nameWeight)
		}
	})

	t.Run("monotonic in price proximity", func(t *testing.T) {
		reference := &domain.Product{ID: "x", Name: "Keto Chocolate Cookies", Price: priceOf(10)}
		near := &domain.Product{ID: "1", Name: "Keto Chocolate Cookies", Price: priceOf(11)}
		mid := &domain.Product{ID: "2", Name: "Keto Chocolate Cookies", Price: priceOf(14)}
		far := &domain.Product{ID: "3", Name: "Keto Chocolate Cookies", Price: priceOf(30)}

		model := buildRankingCorpus(reference, []domain.Product{*near, *mid, *far})

		nearScore := CompositeScore(reference, near, model)
		midScore := CompositeScore(reference, mid, model)
		farScore := CompositeScore(reference, far, model)

		if nearScore < midScore || midScore < farScore {
			t.Errorf("scores not monotonic in price proximity: near=%v mid=%v far=%v", nearScore, midScore, farScore)
		}
	})

	t.Run("manufacturer match adds exactly its weight", func(t *testing.T) {
		reference := &domain.Product{ID: "x", Name: "Keto Chocolate Cookies", ManufacturerName: "Bakehouse"}
		same := &domain.Product{ID: "1", Name: "Keto Chocolate Cookies", ManufacturerName: "BAKEHOUSE"}
		other := &domain.Product{ID: "2", Name: "Keto Chocolate Cookies", ManufacturerName: "Millstone"}

		model := buildRankingCorpus(reference, []domain.Product{*same, *other})

		diff := CompositeScore(reference, same, model) - CompositeScore(reference, other, model)
		if math.Abs(diff-manufacturerWeight) > 1e-12 {
			t.Errorf("manufacturer delta = %v, want exactly %v", diff, manufacturerWeight)
		}
	})

	t.Run("bilingual names take the better language", func(t *testing.T) {
		reference := &domain.Product{ID: "x", Name: "Oat Cookies", NameSecondary: "Ciastka owsiane"}
		candidate := &domain.Product{ID: "1", Name: "Rye Crackers", NameSecondary: "Ciastka owsiane"}
		model := pairModel(reference, candidate)

		got := CompositeScore(reference, candidate, model)
		if math.Abs(got-nameWeight) > 1e-12 {
			t.Errorf("CompositeScore = %v, want %v from the secondary-language match", got, nameWeight)
		}
	})
}
