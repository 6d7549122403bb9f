package usecase

import (
	"context"
	"log"
	"sort"

	"github.com/restockly/backend/internal/domain"
)

// RankingConfig holds configuration for the ranking service
type RankingConfig struct {
	Limit              int
	EnableDebugLogging bool
}

// RankingService ranks in-stock substitute candidates for an out-of-stock
// reference product. Each call is pure computation over already-fetched
// products: it builds its own corpus model and discards it on return, so
// concurrent calls on independent product slices are safe.
type RankingService struct {
	limit              int
	enableDebugLogging bool
}

// NewRankingService creates a new ranking service with the given configuration
func NewRankingService(config RankingConfig) *RankingService {
	limit := config.Limit
	if limit <= 0 {
		limit = 6 // Default recommendation count
	}

	return &RankingService{
		limit:              limit,
		enableDebugLogging: config.EnableDebugLogging,
	}
}

// RankSubstitutes ranks the candidate pool against the reference and returns
// the top ids using the configured limit.
func (s *RankingService) RankSubstitutes(
	ctx context.Context,
	reference *domain.Product,
	candidates []domain.Product,
) ([]string, error) {
	return s.Rank(ctx, reference, candidates, s.limit)
}

// Rank filters the candidate pool, scores every survivor against the
// reference with the composite scorer and returns the ids of the top limit
// candidates, best first. Candidates sharing the reference id or with no
// stock are dropped before scoring; a pool filtered down to nothing yields
// an empty result, not an error. Equal scores keep their pool order.
func (s *RankingService) Rank(
	ctx context.Context,
	reference *domain.Product,
	candidates []domain.Product,
	limit int,
) ([]string, error) {
	if reference == nil || reference.ID == "" {
		return nil, domain.ErrInvalidRequest
	}
	if limit < 0 {
		limit = 0
	}

	// Stock is a hard gate, never scored.
	eligible := make([]domain.Product, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate.ID == reference.ID || candidate.Quantity <= 0 {
			continue
		}
		eligible = append(eligible, candidate)
	}

	if len(eligible) == 0 {
		if s.enableDebugLogging {
			log.Printf("[RANK] no in-stock candidates for product=%s category=%s", reference.ID, reference.CategoryID)
		}
		return []string{}, nil
	}

	model := buildRankingCorpus(reference, eligible)

	scored := make([]domain.RankedProduct, 0, len(eligible))
	for i := range eligible {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		score := CompositeScore(reference, &eligible[i], model)
		scored = append(scored, domain.RankedProduct{
			ID:    eligible[i].ID,
			Name:  eligible[i].Name,
			Score: score,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if s.enableDebugLogging {
		for i, match := range scored {
			if i >= 3 {
				break
			}
			log.Printf("[RANK] top match #%d id=%s name=%q score=%.3f", i+1, match.ID, match.Name, match.Score)
		}
	}

	if limit > len(scored) {
		limit = len(scored)
	}
	ids := make([]string, 0, limit)
	for _, match := range scored[:limit] {
		ids = append(ids, match.ID)
	}
	return ids, nil
}

// buildRankingCorpus tokenizes the reference plus every eligible candidate
// into one corpus, folding in secondary-language names where present. The
// reference belongs in the corpus: a term appearing only in the reference
// would otherwise carry no IDF weight and contribute zero to every score.
func buildRankingCorpus(reference *domain.Product, candidates []domain.Product) *CorpusModel {
	documents := make([]TokenSet, 0, 2*(len(candidates)+1))

	documents = append(documents, Tokenize(reference.Name))
	if reference.NameSecondary != "" {
		documents = append(documents, Tokenize(reference.NameSecondary))
	}

	for i := range candidates {
		documents = append(documents, Tokenize(candidates[i].Name))
		if candidates[i].NameSecondary != "" {
			documents = append(documents, Tokenize(candidates[i].NameSecondary))
		}
	}

	return BuildCorpusModel(documents)
}
