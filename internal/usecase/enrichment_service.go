package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log"
	"time"

	"github.com/restockly/backend/internal/domain"
)

// EnrichmentConfig holds configuration for the enrichment service
type EnrichmentConfig struct {
	SimilarLimit       int
	CandidatePoolSize  int
	EnableDebugLogging bool
}

// EnrichmentService orchestrates one back-in-stock recommendation cycle:
// fetch the subscribed product from the catalog, rank in-stock substitutes
// from its category, and store the result on the marketing profile.
type EnrichmentService struct {
	catalog           domain.CatalogAdapter
	profiles          domain.ProfileStore
	ranking           *RankingService
	candidatePoolSize int
}

// NewEnrichmentService creates a new enrichment service with dependencies
func NewEnrichmentService(
	catalog domain.CatalogAdapter,
	profiles domain.ProfileStore,
	config EnrichmentConfig,
) *EnrichmentService {
	poolSize := config.CandidatePoolSize
	if poolSize <= 0 {
		poolSize = 100 // Larger corpus gives the BM25 model better IDF estimates
	}

	return &EnrichmentService{
		catalog:  catalog,
		profiles: profiles,
		ranking: NewRankingService(RankingConfig{
			Limit:              config.SimilarLimit,
			EnableDebugLogging: config.EnableDebugLogging,
		}),
		candidatePoolSize: poolSize,
	}
}

// EnrichProfile looks up the out-of-stock product, ranks substitutes from
// its category and writes the recommendation entry to the profile store.
// The profile update is skipped when no substitute survives filtering.
func (s *EnrichmentService) EnrichProfile(ctx context.Context, email, productID string) (*domain.EnrichResult, error) {
	if email == "" || productID == "" {
		return nil, domain.ErrInvalidRequest
	}

	reference, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if reference == nil {
		return nil, domain.ErrProductNotFound
	}

	log.Printf("[ENRICH] product found id=%s name=%q category=%s", reference.ID, reference.Name, reference.CategoryID)

	candidates, err := s.catalog.GetProductsByCategory(ctx, reference.CategoryID, s.candidatePoolSize)
	if err != nil {
		return nil, err
	}

	similarIDs, err := s.ranking.RankSubstitutes(ctx, reference, candidates)
	if err != nil {
		return nil, err
	}

	if len(similarIDs) == 0 {
		log.Printf("[ENRICH] no substitutes found, skipping profile update user=%s product=%s",
			HashEmail(email), productID)
		return &domain.EnrichResult{SimilarCount: 0}, nil
	}

	if err := s.profiles.AddSimilarProducts(ctx, email, productID, similarIDs, time.Now().UTC()); err != nil {
		return nil, err
	}

	log.Printf("[ENRICH] profile enriched user=%s product=%s similar=%d",
		HashEmail(email), productID, len(similarIDs))

	return &domain.EnrichResult{SimilarCount: len(similarIDs)}, nil
}

// CleanupProfile removes stored recommendations after the notification has
// been sent. An empty productID clears the whole recommendation array.
func (s *EnrichmentService) CleanupProfile(ctx context.Context, email, productID string) error {
	if email == "" {
		return domain.ErrInvalidRequest
	}

	if err := s.profiles.RemoveSimilarProducts(ctx, email, productID); err != nil {
		return err
	}

	target := productID
	if target == "" {
		target = "all"
	}
	log.Printf("[CLEANUP] profile cleaned user=%s product=%s", HashEmail(email), target)
	return nil
}

// HashEmail returns the first 12 hex characters of the SHA-256 of an email
// address, so logs never carry the raw address.
func HashEmail(email string) string {
	sum := sha256.Sum256([]byte(email))
	return hex.EncodeToString(sum[:])[:12]
}
