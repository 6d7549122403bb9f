package domain

import (
	"context"
	"time"
)

// CatalogAdapter defines the interface for e-commerce platform adapters.
// One implementation exists per supported platform (PrestaShop today);
// the usecase layer never sees platform-specific payloads.
type CatalogAdapter interface {
	// GetProduct retrieves a single product by its platform identifier.
	// Returns ErrProductNotFound when the id does not exist.
	GetProduct(ctx context.Context, productID string) (*Product, error)

	// GetProductsByCategory retrieves up to limit products from one category.
	GetProductsByCategory(ctx context.Context, categoryID string, limit int) ([]Product, error)

	// HealthCheck verifies API connectivity and credentials.
	HealthCheck(ctx context.Context) bool
}

// ProfileStore defines the interface for the marketing platform profile
// storage that receives substitute recommendations.
type ProfileStore interface {
	// AddSimilarProducts upserts the recommendation entry for one product
	// on the profile identified by email.
	AddSimilarProducts(ctx context.Context, email, productID string, similarIDs []string, enrichedAt time.Time) error

	// RemoveSimilarProducts removes one product's entry, or the whole
	// recommendation array when productID is empty.
	RemoveSimilarProducts(ctx context.Context, email, productID string) error
}

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
