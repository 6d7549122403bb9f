package main

import (
	"fmt"
	"log"
	"os"

	"github.com/restockly/backend/config"
	httpDelivery "github.com/restockly/backend/internal/delivery/http"
	"github.com/restockly/backend/internal/domain"
	"github.com/restockly/backend/internal/infrastructure/cache"
	"github.com/restockly/backend/internal/infrastructure/klaviyo"
	"github.com/restockly/backend/internal/infrastructure/prestashop"
	"github.com/restockly/backend/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting Restockly Backend v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)
	log.Printf("E-commerce platform: %s (%s)", cfg.Ecommerce.Platform, cfg.Ecommerce.BaseURL)

	// Initialize infrastructure dependencies
	catalog, err := newCatalogAdapter(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize catalog adapter: %v", err)
	}

	memoryCache := cache.NewMemoryCache()
	profiles := klaviyo.NewClient(
		cfg.Klaviyo.BaseURL,
		cfg.Klaviyo.APIKey,
		cfg.Klaviyo.Revision,
		cfg.Ecommerce.Timeout,
		memoryCache,
	)

	// Initialize usecase layer
	enrichmentService := usecase.NewEnrichmentService(
		catalog,
		profiles,
		usecase.EnrichmentConfig{
			SimilarLimit:       cfg.Ranking.SimilarLimit,
			CandidatePoolSize:  cfg.Ranking.CandidatePoolSize,
			EnableDebugLogging: cfg.Ranking.EnableDebugLogging,
		},
	)

	log.Printf("Ranking: limit=%d, pool=%d, debug=%v",
		cfg.Ranking.SimilarLimit,
		cfg.Ranking.CandidatePoolSize,
		cfg.Ranking.EnableDebugLogging)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(enrichmentService)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// newCatalogAdapter picks the adapter for the configured platform. New
// platforms register here.
func newCatalogAdapter(cfg *config.Config) (domain.CatalogAdapter, error) {
	switch cfg.Ecommerce.Platform {
	case "prestashop":
		client := prestashop.NewClient(cfg.Ecommerce.BaseURL, cfg.Ecommerce.APIKey, cfg.Ecommerce.Timeout)
		if cfg.Server.Environment == "development" {
			client.SetDebug(true)
		}
		return client, nil
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedPlatform, cfg.Ecommerce.Platform)
	}
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
