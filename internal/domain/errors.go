package domain

import "errors"

var (
	// ErrProductNotFound is returned when a product cannot be found in the catalog
	ErrProductNotFound = errors.New("product not found in catalog")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrCatalogAPIFailure is returned when an e-commerce API request fails
	ErrCatalogAPIFailure = errors.New("catalog API request failed")

	// ErrProfileNotFound is returned when no marketing profile exists for an email
	ErrProfileNotFound = errors.New("profile not found")

	// ErrProfileAPIFailure is returned when a profile store API request fails
	ErrProfileAPIFailure = errors.New("profile API request failed")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrUnsupportedPlatform is returned for an unknown e-commerce platform name
	ErrUnsupportedPlatform = errors.New("unsupported e-commerce platform")
)
