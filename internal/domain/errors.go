package domain

import "errors"

var (
	// ErrProductNotFound is returned when a barcode is unknown to OpenFoodFacts
	ErrProductNotFound = errors.New("product not found in OpenFoodFacts database")

	// ErrNotPetFood is returned when the pet-food gate rejects a product
	ErrNotPetFood = errors.New("product is not pet food")

	// ErrRateLimited is returned when rate limit is exceeded
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrUpstreamFailure is returned when the OpenFoodFacts API request fails
	ErrUpstreamFailure = errors.New("OpenFoodFacts API request failed")
)
