package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching serialized payloads
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// ProductClient defines the interface for retrieving product records by barcode
type ProductClient interface {
	GetProduct(ctx context.Context, barcode string) (*ProductRecord, error)
}
