package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/nichefood/backend/internal/domain"
	"github.com/nichefood/backend/internal/scoring"
	"golang.org/x/sync/errgroup"
)

// EAN-8, UPC-A, EAN-13 and GTIN-14 barcodes
var barcodePattern = regexp.MustCompile(`^\d{8,14}$`)

const (
	SourceOpenFoodFacts = "OpenFoodFacts"
	SourceCache         = "Cache"
	SourceRequest       = "Request"
)

// AssessmentServiceConfig holds configuration for the assessment service
type AssessmentServiceConfig struct {
	CacheTTL           time.Duration
	BatchConcurrency   int
	MaxBatchSize       int
	EnableDebugLogging bool
}

// AssessmentService looks up products and scores them
type AssessmentService struct {
	cache            domain.CacheRepository
	products         domain.ProductClient
	cacheTTL         time.Duration
	batchConcurrency int
	maxBatchSize     int
	debug            bool
}

// BatchItem is the outcome for one barcode of a batch request
type BatchItem struct {
	Barcode string                    `json:"barcode"`
	Result  *domain.ProductAssessment `json:"result,omitempty"`
	Error   string                    `json:"error,omitempty"`
}

// NewAssessmentService creates a new assessment service with dependencies
func NewAssessmentService(
	cache domain.CacheRepository,
	products domain.ProductClient,
	config AssessmentServiceConfig,
) *AssessmentService {
	cacheTTL := config.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = 24 * time.Hour
	}
	concurrency := config.BatchConcurrency
	if concurrency <= 0 {
		concurrency = 4
	}
	maxBatch := config.MaxBatchSize
	if maxBatch <= 0 {
		maxBatch = 25
	}

	return &AssessmentService{
		cache:            cache,
		products:         products,
		cacheTTL:         cacheTTL,
		batchConcurrency: concurrency,
		maxBatchSize:     maxBatch,
		debug:            config.EnableDebugLogging,
	}
}

// ValidateBarcode reports ErrInvalidRequest for anything that is not 8-14 digits
func ValidateBarcode(barcode string) error {
	if !barcodePattern.MatchString(barcode) {
		return fmt.Errorf("%w: barcode must be 8-14 digits, got %q", domain.ErrInvalidRequest, barcode)
	}
	return nil
}

// LookupProduct returns the product for a barcode and where it came from.
// Flow: validate -> check cache -> fetch from OpenFoodFacts -> cache -> return
func (s *AssessmentService) LookupProduct(ctx context.Context, barcode string) (*domain.ProductRecord, string, error) {
	if err := ValidateBarcode(barcode); err != nil {
		return nil, "", err
	}

	cacheKey := productCacheKey(barcode)
	if product, err := s.getFromCache(ctx, cacheKey); err == nil {
		if s.debug {
			slog.Debug("[ASSESS] cache hit", "barcode", barcode)
		}
		return product, SourceCache, nil
	}

	if s.products == nil {
		return nil, "", fmt.Errorf("%w: product client not configured", domain.ErrUpstreamFailure)
	}

	product, err := s.products.GetProduct(ctx, barcode)
	if err != nil {
		return nil, "", err
	}

	if err := s.setInCache(ctx, cacheKey, product); err != nil {
		// caching is best effort
		slog.Warn("[ASSESS] failed to cache product", "barcode", barcode, "error", err)
	}

	return product, SourceOpenFoodFacts, nil
}

// AssessProduct runs the pet-food gate and, if it passes, scores the product.
// Non-pet products return a ProductAssessment with IsPetFood false together
// with ErrNotPetFood.
func (s *AssessmentService) AssessProduct(
	ctx context.Context,
	product *domain.ProductRecord,
	opts domain.AssessOptions,
) (*domain.ProductAssessment, error) {
	if product == nil {
		return nil, domain.ErrInvalidRequest
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &domain.ProductAssessment{
		Barcode: product.Code,
		Product: *product,
		Source:  SourceRequest,
	}

	if !scoring.IsPetFood(product) {
		if s.debug {
			slog.Debug("[ASSESS] rejected by pet-food gate", "barcode", product.Code, "name", product.ProductName)
		}
		return result, domain.ErrNotPetFood
	}

	assessment := scoring.Assess(product, opts)
	result.IsPetFood = true
	result.Assessment = &assessment

	if s.debug {
		slog.Debug("[ASSESS] scored product",
			"barcode", product.Code,
			"score", assessment.Score,
			"rating", assessment.Rating,
			"species", assessment.Species,
			"lifeStage", assessment.LifeStage)
	}

	return result, nil
}

// AssessBarcode looks up a product by barcode and assesses it
func (s *AssessmentService) AssessBarcode(
	ctx context.Context,
	barcode string,
	opts domain.AssessOptions,
) (*domain.ProductAssessment, error) {
	product, source, err := s.LookupProduct(ctx, barcode)
	if err != nil {
		return nil, err
	}

	result, err := s.AssessProduct(ctx, product, opts)
	if result != nil {
		result.Barcode = barcode
		result.Source = source
	}
	return result, err
}

// AssessBarcodes assesses several barcodes concurrently. Results keep the
// input order; a failing barcode is reported on its item and does not fail
// the batch. Only context cancellation aborts the whole call.
func (s *AssessmentService) AssessBarcodes(
	ctx context.Context,
	barcodes []string,
	opts domain.AssessOptions,
) ([]BatchItem, error) {
	if len(barcodes) == 0 {
		return nil, fmt.Errorf("%w: no barcodes given", domain.ErrInvalidRequest)
	}
	if len(barcodes) > s.maxBatchSize {
		return nil, fmt.Errorf("%w: at most %d barcodes per batch, got %d",
			domain.ErrInvalidRequest, s.maxBatchSize, len(barcodes))
	}

	items := make([]BatchItem, len(barcodes))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.batchConcurrency)

	for i, barcode := range barcodes {
		g.Go(func() error {
			result, err := s.AssessBarcode(gctx, barcode, opts)
			items[i] = BatchItem{Barcode: barcode, Result: result}
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				items[i].Error = err.Error()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return items, nil
}

func productCacheKey(barcode string) string {
	return "product:" + barcode
}

// getFromCache retrieves a product record from cache
func (s *AssessmentService) getFromCache(ctx context.Context, key string) (*domain.ProductRecord, error) {
	if s.cache == nil {
		return nil, domain.ErrCacheMiss
	}

	data, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	var product domain.ProductRecord
	if err := json.Unmarshal(data, &product); err != nil {
		return nil, fmt.Errorf("%w: corrupt entry: %v", domain.ErrCacheMiss, err)
	}
	return &product, nil
}

// setInCache stores a product record in cache
func (s *AssessmentService) setInCache(ctx context.Context, key string, product *domain.ProductRecord) error {
	if s.cache == nil {
		return nil
	}

	data, err := json.Marshal(product)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, key, data, s.cacheTTL)
}
