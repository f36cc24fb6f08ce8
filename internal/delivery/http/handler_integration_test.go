package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nichefood/backend/config"
	"github.com/nichefood/backend/internal/domain"
	"github.com/nichefood/backend/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMain sets up test environment before running tests
func TestMain(m *testing.M) {
	// Set Gin to test mode once for all tests
	gin.SetMode(gin.TestMode)

	os.Exit(m.Run())
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:           "8080",
			Environment:    "test",
			AllowedOrigins: []string{"http://localhost:*", "https://nichefood.app"},
		},
		Cache: config.CacheConfig{
			Type: "memory",
		},
	}
}

// setupTestRouter creates a test router without an assessment service
func setupTestRouter() *gin.Engine {
	return SetupRouter(testConfig(), NewHandler(nil))
}

// --- Mock implementations for testing with AssessmentService ---

// mockCacheRepository is a mock implementation of domain.CacheRepository
type mockCacheRepository struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMockCacheRepository() *mockCacheRepository {
	return &mockCacheRepository{data: make(map[string][]byte)}
}

func (m *mockCacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if value, ok := m.data[key]; ok {
		return value, nil
	}
	return nil, domain.ErrCacheMiss
}

func (m *mockCacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *mockCacheRepository) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *mockCacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok, nil
}

// mockProductClient is a mock implementation of domain.ProductClient
type mockProductClient struct {
	products map[string]*domain.ProductRecord
	err      error
}

func newMockProductClient() *mockProductClient {
	return &mockProductClient{products: make(map[string]*domain.ProductRecord)}
}

func (m *mockProductClient) GetProduct(ctx context.Context, barcode string) (*domain.ProductRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	if product, ok := m.products[barcode]; ok {
		copied := *product
		return &copied, nil
	}
	return nil, domain.ErrProductNotFound
}

// setupTestRouterWithService creates a test router with a real AssessmentService using mocks
func setupTestRouterWithService(cache domain.CacheRepository, client domain.ProductClient) *gin.Engine {
	service := usecase.NewAssessmentService(cache, client, usecase.AssessmentServiceConfig{
		CacheTTL:         time.Hour,
		BatchConcurrency: 2,
		MaxBatchSize:     3,
	})
	return SetupRouter(testConfig(), NewHandler(service))
}

const catFoodBarcode = "3017620422003"

func catFoodClient() *mockProductClient {
	client := newMockProductClient()
	client.products[catFoodBarcode] = &domain.ProductRecord{
		Code:            catFoodBarcode,
		ProductName:     "Adult Cat Food",
		Categories:      "Pet food, Cat food",
		IngredientsText: "Chicken, rice, taurine",
		NutriScoreGrade: "b",
	}
	client.products["5000159484695"] = &domain.ProductRecord{
		Code:            "5000159484695",
		ProductName:     "Honey Oat Crunch",
		Categories:      "Breakfast cereals",
		IngredientsText: "Oats, sugar, honey",
	}
	return client
}

func doJSON(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var response map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response), "body: %s", w.Body.String())
	return response
}

// TestHealthCheckEndpoint tests the health check endpoint
func TestHealthCheckEndpoint(t *testing.T) {
	t.Run("returns healthy status", func(t *testing.T) {
		w := doJSON(setupTestRouter(), http.MethodGet, "/health", "")

		require.Equal(t, http.StatusOK, w.Code)
		response := decodeBody(t, w)
		assert.Equal(t, "healthy", response["status"])
		assert.Equal(t, "nichefood-backend", response["service"])
		assert.NotEmpty(t, response["version"])
	})

	t.Run("accepts GET requests only", func(t *testing.T) {
		router := setupTestRouter()

		for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch} {
			w := doJSON(router, method, "/health", "")
			assert.Equal(t, http.StatusNotFound, w.Code, method)
		}
	})
}

func TestCheckProductEndpoint(t *testing.T) {
	router := setupTestRouter()

	t.Run("detects pet food without a service", func(t *testing.T) {
		payload := `{"product":{"product_name":"Puppy Growth Formula","categories":"Dog food"}}`
		w := doJSON(router, http.MethodPost, "/api/v1/products/check", payload)

		require.Equal(t, http.StatusOK, w.Code)
		response := decodeBody(t, w)
		assert.Equal(t, true, response["isPetFood"])
		assert.Equal(t, "dog", response["species"])
		assert.Equal(t, "puppy", response["lifeStage"])
	})

	t.Run("rejects human food", func(t *testing.T) {
		payload := `{"product":{"product_name":"Honey Oat Crunch","categories":"Breakfast cereals"}}`
		w := doJSON(router, http.MethodPost, "/api/v1/products/check", payload)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, false, decodeBody(t, w)["isPetFood"])
	})

	t.Run("returns 400 for missing product", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/api/v1/products/check", `{}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.NotNil(t, decodeBody(t, w)["error"])
	})
}

func TestAssessEndpointsWithoutService(t *testing.T) {
	router := setupTestRouter()

	endpoints := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/v1/assessments"},
		{http.MethodPost, "/api/v1/assessments/batch"},
		{http.MethodGet, "/api/v1/products/" + catFoodBarcode + "/assessment"},
	}

	for _, endpoint := range endpoints {
		t.Run(endpoint.method+" "+endpoint.path, func(t *testing.T) {
			w := doJSON(router, endpoint.method, endpoint.path, "")

			assert.Equal(t, http.StatusNotImplemented, w.Code)
			errorMsg, _ := decodeBody(t, w)["error"].(string)
			assert.Contains(t, errorMsg, "not configured")
		})
	}
}

func TestAssessProductEndpoint(t *testing.T) {
	router := setupTestRouterWithService(newMockCacheRepository(), newMockProductClient())

	t.Run("scores a supplied product", func(t *testing.T) {
		payload := `{
			"product": {
				"product_name": "Adult Cat Food",
				"categories": "Pet food, Cat food",
				"ingredients_text": "Chicken, rice, taurine",
				"nutriscore_grade": "b"
			},
			"allergies": [" Chicken "]
		}`
		w := doJSON(router, http.MethodPost, "/api/v1/assessments", payload)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var result domain.ProductAssessment
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
		assert.True(t, result.IsPetFood)
		assert.Equal(t, usecase.SourceRequest, result.Source)
		require.NotNil(t, result.Assessment)
		assert.Equal(t, 88, result.Assessment.Score)
		assert.Equal(t, domain.RatingExcellent, result.Assessment.Rating)
		assert.Equal(t, domain.SpeciesCat, result.Assessment.Species)
		assert.Equal(t, []string{"⚠️ Contains chicken (flagged allergen)"}, result.Assessment.AllergyWarnings)
	})

	t.Run("unsupported overrides fall back to detection", func(t *testing.T) {
		payload := `{
			"product": {"product_name": "Senior Cat Food", "ingredients_text": "Chicken, taurine"},
			"species": "hamster",
			"lifeStage": "teen"
		}`
		w := doJSON(router, http.MethodPost, "/api/v1/assessments", payload)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var result domain.ProductAssessment
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
		assert.Equal(t, domain.SpeciesCat, result.Assessment.Species)
		assert.Equal(t, domain.LifeStageSenior, result.Assessment.LifeStage)
	})

	t.Run("returns 422 for non pet food", func(t *testing.T) {
		payload := `{"product":{"product_name":"Honey Oat Crunch","ingredients_text":"Oats, sugar"}}`
		w := doJSON(router, http.MethodPost, "/api/v1/assessments", payload)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		response := decodeBody(t, w)
		assert.Equal(t, false, response["isPetFood"])
		assert.NotNil(t, response["product"])
	})

	t.Run("returns 400 for invalid JSON", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/api/v1/assessments", `{invalid json}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAssessBarcodeEndpoint(t *testing.T) {
	t.Run("looks up and scores with query overrides", func(t *testing.T) {
		router := setupTestRouterWithService(newMockCacheRepository(), catFoodClient())

		path := "/api/v1/products/" + catFoodBarcode + "/assessment?species=dog&lifeStage=senior&allergies=chicken,,beef"
		w := doJSON(router, http.MethodGet, path, "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var result domain.ProductAssessment
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
		assert.Equal(t, catFoodBarcode, result.Barcode)
		assert.Equal(t, usecase.SourceOpenFoodFacts, result.Source)
		assert.Equal(t, domain.SpeciesDog, result.Assessment.Species)
		assert.Equal(t, domain.LifeStageSenior, result.Assessment.LifeStage)
		// chicken +23, Nutri-Score B +5
		assert.Equal(t, 78, result.Assessment.Score)
		assert.Equal(t, []string{"chicken"}, result.Assessment.DetectedAllergens)
		assert.Len(t, result.Assessment.AllergyWarnings, 1)
	})

	t.Run("second request is served from cache", func(t *testing.T) {
		router := setupTestRouterWithService(newMockCacheRepository(), catFoodClient())

		doJSON(router, http.MethodGet, "/api/v1/products/"+catFoodBarcode+"/assessment", "")
		w := doJSON(router, http.MethodGet, "/api/v1/products/"+catFoodBarcode+"/assessment", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, usecase.SourceCache, decodeBody(t, w)["source"])
	})

	errorCases := []struct {
		name       string
		barcode    string
		clientErr  error
		wantStatus int
	}{
		{"invalid barcode", "abc123", nil, http.StatusBadRequest},
		{"unknown barcode", "12345678", nil, http.StatusNotFound},
		{"non pet food", "5000159484695", nil, http.StatusUnprocessableEntity},
		{"upstream failure", catFoodBarcode, fmt.Errorf("%w: status 503", domain.ErrUpstreamFailure), http.StatusBadGateway},
		{"upstream rate limit", catFoodBarcode, fmt.Errorf("%w: %w", domain.ErrRateLimited, domain.ErrUpstreamFailure), http.StatusTooManyRequests},
		{"unexpected error", catFoodBarcode, fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tc := range errorCases {
		t.Run(tc.name, func(t *testing.T) {
			client := catFoodClient()
			client.err = tc.clientErr
			router := setupTestRouterWithService(newMockCacheRepository(), client)

			w := doJSON(router, http.MethodGet, "/api/v1/products/"+tc.barcode+"/assessment", "")
			assert.Equal(t, tc.wantStatus, w.Code, w.Body.String())
			assert.NotNil(t, decodeBody(t, w)["error"])
		})
	}
}

func TestAssessBatchEndpoint(t *testing.T) {
	router := setupTestRouterWithService(newMockCacheRepository(), catFoodClient())

	t.Run("reports per item results in order", func(t *testing.T) {
		payload := `{"barcodes":["` + catFoodBarcode + `","12345678","5000159484695"],"species":"cat"}`
		w := doJSON(router, http.MethodPost, "/api/v1/assessments/batch", payload)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var response struct {
			Count int                 `json:"count"`
			Items []usecase.BatchItem `json:"items"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		require.Equal(t, 3, response.Count)

		assert.Equal(t, catFoodBarcode, response.Items[0].Barcode)
		assert.Empty(t, response.Items[0].Error)
		assert.Equal(t, 88, response.Items[0].Result.Assessment.Score)

		assert.Equal(t, "12345678", response.Items[1].Barcode)
		assert.Nil(t, response.Items[1].Result)
		assert.NotEmpty(t, response.Items[1].Error)

		assert.Equal(t, "5000159484695", response.Items[2].Barcode)
		assert.False(t, response.Items[2].Result.IsPetFood)
		assert.NotEmpty(t, response.Items[2].Error)
	})

	t.Run("returns 400 for missing barcodes", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/api/v1/assessments/batch", `{"species":"cat"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("returns 400 for empty batch", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/api/v1/assessments/batch", `{"barcodes":[]}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("returns 400 for oversized batch", func(t *testing.T) {
		payload := `{"barcodes":["12345678","12345679","12345680","12345681"]}`
		w := doJSON(router, http.MethodPost, "/api/v1/assessments/batch", payload)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

// TestCORSIntegration tests CORS headers work end-to-end with full router
func TestCORSIntegration(t *testing.T) {
	t.Run("health endpoint has CORS for localhost", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		w := httptest.NewRecorder()

		setupTestRouter().ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("api endpoint has CORS for production origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/products/check", nil)
		req.Header.Set("Origin", "https://nichefood.app")
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		setupTestRouter().ServeHTTP(w, req)

		assert.Equal(t, "https://nichefood.app", w.Header().Get("Access-Control-Allow-Origin"))
	})
}

// TestRecoveryMiddleware tests panic recovery
func TestRecoveryMiddleware(t *testing.T) {
	router := setupTestRouter()
	router.GET("/panic", func(c *gin.Context) {
		panic("test panic")
	})

	w := doJSON(router, http.MethodGet, "/panic", "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal server error", decodeBody(t, w)["error"])
}

// TestAPIVersioning tests that API v1 routes are correctly versioned
func TestAPIVersioning(t *testing.T) {
	t.Run("v1 routes are accessible", func(t *testing.T) {
		w := doJSON(setupTestRouter(), http.MethodPost, "/api/v1/assessments", "")
		// 501 Not Implemented, not 404 Not Found
		assert.Equal(t, http.StatusNotImplemented, w.Code)
	})

	t.Run("non-versioned routes return 404", func(t *testing.T) {
		w := doJSON(setupTestRouter(), http.MethodPost, "/api/assessments", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestRateLimitIntegration(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit.PerIP = 1
	router := SetupRouter(cfg, NewHandler(nil))

	payload := `{"product":{"categories":"Cat food"}}`
	first := doJSON(router, http.MethodPost, "/api/v1/products/check", payload)
	second := doJSON(router, http.MethodPost, "/api/v1/products/check", payload)

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)

	// health is outside the limited group
	health := doJSON(router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, health.Code)
}

// TestJSONResponses tests that all responses are valid JSON
func TestJSONResponses(t *testing.T) {
	endpoints := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/health"},
		{http.MethodPost, "/api/v1/products/check"},
		{http.MethodPost, "/api/v1/assessments"},
	}

	for _, endpoint := range endpoints {
		t.Run(endpoint.method+" "+endpoint.path, func(t *testing.T) {
			w := doJSON(setupTestRouter(), endpoint.method, endpoint.path, "")

			assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
			var response map[string]any
			assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		})
	}
}
