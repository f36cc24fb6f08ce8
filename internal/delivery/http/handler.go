package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/nichefood/backend/internal/domain"
	"github.com/nichefood/backend/internal/scoring"
	"github.com/nichefood/backend/internal/usecase"
)

const serviceVersion = "1.0.0"

// Handler holds dependencies for HTTP handlers
type Handler struct {
	assessmentService *usecase.AssessmentService
}

// NewHandler creates a new HTTP handler
func NewHandler(assessmentService *usecase.AssessmentService) *Handler {
	return &Handler{
		assessmentService: assessmentService,
	}
}

// CheckRequest is the body of POST /api/v1/products/check
type CheckRequest struct {
	Product *domain.ProductRecord `json:"product" binding:"required"`
}

// AssessRequest is the body of POST /api/v1/assessments
type AssessRequest struct {
	Product   *domain.ProductRecord `json:"product" binding:"required"`
	Species   string                `json:"species"`
	LifeStage string                `json:"lifeStage"`
	Allergies []string              `json:"allergies"`
}

// BatchRequest is the body of POST /api/v1/assessments/batch
type BatchRequest struct {
	Barcodes  []string `json:"barcodes" binding:"required"`
	Species   string   `json:"species"`
	LifeStage string   `json:"lifeStage"`
	Allergies []string `json:"allergies"`
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "nichefood-backend",
		"version": serviceVersion,
	})
}

// CheckProduct runs the pet-food gate on a supplied product record
func (h *Handler) CheckProduct(c *gin.Context) {
	var req CheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"isPetFood": scoring.IsPetFood(req.Product),
		"species":   scoring.DetectSpecies(req.Product),
		"lifeStage": scoring.DetectLifeStage(req.Product),
	})
}

// AssessProduct scores a product record supplied in the request body
func (h *Handler) AssessProduct(c *gin.Context) {
	if !h.serviceConfigured(c) {
		return
	}

	var req AssessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	opts := buildOptions(req.Species, req.LifeStage, req.Allergies)
	result, err := h.assessmentService.AssessProduct(c.Request.Context(), req.Product, opts)
	if err != nil {
		respondAssessmentError(c, result, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// AssessBarcode looks up a barcode on OpenFoodFacts and scores the product.
// Overrides come from the species, lifeStage and allergies (comma separated)
// query parameters.
func (h *Handler) AssessBarcode(c *gin.Context) {
	if !h.serviceConfigured(c) {
		return
	}

	barcode := strings.TrimSpace(c.Param("barcode"))
	opts := buildOptions(c.Query("species"), c.Query("lifeStage"), splitList(c.Query("allergies")))

	result, err := h.assessmentService.AssessBarcode(c.Request.Context(), barcode, opts)
	if err != nil {
		respondAssessmentError(c, result, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// AssessBatch scores several barcodes in one request. Per-barcode failures are
// reported inside the items; the request itself succeeds.
func (h *Handler) AssessBatch(c *gin.Context) {
	if !h.serviceConfigured(c) {
		return
	}

	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	opts := buildOptions(req.Species, req.LifeStage, req.Allergies)
	items, err := h.assessmentService.AssessBarcodes(c.Request.Context(), req.Barcodes, opts)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count": len(items),
		"items": items,
	})
}

func (h *Handler) serviceConfigured(c *gin.Context) bool {
	if h.assessmentService == nil {
		c.JSON(http.StatusNotImplemented, gin.H{
			"error": "Assessment service not configured",
		})
		return false
	}
	return true
}

// buildOptions converts raw request overrides. Unsupported species or life
// stage values are dropped so detection takes over.
func buildOptions(species, lifeStage string, allergies []string) domain.AssessOptions {
	cleaned := make([]string, 0, len(allergies))
	for _, allergy := range allergies {
		if allergy = strings.ToLower(strings.TrimSpace(allergy)); allergy != "" {
			cleaned = append(cleaned, allergy)
		}
	}

	return domain.AssessOptions{
		Species:   domain.ParseSpecies(species),
		LifeStage: domain.ParseLifeStage(lifeStage),
		Allergies: cleaned,
	}
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	return strings.Split(raw, ",")
}

func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "Invalid request body",
		"details": err.Error(),
	})
}

// respondAssessmentError keeps the product in the body when the gate rejected it
func respondAssessmentError(c *gin.Context, result *domain.ProductAssessment, err error) {
	if errors.Is(err, domain.ErrNotPetFood) && result != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":     err.Error(),
			"isPetFood": false,
			"barcode":   result.Barcode,
			"product":   result.Product,
		})
		return
	}
	respondError(c, err)
}

// respondError maps domain errors to HTTP status codes
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
	case errors.Is(err, domain.ErrNotPetFood):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "OpenFoodFacts rate limit exceeded, retry later"})
	case errors.Is(err, domain.ErrUpstreamFailure):
		c.JSON(http.StatusBadGateway, gin.H{"error": "OpenFoodFacts API temporarily unavailable"})
	default:
		slog.Error("[HTTP] unhandled error", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
