package http

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/restockly/backend/internal/domain"
	"github.com/restockly/backend/internal/usecase"
)

// EnrichmentService is the slice of the usecase layer the webhook
// handlers need.
type EnrichmentService interface {
	EnrichProfile(ctx context.Context, email, productID string) (*domain.EnrichResult, error)
	CleanupProfile(ctx context.Context, email, productID string) error
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	enrichment EnrichmentService
}

// NewHandler creates a new HTTP handler
func NewHandler(enrichment EnrichmentService) *Handler {
	return &Handler{
		enrichment: enrichment,
	}
}

// webhookRequest is the payload the marketing platform posts to both
// webhooks. Field names follow the platform's flow variables.
type webhookRequest struct {
	Email     string `json:"email"`
	ProductID string `json:"ProductID"`
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "restockly-backend",
		"version": "1.0.0",
	})
}

// EnrichProfile handles the enrichment webhook: rank substitutes for the
// out-of-stock product and store them on the user's profile.
func (h *Handler) EnrichProfile(c *gin.Context) {
	start := time.Now()

	var req webhookRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.ProductID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "missing email or ProductID",
		})
		return
	}

	result, err := h.enrichment.EnrichProfile(c.Request.Context(), req.Email, req.ProductID)
	if err != nil {
		log.Printf("[WEBHOOK] enrichment failed user=%s product=%s error=%v",
			usecase.HashEmail(req.Email), req.ProductID, err)
		status, message := mapServiceError(err)
		c.JSON(status, gin.H{
			"status":    "error",
			"message":   message,
			"timestamp": utcTimestamp(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":                 "success",
		"similar_products_count": result.SimilarCount,
		"timestamp":              utcTimestamp(),
		"duration_ms":            time.Since(start).Milliseconds(),
	})
}

// CleanupProfile handles the cleanup webhook: drop stored recommendations
// after the notification email went out. ProductID is optional; when
// omitted the whole recommendation array is removed.
func (h *Handler) CleanupProfile(c *gin.Context) {
	var req webhookRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "missing email",
		})
		return
	}

	if err := h.enrichment.CleanupProfile(c.Request.Context(), req.Email, req.ProductID); err != nil {
		log.Printf("[WEBHOOK] cleanup failed user=%s error=%v", usecase.HashEmail(req.Email), err)
		status, message := mapServiceError(err)
		c.JSON(status, gin.H{
			"status":    "error",
			"message":   message,
			"timestamp": utcTimestamp(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "success",
		"timestamp": utcTimestamp(),
	})
}

// mapServiceError translates usecase errors into webhook status codes.
// Anything unrecognized is an internal failure and stays opaque.
func mapServiceError(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		return http.StatusBadRequest, "invalid request parameters"
	case errors.Is(err, domain.ErrProductNotFound):
		return http.StatusNotFound, "product not found"
	case errors.Is(err, domain.ErrProfileNotFound):
		return http.StatusNotFound, "profile not found"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

func utcTimestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}
