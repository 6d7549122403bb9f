package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/restockly/backend/config"
	"github.com/restockly/backend/internal/domain"
)

const testSecret = "webhook-secret"

type fakeEnrichment struct {
	enrichResult *domain.EnrichResult
	enrichErr    error
	cleanupErr   error

	lastEmail     string
	lastProductID string
}

func (f *fakeEnrichment) EnrichProfile(ctx context.Context, email, productID string) (*domain.EnrichResult, error) {
	f.lastEmail = email
	f.lastProductID = productID
	if f.enrichErr != nil {
		return nil, f.enrichErr
	}
	return f.enrichResult, nil
}

func (f *fakeEnrichment) CleanupProfile(ctx context.Context, email, productID string) error {
	f.lastEmail = email
	f.lastProductID = productID
	return f.cleanupErr
}

func newTestRouter(service EnrichmentService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{}
	cfg.Server.Environment = "test"
	cfg.Webhook.Secret = testSecret
	return SetupRouter(cfg, NewHandler(service))
}

func postWebhook(router *gin.Engine, path, token string, body interface{}) *httptest.ResponseRecorder {
	encoded, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(encoded))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("X-Webhook-Token", token)
	}

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder) map[string]interface{} {
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	return body
}

func TestHealthCheck(t *testing.T) {
	router := newTestRouter(&fakeEnrichment{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusOK, recorder.Code)
	body := decodeBody(t, recorder)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "restockly-backend", body["service"])
}

func TestEnrichWebhook(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		service := &fakeEnrichment{enrichResult: &domain.EnrichResult{SimilarCount: 3}}
		router := newTestRouter(service)

		recorder := postWebhook(router, "/webhook/enrich", testSecret, gin.H{
			"email":     "user@example.com",
			"ProductID": "42",
		})

		assert.Equal(t, http.StatusOK, recorder.Code)
		body := decodeBody(t, recorder)
		assert.Equal(t, "success", body["status"])
		assert.Equal(t, float64(3), body["similar_products_count"])
		assert.NotEmpty(t, body["timestamp"])
		assert.Contains(t, body, "duration_ms")

		assert.Equal(t, "user@example.com", service.lastEmail)
		assert.Equal(t, "42", service.lastProductID)
	})

	t.Run("rejects missing token", func(t *testing.T) {
		router := newTestRouter(&fakeEnrichment{})

		recorder := postWebhook(router, "/webhook/enrich", "", gin.H{"email": "user@example.com", "ProductID": "42"})
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("rejects wrong token", func(t *testing.T) {
		router := newTestRouter(&fakeEnrichment{})

		recorder := postWebhook(router, "/webhook/enrich", "wrong", gin.H{"email": "user@example.com", "ProductID": "42"})
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("rejects missing fields", func(t *testing.T) {
		router := newTestRouter(&fakeEnrichment{})

		recorder := postWebhook(router, "/webhook/enrich", testSecret, gin.H{"email": "user@example.com"})
		assert.Equal(t, http.StatusBadRequest, recorder.Code)

		recorder = postWebhook(router, "/webhook/enrich", testSecret, gin.H{"ProductID": "42"})
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("rejects malformed body", func(t *testing.T) {
		router := newTestRouter(&fakeEnrichment{})

		req := httptest.NewRequest(http.MethodPost, "/webhook/enrich", bytes.NewReader([]byte("{not json")))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Webhook-Token", testSecret)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("maps product not found to 404", func(t *testing.T) {
		router := newTestRouter(&fakeEnrichment{enrichErr: domain.ErrProductNotFound})

		recorder := postWebhook(router, "/webhook/enrich", testSecret, gin.H{"email": "user@example.com", "ProductID": "42"})
		assert.Equal(t, http.StatusNotFound, recorder.Code)
		assert.Equal(t, "product not found", decodeBody(t, recorder)["message"])
	})

	t.Run("maps profile not found to 404", func(t *testing.T) {
		router := newTestRouter(&fakeEnrichment{enrichErr: domain.ErrProfileNotFound})

		recorder := postWebhook(router, "/webhook/enrich", testSecret, gin.H{"email": "user@example.com", "ProductID": "42"})
		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})

	t.Run("hides unexpected failures behind 500", func(t *testing.T) {
		router := newTestRouter(&fakeEnrichment{enrichErr: domain.ErrProfileAPIFailure})

		recorder := postWebhook(router, "/webhook/enrich", testSecret, gin.H{"email": "user@example.com", "ProductID": "42"})
		assert.Equal(t, http.StatusInternalServerError, recorder.Code)
		assert.Equal(t, "internal server error", decodeBody(t, recorder)["message"])
	})
}

func TestCleanupWebhook(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		service := &fakeEnrichment{}
		router := newTestRouter(service)

		recorder := postWebhook(router, "/webhook/cleanup", testSecret, gin.H{
			"email":     "user@example.com",
			"ProductID": "42",
		})

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, "success", decodeBody(t, recorder)["status"])
		assert.Equal(t, "42", service.lastProductID)
	})

	t.Run("product id is optional", func(t *testing.T) {
		service := &fakeEnrichment{}
		router := newTestRouter(service)

		recorder := postWebhook(router, "/webhook/cleanup", testSecret, gin.H{"email": "user@example.com"})
		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, "", service.lastProductID)
	})

	t.Run("rejects missing email", func(t *testing.T) {
		router := newTestRouter(&fakeEnrichment{})

		recorder := postWebhook(router, "/webhook/cleanup", testSecret, gin.H{"ProductID": "42"})
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("rejects missing token", func(t *testing.T) {
		router := newTestRouter(&fakeEnrichment{})

		recorder := postWebhook(router, "/webhook/cleanup", "", gin.H{"email": "user@example.com"})
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("maps store failure to 500", func(t *testing.T) {
		router := newTestRouter(&fakeEnrichment{cleanupErr: domain.ErrProfileAPIFailure})

		recorder := postWebhook(router, "/webhook/cleanup", testSecret, gin.H{"email": "user@example.com"})
		assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	})
}
