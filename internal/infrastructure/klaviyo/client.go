package klaviyo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/restockly/backend/internal/domain"
	"golang.org/x/time/rate"
)

// similarProductsProperty is the profile property the notification flows
// read their recommendations from.
const similarProductsProperty = "bis_similar_products"

// Profile ids are stable; memoizing the email lookup covers the
// enrich-then-cleanup webhook pair of one campaign send.
const profileIDCacheTTL = 15 * time.Minute

// similarEntry is one element of the bis_similar_products profile array.
type similarEntry struct {
	ProductID  string   `json:"product_id"`
	SimilarIDs []string `json:"similar_ids"`
	EnrichedAt string   `json:"enriched_at"`
}

// Client is a Klaviyo REST API profile store. It maintains one
// recommendation entry per subscribed product on each profile.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	revision    string
	cache       domain.CacheRepository
	rateLimiter *rate.Limiter
}

// NewClient creates a new Klaviyo API client
func NewClient(baseURL, apiKey, revision string, timeout time.Duration, cache domain.CacheRepository) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	// Profile endpoints allow a 75/s burst and 700/m steady; stay well under.
	limiter := rate.NewLimiter(rate.Limit(10), 20)

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:     strings.TrimRight(baseURL, "/"),
		apiKey:      apiKey,
		revision:    revision,
		cache:       cache,
		rateLimiter: limiter,
	}
}

// do executes one authenticated API request with an optional JSON body.
func (c *Client) do(ctx context.Context, method, reqURL string, body interface{}) (*http.Response, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Klaviyo-API-Key "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("revision", c.revision)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrProfileAPIFailure, err)
	}
	return resp, nil
}

// getProfileIDByEmail resolves a profile id, consulting the cache first.
//
// GET /profiles/?filter=equals(email,"{email}")
func (c *Client) getProfileIDByEmail(ctx context.Context, email string) (string, error) {
	cacheKey := "klaviyo:profile:" + strings.ToLower(email)
	if cached, err := c.cache.Get(ctx, cacheKey); err == nil {
		if id, ok := cached.(string); ok && id != "" {
			return id, nil
		}
	}

	params := url.Values{}
	params.Set("filter", fmt.Sprintf("equals(email,%q)", email))
	reqURL := fmt.Sprintf("%s/profiles/?%s", c.baseURL, params.Encode())

	resp, err := c.do(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("%w: status %d, body: %s", domain.ErrProfileAPIFailure, resp.StatusCode, body)
	}

	var list struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(list.Data) == 0 {
		return "", domain.ErrProfileNotFound
	}

	profileID := list.Data[0].ID
	if err := c.cache.Set(ctx, cacheKey, profileID, profileIDCacheTTL); err != nil {
		log.Printf("[KLAVIYO] profile id cache write failed: %v", err)
	}
	return profileID, nil
}

// getSimilarProductsArray reads the current recommendation array from the
// profile. Read failures degrade to an empty array: a lost merge beats a
// failed enrichment.
func (c *Client) getSimilarProductsArray(ctx context.Context, profileID string) []similarEntry {
	params := url.Values{}
	params.Set("additional-fields[profile]", "properties")
	reqURL := fmt.Sprintf("%s/profiles/%s/?%s", c.baseURL, url.PathEscape(profileID), params.Encode())

	resp, err := c.do(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil
	}

	var profile struct {
		Data struct {
			Attributes struct {
				Properties map[string]json.RawMessage `json:"properties"`
			} `json:"attributes"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil
	}

	raw, ok := profile.Data.Attributes.Properties[similarProductsProperty]
	if !ok {
		return nil
	}
	var entries []similarEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil
	}
	return entries
}

// updateProfileProperties patches custom properties on a profile.
//
// PATCH /profiles/{profile_id}/
func (c *Client) updateProfileProperties(ctx context.Context, profileID string, properties map[string]interface{}) error {
	reqURL := fmt.Sprintf("%s/profiles/%s/", c.baseURL, url.PathEscape(profileID))
	payload := map[string]interface{}{
		"data": map[string]interface{}{
			"type": "profile",
			"id":   profileID,
			"attributes": map[string]interface{}{
				"properties": properties,
			},
		},
	}

	resp, err := c.do(ctx, http.MethodPatch, reqURL, payload)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: status %d, body: %s", domain.ErrProfileAPIFailure, resp.StatusCode, body)
	}
	return nil
}

// AddSimilarProducts upserts the recommendation entry for one product,
// keeping entries for other subscribed products intact.
func (c *Client) AddSimilarProducts(ctx context.Context, email, productID string, similarIDs []string, enrichedAt time.Time) error {
	profileID, err := c.getProfileIDByEmail(ctx, email)
	if err != nil {
		return err
	}

	entries := c.getSimilarProductsArray(ctx, profileID)

	// Replace any previous entry for the same product.
	merged := make([]similarEntry, 0, len(entries)+1)
	for _, entry := range entries {
		if entry.ProductID != productID {
			merged = append(merged, entry)
		}
	}
	merged = append(merged, similarEntry{
		ProductID:  productID,
		SimilarIDs: similarIDs,
		EnrichedAt: enrichedAt.UTC().Format(time.RFC3339),
	})

	return c.updateProfileProperties(ctx, profileID, map[string]interface{}{
		similarProductsProperty: merged,
	})
}

// RemoveSimilarProducts removes one product's entry, or the whole array
// when productID is empty. An emptied array is nulled out rather than left
// as [].
func (c *Client) RemoveSimilarProducts(ctx context.Context, email, productID string) error {
	profileID, err := c.getProfileIDByEmail(ctx, email)
	if err != nil {
		return err
	}

	if productID == "" {
		return c.updateProfileProperties(ctx, profileID, map[string]interface{}{
			similarProductsProperty: nil,
		})
	}

	entries := c.getSimilarProductsArray(ctx, profileID)
	filtered := make([]similarEntry, 0, len(entries))
	for _, entry := range entries {
		if entry.ProductID != productID {
			filtered = append(filtered, entry)
		}
	}

	if len(filtered) == 0 {
		return c.updateProfileProperties(ctx, profileID, map[string]interface{}{
			similarProductsProperty: nil,
		})
	}
	return c.updateProfileProperties(ctx, profileID, map[string]interface{}{
		similarProductsProperty: filtered,
	})
}
