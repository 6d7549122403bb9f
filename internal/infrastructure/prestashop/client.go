package prestashop

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/restockly/backend/internal/domain"
	"golang.org/x/time/rate"
)

const (
	userAgent    = "Restockly/1.0"
	maxRetries   = 3
	retryBackoff = 500 * time.Millisecond
)

// Client handles communication with the PrestaShop 1.7+ WebService API
type Client struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	rateLimiter *rate.Limiter
	debug       bool
}

// NewClient creates a new PrestaShop WebService client
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	// The webservice has no published quota; 5 req/s with a small burst
	// stays friendly to shared hosting.
	limiter := rate.NewLimiter(rate.Limit(5), 10)

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:     strings.TrimRight(baseURL, "/"),
		apiKey:      apiKey,
		rateLimiter: limiter,
	}
}

// SetDebug enables request/response logging
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// query appends the authentication and format parameters every webservice
// call needs.
func (c *Client) query(params url.Values) string {
	params.Set("ws_key", c.apiKey)
	params.Set("output_format", "JSON")
	return params.Encode()
}

// doRequest executes an HTTP GET request with proper headers and error handling
func (c *Client) doRequest(ctx context.Context, reqURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCatalogAPIFailure, err)
	}

	return resp, nil
}

// getJSON fetches a webservice URL into out, retrying transient failures
// with linear backoff. A 404 maps to ErrProductNotFound immediately.
func (c *Client) getJSON(ctx context.Context, reqURL string, out interface{}) error {
	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter error: %w", err)
		}

		resp, err := c.doRequest(ctx, reqURL)
		if err != nil {
			if c.debug {
				log.Printf("[PRESTASHOP] request error (attempt %d): %v", attempt, err)
			}
			lastErr = err
			time.Sleep(time.Duration(attempt) * retryBackoff)
			continue
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode == http.StatusNotFound {
			return domain.ErrProductNotFound
		}
		if resp.StatusCode != http.StatusOK {
			if c.debug {
				log.Printf("[PRESTASHOP] API error (attempt %d) status=%d body=%s", attempt, resp.StatusCode, body)
			}
			lastErr = fmt.Errorf("%w: status %d", domain.ErrCatalogAPIFailure, resp.StatusCode)
			time.Sleep(time.Duration(attempt) * retryBackoff)
			continue
		}

		// PrestaShop answers empty result sets with a bare array.
		trimmed := bytes.TrimSpace(body)
		if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("[]")) {
			return nil
		}

		if err := json.Unmarshal(trimmed, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
		return nil
	}

	return lastErr
}

// GetProduct retrieves a single product by id.
//
// GET /api/products/{id}?output_format=JSON&display=full
func (c *Client) GetProduct(ctx context.Context, productID string) (*domain.Product, error) {
	reqURL := fmt.Sprintf("%s/api/products/%s?%s", c.baseURL, url.PathEscape(productID), c.query(url.Values{
		"display": {"full"},
	}))

	// Depending on auth method the webservice wraps the resource as
	// {"product": {...}} or {"products": [{...}]}.
	var payload struct {
		Product  *productPayload  `json:"product"`
		Products []productPayload `json:"products"`
	}
	if err := c.getJSON(ctx, reqURL, &payload); err != nil {
		return nil, err
	}

	var product *domain.Product
	if payload.Product != nil {
		product = mapToProduct(payload.Product)
	} else if len(payload.Products) > 0 {
		product = mapToProduct(&payload.Products[0])
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}

	if c.debug {
		log.Printf("[PRESTASHOP] product fetched id=%s name=%q category=%s", product.ID, product.Name, product.CategoryID)
	}
	return product, nil
}

// GetProductsByCategory retrieves up to limit products from one category
// using batch fetching:
//
//  1. GET /api/products?filter[id_category_default]=[{id}] for the id list
//  2. GET /api/products?filter[id]=[ID1|ID2|...] for the product fields
//  3. GET /api/stock_availables?filter[id_product]=[...] for quantities,
//     which many shops keep out of the product payload
func (c *Client) GetProductsByCategory(ctx context.Context, categoryID string, limit int) ([]domain.Product, error) {
	if limit <= 0 {
		limit = 50
	}

	listURL := fmt.Sprintf("%s/api/products?%s", c.baseURL, c.query(url.Values{
		"filter[id_category_default]": {fmt.Sprintf("[%s]", categoryID)},
		"limit":                       {strconv.Itoa(limit)},
	}))
	var list struct {
		Products []productPayload `json:"products"`
	}
	if err := c.getJSON(ctx, listURL, &list); err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			return []domain.Product{}, nil
		}
		return nil, err
	}

	ids := make([]string, 0, len(list.Products))
	for i := range list.Products {
		if id := strings.TrimSpace(string(list.Products[i].ID)); id != "" && id != "0" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return []domain.Product{}, nil
	}
	idsFilter := fmt.Sprintf("[%s]", strings.Join(ids, "|"))

	batchURL := fmt.Sprintf("%s/api/products?%s", c.baseURL, c.query(url.Values{
		"filter[id]": {idsFilter},
		// Only the fields scoring needs, to keep the batch small.
		"display": {"[id,name,id_category_default,price,manufacturer_name,reference]"},
	}))
	var batch struct {
		Products []productPayload `json:"products"`
	}
	if err := c.getJSON(ctx, batchURL, &batch); err != nil {
		return nil, err
	}

	products := make(map[string]*domain.Product, len(batch.Products))
	order := make([]string, 0, len(batch.Products))
	for i := range batch.Products {
		product := mapToProduct(&batch.Products[i])
		if product == nil {
			continue
		}
		if _, seen := products[product.ID]; !seen {
			order = append(order, product.ID)
		}
		products[product.ID] = product
	}

	stockURL := fmt.Sprintf("%s/api/stock_availables?%s", c.baseURL, c.query(url.Values{
		"filter[id_product]": {idsFilter},
		"display":            {"[id_product,quantity]"},
	}))
	var stock struct {
		StockAvailables []stockPayload `json:"stock_availables"`
	}
	if err := c.getJSON(ctx, stockURL, &stock); err != nil {
		return nil, err
	}
	for _, item := range stock.StockAvailables {
		product, ok := products[strings.TrimSpace(string(item.ProductID))]
		if !ok {
			continue
		}
		if qty, err := strconv.Atoi(strings.TrimSpace(string(item.Quantity))); err == nil {
			product.Quantity = qty
		}
	}

	result := make([]domain.Product, 0, len(order))
	for _, id := range order {
		result = append(result, *products[id])
	}

	if c.debug {
		log.Printf("[PRESTASHOP] category fetch category=%s fetched=%d", categoryID, len(result))
	}
	return result, nil
}

// HealthCheck tests webservice connectivity. A 401 means the API answered
// but wants credentials on HEAD, which is good enough.
func (c *Client) HealthCheck(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.baseURL+"/api", nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()

	return resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusUnauthorized
}
