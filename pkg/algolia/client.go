package algolia

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/calebmorris/cartly-backend/pkg/config"
	pkgerrors "github.com/calebmorris/cartly-backend/pkg/errors"
	"github.com/calebmorris/cartly-backend/pkg/types"
)

const (
	defaultMaxResults          = 10
	responseBodyReadLimit int64 = 1024
)

var (
	errAppIDRequired  = errors.New("algolia application id is required")
	errAPIKeyRequired = errors.New("algolia api key is required")
)

// Client queries the grocer's product index through the multi-query
// endpoint. Only the search-only API key is ever configured here.
type Client struct {
	httpClient *http.Client
	baseURL    string
	appID      string
	apiKey     string
	indexName  string
	maxResults int
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the derived query endpoint, used in tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// NewClient builds an Algolia search client from configuration.
func NewClient(cfg config.AlgoliaConfig, opts ...Option) (*Client, error) {
	appID := strings.TrimSpace(cfg.AppID)
	if appID == "" {
		return nil, errAppIDRequired
	}
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errAPIKeyRequired
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := &Client{
		appID:      appID,
		apiKey:     apiKey,
		indexName:  cfg.IndexName,
		maxResults: cfg.MaxResults,
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
	if client.indexName == "" {
		client.indexName = "products"
	}
	if client.maxResults <= 0 {
		client.maxResults = defaultMaxResults
	}
	if client.baseURL == "" {
		client.baseURL = fmt.Sprintf("https://%s-dsn.algolia.net/1/indexes/*/queries", strings.ToLower(appID))
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	return client, nil
}

type queryRequest struct {
	IndexName   string `json:"indexName"`
	Query       string `json:"query"`
	HitsPerPage int    `json:"hitsPerPage"`
	Filters     string `json:"filters"`
}

type queriesPayload struct {
	Requests []queryRequest `json:"requests"`
}

type hit struct {
	ProductName      string           `json:"productName"`
	PriceInStore     *inStorePrice    `json:"price_inStore"`
	Planogram        *planogram       `json:"planogram"`
	Categories       []string         `json:"categories"`
	Images           []string         `json:"images"`
	IsSoldByWeight   bool             `json:"isSoldByWeight"`
	OnlineSellByUnit string           `json:"onlineSellByUnit"`
	OnlineWeight     float64          `json:"onlineApproxUnitWeight"`
}

type inStorePrice struct {
	Amount    float64 `json:"amount"`
	UnitPrice *string `json:"unitPrice"`
}

type planogram struct {
	Aisle string `json:"aisle"`
}

type queriesResponse struct {
	Results []struct {
		Hits []hit `json:"hits"`
	} `json:"results"`
}

// SearchProducts runs an in-store product search scoped to a store number.
func (c *Client) SearchProducts(ctx context.Context, query string, storeNumber int) (types.ProductResults, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "algolia client not configured")
	}
	if strings.TrimSpace(query) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "search query is required")
	}

	payload, err := json.Marshal(queriesPayload{
		Requests: []queryRequest{{
			IndexName:   c.indexName,
			Query:       query,
			HitsPerPage: c.maxResults,
			Filters:     fmt.Sprintf("storeNumber:%d AND fulfilmentType:instore", storeNumber),
		}},
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal search request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build search request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-algolia-api-key", c.apiKey)
	httpReq.Header.Set("x-algolia-application-id", c.appID)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute search request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "search request failed")
	}

	var apiResp queriesResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode search response")
	}
	if len(apiResp.Results) == 0 {
		return types.ProductResults{}, nil
	}

	products := make(types.ProductResults, 0, len(apiResp.Results[0].Hits))
	for _, h := range apiResp.Results[0].Hits {
		if h.ProductName == "" {
			continue
		}
		product := types.ProductResult{
			Name:           h.ProductName,
			Price:          extractPrice(h),
			Aisle:          extractAisle(h),
			Image:          extractImage(h),
			IsSoldByWeight: h.IsSoldByWeight,
			SellByUnit:     h.OnlineSellByUnit,
			ApproxWeight:   h.OnlineWeight,
			SearchTerm:     query,
		}
		if h.PriceInStore != nil {
			product.UnitPrice = h.PriceInStore.UnitPrice
		}
		if product.SellByUnit == "" {
			product.SellByUnit = "Each"
		}
		products = append(products, product)
	}
	return products, nil
}

func extractPrice(h hit) string {
	if h.PriceInStore != nil && h.PriceInStore.Amount > 0 {
		return fmt.Sprintf("$%.2f", h.PriceInStore.Amount)
	}
	return "$0.00"
}

func extractAisle(h hit) string {
	if h.Planogram != nil && h.Planogram.Aisle != "" {
		return h.Planogram.Aisle
	}
	if len(h.Categories) > 0 {
		return h.Categories[0]
	}
	return "Unknown"
}

func extractImage(h hit) string {
	if len(h.Images) > 0 {
		return h.Images[0]
	}
	return ""
}
