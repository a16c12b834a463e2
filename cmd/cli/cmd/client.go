package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"storeplane/pkg/api"
)

// StoreClient handles API calls to the storeplane controller.
type StoreClient struct {
	BaseURL    string
	OwnerID    string
	HTTPClient *http.Client
}

// NewStoreClient creates a new client with the given base URL and owner identity.
func NewStoreClient(baseURL, ownerID string) *StoreClient {
	return &StoreClient{
		BaseURL: baseURL,
		OwnerID: ownerID,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// APIError represents an error response from the API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.StatusCode, e.Message)
}

// do issues one request and decodes the response into out (unless nil).
// Non-2xx responses become an *APIError carrying the body.
func (c *StoreClient) do(method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(bodyBytes)
	}

	httpReq, err := http.NewRequest(method, c.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Add("X-User-ID", c.OwnerID)
	httpReq.Header.Add("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// CreateStore sends POST /stores to provision a new store.
func (c *StoreClient) CreateStore(req api.CreateStoreRequest) (*api.StoreResponse, error) {
	var result api.StoreResponse
	if err := c.do(http.MethodPost, "/stores", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListStores sends GET /stores.
func (c *StoreClient) ListStores() ([]api.StoreResponse, error) {
	var result api.ListStoresResponse
	if err := c.do(http.MethodGet, "/stores", nil, &result); err != nil {
		return nil, err
	}
	return result.Stores, nil
}

// GetStore sends GET /stores/{id}.
func (c *StoreClient) GetStore(storeID string) (*api.StoreResponse, error) {
	var result api.StoreResponse
	if err := c.do(http.MethodGet, "/stores/"+storeID, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetStatus sends GET /stores/{id}/status.
func (c *StoreClient) GetStatus(storeID string) (*api.StoreStatusResponse, error) {
	var result api.StoreStatusResponse
	if err := c.do(http.MethodGet, "/stores/"+storeID+"/status", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetLogs sends GET /stores/{id}/logs.
func (c *StoreClient) GetLogs(storeID, pod string, tail int) (*api.StoreLogsResponse, error) {
	path := fmt.Sprintf("/stores/%s/logs?tail=%d", storeID, tail)
	if pod != "" {
		path += "&pod=" + pod
	}
	var result api.StoreLogsResponse
	if err := c.do(http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetAudit sends GET /stores/{id}/audit.
func (c *StoreClient) GetAudit(storeID string) ([]api.AuditEventResponse, error) {
	var result api.AuditTrailResponse
	if err := c.do(http.MethodGet, "/stores/"+storeID+"/audit", nil, &result); err != nil {
		return nil, err
	}
	return result.Events, nil
}

// GetRecentAudit sends GET /audit.
func (c *StoreClient) GetRecentAudit(limit int) ([]api.AuditEventResponse, error) {
	path := "/audit"
	if limit > 0 {
		path = fmt.Sprintf("/audit?limit=%d", limit)
	}
	var result api.AuditTrailResponse
	if err := c.do(http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return result.Events, nil
}

// DeleteStore sends DELETE /stores/{id}.
func (c *StoreClient) DeleteStore(storeID string) error {
	return c.do(http.MethodDelete, "/stores/"+storeID, nil, nil)
}

// RetryStore sends POST /stores/{id}/retry.
func (c *StoreClient) RetryStore(storeID string) (*api.RetryStoreResponse, error) {
	var result api.RetryStoreResponse
	if err := c.do(http.MethodPost, "/stores/"+storeID+"/retry", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetMetrics sends GET /metrics/stores.
func (c *StoreClient) GetMetrics() (*api.StoreMetricsResponse, error) {
	var result api.StoreMetricsResponse
	if err := c.do(http.MethodGet, "/metrics/stores", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
