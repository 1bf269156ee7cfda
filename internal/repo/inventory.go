package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/graphsight/graphsight/internal/models"
)

// InventoryClient fetches topology and event seed data from a remote
// inventory (CMDB) service.
type InventoryClient struct {
	baseURL      string
	topologyPath string
	eventsPath   string
	httpClient   *http.Client
}

// NewInventoryClient constructs a client targeting the configured inventory.
func NewInventoryClient(baseURL, topologyPath, eventsPath string, timeout time.Duration) *InventoryClient {
	return &InventoryClient{
		baseURL:      strings.TrimRight(baseURL, "/"),
		topologyPath: topologyPath,
		eventsPath:   eventsPath,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// FetchTopology retrieves the full component and relationship inventory.
func (c *InventoryClient) FetchTopology(ctx context.Context) ([]models.ConfigurationItem, []models.Relationship, error) {
	if c == nil || c.baseURL == "" {
		return nil, nil, fmt.Errorf("inventory base URL not configured")
	}

	var response struct {
		Items         []models.ConfigurationItem `json:"items"`
		Relationships []models.Relationship      `json:"relationships"`
	}
	if err := c.getJSON(ctx, c.baseURL+c.topologyPath, &response); err != nil {
		return nil, nil, fmt.Errorf("inventory topology request failed: %w", err)
	}
	return response.Items, response.Relationships, nil
}

// FetchEvents retrieves the current open event set.
func (c *InventoryClient) FetchEvents(ctx context.Context) ([]models.Event, error) {
	if c == nil || c.baseURL == "" {
		return nil, fmt.Errorf("inventory base URL not configured")
	}

	var response struct {
		Events []models.Event `json:"events"`
	}
	if err := c.getJSON(ctx, c.baseURL+c.eventsPath, &response); err != nil {
		return nil, fmt.Errorf("inventory events request failed: %w", err)
	}
	return response.Events, nil
}

func (c *InventoryClient) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
