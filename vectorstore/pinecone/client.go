package pinecone

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/poiesic/passage/vectorstore"
)

// Config holds the connection settings for one Pinecone index.
type Config struct {
	// IndexHost is the index's data-plane endpoint, e.g.
	// "https://my-index-abc1234.svc.aped-4627-b74a.pinecone.io".
	IndexHost string

	// APIKey authenticates data-plane requests.
	APIKey string

	// Namespace scopes all operations. Empty means the default namespace.
	Namespace string

	// Timeout bounds each HTTP request. Default: 30s.
	Timeout time.Duration
}

// Validate checks the config values.
func (c *Config) Validate() error {
	if c.IndexHost == "" {
		return errors.New("pinecone config: IndexHost is required")
	}
	if c.APIKey == "" {
		return errors.New("pinecone config: APIKey is required")
	}
	return nil
}

// Client talks to one Pinecone index over its REST data plane.
type Client struct {
	host      string
	apiKey    string
	namespace string
	client    *http.Client
	logger    *slog.Logger
}

// Pinecone data-plane request/response types
type upsertRequest struct {
	Vectors   []vectorstore.Record `json:"vectors"`
	Namespace string               `json:"namespace,omitempty"`
}

type upsertResponse struct {
	UpsertedCount int `json:"upsertedCount"`
}

type statsResponse struct {
	Namespaces map[string]struct {
		VectorCount int `json:"vectorCount"`
	} `json:"namespaces"`
	Dimension        int `json:"dimension"`
	TotalVectorCount int `json:"totalVectorCount"`
}

// NewClient creates a client for one index.
//
// Returns vectorstore.Upserter interface to enforce abstraction.
func NewClient(config *Config) (vectorstore.Upserter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	timeout := config.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		host:      strings.TrimSuffix(config.IndexHost, "/"),
		apiKey:    config.APIKey,
		namespace: config.Namespace,
		client:    &http.Client{Timeout: timeout},
		logger:    slog.Default().With("component", "pinecone"),
	}, nil
}

// Upsert writes a batch of vectors into the index.
func (c *Client) Upsert(ctx context.Context, records []vectorstore.Record) error {
	if len(records) == 0 {
		return nil
	}

	var resp upsertResponse
	err := c.post(ctx, "/vectors/upsert", upsertRequest{
		Vectors:   records,
		Namespace: c.namespace,
	}, &resp)
	if err != nil {
		return err
	}

	if resp.UpsertedCount != len(records) {
		c.logger.Warn("upsert count mismatch", "sent", len(records), "upserted", resp.UpsertedCount)
	}
	c.logger.Debug("upserted vectors", "count", resp.UpsertedCount)
	return nil
}

// Stats returns the index's vector count and dimension.
func (c *Client) Stats(ctx context.Context) (*vectorstore.IndexStats, error) {
	var resp statsResponse
	if err := c.post(ctx, "/describe_index_stats", struct{}{}, &resp); err != nil {
		return nil, err
	}

	total := resp.TotalVectorCount
	if c.namespace != "" {
		if ns, ok := resp.Namespaces[c.namespace]; ok {
			total = ns.VectorCount
		} else {
			total = 0
		}
	}

	return &vectorstore.IndexStats{
		TotalVectors: total,
		Dimension:    resp.Dimension,
	}, nil
}

// Close releases the client's resources.
func (c *Client) Close() error {
	c.client.CloseIdleConnections()
	return nil
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.host+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Api-Key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("pinecone API error (status %d): %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
