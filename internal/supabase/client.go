// Package supabase is a minimal client for the hosted store's REST surface:
// batched upsert-by-POST with declared conflict keys, and offset/limit
// pagination on GET. Authentication is a static service key sent both as an
// apikey header and a bearer credential.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/ignite/contact-sync/internal/pkg/httpretry"
)

// preferUpsert tells the store to resolve conflicts by merging duplicates
// and to suppress the response body.
const preferUpsert = "resolution=merge-duplicates,return=minimal"

// Config holds the store endpoint and credential.
type Config struct {
	BaseURL    string
	ServiceKey string
	Timeout    time.Duration
}

// Client is the hosted-store API client.
type Client struct {
	baseURL    string
	serviceKey string
	httpClient httpretry.HTTPDoer
}

// NewClient creates a store client with retrying transport.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		serviceKey: cfg.ServiceKey,
		httpClient: httpretry.NewRetryClient(&http.Client{Timeout: timeout}, 3),
	}
}

// SetHTTPClient sets a custom HTTP client (useful for testing).
func (c *Client) SetHTTPClient(client httpretry.HTTPDoer) {
	c.httpClient = client
}

// Contact is the store's native contact row. Optional attributes are
// pointers so empty source fields serialize as JSON null; the store's bulk
// insert requires every row in a batch to carry the same keys.
type Contact struct {
	Email        string   `json:"email"`
	FirstName    *string  `json:"first_name"`
	LastName     *string  `json:"last_name"`
	Company      *string  `json:"company"`
	SourceCode   *string  `json:"source_code"`
	Industry     *string  `json:"industry"`
	RecordType   *string  `json:"record_type"`
	Tags         []string `json:"tags"`
	Unsubscribed bool     `json:"unsubscribed"`
	ClientID     string   `json:"client_id"`
}

// Tag is one row of the denormalized tag-frequency table.
type Tag struct {
	Name         string `json:"name"`
	ClientID     string `json:"client_id"`
	ContactCount int    `json:"contact_count"`
}

// ContactTags is the tags-only projection returned by pagination.
type ContactTags struct {
	Tags []string `json:"tags"`
}

// UpsertContacts upserts one batch of contacts. The conflict key
// (email, client_id) makes repeated runs idempotent: re-uploading the same
// input overwrites rows instead of duplicating them.
func (c *Client) UpsertContacts(ctx context.Context, contacts []Contact) error {
	query := url.Values{"on_conflict": {"email,client_id"}}
	return c.post(ctx, "/rest/v1/contacts", query, contacts)
}

// UpsertTags upserts one batch of tag-frequency rows, keyed on
// (name, client_id) so re-derivation recomputes counts rather than
// incrementing them.
func (c *Client) UpsertTags(ctx context.Context, tags []Tag) error {
	query := url.Values{"on_conflict": {"name,client_id"}}
	return c.post(ctx, "/rest/v1/tags", query, tags)
}

// FetchContactTags returns one page of stored tag lists for a tenant. An
// empty page signals the end of pagination.
func (c *Client) FetchContactTags(ctx context.Context, clientID string, offset, limit int) ([]ContactTags, error) {
	query := url.Values{
		"client_id": {"eq." + clientID},
		"select":    {"tags"},
		"offset":    {strconv.Itoa(offset)},
		"limit":     {strconv.Itoa(limit)},
	}

	body, err := c.doRequest(ctx, http.MethodGet, "/rest/v1/contacts", query, nil, "")
	if err != nil {
		return nil, err
	}

	var page []ContactTags
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("parse contacts page: %w", err)
	}
	return page, nil
}

func (c *Client) post(ctx context.Context, endpoint string, query url.Values, payload interface{}) error {
	_, err := c.doRequest(ctx, http.MethodPost, endpoint, query, payload, preferUpsert)
	return err
}

// doRequest performs an authenticated request against the store.
func (c *Client) doRequest(ctx context.Context, method, endpoint string, query url.Values, body interface{}, prefer string) ([]byte, error) {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	reqURL := c.baseURL + endpoint
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("apikey", c.serviceKey)
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	return respBody, nil
}
