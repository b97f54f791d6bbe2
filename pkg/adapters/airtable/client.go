// Package airtable reads source records from an Airtable table over its REST API.
package airtable

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/viben/internal/logging"
	"github.com/aretw0/viben/pkg/domain"
	"github.com/aretw0/viben/pkg/ports"
)

const (
	DefaultBaseURL  = "https://api.airtable.com/v0"
	DefaultBaseID   = "appaqQIbI9RJJvXPm"
	DefaultTableID  = "tblkhO6bbpOjGkHpF"
	DefaultPageSize = 20
	maxPageSize     = 100
)

// listFields is the projection requested for listings; transcripts and steps are left out.
var listFields = []string{
	"job_id",
	"source",
	"source_url",
	"author",
	"title",
	"thumbnail_image",
	"ai_editor_summary",
	"ai_editor_tags",
	"ai_editor_title",
	"difficulty_level",
	"video_duration_s",
	"view_count",
	"published_at",
}

// Client implements ports.RecordSource.
type Client struct {
	baseURL string
	baseID  string
	tableID string
	token   string
	http    *http.Client
	logger  *slog.Logger
}

// Option configures the Client.
type Option func(*Client)

// WithBaseURL points the client at another API root, such as a test server.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithTable selects the base and table.
func WithTable(baseID, tableID string) Option {
	return func(c *Client) {
		if baseID != "" {
			c.baseID = baseID
		}
		if tableID != "" {
			c.tableID = tableID
		}
	}
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithLogger configures a logger for the Client.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a client authenticated with a personal access token.
func New(token string, opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		baseID:  DefaultBaseID,
		tableID: DefaultTableID,
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ ports.RecordSource = (*Client)(nil)

func (c *Client) tableURL() string {
	return c.baseURL + "/" + url.PathEscape(c.baseID) + "/" + url.PathEscape(c.tableID)
}

// List returns one page of YouTube records, newest first.
func (c *Client) List(ctx context.Context, q ports.RecordQuery) (*domain.RecordPage, error) {
	size := q.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	params := url.Values{}
	params.Set("pageSize", strconv.Itoa(size))
	params.Set("filterByFormula", Formula(q))
	params.Set("sort[0][field]", "published_at")
	params.Set("sort[0][direction]", "desc")
	for _, f := range listFields {
		params.Add("fields[]", f)
	}
	if q.Offset != "" {
		params.Set("offset", q.Offset)
	}

	var resp listResponse
	if err := c.get(ctx, c.tableURL()+"?"+params.Encode(), &resp); err != nil {
		return nil, err
	}

	page := &domain.RecordPage{Records: make([]domain.SourceRecord, 0, len(resp.Records)), Offset: resp.Offset}
	for _, raw := range resp.Records {
		rec, err := raw.toDomain()
		if err != nil {
			c.logger.Warn("skipping undecodable record", "record_id", raw.ID, "err", err)
			continue
		}
		page.Records = append(page.Records, *rec)
	}
	return page, nil
}

// Get returns one record with every field, transcript included.
func (c *Client) Get(ctx context.Context, id string) (*domain.SourceRecord, error) {
	if id == "" || strings.ContainsAny(id, "/?#") {
		return nil, domain.NewShapeError("recordId", "is not a valid record id")
	}
	var raw record
	if err := c.get(ctx, c.tableURL()+"/"+url.PathEscape(id), &raw); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			return nil, domain.NotFoundError("record", id)
		}
		return nil, err
	}
	return raw.toDomain()
}

// APIError reports a non-2xx response.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("airtable error %d: %s", e.Status, e.Body)
}

func (c *Client) get(ctx context.Context, u string, out any) error {
	if c.token == "" {
		return errors.New("airtable: access token not set")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("airtable request: %w", err)
	}
	defer resp.Body.Close()
	c.logger.Debug("airtable request", "url", req.URL.Path, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("airtable decode: %w", err)
	}
	return nil
}
