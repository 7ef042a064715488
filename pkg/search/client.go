// Package search keeps the Meilisearch property index in step with listings.
package search

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/estatehub/estatehub-backend/pkg/config"
	"github.com/meilisearch/meilisearch-go"
)

var ErrDisabled = errors.New("search is not configured")

var (
	filterableAttributes = []string{"city", "property_type", "operation_type", "listing_status", "price", "bedrooms"}
	sortableAttributes   = []string{"price", "created_at"}
	searchableAttributes = []string{"title", "description", "address_line", "city", "state", "zip_code"}
)

// Document is the indexed projection of a property.
type Document struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	AddressLine   string  `json:"address_line"`
	City          string  `json:"city"`
	State         string  `json:"state"`
	ZipCode       string  `json:"zip_code"`
	PropertyType  string  `json:"property_type"`
	OperationType string  `json:"operation_type"`
	ListingStatus string  `json:"listing_status"`
	Price         float64 `json:"price"`
	Bedrooms      int     `json:"bedrooms"`
	CreatedAt     int64   `json:"created_at"`
}

// Query narrows a full-text search. Zero values are ignored.
type Query struct {
	Text          string
	City          string
	PropertyType  string
	OperationType string
	OnlyActive    bool
	Limit         int64
	Offset        int64
}

// Result carries matched property IDs in relevance order.
type Result struct {
	IDs   []string
	Total int64
}

type Client struct {
	client *meilisearch.Client
	uid    string
}

func New(cfg config.SearchConfig) (*Client, error) {
	if !cfg.Enabled() {
		return nil, ErrDisabled
	}
	uid := strings.TrimSpace(cfg.Index)
	if uid == "" {
		uid = "properties"
	}
	client := meilisearch.NewClient(meilisearch.ClientConfig{
		Host:   strings.TrimSpace(cfg.Host),
		APIKey: cfg.APIKey,
	})
	return &Client{client: client, uid: uid}, nil
}

// EnsureIndex creates the index and applies its settings. Safe to repeat.
func (c *Client) EnsureIndex(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	// Creation is an async task; an existing index fails the task, not the call.
	if _, err := c.client.CreateIndex(&meilisearch.IndexConfig{Uid: c.uid, PrimaryKey: "id"}); err != nil {
		return fmt.Errorf("create search index: %w", err)
	}
	index := c.client.Index(c.uid)
	if _, err := index.UpdateFilterableAttributes(&filterableAttributes); err != nil {
		return fmt.Errorf("update filterable attributes: %w", err)
	}
	if _, err := index.UpdateSortableAttributes(&sortableAttributes); err != nil {
		return fmt.Errorf("update sortable attributes: %w", err)
	}
	if _, err := index.UpdateSearchableAttributes(&searchableAttributes); err != nil {
		return fmt.Errorf("update searchable attributes: %w", err)
	}
	return nil
}

// Upsert enqueues documents for indexing; Meilisearch applies them asynchronously.
func (c *Client) Upsert(ctx context.Context, docs ...Document) error {
	if len(docs) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := c.client.Index(c.uid).AddDocuments(docs, "id"); err != nil {
		return fmt.Errorf("index %d documents: %w", len(docs), err)
	}
	return nil
}

func (c *Client) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := c.client.Index(c.uid).DeleteDocument(id); err != nil {
		return fmt.Errorf("delete document %s: %w", id, err)
	}
	return nil
}

func (c *Client) Search(ctx context.Context, q Query) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 20
	}
	req := &meilisearch.SearchRequest{
		Limit:                limit,
		Offset:               q.Offset,
		AttributesToRetrieve: []string{"id"},
	}
	if filter := buildFilter(q); filter != "" {
		req.Filter = filter
	}

	resp, err := c.client.Index(c.uid).Search(q.Text, req)
	if err != nil {
		return nil, fmt.Errorf("search properties: %w", err)
	}
	return &Result{IDs: hitIDs(resp.Hits), Total: resp.EstimatedTotalHits}, nil
}

func (c *Client) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !c.client.IsHealthy() {
		return errors.New("meilisearch is unhealthy")
	}
	return nil
}

func buildFilter(q Query) string {
	var clauses []string
	add := func(attr, value string) {
		if value = strings.TrimSpace(value); value != "" {
			clauses = append(clauses, fmt.Sprintf("%s = %s", attr, strconv.Quote(value)))
		}
	}
	add("city", q.City)
	add("property_type", q.PropertyType)
	add("operation_type", q.OperationType)
	if q.OnlyActive {
		add("listing_status", "active")
	}
	return strings.Join(clauses, " AND ")
}

func hitIDs(hits []interface{}) []string {
	ids := make([]string, 0, len(hits))
	for _, hit := range hits {
		doc, ok := hit.(map[string]interface{})
		if !ok {
			continue
		}
		if id, ok := doc["id"].(string); ok && id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
