// internal/adapters/appwrite/client.go
package appwrite

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"listing_seeder/internal/adapters/observability"
	"listing_seeder/internal/domain"
)

type Client struct {
	base    string
	hc      *http.Client
	project string
	key     string
	rl      *rate.Limiter
}

func New(base, project, key string, rps int) (*Client, error) {
	if base == "" {
		return nil, fmt.Errorf("%w: appwrite endpoint is required", domain.ErrConfiguration)
	}
	if project == "" {
		return nil, fmt.Errorf("%w: appwrite project id is required", domain.ErrConfiguration)
	}
	if key == "" {
		return nil, fmt.Errorf("%w: appwrite API key is required", domain.ErrConfiguration)
	}
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		base:    strings.TrimRight(base, "/"),
		hc:      &http.Client{Timeout: 20 * time.Second},
		project: project,
		key:     key,
		rl:      rate.NewLimiter(rate.Limit(rps), 1),
	}, nil
}

// ---- domain.DocumentStore ----

func (c *Client) ListDocuments(ctx context.Context, databaseID, collectionID string) ([]domain.Document, error) {
	var out struct {
		Total     int              `json:"total"`
		Documents []map[string]any `json:"documents"`
	}
	if err := c.do(ctx, "list", http.MethodGet, c.documentsURL(databaseID, collectionID), nil, &out); err != nil {
		return nil, err
	}
	docs := make([]domain.Document, 0, len(out.Documents))
	for _, raw := range out.Documents {
		d, err := toDocument(raw)
		if err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, nil
}

func (c *Client) CreateDocument(ctx context.Context, databaseID, collectionID, documentID string, data map[string]any) (domain.Document, error) {
	body := map[string]any{"documentId": documentID, "data": data}
	var raw map[string]any
	if err := c.do(ctx, "create", http.MethodPost, c.documentsURL(databaseID, collectionID), body, &raw); err != nil {
		return domain.Document{}, err
	}
	return toDocument(raw)
}

func (c *Client) DeleteDocument(ctx context.Context, databaseID, collectionID, documentID string) error {
	u := c.documentsURL(databaseID, collectionID) + "/" + url.PathEscape(documentID)
	return c.do(ctx, "delete", http.MethodDelete, u, nil, nil)
}

// ---- Internals ----

var (
	ErrNotFound     = &domain.CodedError{Code: "not_found", Msg: "appwrite: not found"}
	ErrUnauthorized = &domain.CodedError{Code: "unauthorized", Msg: "appwrite: unauthorized"}
	ErrRateLimited  = &domain.CodedError{Code: "rate_limited", Msg: "appwrite: rate limited"}
)

// APIError carries the error body Appwrite returns for other non-2xx responses.
type APIError struct {
	Status  int
	Type    string
	Message string
}

func (e *APIError) ErrorCode() string { return fmt.Sprintf("http_%d", e.Status) }

func (e *APIError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("appwrite %d %s: %s", e.Status, e.Type, e.Message)
	}
	return fmt.Sprintf("appwrite %d: %s", e.Status, e.Message)
}

func (c *Client) documentsURL(databaseID, collectionID string) string {
	return fmt.Sprintf("%s/databases/%s/collections/%s/documents",
		c.base, url.PathEscape(databaseID), url.PathEscape(collectionID))
}

// do performs one rate-limited request. Failed calls are not retried; the
// seeder records the failure and moves on.
func (c *Client) do(ctx context.Context, endpoint, method, u string, in, out any) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s body: %w", endpoint, err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return err
	}
	req.Header.Set("X-Appwrite-Project", c.project)
	req.Header.Set("X-Appwrite-Key", c.key)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "listing-seeder/1.0")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		observability.ObserveExternal("appwrite", endpoint, 0, time.Since(start))
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	defer resp.Body.Close()
	observability.ObserveExternal("appwrite", endpoint, resp.StatusCode, time.Since(start))

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		if out == nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			return nil
		}
		return json.NewDecoder(resp.Body).Decode(out)

	case http.StatusNoContent:
		return nil

	case http.StatusNotFound:
		return ErrNotFound

	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized

	case http.StatusTooManyRequests:
		return ErrRateLimited

	default:
		// read a small error body for diagnostics
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		apiErr := &APIError{Status: resp.StatusCode}
		var payload struct {
			Message string `json:"message"`
			Type    string `json:"type"`
		}
		if json.Unmarshal(b, &payload) == nil && payload.Message != "" {
			apiErr.Message, apiErr.Type = payload.Message, payload.Type
		} else {
			apiErr.Message = strings.TrimSpace(string(b))
		}
		return apiErr
	}
}

// toDocument splits Appwrite's "$"-prefixed system attributes from the user fields.
func toDocument(raw map[string]any) (domain.Document, error) {
	id, _ := raw["$id"].(string)
	if id == "" {
		return domain.Document{}, errors.New("appwrite: document without $id")
	}
	data := make(map[string]any, len(raw))
	for k, v := range raw {
		if strings.HasPrefix(k, "$") {
			continue
		}
		data[k] = v
	}
	return domain.Document{ID: id, Data: data}, nil
}
