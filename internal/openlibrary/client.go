package openlibrary

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Doc is one result document from the Open Library search API
type Doc struct {
	Title            string   `json:"title"`
	AuthorNames      []string `json:"author_name"`
	ISBNs            []string `json:"isbn"`
	CoverID          int64    `json:"cover_i"`
	FirstPublishYear int      `json:"first_publish_year"`
	Publishers       []string `json:"publisher"`
	MedianPageCount  int      `json:"number_of_pages_median"`
	Subjects         []string `json:"subject"`
}

// Client is a minimal Open Library search client
type Client struct {
	BaseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a new Open Library client. Open Library allows roughly
// 100 requests per 5 minutes, so calls are rate limited client-side; the
// limiter makes the client safe to share across concurrent resolutions.
func NewClient() *Client {
	return &Client{
		BaseURL: "https://openlibrary.org",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Every(400*time.Millisecond), 2),
	}
}

// Search runs a general free-text query
func (c *Client) Search(ctx context.Context, query string, limit int) ([]Doc, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(limit))
	return c.search(ctx, params)
}

// SearchTitle runs a title-scoped query
func (c *Client) SearchTitle(ctx context.Context, title string, limit int) ([]Doc, error) {
	params := url.Values{}
	params.Set("title", title)
	params.Set("limit", strconv.Itoa(limit))
	return c.search(ctx, params)
}

func (c *Client) search(ctx context.Context, params url.Values) ([]Doc, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params.Set("fields", "title,author_name,isbn,cover_i,first_publish_year,publisher,number_of_pages_median,subject")
	searchURL := fmt.Sprintf("%s/search.json?%s", c.BaseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, "GET", searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create search request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query Open Library: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("open Library API returned status %d: %s", resp.StatusCode, string(body))
	}

	var result struct {
		Docs []Doc `json:"docs"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode Open Library response: %w", err)
	}

	return result.Docs, nil
}

// CoverURL returns the medium cover image URL for a cover identifier, or ""
// when the document has no cover.
func CoverURL(coverID int64) string {
	if coverID == 0 {
		return ""
	}
	return fmt.Sprintf("https://covers.openlibrary.org/b/id/%d-M.jpg", coverID)
}

// CleanISBN removes hyphens and normalizes an ISBN
func CleanISBN(isbn string) string {
	return strings.ReplaceAll(strings.TrimSpace(isbn), "-", "")
}
