package openlibrary

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSearch(t *testing.T) {
	var gotQuery, gotLimit, gotFields string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotLimit = r.URL.Query().Get("limit")
		gotFields = r.URL.Query().Get("fields")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"docs": [
				{
					"title": "Dune",
					"author_name": ["Frank Herbert"],
					"isbn": ["9780441013593"],
					"cover_i": 12345,
					"first_publish_year": 1965,
					"publisher": ["Ace Books"],
					"number_of_pages_median": 412,
					"subject": ["Science fiction"]
				}
			]
		}`))
	}))
	defer server.Close()

	client := NewClient()
	client.BaseURL = server.URL

	docs, err := client.Search(context.Background(), "Dune Frank Herbert", 5)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if gotQuery != "Dune Frank Herbert" {
		t.Errorf("Expected q parameter %q, got %q", "Dune Frank Herbert", gotQuery)
	}
	if gotLimit != "5" {
		t.Errorf("Expected limit 5, got %q", gotLimit)
	}
	if gotFields == "" {
		t.Error("Expected a fields parameter to limit response size")
	}

	if len(docs) != 1 {
		t.Fatalf("Expected 1 doc, got %d", len(docs))
	}
	doc := docs[0]
	if doc.Title != "Dune" || doc.FirstPublishYear != 1965 || doc.CoverID != 12345 {
		t.Errorf("Unexpected doc: %+v", doc)
	}
	if doc.MedianPageCount != 412 {
		t.Errorf("Expected page count 412, got %d", doc.MedianPageCount)
	}
}

func TestSearchTitle(t *testing.T) {
	var gotTitle string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTitle = r.URL.Query().Get("title")
		w.Write([]byte(`{"docs": []}`))
	}))
	defer server.Close()

	client := NewClient()
	client.BaseURL = server.URL

	docs, err := client.SearchTitle(context.Background(), "Dune", 3)
	if err != nil {
		t.Fatalf("SearchTitle failed: %v", err)
	}
	if gotTitle != "Dune" {
		t.Errorf("Expected title parameter %q, got %q", "Dune", gotTitle)
	}
	if len(docs) != 0 {
		t.Errorf("Expected no docs, got %d", len(docs))
	}
}

func TestSearchServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient()
	client.BaseURL = server.URL

	if _, err := client.Search(context.Background(), "Dune", 5); err == nil {
		t.Fatal("Expected error for non-200 response")
	}
}

func TestCoverURL(t *testing.T) {
	if got := CoverURL(12345); got != "https://covers.openlibrary.org/b/id/12345-M.jpg" {
		t.Errorf("Unexpected cover URL: %q", got)
	}
	if got := CoverURL(0); got != "" {
		t.Errorf("Expected empty URL for missing cover, got %q", got)
	}
}

func TestCleanISBN(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"978-0-441-01359-3", "9780441013593"},
		{" 0441013597 ", "0441013597"},
		{"9780441013593", "9780441013593"},
	}

	for _, tt := range tests {
		if got := CleanISBN(tt.in); got != tt.want {
			t.Errorf("CleanISBN(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
