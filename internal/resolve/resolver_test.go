package resolve

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/lehigh-university-libraries/shelfscan/internal/models"
	"github.com/lehigh-university-libraries/shelfscan/internal/openlibrary"
)

type fakeSearcher struct {
	mu sync.Mutex

	// Responses keyed by query string; a missing key returns no results.
	general map[string][]openlibrary.Doc
	scoped  map[string][]openlibrary.Doc
	errs    map[string]error

	queries []string
}

func (f *fakeSearcher) Search(ctx context.Context, query string, limit int) ([]openlibrary.Doc, error) {
	return f.lookup(f.general, query)
}

func (f *fakeSearcher) SearchTitle(ctx context.Context, title string, limit int) ([]openlibrary.Doc, error) {
	return f.lookup(f.scoped, title)
}

func (f *fakeSearcher) lookup(m map[string][]openlibrary.Doc, query string) ([]openlibrary.Doc, error) {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	f.mu.Unlock()

	if err := f.errs[query]; err != nil {
		return nil, err
	}
	return m[query], nil
}

func TestResolveFirstStrategy(t *testing.T) {
	search := &fakeSearcher{
		general: map[string][]openlibrary.Doc{
			"Dune Frank Herbert": {
				{
					Title:            "Dune",
					AuthorNames:      []string{"Frank Herbert"},
					ISBNs:            []string{"9780441013593", "0441013597"},
					CoverID:          12345,
					FirstPublishYear: 1965,
					Publishers:       []string{"Ace Books"},
					MedianPageCount:  412,
					Subjects:         []string{"Science fiction", "Deserts", "Politics"},
				},
			},
		},
	}

	books := []models.IdentifiedBook{
		{Title: "Dune", Author: "Frank Herbert", Confidence: models.ConfidenceHigh},
	}
	enriched := New(search).Resolve(context.Background(), books)

	if len(enriched) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(enriched))
	}
	eb := enriched[0]
	if !eb.Matched {
		t.Fatal("Expected a matched record")
	}
	if eb.ISBN13 != "9780441013593" {
		t.Errorf("Expected ISBN13 9780441013593, got %q", eb.ISBN13)
	}
	if eb.ISBN10 != "0441013597" {
		t.Errorf("Expected ISBN10 0441013597, got %q", eb.ISBN10)
	}
	if eb.PublishYear != 1965 || eb.Publisher != "Ace Books" || eb.PageCount != 412 {
		t.Errorf("Unexpected bibliographic fields: %+v", eb)
	}
	if eb.Subjects != "Science fiction; Deserts; Politics" {
		t.Errorf("Unexpected subjects: %q", eb.Subjects)
	}
	if eb.CoverURL == "" {
		t.Error("Expected a cover URL for a document with a cover ID")
	}
	if eb.Confidence != models.ConfidenceHigh {
		t.Errorf("Identification fields must survive enrichment, got %+v", eb.IdentifiedBook)
	}
}

func TestResolvePreservesOrderAndCount(t *testing.T) {
	search := &fakeSearcher{
		general: map[string][]openlibrary.Doc{
			"Dune Frank Herbert": {
				{Title: "Dune", AuthorNames: []string{"Frank Herbert"}},
			},
			"Hyperion Dan Simmons": {
				{Title: "Hyperion", AuthorNames: []string{"Dan Simmons"}},
			},
		},
	}

	books := []models.IdentifiedBook{
		{Title: "Dune", Author: "Frank Herbert"},
		{Title: "No Such Book Anywhere", Author: "Nobody Real"},
		{Title: "Hyperion", Author: "Dan Simmons"},
	}
	enriched := New(search).Resolve(context.Background(), books)

	if len(enriched) != len(books) {
		t.Fatalf("Output must be 1:1 with input: got %d for %d books", len(enriched), len(books))
	}
	for i, book := range books {
		if enriched[i].IdentifiedBook.Title != book.Title {
			t.Errorf("Slot %d: expected %q, got %q", i, book.Title, enriched[i].IdentifiedBook.Title)
		}
	}
	if !enriched[0].Matched || enriched[1].Matched || !enriched[2].Matched {
		t.Errorf("Unexpected match flags: %v %v %v",
			enriched[0].Matched, enriched[1].Matched, enriched[2].Matched)
	}
}

func TestResolveEmptyList(t *testing.T) {
	enriched := New(&fakeSearcher{}).Resolve(context.Background(), nil)
	if len(enriched) != 0 {
		t.Errorf("Expected empty result for empty input, got %d", len(enriched))
	}
}

func TestResolveUnmatchedKeepsFields(t *testing.T) {
	book := models.IdentifiedBook{
		Title:      "An Obscure Zine",
		Author:     "Anonymous Printer",
		Confidence: models.ConfidenceLow,
		Corrected:  true,
	}
	enriched := New(&fakeSearcher{}).Resolve(context.Background(), []models.IdentifiedBook{book})

	eb := enriched[0]
	if eb.Matched {
		t.Fatal("Expected no match")
	}
	if eb.IdentifiedBook != book {
		t.Errorf("Unmatched record must carry the identification verbatim: %+v", eb.IdentifiedBook)
	}
	if eb.ISBN13 != "" || eb.ISBN10 != "" || eb.CoverURL != "" {
		t.Errorf("Unmatched record must not carry bibliographic fields: %+v", eb)
	}
}

func TestResolveCascadeAdvancesOnError(t *testing.T) {
	// The first strategy's query fails outright; the title-only strategy
	// should still find the book.
	search := &fakeSearcher{
		errs: map[string]error{
			"Dune Frank Herbert": errors.New("upstream timeout"),
		},
		general: map[string][]openlibrary.Doc{
			"Dune": {
				{Title: "Dune", AuthorNames: []string{"Frank Herbert"}},
			},
		},
	}

	books := []models.IdentifiedBook{{Title: "Dune", Author: "Frank Herbert"}}
	enriched := New(search).Resolve(context.Background(), books)

	if !enriched[0].Matched {
		t.Fatal("Expected cascade to advance past the failed strategy")
	}
}

func TestResolveSkipsKnockoffs(t *testing.T) {
	search := &fakeSearcher{
		general: map[string][]openlibrary.Doc{
			"Dune Frank Herbert": {
				{Title: "Summary of Dune", AuthorNames: []string{"Frank Herbert"}},
				{Title: "Dune", AuthorNames: []string{"Frank Herbert"}, FirstPublishYear: 1965},
			},
		},
	}

	books := []models.IdentifiedBook{{Title: "Dune", Author: "Frank Herbert"}}
	enriched := New(search).Resolve(context.Background(), books)

	if !enriched[0].Matched {
		t.Fatal("Expected a match past the knockoff")
	}
	if enriched[0].Title != "Dune" || enriched[0].PublishYear != 1965 {
		t.Errorf("Expected the real edition, got %+v", enriched[0])
	}
}

func TestResolveAuthorFilterFallsToAnyAuthor(t *testing.T) {
	// Every author-checked strategy sees only a wrong-author document;
	// the any-author title-scoped strategy finally accepts it.
	doc := openlibrary.Doc{Title: "Common Title", AuthorNames: []string{"Someone Else"}}
	search := &fakeSearcher{
		general: map[string][]openlibrary.Doc{
			"Common Title Obscure Author": {doc},
			"Common Title":                {doc},
		},
		scoped: map[string][]openlibrary.Doc{
			"Common Title": {doc},
		},
	}

	books := []models.IdentifiedBook{{Title: "Common Title", Author: "Obscure Author"}}
	enriched := New(search).Resolve(context.Background(), books)

	if !enriched[0].Matched {
		t.Fatal("Expected the any-author strategy to accept the document")
	}
	if enriched[0].Author != "Someone Else" {
		t.Errorf("Expected the document's author, got %q", enriched[0].Author)
	}

	// The cascade must have tried the author-checked strategies first.
	if len(search.queries) < 4 {
		t.Errorf("Expected at least 4 strategy queries, got %v", search.queries)
	}
}

func TestResolveUnknownAuthorQuery(t *testing.T) {
	// "Unknown" never appears in the search query.
	search := &fakeSearcher{
		general: map[string][]openlibrary.Doc{
			"Dune": {
				{Title: "Dune", AuthorNames: []string{"Frank Herbert"}},
			},
		},
	}

	books := []models.IdentifiedBook{{Title: "Dune", Author: "Unknown"}}
	enriched := New(search).Resolve(context.Background(), books)

	if !enriched[0].Matched {
		t.Fatal("Expected a match")
	}
	if search.queries[0] != "Dune" {
		t.Errorf("Expected first query %q, got %q", "Dune", search.queries[0])
	}
}

func TestResolveSubtitleStripped(t *testing.T) {
	search := &fakeSearcher{
		general: map[string][]openlibrary.Doc{
			"Sapiens": {
				{Title: "Sapiens", AuthorNames: []string{"Yuval Noah Harari"}},
			},
		},
	}

	books := []models.IdentifiedBook{
		{Title: "Sapiens: A Brief History of Humankind", Author: "Yuval Noah Harari"},
	}
	enriched := New(search).Resolve(context.Background(), books)

	if !enriched[0].Matched {
		t.Fatal("Expected the subtitle-stripped strategy to match")
	}
}

func TestResolveRejectsUnrelatedTopResult(t *testing.T) {
	// The search service returns something entirely unrelated for every
	// strategy; the title-overlap guard must reject it each time.
	doc := openlibrary.Doc{Title: "Cooking for Beginners"}
	search := &fakeSearcher{
		general: map[string][]openlibrary.Doc{
			"Neuromancer William Gibson": {doc},
			"Neuromancer":                {doc},
		},
		scoped: map[string][]openlibrary.Doc{
			"Neuromancer": {doc},
		},
	}

	books := []models.IdentifiedBook{{Title: "Neuromancer", Author: "William Gibson"}}
	enriched := New(search).Resolve(context.Background(), books)

	if enriched[0].Matched {
		t.Errorf("Expected no match against unrelated document, got %+v", enriched[0])
	}
}
