package resolve

import (
	"context"
	"log/slog"
	"strings"

	"github.com/lehigh-university-libraries/shelfscan/internal/models"
	"github.com/lehigh-university-libraries/shelfscan/internal/openlibrary"
	"golang.org/x/sync/errgroup"
)

// Searcher is the bibliographic search surface the resolver needs.
// *openlibrary.Client satisfies it; tests substitute a fake.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]openlibrary.Doc, error)
	SearchTitle(ctx context.Context, title string, limit int) ([]openlibrary.Doc, error)
}

// strategy is one step of the resolution cascade: how to build the query,
// which search surface to hit, and whether the author filter applies.
// New strategies are appended to the list; existing ones are never touched.
type strategy struct {
	name          string
	query         func(title, author string) string
	titleScoped   bool
	requireAuthor bool
}

func strategies() []strategy {
	return []strategy{
		{
			name: "title+author",
			query: func(title, author string) string {
				if author == "" || strings.EqualFold(author, "unknown") {
					return title
				}
				return title + " " + author
			},
			requireAuthor: true,
		},
		{
			name:          "title",
			query:         func(title, _ string) string { return title },
			requireAuthor: true,
		},
		{
			name:          "title-scoped",
			query:         func(title, _ string) string { return title },
			titleScoped:   true,
			requireAuthor: true,
		},
		{
			name: "subtitle-stripped",
			query: func(title, _ string) string {
				if stripped := stripSubtitle(title); stripped != title {
					return stripped
				}
				// Same query as the plain title strategy; skip.
				return ""
			},
			requireAuthor: true,
		},
		// Last resorts: accept any author.
		{
			name:        "title-scoped-any-author",
			query:       func(title, _ string) string { return title },
			titleScoped: true,
		},
		{
			name: "subtitle-stripped-any-author",
			query: func(title, _ string) string {
				if stripped := stripSubtitle(title); stripped != title {
					return stripped
				}
				return ""
			},
		},
	}
}

// Resolver resolves identified books against a bibliographic search service
type Resolver struct {
	search Searcher

	// Candidates inspected per strategy; results beyond this are assumed
	// to be too low-relevance to trust.
	docLimit int

	// Concurrent resolutions in flight.
	workers int
}

// New creates a resolver backed by the given search client
func New(search Searcher) *Resolver {
	return &Resolver{
		search:   search,
		docLimit: 5,
		workers:  4,
	}
}

// Resolve enriches each identified book with bibliographic identifiers.
// The output is strictly 1:1 with the input and order-preserving: resolution
// failure degrades a record to matched=false, never removes it.
func (r *Resolver) Resolve(ctx context.Context, books []models.IdentifiedBook) []models.EnrichedBook {
	enriched := make([]models.EnrichedBook, len(books))

	var g errgroup.Group
	g.SetLimit(r.workers)
	for i, book := range books {
		g.Go(func() error {
			enriched[i] = r.resolveOne(ctx, book)
			return nil
		})
	}
	// Workers only write to their own slot and never return an error.
	_ = g.Wait()

	return enriched
}

func (r *Resolver) resolveOne(ctx context.Context, book models.IdentifiedBook) models.EnrichedBook {
	for _, st := range strategies() {
		if ctx.Err() != nil {
			break
		}

		query := st.query(book.Title, book.Author)
		if query == "" {
			continue
		}

		var docs []openlibrary.Doc
		var err error
		if st.titleScoped {
			docs, err = r.search.SearchTitle(ctx, query, r.docLimit)
		} else {
			docs, err = r.search.Search(ctx, query, r.docLimit)
		}
		if err != nil {
			// A failed strategy advances the cascade.
			slog.Warn("Search strategy failed",
				"strategy", st.name, "title", book.Title, "error", err)
			continue
		}

		// Results are relevance-ranked; take the first acceptable one.
		for _, doc := range docs {
			if isKnockoff(book.Title, doc.Title) {
				continue
			}
			if st.requireAuthor && !authorsMatch(book.Author, doc.AuthorNames) {
				continue
			}
			if !titleOverlaps(book.Title, doc.Title) {
				continue
			}
			slog.Debug("Resolved book",
				"title", book.Title, "strategy", st.name, "matched_title", doc.Title)
			return enrich(book, doc)
		}
	}

	slog.Debug("All strategies exhausted", "title", book.Title)
	return models.EnrichedBook{IdentifiedBook: book}
}

// enrich builds the final record from an accepted document, falling back to
// the identified title/author where the document lacks them.
func enrich(book models.IdentifiedBook, doc openlibrary.Doc) models.EnrichedBook {
	eb := models.EnrichedBook{
		IdentifiedBook: book,
		Matched:        true,
		CoverURL:       openlibrary.CoverURL(doc.CoverID),
		PublishYear:    doc.FirstPublishYear,
		PageCount:      doc.MedianPageCount,
	}

	if doc.Title != "" {
		eb.Title = doc.Title
	}
	if len(doc.AuthorNames) > 0 {
		eb.Author = strings.Join(doc.AuthorNames, ", ")
	}
	if len(doc.Publishers) > 0 {
		eb.Publisher = doc.Publishers[0]
	}

	for _, isbn := range doc.ISBNs {
		cleaned := openlibrary.CleanISBN(isbn)
		switch len(cleaned) {
		case 13:
			if eb.ISBN13 == "" {
				eb.ISBN13 = cleaned
			}
		case 10:
			if eb.ISBN10 == "" {
				eb.ISBN10 = cleaned
			}
		}
		if eb.ISBN13 != "" && eb.ISBN10 != "" {
			break
		}
	}

	if len(doc.Subjects) > 0 {
		subjects := doc.Subjects
		if len(subjects) > 5 {
			subjects = subjects[:5]
		}
		eb.Subjects = strings.Join(subjects, "; ")
	}

	return eb
}
