package postgres

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/zaplinks/linkmonitor/internal/scrape"
)

// PageStore persists the capture pages each owner monitors.
type PageStore struct {
	db     DB
	logger *zap.Logger
}

// NewPageStore creates a PageStore.
func NewPageStore(db DB, logger *zap.Logger) *PageStore {
	return &PageStore{db: db, logger: logger}
}

const listPagesSQL = `
SELECT url, name FROM pages
WHERE user_id = $1 ORDER BY id ASC`

// ListPages returns the owner's pages in registration order.
func (s *PageStore) ListPages(ctx context.Context, owner int64) ([]scrape.Page, error) {
	rows, err := s.db.Query(ctx, listPagesSQL, owner)
	if err != nil {
		return nil, fmt.Errorf("query pages: %w", err)
	}
	defer rows.Close()

	var pages []scrape.Page
	for rows.Next() {
		var p scrape.Page
		if err := rows.Scan(&p.URL, &p.Name); err != nil {
			return nil, fmt.Errorf("scan page: %w", err)
		}
		pages = append(pages, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pages: %w", err)
	}
	return pages, nil
}

const insertPageSQL = `
INSERT INTO pages (url, name, user_id)
VALUES ($1, $2, $3)
ON CONFLICT (url, user_id) DO NOTHING`

// Add registers a page for the owner. Returns false when the owner already
// monitors the URL.
func (s *PageStore) Add(ctx context.Context, page scrape.Page, owner int64) (bool, error) {
	tag, err := s.db.Exec(ctx, insertPageSQL, page.URL, page.Name, owner)
	if err != nil {
		return false, fmt.Errorf("insert page: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

const deletePageSQL = `
DELETE FROM pages WHERE url = $1 AND user_id = $2`

// Delete removes a page by URL. Returns false when the owner does not monitor
// the URL.
func (s *PageStore) Delete(ctx context.Context, pageURL string, owner int64) (bool, error) {
	tag, err := s.db.Exec(ctx, deletePageSQL, pageURL, owner)
	if err != nil {
		return false, fmt.Errorf("delete page: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
