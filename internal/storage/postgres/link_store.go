package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/zaplinks/linkmonitor/internal/scrape"
)

// LinkStore persists discovered links, unique per (url, owner).
type LinkStore struct {
	db     DB
	logger *zap.Logger
}

// NewLinkStore creates a LinkStore.
func NewLinkStore(db DB, logger *zap.Logger) *LinkStore {
	return &LinkStore{db: db, logger: logger}
}

const insertLinkSQL = `
INSERT INTO links (url, source, found_at, user_id)
VALUES ($1, $2, $3, $4)
ON CONFLICT (url, user_id) DO NOTHING`

// Save inserts each link if absent for the owner and returns the URLs that
// were actually new. Individual insert failures are logged and skipped; the
// rest of the batch still goes through.
func (s *LinkStore) Save(
	ctx context.Context,
	urls []string,
	source string,
	owner int64,
	foundAt time.Time,
) ([]string, error) {
	var inserted []string
	for _, u := range urls {
		tag, err := s.db.Exec(ctx, insertLinkSQL, u, source, foundAt, owner)
		if err != nil {
			s.logger.Warn("link insert failed",
				zap.String("url", u),
				zap.Int64("owner", owner),
				zap.Error(err),
			)
			continue
		}
		if tag.RowsAffected() > 0 {
			inserted = append(inserted, u)
		}
	}
	return inserted, nil
}

const listLinksSQL = `
SELECT url, source, found_at, user_id FROM links
WHERE user_id = $1 ORDER BY id DESC LIMIT $2`

const listAllLinksSQL = `
SELECT url, source, found_at, user_id FROM links
ORDER BY id DESC LIMIT $1`

// List returns links most-recently-inserted first, bounded by limit. A nil
// owner returns links across all owners (administrative use only).
func (s *LinkStore) List(ctx context.Context, limit int, owner *int64) ([]scrape.Link, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if owner != nil {
		rows, err = s.db.Query(ctx, listLinksSQL, *owner, limit)
	} else {
		rows, err = s.db.Query(ctx, listAllLinksSQL, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("query links: %w", err)
	}
	defer rows.Close()

	var links []scrape.Link
	for rows.Next() {
		var link scrape.Link
		if err := rows.Scan(&link.URL, &link.Source, &link.FoundAt, &link.Owner); err != nil {
			return nil, fmt.Errorf("scan link: %w", err)
		}
		links = append(links, link)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate links: %w", err)
	}
	return links, nil
}
