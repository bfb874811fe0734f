package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/zaplinks/linkmonitor/internal/scrape"
)

// RunStore keeps one last-run marker per owner.
type RunStore struct {
	db DB
}

// NewRunStore creates a RunStore.
func NewRunStore(db DB) *RunStore {
	return &RunStore{db: db}
}

const upsertRunSQL = `
INSERT INTO run_records (user_id, ran_at, pages_checked, links_found, message)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (user_id) DO UPDATE SET
	ran_at = EXCLUDED.ran_at,
	pages_checked = EXCLUDED.pages_checked,
	links_found = EXCLUDED.links_found,
	message = EXCLUDED.message`

// Write overwrites the owner's last-run marker.
func (s *RunStore) Write(ctx context.Context, rec scrape.RunRecord) error {
	_, err := s.db.Exec(ctx, upsertRunSQL,
		rec.Owner, rec.RanAt, rec.PagesChecked, rec.LinksFound, rec.Message)
	if err != nil {
		return fmt.Errorf("upsert run record: %w", err)
	}
	return nil
}

const readRunSQL = `
SELECT ran_at, pages_checked, links_found, message
FROM run_records WHERE user_id = $1`

// Read returns the owner's last-run marker; the bool is false when the owner
// has never run.
func (s *RunStore) Read(ctx context.Context, owner int64) (scrape.RunRecord, bool, error) {
	rec := scrape.RunRecord{Owner: owner}
	err := s.db.QueryRow(ctx, readRunSQL, owner).
		Scan(&rec.RanAt, &rec.PagesChecked, &rec.LinksFound, &rec.Message)
	if errors.Is(err, pgx.ErrNoRows) {
		return scrape.RunRecord{}, false, nil
	}
	if err != nil {
		return scrape.RunRecord{}, false, fmt.Errorf("read run record: %w", err)
	}
	return rec, true, nil
}
