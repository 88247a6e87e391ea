package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"rentwatch/internal/domain"
)

// PostgresStore persists listings and answers the new-vs-seen question.
type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, connStr string) (*PostgresStore, error) {
	db, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	s := &PostgresStore{db: db}
	if err := s.migrate(ctx); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS listings (
			id          BIGSERIAL PRIMARY KEY,
			external_id VARCHAR(255) UNIQUE NOT NULL,
			source      VARCHAR(100) NOT NULL,
			title       VARCHAR(500) NOT NULL,
			price       VARCHAR(100) NOT NULL DEFAULT 'N/A',
			location    VARCHAR(300) NOT NULL DEFAULT 'N/A',
			bedrooms    VARCHAR(50)  NOT NULL DEFAULT 'N/A',
			area        VARCHAR(100) NOT NULL DEFAULT 'N/A',
			url         TEXT         NOT NULL,
			description TEXT         NOT NULL DEFAULT '',
			first_seen  TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
			last_seen   TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
			is_active   BOOLEAN      NOT NULL DEFAULT TRUE,
			notified    BOOLEAN      NOT NULL DEFAULT FALSE
		);

		CREATE INDEX IF NOT EXISTS idx_listings_pending   ON listings(notified, is_active);
		CREATE INDEX IF NOT EXISTS idx_listings_last_seen ON listings(last_seen);
	`)
	return err
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *PostgresStore) Close() {
	s.db.Close()
}

// UpsertListing inserts a draft on first sighting (notified=false,
// is_active=true, first_seen=last_seen=now) and reports it as new. On a
// repeat sighting only last_seen and is_active are refreshed; title, price
// and the other fields keep their first-seen values.
func (s *PostgresStore) UpsertListing(ctx context.Context, l domain.Listing) (bool, error) {
	var isNew bool
	// xmax = 0 only for rows created by this statement, which distinguishes
	// the insert path from the conflict-update path.
	err := s.db.QueryRow(ctx,
		`INSERT INTO listings (external_id, source, title, price, location, bedrooms, area, url, description)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (external_id) DO UPDATE SET
		   last_seen = NOW(), is_active = TRUE
		 RETURNING (xmax = 0)`,
		l.ExternalID, l.Source, l.Title, l.Price, l.Location, l.Bedrooms, l.Area, l.URL, l.Description,
	).Scan(&isNew)
	if err != nil {
		return false, fmt.Errorf("upsert listing %s: %w", l.ExternalID, err)
	}
	return isNew, nil
}

// MarkInactiveOlderThan flips is_active off for every active listing whose
// last_seen is older than cutoff. Runs once per scan batch, after all
// upserts. Listings are never hard-deleted here.
func (s *PostgresStore) MarkInactiveOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.db.Exec(ctx,
		`UPDATE listings SET is_active = FALSE
		 WHERE last_seen < $1 AND is_active = TRUE`,
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("age out listings: %w", err)
	}
	return tag.RowsAffected(), nil
}

// FetchPending returns active listings not yet notified, in insertion order.
// A non-positive limit returns all of them.
func (s *PostgresStore) FetchPending(ctx context.Context, limit int) ([]domain.StoredListing, error) {
	query := `SELECT id, external_id, source, title, price, location, bedrooms, area, url, description,
	                 first_seen, last_seen, is_active, notified
	          FROM listings
	          WHERE notified = FALSE AND is_active = TRUE
	          ORDER BY id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("fetch pending: %w", err)
	}
	defer rows.Close()

	var out []domain.StoredListing
	for rows.Next() {
		var l domain.StoredListing
		if err := rows.Scan(
			&l.ID, &l.ExternalID, &l.Source, &l.Title, &l.Price, &l.Location, &l.Bedrooms, &l.Area,
			&l.URL, &l.Description, &l.FirstSeen, &l.LastSeen, &l.IsActive, &l.Notified,
		); err != nil {
			return nil, fmt.Errorf("scan pending row: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// MarkNotified idempotently records that one listing was handed to the
// notification channel.
func (s *PostgresStore) MarkNotified(ctx context.Context, id int64) error {
	_, err := s.db.Exec(ctx, `UPDATE listings SET notified = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark notified %d: %w", id, err)
	}
	return nil
}

// Stats reports aggregate counts over the store.
func (s *PostgresStore) Stats(ctx context.Context) (domain.Stats, error) {
	var st domain.Stats
	err := s.db.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE is_active),
		        COUNT(*) FILTER (WHERE notified),
		        COUNT(*) FILTER (WHERE NOT notified AND is_active)
		 FROM listings`,
	).Scan(&st.Total, &st.Active, &st.Notified, &st.Pending)
	if err != nil {
		return domain.Stats{}, fmt.Errorf("stats: %w", err)
	}
	return st, nil
}
