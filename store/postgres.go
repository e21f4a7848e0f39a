// Package store persists market listings and dealer inventory in Postgres
// and collection run bookkeeping in a local SQLite file.
package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"watchmarket/models"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = 30 * time.Minute
	config.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

// =============================================================================
// Market Listings
// =============================================================================

const listingColumns = `id, source, external_id, name, brand, reference_number, price, condition, image_url, listing_url, scraped_at`

// UpsertListing inserts a listing unless its (source, external_id) pair
// already exists, in which case the stored row wins and the call reports
// created=false. Listings without an external id are rejected before hitting
// the database.
func (s *PostgresStore) UpsertListing(ctx context.Context, l *models.NormalizedListing) (bool, error) {
	if strings.TrimSpace(l.ExternalID) == "" {
		return false, fmt.Errorf("listing from %s has empty external_id", l.Source)
	}

	query := `
		INSERT INTO market_listings (
			source, external_id, name, brand, reference_number, price,
			condition, image_url, listing_url, scraped_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (source, external_id) DO NOTHING
		RETURNING id`

	err := s.pool.QueryRow(ctx, query,
		l.Source, l.ExternalID, l.Name, l.Brand, l.ReferenceNumber, l.Price,
		l.Condition, l.ImageURL, l.ListingURL, l.ScrapedAt,
	).Scan(&l.ID)

	if err == pgx.ErrNoRows {
		return false, nil // conflict, existing row kept
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// FindByReferenceExact returns structured-source listings whose reference
// number equals ref, case-insensitively.
func (s *PostgresStore) FindByReferenceExact(ctx context.Context, ref string) ([]models.NormalizedListing, error) {
	query := `
		SELECT ` + listingColumns + `
		FROM market_listings
		WHERE source = ANY($1) AND lower(reference_number) = lower($2)
		ORDER BY source, price`

	return s.queryListings(ctx, query, models.StructuredSources, ref)
}

// FindByReferenceContains returns structured-source listings whose reference
// number contains ref as a substring.
func (s *PostgresStore) FindByReferenceContains(ctx context.Context, ref string) ([]models.NormalizedListing, error) {
	query := `
		SELECT ` + listingColumns + `
		FROM market_listings
		WHERE source = ANY($1) AND reference_number ILIKE '%' || $2 || '%'
		ORDER BY source, price`

	return s.queryListings(ctx, query, models.StructuredSources, ref)
}

// FindAPIByNameContains returns API-source listings whose free-text name
// contains ref. The API source has no reference column to match against.
func (s *PostgresStore) FindAPIByNameContains(ctx context.Context, ref string) ([]models.NormalizedListing, error) {
	query := `
		SELECT ` + listingColumns + `
		FROM market_listings
		WHERE source = $1 AND name ILIKE '%' || $2 || '%'
		ORDER BY price`

	return s.queryListings(ctx, query, models.SourceAPI, ref)
}

// DistinctReferences pages through the distinct reference numbers seen across
// structured sources, newest activity first. Also reports the total for
// pagination.
func (s *PostgresStore) DistinctReferences(ctx context.Context, limit, offset int) ([]string, int, error) {
	var total int
	countQuery := `
		SELECT count(DISTINCT lower(reference_number))
		FROM market_listings
		WHERE reference_number IS NOT NULL AND source = ANY($1)`
	if err := s.pool.QueryRow(ctx, countQuery, models.StructuredSources).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT lower(reference_number) AS ref, max(scraped_at) AS latest
		FROM market_listings
		WHERE reference_number IS NOT NULL AND source = ANY($1)
		GROUP BY lower(reference_number)
		ORDER BY latest DESC
		LIMIT $2 OFFSET $3`

	rows, err := s.pool.Query(ctx, query, models.StructuredSources, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var refs []string
	for rows.Next() {
		var ref string
		var latest time.Time
		if err := rows.Scan(&ref, &latest); err != nil {
			return nil, 0, err
		}
		refs = append(refs, ref)
	}
	return refs, total, rows.Err()
}

// ListingsByReference returns every structured-source listing for one
// reference number, for the group-by-reference view.
func (s *PostgresStore) ListingsByReference(ctx context.Context, ref string) ([]models.NormalizedListing, error) {
	query := `
		SELECT ` + listingColumns + `
		FROM market_listings
		WHERE source = ANY($1) AND lower(reference_number) = lower($2)
		ORDER BY scraped_at DESC`

	return s.queryListings(ctx, query, models.StructuredSources, ref)
}

func (s *PostgresStore) queryListings(ctx context.Context, query string, args ...any) ([]models.NormalizedListing, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var listings []models.NormalizedListing
	for rows.Next() {
		var l models.NormalizedListing
		if err := rows.Scan(
			&l.ID, &l.Source, &l.ExternalID, &l.Name, &l.Brand, &l.ReferenceNumber,
			&l.Price, &l.Condition, &l.ImageURL, &l.ListingURL, &l.ScrapedAt,
		); err != nil {
			return nil, err
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}
