package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/levenlabs/go-lflag"
	_ "modernc.org/sqlite"

	"github.com/gridadvisor/gridadvisor/pkg/types"
)

// SQLiteProvider implements the Database interface on a local SQLite file.
// It exists for single-site and development deployments that don't want a
// cloud dependency. Records are JSON blobs in TEXT columns, mirroring the
// Firestore layout.
type SQLiteProvider struct {
	db   *sql.DB
	path string
}

// configuredSQLite sets up the SQLite provider.
// It registers flags for configuration.
func configuredSQLite() *SQLiteProvider {
	path := lflag.String("sqlite-path", "gridadvisor.db", "Path to the SQLite database file")

	s := &SQLiteProvider{}

	lflag.Do(func() {
		s.path = *path
	})

	return s
}

// Validate checks if the provider is properly configured.
func (s *SQLiteProvider) Validate() error {
	if s.path == "" {
		return fmt.Errorf("sqlite-path cannot be empty")
	}
	return nil
}

// Init opens the database and creates the schema.
func (s *SQLiteProvider) Init(ctx context.Context) error {
	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database %s: %w", s.path, err)
	}
	s.db = db

	schema := `
	CREATE TABLE IF NOT EXISTS sites (
		id TEXT PRIMARY KEY,
		json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS tariffs (
		site_id TEXT PRIMARY KEY,
		json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS devices (
		site_id TEXT NOT NULL,
		id TEXT NOT NULL,
		json TEXT NOT NULL,
		PRIMARY KEY (site_id, id)
	);

	CREATE TABLE IF NOT EXISTS recommendation_history (
		site_id TEXT NOT NULL,
		generated_at TEXT NOT NULL,
		json TEXT NOT NULL,
		PRIMARY KEY (site_id, generated_at)
	);

	CREATE INDEX IF NOT EXISTS idx_devices_site ON devices(site_id);
	CREATE INDEX IF NOT EXISTS idx_recommendations_site_time
		ON recommendation_history(site_id, generated_at);
	`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		s.db.Close()
		return fmt.Errorf("failed to initialize sqlite schema: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteProvider) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// GetSite retrieves a site record.
func (s *SQLiteProvider) GetSite(ctx context.Context, siteID string) (types.Site, error) {
	var jsonStr string
	err := s.db.QueryRowContext(ctx, `SELECT json FROM sites WHERE id = ?`, siteID).Scan(&jsonStr)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Site{}, ErrSiteNotFound
	}
	if err != nil {
		return types.Site{}, fmt.Errorf("failed to fetch site: %w", err)
	}
	var site types.Site
	if err := json.Unmarshal([]byte(jsonStr), &site); err != nil {
		return types.Site{}, fmt.Errorf("failed to unmarshal site %s: %w", siteID, err)
	}
	return site, nil
}

// ListSites returns every site record.
func (s *SQLiteProvider) ListSites(ctx context.Context) ([]types.Site, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT json FROM sites ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sites: %w", err)
	}
	defer rows.Close()

	var sites []types.Site
	for rows.Next() {
		var jsonStr string
		if err := rows.Scan(&jsonStr); err != nil {
			return nil, fmt.Errorf("failed to scan site row: %w", err)
		}
		var site types.Site
		if err := json.Unmarshal([]byte(jsonStr), &site); err != nil {
			return nil, fmt.Errorf("failed to unmarshal site: %w", err)
		}
		sites = append(sites, site)
	}
	return sites, rows.Err()
}

// CreateSite stores a new site record.
func (s *SQLiteProvider) CreateSite(ctx context.Context, siteID string, site types.Site) error {
	if siteID == "" {
		return fmt.Errorf("siteID cannot be empty")
	}
	jsonBytes, err := json.Marshal(site)
	if err != nil {
		return fmt.Errorf("failed to marshal site: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sites (id, json) VALUES (?, ?)
		 ON CONFLICT(id) DO UPDATE SET json = excluded.json`,
		siteID, string(jsonBytes))
	if err != nil {
		return fmt.Errorf("failed to create site: %w", err)
	}
	return nil
}

// GetTariff retrieves the tariff configured for a site.
func (s *SQLiteProvider) GetTariff(ctx context.Context, siteID string) (types.Tariff, error) {
	var jsonStr string
	err := s.db.QueryRowContext(ctx, `SELECT json FROM tariffs WHERE site_id = ?`, siteID).Scan(&jsonStr)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Tariff{}, ErrTariffNotFound
	}
	if err != nil {
		return types.Tariff{}, fmt.Errorf("failed to fetch tariff: %w", err)
	}
	var t types.Tariff
	if err := json.Unmarshal([]byte(jsonStr), &t); err != nil {
		return types.Tariff{}, fmt.Errorf("failed to unmarshal tariff for site %s: %w", siteID, err)
	}
	return t, nil
}

// SetTariff saves the tariff for a site.
func (s *SQLiteProvider) SetTariff(ctx context.Context, siteID string, tariff types.Tariff) error {
	if siteID == "" {
		return fmt.Errorf("siteID cannot be empty")
	}
	jsonBytes, err := json.Marshal(tariff)
	if err != nil {
		return fmt.Errorf("failed to marshal tariff: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO tariffs (site_id, json) VALUES (?, ?)
		 ON CONFLICT(site_id) DO UPDATE SET json = excluded.json`,
		siteID, string(jsonBytes))
	if err != nil {
		return fmt.Errorf("failed to save tariff: %w", err)
	}
	return nil
}

// ListDevices returns the device registry for a site.
func (s *SQLiteProvider) ListDevices(ctx context.Context, siteID string) ([]types.Device, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT json FROM devices WHERE site_id = ? ORDER BY id`, siteID)
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}
	defer rows.Close()

	var devices []types.Device
	for rows.Next() {
		var jsonStr string
		if err := rows.Scan(&jsonStr); err != nil {
			return nil, fmt.Errorf("failed to scan device row: %w", err)
		}
		var d types.Device
		if err := json.Unmarshal([]byte(jsonStr), &d); err != nil {
			return nil, fmt.Errorf("failed to unmarshal device: %w", err)
		}
		devices = append(devices, d)
	}
	return devices, rows.Err()
}

// UpsertDevice adds or updates a device record, keyed by device ID.
func (s *SQLiteProvider) UpsertDevice(ctx context.Context, siteID string, device types.Device) error {
	if device.ID == "" {
		return fmt.Errorf("device missing id")
	}
	jsonBytes, err := json.Marshal(device)
	if err != nil {
		return fmt.Errorf("failed to marshal device: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO devices (site_id, id, json) VALUES (?, ?, ?)
		 ON CONFLICT(site_id, id) DO UPDATE SET json = excluded.json`,
		siteID, device.ID, string(jsonBytes))
	if err != nil {
		return fmt.Errorf("failed to upsert device: %w", err)
	}
	return nil
}

// InsertRecommendations records an advisor result, keyed by the RFC3339
// generation timestamp for lexicographic range queries.
func (s *SQLiteProvider) InsertRecommendations(ctx context.Context, siteID string, set types.RecommendationSet) error {
	if set.GeneratedAt.IsZero() {
		return fmt.Errorf("recommendation set missing generatedAt")
	}
	jsonBytes, err := json.Marshal(set)
	if err != nil {
		return fmt.Errorf("failed to marshal recommendation set: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO recommendation_history (site_id, generated_at, json) VALUES (?, ?, ?)
		 ON CONFLICT(site_id, generated_at) DO UPDATE SET json = excluded.json`,
		siteID, set.GeneratedAt.UTC().Format(time.RFC3339), string(jsonBytes))
	if err != nil {
		return fmt.Errorf("failed to insert recommendation set: %w", err)
	}
	return nil
}

// GetRecommendationHistory retrieves recommendation sets within the
// specified time range.
func (s *SQLiteProvider) GetRecommendationHistory(ctx context.Context, siteID string, start, end time.Time) ([]types.RecommendationSet, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT json FROM recommendation_history
		 WHERE site_id = ? AND generated_at >= ? AND generated_at < ?
		 ORDER BY generated_at`,
		siteID, start.UTC().Format(time.RFC3339), end.UTC().Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("failed to query recommendation history: %w", err)
	}
	defer rows.Close()

	var sets []types.RecommendationSet
	for rows.Next() {
		var jsonStr string
		if err := rows.Scan(&jsonStr); err != nil {
			return nil, fmt.Errorf("failed to scan recommendation row: %w", err)
		}
		var set types.RecommendationSet
		if err := json.Unmarshal([]byte(jsonStr), &set); err != nil {
			return nil, fmt.Errorf("failed to unmarshal recommendation set: %w", err)
		}
		sets = append(sets, set)
	}
	return sets, rows.Err()
}
