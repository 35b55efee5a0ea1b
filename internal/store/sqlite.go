package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/patcharlton/chamonix-ski-status/internal/models"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Snapshot is one stored normalised resort state with its headline counts.
type Snapshot struct {
	ID           int64
	CreatedAt    time.Time
	ScrapedAt    sql.NullString
	Source       sql.NullString
	LiftsTotal   int
	LiftsOpen    int
	PistesTotal  int
	PistesOpen   int
	StationCount int
	Data         *models.SkiData
}

// SaveSnapshot persists a normalised snapshot and returns its ID. The full
// document is stored as JSON alongside denormalised counts for cheap listing.
func (s *Store) SaveSnapshot(data *models.SkiData) (int64, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return 0, fmt.Errorf("marshal snapshot: %w", err)
	}

	pistesTotal, pistesOpen := 0, 0
	for _, pistes := range data.Pistes {
		for _, p := range pistes {
			pistesTotal++
			if p.Status == models.StatusOpen {
				pistesOpen++
			}
		}
	}

	result, err := s.db.Exec(`
		INSERT INTO snapshots (created_at, scraped_at, source, lifts_total, lifts_open, pistes_total, pistes_open, station_count, data_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, time.Now().UTC(), data.Metadata.ScrapeTimestamp, data.Metadata.Source,
		data.CalculatedSummary.LiftsTotal, data.CalculatedSummary.LiftsOpen,
		pistesTotal, pistesOpen, len(data.Weather), raw)
	if err != nil {
		return 0, fmt.Errorf("insert snapshot: %w", err)
	}
	return result.LastInsertId()
}

// LatestSnapshot returns the most recent snapshot, or nil when none exists.
func (s *Store) LatestSnapshot() (*Snapshot, error) {
	row := s.db.QueryRow(`
		SELECT id, created_at, scraped_at, source, lifts_total, lifts_open, pistes_total, pistes_open, station_count, data_json
		FROM snapshots
		ORDER BY id DESC
		LIMIT 1
	`)
	return scanSnapshot(row)
}

// GetSnapshot returns one snapshot by ID, or nil when it does not exist.
func (s *Store) GetSnapshot(id int64) (*Snapshot, error) {
	row := s.db.QueryRow(`
		SELECT id, created_at, scraped_at, source, lifts_total, lifts_open, pistes_total, pistes_open, station_count, data_json
		FROM snapshots
		WHERE id = ?
	`, id)
	return scanSnapshot(row)
}

func scanSnapshot(row *sql.Row) (*Snapshot, error) {
	var snap Snapshot
	var raw []byte
	err := row.Scan(&snap.ID, &snap.CreatedAt, &snap.ScrapedAt, &snap.Source,
		&snap.LiftsTotal, &snap.LiftsOpen, &snap.PistesTotal, &snap.PistesOpen,
		&snap.StationCount, &raw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var data models.SkiData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot %d: %w", snap.ID, err)
	}
	snap.Data = &data
	return &snap, nil
}

// SnapshotHistory lists the most recent snapshot headlines without the JSON
// document, newest first.
func (s *Store) SnapshotHistory(limit int) ([]Snapshot, error) {
	rows, err := s.db.Query(`
		SELECT id, created_at, scraped_at, source, lifts_total, lifts_open, pistes_total, pistes_open, station_count
		FROM snapshots
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snaps []Snapshot
	for rows.Next() {
		var snap Snapshot
		if err := rows.Scan(&snap.ID, &snap.CreatedAt, &snap.ScrapedAt, &snap.Source,
			&snap.LiftsTotal, &snap.LiftsOpen, &snap.PistesTotal, &snap.PistesOpen,
			&snap.StationCount); err != nil {
			return nil, err
		}
		snaps = append(snaps, snap)
	}
	return snaps, rows.Err()
}

// CleanupOldSnapshots deletes snapshots older than the retention window,
// keeping at least the newest one regardless of age. Returns rows deleted.
func (s *Store) CleanupOldSnapshots(retentionDays int) (int64, error) {
	result, err := s.db.Exec(`
		DELETE FROM snapshots
		WHERE created_at < DATE('now', '-' || ? || ' days')
		  AND id != (SELECT MAX(id) FROM snapshots)
	`, retentionDays)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// AvalancheBulletin is one day's Météo-France bulletin for a massif.
type AvalancheBulletin struct {
	Massif        string
	ValidDate     time.Time
	RiskLevel     int
	RiskEvolution sql.NullString
	Summary       sql.NullString
	FetchedAt     time.Time
}

func (s *Store) UpsertAvalancheBulletin(b AvalancheBulletin) error {
	_, err := s.db.Exec(`
		INSERT INTO avalanche_bulletins (massif, valid_date, risk_level, risk_evolution, summary, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(massif, valid_date) DO UPDATE SET
			risk_level = excluded.risk_level,
			risk_evolution = excluded.risk_evolution,
			summary = excluded.summary,
			fetched_at = excluded.fetched_at
	`, b.Massif, b.ValidDate.Format("2006-01-02"), b.RiskLevel, b.RiskEvolution, b.Summary, b.FetchedAt)
	return err
}

// LatestAvalancheBulletin returns the newest bulletin for a massif, or nil.
func (s *Store) LatestAvalancheBulletin(massif string) (*AvalancheBulletin, error) {
	row := s.db.QueryRow(`
		SELECT massif, valid_date, risk_level, risk_evolution, summary, fetched_at
		FROM avalanche_bulletins
		WHERE massif = ?
		ORDER BY valid_date DESC
		LIMIT 1
	`, massif)

	var b AvalancheBulletin
	var validDate string
	err := row.Scan(&b.Massif, &validDate, &b.RiskLevel, &b.RiskEvolution, &b.Summary, &b.FetchedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	b.ValidDate, err = time.Parse("2006-01-02", validDate)
	if err != nil {
		return nil, fmt.Errorf("parse bulletin date %q: %w", validDate, err)
	}
	return &b, nil
}
