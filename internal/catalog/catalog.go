package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"mosaic/internal/config"
)

// MediaInfo is one cached probe result.
type MediaInfo struct {
	Item     string
	Duration float64
	Width    int
	Height   int
	Codec    string
	FileSize int64
	FileMod  time.Time
	ProbedAt time.Time
}

// Matches reports whether the cached row still describes a file with the
// given size and modification time.
func (m *MediaInfo) Matches(size int64, mtime time.Time) bool {
	return m != nil && m.FileSize == size && m.FileMod.Equal(mtime)
}

// Store manages the media-info cache backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the catalog database and applies
// migrations.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.LogDir, "catalog.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Get fetches the cached probe result for an item, or nil when no row
// exists.
func (s *Store) Get(ctx context.Context, item string) (*MediaInfo, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+infoColumns+` FROM media_info WHERE item = ?`, item)
	info, err := scanInfo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get media info: %w", err)
	}
	return info, nil
}

// Upsert stores or replaces the probe result for info.Item.
func (s *Store) Upsert(ctx context.Context, info *MediaInfo) error {
	if info == nil {
		return errors.New("media info is nil")
	}
	if info.Item == "" {
		return errors.New("media info has no item id")
	}
	probed := info.ProbedAt
	if probed.IsZero() {
		probed = time.Now().UTC()
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO media_info (
            item, duration_seconds, width, height, codec,
            file_size, file_mtime, probed_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(item) DO UPDATE SET
            duration_seconds = excluded.duration_seconds,
            width = excluded.width,
            height = excluded.height,
            codec = excluded.codec,
            file_size = excluded.file_size,
            file_mtime = excluded.file_mtime,
            probed_at = excluded.probed_at`,
		info.Item,
		info.Duration,
		info.Width,
		info.Height,
		info.Codec,
		info.FileSize,
		info.FileMod.UTC().Format(time.RFC3339Nano),
		probed.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("upsert media info: %w", err)
	}
	return nil
}

// Remove drops the cached row for an item.
func (s *Store) Remove(ctx context.Context, item string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM media_info WHERE item = ?`, item)
	if err != nil {
		return false, fmt.Errorf("delete media info: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// Len returns the number of cached rows.
func (s *Store) Len(ctx context.Context) (int, error) {
	var count int
	row := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM media_info`)
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("count media info: %w", err)
	}
	return count, nil
}

const infoColumns = "item, duration_seconds, width, height, codec, file_size, file_mtime, probed_at"

func scanInfo(scanner interface{ Scan(dest ...any) error }) (*MediaInfo, error) {
	var (
		item      string
		duration  float64
		width     int
		height    int
		codec     sql.NullString
		fileSize  int64
		mtimeRaw  string
		probedRaw string
	)

	if err := scanner.Scan(
		&item,
		&duration,
		&width,
		&height,
		&codec,
		&fileSize,
		&mtimeRaw,
		&probedRaw,
	); err != nil {
		return nil, err
	}

	info := &MediaInfo{
		Item:     item,
		Duration: duration,
		Width:    width,
		Height:   height,
		Codec:    codec.String,
		FileSize: fileSize,
	}
	if mtime, err := parseTimeString(mtimeRaw); err == nil {
		info.FileMod = mtime
	}
	if probed, err := parseTimeString(probedRaw); err == nil {
		info.ProbedAt = probed
	}
	return info, nil
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	return time.Parse(time.RFC3339Nano, value)
}
