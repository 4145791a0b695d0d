package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"fitplan/internal/models"
)

// SQLiteDB is the default file-backed profile store.
type SQLiteDB struct {
	db *sql.DB
}

type SQLiteConfig struct {
	Path string
}

func NewSQLiteDB(cfg SQLiteConfig) (*SQLiteDB, error) {
	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?mode=rwc&_busy_timeout=5000", cfg.Path)
	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection serialises writers; SQLite allows only one anyway.
	conn.SetMaxOpenConns(1)

	s := &SQLiteDB{db: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return s, nil
}

func (s *SQLiteDB) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS profile (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT,
			age INTEGER,
			gender TEXT,
			height_cm REAL,
			weight_kg REAL,
			activity_level TEXT,
			dietary_pref TEXT,
			allergies TEXT,
			budget TEXT,
			region TEXT,
			goals TEXT
		)`)
	return err
}

func (s *SQLiteDB) Get(ctx context.Context) (*models.Profile, error) {
	query := `SELECT id, ` + profileColumns + ` FROM profile ORDER BY id DESC LIMIT 1`

	var p models.Profile
	err := s.db.QueryRowContext(ctx, query).Scan(scanTargets(&p)...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &p, nil
}

func (s *SQLiteDB) Replace(ctx context.Context, p *models.Profile) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM profile`); err != nil {
		return fmt.Errorf("failed to clear profile: %w", err)
	}

	query := `INSERT INTO profile (` + profileColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, query, insertArgs(p)...)
	if err != nil {
		return fmt.Errorf("failed to insert profile: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit profile: %w", err)
	}

	if id, err := res.LastInsertId(); err == nil {
		p.ID = id
	}
	return nil
}

func (s *SQLiteDB) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

func (s *SQLiteDB) Persistent() bool { return true }
