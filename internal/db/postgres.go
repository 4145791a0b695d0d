package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"fitplan/config"
	"fitplan/internal/models"
)

type PostgresDB struct {
	pool *pgxpool.Pool
}

func NewPostgresDB(cfg config.DBConfig) (*PostgresDB, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DB connection string: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		poolConfig.MaxConns = int32(cfg.MaxOpenConns)
	}
	poolConfig.MinConns = int32(cfg.MaxIdleConns)
	if cfg.ConnLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.ConnLifetime
	}
	poolConfig.MaxConnIdleTime = 15 * time.Minute

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.ConnectConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := &PostgresDB{pool: pool}
	if err := db.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return db, nil
}

func (db *PostgresDB) migrate(ctx context.Context) error {
	_, err := db.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS profile (
			id BIGSERIAL PRIMARY KEY,
			name TEXT,
			age INTEGER,
			gender TEXT,
			height_cm DOUBLE PRECISION,
			weight_kg DOUBLE PRECISION,
			activity_level TEXT,
			dietary_pref TEXT,
			allergies TEXT,
			budget TEXT,
			region TEXT,
			goals TEXT
		)`)
	return err
}

func (db *PostgresDB) Close() error {
	if db.pool != nil {
		db.pool.Close()
	}
	return nil
}

func (db *PostgresDB) Get(ctx context.Context) (*models.Profile, error) {
	query := `SELECT id, ` + profileColumns + ` FROM profile ORDER BY id DESC LIMIT 1`

	var p models.Profile
	err := db.pool.QueryRow(ctx, query).Scan(scanTargets(&p)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &p, nil
}

func (db *PostgresDB) Replace(ctx context.Context, p *models.Profile) error {
	query := `
        INSERT INTO profile (` + profileColumns + `)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
        RETURNING id
    `

	err := db.pool.BeginFunc(ctx, func(tx pgx.Tx) error {
		// Writers queue on the lock; plain reads still see the last committed row.
		if _, err := tx.Exec(ctx, `LOCK TABLE profile IN EXCLUSIVE MODE`); err != nil {
			return fmt.Errorf("failed to lock profile table: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM profile`); err != nil {
			return fmt.Errorf("failed to clear profile: %w", err)
		}
		return tx.QueryRow(ctx, query, insertArgs(p)...).Scan(&p.ID)
	})
	if err != nil {
		return fmt.Errorf("failed to replace profile: %w", err)
	}
	return nil
}

func (db *PostgresDB) Ping(ctx context.Context) error {
	return db.pool.Ping(ctx)
}

func (db *PostgresDB) Persistent() bool { return true }
