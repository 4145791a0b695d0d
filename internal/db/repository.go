package db

import (
	"context"
	"fmt"

	"fitplan/config"
	"fitplan/internal/models"
)

// ProfileRepository stores at most one profile.
type ProfileRepository interface {
	// Get returns the stored profile, or nil with a nil error when none exists.
	Get(ctx context.Context) (*models.Profile, error)
	// Replace atomically discards the stored profile and saves p.
	Replace(ctx context.Context, p *models.Profile) error
	Ping(ctx context.Context) error
	Close() error
}

// Persistent is implemented by stores that survive a restart.
type Persistent interface {
	Persistent() bool
}

// Open returns the repository selected by cfg.Storage.Driver.
func Open(cfg *config.Config) (ProfileRepository, error) {
	switch cfg.Storage.Driver {
	case config.DriverSQLite, "":
		return NewSQLiteDB(SQLiteConfig{Path: cfg.Storage.Path})
	case config.DriverPostgres:
		return NewPostgresDB(cfg.DB)
	case config.DriverMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// IsPersistent reports whether repo is backed by real storage.
func IsPersistent(repo ProfileRepository) bool {
	p, ok := repo.(Persistent)
	return ok && p.Persistent()
}

const profileColumns = `name, age, gender, height_cm, weight_kg,
		activity_level, dietary_pref, allergies,
		budget, region, goals`

// scanTargets lists the Profile fields in column order, after the id.
func scanTargets(p *models.Profile) []interface{} {
	return []interface{}{
		&p.ID, &p.Name, &p.Age, &p.Gender, &p.HeightCM, &p.WeightKG,
		&p.ActivityLevel, &p.DietaryPref, &p.Allergies,
		&p.Budget, &p.Region, &p.Goals,
	}
}

func insertArgs(p *models.Profile) []interface{} {
	return []interface{}{
		p.Name, p.Age, p.Gender, p.HeightCM, p.WeightKG,
		p.ActivityLevel, p.DietaryPref, p.Allergies,
		p.Budget, p.Region, p.Goals,
	}
}
