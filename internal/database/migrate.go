package database

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/models"
)

// Migration is one versioned schema change.
type Migration struct {
	Version     int
	Description string
	Up          func(*gorm.DB) error
	Down        func(*gorm.DB) error
}

type migrationHistory struct {
	ID          uint   `gorm:"primaryKey"`
	Version     int    `gorm:"uniqueIndex;not null"`
	Description string `gorm:"type:text"`
	AppliedAt   int64  `gorm:"autoCreateTime"`
}

// MigrationStatus describes whether a migration has been applied.
type MigrationStatus struct {
	Version     int
	Description string
	Applied     bool
}

// Migrator applies migrations in version order and records them.
type Migrator struct {
	db         *gorm.DB
	migrations []Migration
}

func NewMigrator(db *gorm.DB) *Migrator {
	return &Migrator{db: db, migrations: allMigrations()}
}

// RunMigrations brings db up to the latest schema.
func RunMigrations(ctx context.Context, db *gorm.DB) error {
	return NewMigrator(db).Migrate(ctx)
}

func (m *Migrator) applied(ctx context.Context) (map[int]bool, error) {
	if err := m.db.WithContext(ctx).AutoMigrate(&migrationHistory{}); err != nil {
		return nil, fmt.Errorf("failed to create migration history table: %w", err)
	}
	var rows []migrationHistory
	if err := m.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query migration history: %w", err)
	}
	versions := make(map[int]bool, len(rows))
	for _, r := range rows {
		versions[r.Version] = true
	}
	return versions, nil
}

// Migrate runs all pending migrations
func (m *Migrator) Migrate(ctx context.Context) error {
	done, err := m.applied(ctx)
	if err != nil {
		return err
	}

	for _, mig := range m.migrations {
		if done[mig.Version] {
			continue
		}
		err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := mig.Up(tx); err != nil {
				return err
			}
			return tx.Create(&migrationHistory{Version: mig.Version, Description: mig.Description}).Error
		})
		if err != nil {
			return fmt.Errorf("migration %d (%s) failed: %w", mig.Version, mig.Description, err)
		}
		log.Info().Int("version", mig.Version).Str("description", mig.Description).Msg("migration applied")
	}
	return nil
}

// Rollback reverts the most recently applied migration.
func (m *Migrator) Rollback(ctx context.Context) error {
	var last migrationHistory
	if err := m.db.WithContext(ctx).Order("version DESC").First(&last).Error; err != nil {
		return fmt.Errorf("no migrations to rollback: %w", err)
	}

	var target *Migration
	for i := range m.migrations {
		if m.migrations[i].Version == last.Version {
			target = &m.migrations[i]
			break
		}
	}
	if target == nil {
		return fmt.Errorf("migration %d not found", last.Version)
	}

	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := target.Down(tx); err != nil {
			return fmt.Errorf("rollback failed: %w", err)
		}
		return tx.Delete(&last).Error
	})
}

// Status lists every known migration with its applied flag.
func (m *Migrator) Status(ctx context.Context) ([]MigrationStatus, error) {
	done, err := m.applied(ctx)
	if err != nil {
		return nil, err
	}
	statuses := make([]MigrationStatus, 0, len(m.migrations))
	for _, mig := range m.migrations {
		statuses = append(statuses, MigrationStatus{
			Version:     mig.Version,
			Description: mig.Description,
			Applied:     done[mig.Version],
		})
	}
	return statuses, nil
}

func allMigrations() []Migration {
	return []Migration{
		{
			Version:     1,
			Description: "enable pgvector extension",
			Up: func(tx *gorm.DB) error {
				if !IsPostgres(tx) {
					return nil
				}
				return tx.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error
			},
			Down: func(*gorm.DB) error { return nil },
		},
		{
			Version:     2,
			Description: "create users, catalog, recipes and memberships",
			Up: func(tx *gorm.DB) error {
				return tx.AutoMigrate(
					&models.User{},
					&models.Follow{},
					&models.Ingredient{},
					&models.Tag{},
					&models.Recipe{},
					&models.RecipeIngredient{},
					&models.RecipeMembership{},
				)
			},
			Down: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(
					&models.RecipeMembership{},
					&models.RecipeIngredient{},
					"recipe_tags",
					&models.Recipe{},
					&models.Tag{},
					&models.Ingredient{},
					&models.Follow{},
					&models.User{},
				)
			},
		},
		{
			Version:     3,
			Description: "index recipe embeddings",
			Up: func(tx *gorm.DB) error {
				if !IsPostgres(tx) {
					return nil
				}
				return tx.Exec("CREATE INDEX IF NOT EXISTS idx_recipes_embedding ON recipes USING hnsw (embedding vector_l2_ops)").Error
			},
			Down: func(tx *gorm.DB) error {
				return tx.Exec("DROP INDEX IF EXISTS idx_recipes_embedding").Error
			},
		},
	}
}
