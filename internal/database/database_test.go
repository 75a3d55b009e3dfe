package database_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/models"
)

func openMemory(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func TestMigrateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db := openMemory(t)

	require.NoError(t, database.RunMigrations(ctx, db))
	require.NoError(t, database.RunMigrations(ctx, db))

	statuses, err := database.NewMigrator(db).Status(ctx)
	require.NoError(t, err)
	require.Len(t, statuses, 3)
	for _, s := range statuses {
		assert.True(t, s.Applied, "migration %d", s.Version)
	}

	for _, table := range []string{"users", "follows", "ingredients", "tags", "recipes", "recipe_ingredients", "recipe_tags", "recipe_memberships"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}

func TestRollbackRevertsLastMigration(t *testing.T) {
	ctx := context.Background()
	db := openMemory(t)
	require.NoError(t, database.RunMigrations(ctx, db))

	m := database.NewMigrator(db)
	require.NoError(t, m.Rollback(ctx))
	require.NoError(t, m.Rollback(ctx))

	statuses, err := m.Status(ctx)
	require.NoError(t, err)
	assert.True(t, statuses[0].Applied)
	assert.False(t, statuses[1].Applied)
	assert.False(t, db.Migrator().HasTable("recipes"))
}

func TestIsUniqueViolation(t *testing.T) {
	ctx := context.Background()
	db := openMemory(t)
	require.NoError(t, database.RunMigrations(ctx, db))

	require.NoError(t, db.Create(&models.Tag{Name: "Breakfast", Slug: "breakfast"}).Error)
	err := db.Create(&models.Tag{Name: "Brunch", Slug: "breakfast"}).Error

	require.Error(t, err)
	assert.True(t, database.IsUniqueViolation(err))
	assert.False(t, database.IsUniqueViolation(nil))
	assert.False(t, database.IsUniqueViolation(gorm.ErrRecordNotFound))
}

func TestSelfFollowRejectedBySchema(t *testing.T) {
	ctx := context.Background()
	db := openMemory(t)
	require.NoError(t, database.RunMigrations(ctx, db))

	user := models.User{Email: "a@example.com", Username: "a", FirstName: "A", LastName: "A", PasswordHash: "x"}
	require.NoError(t, db.Create(&user).Error)

	// raw insert skips the model hook, leaving the check constraint as the only guard
	err := db.Exec("INSERT INTO follows (created_at, user_id, following_id) VALUES (CURRENT_TIMESTAMP, ?, ?)", user.ID, user.ID).Error
	assert.Error(t, err)
}
