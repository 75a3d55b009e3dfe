package service_test

import (
	"context"
	"testing"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
)

func TestAvatarLifecycle(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	store := testhelpers.NewMemoryObjectStore()
	users := service.NewUserService(db, service.NewImageService(store))
	ctx := context.Background()
	alice := testhelpers.CreateUser(t, db, "alice")

	first, err := users.SetAvatar(ctx, alice.ID, testhelpers.PNGDataURI)
	require.NoError(t, err)
	assert.True(t, store.Has(first))

	second, err := users.SetAvatar(ctx, alice.ID, testhelpers.PNGDataURI)
	require.NoError(t, err)
	assert.False(t, store.Has(first), "replaced avatar should be removed")
	assert.True(t, store.Has(second))

	got, err := users.Get(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, second, got.Avatar)

	require.NoError(t, users.DeleteAvatar(ctx, alice.ID))
	assert.Zero(t, store.Len())
	got, err = users.Get(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Avatar)

	// deleting twice is harmless
	require.NoError(t, users.DeleteAvatar(ctx, alice.ID))
}

func TestSetAvatarRejectsGarbage(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	users := service.NewUserService(db, service.NewImageService(testhelpers.NewMemoryObjectStore()))
	alice := testhelpers.CreateUser(t, db, "alice")

	_, err := users.SetAvatar(context.Background(), alice.ID, "not-an-image")
	var errs validation.Errors
	require.ErrorAs(t, err, &errs)
	assert.ErrorIs(t, errs["avatar"], service.ErrInvalidImage)
}

func TestListUsers(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	users := service.NewUserService(db, service.NewImageService(testhelpers.NewMemoryObjectStore()))
	for _, name := range []string{"carol", "alice", "bob"} {
		testhelpers.CreateUser(t, db, name)
	}

	page, total, err := users.List(context.Background(), service.PageRequest{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, page, 2)
	assert.Equal(t, "alice", page[0].Username)
	assert.Equal(t, "bob", page[1].Username)

	rest, _, err := users.List(context.Background(), service.PageRequest{Page: 2, Limit: 2})
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, "carol", rest[0].Username)

	_, err = users.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, service.ErrUserNotFound)
}
