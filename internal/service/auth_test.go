package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
)

// memoryRevoker is a TokenRevoker that can be told to fail.
type memoryRevoker struct {
	mu      sync.Mutex
	revoked map[string]time.Duration
	err     error
}

func newMemoryRevoker() *memoryRevoker {
	return &memoryRevoker{revoked: map[string]time.Duration{}}
}

func (r *memoryRevoker) Revoke(_ context.Context, id string, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.revoked[id] = ttl
	return nil
}

func (r *memoryRevoker) IsRevoked(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return false, r.err
	}
	_, ok := r.revoked[id]
	return ok, nil
}

func registerRequest(username string) types.RegisterRequest {
	return types.RegisterRequest{
		Email:     username + "@example.com",
		Username:  username,
		FirstName: "Test",
		LastName:  "User",
		Password:  "correct-horse",
	}
}

func TestRegisterAndLogin(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	auth := service.NewAuthService(db, "test-secret", time.Hour, nil)
	ctx := context.Background()

	req := registerRequest("alice")
	req.Email = "  Alice@Example.com "
	user, err := auth.Register(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.NotEqual(t, "correct-horse", user.PasswordHash)

	token, err := auth.Login(ctx, types.LoginRequest{Email: "ALICE@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	claims, err := auth.ValidateToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.NotEmpty(t, claims.ID)

	_, err = auth.Login(ctx, types.LoginRequest{Email: "alice@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	_, err = auth.Login(ctx, types.LoginRequest{Email: "nobody@example.com", Password: "correct-horse"})
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestRegisterDuplicateReportsFields(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	auth := service.NewAuthService(db, "test-secret", time.Hour, nil)
	ctx := context.Background()

	_, err := auth.Register(ctx, registerRequest("alice"))
	require.NoError(t, err)

	dup := registerRequest("alice")
	dup.Email = "other@example.com"
	_, err = auth.Register(ctx, dup)

	var errs validation.Errors
	require.ErrorAs(t, err, &errs)
	assert.Contains(t, errs, "username")
	assert.NotContains(t, errs, "email")
}

func TestRegisterValidation(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	auth := service.NewAuthService(db, "test-secret", time.Hour, nil)

	_, err := auth.Register(context.Background(), types.RegisterRequest{Email: "nope", Password: "short"})
	var errs validation.Errors
	require.ErrorAs(t, err, &errs)
	for _, field := range []string{"email", "username", "first_name", "last_name", "password"} {
		assert.Contains(t, errs, field)
	}
}

func TestValidateTokenRejectsForgeries(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	auth := service.NewAuthService(db, "test-secret", time.Hour, nil)
	user := testhelpers.CreateUser(t, db, "alice")

	other := service.NewAuthService(db, "another-secret", time.Hour, nil)
	forged, err := other.GenerateToken(user)
	require.NoError(t, err)
	_, err = auth.ValidateToken(context.Background(), forged)
	assert.ErrorIs(t, err, service.ErrInvalidToken)

	expired := service.NewAuthService(db, "test-secret", -time.Minute, nil)
	stale, err := expired.GenerateToken(user)
	require.NoError(t, err)
	_, err = auth.ValidateToken(context.Background(), stale)
	assert.ErrorIs(t, err, service.ErrInvalidToken)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, types.TokenClaims{UserID: user.ID})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = auth.ValidateToken(context.Background(), unsigned)
	assert.ErrorIs(t, err, service.ErrInvalidToken)

	anonymous := jwt.NewWithClaims(jwt.SigningMethodHS256, types.TokenClaims{UserID: uuid.Nil})
	noUser, err := anonymous.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = auth.ValidateToken(context.Background(), noUser)
	assert.ErrorIs(t, err, service.ErrInvalidToken)
}

func TestLogoutRevokesToken(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	revoker := newMemoryRevoker()
	auth := service.NewAuthService(db, "test-secret", time.Hour, revoker)
	ctx := context.Background()
	user := testhelpers.CreateUser(t, db, "alice")

	token, err := auth.GenerateToken(user)
	require.NoError(t, err)
	claims, err := auth.ValidateToken(ctx, token)
	require.NoError(t, err)

	require.NoError(t, auth.Logout(ctx, claims))
	assert.InDelta(t, time.Hour.Seconds(), revoker.revoked[claims.ID].Seconds(), 5)

	_, err = auth.ValidateToken(ctx, token)
	assert.ErrorIs(t, err, service.ErrTokenRevoked)

	fresh, err := auth.GenerateToken(user)
	require.NoError(t, err)
	_, err = auth.ValidateToken(ctx, fresh)
	assert.NoError(t, err)
}

func TestValidateTokenFailsOpenWhenRevocationUnavailable(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	revoker := newMemoryRevoker()
	revoker.err = errors.New("connection refused")
	auth := service.NewAuthService(db, "test-secret", time.Hour, revoker)
	user := testhelpers.CreateUser(t, db, "alice")

	token, err := auth.GenerateToken(user)
	require.NoError(t, err)
	_, err = auth.ValidateToken(context.Background(), token)
	assert.NoError(t, err)
}

func TestSetPassword(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	auth := service.NewAuthService(db, "test-secret", time.Hour, nil)
	ctx := context.Background()
	user := testhelpers.CreateUser(t, db, "alice")

	err := auth.SetPassword(ctx, user.ID, types.SetPasswordRequest{CurrentPassword: "wrong", NewPassword: "brand-new-pass"})
	var errs validation.Errors
	require.ErrorAs(t, err, &errs)
	assert.ErrorIs(t, errs["current_password"], service.ErrWrongPassword)

	require.NoError(t, auth.SetPassword(ctx, user.ID, types.SetPasswordRequest{
		CurrentPassword: testhelpers.TestPassword,
		NewPassword:     "brand-new-pass",
	}))

	_, err = auth.Login(ctx, types.LoginRequest{Email: user.Email, Password: "brand-new-pass"})
	assert.NoError(t, err)
	_, err = auth.Login(ctx, types.LoginRequest{Email: user.Email, Password: testhelpers.TestPassword})
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}
