package api_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
)

func TestRegisterAndLogin(t *testing.T) {
	h := newHarness(t)

	w := h.do(t, http.MethodPost, "/api/v1/users", types.RegisterRequest{
		Email:     "Cook@Example.com",
		Username:  "cook",
		FirstName: "Ada",
		LastName:  "Baker",
		Password:  "long-enough",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	registered := decode[types.RegisteredUserView](t, w)
	assert.Equal(t, "cook@example.com", registered.Email)
	assert.NotContains(t, w.Body.String(), "password")

	w = h.do(t, http.MethodPost, "/api/v1/auth/token/login", types.LoginRequest{Email: "cook@example.com", Password: "long-enough"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	token := decode[types.TokenView](t, w).AuthToken
	require.NotEmpty(t, token)

	w = h.do(t, http.MethodGet, "/api/v1/users/me", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, registered.ID, decode[types.UserView](t, w).ID)

	w = h.do(t, http.MethodPost, "/api/v1/auth/token/logout", nil, token)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRegisterValidation(t *testing.T) {
	h := newHarness(t)

	w := h.do(t, http.MethodPost, "/api/v1/users", types.RegisterRequest{Email: "nope", Username: "bad name!"}, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	errs := decode[map[string]interface{}](t, w)
	for _, field := range []string{"email", "username", "first_name", "last_name", "password"} {
		assert.Contains(t, errs, field)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	h := newHarness(t)
	testhelpers.CreateUser(t, h.db, "cook")

	w := h.do(t, http.MethodPost, "/api/v1/auth/token/login", types.LoginRequest{Email: "cook@example.com", Password: "wrong-password"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMeRequiresToken(t *testing.T) {
	h := newHarness(t)

	w := h.do(t, http.MethodGet, "/api/v1/users/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = h.do(t, http.MethodGet, "/api/v1/users/me", nil, "garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSetPassword(t *testing.T) {
	h := newHarness(t)
	user := testhelpers.CreateUser(t, h.db, "cook")
	token := h.token(t, user)

	w := h.do(t, http.MethodPost, "/api/v1/users/set_password", types.SetPasswordRequest{
		CurrentPassword: "wrong-password",
		NewPassword:     "another-secret",
	}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = h.do(t, http.MethodPost, "/api/v1/users/set_password", types.SetPasswordRequest{
		CurrentPassword: testhelpers.TestPassword,
		NewPassword:     "another-secret",
	}, token)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = h.do(t, http.MethodPost, "/api/v1/auth/token/login", types.LoginRequest{Email: user.Email, Password: "another-secret"}, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAvatar(t *testing.T) {
	h := newHarness(t)
	user := testhelpers.CreateUser(t, h.db, "cook")
	token := h.token(t, user)

	w := h.do(t, http.MethodPut, "/api/v1/users/me/avatar", types.AvatarRequest{}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = h.do(t, http.MethodPut, "/api/v1/users/me/avatar", types.AvatarRequest{Avatar: testhelpers.PNGDataURI}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	avatar := decode[types.AvatarView](t, w).Avatar
	assert.True(t, h.store.Has(avatar))

	w = h.do(t, http.MethodGet, "/api/v1/users/"+user.ID.String(), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	view := decode[types.UserView](t, w)
	require.NotNil(t, view.Avatar)
	assert.Equal(t, avatar, *view.Avatar)

	w = h.do(t, http.MethodDelete, "/api/v1/users/me/avatar", nil, token)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Zero(t, h.store.Len())
}

func TestListUsersMarksSubscriptions(t *testing.T) {
	h := newHarness(t)
	reader := testhelpers.CreateUser(t, h.db, "reader")
	author := testhelpers.CreateUser(t, h.db, "author")
	token := h.token(t, reader)

	w := h.do(t, http.MethodPost, "/api/v1/users/"+author.ID.String()+"/subscribe", nil, token)
	require.Equal(t, http.StatusCreated, w.Code)

	w = h.do(t, http.MethodGet, "/api/v1/users", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[types.Page[types.UserView]](t, w)
	require.Len(t, page.Results, 2)
	// ordered by username
	assert.Equal(t, "author", page.Results[0].Username)
	assert.True(t, page.Results[0].IsSubscribed)
	assert.False(t, page.Results[1].IsSubscribed)

	w = h.do(t, http.MethodGet, "/api/v1/users", nil, "")
	page = decode[types.Page[types.UserView]](t, w)
	assert.False(t, page.Results[0].IsSubscribed)
}

func TestSubscriptions(t *testing.T) {
	k := newKitchen(t)
	k.createRecipe(t, "Pancakes")
	k.createRecipe(t, "Waffles")
	reader := testhelpers.CreateUser(t, k.db, "reader")
	token := k.token(t, reader)
	path := "/api/v1/users/" + k.author.ID.String() + "/subscribe"

	w := k.do(t, http.MethodPost, path+"?recipes_limit=1", nil, token)
	require.Equal(t, http.StatusCreated, w.Code)
	sub := decode[types.SubscriptionView](t, w)
	assert.True(t, sub.IsSubscribed)
	assert.Len(t, sub.Recipes, 1)
	assert.EqualValues(t, 2, sub.RecipesCount)

	w = k.do(t, http.MethodPost, path, nil, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = k.do(t, http.MethodGet, "/api/v1/users/subscriptions", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[types.Page[types.SubscriptionView]](t, w)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "chef", page.Results[0].Username)
	assert.Len(t, page.Results[0].Recipes, 2)

	w = k.do(t, http.MethodGet, "/api/v1/users/subscriptions?recipes_limit=x", nil, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = k.do(t, http.MethodDelete, path, nil, token)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = k.do(t, http.MethodDelete, path, nil, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSelfSubscribeRejected(t *testing.T) {
	h := newHarness(t)
	user := testhelpers.CreateUser(t, h.db, "cook")

	w := h.do(t, http.MethodPost, "/api/v1/users/"+user.ID.String()+"/subscribe", nil, h.token(t, user))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubscribeUnknownUser(t *testing.T) {
	h := newHarness(t)
	user := testhelpers.CreateUser(t, h.db, "cook")

	w := h.do(t, http.MethodPost, "/api/v1/users/00000000-0000-0000-0000-000000000001/subscribe", nil, h.token(t, user))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
