package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/router"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
)

const baseURL = "http://foodgram.test"

type harness struct {
	db       *gorm.DB
	store    *testhelpers.MemoryObjectStore
	services *router.Services
	engine   *gin.Engine
}

func testConfig() *config.Config {
	return &config.Config{
		Environment:         config.Test,
		PublicBaseURL:       baseURL,
		AllowedOrigins:      []string{"http://localhost:3000"},
		NotFoundPath:        "/404",
		JWTSecret:           "test-secret",
		TokenTTL:            time.Hour,
		PageSize:            6,
		MaxPageSize:         50,
		ShortLinkLength:     6,
		MinCookingTime:      1,
		MinIngredientAmount: 1,
	}
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	cfg := testConfig()
	db := testhelpers.NewSQLiteDB(t)
	store := testhelpers.NewMemoryObjectStore()
	services := router.NewServices(cfg, db, nil, store)
	return &harness{
		db:       db,
		store:    store,
		services: services,
		engine:   router.New(cfg, db, nil, services),
	}
}

func (h *harness) token(t *testing.T, user *models.User) string {
	t.Helper()
	token, err := h.services.Auth.GenerateToken(user)
	require.NoError(t, err)
	return token
}

func (h *harness) do(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()
	var payload bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&payload).Encode(body))
	}
	req := httptest.NewRequest(method, path, &payload)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}
	w := httptest.NewRecorder()
	h.engine.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

// kitchen seeds an author with a small catalog.
type kitchen struct {
	*harness
	author      *models.User
	authorToken string
	flour       *models.Ingredient
	milk        *models.Ingredient
	lunch       *models.Tag
	dinner      *models.Tag
}

func newKitchen(t *testing.T) *kitchen {
	t.Helper()
	h := newHarness(t)
	author := testhelpers.CreateUser(t, h.db, "chef")
	return &kitchen{
		harness:     h,
		author:      author,
		authorToken: h.token(t, author),
		flour:       testhelpers.CreateIngredient(t, h.db, "flour", "g"),
		milk:        testhelpers.CreateIngredient(t, h.db, "milk", "ml"),
		lunch:       testhelpers.CreateTag(t, h.db, "Lunch"),
		dinner:      testhelpers.CreateTag(t, h.db, "Dinner"),
	}
}

func (k *kitchen) recipeBody(name string) types.RecipeWriteRequest {
	return types.RecipeWriteRequest{
		Ingredients: []types.IngredientAmountRequest{
			{ID: k.flour.ID, Amount: 200},
			{ID: k.milk.ID, Amount: 300},
		},
		Tags:        []uint{k.lunch.ID},
		Image:       testhelpers.PNGDataURI,
		Name:        name,
		Text:        "Mix and bake.",
		CookingTime: 20,
	}
}

func (k *kitchen) createRecipe(t *testing.T, name string) types.RecipeView {
	t.Helper()
	w := k.do(t, http.MethodPost, "/api/v1/recipes", k.recipeBody(name), k.authorToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[types.RecipeView](t, w)
}
