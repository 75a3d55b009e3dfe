package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/models"
)

const shortLinkAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// ShortLinkGenerator draws fixed-length alphanumeric tokens. The length is
// validated by the config package, which keeps the namespace large enough
// for the unbounded retry in Generate.
type ShortLinkGenerator struct {
	length int
	random io.Reader
}

func NewShortLinkGenerator(length int) *ShortLinkGenerator {
	return &ShortLinkGenerator{length: length, random: rand.Reader}
}

func (g *ShortLinkGenerator) Length() int {
	return g.length
}

func (g *ShortLinkGenerator) token() (string, error) {
	max := big.NewInt(int64(len(shortLinkAlphabet)))
	buf := make([]byte, g.length)
	for i := range buf {
		n, err := rand.Int(g.random, max)
		if err != nil {
			return "", fmt.Errorf("read random: %w", err)
		}
		buf[i] = shortLinkAlphabet[n.Int64()]
	}
	return string(buf), nil
}

// Generate returns a token no recipe visible through db holds yet. Pass the
// transaction that will insert the recipe.
func (g *ShortLinkGenerator) Generate(ctx context.Context, db *gorm.DB) (string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		token, err := g.token()
		if err != nil {
			return "", err
		}
		taken, err := g.Taken(ctx, db, token)
		if err != nil {
			return "", err
		}
		if !taken {
			return token, nil
		}
	}
}

// Taken reports whether a recipe visible through db already holds token.
func (g *ShortLinkGenerator) Taken(ctx context.Context, db *gorm.DB, token string) (bool, error) {
	var count int64
	if err := db.WithContext(ctx).Model(&models.Recipe{}).Where("short_link = ?", token).Count(&count).Error; err != nil {
		return false, fmt.Errorf("check short link: %w", err)
	}
	return count > 0, nil
}

// Valid reports whether token has the configured shape.
func (g *ShortLinkGenerator) Valid(token string) bool {
	return len(token) == g.length && wellFormed(token)
}

func wellFormed(token string) bool {
	if token == "" {
		return false
	}
	for _, r := range token {
		if !strings.ContainsRune(shortLinkAlphabet, r) {
			return false
		}
	}
	return true
}

// ShortLinkService maps tokens to recipes and back.
type ShortLinkService struct {
	db        *gorm.DB
	generator *ShortLinkGenerator
}

var _ IShortLinkService = (*ShortLinkService)(nil)

func NewShortLinkService(db *gorm.DB, generator *ShortLinkGenerator) *ShortLinkService {
	return &ShortLinkService{db: db, generator: generator}
}

// Resolve returns the id of the recipe holding token. Tokens issued under an
// earlier length setting still resolve.
func (s *ShortLinkService) Resolve(ctx context.Context, token string) (uuid.UUID, error) {
	if !wellFormed(token) {
		return uuid.Nil, ErrShortLinkNotFound
	}
	var recipe models.Recipe
	err := s.db.WithContext(ctx).Select("id").Where("short_link = ?", token).Take(&recipe).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return uuid.Nil, ErrShortLinkNotFound
	}
	if err != nil {
		return uuid.Nil, err
	}
	return recipe.ID, nil
}

// TokenFor returns the stored token of a recipe, failing with
// ErrBrokenShortLink when it does not match the configured shape.
func (s *ShortLinkService) TokenFor(ctx context.Context, recipeID uuid.UUID) (string, error) {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).Select("id", "short_link").Where("id = ?", recipeID).Take(&recipe).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrRecipeNotFound
	}
	if err != nil {
		return "", err
	}
	if !s.generator.Valid(recipe.ShortLink) {
		return "", ErrBrokenShortLink
	}
	return recipe.ShortLink, nil
}
