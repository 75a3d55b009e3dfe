package service

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"math"
	"sort"
	"strconv"

	"github.com/google/uuid"
	pgvector "github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/models"
)

// IngredientEmbedding folds a set of ingredient ids into a unit vector so
// that recipes sharing ingredients end up close in L2 distance. Returns nil
// for an empty set.
func IngredientEmbedding(ids []uint) *pgvector.Vector {
	if len(ids) == 0 {
		return nil
	}
	values := make([]float32, models.EmbeddingDimensions)
	for _, id := range ids {
		h := fnv.New32a()
		h.Write([]byte(strconv.FormatUint(uint64(id), 10)))
		values[h.Sum32()%models.EmbeddingDimensions]++
	}

	var norm float64
	for _, v := range values {
		norm += float64(v) * float64(v)
	}
	norm = math.Sqrt(norm)
	for i := range values {
		values[i] = float32(float64(values[i]) / norm)
	}

	v := pgvector.NewVector(values)
	return &v
}

type SimilarityService struct {
	db *gorm.DB
}

var _ ISimilarityService = (*SimilarityService)(nil)

func NewSimilarityService(db *gorm.DB) *SimilarityService {
	return &SimilarityService{db: db}
}

// Similar returns up to limit other recipes ordered by embedding distance to
// the given one. Postgres ranks with the pgvector operator; other drivers
// rank in memory.
func (s *SimilarityService) Similar(ctx context.Context, recipeID uuid.UUID, viewer *uuid.UUID, limit int) ([]models.Recipe, error) {
	var source models.Recipe
	err := s.db.WithContext(ctx).Select("id", "embedding").Take(&source, "id = ?", recipeID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRecipeNotFound
	}
	if err != nil {
		return nil, err
	}
	if source.Embedding == nil || limit <= 0 {
		return []models.Recipe{}, nil
	}

	if database.IsPostgres(s.db) {
		var recipes []models.Recipe
		err := preloadRecipe(annotateForViewer(s.db.WithContext(ctx).Model(&models.Recipe{}), viewer)).
			Where("recipes.id <> ? AND recipes.embedding IS NOT NULL", recipeID).
			Clauses(clause.OrderBy{Expression: clause.Expr{
				SQL:                "recipes.embedding <-> ?",
				Vars:               []interface{}{*source.Embedding},
				WithoutParentheses: true,
			}}).
			Limit(limit).
			Find(&recipes).Error
		if err != nil {
			return nil, fmt.Errorf("similar recipes: %w", err)
		}
		return recipes, nil
	}

	return s.rankInMemory(ctx, source, viewer, limit)
}

type candidate struct {
	id       uuid.UUID
	distance float64
}

func (s *SimilarityService) rankInMemory(ctx context.Context, source models.Recipe, viewer *uuid.UUID, limit int) ([]models.Recipe, error) {
	var others []models.Recipe
	err := s.db.WithContext(ctx).
		Select("id", "embedding").
		Where("id <> ? AND embedding IS NOT NULL", source.ID).
		Find(&others).Error
	if err != nil {
		return nil, fmt.Errorf("load embeddings: %w", err)
	}

	target := source.Embedding.Slice()
	ranked := make([]candidate, 0, len(others))
	for _, r := range others {
		if r.Embedding == nil {
			continue
		}
		ranked = append(ranked, candidate{id: r.ID, distance: l2Distance(target, r.Embedding.Slice())})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].distance != ranked[j].distance {
			return ranked[i].distance < ranked[j].distance
		}
		return ranked[i].id.String() < ranked[j].id.String()
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	if len(ranked) == 0 {
		return []models.Recipe{}, nil
	}

	ids := make([]uuid.UUID, 0, len(ranked))
	for _, c := range ranked {
		ids = append(ids, c.id)
	}
	var loaded []models.Recipe
	err = preloadRecipe(annotateForViewer(s.db.WithContext(ctx).Model(&models.Recipe{}), viewer)).
		Where("recipes.id IN ?", ids).
		Find(&loaded).Error
	if err != nil {
		return nil, fmt.Errorf("similar recipes: %w", err)
	}

	byID := make(map[uuid.UUID]models.Recipe, len(loaded))
	for _, r := range loaded {
		byID[r.ID] = r
	}
	recipes := make([]models.Recipe, 0, len(ranked))
	for _, c := range ranked {
		if r, ok := byID[c.id]; ok {
			recipes = append(recipes, r)
		}
	}
	return recipes, nil
}

func l2Distance(a, b []float32) float64 {
	if len(a) != len(b) {
		return math.Inf(1)
	}
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}
