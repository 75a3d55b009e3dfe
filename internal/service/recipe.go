package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

// RecipeFilter narrows recipe listings. The membership flags only apply to
// authenticated viewers.
type RecipeFilter struct {
	AuthorID         *uuid.UUID
	TagSlugs         []string
	IsFavorited      bool
	IsInShoppingCart bool
}

// RecipeService owns the recipe aggregate: the recipe row, its tag links and
// its ingredient lines.
type RecipeService struct {
	db     *gorm.DB
	links  *ShortLinkGenerator
	images ImageStore
	limits types.RecipeLimits
}

var _ IRecipeService = (*RecipeService)(nil)

func NewRecipeService(db *gorm.DB, links *ShortLinkGenerator, images ImageStore, limits types.RecipeLimits) *RecipeService {
	return &RecipeService{
		db:     db,
		links:  links,
		images: images,
		limits: limits,
	}
}

const membershipExists = "EXISTS (SELECT 1 FROM recipe_memberships m WHERE m.kind = ? AND m.user_id = ? AND m.recipe_id = recipes.id)"

// annotateForViewer adds is_favorited and is_in_shopping_cart to a recipes
// query. Anonymous viewers get constant false without touching memberships.
func annotateForViewer(q *gorm.DB, viewer *uuid.UUID) *gorm.DB {
	if viewer == nil {
		return q.Select("recipes.*, FALSE AS is_favorited, FALSE AS is_in_shopping_cart")
	}
	return q.Select(
		"recipes.*, "+membershipExists+" AS is_favorited, "+membershipExists+" AS is_in_shopping_cart",
		models.Favorite, *viewer, models.ShoppingCart, *viewer,
	)
}

func preloadRecipe(q *gorm.DB) *gorm.DB {
	return q.
		Preload("Author").
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.name") }).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("recipe_ingredients.position") }).
		Preload("Ingredients.Ingredient")
}

func membershipSubquery(db *gorm.DB, kind models.MembershipKind, userID uuid.UUID) *gorm.DB {
	return db.Model(&models.RecipeMembership{}).Select("recipe_id").Where("kind = ? AND user_id = ?", kind, userID)
}

func (s *RecipeService) Get(ctx context.Context, id uuid.UUID, viewer *uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	q := preloadRecipe(annotateForViewer(s.db.WithContext(ctx).Model(&models.Recipe{}), viewer))
	if err := q.Where("recipes.id = ?", id).Take(&recipe).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, fmt.Errorf("get recipe: %w", err)
	}
	return &recipe, nil
}

func (s *RecipeService) List(ctx context.Context, filter RecipeFilter, viewer *uuid.UUID, page PageRequest) ([]models.Recipe, int64, error) {
	db := s.db.WithContext(ctx)
	filtered := func() *gorm.DB {
		q := db.Model(&models.Recipe{})
		if filter.AuthorID != nil {
			q = q.Where("recipes.author_id = ?", *filter.AuthorID)
		}
		if len(filter.TagSlugs) > 0 {
			tagged := db.Table("recipe_tags").
				Select("recipe_tags.recipe_id").
				Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
				Where("tags.slug IN ?", filter.TagSlugs)
			q = q.Where("recipes.id IN (?)", tagged)
		}
		if viewer != nil {
			if filter.IsFavorited {
				q = q.Where("recipes.id IN (?)", membershipSubquery(db, models.Favorite, *viewer))
			}
			if filter.IsInShoppingCart {
				q = q.Where("recipes.id IN (?)", membershipSubquery(db, models.ShoppingCart, *viewer))
			}
		}
		return q
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count recipes: %w", err)
	}

	var recipes []models.Recipe
	err := preloadRecipe(annotateForViewer(filtered(), viewer)).
		Order("recipes.created_at DESC").
		Order("recipes.id").
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&recipes).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list recipes: %w", err)
	}
	return recipes, total, nil
}

func (s *RecipeService) Create(ctx context.Context, authorID uuid.UUID, req types.RecipeWriteRequest) (*models.Recipe, error) {
	if err := s.validate(ctx, req, true); err != nil {
		return nil, err
	}

	image, err := s.images.Save(ctx, "recipes", req.Image)
	if err != nil {
		return nil, imageFieldError("image", err)
	}

	var recipe *models.Recipe
	for {
		recipe = &models.Recipe{
			AuthorID:    authorID,
			Name:        req.Name,
			Text:        req.Text,
			Image:       image,
			CookingTime: req.CookingTime,
			Embedding:   IngredientEmbedding(ingredientIDs(req)),
		}
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			token, err := s.links.Generate(ctx, tx)
			if err != nil {
				return err
			}
			recipe.ShortLink = token
			if err := tx.Omit(clause.Associations).Create(recipe).Error; err != nil {
				if s.shortLinkCollided(ctx, tx, err, token) {
					return errShortLinkCollision
				}
				return err
			}
			return replaceAssociations(tx, recipe.ID, req)
		})
		// another creator took the token between the check and the insert
		if errors.Is(err, errShortLinkCollision) && ctx.Err() == nil {
			log.Warn().Str("short_link", recipe.ShortLink).Msg("short link collided on insert, retrying")
			continue
		}
		break
	}
	if err != nil {
		removeQuietly(ctx, s.images, image)
		return nil, fmt.Errorf("create recipe: %w", err)
	}

	log.Info().Str("recipe_id", recipe.ID.String()).Str("author_id", authorID.String()).Msg("recipe created")
	return s.Get(ctx, recipe.ID, &authorID)
}

// Update rewrites the scalar fields and replaces both association sets in a
// single transaction. The short link is left alone.
func (s *RecipeService) Update(ctx context.Context, id, editorID uuid.UUID, req types.RecipeWriteRequest) (*models.Recipe, error) {
	recipe, err := s.ownedRecipe(ctx, id, editorID)
	if err != nil {
		return nil, err
	}
	if err := s.validate(ctx, req, false); err != nil {
		return nil, err
	}

	oldImage, newImage := recipe.Image, recipe.Image
	if isDataURI(req.Image) {
		if newImage, err = s.images.Save(ctx, "recipes", req.Image); err != nil {
			return nil, imageFieldError("image", err)
		}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"name":         req.Name,
			"text":         req.Text,
			"cooking_time": req.CookingTime,
			"image":        newImage,
			"embedding":    IngredientEmbedding(ingredientIDs(req)),
		}
		if err := tx.Model(&models.Recipe{}).Where("id = ?", recipe.ID).Updates(updates).Error; err != nil {
			return err
		}
		return replaceAssociations(tx, recipe.ID, req)
	})
	if err != nil {
		if newImage != oldImage {
			removeQuietly(ctx, s.images, newImage)
		}
		return nil, fmt.Errorf("update recipe: %w", err)
	}
	if newImage != oldImage {
		removeQuietly(ctx, s.images, oldImage)
	}

	return s.Get(ctx, id, &editorID)
}

// Delete removes the recipe with everything hanging off it.
func (s *RecipeService) Delete(ctx context.Context, id, editorID uuid.UUID) error {
	recipe, err := s.ownedRecipe(ctx, id, editorID)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", id).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM recipe_tags WHERE recipe_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&models.RecipeMembership{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Recipe{}, "id = ?", id).Error
	})
	if err != nil {
		return fmt.Errorf("delete recipe: %w", err)
	}

	removeQuietly(ctx, s.images, recipe.Image)
	return nil
}

func (s *RecipeService) ownedRecipe(ctx context.Context, id, editorID uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).Omit("embedding").First(&recipe, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}
	if recipe.AuthorID != editorID {
		return nil, ErrNotRecipeAuthor
	}
	return &recipe, nil
}

var errShortLinkCollision = errors.New("short link taken on insert")

// shortLinkCollided reports whether the failed insert hit a unique violation
// on token. Translated driver errors do not always name the column, so the
// token is looked up again through tx. Postgres names the constraint and
// refuses further statements in an aborted transaction.
func (s *RecipeService) shortLinkCollided(ctx context.Context, tx *gorm.DB, err error, token string) bool {
	if !database.IsUniqueViolation(err) {
		return false
	}
	if database.ViolatesColumn(err, "short_link") {
		return true
	}
	if database.IsPostgres(tx) {
		return false
	}
	taken, lookupErr := s.links.Taken(ctx, tx, token)
	if lookupErr != nil {
		log.Warn().Err(lookupErr).Msg("short link lookup after unique violation failed")
		return false
	}
	return taken
}

// validate runs the request rules and the catalog lookups and reports every
// failing field together. A shape error on a field wins over its lookup error.
func (s *RecipeService) validate(ctx context.Context, req types.RecipeWriteRequest, requireImage bool) error {
	errs := validation.Errors{}
	if err := req.Validate(s.limits, requireImage); err != nil {
		var fieldErrs validation.Errors
		if !errors.As(err, &fieldErrs) {
			return err
		}
		for field, fieldErr := range fieldErrs {
			errs[field] = fieldErr
		}
	}

	refErrs, err := s.checkReferences(ctx, req)
	if err != nil {
		return err
	}
	for field, refErr := range refErrs {
		if _, taken := errs[field]; !taken {
			errs[field] = refErr
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// checkReferences reports unknown tag and ingredient ids as field errors.
func (s *RecipeService) checkReferences(ctx context.Context, req types.RecipeWriteRequest) (validation.Errors, error) {
	errs := validation.Errors{}

	if len(req.Tags) > 0 {
		var tagIDs []uint
		if err := s.db.WithContext(ctx).Model(&models.Tag{}).Where("id IN ?", req.Tags).Pluck("id", &tagIDs).Error; err != nil {
			return nil, err
		}
		if missing := missingIDs(req.Tags, tagIDs); len(missing) > 0 {
			errs["tags"] = fmt.Errorf("unknown tag ids: %v", missing)
		}
	}

	if ids := ingredientIDs(req); len(ids) > 0 {
		var found []uint
		if err := s.db.WithContext(ctx).Model(&models.Ingredient{}).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
			return nil, err
		}
		if missing := missingIDs(ids, found); len(missing) > 0 {
			errs["ingredients"] = fmt.Errorf("unknown ingredient ids: %v", missing)
		}
	}

	return errs, nil
}

// replaceAssociations clears and reinserts the tag links and ingredient lines.
func replaceAssociations(tx *gorm.DB, recipeID uuid.UUID, req types.RecipeWriteRequest) error {
	if err := tx.Exec("DELETE FROM recipe_tags WHERE recipe_id = ?", recipeID).Error; err != nil {
		return err
	}
	links := make([]map[string]interface{}, 0, len(req.Tags))
	for _, tagID := range req.Tags {
		links = append(links, map[string]interface{}{"recipe_id": recipeID, "tag_id": tagID})
	}
	if len(links) > 0 {
		if err := tx.Table("recipe_tags").Create(links).Error; err != nil {
			return err
		}
	}

	if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.RecipeIngredient{}).Error; err != nil {
		return err
	}
	lines := make([]models.RecipeIngredient, 0, len(req.Ingredients))
	for i, item := range req.Ingredients {
		lines = append(lines, models.RecipeIngredient{
			RecipeID:     recipeID,
			IngredientID: item.ID,
			Amount:       item.Amount,
			Position:     i,
		})
	}
	if len(lines) == 0 {
		return nil
	}
	return tx.Omit(clause.Associations).Create(&lines).Error
}

func ingredientIDs(req types.RecipeWriteRequest) []uint {
	ids := make([]uint, 0, len(req.Ingredients))
	for _, item := range req.Ingredients {
		ids = append(ids, item.ID)
	}
	return ids
}

func missingIDs(wanted, found []uint) []uint {
	present := make(map[uint]bool, len(found))
	for _, id := range found {
		present[id] = true
	}
	var missing []uint
	for _, id := range wanted {
		if !present[id] {
			missing = append(missing, id)
		}
	}
	sort.Slice(missing, func(i, j int) bool { return missing[i] < missing[j] })
	return missing
}

func imageFieldError(field string, err error) error {
	if errors.Is(err, ErrInvalidImage) || errors.Is(err, ErrImageTooLarge) {
		return validation.Errors{field: err}
	}
	return err
}
