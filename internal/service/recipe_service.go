package service

import (
	"context"
	"log/slog"

	"github.com/potluckapp/potluck/internal/apperr"
	"github.com/potluckapp/potluck/internal/models"
	"github.com/potluckapp/potluck/internal/storage"
)

// FeedLimit caps the feed at a fixed page size. There is no further
// pagination.
const FeedLimit = 50

// RecipeService handles recipe and comment operations, scoped by group
// membership.
type RecipeService struct {
	store storage.Store
}

// NewRecipeService creates a new RecipeService with the given storage backend.
func NewRecipeService(store storage.Store) *RecipeService {
	return &RecipeService{store: store}
}

// CreateRecipeInput carries the fields of a new recipe. Optional fields
// are pointers; nil means absent.
type CreateRecipeInput struct {
	GroupID    string
	Title      string
	SourceURL  *string
	SourceName *string
	ImageURL   *string
	Rating     *int
	Notes      *string
	CookDate   *string
}

// UpdateRecipeInput carries a partial recipe update. Nil fields keep
// their prior value.
type UpdateRecipeInput struct {
	Title      *string
	SourceURL  *string
	SourceName *string
	ImageURL   *string
	Rating     *int
	Notes      *string
	CookDate   *string
}

// validateRating rejects ratings outside 1..5 before they reach storage.
// The DB CHECK constraint remains as a backstop.
func validateRating(rating *int) error {
	if rating != nil && (*rating < 1 || *rating > 5) {
		return apperr.New(apperr.KindValidation, "rating must be between 1 and 5")
	}
	return nil
}

// CreateRecipe posts a recipe into a group the author belongs to.
func (s *RecipeService) CreateRecipe(ctx context.Context, authorID string, in CreateRecipeInput) (*models.Recipe, error) {
	slog.Info("CreateRecipe request received", "author_id", authorID, "group_id", in.GroupID)

	if in.Title == "" || in.GroupID == "" {
		return nil, apperr.New(apperr.KindValidation, "title and group are required")
	}
	if err := validateRating(in.Rating); err != nil {
		return nil, err
	}

	if err := s.requireMembership(ctx, authorID, in.GroupID); err != nil {
		return nil, err
	}

	recipe := models.NewRecipe(authorID, in.GroupID, in.Title)
	recipe.SourceURL = in.SourceURL
	recipe.SourceName = in.SourceName
	recipe.ImageURL = in.ImageURL
	recipe.Rating = in.Rating
	recipe.Notes = in.Notes
	recipe.CookDate = in.CookDate

	if err := s.store.CreateRecipe(ctx, recipe); err != nil {
		slog.Error("CreateRecipe failed", "error", err)
		return nil, err
	}

	slog.Info("Recipe created", "recipe_id", recipe.ID, "group_id", recipe.GroupID)
	return recipe, nil
}

// GetFeed returns recipes from every group the caller belongs to,
// newest first, capped at FeedLimit.
func (s *RecipeService) GetFeed(ctx context.Context, userID string) ([]*models.RecipeView, error) {
	feed, err := s.store.ListFeed(ctx, userID, FeedLimit)
	if err != nil {
		slog.Error("GetFeed failed", "user_id", userID, "error", err)
		return nil, err
	}
	return feed, nil
}

// GetRecipeDetail returns a recipe with its comments, oldest first.
// Members of the recipe's group only.
func (s *RecipeService) GetRecipeDetail(ctx context.Context, callerID, recipeID string) (*models.RecipeDetail, error) {
	view, err := s.store.GetRecipeView(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	if view == nil {
		return nil, apperr.New(apperr.KindNotFound, "recipe not found")
	}

	if err := s.requireMembership(ctx, callerID, view.GroupID); err != nil {
		return nil, err
	}

	comments, err := s.store.ListComments(ctx, recipeID)
	if err != nil {
		slog.Error("GetRecipeDetail comments query failed", "recipe_id", recipeID, "error", err)
		return nil, err
	}

	return &models.RecipeDetail{
		RecipeView: *view,
		Comments:   comments,
	}, nil
}

// UpdateRecipe applies a partial update. Author only; group admins have
// no override.
func (s *RecipeService) UpdateRecipe(ctx context.Context, callerID, recipeID string, in UpdateRecipeInput) error {
	slog.Info("UpdateRecipe request received", "caller_id", callerID, "recipe_id", recipeID)

	if err := validateRating(in.Rating); err != nil {
		return err
	}

	recipe, err := s.requireAuthor(ctx, callerID, recipeID)
	if err != nil {
		return err
	}

	if in.Title != nil && *in.Title != "" {
		recipe.Title = *in.Title
	}
	if in.SourceURL != nil {
		recipe.SourceURL = in.SourceURL
	}
	if in.SourceName != nil {
		recipe.SourceName = in.SourceName
	}
	if in.ImageURL != nil {
		recipe.ImageURL = in.ImageURL
	}
	if in.Rating != nil {
		recipe.Rating = in.Rating
	}
	if in.Notes != nil {
		recipe.Notes = in.Notes
	}
	if in.CookDate != nil {
		recipe.CookDate = in.CookDate
	}

	if err := s.store.UpdateRecipe(ctx, recipe); err != nil {
		slog.Error("UpdateRecipe failed", "recipe_id", recipeID, "error", err)
		return err
	}

	slog.Info("Recipe updated", "recipe_id", recipeID)
	return nil
}

// DeleteRecipe removes a recipe and, by cascade, its comments. Author only.
func (s *RecipeService) DeleteRecipe(ctx context.Context, callerID, recipeID string) error {
	slog.Info("DeleteRecipe request received", "caller_id", callerID, "recipe_id", recipeID)

	if _, err := s.requireAuthor(ctx, callerID, recipeID); err != nil {
		return err
	}

	if err := s.store.DeleteRecipe(ctx, recipeID); err != nil {
		slog.Error("DeleteRecipe failed", "recipe_id", recipeID, "error", err)
		return err
	}

	slog.Info("Recipe deleted", "recipe_id", recipeID)
	return nil
}

// AddComment posts a comment on a recipe in a group the caller belongs to.
func (s *RecipeService) AddComment(ctx context.Context, authorID, recipeID, content string) (*models.Comment, error) {
	slog.Info("AddComment request received", "author_id", authorID, "recipe_id", recipeID)

	if content == "" {
		return nil, apperr.New(apperr.KindValidation, "comment content is required")
	}

	recipe, err := s.store.GetRecipeByID(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	if recipe == nil {
		return nil, apperr.New(apperr.KindNotFound, "recipe not found")
	}

	if err := s.requireMembership(ctx, authorID, recipe.GroupID); err != nil {
		return nil, err
	}

	comment := models.NewComment(recipeID, authorID, content)
	if err := s.store.CreateComment(ctx, comment); err != nil {
		slog.Error("AddComment failed", "recipe_id", recipeID, "error", err)
		return nil, err
	}

	slog.Info("Comment added", "comment_id", comment.ID, "recipe_id", recipeID)
	return comment, nil
}

// requireMembership fails with an authorization error unless the user is
// a member of the group.
func (s *RecipeService) requireMembership(ctx context.Context, userID, groupID string) error {
	membership, err := s.store.GetMembership(ctx, userID, groupID)
	if err != nil {
		return err
	}
	if membership == nil {
		return apperr.New(apperr.KindAuthorization, "you are not a member of this group")
	}
	return nil
}

// requireAuthor fails unless the caller wrote the recipe. Missing
// recipes are not-found; someone else's recipes are forbidden.
func (s *RecipeService) requireAuthor(ctx context.Context, callerID, recipeID string) (*models.Recipe, error) {
	recipe, err := s.store.GetRecipeByID(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	if recipe == nil {
		return nil, apperr.New(apperr.KindNotFound, "recipe not found")
	}
	if recipe.UserID != callerID {
		return nil, apperr.New(apperr.KindAuthorization, "you can only modify your own recipes")
	}
	return recipe, nil
}
