// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"github.com/potluckapp/potluck/internal/models"
)

// Store defines the interface for Potluck storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL,
// etc.) without changing the service layer.
//
// Get* methods return (nil, nil) when the row does not exist; callers
// decide whether absence is an error. Create methods that hit a unique
// constraint return an apperr conflict error.
type Store interface {
	// Users

	// CreateUser persists a new user. Duplicate emails yield a conflict error.
	CreateUser(ctx context.Context, user *models.User) error
	// GetUserByEmail retrieves a user by email address.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// Groups and memberships

	// CreateGroup persists a group and its creator's admin membership in
	// one transaction.
	CreateGroup(ctx context.Context, group *models.Group) error
	// GetGroupByID retrieves a group by ID.
	GetGroupByID(ctx context.Context, id string) (*models.Group, error)
	// GetGroupByInviteCode retrieves a group by its (upper-case) invite code.
	GetGroupByInviteCode(ctx context.Context, code string) (*models.Group, error)
	// UpdateGroup applies a partial update; nil fields keep their prior value.
	UpdateGroup(ctx context.Context, groupID string, name, description *string) error
	// SetInviteCode replaces the group's invite code.
	SetInviteCode(ctx context.Context, groupID, code string) error
	// CreateMembership inserts a membership. A duplicate (user, group)
	// pair yields a conflict error.
	CreateMembership(ctx context.Context, membership *models.Membership) error
	// GetMembership retrieves the membership of a user in a group.
	GetMembership(ctx context.Context, userID, groupID string) (*models.Membership, error)
	// DeleteMembership removes a user from a group.
	DeleteMembership(ctx context.Context, userID, groupID string) error
	// CountAdmins returns the number of admin members in a group.
	CountAdmins(ctx context.Context, groupID string) (int, error)
	// ListGroupsForUser returns the user's groups with role and live
	// counts, most recently joined first.
	ListGroupsForUser(ctx context.Context, userID string) ([]*models.GroupSummary, error)
	// ListGroupMembers returns the group roster ordered by join time ascending.
	ListGroupMembers(ctx context.Context, groupID string) ([]models.Member, error)

	// Recipes and comments

	// CreateRecipe persists a new recipe.
	CreateRecipe(ctx context.Context, recipe *models.Recipe) error
	// GetRecipeByID retrieves a bare recipe row (no annotations).
	GetRecipeByID(ctx context.Context, id string) (*models.Recipe, error)
	// GetRecipeView retrieves a recipe annotated with author and group.
	GetRecipeView(ctx context.Context, id string) (*models.RecipeView, error)
	// UpdateRecipe overwrites the mutable fields of a recipe.
	UpdateRecipe(ctx context.Context, recipe *models.Recipe) error
	// DeleteRecipe removes a recipe; its comments cascade.
	DeleteRecipe(ctx context.Context, id string) error
	// ListFeed returns recipes from every group the user belongs to,
	// newest first, capped at limit.
	ListFeed(ctx context.Context, userID string, limit int) ([]*models.RecipeView, error)
	// CreateComment persists a new comment.
	CreateComment(ctx context.Context, comment *models.Comment) error
	// ListComments returns a recipe's comments oldest first.
	ListComments(ctx context.Context, recipeID string) ([]models.CommentView, error)

	// Close releases any resources held by the store.
	Close() error
}
