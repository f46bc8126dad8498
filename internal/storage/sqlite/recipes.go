package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/potluckapp/potluck/internal/models"
)

// CreateRecipe persists a new recipe. Out-of-range ratings are rejected
// by the CHECK constraint as a backstop; the service validates first.
func (s *SQLiteStore) CreateRecipe(ctx context.Context, recipe *models.Recipe) error {
	query := `
		INSERT INTO recipes (id, user_id, group_id, title, source_url, source_name, image_url, rating, notes, cook_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		recipe.ID,
		recipe.UserID,
		recipe.GroupID,
		recipe.Title,
		recipe.SourceURL,
		recipe.SourceName,
		recipe.ImageURL,
		recipe.Rating,
		recipe.Notes,
		recipe.CookDate,
		recipe.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create recipe: %w", err)
	}

	return nil
}

// GetRecipeByID retrieves a bare recipe row, used for ownership checks
// and partial updates.
func (s *SQLiteStore) GetRecipeByID(ctx context.Context, id string) (*models.Recipe, error) {
	query := `
		SELECT id, user_id, group_id, title, source_url, source_name, image_url, rating, notes, cook_date, created_at
		FROM recipes
		WHERE id = ?
	`

	r := &models.Recipe{}
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&r.ID,
		&r.UserID,
		&r.GroupID,
		&r.Title,
		&r.SourceURL,
		&r.SourceName,
		&r.ImageURL,
		&r.Rating,
		&r.Notes,
		&r.CookDate,
		&r.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil // Recipe not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get recipe: %w", err)
	}

	return r, nil
}

// recipeViewColumns is the select list shared by GetRecipeView and ListFeed.
const recipeViewColumns = `
	r.id, r.user_id, r.group_id, r.title, r.source_url, r.source_name,
	r.image_url, r.rating, r.notes, r.cook_date, r.created_at,
	u.display_name, u.avatar_url, g.name
`

func scanRecipeView(scan func(dest ...any) error) (*models.RecipeView, error) {
	v := &models.RecipeView{}
	err := scan(
		&v.ID,
		&v.UserID,
		&v.GroupID,
		&v.Title,
		&v.SourceURL,
		&v.SourceName,
		&v.ImageURL,
		&v.Rating,
		&v.Notes,
		&v.CookDate,
		&v.CreatedAt,
		&v.Author.Name,
		&v.Author.AvatarURL,
		&v.Group.Name,
	)
	if err != nil {
		return nil, err
	}
	v.Author.ID = v.UserID
	v.Group.ID = v.GroupID
	return v, nil
}

// GetRecipeView retrieves a recipe annotated with its author and group.
func (s *SQLiteStore) GetRecipeView(ctx context.Context, id string) (*models.RecipeView, error) {
	query := `
		SELECT ` + recipeViewColumns + `
		FROM recipes r
		JOIN users u ON r.user_id = u.id
		JOIN groups g ON r.group_id = g.id
		WHERE r.id = ?
	`

	row := s.db.QueryRowContext(ctx, query, id)
	view, err := scanRecipeView(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil // Recipe not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get recipe view: %w", err)
	}

	return view, nil
}

// UpdateRecipe overwrites the mutable fields of a recipe.
func (s *SQLiteStore) UpdateRecipe(ctx context.Context, recipe *models.Recipe) error {
	query := `
		UPDATE recipes
		SET title = ?, source_url = ?, source_name = ?, image_url = ?, rating = ?, notes = ?, cook_date = ?
		WHERE id = ?
	`

	_, err := s.db.ExecContext(ctx, query,
		recipe.Title,
		recipe.SourceURL,
		recipe.SourceName,
		recipe.ImageURL,
		recipe.Rating,
		recipe.Notes,
		recipe.CookDate,
		recipe.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update recipe: %w", err)
	}

	return nil
}

// DeleteRecipe removes a recipe; its comments cascade via foreign keys.
func (s *SQLiteStore) DeleteRecipe(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM recipes WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete recipe: %w", err)
	}
	return nil
}

// ListFeed returns recipes from every group the user belongs to, newest
// first, capped at limit.
func (s *SQLiteStore) ListFeed(ctx context.Context, userID string, limit int) ([]*models.RecipeView, error) {
	query := `
		SELECT ` + recipeViewColumns + `
		FROM recipes r
		JOIN users u ON r.user_id = u.id
		JOIN groups g ON r.group_id = g.id
		JOIN memberships m ON m.group_id = r.group_id
		WHERE m.user_id = ?
		ORDER BY r.created_at DESC, r.id
		LIMIT ?
	`

	rows, err := s.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list feed: %w", err)
	}
	defer rows.Close()

	var feed []*models.RecipeView
	for rows.Next() {
		view, err := scanRecipeView(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan feed recipe: %w", err)
		}
		feed = append(feed, view)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate feed: %w", err)
	}

	return feed, nil
}

// CreateComment persists a new comment.
func (s *SQLiteStore) CreateComment(ctx context.Context, comment *models.Comment) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO comments (id, recipe_id, user_id, content, created_at) VALUES (?, ?, ?, ?, ?)",
		comment.ID, comment.RecipeID, comment.UserID, comment.Content, comment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}
	return nil
}

// ListComments returns a recipe's comments oldest first, each annotated
// with its author.
func (s *SQLiteStore) ListComments(ctx context.Context, recipeID string) ([]models.CommentView, error) {
	query := `
		SELECT c.id, c.content, c.created_at, c.user_id, u.display_name, u.avatar_url
		FROM comments c
		JOIN users u ON c.user_id = u.id
		WHERE c.recipe_id = ?
		ORDER BY c.created_at ASC, c.id
	`

	rows, err := s.db.QueryContext(ctx, query, recipeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	var comments []models.CommentView
	for rows.Next() {
		var c models.CommentView
		if err := rows.Scan(&c.ID, &c.Content, &c.CreatedAt, &c.Author.ID, &c.Author.Name, &c.Author.AvatarURL); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate comments: %w", err)
	}

	return comments, nil
}
