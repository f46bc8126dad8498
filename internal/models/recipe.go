package models

import (
	"time"

	"github.com/google/uuid"
)

// Recipe represents a post in a group: a dish someone cooked, with
// optional source, photo, rating and notes. Optional fields are pointers
// so absent values serialize as JSON null.
type Recipe struct {
	ID         string  `json:"id"`
	UserID     string  `json:"-"`
	GroupID    string  `json:"-"`
	Title      string  `json:"title"`
	SourceURL  *string `json:"sourceUrl"`
	SourceName *string `json:"sourceName"`
	ImageURL   *string `json:"imageUrl"`
	Rating     *int    `json:"rating"`
	Notes      *string `json:"notes"`
	CookDate   *string `json:"cookDate"`
	CreatedAt  int64   `json:"createdAt"`
}

// NewRecipe creates a Recipe with a fresh ID and creation timestamp.
func NewRecipe(userID, groupID, title string) *Recipe {
	return &Recipe{
		ID:        uuid.New().String(),
		UserID:    userID,
		GroupID:   groupID,
		Title:     title,
		CreatedAt: time.Now().Unix(),
	}
}

// Author identifies who posted a recipe or comment.
type Author struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	AvatarURL *string `json:"avatarUrl"`
}

// GroupRef names the group a recipe belongs to.
type GroupRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// RecipeView is a recipe annotated with its author and group, as served
// in the feed and in recipe detail responses.
type RecipeView struct {
	Recipe
	Author Author   `json:"author"`
	Group  GroupRef `json:"group"`
}

// RecipeDetail is a RecipeView plus its comments, oldest first.
type RecipeDetail struct {
	RecipeView
	Comments []CommentView `json:"comments"`
}
