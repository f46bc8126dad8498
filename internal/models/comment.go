package models

import (
	"time"

	"github.com/google/uuid"
)

// Comment is a remark on a recipe, visible to members of the recipe's
// group.
type Comment struct {
	ID        string `json:"id"`
	RecipeID  string `json:"recipeId"`
	UserID    string `json:"-"`
	Content   string `json:"content"`
	CreatedAt int64  `json:"createdAt"`
}

// NewComment creates a Comment with a fresh ID and creation timestamp.
func NewComment(recipeID, userID, content string) *Comment {
	return &Comment{
		ID:        uuid.New().String(),
		RecipeID:  recipeID,
		UserID:    userID,
		Content:   content,
		CreatedAt: time.Now().Unix(),
	}
}

// CommentView is a comment annotated with its author for detail responses.
type CommentView struct {
	ID        string `json:"id"`
	Content   string `json:"content"`
	CreatedAt int64  `json:"createdAt"`
	Author    Author `json:"author"`
}
