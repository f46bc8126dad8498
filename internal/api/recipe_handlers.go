package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/potluckapp/potluck/internal/apperr"
	"github.com/potluckapp/potluck/internal/middleware"
	"github.com/potluckapp/potluck/internal/models"
	"github.com/potluckapp/potluck/internal/service"
)

// multipartMaxMemory bounds how much of a multipart body is held in
// memory; larger parts spill to temp files.
const multipartMaxMemory = 32 << 20

type addCommentRequest struct {
	Content string `json:"content"`
}

// handleFeed returns recipes from all of the caller's groups, newest first.
// GET /recipes
func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	feed, err := s.recipes.GetFeed(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}

	if feed == nil {
		feed = []*models.RecipeView{}
	}
	writeJSON(w, http.StatusOK, feed)
}

// handleRecipeDetail returns a recipe with its comments.
// GET /recipes/{id}
func (s *Server) handleRecipeDetail(w http.ResponseWriter, r *http.Request) {
	detail, err := s.recipes.GetRecipeDetail(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	if detail.Comments == nil {
		detail.Comments = []models.CommentView{}
	}
	writeJSON(w, http.StatusOK, detail)
}

// handleCreateRecipe posts a recipe (multipart form, optional image).
// POST /recipes
func (s *Server) handleCreateRecipe(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(multipartMaxMemory); err != nil {
		writeError(w, apperr.Wrap(apperr.KindValidation, err, "invalid multipart form"))
		return
	}

	imageURL, err := s.saveImage(r)
	if err != nil {
		writeError(w, err)
		return
	}

	rating, err := ratingValue(r)
	if err != nil {
		writeError(w, err)
		return
	}

	in := service.CreateRecipeInput{
		GroupID:    r.FormValue("groupId"),
		Title:      r.FormValue("title"),
		SourceURL:  formValue(r, "sourceUrl"),
		SourceName: formValue(r, "sourceName"),
		ImageURL:   imageURL,
		Rating:     rating,
		Notes:      formValue(r, "notes"),
		CookDate:   formValue(r, "cookDate"),
	}

	recipe, err := s.recipes.CreateRecipe(r.Context(), middleware.GetUserID(r.Context()), in)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message":  "recipe created successfully",
		"recipeId": recipe.ID,
	})
}

// handleUpdateRecipe applies a partial update (multipart form, optional
// image). Author only.
// PUT /recipes/{id}
func (s *Server) handleUpdateRecipe(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(multipartMaxMemory); err != nil {
		writeError(w, apperr.Wrap(apperr.KindValidation, err, "invalid multipart form"))
		return
	}

	imageURL, err := s.saveImage(r)
	if err != nil {
		writeError(w, err)
		return
	}

	rating, err := ratingValue(r)
	if err != nil {
		writeError(w, err)
		return
	}

	in := service.UpdateRecipeInput{
		Title:      formValue(r, "title"),
		SourceURL:  formValue(r, "sourceUrl"),
		SourceName: formValue(r, "sourceName"),
		ImageURL:   imageURL,
		Rating:     rating,
		Notes:      formValue(r, "notes"),
		CookDate:   formValue(r, "cookDate"),
	}

	err = s.recipes.UpdateRecipe(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "recipe updated successfully"})
}

// handleDeleteRecipe removes a recipe. Author only.
// DELETE /recipes/{id}
func (s *Server) handleDeleteRecipe(w http.ResponseWriter, r *http.Request) {
	err := s.recipes.DeleteRecipe(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "recipe deleted successfully"})
}

// handleAddComment posts a comment on a recipe.
// POST /recipes/{id}/comments
func (s *Server) handleAddComment(w http.ResponseWriter, r *http.Request) {
	var req addCommentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	comment, err := s.recipes.AddComment(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"), req.Content)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message":   "comment added successfully",
		"commentId": comment.ID,
	})
}

// saveImage stores the uploaded "image" part if one was sent and returns
// its URL, or nil when the form has no image.
func (s *Server) saveImage(r *http.Request) (*string, error) {
	_, fh, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, err, "invalid image upload")
	}

	url, err := s.images.Save(fh)
	if err != nil {
		return nil, err
	}
	return &url, nil
}

// formValue returns a pointer to the first value of a multipart field,
// or nil when the field was not sent. Presence matters for partial
// updates: an omitted field keeps its prior value, an empty one clears it.
func formValue(r *http.Request, key string) *string {
	if r.MultipartForm == nil {
		return nil
	}
	vals, ok := r.MultipartForm.Value[key]
	if !ok || len(vals) == 0 {
		return nil
	}
	return &vals[0]
}

// ratingValue parses the optional rating field. An absent or empty field
// is nil; a non-integer is a validation error.
func ratingValue(r *http.Request) (*int, error) {
	v := formValue(r, "rating")
	if v == nil || *v == "" {
		return nil, nil
	}
	rating, err := strconv.Atoi(*v)
	if err != nil {
		return nil, apperr.New(apperr.KindValidation, "rating must be an integer between 1 and 5")
	}
	return &rating, nil
}
