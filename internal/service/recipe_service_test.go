package service

import (
	"context"
	"testing"

	"github.com/potluckapp/potluck/internal/apperr"
	"github.com/potluckapp/potluck/internal/models"
	"github.com/potluckapp/potluck/internal/storage/sqlite"
)

// recipeFixture is the common arrangement for recipe tests: Ana admins a
// group Ben has joined, and Carol is an outsider.
type recipeFixture struct {
	recipes *RecipeService
	groups  *GroupService
	store   *sqlite.SQLiteStore
	ana     *models.User
	ben     *models.User
	carol   *models.User
	group   *models.Group
}

func setupRecipeFixture(t *testing.T) (*recipeFixture, func()) {
	t.Helper()

	store, cleanup := setupTestStore(t)
	groups := NewGroupService(store)
	recipes := NewRecipeService(store)

	ana := newTestUser(t, store, "ana@example.com", "Ana")
	ben := newTestUser(t, store, "ben@example.com", "Ben")
	carol := newTestUser(t, store, "carol@example.com", "Carol")

	group, err := groups.CreateGroup(context.Background(), ana.ID, "Dinner Club", nil)
	if err != nil {
		cleanup()
		t.Fatalf("CreateGroup failed: %v", err)
	}
	if _, err := groups.JoinGroup(context.Background(), ben.ID, group.InviteCode); err != nil {
		cleanup()
		t.Fatalf("JoinGroup failed: %v", err)
	}

	return &recipeFixture{
		recipes: recipes,
		groups:  groups,
		store:   store,
		ana:     ana,
		ben:     ben,
		carol:   carol,
		group:   group,
	}, cleanup
}

func TestCreateRecipe(t *testing.T) {
	f, cleanup := setupRecipeFixture(t)
	defer cleanup()

	rating := 4
	notes := "double the garlic"
	recipe, err := f.recipes.CreateRecipe(context.Background(), f.ana.ID, CreateRecipeInput{
		GroupID: f.group.ID,
		Title:   "Garlic Stew",
		Rating:  &rating,
		Notes:   &notes,
	})
	if err != nil {
		t.Fatalf("CreateRecipe failed: %v", err)
	}
	if recipe.ID == "" {
		t.Error("expected non-empty recipe ID")
	}

	detail, err := f.recipes.GetRecipeDetail(context.Background(), f.ana.ID, recipe.ID)
	if err != nil {
		t.Fatalf("GetRecipeDetail failed: %v", err)
	}
	if detail.Title != "Garlic Stew" {
		t.Errorf("title: expected 'Garlic Stew', got '%s'", detail.Title)
	}
	if detail.Rating == nil || *detail.Rating != 4 {
		t.Errorf("rating: expected 4, got %v", detail.Rating)
	}
	if detail.Author.Name != "Ana" {
		t.Errorf("author: expected 'Ana', got '%s'", detail.Author.Name)
	}
}

func TestCreateRecipe_Validation(t *testing.T) {
	f, cleanup := setupRecipeFixture(t)
	defer cleanup()

	_, err := f.recipes.CreateRecipe(context.Background(), f.ana.ID, CreateRecipeInput{GroupID: f.group.ID})
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Errorf("missing title: expected validation error, got %v", err)
	}

	bad := 6
	_, err = f.recipes.CreateRecipe(context.Background(), f.ana.ID, CreateRecipeInput{
		GroupID: f.group.ID,
		Title:   "Too Good",
		Rating:  &bad,
	})
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Errorf("rating 6: expected validation error, got %v", err)
	}

	zero := 0
	_, err = f.recipes.CreateRecipe(context.Background(), f.ana.ID, CreateRecipeInput{
		GroupID: f.group.ID,
		Title:   "Not Rated Like That",
		Rating:  &zero,
	})
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Errorf("rating 0: expected validation error, got %v", err)
	}
}

func TestCreateRecipe_RequiresMembership(t *testing.T) {
	f, cleanup := setupRecipeFixture(t)
	defer cleanup()

	_, err := f.recipes.CreateRecipe(context.Background(), f.carol.ID, CreateRecipeInput{
		GroupID: f.group.ID,
		Title:   "Intruder Pie",
	})
	if apperr.KindOf(err) != apperr.KindAuthorization {
		t.Errorf("expected authorization error, got %v", err)
	}
}

func TestCreateRecipe_OmittedRatingStaysAbsent(t *testing.T) {
	f, cleanup := setupRecipeFixture(t)
	defer cleanup()

	recipe, err := f.recipes.CreateRecipe(context.Background(), f.ana.ID, CreateRecipeInput{
		GroupID: f.group.ID,
		Title:   "Unrated Soup",
	})
	if err != nil {
		t.Fatalf("CreateRecipe failed: %v", err)
	}

	detail, err := f.recipes.GetRecipeDetail(context.Background(), f.ana.ID, recipe.ID)
	if err != nil {
		t.Fatalf("GetRecipeDetail failed: %v", err)
	}
	if detail.Rating != nil {
		t.Errorf("rating: expected nil, got %v", detail.Rating)
	}
}

func TestGetFeed_ScopedToMembership(t *testing.T) {
	f, cleanup := setupRecipeFixture(t)
	defer cleanup()

	if _, err := f.recipes.CreateRecipe(context.Background(), f.ana.ID, CreateRecipeInput{
		GroupID: f.group.ID,
		Title:   "Shared Stew",
	}); err != nil {
		t.Fatalf("CreateRecipe failed: %v", err)
	}

	// Ben is a member and sees it.
	feed, err := f.recipes.GetFeed(context.Background(), f.ben.ID)
	if err != nil {
		t.Fatalf("GetFeed failed: %v", err)
	}
	if len(feed) != 1 || feed[0].Title != "Shared Stew" {
		t.Errorf("expected ben to see the recipe, got %+v", feed)
	}

	// Carol is not and does not.
	feed, err = f.recipes.GetFeed(context.Background(), f.carol.ID)
	if err != nil {
		t.Fatalf("GetFeed failed: %v", err)
	}
	if len(feed) != 0 {
		t.Errorf("expected empty feed for carol, got %d recipes", len(feed))
	}
}

func TestGetRecipeDetail_RequiresMembership(t *testing.T) {
	f, cleanup := setupRecipeFixture(t)
	defer cleanup()

	recipe, err := f.recipes.CreateRecipe(context.Background(), f.ana.ID, CreateRecipeInput{
		GroupID: f.group.ID,
		Title:   "Members Only",
	})
	if err != nil {
		t.Fatalf("CreateRecipe failed: %v", err)
	}

	_, err = f.recipes.GetRecipeDetail(context.Background(), f.carol.ID, recipe.ID)
	if apperr.KindOf(err) != apperr.KindAuthorization {
		t.Errorf("expected authorization error, got %v", err)
	}

	_, err = f.recipes.GetRecipeDetail(context.Background(), f.ana.ID, "missing-recipe")
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Errorf("expected not_found error, got %v", err)
	}
}

func TestUpdateRecipe_AuthorOnly(t *testing.T) {
	f, cleanup := setupRecipeFixture(t)
	defer cleanup()

	recipe, err := f.recipes.CreateRecipe(context.Background(), f.ben.ID, CreateRecipeInput{
		GroupID: f.group.ID,
		Title:   "Ben's Bread",
	})
	if err != nil {
		t.Fatalf("CreateRecipe failed: %v", err)
	}

	// Ana is the group admin but not the author.
	title := "Hijacked"
	err = f.recipes.UpdateRecipe(context.Background(), f.ana.ID, recipe.ID, UpdateRecipeInput{Title: &title})
	if apperr.KindOf(err) != apperr.KindAuthorization {
		t.Errorf("expected authorization error for admin non-author, got %v", err)
	}

	rating := 5
	if err := f.recipes.UpdateRecipe(context.Background(), f.ben.ID, recipe.ID, UpdateRecipeInput{Rating: &rating}); err != nil {
		t.Fatalf("author update failed: %v", err)
	}

	detail, err := f.recipes.GetRecipeDetail(context.Background(), f.ben.ID, recipe.ID)
	if err != nil {
		t.Fatalf("GetRecipeDetail failed: %v", err)
	}
	if detail.Title != "Ben's Bread" {
		t.Errorf("title should be unchanged, got '%s'", detail.Title)
	}
	if detail.Rating == nil || *detail.Rating != 5 {
		t.Errorf("rating: expected 5, got %v", detail.Rating)
	}
}

func TestDeleteRecipe_AuthorOnly(t *testing.T) {
	f, cleanup := setupRecipeFixture(t)
	defer cleanup()

	recipe, err := f.recipes.CreateRecipe(context.Background(), f.ben.ID, CreateRecipeInput{
		GroupID: f.group.ID,
		Title:   "Ben's Bread",
	})
	if err != nil {
		t.Fatalf("CreateRecipe failed: %v", err)
	}

	err = f.recipes.DeleteRecipe(context.Background(), f.ana.ID, recipe.ID)
	if apperr.KindOf(err) != apperr.KindAuthorization {
		t.Errorf("expected authorization error for admin non-author, got %v", err)
	}

	if err := f.recipes.DeleteRecipe(context.Background(), f.ben.ID, recipe.ID); err != nil {
		t.Fatalf("author delete failed: %v", err)
	}

	err = f.recipes.DeleteRecipe(context.Background(), f.ben.ID, recipe.ID)
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Errorf("expected not_found after delete, got %v", err)
	}
}

func TestAddComment(t *testing.T) {
	f, cleanup := setupRecipeFixture(t)
	defer cleanup()

	recipe, err := f.recipes.CreateRecipe(context.Background(), f.ana.ID, CreateRecipeInput{
		GroupID: f.group.ID,
		Title:   "Garlic Stew",
	})
	if err != nil {
		t.Fatalf("CreateRecipe failed: %v", err)
	}

	if _, err := f.recipes.AddComment(context.Background(), f.ben.ID, recipe.ID, "making this tonight"); err != nil {
		t.Fatalf("AddComment failed: %v", err)
	}

	_, err = f.recipes.AddComment(context.Background(), f.ben.ID, recipe.ID, "")
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Errorf("empty content: expected validation error, got %v", err)
	}

	_, err = f.recipes.AddComment(context.Background(), f.carol.ID, recipe.ID, "let me in")
	if apperr.KindOf(err) != apperr.KindAuthorization {
		t.Errorf("outsider comment: expected authorization error, got %v", err)
	}

	_, err = f.recipes.AddComment(context.Background(), f.ben.ID, "missing-recipe", "hello?")
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Errorf("missing recipe: expected not_found error, got %v", err)
	}

	detail, err := f.recipes.GetRecipeDetail(context.Background(), f.ana.ID, recipe.ID)
	if err != nil {
		t.Fatalf("GetRecipeDetail failed: %v", err)
	}
	if len(detail.Comments) != 1 {
		t.Fatalf("expected 1 comment, got %d", len(detail.Comments))
	}
	if detail.Comments[0].Author.Name != "Ben" {
		t.Errorf("comment author: expected 'Ben', got '%s'", detail.Comments[0].Author.Name)
	}
}
