package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/potluckapp/potluck/internal/auth"
	"github.com/potluckapp/potluck/internal/service"
	"github.com/potluckapp/potluck/internal/storage/sqlite"
	"github.com/potluckapp/potluck/internal/uploads"
)

// setupTestServer spins up the full stack on an httptest server.
func setupTestServer(t *testing.T) (*httptest.Server, func()) {
	t.Helper()

	tmpFile, err := os.CreateTemp("", "test-*.db")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	tmpFile.Close()

	store, err := sqlite.New(tmpFile.Name())
	if err != nil {
		os.Remove(tmpFile.Name())
		t.Fatalf("failed to create store: %v", err)
	}

	images, err := uploads.NewImageStore(t.TempDir(), 5*1024*1024)
	if err != nil {
		t.Fatalf("failed to create image store: %v", err)
	}

	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	authenticator := auth.NewPasswordAuthenticator(store)

	authSvc := service.NewAuthService(authenticator, jwtManager, store, slog.Default())
	groupSvc := service.NewGroupService(store)
	recipeSvc := service.NewRecipeService(store)

	server := httptest.NewServer(New(authSvc, groupSvc, recipeSvc, jwtManager, images, "*").Router())

	cleanup := func() {
		server.Close()
		store.Close()
		os.Remove(tmpFile.Name())
	}

	return server, cleanup
}

// doJSON sends a JSON request and decodes the JSON response body.
func doJSON(t *testing.T, method, url, token string, body any) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	var decoded map[string]any
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &decoded); err != nil {
			// Lists decode separately; callers that expect arrays use doJSONList.
			decoded = nil
		}
	}
	return resp.StatusCode, decoded
}

// doJSONList sends a GET request and decodes a JSON array response.
func doJSONList(t *testing.T, url, token string) (int, []map[string]any) {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	var decoded []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("failed to decode list response: %v", err)
	}
	return resp.StatusCode, decoded
}

// registerUser registers a user and returns the session token.
func registerUser(t *testing.T, baseURL, email, name string) string {
	t.Helper()

	status, body := doJSON(t, http.MethodPost, baseURL+"/auth/register", "", map[string]string{
		"email":       email,
		"password":    "hunter2hunter2",
		"displayName": name,
	})
	if status != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d (%v)", status, body)
	}
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatal("register: expected token in response")
	}
	return token
}

// createGroup creates a group and returns its ID and invite code.
func createGroup(t *testing.T, baseURL, token, name string) (string, string) {
	t.Helper()

	status, body := doJSON(t, http.MethodPost, baseURL+"/groups", token, map[string]string{"name": name})
	if status != http.StatusCreated {
		t.Fatalf("create group: expected 201, got %d (%v)", status, body)
	}
	group := body["group"].(map[string]any)
	return group["id"].(string), group["inviteCode"].(string)
}

// postRecipe posts a multipart recipe without an image and returns its ID.
func postRecipe(t *testing.T, baseURL, token, groupID, title string, fields map[string]string) string {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	w.WriteField("groupId", groupID)
	w.WriteField("title", title)
	for k, v := range fields {
		w.WriteField(k, v)
	}
	w.Close()

	req, err := http.NewRequest(http.MethodPost, baseURL+"/recipes", &buf)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	var body map[string]any
	json.NewDecoder(resp.Body).Decode(&body)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create recipe: expected 201, got %d (%v)", resp.StatusCode, body)
	}
	return body["recipeId"].(string)
}

func TestEndToEndScenario(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()
	base := server.URL

	// U1 registers and creates a group; U1 becomes admin with code C.
	u1 := registerUser(t, base, "u1@example.com", "User One")
	groupID, inviteCode := createGroup(t, base, u1, "Potluck Crew")

	// U2 registers and joins with C.
	u2 := registerUser(t, base, "u2@example.com", "User Two")
	status, body := doJSON(t, http.MethodPost, base+"/groups/join", u2, map[string]string{"inviteCode": inviteCode})
	if status != http.StatusOK {
		t.Fatalf("join: expected 200, got %d (%v)", status, body)
	}

	// U1 posts recipe R in the group.
	recipeID := postRecipe(t, base, u1, groupID, "Garlic Stew", map[string]string{"rating": "4"})

	// U2 fetches the feed and sees R.
	status, feed := doJSONList(t, base+"/recipes", u2)
	if status != http.StatusOK {
		t.Fatalf("feed: expected 200, got %d", status)
	}
	if len(feed) != 1 || feed[0]["title"] != "Garlic Stew" {
		t.Fatalf("expected feed with Garlic Stew, got %v", feed)
	}
	if feed[0]["rating"] != float64(4) {
		t.Errorf("rating: expected 4, got %v", feed[0]["rating"])
	}

	// U2 comments on R.
	status, body = doJSON(t, http.MethodPost, base+"/recipes/"+recipeID+"/comments", u2, map[string]string{"content": "looks great"})
	if status != http.StatusCreated {
		t.Fatalf("comment: expected 201, got %d (%v)", status, body)
	}

	// U1 fetches the detail and sees 1 comment.
	status, detail := doJSON(t, http.MethodGet, base+"/recipes/"+recipeID, u1, nil)
	if status != http.StatusOK {
		t.Fatalf("detail: expected 200, got %d", status)
	}
	comments := detail["comments"].([]any)
	if len(comments) != 1 {
		t.Fatalf("expected 1 comment, got %d", len(comments))
	}
	comment := comments[0].(map[string]any)
	if comment["content"] != "looks great" {
		t.Errorf("comment content: expected 'looks great', got %v", comment["content"])
	}
	author := comment["author"].(map[string]any)
	if author["name"] != "User Two" {
		t.Errorf("comment author: expected 'User Two', got %v", author["name"])
	}
}

func TestAuthMe(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()
	base := server.URL

	token := registerUser(t, base, "ana@example.com", "Ana")

	status, body := doJSON(t, http.MethodGet, base+"/auth/me", token, nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if body["email"] != "ana@example.com" || body["displayName"] != "Ana" {
		t.Errorf("unexpected user: %v", body)
	}

	status, _ = doJSON(t, http.MethodGet, base+"/auth/me", "", nil)
	if status != http.StatusUnauthorized {
		t.Errorf("no token: expected 401, got %d", status)
	}

	status, _ = doJSON(t, http.MethodGet, base+"/auth/me", "garbage-token", nil)
	if status != http.StatusUnauthorized {
		t.Errorf("bad token: expected 401, got %d", status)
	}
}

func TestLoginErrorShapeDoesNotLeak(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()
	base := server.URL

	registerUser(t, base, "ana@example.com", "Ana")

	statusWrongPass, bodyWrongPass := doJSON(t, http.MethodPost, base+"/auth/login", "", map[string]string{
		"email":    "ana@example.com",
		"password": "wrong-password",
	})
	statusNoUser, bodyNoUser := doJSON(t, http.MethodPost, base+"/auth/login", "", map[string]string{
		"email":    "nobody@example.com",
		"password": "hunter2hunter2",
	})

	if statusWrongPass != http.StatusUnauthorized || statusNoUser != http.StatusUnauthorized {
		t.Fatalf("expected 401/401, got %d/%d", statusWrongPass, statusNoUser)
	}
	if bodyWrongPass["error"] != bodyNoUser["error"] {
		t.Errorf("error bodies differ: %v vs %v", bodyWrongPass["error"], bodyNoUser["error"])
	}
}

func TestGroupAccessControl(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()
	base := server.URL

	u1 := registerUser(t, base, "u1@example.com", "User One")
	outsider := registerUser(t, base, "out@example.com", "Outsider")
	groupID, inviteCode := createGroup(t, base, u1, "Private Club")

	// Outsider cannot see group detail.
	status, _ := doJSON(t, http.MethodGet, base+"/groups/"+groupID, outsider, nil)
	if status != http.StatusForbidden {
		t.Errorf("outsider detail: expected 403, got %d", status)
	}

	// Unknown invite code is 404; joining twice is 400.
	status, _ = doJSON(t, http.MethodPost, base+"/groups/join", outsider, map[string]string{"inviteCode": "ZZZZZZZZ"})
	if status != http.StatusNotFound {
		t.Errorf("bad code: expected 404, got %d", status)
	}
	status, _ = doJSON(t, http.MethodPost, base+"/groups/join", outsider, map[string]string{"inviteCode": inviteCode})
	if status != http.StatusOK {
		t.Errorf("join: expected 200, got %d", status)
	}
	status, _ = doJSON(t, http.MethodPost, base+"/groups/join", outsider, map[string]string{"inviteCode": inviteCode})
	if status != http.StatusBadRequest {
		t.Errorf("double join: expected 400, got %d", status)
	}

	// Member but not admin: no update, no regenerate.
	status, _ = doJSON(t, http.MethodPut, base+"/groups/"+groupID, outsider, map[string]string{"name": "Hijacked"})
	if status != http.StatusForbidden {
		t.Errorf("member update: expected 403, got %d", status)
	}
	status, _ = doJSON(t, http.MethodPost, base+"/groups/"+groupID+"/regenerate-invite", outsider, nil)
	if status != http.StatusForbidden {
		t.Errorf("member regenerate: expected 403, got %d", status)
	}

	// Sole admin cannot leave.
	status, _ = doJSON(t, http.MethodPost, base+"/groups/"+groupID+"/leave", u1, nil)
	if status != http.StatusBadRequest {
		t.Errorf("last admin leave: expected 400, got %d", status)
	}

	// A plain member can.
	status, _ = doJSON(t, http.MethodPost, base+"/groups/"+groupID+"/leave", outsider, nil)
	if status != http.StatusOK {
		t.Errorf("member leave: expected 200, got %d", status)
	}
}

func TestRecipeVisibilityAndOwnership(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()
	base := server.URL

	u1 := registerUser(t, base, "u1@example.com", "User One")
	outsider := registerUser(t, base, "out@example.com", "Outsider")
	member := registerUser(t, base, "member@example.com", "Member")
	groupID, inviteCode := createGroup(t, base, u1, "Supper Club")

	status, _ := doJSON(t, http.MethodPost, base+"/groups/join", member, map[string]string{"inviteCode": inviteCode})
	if status != http.StatusOK {
		t.Fatalf("join: expected 200, got %d", status)
	}

	recipeID := postRecipe(t, base, member, groupID, "Member's Pie", nil)

	// Outsider sees neither feed entry nor detail.
	status, feed := doJSONList(t, base+"/recipes", outsider)
	if status != http.StatusOK || len(feed) != 0 {
		t.Errorf("outsider feed: expected empty 200, got %d with %d items", status, len(feed))
	}
	status, _ = doJSON(t, http.MethodGet, base+"/recipes/"+recipeID, outsider, nil)
	if status != http.StatusForbidden {
		t.Errorf("outsider detail: expected 403, got %d", status)
	}

	// The group admin is not the author and cannot delete.
	status, _ = doJSON(t, http.MethodDelete, base+"/recipes/"+recipeID, u1, nil)
	if status != http.StatusForbidden {
		t.Errorf("admin delete: expected 403, got %d", status)
	}

	// The author can.
	status, _ = doJSON(t, http.MethodDelete, base+"/recipes/"+recipeID, member, nil)
	if status != http.StatusOK {
		t.Errorf("author delete: expected 200, got %d", status)
	}
	status, _ = doJSON(t, http.MethodGet, base+"/recipes/"+recipeID, member, nil)
	if status != http.StatusNotFound {
		t.Errorf("deleted detail: expected 404, got %d", status)
	}
}

func TestRatingRoundTrip(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()
	base := server.URL

	token := registerUser(t, base, "ana@example.com", "Ana")
	groupID, _ := createGroup(t, base, token, "Raters")

	rated := postRecipe(t, base, token, groupID, "Rated Dish", map[string]string{"rating": "4"})
	unrated := postRecipe(t, base, token, groupID, "Unrated Dish", nil)

	_, detail := doJSON(t, http.MethodGet, base+"/recipes/"+rated, token, nil)
	if detail["rating"] != float64(4) {
		t.Errorf("rating: expected 4, got %v", detail["rating"])
	}

	_, detail = doJSON(t, http.MethodGet, base+"/recipes/"+unrated, token, nil)
	if detail["rating"] != nil {
		t.Errorf("rating: expected null, got %v", detail["rating"])
	}
}

func TestCreateRecipe_InvalidRating(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()
	base := server.URL

	token := registerUser(t, base, "ana@example.com", "Ana")
	groupID, _ := createGroup(t, base, token, "Raters")

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	w.WriteField("groupId", groupID)
	w.WriteField("title", "Overrated")
	w.WriteField("rating", "6")
	w.Close()

	req, _ := http.NewRequest(http.MethodPost, base+"/recipes", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("rating 6: expected 400, got %d", resp.StatusCode)
	}
}

func TestHealth(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	status, body := doJSON(t, http.MethodGet, server.URL+"/health", "", nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status ok, got %v", body)
	}
}
