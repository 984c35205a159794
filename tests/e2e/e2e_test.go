//go:build e2e

package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"
)

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type tagResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type recipeResponse struct {
	ID          int64         `json:"id"`
	Title       string        `json:"title"`
	TimeMinutes int           `json:"time_minutes"`
	Price       string        `json:"price"`
	Description string        `json:"description"`
	Image       *string       `json:"image"`
	Tags        []tagResponse `json:"tags"`
	Ingredients []tagResponse `json:"ingredients"`
}

type recipeListResponse struct {
	Data []recipeResponse `json:"data"`
}

type tagListResponse struct {
	Data []tagResponse `json:"data"`
}

// pngPixel is a minimal 1x1 PNG for upload tests.
var pngPixel = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a,
	0x00, 0x00, 0x00, 0x0d, 0x49, 0x48, 0x44, 0x52,
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4,
	0x89, 0x00, 0x00, 0x00, 0x0d, 0x49, 0x44, 0x41,
	0x54, 0x78, 0x9c, 0x62, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00,
	0x00, 0x00, 0x00, 0x49, 0x45, 0x4e, 0x44, 0xae,
	0x42, 0x60, 0x82,
}

func TestE2ESmoke(t *testing.T) {
	baseURL := envOrDefault("RECIPEBOX_BASE_URL", "http://localhost:8080")

	email := fmt.Sprintf("e2e-%d@example.com", time.Now().UnixNano())
	password := "s3cret-pass"

	// Register
	var user userResponse
	status := doJSON(t, http.MethodPost, baseURL+"/user/create", "", map[string]any{
		"email":    email,
		"password": password,
		"name":     "E2E User",
	}, &user)
	if status != http.StatusCreated {
		t.Fatalf("expected 201 from user create, got %d", status)
	}
	if user.ID == "" || user.Email != email {
		t.Fatalf("user create response missing fields: %+v", user)
	}

	// Issue token
	var tok tokenResponse
	status = doJSON(t, http.MethodPost, baseURL+"/user/token", "", map[string]any{
		"email":    email,
		"password": password,
	}, &tok)
	if status != http.StatusOK {
		t.Fatalf("expected 200 from token issue, got %d", status)
	}
	if tok.Token == "" {
		t.Fatalf("token response missing token")
	}

	// Profile
	var me userResponse
	status = doJSON(t, http.MethodGet, baseURL+"/user/me", tok.Token, nil, &me)
	if status != http.StatusOK || me.ID != user.ID {
		t.Fatalf("profile lookup failed: status %d, %+v", status, me)
	}

	// Create a recipe with nested tags and ingredients
	var recipe recipeResponse
	status = doJSON(t, http.MethodPost, baseURL+"/recipe/recipes", tok.Token, map[string]any{
		"title":        "E2E Curry",
		"price":        "7.5",
		"time_minutes": 30,
		"tags":         []map[string]string{{"name": "Dinner"}},
		"ingredients":  []map[string]string{{"name": "Rice"}, {"name": "Curry Paste"}},
	}, &recipe)
	if status != http.StatusCreated {
		t.Fatalf("expected 201 from recipe create, got %d", status)
	}
	if recipe.ID == 0 || recipe.Price != "7.50" {
		t.Fatalf("recipe create response unexpected: %+v", recipe)
	}
	if len(recipe.Tags) != 1 || len(recipe.Ingredients) != 2 {
		t.Fatalf("associations missing: %+v", recipe)
	}

	// Filtered list hits, unrelated filter misses
	var list recipeListResponse
	filterURL := fmt.Sprintf("%s/recipe/recipes?tags=%d", baseURL, recipe.Tags[0].ID)
	status = doJSON(t, http.MethodGet, filterURL, tok.Token, nil, &list)
	if status != http.StatusOK || len(list.Data) != 1 {
		t.Fatalf("tag filter should match one recipe, got status %d, %d results", status, len(list.Data))
	}

	// Upload an image
	uploadRecipeImage(t, baseURL, tok.Token, recipe.ID)

	var detail recipeResponse
	detailURL := fmt.Sprintf("%s/recipe/recipes/%d", baseURL, recipe.ID)
	status = doJSON(t, http.MethodGet, detailURL, tok.Token, nil, &detail)
	if status != http.StatusOK {
		t.Fatalf("expected 200 from recipe get, got %d", status)
	}
	if detail.Image == nil || *detail.Image == "" {
		t.Fatalf("recipe detail missing image URL after upload")
	}

	// assigned_only tag listing
	var tags tagListResponse
	status = doJSON(t, http.MethodGet, baseURL+"/recipe/tags?assigned_only=1", tok.Token, nil, &tags)
	if status != http.StatusOK || len(tags.Data) != 1 || tags.Data[0].Name != "Dinner" {
		t.Fatalf("assigned tags unexpected: status %d, %+v", status, tags.Data)
	}

	// Revoke and verify the token stops working
	status = doJSON(t, http.MethodPost, baseURL+"/user/token/revoke", tok.Token, nil, nil)
	if status != http.StatusNoContent {
		t.Fatalf("expected 204 from token revoke, got %d", status)
	}

	status = doJSON(t, http.MethodGet, baseURL+"/user/me", tok.Token, nil, nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("expected 401 after revoke, got %d", status)
	}
}

func TestE2EOwnerIsolation(t *testing.T) {
	baseURL := envOrDefault("RECIPEBOX_BASE_URL", "http://localhost:8080")

	aliceToken := registerAndLogin(t, baseURL, "alice")
	bobToken := registerAndLogin(t, baseURL, "bob")

	var recipe recipeResponse
	status := doJSON(t, http.MethodPost, baseURL+"/recipe/recipes", aliceToken, map[string]any{
		"title": "Alice Only",
	}, &recipe)
	if status != http.StatusCreated {
		t.Fatalf("expected 201 from recipe create, got %d", status)
	}

	detailURL := fmt.Sprintf("%s/recipe/recipes/%d", baseURL, recipe.ID)

	// Bob cannot see, modify, or delete Alice's recipe
	if status := doJSON(t, http.MethodGet, detailURL, bobToken, nil, nil); status != http.StatusNotFound {
		t.Errorf("expected 404 for cross-user get, got %d", status)
	}
	if status := doJSON(t, http.MethodPatch, detailURL, bobToken, map[string]any{"title": "Hijack"}, nil); status != http.StatusNotFound {
		t.Errorf("expected 404 for cross-user patch, got %d", status)
	}
	if status := doJSON(t, http.MethodDelete, detailURL, bobToken, nil, nil); status != http.StatusNotFound {
		t.Errorf("expected 404 for cross-user delete, got %d", status)
	}

	// Alice still owns it
	if status := doJSON(t, http.MethodGet, detailURL, aliceToken, nil, nil); status != http.StatusOK {
		t.Errorf("owner get failed with %d", status)
	}
}

func TestE2ERateLimiting(t *testing.T) {
	if os.Getenv("RECIPEBOX_E2E_RATELIMIT") == "" {
		t.Skip("set RECIPEBOX_E2E_RATELIMIT=1 to run the rate limit test")
	}

	baseURL := envOrDefault("RECIPEBOX_BASE_URL", "http://localhost:8080")
	token := registerAndLogin(t, baseURL, "ratelimit")

	client := &http.Client{Timeout: 10 * time.Second}

	var limited bool
	for i := 0; i < 300; i++ {
		req, err := http.NewRequest(http.MethodGet, baseURL+"/recipe/recipes", nil)
		if err != nil {
			t.Fatalf("create request: %v", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := client.Do(req)
		if err != nil {
			t.Fatalf("request %d failed: %v", i, err)
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests {
			limited = true
			if resp.Header.Get("Retry-After") == "" {
				t.Error("429 response missing Retry-After header")
			}
			if resp.Header.Get("X-RateLimit-Limit") == "" {
				t.Error("429 response missing X-RateLimit-Limit header")
			}
			break
		}
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("unexpected status %d on request %d", resp.StatusCode, i)
		}
	}

	if !limited {
		t.Skip("rate limit not reached; limiter may be disabled in this environment")
	}
}

func TestE2ENoSecretsInResponses(t *testing.T) {
	baseURL := envOrDefault("RECIPEBOX_BASE_URL", "http://localhost:8080")

	client := &http.Client{Timeout: 10 * time.Second}

	fakeToken := "rcp_" + strings.Repeat("a", 40)
	req, err := http.NewRequest(http.MethodGet, baseURL+"/recipe/recipes", nil)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+fakeToken)

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unknown token, got %d", resp.StatusCode)
	}
	if strings.Contains(string(body), fakeToken) {
		t.Error("SECURITY: error response leaked the presented token")
	}

	// Password hashes never leave the API
	token := registerAndLogin(t, baseURL, "secrets")
	var raw json.RawMessage
	if status := doJSON(t, http.MethodGet, baseURL+"/user/me", token, nil, &raw); status != http.StatusOK {
		t.Fatalf("profile request failed with %d", status)
	}
	if strings.Contains(string(raw), "password") || strings.Contains(string(raw), "argon2") {
		t.Errorf("SECURITY: profile response contains credential material: %s", raw)
	}
}

func registerAndLogin(t *testing.T, baseURL, prefix string) string {
	t.Helper()

	email := fmt.Sprintf("e2e-%s-%d@example.com", prefix, time.Now().UnixNano())
	password := "s3cret-pass"

	status := doJSON(t, http.MethodPost, baseURL+"/user/create", "", map[string]any{
		"email":    email,
		"password": password,
	}, nil)
	if status != http.StatusCreated {
		t.Fatalf("expected 201 from user create, got %d", status)
	}

	var tok tokenResponse
	status = doJSON(t, http.MethodPost, baseURL+"/user/token", "", map[string]any{
		"email":    email,
		"password": password,
	}, &tok)
	if status != http.StatusOK || tok.Token == "" {
		t.Fatalf("token issue failed with %d", status)
	}
	return tok.Token
}

func uploadRecipeImage(t *testing.T, baseURL, token string, recipeID int64) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("image", "pixel.png")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(pngPixel); err != nil {
		t.Fatalf("write image bytes: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	url := fmt.Sprintf("%s/recipe/recipes/%d/upload-image", baseURL, recipeID)
	req, err := http.NewRequest(http.MethodPost, url, &buf)
	if err != nil {
		t.Fatalf("create upload request: %v", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("upload request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("expected 200 from image upload, got %d: %s", resp.StatusCode, body)
	}
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func doJSON(t *testing.T, method, url, token string, body any, out any) int {
	t.Helper()

	var buf io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		buf = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, url, buf)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if strings.TrimSpace(token) != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request %s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	if out != nil {
		decoder := json.NewDecoder(resp.Body)
		if err := decoder.Decode(out); err != nil && resp.ContentLength != 0 {
			t.Fatalf("decode response: %v", err)
		}
	}

	return resp.StatusCode
}
