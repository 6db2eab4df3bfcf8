//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/thinkful-ei-panda/gage-thingful-server/internal/model"
	"github.com/thinkful-ei-panda/gage-thingful-server/internal/repository"
)

const e2ePassword = "E2e!pass1"

type userResponse struct {
	ID       string `json:"id"`
	UserName string `json:"user_name"`
	FullName string `json:"full_name"`
	Nickname string `json:"nickname"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func TestE2ESmoke(t *testing.T) {
	baseURL := envOrDefault("THINGFUL_BASE_URL", "http://localhost:8080")
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Fatalf("DATABASE_URL is required for e2e tests")
	}

	userName := fmt.Sprintf("e2e-%d", time.Now().UnixNano())
	user, location := register(t, baseURL, userName)
	if location != "/api/users/"+user.ID {
		t.Fatalf("unexpected Location %q for user %s", location, user.ID)
	}

	thingID := seedThing(t, dbURL, user.ID)
	thingURL := fmt.Sprintf("%s/api/things/%d", baseURL, thingID)

	var errBody errorResponse
	if status := doJSON(t, http.MethodGet, thingURL, "", nil, &errBody); status != http.StatusUnauthorized || errBody.Error != "Missing basic token" {
		t.Fatalf("anonymous request: status %d, error %q", status, errBody.Error)
	}

	if status := doJSON(t, http.MethodGet, thingURL, basicHeader(userName, "wrong"), nil, &errBody); status != http.StatusUnauthorized || errBody.Error != "Unauthorized request" {
		t.Fatalf("wrong password: status %d, error %q", status, errBody.Error)
	}

	var thing map[string]any
	if status := doJSON(t, http.MethodGet, thingURL, basicHeader(userName, e2ePassword), nil, &thing); status != http.StatusOK {
		t.Fatalf("basic auth thing fetch: status %d", status)
	}
	if got := thing["number_of_reviews"]; got != float64(1) {
		t.Fatalf("expected 1 review, got %v", got)
	}

	var login struct {
		AuthToken string `json:"authToken"`
	}
	body := map[string]string{"user_name": userName, "password": e2ePassword}
	if status := doJSON(t, http.MethodPost, baseURL+"/api/auth/login", "", body, &login); status != http.StatusOK || login.AuthToken == "" {
		t.Fatalf("login: status %d", status)
	}

	var reviews []map[string]any
	if status := doJSON(t, http.MethodGet, thingURL+"/reviews", "Bearer "+login.AuthToken, nil, &reviews); status != http.StatusOK || len(reviews) != 1 {
		t.Fatalf("bearer reviews fetch: status %d, %d reviews", status, len(reviews))
	}

	missing := fmt.Sprintf("%s/api/things/%d", baseURL, thingID+1_000_000)
	if status := doJSON(t, http.MethodGet, missing, basicHeader(userName, e2ePassword), nil, &errBody); status != http.StatusNotFound || errBody.Error != "Thing doesn't exist" {
		t.Fatalf("missing thing: status %d, error %q", status, errBody.Error)
	}
}

func TestE2EDuplicateRegistration(t *testing.T) {
	baseURL := envOrDefault("THINGFUL_BASE_URL", "http://localhost:8080")
	userName := fmt.Sprintf("e2e-dup-%d", time.Now().UnixNano())

	register(t, baseURL, userName)

	var errBody errorResponse
	body := map[string]string{"user_name": userName, "password": e2ePassword, "full_name": "Dup"}
	status := doJSON(t, http.MethodPost, baseURL+"/api/users", "", body, &errBody)
	if status != http.StatusBadRequest || errBody.Error != "User name is already taken" {
		t.Fatalf("duplicate registration: status %d, error %q", status, errBody.Error)
	}
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func basicHeader(user, pass string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(user+":"+pass))
}

func register(t *testing.T, baseURL, userName string) (userResponse, string) {
	t.Helper()

	payload, err := json.Marshal(map[string]string{
		"user_name": userName,
		"password":  e2ePassword,
		"full_name": "E2E User",
		"nickname":  "e2e",
	})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}

	resp, err := http.Post(baseURL+"/api/users", "application/json", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		b, _ := io.ReadAll(resp.Body)
		t.Fatalf("register: status %d: %s", resp.StatusCode, b)
	}

	var user userResponse
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		t.Fatalf("decode user: %v", err)
	}
	return user, resp.Header.Get("Location")
}

// seedThing inserts a thing and one review directly; the API has no
// endpoint for creating them.
func seedThing(t *testing.T, dbURL, authorID string) int64 {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, err := repository.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("connect database: %v", err)
	}
	defer repo.Close()

	thing := &model.Thing{
		Title:   "e2e thing",
		Content: "Seeded by the e2e suite.",
		Image:   "https://example.com/e2e.jpg",
		Author:  model.User{ID: authorID},
	}
	if err := repo.CreateThing(ctx, thing); err != nil {
		t.Fatalf("create thing: %v", err)
	}
	review := &model.Review{Rating: 4, Text: "fine", ThingID: thing.ID, Author: model.User{ID: authorID}}
	if err := repo.CreateReview(ctx, review); err != nil {
		t.Fatalf("create review: %v", err)
	}
	return thing.ID
}

func doJSON(t *testing.T, method, url, authorization string, body any, out any) int {
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
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}

	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request %s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil && resp.ContentLength != 0 {
			t.Fatalf("decode response: %v", err)
		}
	}

	return resp.StatusCode
}
