package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chiragjethva03/sarvam-backend/internal/auth"
	"github.com/chiragjethva03/sarvam-backend/internal/service"
	"github.com/chiragjethva03/sarvam-backend/internal/storage/sqlite"
	"github.com/chiragjethva03/sarvam-backend/internal/upload"
)

type nullMailer struct{}

func (nullMailer) Send(_ context.Context, _, _, _ string) error { return nil }

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	uploader, err := upload.NewLocalUploader(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create uploader: %v", err)
	}

	jwtManager := auth.NewJWTManager("test-secret", 0)

	router := NewRouter(Deps{
		Auth:              service.NewAuthService(store, jwtManager, nullMailer{}, nil),
		Users:             service.NewUserService(store, uploader),
		Posts:             service.NewPostService(store, uploader, nil),
		Groups:            service.NewGroupService(store, nil),
		JWT:               jwtManager,
		CORSAllowedOrigin: "*",
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return server
}

// doJSON performs a request with an optional bearer token and decodes the
// JSON response body.
func doJSON(t *testing.T, server *httptest.Server, method, path, token string, body any) (int, map[string]any) {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, server.URL+path, reqBody)
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
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	return resp.StatusCode, decoded
}

func signup(t *testing.T, server *httptest.Server, name, email string) string {
	t.Helper()

	status, resp := doJSON(t, server, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"fullName": name,
		"email":    email,
		"password": "password123",
	})
	if status != http.StatusCreated {
		t.Fatalf("signup returned %d: %v", status, resp)
	}
	token, _ := resp["token"].(string)
	if token == "" {
		t.Fatal("signup returned no token")
	}
	return token
}

func TestAuthEndpoints(t *testing.T) {
	server := newTestServer(t)

	token := signup(t, server, "Chirag", "chirag@example.com")

	t.Run("duplicate signup rejected", func(t *testing.T) {
		status, _ := doJSON(t, server, http.MethodPost, "/api/auth/signup", "", map[string]string{
			"fullName": "Chirag", "email": "chirag@example.com", "password": "password123",
		})
		if status != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", status)
		}
	})

	t.Run("google signin carries profile picture", func(t *testing.T) {
		status, resp := doJSON(t, server, http.MethodPost, "/api/auth/google-signin", "", map[string]string{
			"fullName": "Gia", "email": "gia@example.com", "googleId": "g-123",
			"profilePicture": "https://lh3.example.com/gia.jpg",
		})
		if status != http.StatusOK {
			t.Fatalf("expected 200, got %d: %v", status, resp)
		}
		user, _ := resp["user"].(map[string]any)
		if user["profilePicture"] != "https://lh3.example.com/gia.jpg" {
			t.Errorf("profile picture not carried: %v", user)
		}
	})

	t.Run("login", func(t *testing.T) {
		status, resp := doJSON(t, server, http.MethodPost, "/api/auth/login", "", map[string]string{
			"email": "chirag@example.com", "password": "password123",
		})
		if status != http.StatusOK {
			t.Fatalf("expected 200, got %d: %v", status, resp)
		}
	})

	t.Run("login wrong password", func(t *testing.T) {
		status, _ := doJSON(t, server, http.MethodPost, "/api/auth/login", "", map[string]string{
			"email": "chirag@example.com", "password": "nope",
		})
		if status != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", status)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodPost, server.URL+"/api/auth/login", strings.NewReader("{"))
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", resp.StatusCode)
		}
	})

	t.Run("protected route without token", func(t *testing.T) {
		status, _ := doJSON(t, server, http.MethodGet, "/api/users/me", "", nil)
		if status != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", status)
		}
	})

	t.Run("me with token", func(t *testing.T) {
		status, resp := doJSON(t, server, http.MethodGet, "/api/users/me", token, nil)
		if status != http.StatusOK {
			t.Fatalf("expected 200, got %d: %v", status, resp)
		}
		user, _ := resp["user"].(map[string]any)
		if user["email"] != "chirag@example.com" {
			t.Errorf("unexpected user payload: %v", resp)
		}
	})
}

func TestExpenseEndpoints(t *testing.T) {
	server := newTestServer(t)
	token := signup(t, server, "Chirag", "chirag@example.com")

	var groupID string

	t.Run("create group with expense", func(t *testing.T) {
		status, resp := doJSON(t, server, http.MethodPost, "/api/expenses/group-with-expense", token, map[string]any{
			"groupName": "Goa Trip",
			"members":   []map[string]any{{"phone": "+91 87654 32109"}},
			"expense": map[string]any{
				"title":     "Hotel",
				"amount":    3000,
				"category":  "travel",
				"splitType": "equal",
			},
		})
		if status != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %v", status, resp)
		}
		group, _ := resp["group"].(map[string]any)
		groupID, _ = group["groupId"].(string)
		if !strings.HasPrefix(groupID, "SarvamEx") {
			t.Fatalf("unexpected group id %q", groupID)
		}
		expenses, _ := group["expenses"].([]any)
		if len(expenses) != 1 {
			t.Fatalf("expected the expense persisted as one line, got %v", group["expenses"])
		}
	})

	t.Run("plural expenses array also accepted", func(t *testing.T) {
		status, resp := doJSON(t, server, http.MethodPost, "/api/expenses/group-with-expense", token, map[string]any{
			"groupName": "Movie Night",
			"expenses": []map[string]any{{
				"title":     "Tickets",
				"amount":    800,
				"category":  "entertainment",
				"splitType": "equal",
			}},
		})
		if status != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %v", status, resp)
		}
		group, _ := resp["group"].(map[string]any)
		id, _ := group["groupId"].(string)
		if status, _ := doJSON(t, server, http.MethodDelete, "/api/expenses/delete/"+id, token, nil); status != http.StatusOK {
			t.Fatalf("cleanup delete failed with %d", status)
		}
	})

	t.Run("missing name rejected", func(t *testing.T) {
		status, _ := doJSON(t, server, http.MethodPost, "/api/expenses/group-with-expense", token, map[string]any{})
		if status != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", status)
		}
	})

	t.Run("missing expense line rejected", func(t *testing.T) {
		status, _ := doJSON(t, server, http.MethodPost, "/api/expenses/group-with-expense", token, map[string]any{
			"groupName": "Empty",
			"members":   []map[string]any{{"phone": "+91 87654 32109"}},
		})
		if status != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", status)
		}
	})

	t.Run("get group", func(t *testing.T) {
		status, resp := doJSON(t, server, http.MethodGet, "/api/expenses/groups/"+groupID, token, nil)
		if status != http.StatusOK {
			t.Fatalf("expected 200, got %d: %v", status, resp)
		}
	})

	t.Run("get unknown group", func(t *testing.T) {
		status, _ := doJSON(t, server, http.MethodGet, "/api/expenses/groups/SarvamEx0000", token, nil)
		if status != http.StatusNotFound {
			t.Errorf("expected 404, got %d", status)
		}
	})

	t.Run("my groups", func(t *testing.T) {
		status, resp := doJSON(t, server, http.MethodGet, "/api/expenses/my-groups", token, nil)
		if status != http.StatusOK {
			t.Fatalf("expected 200, got %d: %v", status, resp)
		}
		groups, _ := resp["groups"].([]any)
		if len(groups) != 1 {
			t.Errorf("expected 1 group, got %d", len(groups))
		}
	})

	t.Run("balances", func(t *testing.T) {
		status, resp := doJSON(t, server, http.MethodGet, "/api/expenses/groups/"+groupID+"/balances", token, nil)
		if status != http.StatusOK {
			t.Fatalf("expected 200, got %d: %v", status, resp)
		}
	})

	t.Run("delete group returns aggregate", func(t *testing.T) {
		status, resp := doJSON(t, server, http.MethodDelete, "/api/expenses/delete/"+groupID, token, nil)
		if status != http.StatusOK {
			t.Fatalf("expected 200, got %d: %v", status, resp)
		}
		if resp["group"] == nil {
			t.Error("expected deleted group in response")
		}

		status, _ = doJSON(t, server, http.MethodDelete, "/api/expenses/delete/"+groupID, token, nil)
		if status != http.StatusNotFound {
			t.Errorf("expected 404 on second delete, got %d", status)
		}
	})
}

// postImage submits a multipart create-post request.
func postImage(t *testing.T, server *httptest.Server, token, description, location string) (int, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if description != "" {
		mw.WriteField("description", description)
	}
	if location != "" {
		mw.WriteField("location", location)
	}
	fw, err := mw.CreateFormFile("image", "photo.jpg")
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	fmt.Fprint(fw, "jpegdata")
	mw.Close()

	req, err := http.NewRequest(http.MethodPost, server.URL+"/api/posts/create-post", &buf)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	var decoded map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp.StatusCode, decoded
}

func TestPostEndpoints(t *testing.T) {
	server := newTestServer(t)
	author := signup(t, server, "Chirag", "chirag@example.com")
	viewer := signup(t, server, "Asha", "asha@example.com")

	status, resp := postImage(t, server, author, "Sunset", "Goa")
	if status != http.StatusCreated {
		t.Fatalf("create post returned %d: %v", status, resp)
	}
	post, _ := resp["post"].(map[string]any)
	postID, _ := post["id"].(string)
	if postID == "" {
		t.Fatal("no post id in response")
	}

	t.Run("missing description rejected", func(t *testing.T) {
		status, _ := postImage(t, server, author, "", "Goa")
		if status != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", status)
		}
	})

	t.Run("anonymous feed read", func(t *testing.T) {
		status, resp := doJSON(t, server, http.MethodGet, "/api/posts", "", nil)
		if status != http.StatusOK {
			t.Fatalf("expected 200, got %d: %v", status, resp)
		}
		posts, _ := resp["posts"].([]any)
		if len(posts) != 1 {
			t.Fatalf("expected 1 post, got %d", len(posts))
		}
	})

	t.Run("like toggle", func(t *testing.T) {
		status, resp := doJSON(t, server, http.MethodPost, "/api/posts/"+postID+"/like", viewer, nil)
		if status != http.StatusOK {
			t.Fatalf("expected 200, got %d: %v", status, resp)
		}
		if resp["liked"] != true {
			t.Errorf("expected liked=true, got %v", resp["liked"])
		}

		status, resp = doJSON(t, server, http.MethodPost, "/api/posts/"+postID+"/like", viewer, nil)
		if status != http.StatusOK || resp["liked"] != false {
			t.Errorf("expected toggle off, got %d %v", status, resp)
		}
	})

	t.Run("foreign delete forbidden", func(t *testing.T) {
		status, _ := doJSON(t, server, http.MethodDelete, "/api/posts/"+postID, viewer, nil)
		if status != http.StatusForbidden {
			t.Errorf("expected 403, got %d", status)
		}
	})

	t.Run("owner delete", func(t *testing.T) {
		status, _ := doJSON(t, server, http.MethodDelete, "/api/posts/"+postID, author, nil)
		if status != http.StatusOK {
			t.Errorf("expected 200, got %d", status)
		}
	})
}

func TestHealthz(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/healthz")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}
