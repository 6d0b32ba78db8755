package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/platemate/orderhub/internal/auth"
	"github.com/platemate/orderhub/internal/domain/user"
	"github.com/platemate/orderhub/internal/http/handlers"
	"github.com/platemate/orderhub/internal/http/middlewares"
)

type fakeUserDirectory struct {
	byID    map[string]user.User
	listErr error
	getErr  error
}

func (f *fakeUserDirectory) GetByID(_ context.Context, id string) (user.User, error) {
	if f.getErr != nil {
		return user.User{}, f.getErr
	}
	u, ok := f.byID[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserDirectory) List(_ context.Context) ([]user.User, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]user.User, 0, len(f.byID))
	for _, u := range f.byID {
		out = append(out, u)
	}
	return out, nil
}

func newUsersRouter(dir *fakeUserDirectory, jwtManager *auth.Manager) *gin.Engine {
	r := gin.New()
	h := handlers.NewUsersHandler(dir)
	m := middlewares.NewAuthMiddleware(jwtManager)

	r.GET("/api/me", m.RequireAuth(), h.Me)
	r.GET("/api/admin/users", m.RequireAuth(), m.RequireRole("admin"), h.ListUsers)

	return r
}

func TestMe(t *testing.T) {
	jwtManager := auth.NewManager("test-secret-key", time.Minute, time.Hour)

	alice := user.User{
		ID:       "u-alice",
		Username: "alice",
		Email:    "alice@example.com",
		Role:     user.RoleUser,
	}

	aliceToken, err := jwtManager.GenerateAccessToken(alice.ID, alice.Username, alice.Email, alice.Role)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	ghostToken, _ := jwtManager.GenerateAccessToken("u-ghost", "ghost", "ghost@example.com", user.RoleUser)

	tests := []struct {
		name           string
		dir            *fakeUserDirectory
		token          string
		wantStatusCode int
		wantUsername   string
	}{
		{
			name:           "returns_profile",
			dir:            &fakeUserDirectory{byID: map[string]user.User{alice.ID: alice}},
			token:          aliceToken,
			wantStatusCode: http.StatusOK,
			wantUsername:   "alice",
		},
		{
			name:           "no_token",
			dir:            &fakeUserDirectory{byID: map[string]user.User{alice.ID: alice}},
			token:          "",
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "account_deleted_after_token_issued",
			dir:            &fakeUserDirectory{byID: map[string]user.User{alice.ID: alice}},
			token:          ghostToken,
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "store_failure",
			dir:            &fakeUserDirectory{getErr: errors.New("boom")},
			token:          aliceToken,
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			r := newUsersRouter(tt.dir, jwtManager)

			req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if tt.wantStatusCode != http.StatusOK {
				return
			}

			var body map[string]any
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if body["username"] != tt.wantUsername {
				t.Fatalf("username = %v, want %s", body["username"], tt.wantUsername)
			}
			if _, leaked := body["passwordHash"]; leaked {
				t.Fatal("response must not expose password hash")
			}
		})
	}
}

func TestListUsers(t *testing.T) {
	jwtManager := auth.NewManager("test-secret-key", time.Minute, time.Hour)

	dir := &fakeUserDirectory{byID: map[string]user.User{
		"u-1": {ID: "u-1", Username: "alice", Email: "alice@example.com", Role: user.RoleUser},
		"u-2": {ID: "u-2", Username: "root", Email: "admin@example.com", Role: user.RoleAdmin},
	}}

	adminToken, _ := jwtManager.GenerateAccessToken("u-2", "root", "admin@example.com", user.RoleAdmin)
	userToken, _ := jwtManager.GenerateAccessToken("u-1", "alice", "alice@example.com", user.RoleUser)

	t.Run("admin_sees_all_users", func(t *testing.T) {
		r := newUsersRouter(dir, jwtManager)

		req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
		req.Header.Set("Authorization", "Bearer "+adminToken)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("got %d, body=%s", w.Code, w.Body.String())
		}

		var body struct {
			Items []user.User `json:"items"`
			Count int         `json:"count"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if body.Count != 2 || len(body.Items) != 2 {
			t.Fatalf("count = %d, items = %d, want 2", body.Count, len(body.Items))
		}
	})

	t.Run("non_admin_forbidden", func(t *testing.T) {
		r := newUsersRouter(dir, jwtManager)

		req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
		req.Header.Set("Authorization", "Bearer "+userToken)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusForbidden {
			t.Fatalf("got %d, want 403, body=%s", w.Code, w.Body.String())
		}
	})

	t.Run("store_failure", func(t *testing.T) {
		r := newUsersRouter(&fakeUserDirectory{listErr: errors.New("boom")}, jwtManager)

		req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
		req.Header.Set("Authorization", "Bearer "+adminToken)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusInternalServerError {
			t.Fatalf("got %d, want 500, body=%s", w.Code, w.Body.String())
		}
	})
}
