package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/platemate/orderhub/internal/domain/menu"
	"github.com/platemate/orderhub/internal/http/handlers"
)

// Make sure Gin does not spam the console during the test

func init() {
	gin.SetMode(gin.TestMode)
}

// Fake repository implementation of the handlers.MenusStore interface

type fakeMenusRepo struct {
	createFn func(ctx context.Context, req menu.CreateMenuItemRequest) (menu.MenuItem, error)
	listFn   func(ctx context.Context) ([]menu.MenuItem, error)
	getFn    func(ctx context.Context, id string) (menu.MenuItem, error)
	updateFn func(ctx context.Context, id string, req menu.UpdateMenuItemRequest) (menu.MenuItem, error)
	deleteFn func(ctx context.Context, id string) error
}

func (f *fakeMenusRepo) Create(ctx context.Context, req menu.CreateMenuItemRequest) (menu.MenuItem, error) {
	if f.createFn != nil {
		return f.createFn(ctx, req)
	}
	return menu.MenuItem{}, nil
}

func (f *fakeMenusRepo) List(ctx context.Context) ([]menu.MenuItem, error) {
	if f.listFn != nil {
		return f.listFn(ctx)
	}
	return []menu.MenuItem{}, nil
}

func (f *fakeMenusRepo) GetByID(ctx context.Context, id string) (menu.MenuItem, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}
	return menu.MenuItem{}, nil
}

func (f *fakeMenusRepo) Update(ctx context.Context, id string, req menu.UpdateMenuItemRequest) (menu.MenuItem, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, id, req)
	}
	return menu.MenuItem{}, nil
}

func (f *fakeMenusRepo) Delete(ctx context.Context, id string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

// small helper which returns a gin engine to mount one handler per test

func setupRouter(method, path string, h gin.HandlerFunc) *gin.Engine {
	r := gin.New()

	r.Handle(method, path, h)

	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func sampleItem(id string) menu.MenuItem {
	now := time.Now().UTC()

	return menu.MenuItem{
		ID:        id,
		Name:      "Soup",
		Price:     5,
		Category:  "starter",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestCreateMenuHandler(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		repoSetUp      func(*fakeMenusRepo)
		wantStatusCode int
	}{
		{
			name: "success",
			body: `{"name": "Soup", "price": 5, "category": "starter"}`,
			repoSetUp: func(f *fakeMenusRepo) {
				f.createFn = func(ctx context.Context, req menu.CreateMenuItemRequest) (menu.MenuItem, error) {
					m := sampleItem(uuid.NewString())
					m.Name = req.Name
					m.Price = *req.Price
					m.Category = req.Category
					return m, nil
				}
			},
			wantStatusCode: http.StatusCreated,
		},
		{
			name:           "missing_required_fields",
			body:           `{"name": "Soup"}`,
			repoSetUp:      func(f *fakeMenusRepo) {},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "negative_price",
			body:           `{"name": "Soup", "price": -1, "category": "starter"}`,
			repoSetUp:      func(f *fakeMenusRepo) {},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "repo_error",
			body: `{"name": "Soup", "price": 5, "category": "starter"}`,
			repoSetUp: func(f *fakeMenusRepo) {
				f.createFn = func(ctx context.Context, req menu.CreateMenuItemRequest) (menu.MenuItem, error) {
					return menu.MenuItem{}, errors.New("db error")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeMenusRepo{}

			if tt.repoSetUp != nil {
				tt.repoSetUp(fake)
			}

			h := handlers.NewMenusHandler(fake, nil, nil)

			r := setupRouter(http.MethodPost, "/api/menus", h.CreateMenu)

			w := doJSON(t, r, http.MethodPost, "/api/menus", tt.body)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if w.Code == http.StatusCreated {
				var resp struct {
					Message  string        `json:"message"`
					MenuItem menu.MenuItem `json:"menuItem"`
				}
				if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
					t.Fatalf("bad body: %v", err)
				}
				if resp.Message == "" || resp.MenuItem.ID == "" {
					t.Fatalf("incomplete created body: %s", w.Body.String())
				}
				if resp.MenuItem.Price != 5 {
					t.Fatalf("price mismatch: %+v", resp.MenuItem)
				}
			}

			if w.Code >= 400 {
				var resp map[string]interface{}
				if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
					t.Fatalf("bad error body: %v", err)
				}
				if _, ok := resp["message"]; !ok {
					t.Fatalf("error body must carry a message: %s", w.Body.String())
				}
			}
		})
	}
}

func TestGetMenuHandler(t *testing.T) {
	knownID := uuid.NewString()

	tests := []struct {
		name           string
		id             string
		repoSetUp      func(*fakeMenusRepo)
		wantStatusCode int
	}{
		{
			name: "found",
			id:   knownID,
			repoSetUp: func(f *fakeMenusRepo) {
				f.getFn = func(ctx context.Context, id string) (menu.MenuItem, error) {
					return sampleItem(id), nil
				}
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "not_found",
			id:   uuid.NewString(),
			repoSetUp: func(f *fakeMenusRepo) {
				f.getFn = func(ctx context.Context, id string) (menu.MenuItem, error) {
					return menu.MenuItem{}, menu.ErrNotFound
				}
			},
			wantStatusCode: http.StatusNotFound,
		},
		{
			// a malformed id can never match a stored item
			name:           "malformed_id",
			id:             "not-a-uuid",
			repoSetUp:      func(f *fakeMenusRepo) {},
			wantStatusCode: http.StatusNotFound,
		},
		{
			name: "repo_error",
			id:   knownID,
			repoSetUp: func(f *fakeMenusRepo) {
				f.getFn = func(ctx context.Context, id string) (menu.MenuItem, error) {
					return menu.MenuItem{}, errors.New("db error")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeMenusRepo{}
			tt.repoSetUp(fake)

			h := handlers.NewMenusHandler(fake, nil, nil)
			r := setupRouter(http.MethodGet, "/api/menus/:id", h.GetMenu)

			req := httptest.NewRequest(http.MethodGet, "/api/menus/"+tt.id, nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestUpdateMenuHandler(t *testing.T) {
	knownID := uuid.NewString()

	tests := []struct {
		name           string
		id             string
		body           string
		repoSetUp      func(*fakeMenusRepo)
		wantStatusCode int
	}{
		{
			name: "partial_update",
			id:   knownID,
			body: `{"price": 6.5}`,
			repoSetUp: func(f *fakeMenusRepo) {
				f.updateFn = func(ctx context.Context, id string, req menu.UpdateMenuItemRequest) (menu.MenuItem, error) {
					if req.Price == nil || *req.Price != 6.5 {
						t.Fatalf("expected price in request, got %+v", req)
					}
					if req.Name != nil {
						t.Fatalf("name must stay unset: %+v", req)
					}
					m := sampleItem(id)
					m.Price = *req.Price
					return m, nil
				}
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "not_found",
			id:   uuid.NewString(),
			body: `{"price": 6.5}`,
			repoSetUp: func(f *fakeMenusRepo) {
				f.updateFn = func(ctx context.Context, id string, req menu.UpdateMenuItemRequest) (menu.MenuItem, error) {
					return menu.MenuItem{}, menu.ErrNotFound
				}
			},
			wantStatusCode: http.StatusNotFound,
		},
		{
			name:           "invalid_price",
			id:             knownID,
			body:           `{"price": -2}`,
			repoSetUp:      func(f *fakeMenusRepo) {},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "malformed_id",
			id:             "nope",
			body:           `{"price": 6.5}`,
			repoSetUp:      func(f *fakeMenusRepo) {},
			wantStatusCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeMenusRepo{}
			tt.repoSetUp(fake)

			h := handlers.NewMenusHandler(fake, nil, nil)
			r := setupRouter(http.MethodPut, "/api/menus/:id", h.UpdateMenu)

			w := doJSON(t, r, http.MethodPut, "/api/menus/"+tt.id, tt.body)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestDeleteMenuHandler(t *testing.T) {
	tests := []struct {
		name           string
		id             string
		repoSetUp      func(*fakeMenusRepo)
		wantStatusCode int
	}{
		{
			name: "success",
			id:   uuid.NewString(),
			repoSetUp: func(f *fakeMenusRepo) {
				f.deleteFn = func(ctx context.Context, id string) error {
					return nil
				}
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "already_deleted",
			id:   uuid.NewString(),
			repoSetUp: func(f *fakeMenusRepo) {
				f.deleteFn = func(ctx context.Context, id string) error {
					return menu.ErrNotFound
				}
			},
			wantStatusCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeMenusRepo{}
			tt.repoSetUp(fake)

			h := handlers.NewMenusHandler(fake, nil, nil)
			r := setupRouter(http.MethodDelete, "/api/menus/:id", h.DeleteMenu)

			req := httptest.NewRequest(http.MethodDelete, "/api/menus/"+tt.id, nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestListMenusHandler(t *testing.T) {
	fake := &fakeMenusRepo{
		listFn: func(ctx context.Context) ([]menu.MenuItem, error) {
			return []menu.MenuItem{}, nil
		},
	}

	h := handlers.NewMenusHandler(fake, nil, nil)
	r := setupRouter(http.MethodGet, "/api/all-menus", h.ListMenus)

	req := httptest.NewRequest(http.MethodGet, "/api/all-menus", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}

	// empty catalog is a valid empty array, not null
	var items []menu.MenuItem
	if err := json.Unmarshal(w.Body.Bytes(), &items); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if items == nil || len(items) != 0 {
		t.Fatalf("want empty array, got %s", w.Body.String())
	}
}
