package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/platemate/orderhub/internal/domain/menu"
	"github.com/platemate/orderhub/internal/http/handlers"
)

func bindProbe(out interface{}) (*gin.Engine, *bool) {
	ok := false

	r := gin.New()
	r.POST("/probe", func(ctx *gin.Context) {
		ok = handlers.BindJSON(ctx, out)
		if ok {
			ctx.Status(http.StatusOK)
		}
	})

	return r, &ok
}

func TestBindJSONReportsFieldNames(t *testing.T) {
	var req menu.CreateMenuItemRequest
	r, ok := bindProbe(&req)

	w := doJSON(t, r, http.MethodPost, "/probe", `{"name":"Soup"}`)

	if *ok {
		t.Fatal("bind should have failed")
	}
	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d", w.Code)
	}

	var resp struct {
		Message string `json:"message"`
		Details struct {
			Fields []handlers.FieldError `json:"fields"`
		} `json:"details"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad body: %v", err)
	}

	if resp.Message == "" {
		t.Fatal("missing message")
	}

	got := map[string]bool{}
	for _, f := range resp.Details.Fields {
		got[f.Field] = true
	}

	// json names, not Go field names
	if !got["price"] || !got["category"] {
		t.Fatalf("expected price and category errors, got %+v", resp.Details.Fields)
	}
}

func TestBindJSONTypeMismatch(t *testing.T) {
	var req menu.CreateMenuItemRequest
	r, ok := bindProbe(&req)

	w := doJSON(t, r, http.MethodPost, "/probe", `{"name":"Soup","price":"five","category":"starter"}`)

	if *ok {
		t.Fatal("bind should have failed")
	}
	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d", w.Code)
	}
}

func TestBindJSONSyntaxError(t *testing.T) {
	var req menu.CreateMenuItemRequest
	r, ok := bindProbe(&req)

	w := doJSON(t, r, http.MethodPost, "/probe", `{"name":`)

	if *ok {
		t.Fatal("bind should have failed")
	}
	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d", w.Code)
	}
}
