package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/platemate/orderhub/internal/cache"
	"github.com/platemate/orderhub/internal/config"
	"github.com/platemate/orderhub/internal/domain/menu"
	"github.com/platemate/orderhub/internal/observability"
	"github.com/platemate/orderhub/internal/utils"
)

const menuListCacheKey = "menus:list:v1"

type MenusStore interface {
	Create(ctx context.Context, req menu.CreateMenuItemRequest) (menu.MenuItem, error)
	List(ctx context.Context) ([]menu.MenuItem, error)
	GetByID(ctx context.Context, id string) (menu.MenuItem, error)
	Update(ctx context.Context, id string, req menu.UpdateMenuItemRequest) (menu.MenuItem, error)
	Delete(ctx context.Context, id string) error
}

type MenusHandler struct {
	repo  MenusStore
	cache cache.Store
	prom  *observability.Prom
}

func NewMenusHandler(repo MenusStore, listCache cache.Store, prom *observability.Prom) *MenusHandler {
	return &MenusHandler{repo: repo, cache: listCache, prom: prom}
}

func (h *MenusHandler) ListMenus(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	if h.cache != nil {
		if raw, ok := h.cache.Get(cctx, menuListCacheKey); ok {
			h.countCache(true)
			ctx.Data(http.StatusOK, "application/json; charset=utf-8", raw)
			return
		}
		h.countCache(false)
	}

	items, err := h.repo.List(cctx)

	if err != nil {
		RespondInternal(ctx, "Server error fetching menus.")
		return
	}

	if h.cache != nil {
		if raw, err := json.Marshal(items); err == nil {
			h.cache.Set(cctx, menuListCacheKey, raw)
		}
	}

	RespondJSONWithETag(ctx, http.StatusOK, items)
}

func (h *MenusHandler) GetMenu(ctx *gin.Context) {
	id := ctx.Param("id")

	// a malformed id can match nothing
	if !utils.IsUUID(id) {
		RespondNotFound(ctx, "Menu item not found.")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	m, err := h.repo.GetByID(cctx, id)

	if err != nil {
		if errors.Is(err, menu.ErrNotFound) {
			RespondNotFound(ctx, "Menu item not found.")
			return
		}
		RespondInternal(ctx, "Server error fetching menu item.")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, m)
}

func (h *MenusHandler) CreateMenu(ctx *gin.Context) {
	var req menu.CreateMenuItemRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	m, err := h.repo.Create(cctx, req)

	if err != nil {
		RespondInternal(ctx, "Server error adding menu item.")
		return
	}

	h.invalidateList(cctx)

	ctx.JSON(http.StatusCreated, gin.H{
		"message":  "Menu item added successfully!",
		"menuItem": m,
	})
}

func (h *MenusHandler) UpdateMenu(ctx *gin.Context) {
	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondNotFound(ctx, "Menu item not found for update.")
		return
	}

	var req menu.UpdateMenuItemRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	m, err := h.repo.Update(cctx, id, req)

	if err != nil {
		if errors.Is(err, menu.ErrNotFound) {
			RespondNotFound(ctx, "Menu item not found for update.")
			return
		}
		RespondInternal(ctx, "Server error updating menu item.")
		return
	}

	h.invalidateList(cctx)

	ctx.JSON(http.StatusOK, gin.H{
		"message":  "Menu item updated successfully!",
		"menuItem": m,
	})
}

func (h *MenusHandler) DeleteMenu(ctx *gin.Context) {
	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondNotFound(ctx, "Menu item not found for deletion.")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	err := h.repo.Delete(cctx, id)

	if err != nil {
		if errors.Is(err, menu.ErrNotFound) {
			RespondNotFound(ctx, "Menu item not found for deletion.")
			return
		}
		RespondInternal(ctx, "Server error deleting menu item.")
		return
	}

	h.invalidateList(cctx)

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Menu item deleted successfully!",
	})
}

func (h *MenusHandler) invalidateList(ctx context.Context) {
	if h.cache != nil {
		h.cache.Delete(ctx, menuListCacheKey)
	}
}

func (h *MenusHandler) countCache(hit bool) {
	if h.prom == nil {
		return
	}
	if hit {
		h.prom.CacheHits.WithLabelValues(menuListCacheKey).Inc()
	} else {
		h.prom.CacheMisses.WithLabelValues(menuListCacheKey).Inc()
	}
}
