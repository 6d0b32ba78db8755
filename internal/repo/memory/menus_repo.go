package memory

import (
	"context"
	"sync"

	"github.com/platemate/orderhub/internal/domain/menu"
)

// MenusRepo keeps menu items in process memory. Storage order is insertion
// order, matching what the SQL repo returns when ordered by created_at.
type MenusRepo struct {
	mu    sync.RWMutex
	items map[string]menu.MenuItem
	order []string
}

func NewMenusRepo() *MenusRepo {
	return &MenusRepo{
		items: make(map[string]menu.MenuItem),
	}
}

func (r *MenusRepo) Create(ctx context.Context, req menu.CreateMenuItemRequest) (menu.MenuItem, error) {
	m := menu.NewFromCreateRequest(req)

	r.mu.Lock()
	r.items[m.ID] = m
	r.order = append(r.order, m.ID)
	r.mu.Unlock()

	return m, nil
}

func (r *MenusRepo) List(ctx context.Context) ([]menu.MenuItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]menu.MenuItem, 0, len(r.order))

	for _, id := range r.order {
		if m, ok := r.items[id]; ok {
			out = append(out, m)
		}
	}

	return out, nil
}

func (r *MenusRepo) GetByID(ctx context.Context, id string) (menu.MenuItem, error) {
	r.mu.RLock()
	m, ok := r.items[id]
	r.mu.RUnlock()

	if !ok {
		return menu.MenuItem{}, menu.ErrNotFound
	}

	return m, nil
}

func (r *MenusRepo) Update(ctx context.Context, id string, req menu.UpdateMenuItemRequest) (menu.MenuItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.items[id]

	if !ok {
		return menu.MenuItem{}, menu.ErrNotFound
	}

	m = req.ApplyTo(m)
	r.items[id] = m

	return m, nil
}

func (r *MenusRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return menu.ErrNotFound
	}

	delete(r.items, id)

	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	return nil
}
