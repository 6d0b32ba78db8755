package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/platemate/orderhub/internal/domain/menu"
	"github.com/platemate/orderhub/internal/observability"
)

type MenusRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

// constructor function

func NewMenusRepo(pool *pgxpool.Pool, prom *observability.Prom) *MenusRepo {
	return &MenusRepo{pool: pool, prom: prom}
}

func (r *MenusRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (r *MenusRepo) Create(ctx context.Context, req menu.CreateMenuItemRequest) (menu.MenuItem, error) {
	m := menu.NewFromCreateRequest(req)

	err := r.observe("menus.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO menu_items(id, name, description, price, category, image_url, created_at, updated_at)
			 VALUES($1,$2,$3,$4,$5,$6,$7,$8)`,
			m.ID, m.Name, m.Description, m.Price, m.Category, m.ImageURL, m.CreatedAt, m.UpdatedAt,
		)
		return err
	})

	if err != nil {
		return menu.MenuItem{}, err
	}

	return m, nil
}

func (r *MenusRepo) List(ctx context.Context) ([]menu.MenuItem, error) {
	var out []menu.MenuItem

	err := r.observe("menus.list", func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT id, name, description, price, category, image_url, created_at, updated_at
			 FROM menu_items
			 ORDER BY created_at ASC, id ASC`,
		)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = make([]menu.MenuItem, 0)

		for rows.Next() {
			var m menu.MenuItem

			err = rows.Scan(&m.ID, &m.Name, &m.Description, &m.Price, &m.Category, &m.ImageURL, &m.CreatedAt, &m.UpdatedAt)
			if err != nil {
				return err
			}

			out = append(out, m)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

func (r *MenusRepo) GetByID(ctx context.Context, id string) (menu.MenuItem, error) {
	var m menu.MenuItem

	err := r.observe("menus.get_by_id", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT id, name, description, price, category, image_url, created_at, updated_at
			 FROM menu_items
			 WHERE id = $1`,
			id,
		).Scan(&m.ID, &m.Name, &m.Description, &m.Price, &m.Category, &m.ImageURL, &m.CreatedAt, &m.UpdatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return menu.MenuItem{}, menu.ErrNotFound
		}

		return menu.MenuItem{}, err
	}

	return m, nil
}

// Update sets only the supplied fields; omitted fields keep prior values.
func (r *MenusRepo) Update(ctx context.Context, id string, req menu.UpdateMenuItemRequest) (menu.MenuItem, error) {
	sets := []string{"updated_at = NOW()"}
	args := []interface{}{id}

	argsPosition := 2

	addSet := func(col string, val interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, argsPosition))
		args = append(args, val)
		argsPosition++
	}

	if req.Name != nil {
		addSet("name", *req.Name)
	}
	if req.Description != nil {
		addSet("description", *req.Description)
	}
	if req.Price != nil {
		addSet("price", *req.Price)
	}
	if req.Category != nil {
		addSet("category", *req.Category)
	}
	if req.ImageURL != nil {
		addSet("image_url", *req.ImageURL)
	}

	query := `UPDATE menu_items SET ` + strings.Join(sets, ", ") + `
		WHERE id = $1
		RETURNING id, name, description, price, category, image_url, created_at, updated_at`

	var m menu.MenuItem

	err := r.observe("menus.update", func() error {
		return r.pool.QueryRow(ctx, query, args...).Scan(
			&m.ID,
			&m.Name,
			&m.Description,
			&m.Price,
			&m.Category,
			&m.ImageURL,
			&m.CreatedAt,
			&m.UpdatedAt,
		)
	})

	if err != nil {
		// if there are no rows matching the id
		if errors.Is(err, pgx.ErrNoRows) {
			return menu.MenuItem{}, menu.ErrNotFound
		}

		return menu.MenuItem{}, err
	}

	return m, nil
}

func (r *MenusRepo) Delete(ctx context.Context, id string) error {
	var tag int64

	err := r.observe("menus.delete", func() error {
		res, err := r.pool.Exec(ctx, `DELETE FROM menu_items WHERE id = $1`, id)
		if err != nil {
			return err
		}
		tag = res.RowsAffected()
		return nil
	})

	if err != nil {
		return err
	}

	// if no rows were deleted as a result return a not found error
	if tag == 0 {
		return menu.ErrNotFound
	}

	return nil
}
