package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/khadamatapp/marketplace-api/internal/domain/entity"
	"github.com/khadamatapp/marketplace-api/internal/domain/repository"
)

const categoryColumns = `id, slug, title, title_ar, description, description_ar, image_src, created_at, updated_at`

type CategoryRepository struct {
	pool *pgxpool.Pool
}

func NewCategoryRepository(pool *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{pool: pool}
}

func scanCategory(row pgx.Row) (*entity.Category, error) {
	c := &entity.Category{}
	err := row.Scan(&c.ID, &c.Slug, &c.Title, &c.TitleAr, &c.Description,
		&c.DescriptionAr, &c.ImageSrc, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *CategoryRepository) Create(c *entity.Category) error {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		INSERT INTO categories (slug, title, title_ar, description, description_ar, image_src)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, c.Slug, c.Title, c.TitleAr, c.Description, c.DescriptionAr, c.ImageSrc)

	return mapError(row.Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt))
}

func (r *CategoryRepository) GetBySlug(slug string) (*entity.Category, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `SELECT `+categoryColumns+` FROM categories WHERE slug = $1`, slug)
	return scanCategory(row)
}

func (r *CategoryRepository) List() ([]*entity.Category, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY title ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*entity.Category, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *CategoryRepository) UpdateBySlug(slug string, upd repository.CategoryUpdate) (*entity.Category, error) {
	b := &setBuilder{}
	if upd.Title != nil {
		b.add("title", *upd.Title)
	}
	if upd.TitleAr != nil {
		b.add("title_ar", *upd.TitleAr)
	}
	if upd.Description != nil {
		b.add("description", *upd.Description)
	}
	if upd.DescriptionAr != nil {
		b.add("description_ar", *upd.DescriptionAr)
	}
	if upd.ImageSrc != nil {
		b.add("image_src", *upd.ImageSrc)
	}
	if b.empty() {
		return r.GetBySlug(slug)
	}

	ctx := context.Background()
	query := `UPDATE categories SET ` + strings.Join(b.clauses, ", ") +
		`, updated_at = now() WHERE slug = ` + b.next(slug) +
		` RETURNING ` + categoryColumns
	return scanCategory(r.pool.QueryRow(ctx, query, b.args...))
}

func (r *CategoryRepository) DeleteBySlug(slug string) error {
	ctx := context.Background()
	res, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE slug = $1`, slug)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.CategoryRepository = (*CategoryRepository)(nil)
