package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/khadamatapp/marketplace-api/internal/domain/entity"
	"github.com/khadamatapp/marketplace-api/internal/domain/repository"
)

const serviceColumns = `id, provider_id, title, provider_name, rating, review_count, price_range,
	image_src, category, description, location, delivery_time, images, features, is_popular,
	created_at, updated_at`

type ServiceRepository struct {
	pool *pgxpool.Pool
}

func NewServiceRepository(pool *pgxpool.Pool) *ServiceRepository {
	return &ServiceRepository{pool: pool}
}

func scanService(row pgx.Row) (*entity.Service, error) {
	s := &entity.Service{}
	err := row.Scan(&s.ID, &s.ProviderID, &s.Title, &s.ProviderName, &s.Rating,
		&s.ReviewCount, &s.PriceRange, &s.ImageSrc, &s.Category, &s.Description,
		&s.Location, &s.DeliveryTime, &s.Images, &s.Features, &s.IsPopular,
		&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return s, nil
}

func (r *ServiceRepository) Create(s *entity.Service) error {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		INSERT INTO services (provider_id, title, provider_name, price_range, image_src,
			category, description, location, delivery_time, images, features, is_popular)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, rating, review_count, created_at, updated_at
	`, s.ProviderID, s.Title, s.ProviderName, s.PriceRange, s.ImageSrc,
		s.Category, s.Description, s.Location, s.DeliveryTime, s.Images, s.Features, s.IsPopular)

	return mapError(row.Scan(&s.ID, &s.Rating, &s.ReviewCount, &s.CreatedAt, &s.UpdatedAt))
}

func (r *ServiceRepository) GetByID(id string) (*entity.Service, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `SELECT `+serviceColumns+` FROM services WHERE id = $1`, id)
	return scanService(row)
}

func (r *ServiceRepository) List(f repository.ServiceFilter) ([]*entity.Service, error) {
	ctx := context.Background()

	where := []string{}
	args := []any{}
	if f.Category != "" {
		args = append(args, f.Category)
		where = append(where, fmt.Sprintf("category = $%d", len(args)))
	}
	if f.PopularOnly {
		where = append(where, "is_popular")
	}
	query := `SELECT ` + serviceColumns + ` FROM services`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY rating DESC`
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*entity.Service, 0)
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *ServiceRepository) ListByProvider(providerID string, limit int) ([]*entity.Service, error) {
	ctx := context.Background()
	query := `SELECT ` + serviceColumns + ` FROM services WHERE provider_id = $1 ORDER BY rating DESC`
	args := []any{providerID}
	if limit > 0 {
		args = append(args, limit)
		query += " LIMIT $2"
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*entity.Service, 0)
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *ServiceRepository) Update(id string, upd repository.ServiceUpdate) (*entity.Service, error) {
	b := &setBuilder{}
	if upd.Title != nil {
		b.add("title", *upd.Title)
	}
	if upd.PriceRange != nil {
		b.add("price_range", *upd.PriceRange)
	}
	if upd.ImageSrc != nil {
		b.add("image_src", *upd.ImageSrc)
	}
	if upd.Category != nil {
		b.add("category", *upd.Category)
	}
	if upd.Description != nil {
		b.add("description", *upd.Description)
	}
	if upd.Location != nil {
		b.add("location", *upd.Location)
	}
	if upd.DeliveryTime != nil {
		b.add("delivery_time", *upd.DeliveryTime)
	}
	if upd.Images != nil {
		b.add("images", *upd.Images)
	}
	if upd.Features != nil {
		b.add("features", *upd.Features)
	}
	if upd.IsPopular != nil {
		b.add("is_popular", *upd.IsPopular)
	}
	if b.empty() {
		return r.GetByID(id)
	}

	ctx := context.Background()
	query := `UPDATE services SET ` + strings.Join(b.clauses, ", ") +
		`, updated_at = now() WHERE id = ` + b.next(id) +
		` RETURNING ` + serviceColumns
	return scanService(r.pool.QueryRow(ctx, query, b.args...))
}

func (r *ServiceRepository) Delete(id string) error {
	ctx := context.Background()
	res, err := r.pool.Exec(ctx, `DELETE FROM services WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *ServiceRepository) UpdateAggregates(id string, rating float64, count int) error {
	ctx := context.Background()
	res, err := r.pool.Exec(ctx, `
		UPDATE services SET rating = $1, review_count = $2, updated_at = now() WHERE id = $3
	`, rating, count, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.ServiceRepository = (*ServiceRepository)(nil)
