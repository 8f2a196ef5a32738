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

const providerColumns = `id, user_id, name, image, cover_image, rating, review_count, location,
	categories, is_verified, completed_projects, description, contact_email, contact_phone,
	website, working_hours, gallery, created_at, updated_at`

type ProviderRepository struct {
	pool *pgxpool.Pool
}

func NewProviderRepository(pool *pgxpool.Pool) *ProviderRepository {
	return &ProviderRepository{pool: pool}
}

func scanProvider(row pgx.Row) (*entity.Provider, error) {
	p := &entity.Provider{}
	err := row.Scan(&p.ID, &p.UserID, &p.Name, &p.Image, &p.CoverImage, &p.Rating,
		&p.ReviewCount, &p.Location, &p.Categories, &p.IsVerified, &p.CompletedProjects,
		&p.Description, &p.ContactEmail, &p.ContactPhone, &p.Website, &p.WorkingHours,
		&p.Gallery, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *ProviderRepository) Create(p *entity.Provider) error {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		INSERT INTO providers (user_id, name, image, cover_image, location, categories,
			is_verified, completed_projects, description, contact_email, contact_phone,
			website, working_hours, gallery)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, rating, review_count, created_at, updated_at
	`, p.UserID, p.Name, p.Image, p.CoverImage, p.Location, p.Categories,
		p.IsVerified, p.CompletedProjects, p.Description, p.ContactEmail, p.ContactPhone,
		p.Website, p.WorkingHours, p.Gallery)

	return mapError(row.Scan(&p.ID, &p.Rating, &p.ReviewCount, &p.CreatedAt, &p.UpdatedAt))
}

func (r *ProviderRepository) GetByID(id string) (*entity.Provider, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `SELECT `+providerColumns+` FROM providers WHERE id = $1`, id)
	return scanProvider(row)
}

func (r *ProviderRepository) GetByUserID(userID string) (*entity.Provider, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `SELECT `+providerColumns+` FROM providers WHERE user_id = $1`, userID)
	return scanProvider(row)
}

func (r *ProviderRepository) List(f repository.ProviderFilter) ([]*entity.Provider, error) {
	ctx := context.Background()

	where := []string{}
	args := []any{}
	if f.Category != "" {
		args = append(args, f.Category)
		where = append(where, fmt.Sprintf("$%d = ANY(categories)", len(args)))
	}
	if f.VerifiedOnly {
		where = append(where, "is_verified")
	}
	query := `SELECT ` + providerColumns + ` FROM providers`
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

	out := make([]*entity.Provider, 0)
	for rows.Next() {
		p, err := scanProvider(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *ProviderRepository) Update(id string, upd repository.ProviderUpdate) (*entity.Provider, error) {
	b := &setBuilder{}
	if upd.Name != nil {
		b.add("name", *upd.Name)
	}
	if upd.Image != nil {
		b.add("image", *upd.Image)
	}
	if upd.CoverImage != nil {
		b.add("cover_image", *upd.CoverImage)
	}
	if upd.Location != nil {
		b.add("location", *upd.Location)
	}
	if upd.Categories != nil {
		b.add("categories", *upd.Categories)
	}
	if upd.Description != nil {
		b.add("description", *upd.Description)
	}
	if upd.ContactEmail != nil {
		b.add("contact_email", *upd.ContactEmail)
	}
	if upd.ContactPhone != nil {
		b.add("contact_phone", *upd.ContactPhone)
	}
	if upd.Website != nil {
		b.add("website", *upd.Website)
	}
	if upd.WorkingHours != nil {
		b.add("working_hours", *upd.WorkingHours)
	}
	if upd.Gallery != nil {
		b.add("gallery", *upd.Gallery)
	}
	if upd.CompletedProjects != nil {
		b.add("completed_projects", *upd.CompletedProjects)
	}
	if b.empty() {
		return r.GetByID(id)
	}

	ctx := context.Background()
	query := `UPDATE providers SET ` + strings.Join(b.clauses, ", ") +
		`, updated_at = now() WHERE id = ` + b.next(id) +
		` RETURNING ` + providerColumns
	return scanProvider(r.pool.QueryRow(ctx, query, b.args...))
}

func (r *ProviderRepository) UpdateAggregates(id string, rating float64, count int) error {
	ctx := context.Background()
	res, err := r.pool.Exec(ctx, `
		UPDATE providers SET rating = $1, review_count = $2, updated_at = now() WHERE id = $3
	`, rating, count, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.ProviderRepository = (*ProviderRepository)(nil)
