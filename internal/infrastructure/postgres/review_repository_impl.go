package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/khadamatapp/marketplace-api/internal/domain/entity"
	"github.com/khadamatapp/marketplace-api/internal/domain/repository"
)

const reviewColumns = `id, user_id, service_id, provider_id, rating, comment, created_at, updated_at`

type ReviewRepository struct {
	pool *pgxpool.Pool
}

func NewReviewRepository(pool *pgxpool.Pool) *ReviewRepository {
	return &ReviewRepository{pool: pool}
}

func scanReview(row pgx.Row) (*entity.Review, error) {
	v := &entity.Review{}
	err := row.Scan(&v.ID, &v.UserID, &v.ServiceID, &v.ProviderID, &v.Rating,
		&v.Comment, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return v, nil
}

func (r *ReviewRepository) Create(v *entity.Review) error {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		INSERT INTO reviews (user_id, service_id, provider_id, rating, comment)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`, v.UserID, v.ServiceID, v.ProviderID, v.Rating, v.Comment)

	return mapError(row.Scan(&v.ID, &v.CreatedAt, &v.UpdatedAt))
}

func (r *ReviewRepository) ListByService(serviceID string) ([]*entity.Review, error) {
	return r.list(`WHERE service_id = $1 ORDER BY created_at DESC`, serviceID)
}

func (r *ReviewRepository) ListByProvider(providerID string) ([]*entity.Review, error) {
	return r.list(`WHERE provider_id = $1 ORDER BY created_at DESC`, providerID)
}

func (r *ReviewRepository) ListLatestByService(serviceID string, limit int) ([]*entity.Review, error) {
	return r.list(fmt.Sprintf(`WHERE service_id = $1 ORDER BY created_at DESC LIMIT %d`, limit), serviceID)
}

func (r *ReviewRepository) ListLatestByProvider(providerID string, limit int) ([]*entity.Review, error) {
	return r.list(fmt.Sprintf(`WHERE provider_id = $1 ORDER BY created_at DESC LIMIT %d`, limit), providerID)
}

func (r *ReviewRepository) list(tail string, args ...any) ([]*entity.Review, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx, `SELECT `+reviewColumns+` FROM reviews `+tail, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*entity.Review, 0)
	for rows.Next() {
		v, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *ReviewRepository) DeleteByService(serviceID string) (int64, error) {
	ctx := context.Background()
	res, err := r.pool.Exec(ctx, `DELETE FROM reviews WHERE service_id = $1`, serviceID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected(), nil
}

var _ repository.ReviewRepository = (*ReviewRepository)(nil)
