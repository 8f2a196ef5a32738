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

const orderColumns = `id, user_id, service_id, provider_id, status, price, payment_status,
	requirements, delivery_date, created_at, updated_at`

type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

func scanOrder(row pgx.Row) (*entity.Order, error) {
	o := &entity.Order{}
	err := row.Scan(&o.ID, &o.UserID, &o.ServiceID, &o.ProviderID, &o.Status, &o.Price,
		&o.PaymentStatus, &o.Requirements, &o.DeliveryDate, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return o, nil
}

func (r *OrderRepository) Create(o *entity.Order) error {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		INSERT INTO orders (user_id, service_id, provider_id, status, price, payment_status, requirements, delivery_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`, o.UserID, o.ServiceID, o.ProviderID, o.Status, o.Price, o.PaymentStatus, o.Requirements, o.DeliveryDate)

	return mapError(row.Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt))
}

func (r *OrderRepository) GetByID(id string) (*entity.Order, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	return scanOrder(row)
}

func (r *OrderRepository) ListByUser(userID string, status entity.OrderStatus) ([]*entity.Order, error) {
	ctx := context.Background()

	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1`
	args := []any{userID}
	if status != "" {
		args = append(args, status)
		query += ` AND status = $2`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*entity.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *OrderRepository) Update(id string, upd repository.OrderUpdate) (*entity.Order, error) {
	b := &setBuilder{}
	if upd.Status != nil {
		b.add("status", *upd.Status)
	}
	if upd.PaymentStatus != nil {
		b.add("payment_status", *upd.PaymentStatus)
	}
	if upd.Requirements != nil {
		b.add("requirements", *upd.Requirements)
	}
	if upd.DeliveryDate != nil {
		b.add("delivery_date", *upd.DeliveryDate)
	}
	if b.empty() {
		return r.GetByID(id)
	}

	ctx := context.Background()
	query := `UPDATE orders SET ` + strings.Join(b.clauses, ", ") +
		`, updated_at = now() WHERE id = ` + b.next(id) +
		` RETURNING ` + orderColumns
	return scanOrder(r.pool.QueryRow(ctx, query, b.args...))
}

var _ repository.OrderRepository = (*OrderRepository)(nil)
