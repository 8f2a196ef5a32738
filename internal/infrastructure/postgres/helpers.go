package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/khadamatapp/marketplace-api/internal/domain/repository"
)

// setBuilder accumulates SET clauses and arguments for partial updates.
type setBuilder struct {
	clauses []string
	args    []any
}

func (b *setBuilder) add(col string, v any) {
	b.args = append(b.args, v)
	b.clauses = append(b.clauses, fmt.Sprintf("%s = $%d", col, len(b.args)))
}

func (b *setBuilder) empty() bool { return len(b.clauses) == 0 }

// next returns the next positional placeholder after appending v to args.
func (b *setBuilder) next(v any) string {
	b.args = append(b.args, v)
	return fmt.Sprintf("$%d", len(b.args))
}

// mapError translates driver-level errors into repository sentinels.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return repository.ErrDuplicate
	}
	return err
}
