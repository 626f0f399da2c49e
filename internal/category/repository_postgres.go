package category

import (
	"context"
	"database/sql"

	"github.com/wichananm65/campus-market-backend/internal/apperr"
)

const countVisibleQuery = `
	SELECT lower(category), COUNT(*)
	FROM products
	WHERE status <> 'hidden'
	GROUP BY lower(category)
`

// PostgresRepository implements Repository using Postgres.
type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) CountVisible(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, countVisibleQuery)
	if err != nil {
		return nil, apperr.Store(err, "count categories")
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var (
			name string
			n    int
		)
		if err := rows.Scan(&name, &n); err != nil {
			return nil, apperr.Store(err, "scan category count")
		}
		counts[name] = n
	}
	return counts, apperr.Store(rows.Err(), "count categories")
}
