package cart

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/wichananm65/campus-market-backend/internal/apperr"
	"github.com/wichananm65/campus-market-backend/internal/database"
	"github.com/wichananm65/campus-market-backend/internal/product"
)

const (
	lockLineQuery   = `SELECT quantity FROM cart_items WHERE user_id = $1 AND product_id = $2 FOR UPDATE`
	upsertLineQuery = `
		INSERT INTO cart_items (user_id, product_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = now()
	`
	deleteLineQuery = `DELETE FROM cart_items WHERE user_id = $1 AND product_id = $2`
	getCartQuery    = `SELECT product_id, quantity FROM cart_items WHERE user_id = $1 ORDER BY updated_at DESC`
	clearCartQuery  = `DELETE FROM cart_items WHERE user_id = $1`
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Add(ctx context.Context, userID, productID uuid.UUID, delta int) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return apperr.Store(err, "begin cart update")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var current int
	if scanErr := tx.QueryRowContext(ctx, lockLineQuery, userID, productID).Scan(&current); scanErr != nil && !errors.Is(scanErr, sql.ErrNoRows) {
		return apperr.Store(scanErr, "lock cart line")
	}

	qty := current + delta
	if qty <= 0 {
		_, err = tx.ExecContext(ctx, deleteLineQuery, userID, productID)
	} else {
		_, err = tx.ExecContext(ctx, upsertLineQuery, userID, productID, qty)
	}
	if database.IsForeignKeyViolation(err) {
		return product.ErrNotFound
	}
	if err != nil {
		return apperr.Store(err, "write cart line")
	}
	return apperr.Store(tx.Commit(), "commit cart update")
}

func (r *PostgresRepository) Get(ctx context.Context, userID uuid.UUID) ([]Line, error) {
	rows, err := r.db.QueryContext(ctx, getCartQuery, userID)
	if err != nil {
		return nil, apperr.Store(err, "load cart")
	}
	defer rows.Close()

	out := make([]Line, 0)
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.ProductID, &l.Quantity); err != nil {
			return nil, apperr.Store(err, "scan cart line")
		}
		out = append(out, l)
	}
	return out, apperr.Store(rows.Err(), "load cart")
}

func (r *PostgresRepository) Clear(ctx context.Context, userID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, clearCartQuery, userID)
	return apperr.Store(err, "clear cart")
}
