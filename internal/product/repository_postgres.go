package product

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/wichananm65/campus-market-backend/internal/apperr"
)

type PostgresRepository struct {
	db *sql.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

const productColumns = `id, vendor_id, school, title, price, old_price, category, image, description, status, created_at, updated_at`

const (
	getProductByIDQuery = `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	countProductsQuery  = `SELECT COUNT(*) FROM products`

	insertProductQuery = `
		INSERT INTO products (id, vendor_id, school, title, price, old_price, category, image, description, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at
	`
	updateProductQuery = `
		UPDATE products
		SET school = $2,
			title = $3,
			price = $4,
			old_price = $5,
			category = $6,
			image = $7,
			description = $8,
			status = $9,
			updated_at = now()
		WHERE id = $1
		RETURNING ` + productColumns
	deleteProductQuery = `DELETE FROM products WHERE id = $1`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context, f Filter) ([]Product, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}
	if !f.IncludeHidden {
		where = append(where, "status <> 'hidden'")
	}
	if f.Category != "" {
		where = append(where, "lower(category) = lower("+arg(f.Category)+")")
	}
	if f.VendorID != uuid.Nil {
		where = append(where, "vendor_id = "+arg(f.VendorID))
	}

	query := `SELECT ` + productColumns + ` FROM products`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperr.Store(err, "list products")
	}
	defer rows.Close()

	products := make([]Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, apperr.Store(err, "scan product")
		}
		products = append(products, p)
	}
	return products, apperr.Store(rows.Err(), "list products")
}

func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx, getProductByIDQuery, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	if err != nil {
		return Product{}, apperr.Store(err, "load product")
	}
	return p, nil
}

func (r *PostgresRepository) Create(ctx context.Context, p Product) (Product, error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	err := r.db.QueryRowContext(ctx, insertProductQuery,
		p.ID, p.VendorID, p.School, p.Title, p.Price, nullFloat(p.OldPrice),
		p.Category, p.Image, p.Description, string(p.Status),
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return Product{}, apperr.Store(err, "insert product")
	}
	return p, nil
}

func (r *PostgresRepository) Update(ctx context.Context, p Product) (Product, error) {
	updated, err := scanProduct(r.db.QueryRowContext(ctx, updateProductQuery,
		p.ID, p.School, p.Title, p.Price, nullFloat(p.OldPrice),
		p.Category, p.Image, p.Description, string(p.Status),
	))
	if errors.Is(err, sql.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	if err != nil {
		return Product{}, apperr.Store(err, "update product")
	}
	return updated, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, deleteProductQuery, id)
	if err != nil {
		return apperr.Store(err, "delete product")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return apperr.Store(err, "delete product")
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, countProductsQuery).Scan(&n); err != nil {
		return 0, apperr.Store(err, "count products")
	}
	return n, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func scanProduct(scanner rowScanner) (Product, error) {
	var p Product
	var oldPrice sql.NullFloat64
	var status string
	if err := scanner.Scan(
		&p.ID,
		&p.VendorID,
		&p.School,
		&p.Title,
		&p.Price,
		&oldPrice,
		&p.Category,
		&p.Image,
		&p.Description,
		&status,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return Product{}, err
	}
	if oldPrice.Valid {
		v := oldPrice.Float64
		p.OldPrice = &v
	}
	p.Status = Status(status)
	return p, nil
}
