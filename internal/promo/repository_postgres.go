package promo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/wichananm65/campus-market-backend/internal/apperr"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

const promoColumns = `id, vendor_ids::text[], start_date, duration_weeks, end_date, active, created_at`

const (
	insertPromoQuery = `
		INSERT INTO promos (id, vendor_ids, start_date, duration_weeks, end_date, active)
		VALUES ($1, $2::uuid[], $3, $4, $5, $6)
		RETURNING created_at
	`
	latestPromoQuery     = `SELECT ` + promoColumns + ` FROM promos ORDER BY start_date DESC LIMIT 1`
	listPromosQuery      = `SELECT ` + promoColumns + ` FROM promos ORDER BY start_date DESC`
	deactivatePromoQuery = `UPDATE promos SET active = false WHERE id = $1 RETURNING ` + promoColumns
)

func (r *PostgresRepository) Create(ctx context.Context, p Promo) (Promo, error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	err := r.db.QueryRowContext(ctx, insertPromoQuery,
		p.ID, pq.Array(uuidStrings(p.VendorIDs)), p.StartDate, p.DurationWeeks, p.EndDate, p.Active,
	).Scan(&p.CreatedAt)
	if err != nil {
		return Promo{}, apperr.Store(err, "insert promo")
	}
	return p, nil
}

func (r *PostgresRepository) Latest(ctx context.Context) (Promo, error) {
	p, err := scanPromo(r.db.QueryRowContext(ctx, latestPromoQuery))
	if errors.Is(err, sql.ErrNoRows) {
		return Promo{}, ErrNotFound
	}
	return p, apperr.Store(err, "load latest promo")
}

func (r *PostgresRepository) List(ctx context.Context) ([]Promo, error) {
	rows, err := r.db.QueryContext(ctx, listPromosQuery)
	if err != nil {
		return nil, apperr.Store(err, "list promos")
	}
	defer rows.Close()

	out := make([]Promo, 0)
	for rows.Next() {
		p, err := scanPromo(rows)
		if err != nil {
			return nil, apperr.Store(err, "scan promo")
		}
		out = append(out, p)
	}
	return out, apperr.Store(rows.Err(), "list promos")
}

func (r *PostgresRepository) Deactivate(ctx context.Context, id uuid.UUID) (Promo, error) {
	p, err := scanPromo(r.db.QueryRowContext(ctx, deactivatePromoQuery, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Promo{}, ErrNotFound
	}
	return p, apperr.Store(err, "deactivate promo")
}

func scanPromo(scanner rowScanner) (Promo, error) {
	var p Promo
	var vendors pq.StringArray
	if err := scanner.Scan(&p.ID, &vendors, &p.StartDate, &p.DurationWeeks, &p.EndDate, &p.Active, &p.CreatedAt); err != nil {
		return Promo{}, err
	}
	p.VendorIDs = make([]uuid.UUID, 0, len(vendors))
	for _, s := range vendors {
		id, err := uuid.Parse(s)
		if err != nil {
			return Promo{}, err
		}
		p.VendorIDs = append(p.VendorIDs, id)
	}
	return p, nil
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
