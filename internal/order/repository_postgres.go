package order

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

type rowScanner interface {
	Scan(dest ...any) error
}

const orderColumns = `o.id, o.buyer_id, o.total, o.payment_method, o.momo_number, o.fulfillment_type,
	o.buyer_phone, o.buyer_location, o.status, o.version, o.created_at, o.updated_at`

const itemColumns = `i.order_id, i.id, i.product_id, i.vendor_id, i.quantity, i.unit_price, i.status`

const (
	insertOrderQuery = `
		INSERT INTO orders (id, buyer_id, total, payment_method, momo_number, fulfillment_type,
			buyer_phone, buyer_location, status, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at
	`
	insertItemQuery = `
		INSERT INTO order_items (id, order_id, position, product_id, vendor_id, quantity, unit_price, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	getOrderQuery     = `SELECT ` + orderColumns + ` FROM orders o WHERE o.id = $1`
	lockOrderQuery    = `SELECT ` + orderColumns + ` FROM orders o WHERE o.id = $1 FOR UPDATE`
	listByBuyerQuery  = `SELECT ` + orderColumns + ` FROM orders o WHERE o.buyer_id = $1 ORDER BY o.created_at DESC`
	listByVendorQuery = `
		SELECT ` + orderColumns + `
		FROM orders o
		WHERE o.id IN (SELECT order_id FROM order_items WHERE vendor_id = $1)
		ORDER BY o.created_at DESC
	`
	itemsByOrdersQuery = `
		SELECT ` + itemColumns + `
		FROM order_items i
		WHERE i.order_id = ANY($1::uuid[])
		ORDER BY i.order_id, i.position
	`

	updateItemStatusQuery = `UPDATE order_items SET status = $3 WHERE order_id = $1 AND id = $2`
	updateOrderQuery      = `
		UPDATE orders
		SET status = $2, version = version + 1, updated_at = now()
		WHERE id = $1
		RETURNING version, updated_at
	`
	countByStatusQuery = `SELECT status, COUNT(*) FROM orders GROUP BY status`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts the order and all of its items in one transaction.
func (r *PostgresRepository) Create(ctx context.Context, ord Order) (created Order, err error) {
	if len(ord.Items) == 0 {
		return Order{}, ErrEmptyOrder
	}
	if ord.Version == 0 {
		ord.Version = 1
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return Order{}, apperr.Store(err, "begin order insert")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	err = tx.QueryRowContext(ctx, insertOrderQuery,
		ord.ID, ord.BuyerID, ord.Total, string(ord.PaymentMethod), ord.MomoNumber, string(ord.FulfillmentType),
		ord.BuyerPhone, ord.BuyerLocation, string(ord.Status), ord.Version,
	).Scan(&ord.CreatedAt, &ord.UpdatedAt)
	if err != nil {
		return Order{}, apperr.Store(err, "insert order")
	}

	for pos, it := range ord.Items {
		if _, err = tx.ExecContext(ctx, insertItemQuery,
			it.ID, ord.ID, pos, it.ProductID, it.VendorID, it.Quantity, it.UnitPrice, string(it.Status),
		); err != nil {
			return Order{}, apperr.Store(err, "insert order item")
		}
	}

	if err = tx.Commit(); err != nil {
		return Order{}, apperr.Store(err, "commit order insert")
	}
	return ord, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (Order, error) {
	ord, err := scanOrder(r.db.QueryRowContext(ctx, getOrderQuery, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Order{}, ErrNotFound
	}
	if err != nil {
		return Order{}, apperr.Store(err, "load order")
	}

	orders := []Order{ord}
	if err := attachItems(ctx, r.db, orders); err != nil {
		return Order{}, err
	}
	return orders[0], nil
}

func (r *PostgresRepository) ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]Order, error) {
	return r.list(ctx, listByBuyerQuery, buyerID)
}

func (r *PostgresRepository) ListByVendor(ctx context.Context, vendorID uuid.UUID) ([]Order, error) {
	return r.list(ctx, listByVendorQuery, vendorID)
}

func (r *PostgresRepository) list(ctx context.Context, query string, arg any) ([]Order, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, apperr.Store(err, "list orders")
	}
	defer rows.Close()

	orders := make([]Order, 0)
	for rows.Next() {
		ord, err := scanOrder(rows)
		if err != nil {
			return nil, apperr.Store(err, "scan order")
		}
		orders = append(orders, ord)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Store(err, "list orders")
	}

	if err := attachItems(ctx, r.db, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// UpdateItem locks the order row with SELECT ... FOR UPDATE, so concurrent
// updates to the same order queue behind each other and each one sees the
// item statuses committed before it. Only the targeted item's status and the
// order's derived fields are written back.
func (r *PostgresRepository) UpdateItem(ctx context.Context, orderID, itemID uuid.UUID, mutate ItemMutation) (updated Order, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return Order{}, apperr.Store(err, "begin item update")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	ord, err := scanOrder(tx.QueryRowContext(ctx, lockOrderQuery, orderID))
	if errors.Is(err, sql.ErrNoRows) {
		return Order{}, ErrNotFound
	}
	if err != nil {
		return Order{}, apperr.Store(err, "lock order")
	}

	orders := []Order{ord}
	if err = attachItems(ctx, tx, orders); err != nil {
		return Order{}, err
	}
	ord = orders[0]

	item, ok := ord.item(itemID)
	if !ok {
		return Order{}, ErrItemNotFound
	}
	if err = mutate(&ord, item); err != nil {
		return Order{}, err
	}
	ord.Status = AggregateStatus(ord.Items)

	if _, err = tx.ExecContext(ctx, updateItemStatusQuery, orderID, itemID, string(item.Status)); err != nil {
		return Order{}, apperr.Store(err, "update order item")
	}
	if err = tx.QueryRowContext(ctx, updateOrderQuery, orderID, string(ord.Status)).Scan(&ord.Version, &ord.UpdatedAt); err != nil {
		return Order{}, apperr.Store(err, "update order")
	}
	if err = tx.Commit(); err != nil {
		return Order{}, apperr.Store(err, "commit item update")
	}
	return ord, nil
}

func (r *PostgresRepository) CountByStatus(ctx context.Context) (map[Status]int, error) {
	rows, err := r.db.QueryContext(ctx, countByStatusQuery)
	if err != nil {
		return nil, apperr.Store(err, "count orders")
	}
	defer rows.Close()

	counts := map[Status]int{}
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, apperr.Store(err, "count orders")
		}
		counts[Status(status)] = n
	}
	return counts, apperr.Store(rows.Err(), "count orders")
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// attachItems loads the items of every order in one query.
func attachItems(ctx context.Context, q querier, orders []Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]string, len(orders))
	index := make(map[uuid.UUID]int, len(orders))
	for i, o := range orders {
		ids[i] = o.ID.String()
		index[o.ID] = i
		orders[i].Items = make([]Item, 0)
	}

	rows, err := q.QueryContext(ctx, itemsByOrdersQuery, pq.Array(ids))
	if err != nil {
		return apperr.Store(err, "load order items")
	}
	defer rows.Close()

	for rows.Next() {
		var (
			orderID uuid.UUID
			it      Item
			status  string
		)
		if err := rows.Scan(&orderID, &it.ID, &it.ProductID, &it.VendorID, &it.Quantity, &it.UnitPrice, &status); err != nil {
			return apperr.Store(err, "scan order item")
		}
		it.Status = ItemStatus(status)
		if i, ok := index[orderID]; ok {
			orders[i].Items = append(orders[i].Items, it)
		}
	}
	return apperr.Store(rows.Err(), "load order items")
}

func scanOrder(scanner rowScanner) (Order, error) {
	var o Order
	var payment, fulfillment, status string
	if err := scanner.Scan(
		&o.ID,
		&o.BuyerID,
		&o.Total,
		&payment,
		&o.MomoNumber,
		&fulfillment,
		&o.BuyerPhone,
		&o.BuyerLocation,
		&status,
		&o.Version,
		&o.CreatedAt,
		&o.UpdatedAt,
	); err != nil {
		return Order{}, err
	}
	o.PaymentMethod = PaymentMethod(payment)
	o.FulfillmentType = FulfillmentType(fulfillment)
	o.Status = Status(status)
	return o, nil
}
