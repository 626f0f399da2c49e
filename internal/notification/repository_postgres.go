package notification

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/wichananm65/campus-market-backend/internal/apperr"
	"github.com/wichananm65/campus-market-backend/internal/database"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const (
	insertNotificationQuery = `
		INSERT INTO notifications (id, message, target, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	deleteNotificationQuery = `DELETE FROM notifications WHERE id = $1`
	listNotificationsQuery  = `
		SELECT n.id, n.message, n.target, n.created_at, n.expires_at,
			COALESCE(array_agg(r.user_id::text) FILTER (WHERE r.user_id IS NOT NULL), '{}')
		FROM notifications n
		LEFT JOIN notification_reads r ON r.notification_id = n.id
		WHERE n.target = ANY($1::text[]) AND n.expires_at > $2
		GROUP BY n.id
		ORDER BY n.created_at DESC
	`
	markReadQuery = `
		INSERT INTO notification_reads (notification_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (notification_id, user_id) DO NOTHING
	`
	purgeExpiredQuery = `DELETE FROM notifications WHERE expires_at <= $1`
)

func (r *PostgresRepository) Create(ctx context.Context, n Notification) (Notification, error) {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if _, err := r.db.ExecContext(ctx, insertNotificationQuery, n.ID, n.Message, string(n.Target), n.CreatedAt, n.ExpiresAt); err != nil {
		return Notification{}, apperr.Store(err, "insert notification")
	}
	n.ReadBy = []uuid.UUID{}
	return n, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, deleteNotificationQuery, id)
	if err != nil {
		return apperr.Store(err, "delete notification")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) List(ctx context.Context, targets []Target, now time.Time) ([]Notification, error) {
	names := make([]string, len(targets))
	for i, t := range targets {
		names[i] = string(t)
	}

	rows, err := r.db.QueryContext(ctx, listNotificationsQuery, pq.Array(names), now)
	if err != nil {
		return nil, apperr.Store(err, "list notifications")
	}
	defer rows.Close()

	out := make([]Notification, 0)
	for rows.Next() {
		var (
			n      Notification
			target string
			readBy pq.StringArray
		)
		if err := rows.Scan(&n.ID, &n.Message, &target, &n.CreatedAt, &n.ExpiresAt, &readBy); err != nil {
			return nil, apperr.Store(err, "scan notification")
		}
		n.Target = Target(target)
		n.ReadBy = make([]uuid.UUID, 0, len(readBy))
		for _, s := range readBy {
			id, err := uuid.Parse(s)
			if err != nil {
				return nil, apperr.Store(err, "scan notification reader")
			}
			n.ReadBy = append(n.ReadBy, id)
		}
		out = append(out, n)
	}
	return out, apperr.Store(rows.Err(), "list notifications")
}

func (r *PostgresRepository) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, markReadQuery, id, userID)
	if database.IsForeignKeyViolation(err) {
		return ErrNotFound
	}
	return apperr.Store(err, "mark notification read")
}

func (r *PostgresRepository) PurgeExpired(ctx context.Context, now time.Time) (int, error) {
	res, err := r.db.ExecContext(ctx, purgeExpiredQuery, now)
	if err != nil {
		return 0, apperr.Store(err, "purge notifications")
	}
	n, err := res.RowsAffected()
	return int(n), apperr.Store(err, "purge notifications")
}
