package user

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/wichananm65/campus-market-backend/internal/apperr"
	"github.com/wichananm65/campus-market-backend/internal/auth"
	"github.com/wichananm65/campus-market-backend/internal/database"
)

type PostgresRepository struct {
	db *sql.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

const userColumns = `id, username, email, password, role, verified, phone, location, refresh_token, created_at, updated_at`

const (
	getUserByIDQuery    = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	getUserByEmailQuery = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	listUsersQuery      = `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC`
	listByRoleQuery     = `SELECT ` + userColumns + ` FROM users WHERE role = $1 ORDER BY created_at DESC`
	countByRoleQuery    = `SELECT role, COUNT(*) FROM users GROUP BY role`

	insertUserQuery = `
		INSERT INTO users (id, username, email, password, role, verified, phone, location)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`
	updateUserQuery = `
		UPDATE users
		SET username = $2,
			phone = $3,
			location = $4,
			role = $5,
			verified = $6,
			password = COALESCE(NULLIF($7, ''), password),
			updated_at = now()
		WHERE id = $1
		RETURNING ` + userColumns
	setRefreshTokenQuery = `UPDATE users SET refresh_token = $2 WHERE id = $1`
	deleteUserQuery      = `DELETE FROM users WHERE id = $1`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (User, error) {
	return r.getOne(ctx, getUserByIDQuery, id)
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (User, error) {
	return r.getOne(ctx, getUserByEmailQuery, strings.ToLower(email))
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, apperr.Store(err, "load user")
	}
	return u, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]User, error) {
	return r.list(ctx, listUsersQuery)
}

func (r *PostgresRepository) ListByRole(ctx context.Context, role auth.Role) ([]User, error) {
	return r.list(ctx, listByRoleQuery, string(role))
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]User, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperr.Store(err, "list users")
	}
	defer rows.Close()

	users := make([]User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, apperr.Store(err, "scan user")
		}
		users = append(users, u)
	}
	return users, apperr.Store(rows.Err(), "list users")
}

func (r *PostgresRepository) CountByRole(ctx context.Context) (map[auth.Role]int, error) {
	rows, err := r.db.QueryContext(ctx, countByRoleQuery)
	if err != nil {
		return nil, apperr.Store(err, "count users")
	}
	defer rows.Close()

	counts := map[auth.Role]int{}
	for rows.Next() {
		var role string
		var n int
		if err := rows.Scan(&role, &n); err != nil {
			return nil, apperr.Store(err, "count users")
		}
		counts[auth.Role(role)] = n
	}
	return counts, apperr.Store(rows.Err(), "count users")
}

func (r *PostgresRepository) Create(ctx context.Context, u User) (User, error) {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.Email = strings.ToLower(u.Email)

	err := r.db.QueryRowContext(ctx, insertUserQuery,
		u.ID, u.Username, u.Email, u.Password, string(u.Role), u.Verified, u.Phone, u.Location,
	).Scan(&u.CreatedAt, &u.UpdatedAt)
	if database.IsUniqueViolation(err) {
		return User{}, ErrEmailExists
	}
	if err != nil {
		return User{}, apperr.Store(err, "insert user")
	}
	return u, nil
}

func (r *PostgresRepository) Update(ctx context.Context, u User) (User, error) {
	updated, err := scanUser(r.db.QueryRowContext(ctx, updateUserQuery,
		u.ID, u.Username, u.Phone, u.Location, string(u.Role), u.Verified, u.Password,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, apperr.Store(err, "update user")
	}
	return updated, nil
}

func (r *PostgresRepository) SetRefreshToken(ctx context.Context, id uuid.UUID, token string) error {
	return r.execOne(ctx, setRefreshTokenQuery, id, token)
}

// Delete refuses to remove a buyer who still has orders.
func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	err := r.execOne(ctx, deleteUserQuery, id)
	if database.IsForeignKeyViolation(err) {
		return ErrHasOrders
	}
	return err
}

func (r *PostgresRepository) execOne(ctx context.Context, query string, args ...any) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return apperr.Store(err, "write user")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return apperr.Store(err, "write user")
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func scanUser(scanner rowScanner) (User, error) {
	var u User
	var role string
	if err := scanner.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.Password,
		&role,
		&u.Verified,
		&u.Phone,
		&u.Location,
		&u.RefreshToken,
		&u.CreatedAt,
		&u.UpdatedAt,
	); err != nil {
		return User{}, err
	}
	u.Role = auth.Role(role)
	return u, nil
}
