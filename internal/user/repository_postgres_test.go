package user

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wichananm65/campus-market-backend/internal/apperr"
	"github.com/wichananm65/campus-market-backend/internal/auth"
)

var userRowColumns = []string{"id", "username", "email", "password", "role", "verified", "phone", "location", "refresh_token", "created_at", "updated_at"}

func TestPostgresGetByEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPostgresRepository(db)

	id := uuid.New()
	now := time.Now()
	mock.ExpectQuery("FROM users WHERE email = \\$1").
		WithArgs("kwame@campus.edu").
		WillReturnRows(sqlmock.NewRows(userRowColumns).
			AddRow(id.String(), "kwame", "kwame@campus.edu", "hash", "vendor", true, "024", "Hall 1", "", now, now))

	u, err := repo.GetByEmail(context.Background(), "Kwame@Campus.edu")
	require.NoError(t, err)
	assert.Equal(t, id, u.ID)
	assert.Equal(t, auth.RoleVendor, u.Role)
	assert.True(t, u.Verified)

	mock.ExpectQuery("FROM users WHERE id = \\$1").
		WillReturnRows(sqlmock.NewRows(userRowColumns))
	_, err = repo.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCreateDuplicateEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectQuery("INSERT INTO users").
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value"})

	_, err = repo.Create(context.Background(), User{Username: "a", Email: "a@campus.edu", Password: "h", Role: auth.RoleCustomer})
	assert.ErrorIs(t, err, apperr.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCountByRole(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectQuery("GROUP BY role").
		WillReturnRows(sqlmock.NewRows([]string{"role", "count"}).
			AddRow("customer", 12).
			AddRow("vendor", 3))

	counts, err := repo.CountByRole(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 12, counts[auth.RoleCustomer])
	assert.Equal(t, 3, counts[auth.RoleVendor])
	assert.Equal(t, 0, counts[auth.RoleAdmin])
	assert.NoError(t, mock.ExpectationsWereMet())
}
