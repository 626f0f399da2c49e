package product

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
)

var productRowColumns = []string{"id", "vendor_id", "school", "title", "price", "old_price", "category", "image", "description", "status", "created_at", "updated_at"}

func TestListFilterBuildsQuery(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	vendor := uuid.New()
	now := time.Now()
	rows := sqlmock.NewRows(productRowColumns).
		AddRow(uuid.NewString(), vendor.String(), "ug", "Mouse", 25.5, nil, "electronics", "img", "", "active", now, now).
		AddRow(uuid.NewString(), vendor.String(), "ug", "Headset", 80.0, 100.0, "electronics", "img", "", "hidden", now, now)
	mock.ExpectQuery(`FROM products WHERE lower\(category\) = lower\(\$1\) AND vendor_id = \$2 ORDER BY created_at DESC`).
		WithArgs("Electronics", vendor).
		WillReturnRows(rows)

	products, err := repo.List(context.Background(), Filter{Category: "Electronics", VendorID: vendor, IncludeHidden: true})
	if err != nil {
		t.Fatalf("expected nil err, got %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(products))
	}
	if products[0].OldPrice != nil {
		t.Fatalf("expected nil old price, got %v", *products[0].OldPrice)
	}
	if products[1].OldPrice == nil || *products[1].OldPrice != 100 {
		t.Fatalf("unexpected old price %+v", products[1].OldPrice)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestListHidesHiddenByDefault(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock error: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectQuery(`FROM products WHERE status <> 'hidden' ORDER BY created_at DESC`).
		WillReturnRows(sqlmock.NewRows(productRowColumns))

	products, err := repo.List(context.Background(), Filter{})
	if err != nil {
		t.Fatalf("expected nil err, got %v", err)
	}
	if len(products) != 0 {
		t.Fatalf("expected no products, got %d", len(products))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock error: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	id := uuid.New()
	mock.ExpectQuery("FROM products WHERE id = \\$1").WithArgs(id).WillReturnRows(sqlmock.NewRows(productRowColumns))

	if _, err := repo.GetByID(context.Background(), id); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
