// internal/repository/repository.go
package repository

import (
	"context"
	"time"

	"github.com/automatenwerk/stockpilot/internal/domain"
)

type ArticleRepository interface {
	List(ctx context.Context, filter domain.ListFilter) (*domain.ListResponse[domain.Article], error)
	All(ctx context.Context) ([]domain.Article, error)
	Get(ctx context.Context, id int64) (*domain.Article, error)
	GetByEAN(ctx context.Context, ean string) (*domain.Article, error)
	// Save inserts the article when ID is 0 and updates it otherwise.
	Save(ctx context.Context, article *domain.Article) error
	Delete(ctx context.Context, id int64) error
	CountBySupplier(ctx context.Context, supplierID int64) (int, error)
}

type SupplierRepository interface {
	List(ctx context.Context, filter domain.ListFilter) (*domain.ListResponse[domain.Supplier], error)
	All(ctx context.Context) ([]domain.Supplier, error)
	Get(ctx context.Context, id int64) (*domain.Supplier, error)
	Save(ctx context.Context, supplier *domain.Supplier) error
	Delete(ctx context.Context, id int64) error
}

type BookingRepository interface {
	// Apply records the booking and moves the article stock in one step.
	// Outgoing bookings are also added to the article's daily sales.
	// It returns the new stock, or domain.ErrInsufficientStock when an
	// outgoing booking exceeds the stock.
	Apply(ctx context.Context, booking *domain.Booking) (int, error)
	List(ctx context.Context, filter domain.BookingFilter) (*domain.ListResponse[domain.Booking], error)
	// Range returns every booking matching the filter, oldest first, unpaged.
	Range(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, error)
}

type SalesRepository interface {
	// Upsert replaces the quantity of each (article, day).
	Upsert(ctx context.Context, rows []domain.DailySales) error
	// Window returns, per article, the daily quantities of the days-long
	// window ending at asOf, most recent day first. Days without sales are 0.
	Window(ctx context.Context, articleIDs []int64, asOf time.Time, days int) (map[int64][]float64, error)
}

// Repositories bundles the four stores the services need.
type Repositories struct {
	Articles  ArticleRepository
	Suppliers SupplierRepository
	Bookings  BookingRepository
	Sales     SalesRepository
}

// Day truncates t to midnight UTC, the key of daily sales.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
