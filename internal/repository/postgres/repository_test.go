package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/automatenwerk/stockpilot/internal/domain"
)

// openTestDB connects to TEST_DATABASE_URL and starts from empty tables.
func openTestDB(t *testing.T) *DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := Open(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	require.NoError(t, db.Migrate(ctx))
	_, err = db.ExecContext(ctx, `TRUNCATE daily_sales, bookings, articles, suppliers RESTART IDENTITY CASCADE`)
	require.NoError(t, err)

	return db
}

func TestCatalogRoundTrip(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repos := db.Repositories()

	sup := &domain.Supplier{Name: "CocaCola GmbH", LeadTimeDays: 4, DeliveryDays: []string{"Dienstag"}}
	require.NoError(t, repos.Suppliers.Save(ctx, sup))
	require.NotZero(t, sup.ID)

	gotSup, err := repos.Suppliers.Get(ctx, sup.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Dienstag"}, gotSup.DeliveryDays)
	assert.Equal(t, []string{}, gotSup.OrderDays)

	a := &domain.Article{
		Name: "Coca Cola 0.5L", EAN: "1234567890123", Stock: 50, SupplierID: sup.ID,
		NetPurchasePrice: decimal.RequireFromString("0.50"), Deposit: decimal.RequireFromString("0.25"),
		TaxRate: decimal.NewFromInt(19), SupplierArticleNo: "CC-0500", Link: "https://www.coca-cola.de",
	}
	require.NoError(t, repos.Articles.Save(ctx, a))

	a.Link = "https://shop.example.com/cola"
	require.NoError(t, repos.Articles.Save(ctx, a))
	gotArticle, err := repos.Articles.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "CC-0500", gotArticle.SupplierArticleNo)
	assert.Equal(t, "https://shop.example.com/cola", gotArticle.Link)

	res, err := repos.Articles.List(ctx, domain.ListFilter{Search: "cola"})
	require.NoError(t, err)
	require.Equal(t, 1, res.Total)
	assert.True(t, res.Items[0].NetPurchasePrice.Equal(decimal.RequireFromString("0.5")))

	n, err := repos.Articles.CountBySupplier(ctx, sup.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = repos.Articles.Get(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBookingAndSalesWindow(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repos := db.Repositories()

	a := &domain.Article{Name: "Fanta Orange 1L", Stock: 10}
	require.NoError(t, repos.Articles.Save(ctx, a))

	asOf := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repos.Sales.Upsert(ctx, []domain.DailySales{
		{ArticleID: a.ID, Date: asOf, Quantity: 3},
		{ArticleID: a.ID, Date: asOf.AddDate(0, 0, -2), Quantity: 5},
	}))

	stock, err := repos.Bookings.Apply(ctx, &domain.Booking{ArticleID: a.ID, Type: domain.BookingOut, Quantity: 4, BookedAt: asOf})
	require.NoError(t, err)
	assert.Equal(t, 6, stock)

	_, err = repos.Bookings.Apply(ctx, &domain.Booking{ArticleID: a.ID, Type: domain.BookingOut, Quantity: 7, BookedAt: asOf})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	window, err := repos.Sales.Window(ctx, []int64{a.ID}, asOf, 4)
	require.NoError(t, err)
	assert.Equal(t, []float64{7, 0, 5, 0}, window[a.ID])

	list, err := repos.Bookings.List(ctx, domain.BookingFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, list.Total)
	assert.Equal(t, "Fanta Orange 1L", list.Items[0].ArticleName)
}

func TestBuildBookingFilterBounds(t *testing.T) {
	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	b := buildBookingFilter(domain.BookingFilter{ArticleID: 1, From: &from, To: &to})
	assert.Equal(t, " WHERE article_id = $1 AND booked_at >= $2 AND booked_at <= $3", b.where())
	assert.Len(t, b.args, 3)

	b = buildBookingFilter(domain.BookingFilter{From: &from, To: &to, Exclusive: true})
	assert.Equal(t, " WHERE booked_at > $1 AND booked_at < $2", b.where())
}
