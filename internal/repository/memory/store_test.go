package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/automatenwerk/stockpilot/internal/domain"
)

var asOf = time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

func newRepos(t *testing.T) (*Store, context.Context) {
	t.Helper()
	s := NewSampleStore(asOf)
	s.SetClock(func() time.Time { return asOf })
	return s, context.Background()
}

func TestArticleRepositoryCRUD(t *testing.T) {
	s, ctx := newRepos(t)
	repo := s.Repositories().Articles

	a := &domain.Article{Name: "Mezzo Mix 0.5L", Stock: 12, SupplierID: 1}
	require.NoError(t, repo.Save(ctx, a))
	assert.Equal(t, int64(4), a.ID)
	assert.Equal(t, asOf, a.CreatedAt)

	got, err := repo.Get(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, "Mezzo Mix 0.5L", got.Name)

	got.Stock = 3
	require.NoError(t, repo.Save(ctx, got))
	got, _ = repo.Get(ctx, 4)
	assert.Equal(t, 3, got.Stock)

	n, err := repo.CountBySupplier(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	byEAN, err := repo.GetByEAN(ctx, "5554443332221")
	require.NoError(t, err)
	assert.Equal(t, int64(2), byEAN.ID)

	require.NoError(t, repo.Delete(ctx, 4))
	_, err = repo.Get(ctx, 4)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, 4), domain.ErrNotFound)
	assert.ErrorIs(t, repo.Save(ctx, &domain.Article{ID: 99, Name: "x"}), domain.ErrNotFound)
}

func TestArticleRepositoryList(t *testing.T) {
	s, ctx := newRepos(t)
	repo := s.Repositories().Articles

	res, err := repo.List(ctx, domain.ListFilter{Search: "cola"})
	require.NoError(t, err)
	require.Equal(t, 1, res.Total)
	assert.Equal(t, "Coca Cola 0.5L", res.Items[0].Name)

	res, err = repo.List(ctx, domain.ListFilter{SortField: "stock", SortDir: "desc"})
	require.NoError(t, err)
	require.Len(t, res.Items, 3)
	assert.Equal(t, []int{50, 30, 20}, []int{res.Items[0].Stock, res.Items[1].Stock, res.Items[2].Stock})

	res, err = repo.List(ctx, domain.ListFilter{SupplierID: 3})
	require.NoError(t, err)
	require.Equal(t, 1, res.Total)
	assert.Equal(t, int64(3), res.Items[0].ID)

	res, err = repo.List(ctx, domain.ListFilter{Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 2, res.TotalPages)
	assert.Len(t, res.Items, 1)
}

func TestSupplierRepository(t *testing.T) {
	s, ctx := newRepos(t)
	repo := s.Repositories().Suppliers

	all, err := repo.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "CocaCola GmbH", all[0].Name)

	res, err := repo.List(ctx, domain.ListFilter{SortField: "lead_time_days", SortDir: "desc"})
	require.NoError(t, err)
	assert.Equal(t, 5.0, res.Items[0].LeadTimeDays)

	sup := &domain.Supplier{Name: "Getränke Nord", LeadTimeDays: 2}
	require.NoError(t, repo.Save(ctx, sup))
	assert.Equal(t, int64(4), sup.ID)
	require.NoError(t, repo.Delete(ctx, sup.ID))
	_, err = repo.Get(ctx, sup.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBookingRepositoryApply(t *testing.T) {
	s, ctx := newRepos(t)
	repos := s.Repositories()

	stock, err := repos.Bookings.Apply(ctx, &domain.Booking{ArticleID: 1, Type: domain.BookingIn, Quantity: 10, User: "anna"})
	require.NoError(t, err)
	assert.Equal(t, 60, stock)

	out := &domain.Booking{ArticleID: 1, Type: domain.BookingOut, Quantity: 5, User: "ben"}
	stock, err = repos.Bookings.Apply(ctx, out)
	require.NoError(t, err)
	assert.Equal(t, 55, stock)
	assert.Equal(t, "Coca Cola 0.5L", out.ArticleName)
	assert.Equal(t, int64(2), out.ID)

	// outgoing bookings count as sales of the day
	window, err := repos.Sales.Window(ctx, []int64{1}, asOf, 28)
	require.NoError(t, err)
	assert.Equal(t, 25.0, window[1][0])

	stock, err = repos.Bookings.Apply(ctx, &domain.Booking{ArticleID: 1, Type: domain.BookingOut, Quantity: 56})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 55, stock)

	a, _ := repos.Articles.Get(ctx, 1)
	assert.Equal(t, 55, a.Stock)

	_, err = repos.Bookings.Apply(ctx, &domain.Booking{ArticleID: 42, Type: domain.BookingIn, Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBookingRepositoryList(t *testing.T) {
	s, ctx := newRepos(t)
	repos := s.Repositories()

	for i, qty := range []int{3, 1, 2} {
		at := asOf.Add(time.Duration(i) * time.Hour)
		_, err := repos.Bookings.Apply(ctx, &domain.Booking{ArticleID: 2, Type: domain.BookingIn, Quantity: qty, BookedAt: at})
		require.NoError(t, err)
	}

	res, err := repos.Bookings.List(ctx, domain.BookingFilter{})
	require.NoError(t, err)
	require.Len(t, res.Items, 3)
	assert.Equal(t, 2, res.Items[0].Quantity, "newest first by default")

	from := asOf
	res, err = repos.Bookings.List(ctx, domain.BookingFilter{From: &from, SortField: "quantity", SortDir: "asc"})
	require.NoError(t, err)
	require.Len(t, res.Items, 3, "from is inclusive")
	assert.Equal(t, 1, res.Items[0].Quantity)

	res, err = repos.Bookings.List(ctx, domain.BookingFilter{From: &from, Exclusive: true})
	require.NoError(t, err)
	assert.Len(t, res.Items, 2)

	rows, err := repos.Bookings.Range(ctx, domain.BookingFilter{Type: "Einbuchen"})
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestSalesRepositoryWindow(t *testing.T) {
	s, ctx := newRepos(t)
	repo := s.Repositories().Sales

	window, err := repo.Window(ctx, []int64{1, 3, 77}, asOf, 28)
	require.NoError(t, err)
	assert.Equal(t, SampleSales()[1], window[1])
	assert.Equal(t, SampleSales()[3], window[3])
	assert.Equal(t, make([]float64, 28), window[77])

	require.NoError(t, repo.Upsert(ctx, []domain.DailySales{
		{ArticleID: 77, Date: asOf.AddDate(0, 0, -1), Quantity: 4},
		{ArticleID: 1, Date: asOf, Quantity: 2},
	}))
	window, err = repo.Window(ctx, []int64{1, 77}, asOf, 3)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 18, 22}, window[1])
	assert.Equal(t, []float64{0, 4, 0}, window[77])
}
