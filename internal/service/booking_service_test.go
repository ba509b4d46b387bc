package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/automatenwerk/stockpilot/internal/domain"
)

func TestBookIn(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.bookings.Book(ctx, domain.BookingRequest{ArticleID: 2, Type: "Einbuchen", Quantity: 12, User: " anna "})
	require.NoError(t, err)
	assert.Equal(t, 42, res.Stock)
	assert.Equal(t, domain.BookingIn, res.Booking.Type)
	assert.Equal(t, "anna", res.Booking.User)
	assert.Equal(t, asOf, res.Booking.BookedAt)
	assert.Equal(t, 1, f.cache.invalidations)
}

func TestBookOutRejectsOverdraw(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.bookings.Book(ctx, domain.BookingRequest{ArticleID: 3, Type: domain.BookingOut, Quantity: 21})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 0, f.cache.invalidations)

	a, err := f.repos.Articles.Get(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 20, a.Stock)

	res, err := f.bookings.Book(ctx, domain.BookingRequest{ArticleID: 3, Type: domain.BookingOut, Quantity: 20})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Stock)
}

func TestBookValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.bookings.Book(ctx, domain.BookingRequest{ArticleID: 1, Type: "sideways", Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.bookings.Book(ctx, domain.BookingRequest{ArticleID: 1, Type: domain.BookingIn, Quantity: 0})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.bookings.Book(ctx, domain.BookingRequest{ArticleID: 404, Type: domain.BookingIn, Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestHistoryAndChart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	book := func(at time.Time, user string, typ domain.BookingType) {
		f.bookings.now = func() time.Time { return at }
		_, err := f.bookings.Book(ctx, domain.BookingRequest{ArticleID: 1, Type: typ, Quantity: 1, User: user})
		require.NoError(t, err)
	}
	day1 := asOf.AddDate(0, 0, -1)
	book(day1, "anna", domain.BookingIn)
	book(day1.Add(time.Hour), "ben", domain.BookingOut)
	book(day1.Add(2*time.Hour), "anna", domain.BookingOut)
	book(asOf, "", domain.BookingIn)

	history, err := f.bookings.History(ctx, domain.BookingFilter{Type: "out"})
	require.NoError(t, err)
	assert.Equal(t, 2, history.Total)

	history, err = f.bookings.History(ctx, domain.BookingFilter{From: &day1, To: &asOf})
	require.NoError(t, err)
	assert.Equal(t, 4, history.Total, "history includes bookings on both bounds")

	days, err := f.bookings.Chart(ctx, domain.BookingFilter{})
	require.NoError(t, err)
	require.Len(t, days, 2)
	assert.Equal(t, domain.BookingDay{Date: "2024-03-14", Count: 3, Users: []string{"anna", "ben"}}, days[0])
	assert.Equal(t, domain.BookingDay{Date: "2024-03-15", Count: 1, Users: []string{}}, days[1])

	from := day1.Add(30 * time.Minute)
	days, err = f.bookings.Chart(ctx, domain.BookingFilter{From: &from, To: &asOf})
	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.Equal(t, 2, days[0].Count)

	days, err = f.bookings.Chart(ctx, domain.BookingFilter{From: &day1, To: &asOf})
	require.NoError(t, err)
	require.Len(t, days, 1, "chart leaves out bookings on the bounds")
	assert.Equal(t, domain.BookingDay{Date: "2024-03-14", Count: 2, Users: []string{"anna", "ben"}}, days[0])
}
