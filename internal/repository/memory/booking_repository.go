package memory

import (
	"context"
	"fmt"

	"github.com/automatenwerk/stockpilot/internal/domain"
	"github.com/automatenwerk/stockpilot/internal/repository"
	"github.com/automatenwerk/stockpilot/internal/tablestate"
)

// BookingRepository provides in-memory booking history
type BookingRepository struct {
	s *Store
}

var _ repository.BookingRepository = (*BookingRepository)(nil)

var bookingColumns = tablestate.Columns[domain.Booking]{
	"booked_at":    func(a, b domain.Booking) bool { return a.BookedAt.Before(b.BookedAt) },
	"article_name": func(a, b domain.Booking) bool { return a.ArticleName < b.ArticleName },
	"quantity":     func(a, b domain.Booking) bool { return a.Quantity < b.Quantity },
	"type":         func(a, b domain.Booking) bool { return a.Type < b.Type },
	"user":         func(a, b domain.Booking) bool { return a.User < b.User },
}

func (r *BookingRepository) Apply(ctx context.Context, booking *domain.Booking) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	article, ok := r.s.articles[booking.ArticleID]
	if !ok {
		return 0, domain.NotFoundError("article", booking.ArticleID)
	}

	switch booking.Type {
	case domain.BookingIn:
		article.Stock += booking.Quantity
	case domain.BookingOut:
		if booking.Quantity > article.Stock {
			return article.Stock, fmt.Errorf("%w: %d requested, %d available",
				domain.ErrInsufficientStock, booking.Quantity, article.Stock)
		}
		article.Stock -= booking.Quantity
	default:
		return article.Stock, domain.ValidationError("unknown booking type " + string(booking.Type))
	}

	if booking.BookedAt.IsZero() {
		booking.BookedAt = r.s.now()
	}
	booking.ID = int64(len(r.s.bookings) + 1)
	booking.ArticleName = article.Name
	article.UpdatedAt = booking.BookedAt

	r.s.articles[article.ID] = article
	r.s.bookings = append(r.s.bookings, *booking)
	if booking.Type == domain.BookingOut {
		r.s.addSaleLocked(article.ID, booking.BookedAt, float64(booking.Quantity))
	}

	return article.Stock, nil
}

func (r *BookingRepository) List(ctx context.Context, filter domain.BookingFilter) (*domain.ListResponse[domain.Booking], error) {
	r.s.mu.RLock()
	rows := append([]domain.Booking(nil), r.s.bookings...)
	r.s.mu.RUnlock()

	dir := tablestate.Desc
	if filter.SortDir != "" {
		dir = tablestate.ParseSortDir(filter.SortDir)
	}

	page := tablestate.Apply(rows, tablestate.Query[domain.Booking]{
		Filter:   filter.Matches,
		SortKey:  filter.SortField,
		SortDir:  dir,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}, bookingColumns, "booked_at")

	return toListResponse(page), nil
}

func (r *BookingRepository) Range(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []domain.Booking
	for _, b := range r.s.bookings {
		if filter.Matches(b) {
			out = append(out, b)
		}
	}
	return out, nil
}
