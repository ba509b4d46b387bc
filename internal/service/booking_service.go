package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/automatenwerk/stockpilot/internal/cache"
	"github.com/automatenwerk/stockpilot/internal/domain"
	"github.com/automatenwerk/stockpilot/internal/repository"
)

// BookingService moves stock in and out and reports the booking history.
type BookingService struct {
	bookings repository.BookingRepository
	cache    cache.ReorderCache
	now      func() time.Time
}

func NewBookingService(bookings repository.BookingRepository, cacheImpl cache.ReorderCache) *BookingService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopReorderCache()
	}
	return &BookingService{bookings: bookings, cache: cacheImpl, now: time.Now}
}

// BookingResult is a stored booking plus the article stock after it.
type BookingResult struct {
	Booking domain.Booking `json:"booking"`
	Stock   int            `json:"stock"`
}

// Book records a stock movement. Outgoing movements larger than the stock
// fail with domain.ErrInsufficientStock and change nothing.
func (s *BookingService) Book(ctx context.Context, req domain.BookingRequest) (*BookingResult, error) {
	t, ok := domain.ParseBookingType(string(req.Type))
	if !ok {
		return nil, domain.ValidationError("unknown booking type " + string(req.Type))
	}
	if req.Quantity <= 0 {
		return nil, domain.ValidationError("quantity must be positive")
	}

	booking := &domain.Booking{
		ArticleID: req.ArticleID,
		Type:      t,
		Quantity:  req.Quantity,
		User:      strings.TrimSpace(req.User),
		BookedAt:  s.now(),
	}

	stock, err := s.bookings.Apply(ctx, booking)
	if err != nil {
		return nil, err
	}

	log.Info().
		Int64("article_id", booking.ArticleID).
		Str("type", string(booking.Type)).
		Int("quantity", booking.Quantity).
		Int("stock", stock).
		Msg("booking recorded")

	if err := s.cache.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("booking: cache invalidate failed")
	}

	return &BookingResult{Booking: *booking, Stock: stock}, nil
}

func (s *BookingService) History(ctx context.Context, filter domain.BookingFilter) (*domain.ListResponse[domain.Booking], error) {
	return s.bookings.List(ctx, filter)
}

// Chart groups the bookings matching filter per calendar day, oldest first.
// Bookings exactly on the range bounds are left out.
func (s *BookingService) Chart(ctx context.Context, filter domain.BookingFilter) ([]domain.BookingDay, error) {
	filter.Exclusive = true
	rows, err := s.bookings.Range(ctx, filter)
	if err != nil {
		return nil, err
	}
	return groupByDay(rows), nil
}

func groupByDay(rows []domain.Booking) []domain.BookingDay {
	type bucket struct {
		count int
		users map[string]struct{}
	}

	buckets := make(map[string]*bucket)
	for _, b := range rows {
		day := b.BookedAt.Format("2006-01-02")
		bk, ok := buckets[day]
		if !ok {
			bk = &bucket{users: make(map[string]struct{})}
			buckets[day] = bk
		}
		bk.count++
		if b.User != "" {
			bk.users[b.User] = struct{}{}
		}
	}

	days := make([]domain.BookingDay, 0, len(buckets))
	for day, bk := range buckets {
		users := make([]string, 0, len(bk.users))
		for u := range bk.users {
			users = append(users, u)
		}
		sort.Strings(users)
		days = append(days, domain.BookingDay{Date: day, Count: bk.count, Users: users})
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date < days[j].Date })
	return days
}
