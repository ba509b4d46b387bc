package memory

import (
	"sync"
	"time"

	"github.com/automatenwerk/stockpilot/internal/domain"
	"github.com/automatenwerk/stockpilot/internal/repository"
)

// Store keeps every collection in process memory behind one lock, so a
// booking can move stock, append history and record a sale atomically.
type Store struct {
	mu        sync.RWMutex
	articles  map[int64]domain.Article
	suppliers map[int64]domain.Supplier
	bookings  []domain.Booking
	sales     map[int64]map[time.Time]float64
	now       func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		articles:  make(map[int64]domain.Article),
		suppliers: make(map[int64]domain.Supplier),
		sales:     make(map[int64]map[time.Time]float64),
		now:       time.Now,
	}
}

// Repositories exposes the store through the repository interfaces.
func (s *Store) Repositories() repository.Repositories {
	return repository.Repositories{
		Articles:  &ArticleRepository{s: s},
		Suppliers: &SupplierRepository{s: s},
		Bookings:  &BookingRepository{s: s},
		Sales:     &SalesRepository{s: s},
	}
}

// SetClock replaces the time source used for timestamps.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func nextID[T any](m map[int64]T) int64 {
	var max int64
	for id := range m {
		if id > max {
			max = id
		}
	}
	return max + 1
}

func (s *Store) addSaleLocked(articleID int64, day time.Time, qty float64) {
	days, ok := s.sales[articleID]
	if !ok {
		days = make(map[time.Time]float64)
		s.sales[articleID] = days
	}
	days[repository.Day(day)] += qty
}
