package memory

import (
	"context"
	"time"

	"github.com/automatenwerk/stockpilot/internal/domain"
	"github.com/automatenwerk/stockpilot/internal/repository"
)

// SalesRepository provides in-memory daily sales
type SalesRepository struct {
	s *Store
}

var _ repository.SalesRepository = (*SalesRepository)(nil)

func (r *SalesRepository) Upsert(ctx context.Context, rows []domain.DailySales) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, row := range rows {
		days, ok := r.s.sales[row.ArticleID]
		if !ok {
			days = make(map[time.Time]float64)
			r.s.sales[row.ArticleID] = days
		}
		days[repository.Day(row.Date)] = row.Quantity
	}
	return nil
}

func (r *SalesRepository) Window(ctx context.Context, articleIDs []int64, asOf time.Time, days int) (map[int64][]float64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	end := repository.Day(asOf)
	out := make(map[int64][]float64, len(articleIDs))
	for _, id := range articleIDs {
		window := make([]float64, days)
		if sold, ok := r.s.sales[id]; ok {
			for i := range window {
				window[i] = sold[end.AddDate(0, 0, -i)]
			}
		}
		out[id] = window
	}
	return out, nil
}
