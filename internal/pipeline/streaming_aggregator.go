package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/automatenwerk/stockpilot/internal/domain"
	"github.com/automatenwerk/stockpilot/internal/repository"
)

type salesKey struct {
	articleID int64
	day       time.Time
}

// StreamingAggregator buffers daily sales from concurrent workers and writes
// them in batches. A later row for the same article and day replaces the
// buffered one, matching the replace semantics of SalesRepository.Upsert.
type StreamingAggregator struct {
	sales     repository.SalesRepository
	batchSize int
	mu        sync.Mutex
	buffer    map[salesKey]float64
	flushed   int
}

// NewStreamingAggregator creates a new streaming aggregator
func NewStreamingAggregator(sales repository.SalesRepository, batchSize int) *StreamingAggregator {
	if batchSize < 1 {
		batchSize = DefaultImportConfig().BatchSize
	}
	return &StreamingAggregator{
		sales:     sales,
		batchSize: batchSize,
		buffer:    make(map[salesKey]float64),
	}
}

// Add buffers rows and flushes once the buffer reaches the batch size.
func (sa *StreamingAggregator) Add(ctx context.Context, rows []domain.DailySales) error {
	sa.mu.Lock()
	defer sa.mu.Unlock()

	for _, r := range rows {
		sa.buffer[salesKey{articleID: r.ArticleID, day: repository.Day(r.Date)}] = r.Quantity
	}

	if len(sa.buffer) >= sa.batchSize {
		return sa.flushLocked(ctx)
	}
	return nil
}

// Finalize flushes any remaining rows and returns the number written overall.
func (sa *StreamingAggregator) Finalize(ctx context.Context) (int, error) {
	sa.mu.Lock()
	defer sa.mu.Unlock()

	if err := sa.flushLocked(ctx); err != nil {
		return sa.flushed, err
	}
	return sa.flushed, nil
}

// flushLocked writes the buffer. Must be called with sa.mu locked.
func (sa *StreamingAggregator) flushLocked(ctx context.Context) error {
	if len(sa.buffer) == 0 {
		return nil
	}

	rows := make([]domain.DailySales, 0, len(sa.buffer))
	for k, qty := range sa.buffer {
		rows = append(rows, domain.DailySales{ArticleID: k.articleID, Date: k.day, Quantity: qty})
	}

	if err := sa.sales.Upsert(ctx, rows); err != nil {
		return fmt.Errorf("failed to write %d sales rows: %w", len(rows), err)
	}

	log.Debug().Int("rows", len(rows)).Msg("sales import: flushed batch")

	sa.flushed += len(rows)
	sa.buffer = make(map[salesKey]float64)
	return nil
}

// Buffered returns the number of rows waiting to be written.
func (sa *StreamingAggregator) Buffered() int {
	sa.mu.Lock()
	defer sa.mu.Unlock()
	return len(sa.buffer)
}
