package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/automatenwerk/stockpilot/internal/domain"
	"github.com/automatenwerk/stockpilot/internal/repository"
)

// Importer loads daily sales files into the sales history.
type Importer struct {
	articles repository.ArticleRepository
	sales    repository.SalesRepository
	config   ImportConfig

	mu       sync.Mutex
	eanCache map[string]int64
	idCache  map[int64]bool
}

// NewImporter creates a new sales importer
func NewImporter(articles repository.ArticleRepository, sales repository.SalesRepository, config ImportConfig) *Importer {
	if config.WorkerCount < 1 {
		config.WorkerCount = 1
	}
	if config.RetryAttempts < 1 {
		config.RetryAttempts = 1
	}
	return &Importer{
		articles: articles,
		sales:    sales,
		config:   config,
	}
}

// ImportFiles processes files concurrently. A file that cannot be read or
// parsed is reported in the run and does not stop the others; only a failure
// to write the sales history aborts the run.
func (im *Importer) ImportFiles(ctx context.Context, files []string) (*ImportRun, error) {
	run := &ImportRun{StartedAt: time.Now()}
	im.resetCaches()

	aggregator := NewStreamingAggregator(im.sales, im.config.BatchSize)

	jobs := make([]*FileJob, len(files))
	for i, f := range files {
		jobs[i] = &FileJob{FilePath: f, Status: FileStatusQueued}
	}
	run.Files = jobs

	log.Info().Int("files", len(files)).Int("workers", im.config.WorkerCount).Msg("sales import: starting")

	if err := im.processFilesParallel(ctx, aggregator, jobs); err != nil {
		run.Status = StatusFailed
		run.CompletedAt = time.Now()
		return run, err
	}

	written, err := aggregator.Finalize(ctx)
	run.CompletedAt = time.Now()
	if err != nil {
		run.Status = StatusFailed
		return run, fmt.Errorf("failed to finalize sales import: %w", err)
	}

	for _, j := range jobs {
		run.Skipped += j.Skipped
	}
	run.TotalRows = written
	run.Status = StatusCompleted
	if failed := len(run.Failed()); failed > 0 {
		run.Status = StatusPartial
		if failed == len(jobs) {
			run.Status = StatusFailed
		}
	}

	log.Info().
		Str("status", string(run.Status)).
		Int("rows", run.TotalRows).
		Int("skipped", run.Skipped).
		Int("failed_files", len(run.Failed())).
		Dur("duration", run.CompletedAt.Sub(run.StartedAt)).
		Msg("sales import: completed")

	return run, nil
}

// errWrite marks errors of the sales history, which abort the whole run.
var errWrite = errors.New("sales history write failed")

// processFilesParallel processes jobs using a worker pool
func (im *Importer) processFilesParallel(ctx context.Context, aggregator *StreamingAggregator, jobs []*FileJob) error {
	jobChan := make(chan *FileJob, len(jobs))
	errChan := make(chan error, im.config.WorkerCount)
	var wg sync.WaitGroup

	for i := 0; i < im.config.WorkerCount; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for job := range jobChan {
				if err := im.processFile(ctx, aggregator, job); err != nil {
					log.Warn().Err(err).Int("worker", workerID).Str("file", job.FilePath).Msg("sales import: file failed")
					if errors.Is(err, errWrite) {
						select {
						case errChan <- err:
						default:
						}
					}
				}
			}
		}(i)
	}

	for _, job := range jobs {
		select {
		case <-ctx.Done():
			close(jobChan)
			wg.Wait()
			return ctx.Err()
		case jobChan <- job:
		}
	}
	close(jobChan)

	wg.Wait()
	close(errChan)

	if err := <-errChan; err != nil {
		return err
	}
	return nil
}

// processFile reads one file with retries and hands its rows to the aggregator.
func (im *Importer) processFile(ctx context.Context, aggregator *StreamingAggregator, job *FileJob) error {
	job.Status = FileStatusProcessing

	var (
		rows    []domain.DailySales
		skipped int
		err     error
	)
	for job.RetryCount = 0; job.RetryCount < im.config.RetryAttempts; job.RetryCount++ {
		rows, skipped, err = im.readFile(ctx, job.FilePath)
		if err == nil || ctx.Err() != nil {
			break
		}
	}
	if err != nil {
		job.Status = FileStatusFailed
		job.ErrorMessage = err.Error()
		return err
	}

	if err := aggregator.Add(ctx, rows); err != nil {
		job.Status = FileStatusFailed
		job.ErrorMessage = err.Error()
		return fmt.Errorf("%w: %v", errWrite, err)
	}

	job.Status = FileStatusCompleted
	job.Rows = len(rows)
	job.Skipped = skipped
	log.Debug().Str("file", job.FilePath).Int("rows", len(rows)).Int("skipped", skipped).Msg("sales import: file done")
	return nil
}

// readFile parses a CSV or XLSX file and resolves its article references.
// Rows for unknown articles are skipped and counted.
func (im *Importer) readFile(ctx context.Context, path string) ([]domain.DailySales, int, error) {
	csvPath := path
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		if err := os.MkdirAll(im.config.TempDir, 0o755); err != nil {
			return nil, 0, fmt.Errorf("failed to create temp dir: %w", err)
		}
		csvPath = filepath.Join(im.config.TempDir, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))+".csv")
		if err := convertSalesXLSX(path, csvPath); err != nil {
			return nil, 0, err
		}
		defer os.Remove(csvPath)
	}

	f, err := os.Open(csvPath)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open %s: %w", csvPath, err)
	}
	defer f.Close()

	records, err := ParseSalesCSV(f)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}

	rows := make([]domain.DailySales, 0, len(records))
	skipped := 0
	for _, rec := range records {
		id, err := im.resolve(ctx, rec)
		if errors.Is(err, domain.ErrNotFound) {
			skipped++
			continue
		}
		if err != nil {
			return nil, 0, err
		}
		rows = append(rows, domain.DailySales{ArticleID: id, Date: rec.Date, Quantity: rec.Quantity})
	}
	return rows, skipped, nil
}

// resolve maps a record onto an existing article id. The EAN wins when a
// record carries both.
func (im *Importer) resolve(ctx context.Context, rec SalesRecord) (int64, error) {
	im.mu.Lock()
	defer im.mu.Unlock()

	if rec.EAN != "" {
		if id, ok := im.eanCache[rec.EAN]; ok {
			if id == 0 {
				return 0, domain.ErrNotFound
			}
			return id, nil
		}
		a, err := im.articles.GetByEAN(ctx, rec.EAN)
		if errors.Is(err, domain.ErrNotFound) {
			im.eanCache[rec.EAN] = 0
			return 0, err
		}
		if err != nil {
			return 0, err
		}
		im.eanCache[rec.EAN] = a.ID
		return a.ID, nil
	}

	if known, ok := im.idCache[rec.ArticleID]; ok {
		if !known {
			return 0, domain.ErrNotFound
		}
		return rec.ArticleID, nil
	}
	_, err := im.articles.Get(ctx, rec.ArticleID)
	if errors.Is(err, domain.ErrNotFound) {
		im.idCache[rec.ArticleID] = false
		return 0, err
	}
	if err != nil {
		return 0, err
	}
	im.idCache[rec.ArticleID] = true
	return rec.ArticleID, nil
}

func (im *Importer) resetCaches() {
	im.mu.Lock()
	defer im.mu.Unlock()
	im.eanCache = make(map[string]int64)
	im.idCache = make(map[int64]bool)
}
