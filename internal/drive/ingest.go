package drive

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/automatenwerk/stockpilot/internal/pipeline"
)

// ErrSyncRunning is returned when a sync is requested while one is in progress.
var ErrSyncRunning = errors.New("drive sync already running")

// SalesImporter loads local sales files into the sales history.
type SalesImporter interface {
	ImportFiles(ctx context.Context, files []string) (*pipeline.ImportRun, error)
}

// IngestOptions locates the Drive folder and the local download directory.
type IngestOptions struct {
	FolderID    string
	FolderPath  string
	DownloadDir string
}

// IngestService syncs sales files from Drive into the sales history.
type IngestService struct {
	source     FileSource
	downloader *Downloader
	importer   SalesImporter
	opts       IngestOptions

	running sync.Mutex
	mu      sync.Mutex
	lastRun *pipeline.ImportRun
	lastErr error
	folder  string
}

func NewIngestService(source FileSource, importer SalesImporter, opts IngestOptions) *IngestService {
	return &IngestService{
		source:     source,
		downloader: NewDownloader(source),
		importer:   importer,
		opts:       opts,
	}
}

// Sync downloads new or changed files and imports them. Downloaded files are
// removed after the import. A file counts as seen only once its import
// completed, so failed files are fetched again on the next sync.
func (s *IngestService) Sync(ctx context.Context) (*pipeline.ImportRun, error) {
	return s.run(ctx, false)
}

// SyncAll forgets the download history and imports every file of the folder.
func (s *IngestService) SyncAll(ctx context.Context) (*pipeline.ImportRun, error) {
	return s.run(ctx, true)
}

func (s *IngestService) run(ctx context.Context, all bool) (*pipeline.ImportRun, error) {
	if !s.running.TryLock() {
		return nil, ErrSyncRunning
	}
	defer s.running.Unlock()

	if all {
		s.downloader.Forget()
	}
	run, err := s.sync(ctx)

	s.mu.Lock()
	s.lastRun, s.lastErr = run, err
	s.mu.Unlock()

	return run, err
}

func (s *IngestService) sync(ctx context.Context) (*pipeline.ImportRun, error) {
	folderID, err := s.folderID(ctx)
	if err != nil {
		return nil, err
	}

	downloaded, err := s.downloader.DownloadFolder(ctx, DownloadOptions{FolderID: folderID, DownloadDir: s.opts.DownloadDir})
	if err != nil {
		return nil, fmt.Errorf("drive download failed: %w", err)
	}
	defer removeAll(paths(downloaded))

	if len(downloaded) == 0 {
		now := time.Now()
		return &pipeline.ImportRun{Status: pipeline.StatusCompleted, StartedAt: now, CompletedAt: now}, nil
	}

	run, err := s.importer.ImportFiles(ctx, paths(downloaded))
	if err != nil {
		return run, err
	}
	s.markImported(run, downloaded)
	return run, nil
}

// markImported marks the files whose import job completed as seen.
func (s *IngestService) markImported(run *pipeline.ImportRun, downloaded []Downloaded) {
	if run == nil {
		return
	}
	byPath := make(map[string]*File, len(downloaded))
	for _, d := range downloaded {
		byPath[d.Path] = d.File
	}
	for _, job := range run.Files {
		if f, ok := byPath[job.FilePath]; ok && job.Status == pipeline.FileStatusCompleted {
			s.downloader.MarkSeen(f)
		}
	}
}

// IngestFile downloads and imports one file regardless of its history.
func (s *IngestService) IngestFile(ctx context.Context, fileID string) (*pipeline.ImportRun, error) {
	if err := os.MkdirAll(s.opts.DownloadDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create download dir: %w", err)
	}

	folderID, err := s.folderID(ctx)
	if err != nil {
		return nil, err
	}
	files, err := s.source.ListFiles(ctx, folderID)
	if err != nil {
		return nil, err
	}

	for _, f := range files {
		if f.ID != fileID {
			continue
		}
		if !pipeline.IsSalesFile(f.Name) {
			return nil, fmt.Errorf("%s is not a csv or xlsx file", f.Name)
		}
		path, err := s.downloader.Download(ctx, f, s.opts.DownloadDir)
		if err != nil {
			return nil, err
		}
		defer os.Remove(path)
		run, err := s.importer.ImportFiles(ctx, []string{path})
		if err != nil {
			return run, err
		}
		s.markImported(run, []Downloaded{{File: f, Path: path}})
		return run, nil
	}
	return nil, fmt.Errorf("file %s not found in folder", fileID)
}

// ListFiles lists the files of the configured folder.
func (s *IngestService) ListFiles(ctx context.Context) ([]*File, error) {
	folderID, err := s.folderID(ctx)
	if err != nil {
		return nil, err
	}
	return s.source.ListFiles(ctx, folderID)
}

// Status returns the result of the last sync.
func (s *IngestService) Status() (*pipeline.ImportRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRun, s.lastErr
}

// Run syncs every interval until ctx is done. The first sync starts at once.
func (s *IngestService) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := s.Sync(ctx); err != nil && !errors.Is(err, ErrSyncRunning) {
			log.Error().Err(err).Msg("drive: periodic sync failed")
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// folderID resolves the folder once; an explicit id wins over a path.
func (s *IngestService) folderID(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.folder != "" {
		return s.folder, nil
	}
	if s.opts.FolderID != "" {
		s.folder = s.opts.FolderID
		return s.folder, nil
	}
	if s.opts.FolderPath == "" {
		return "root", nil
	}

	id, err := s.source.FindFolderByPath(ctx, s.opts.FolderPath)
	if err != nil {
		return "", err
	}
	s.folder = id
	return id, nil
}

func removeAll(paths []string) {
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			log.Warn().Err(err).Str("file", p).Msg("drive: could not remove download")
		}
	}
}
