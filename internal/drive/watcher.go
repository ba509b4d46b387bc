package drive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/automatenwerk/stockpilot/internal/pipeline"
)

// DownloadOptions controls how files are pulled from Google Drive.
type DownloadOptions struct {
	FolderID    string
	DownloadDir string
}

// Downloaded is a Drive file fetched into the download directory.
type Downloaded struct {
	File *File
	Path string
}

// Downloader pulls sales files from a Drive folder. Files marked as seen are
// skipped until their modification time changes.
type Downloader struct {
	source FileSource

	mu   sync.Mutex
	seen map[string]string // file id -> modified time
}

// NewDownloader creates a new Downloader.
func NewDownloader(source FileSource) *Downloader {
	return &Downloader{source: source, seen: make(map[string]string)}
}

// DownloadFolder downloads the CSV and XLSX files of the folder that are not
// marked as seen. If one download fails, the files fetched so far are removed
// and nothing is returned.
func (d *Downloader) DownloadFolder(ctx context.Context, opts DownloadOptions) ([]Downloaded, error) {
	if opts.DownloadDir == "" {
		return nil, fmt.Errorf("download dir is required")
	}
	if err := os.MkdirAll(opts.DownloadDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create download dir: %w", err)
	}

	files, err := d.source.ListFiles(ctx, opts.FolderID)
	if err != nil {
		return nil, err
	}

	var downloaded []Downloaded
	for _, f := range files {
		if !pipeline.IsSalesFile(f.Name) || d.unchanged(f) {
			continue
		}

		localPath, err := d.Download(ctx, f, opts.DownloadDir)
		if err == nil {
			err = ctx.Err()
		}
		if err != nil {
			removeAll(paths(downloaded))
			if localPath != "" {
				removeAll([]string{localPath})
			}
			return nil, err
		}
		downloaded = append(downloaded, Downloaded{File: f, Path: localPath})
	}

	log.Info().Int("listed", len(files)).Int("downloaded", len(downloaded)).Msg("drive: folder downloaded")
	return downloaded, nil
}

// Download fetches a single file into dir.
func (d *Downloader) Download(ctx context.Context, f *File, dir string) (string, error) {
	localPath := filepath.Join(dir, f.ID+"-"+filepath.Base(f.Name))
	out, err := os.Create(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to create local file %s: %w", localPath, err)
	}
	if err := d.source.DownloadFile(ctx, f.ID, out); err != nil {
		out.Close()
		os.Remove(localPath)
		return "", fmt.Errorf("failed to download %s: %w", f.Name, err)
	}
	if err := out.Close(); err != nil {
		os.Remove(localPath)
		return "", fmt.Errorf("failed to write %s: %w", localPath, err)
	}
	return localPath, nil
}

// MarkSeen records the current modification time of files so later calls
// skip them.
func (d *Downloader) MarkSeen(files ...*File) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, f := range files {
		d.seen[f.ID] = f.ModifiedTime
	}
}

func (d *Downloader) unchanged(f *File) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	modified, ok := d.seen[f.ID]
	return ok && modified == f.ModifiedTime
}

// Forget drops the download history so the next call fetches everything.
func (d *Downloader) Forget() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seen = make(map[string]string)
}

func paths(files []Downloaded) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.Path
	}
	return out
}
