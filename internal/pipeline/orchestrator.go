package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// IsSalesFile reports whether name has an extension the importer reads.
func IsSalesFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".xlsx":
		return !strings.HasPrefix(filepath.Base(name), "~$")
	}
	return false
}

// ListSalesFiles returns the sales files directly inside dir, sorted by name.
func ListSalesFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && IsSalesFile(e.Name()) {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// ImportDir imports every sales file in dir.
func (im *Importer) ImportDir(ctx context.Context, dir string) (*ImportRun, error) {
	files, err := ListSalesFiles(dir)
	if err != nil {
		return nil, err
	}
	return im.ImportFiles(ctx, files)
}
