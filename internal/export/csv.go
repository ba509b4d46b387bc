package export

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/automatenwerk/stockpilot/internal/domain"
)

// CSV renders rows separated by semicolons, as spreadsheet programs with a
// German locale expect.
func CSV(rows []domain.ReorderRow) ([]byte, error) {
	var buf bytes.Buffer
	// UTF-8 BOM for Excel
	buf.WriteString("\ufeff")

	w := csv.NewWriter(&buf)
	w.Comma = ';'

	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, r := range rows {
		if err := w.Write(record(r)); err != nil {
			return nil, fmt.Errorf("failed to write csv row for article %d: %w", r.ArticleID, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
