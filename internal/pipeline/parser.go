package pipeline

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

var (
	articleIDHeaders = []string{"article_id", "artikel_id", "artikelnummer", "id"}
	eanHeaders       = []string{"ean", "barcode"}
	dateHeaders      = []string{"date", "datum", "sales_date", "tag"}
	quantityHeaders  = []string{"quantity", "menge", "qty", "verkauf", "anzahl"}
	dateLayouts      = []string{"2006-01-02", "02.01.2006", "2.1.2006", "01/02/2006", time.RFC3339}
)

// ParseSalesCSV reads daily sales from r. The first line is a header naming
// the columns; the separator (";" or ",") is detected from it. Quantities may
// use a decimal comma.
func ParseSalesCSV(r io.Reader) ([]SalesRecord, error) {
	br := bufio.NewReader(r)
	first, err := br.Peek(4096)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	reader := csv.NewReader(br)
	reader.Comma = detectSeparator(string(first))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty sales file")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	cols := indexHeader(header)
	idCol, eanCol := cols.find(articleIDHeaders), cols.find(eanHeaders)
	dateCol, qtyCol := cols.find(dateHeaders), cols.find(quantityHeaders)
	if idCol < 0 && eanCol < 0 {
		return nil, fmt.Errorf("header needs an article_id or ean column")
	}
	if dateCol < 0 || qtyCol < 0 {
		return nil, fmt.Errorf("header needs date and quantity columns")
	}

	var records []SalesRecord
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if blank(row) {
			continue
		}

		rec := SalesRecord{Line: line}
		if idCol >= 0 {
			if v := field(row, idCol); v != "" {
				rec.ArticleID, err = strconv.ParseInt(v, 10, 64)
				if err != nil {
					return nil, fmt.Errorf("line %d: invalid article id %q", line, v)
				}
			}
		}
		if eanCol >= 0 {
			rec.EAN = field(row, eanCol)
		}
		if rec.ArticleID == 0 && rec.EAN == "" {
			return nil, fmt.Errorf("line %d: missing article id and ean", line)
		}

		rec.Date, err = parseDate(field(row, dateCol))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		rec.Quantity, err = parseQuantity(field(row, qtyCol))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		records = append(records, rec)
	}

	return records, nil
}

func detectSeparator(head string) rune {
	if i := strings.IndexByte(head, '\n'); i >= 0 {
		head = head[:i]
	}
	if strings.Count(head, ";") >= strings.Count(head, ",") && strings.Contains(head, ";") {
		return ';'
	}
	return ','
}

type headerIndex map[string]int

func indexHeader(header []string) headerIndex {
	idx := make(headerIndex, len(header))
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := idx[h]; !dup {
			idx[h] = i
		}
	}
	return idx
}

func (h headerIndex) find(names []string) int {
	for _, n := range names {
		if i, ok := h[n]; ok {
			return i
		}
	}
	return -1
}

func field(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

// parseQuantity accepts "12", "12.5" and "12,5". Thousands separators are
// not supported.
func parseQuantity(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid quantity %q", s)
	}
	if v < 0 {
		return 0, fmt.Errorf("negative quantity %q", s)
	}
	return v, nil
}
