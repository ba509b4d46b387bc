package pipeline

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/xuri/excelize/v2"
)

// convertSalesXLSX writes the first sheet of a sales workbook as CSV. Cells
// are read unformatted; date serials in the date column become ISO dates so
// the CSV parser sees the same values for typed and text dates.
func convertSalesXLSX(xlsxPath, csvPath string) error {
	f, err := excelize.OpenFile(xlsxPath, excelize.Options{RawCellValue: true})
	if err != nil {
		return fmt.Errorf("failed to open xlsx file %s: %w", xlsxPath, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return fmt.Errorf("xlsx file %s has no sheets", xlsxPath)
	}
	sheet := sheets[0]

	date1904 := false
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		date1904 = *props.Date1904
	}

	rows, err := f.Rows(sheet)
	if err != nil {
		return fmt.Errorf("failed to read rows from sheet %s: %w", sheet, err)
	}
	defer rows.Close()

	out, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create csv file %s: %w", csvPath, err)
	}
	defer out.Close()

	w := csv.NewWriter(out)
	dateCol := -1

	for line := 1; rows.Next(); line++ {
		record, err := rows.Columns(excelize.Options{RawCellValue: true})
		if err != nil {
			return fmt.Errorf("failed to read row from %s: %w", xlsxPath, err)
		}

		if line == 1 {
			dateCol = indexHeader(record).find(dateHeaders)
		} else if dateCol >= 0 && dateCol < len(record) {
			record[dateCol] = serialToISODate(record[dateCol], date1904)
		}

		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write csv row to %s: %w", csvPath, err)
		}
	}

	if err := rows.Error(); err != nil {
		return fmt.Errorf("error iterating rows in %s: %w", xlsxPath, err)
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", csvPath, err)
	}
	return nil
}

// serialToISODate turns an Excel date serial into YYYY-MM-DD. Other values,
// such as dates stored as text, are returned unchanged.
func serialToISODate(value string, date1904 bool) string {
	serial, err := strconv.ParseFloat(value, 64)
	if err != nil || serial <= 0 {
		return value
	}
	t, err := excelize.ExcelDateToTime(serial, date1904)
	if err != nil {
		return value
	}
	return t.Format("2006-01-02")
}
