package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/automatenwerk/stockpilot/internal/domain"
)

const sheetName = "Bestellvorschläge"

// XLSX renders rows into a single-sheet workbook. Numbers are written as
// numbers so the spreadsheet applies its own locale.
func XLSX(rows []domain.ReorderRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		values := []interface{}{
			r.ArticleID,
			r.ArticleName,
			r.EAN,
			r.SupplierName,
			r.Stock,
			r.AverageDailyDemand,
			r.TrendFactor,
			r.SafetyStock,
			r.LeadTimeDays,
			r.SuggestedOrderQuantity,
			r.OrderValue.InexactFloat64(),
		}
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return nil, fmt.Errorf("failed to write row for article %d: %w", r.ArticleID, err)
		}
	}

	if err := f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("failed to freeze header: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
