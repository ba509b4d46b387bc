package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/automatenwerk/stockpilot/internal/domain"
)

var rows = []domain.ReorderRow{
	{
		ArticleID:              1,
		ArticleName:            "Coca Cola 0.5L",
		EAN:                    "1234567890123",
		SupplierName:           "CocaCola GmbH",
		Stock:                  50,
		LeadTimeDays:           4,
		AverageDailyDemand:     17.5,
		TrendFactor:            1.2,
		SafetyStock:            4,
		SuggestedOrderQuantity: 1234,
		OrderValue:             decimal.RequireFromString("617.00"),
	},
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	f, err = ParseFormat("XLSX")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)
	assert.Equal(t, ".xlsx", f.Extension())

	_, err = ParseFormat("pdf")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestCSV(t *testing.T) {
	data, err := CSV(rows)
	require.NoError(t, err)

	text := strings.TrimPrefix(string(data), "\ufeff")
	lines := strings.Split(strings.TrimSpace(text), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "Artikel-ID;Artikel;EAN"))
	assert.Equal(t, "1;Coca Cola 0.5L;1234567890123;CocaCola GmbH;50;17,5;1,20;4;4;1234;617,00", lines[1])
}

func TestXLSX(t *testing.T) {
	data, err := XLSX(rows)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	got, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, header, got[0])
	assert.Equal(t, "Coca Cola 0.5L", got[1][1])
	assert.Equal(t, "1234", got[1][9])
}
