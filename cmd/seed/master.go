package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/automatenwerk/stockpilot/internal/domain"
	"github.com/automatenwerk/stockpilot/internal/repository"
	"github.com/automatenwerk/stockpilot/internal/repository/memory"
	"github.com/automatenwerk/stockpilot/internal/repository/postgres"
)

var (
	supplierColumns = []string{"id", "name", "homepage", "lead_time_days", "delivery_days", "order_days"}
	articleColumns  = []string{"id", "name", "ean", "stock", "supplier_id", "net_purchase_price", "deposit", "tax_rate", "sale_price"}
	// the CSV export carries no supplier article number or link
	sampleArticleColumns = []string{"id", "name", "ean", "stock", "supplier_id", "net_purchase_price", "deposit", "tax_rate", "sale_price", "supplier_article_no", "link"}
)

// columnTransform converts a raw CSV cell into a query argument.
type columnTransform func(string) any

// weekdayArray turns "Montag|Donnerstag" into a postgres array literal.
func weekdayArray(value string) any {
	var days []string
	for _, d := range strings.Split(value, "|") {
		if d = strings.TrimSpace(d); d != "" {
			days = append(days, d)
		}
	}
	return "{" + strings.Join(days, ",") + "}"
}

func runMaster(c *cli.Context) error {
	db, err := dbFrom(c)
	if err != nil {
		return err
	}
	ctx := c.Context

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	log.Info().Msg("Starting master data seeding...")

	if c.Bool("sample") {
		err = seedSampleCatalog(ctx, tx)
	} else {
		err = seedMasterData(ctx, tx, c.String("data-dir"))
	}
	if err != nil {
		return fmt.Errorf("failed to seed master data: %w", err)
	}

	for _, table := range []string{"suppliers", "articles"} {
		if err := resetSequence(ctx, tx, table); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	if c.Bool("sample") {
		if err := seedSampleSales(ctx, postgres.FromSQL(db, "pgx").Repositories().Sales, time.Now()); err != nil {
			return fmt.Errorf("failed to seed sample sales: %w", err)
		}
	}

	log.Info().Msg("Master data seeding completed successfully!")
	return nil
}

func seedMasterData(ctx context.Context, tx *sql.Tx, dataDir string) error {
	arrays := map[string]columnTransform{
		"delivery_days": weekdayArray,
		"order_days":    weekdayArray,
	}
	if err := seedTable(ctx, tx, "suppliers", supplierColumns, filepath.Join(dataDir, "suppliers.csv"), arrays); err != nil {
		return fmt.Errorf("failed to seed suppliers: %w", err)
	}
	if err := seedTable(ctx, tx, "articles", articleColumns, filepath.Join(dataDir, "articles.csv"), nil); err != nil {
		return fmt.Errorf("failed to seed articles: %w", err)
	}
	return nil
}

func upsertQuery(tableName string, columns []string) string {
	placeholders := make([]string, len(columns))
	updates := make([]string, 0, len(columns))
	for i, col := range columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		if col != "id" {
			updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", col, col))
		}
	}
	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (id) DO UPDATE SET %s, updated_at = NOW()",
		tableName,
		strings.Join(columns, ", "),
		strings.Join(placeholders, ", "),
		strings.Join(updates, ", "),
	)
}

func seedTable(ctx context.Context, tx *sql.Tx, tableName string, columns []string, filePath string, transforms map[string]columnTransform) error {
	log.Info().Str("table", tableName).Str("file", filePath).Msg("Seeding table")

	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", filePath, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("failed to read CSV header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, col := range columns {
		if _, ok := index[col]; !ok {
			return fmt.Errorf("column '%s' not found in %s", col, filePath)
		}
	}

	query := upsertQuery(tableName, columns)
	count := 0

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read CSV record: %w", err)
		}

		args := make([]any, len(columns))
		for i, col := range columns {
			idx := index[col]
			if idx >= len(record) {
				return fmt.Errorf("column index %d out of bounds for column '%s' (record has %d columns)", idx, col, len(record))
			}
			value := strings.TrimSpace(record[idx])
			if fn, ok := transforms[col]; ok {
				args[i] = fn(value)
			} else {
				args[i] = value
			}
		}

		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to insert record %d into %s: %w", count+1, tableName, err)
		}
		count++
	}

	log.Info().Str("table", tableName).Int("rows", count).Msg("Successfully seeded table")
	return nil
}

func seedSampleCatalog(ctx context.Context, tx *sql.Tx) error {
	supplierQuery := upsertQuery("suppliers", supplierColumns)
	for _, s := range memory.SampleSuppliers() {
		if _, err := tx.ExecContext(ctx, supplierQuery,
			s.ID, s.Name, s.Homepage, s.LeadTimeDays,
			weekdayArray(strings.Join(s.DeliveryDays, "|")),
			weekdayArray(strings.Join(s.OrderDays, "|")),
		); err != nil {
			return fmt.Errorf("failed to insert supplier %s: %w", s.Name, err)
		}
	}

	articleQuery := upsertQuery("articles", sampleArticleColumns)
	for _, a := range memory.SampleArticles() {
		if _, err := tx.ExecContext(ctx, articleQuery,
			a.ID, a.Name, a.EAN, a.Stock, a.SupplierID,
			a.NetPurchasePrice.String(), a.Deposit.String(), a.TaxRate.String(), a.SalePrice.String(),
			a.SupplierArticleNo, a.Link,
		); err != nil {
			return fmt.Errorf("failed to insert article %s: %w", a.Name, err)
		}
	}

	log.Info().Msg("Seeded sample catalog")
	return nil
}

func seedSampleSales(ctx context.Context, sales repository.SalesRepository, asOf time.Time) error {
	end := repository.Day(asOf)
	var rows []domain.DailySales
	for id, daily := range memory.SampleSales() {
		for i, qty := range daily {
			rows = append(rows, domain.DailySales{ArticleID: id, Date: end.AddDate(0, 0, -i), Quantity: qty})
		}
	}
	return sales.Upsert(ctx, rows)
}

func resetSequence(ctx context.Context, tx *sql.Tx, table string) error {
	query := fmt.Sprintf(
		"SELECT setval(pg_get_serial_sequence('%s', 'id'), COALESCE((SELECT MAX(id) FROM %s), 0) + 1, false)",
		table, table,
	)
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to reset %s id sequence: %w", table, err)
	}
	return nil
}
