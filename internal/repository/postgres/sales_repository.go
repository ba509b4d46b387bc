package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/automatenwerk/stockpilot/internal/domain"
	"github.com/automatenwerk/stockpilot/internal/repository"
)

type salesRepository struct {
	db *DB
}

var _ repository.SalesRepository = (*salesRepository)(nil)

func NewSalesRepository(db *DB) *salesRepository {
	return &salesRepository{db: db}
}

func (r *salesRepository) Upsert(ctx context.Context, rows []domain.DailySales) error {
	if len(rows) == 0 {
		return nil
	}

	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO daily_sales (article_id, sales_date, quantity)
			VALUES ($1, $2, $3)
			ON CONFLICT (article_id, sales_date)
			DO UPDATE SET quantity = EXCLUDED.quantity
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for _, row := range rows {
			if _, err := stmt.ExecContext(ctx, row.ArticleID, repository.Day(row.Date), row.Quantity); err != nil {
				return fmt.Errorf("failed to upsert sales of article %d: %w", row.ArticleID, err)
			}
		}
		return nil
	})
}

func (r *salesRepository) Window(ctx context.Context, articleIDs []int64, asOf time.Time, days int) (map[int64][]float64, error) {
	out := make(map[int64][]float64, len(articleIDs))
	for _, id := range articleIDs {
		out[id] = make([]float64, days)
	}
	if len(articleIDs) == 0 || days <= 0 {
		return out, nil
	}

	end := repository.Day(asOf)
	start := end.AddDate(0, 0, -(days - 1))

	var rows []domain.DailySales
	query := `
		SELECT article_id, sales_date, quantity
		FROM daily_sales
		WHERE article_id = ANY($1) AND sales_date BETWEEN $2 AND $3
	`
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, pq.Array(articleIDs), start, end); err != nil {
		return nil, fmt.Errorf("failed to get sales window: %w", err)
	}

	for _, row := range rows {
		offset := int(end.Sub(repository.Day(row.Date)).Hours() / 24)
		if offset >= 0 && offset < days {
			out[row.ArticleID][offset] = row.Quantity
		}
	}
	return out, nil
}
