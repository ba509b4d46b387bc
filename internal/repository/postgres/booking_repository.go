package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/automatenwerk/stockpilot/internal/domain"
	"github.com/automatenwerk/stockpilot/internal/repository"
)

const bookingColumns = `id, article_id, article_name, booking_type, quantity, username, booked_at`

var bookingSortFields = map[string]string{
	"id":           "id",
	"booked_at":    "booked_at",
	"article_name": "article_name",
	"quantity":     "quantity",
	"type":         "booking_type",
	"user":         "username",
}

type bookingRepository struct {
	db *DB
}

var _ repository.BookingRepository = (*bookingRepository)(nil)

func NewBookingRepository(db *DB) *bookingRepository {
	return &bookingRepository{db: db}
}

func (r *bookingRepository) Apply(ctx context.Context, booking *domain.Booking) (int, error) {
	var stock int

	err := r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		var article struct {
			Name  string `db:"name"`
			Stock int    `db:"stock"`
		}
		err := tx.GetContext(ctx, &article, `SELECT name, stock FROM articles WHERE id = $1 FOR UPDATE`, booking.ArticleID)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NotFoundError("article", booking.ArticleID)
		}
		if err != nil {
			return fmt.Errorf("failed to lock article %d: %w", booking.ArticleID, err)
		}

		stock = article.Stock
		switch booking.Type {
		case domain.BookingIn:
			stock += booking.Quantity
		case domain.BookingOut:
			if booking.Quantity > stock {
				return fmt.Errorf("%w: %d requested, %d available",
					domain.ErrInsufficientStock, booking.Quantity, stock)
			}
			stock -= booking.Quantity
		default:
			return domain.ValidationError("unknown booking type " + string(booking.Type))
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE articles SET stock = $2, updated_at = NOW() WHERE id = $1`,
			booking.ArticleID, stock,
		); err != nil {
			return fmt.Errorf("failed to update stock: %w", err)
		}

		booking.ArticleName = article.Name
		insert := `
			INSERT INTO bookings (article_id, article_name, booking_type, quantity, username, booked_at)
			VALUES ($1, $2, $3, $4, $5, COALESCE($6::timestamptz, NOW()))
			RETURNING id, booked_at
		`
		var bookedAt interface{}
		if !booking.BookedAt.IsZero() {
			bookedAt = booking.BookedAt
		}
		if err := tx.QueryRowxContext(ctx, insert,
			booking.ArticleID, booking.ArticleName, string(booking.Type), booking.Quantity, booking.User, bookedAt,
		).Scan(&booking.ID, &booking.BookedAt); err != nil {
			return fmt.Errorf("failed to insert booking: %w", err)
		}

		if booking.Type == domain.BookingOut {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO daily_sales (article_id, sales_date, quantity)
				VALUES ($1, $2, $3)
				ON CONFLICT (article_id, sales_date)
				DO UPDATE SET quantity = daily_sales.quantity + EXCLUDED.quantity
			`, booking.ArticleID, repository.Day(booking.BookedAt), float64(booking.Quantity)); err != nil {
				return fmt.Errorf("failed to record sale: %w", err)
			}
		}

		return nil
	})

	return stock, err
}

func (r *bookingRepository) List(ctx context.Context, filter domain.BookingFilter) (*domain.ListResponse[domain.Booking], error) {
	b := buildBookingFilter(filter)

	var total int
	if err := sqlx.GetContext(ctx, r.db, &total, `SELECT COUNT(*) FROM bookings`+b.where(), b.args...); err != nil {
		return nil, fmt.Errorf("failed to count bookings: %w", err)
	}

	dir := filter.SortDir
	if dir == "" {
		dir = "desc"
	}
	query := `SELECT ` + bookingColumns + ` FROM bookings` + b.where() +
		orderBy(bookingSortFields, filter.SortField, "booked_at", dir)
	limit, page, pageSize := b.page(filter.Page, filter.PageSize)

	items := []domain.Booking{}
	if err := sqlx.SelectContext(ctx, r.db, &items, query+limit, b.args...); err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}

	return &domain.ListResponse[domain.Booking]{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages(total, pageSize),
	}, nil
}

func (r *bookingRepository) Range(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, error) {
	b := buildBookingFilter(filter)

	var items []domain.Booking
	query := `SELECT ` + bookingColumns + ` FROM bookings` + b.where() + ` ORDER BY booked_at, id`
	if err := sqlx.SelectContext(ctx, r.db, &items, query, b.args...); err != nil {
		return nil, fmt.Errorf("failed to get bookings: %w", err)
	}
	return items, nil
}
