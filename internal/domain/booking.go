package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// BookingType is the direction of a stock movement
type BookingType string

const (
	BookingIn  BookingType = "in"
	BookingOut BookingType = "out"
)

var bookingTypeLabels = map[BookingType]string{
	BookingIn:  "Einbuchen",
	BookingOut: "Ausbuchen",
}

var bookingTypeCodes = map[string]BookingType{
	"in":        BookingIn,
	"einbuchen": BookingIn,
	"out":       BookingOut,
	"ausbuchen": BookingOut,
}

// Label returns the human-readable label of a booking type.
func (t BookingType) Label() string {
	if label, ok := bookingTypeLabels[t]; ok {
		return label
	}

	return "Unbekannt"
}

// ParseBookingType accepts codes and labels (case-insensitive).
func ParseBookingType(s string) (BookingType, bool) {
	t, ok := bookingTypeCodes[strings.ToLower(strings.TrimSpace(s))]

	return t, ok
}

// Booking is a single stock movement
type Booking struct {
	ID          int64       `json:"id" db:"id"`
	ArticleID   int64       `json:"article_id" db:"article_id"`
	ArticleName string      `json:"article_name" db:"article_name"`
	Type        BookingType `json:"type" db:"booking_type"`
	Quantity    int         `json:"quantity" db:"quantity"`
	User        string      `json:"user" db:"username"`
	BookedAt    time.Time   `json:"booked_at" db:"booked_at"`
}

// MarshalJSON adds the readable type label.
func (b Booking) MarshalJSON() ([]byte, error) {
	type booking Booking
	return json.Marshal(struct {
		booking
		TypeLabel string `json:"type_label"`
	}{
		booking:   booking(b),
		TypeLabel: b.Type.Label(),
	})
}

// BookingRequest is the input of a stock movement
type BookingRequest struct {
	ArticleID int64       `json:"article_id" binding:"required"`
	Type      BookingType `json:"type" binding:"required"`
	Quantity  int         `json:"quantity" binding:"required"`
	User      string      `json:"user"`
}

// BookingFilter narrows the booking history
type BookingFilter struct {
	ArticleID int64      `json:"article_id"`
	Type      string     `json:"type"`
	From      *time.Time `json:"from"`
	To        *time.Time `json:"to"`
	// Exclusive drops bookings that fall exactly on From or To.
	Exclusive bool   `json:"-"`
	SortField string `json:"sort_field"`
	SortDir   string `json:"sort_direction"`
	Page      int    `json:"page"`
	PageSize  int    `json:"page_size"`
}

// Matches applies the type, article and date range parts of the filter.
// The range includes both ends unless Exclusive is set.
func (f BookingFilter) Matches(b Booking) bool {
	if f.ArticleID != 0 && b.ArticleID != f.ArticleID {
		return false
	}
	if f.Type != "" {
		if t, ok := ParseBookingType(f.Type); ok && b.Type != t {
			return false
		}
	}
	if f.From != nil && (b.BookedAt.Before(*f.From) || f.Exclusive && b.BookedAt.Equal(*f.From)) {
		return false
	}
	if f.To != nil && (b.BookedAt.After(*f.To) || f.Exclusive && b.BookedAt.Equal(*f.To)) {
		return false
	}
	return true
}

// BookingDay aggregates bookings of one day for the history chart
type BookingDay struct {
	Date  string   `json:"date"`
	Count int      `json:"count"`
	Users []string `json:"users"`
}
