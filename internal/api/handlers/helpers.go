package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/automatenwerk/stockpilot/internal/domain"
)

func parsePositiveIntWithDefault(value string, defaultValue int) int {
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return defaultValue
	}
	return parsed
}

func parseNonNegativeInt64(value string) int64 {
	parsed, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || parsed < 0 {
		return 0
	}
	return parsed
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id", "details": c.Param("id")})
		return 0, false
	}
	return id, true
}

// parseDate accepts RFC 3339 timestamps and plain dates.
func parseDate(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, domain.ValidationError("invalid date " + value)
	}
	return &t, nil
}

func listFilterFromQuery(c *gin.Context) domain.ListFilter {
	return domain.ListFilter{
		Search:     strings.TrimSpace(c.Query("search")),
		SupplierID: parseNonNegativeInt64(c.Query("supplier_id")),
		SortField:  strings.TrimSpace(c.Query("sort_field")),
		SortDir:    strings.TrimSpace(c.Query("sort_direction")),
		Page:       parsePositiveIntWithDefault(c.Query("page"), 1),
		PageSize:   parsePositiveIntWithDefault(c.Query("page_size"), 50),
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInsufficientStock):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// respondError maps domain errors to a status code and writes the error body.
func respondError(c *gin.Context, message string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg(message)
	}
	c.JSON(status, gin.H{"error": message, "details": err.Error()})
}
