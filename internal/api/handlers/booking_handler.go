package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/automatenwerk/stockpilot/internal/domain"
	"github.com/automatenwerk/stockpilot/internal/service"
)

type BookingHandler struct {
	service *service.BookingService
}

func NewBookingHandler(service *service.BookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) parseFilter(c *gin.Context) (domain.BookingFilter, error) {
	filter := domain.BookingFilter{
		ArticleID: parseNonNegativeInt64(c.Query("article_id")),
		Type:      strings.TrimSpace(c.Query("type")),
		SortField: strings.TrimSpace(c.Query("sort_field")),
		SortDir:   strings.TrimSpace(c.Query("sort_direction")),
		Page:      parsePositiveIntWithDefault(c.Query("page"), 1),
		PageSize:  parsePositiveIntWithDefault(c.Query("page_size"), 50),
	}

	from, err := parseDate(c.Query("from"))
	if err != nil {
		return filter, err
	}
	to, err := parseDate(c.Query("to"))
	if err != nil {
		return filter, err
	}
	filter.From, filter.To = from, to
	return filter, nil
}

// Book handles Einbuchen and Ausbuchen.
func (h *BookingHandler) Book(c *gin.Context) {
	var req domain.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	result, err := h.service.Book(c.Request.Context(), req)
	if err != nil {
		respondError(c, "failed to book stock movement", err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h *BookingHandler) History(c *gin.Context) {
	filter, err := h.parseFilter(c)
	if err != nil {
		respondError(c, "invalid filter", err)
		return
	}

	resp, err := h.service.History(c.Request.Context(), filter)
	if err != nil {
		respondError(c, "failed to fetch booking history", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *BookingHandler) Chart(c *gin.Context) {
	filter, err := h.parseFilter(c)
	if err != nil {
		respondError(c, "invalid filter", err)
		return
	}

	days, err := h.service.Chart(c.Request.Context(), filter)
	if err != nil {
		respondError(c, "failed to fetch booking chart", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"days": days})
}
