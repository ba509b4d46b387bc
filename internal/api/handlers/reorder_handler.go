package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/automatenwerk/stockpilot/internal/domain"
	"github.com/automatenwerk/stockpilot/internal/export"
	"github.com/automatenwerk/stockpilot/internal/service"
)

type ReorderHandler struct {
	service *service.ReorderService
}

func NewReorderHandler(service *service.ReorderService) *ReorderHandler {
	return &ReorderHandler{service: service}
}

func (h *ReorderHandler) parseFilter(c *gin.Context) domain.ReorderFilter {
	return domain.ReorderFilter{
		Search:     strings.TrimSpace(c.Query("search")),
		SupplierID: parseNonNegativeInt64(c.Query("supplier_id")),
		SortField:  strings.TrimSpace(c.DefaultQuery("sort_field", "order_qty")),
		SortDir:    strings.TrimSpace(c.DefaultQuery("sort_direction", "desc")),
		Page:       parsePositiveIntWithDefault(c.Query("page"), 1),
		PageSize:   parsePositiveIntWithDefault(c.Query("page_size"), 50),
	}
}

func (h *ReorderHandler) Suggestions(c *gin.Context) {
	resp, err := h.service.Suggestions(c.Request.Context(), h.parseFilter(c))
	if err != nil {
		respondError(c, "failed to compute order suggestions", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ReorderHandler) Suggestion(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	row, err := h.service.Suggestion(c.Request.Context(), id)
	if err != nil {
		respondError(c, "failed to compute order suggestion", err)
		return
	}
	c.JSON(http.StatusOK, row)
}

func (h *ReorderHandler) Export(c *gin.Context) {
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		respondError(c, "invalid export format", err)
		return
	}

	file, err := h.service.Export(c.Request.Context(), h.parseFilter(c), format)
	if err != nil {
		respondError(c, "failed to export order suggestions", err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}
