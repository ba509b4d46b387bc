package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/automatenwerk/stockpilot/internal/domain"
	"github.com/automatenwerk/stockpilot/internal/service"
)

type CatalogHandler struct {
	service *service.CatalogService
}

func NewCatalogHandler(service *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: service}
}

func (h *CatalogHandler) ListArticles(c *gin.Context) {
	resp, err := h.service.ListArticles(c.Request.Context(), listFilterFromQuery(c))
	if err != nil {
		respondError(c, "failed to list articles", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CatalogHandler) GetArticle(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	article, err := h.service.GetArticle(c.Request.Context(), id)
	if err != nil {
		respondError(c, "failed to fetch article", err)
		return
	}
	c.JSON(http.StatusOK, article)
}

func (h *CatalogHandler) CreateArticle(c *gin.Context) {
	var article domain.Article
	if err := c.ShouldBindJSON(&article); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}
	if err := h.service.CreateArticle(c.Request.Context(), &article); err != nil {
		respondError(c, "failed to create article", err)
		return
	}
	c.JSON(http.StatusCreated, article)
}

func (h *CatalogHandler) UpdateArticle(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var article domain.Article
	if err := c.ShouldBindJSON(&article); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}
	if err := h.service.UpdateArticle(c.Request.Context(), id, &article); err != nil {
		respondError(c, "failed to update article", err)
		return
	}
	c.JSON(http.StatusOK, article)
}

func (h *CatalogHandler) DeleteArticle(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.service.DeleteArticle(c.Request.Context(), id); err != nil {
		respondError(c, "failed to delete article", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CatalogHandler) ListSuppliers(c *gin.Context) {
	resp, err := h.service.ListSuppliers(c.Request.Context(), listFilterFromQuery(c))
	if err != nil {
		respondError(c, "failed to list suppliers", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CatalogHandler) GetSupplier(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	supplier, err := h.service.GetSupplier(c.Request.Context(), id)
	if err != nil {
		respondError(c, "failed to fetch supplier", err)
		return
	}
	c.JSON(http.StatusOK, supplier)
}

func (h *CatalogHandler) CreateSupplier(c *gin.Context) {
	var supplier domain.Supplier
	if err := c.ShouldBindJSON(&supplier); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}
	if err := h.service.CreateSupplier(c.Request.Context(), &supplier); err != nil {
		respondError(c, "failed to create supplier", err)
		return
	}
	c.JSON(http.StatusCreated, supplier)
}

func (h *CatalogHandler) UpdateSupplier(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var supplier domain.Supplier
	if err := c.ShouldBindJSON(&supplier); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}
	if err := h.service.UpdateSupplier(c.Request.Context(), id, &supplier); err != nil {
		respondError(c, "failed to update supplier", err)
		return
	}
	c.JSON(http.StatusOK, supplier)
}

func (h *CatalogHandler) DeleteSupplier(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.service.DeleteSupplier(c.Request.Context(), id); err != nil {
		respondError(c, "failed to delete supplier", err)
		return
	}
	c.Status(http.StatusNoContent)
}
