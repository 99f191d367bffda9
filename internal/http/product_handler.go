package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"techmart-assistant/internal/service"
)

// ProductHandler expone el catalogo vigente en modo solo lectura.
type ProductHandler struct {
	logger  *zap.Logger
	catalog service.CatalogSource
}

func NewProductHandler(logger *zap.Logger, catalog service.CatalogSource) *ProductHandler {
	return &ProductHandler{
		logger:  logger,
		catalog: catalog,
	}
}

// ListProducts maneja GET /api/products.
// Los limites de precio mal formados se reportan en el log y se ignoran.
func (h *ProductHandler) ListProducts(c *gin.Context) {
	query := service.ProductQuery{
		Search:   c.Query("search"),
		Category: c.Query("category"),
		MinPrice: h.priceBound(c, "minPrice"),
		MaxPrice: h.priceBound(c, "maxPrice"),
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			h.logger.Warn("invalid product limit", zap.String("limit", raw))
		} else {
			query.Limit = limit
		}
	}

	c.JSON(http.StatusOK, h.catalog.Current().Filter(query))
}

// GetProduct maneja GET /api/products/:id.
func (h *ProductHandler) GetProduct(c *gin.Context) {
	product, ok := h.catalog.Current().ByID(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}
	c.JSON(http.StatusOK, product)
}

// ListCategories maneja GET /api/categories.
func (h *ProductHandler) ListCategories(c *gin.Context) {
	c.JSON(http.StatusOK, h.catalog.Current().Categories())
}

func (h *ProductHandler) priceBound(c *gin.Context, name string) *float64 {
	v, err := service.ParsePriceBound(c.Query(name))
	if err != nil {
		h.logger.Warn("invalid price bound", zap.String("param", name), zap.Error(err))
		return nil
	}
	return v
}
