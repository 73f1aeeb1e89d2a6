package httpserver

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"postershop/internal/domain"
	catalogsvc "postershop/internal/service/catalog"
	"github.com/gin-gonic/gin"
)

func (h *handlers) listProducts(c *gin.Context) {
	q := catalogsvc.ListQuery{
		Q:        c.Query("q"),
		Sort:     c.DefaultQuery("sort", domain.SortNewest),
		Page:     queryInt(c, "page", 0),
		PageSize: queryInt(c, "pageSize", catalogsvc.DefaultPageSize),
	}
	page, err := h.deps.CatalogSvc.List(c.Request.Context(), q)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *handlers) getProduct(c *gin.Context) {
	id, ok := pathID(c, "productId")
	if !ok {
		badRequest(c, msgInvalidID)
		return
	}
	p, err := h.deps.CatalogSvc.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": msgProductNotFound})
			return
		}
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *handlers) listReviews(c *gin.Context) {
	id, ok := pathID(c, "productId")
	if !ok {
		badRequest(c, msgInvalidID)
		return
	}
	reviews, err := h.deps.CatalogSvc.Reviews(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reviews": reviews})
}

// queryInt parses an integer query parameter, falling back to def when it is
// missing or malformed.
func queryInt(c *gin.Context, key string, def int) int {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

// pathID parses a positive integer path parameter.
func pathID(c *gin.Context, key string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(key), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
