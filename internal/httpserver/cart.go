package httpserver

import (
	"math"
	"net/http"

	"github.com/gin-gonic/gin"
)

type addItemRequest struct {
	ProductID *float64 `json:"productId"`
	Qty       *float64 `json:"qty"`
}

type setItemQtyRequest struct {
	ProductID *float64 `json:"productId"`
	Qty       *float64 `json:"qty"`
}

func (h *handlers) getCart(c *gin.Context) {
	view, err := h.deps.CartSvc.Load(c.Request.Context(), principalFrom(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *handlers) addCartItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, msgInvalidProduct)
		return
	}
	productID, ok := positiveInt(req.ProductID)
	if !ok {
		badRequest(c, msgInvalidProduct)
		return
	}
	view, err := h.deps.CartSvc.AddItem(c.Request.Context(), principalFrom(c), productID, req.Qty)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *handlers) setCartItemQty(c *gin.Context) {
	var req setItemQtyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, msgInvalidPayload)
		return
	}
	productID, ok := positiveInt(req.ProductID)
	if !ok || req.Qty == nil || !isWhole(*req.Qty) || *req.Qty < 0 || *req.Qty > math.MaxInt32 {
		badRequest(c, msgInvalidPayload)
		return
	}
	view, err := h.deps.CartSvc.SetItemQty(c.Request.Context(), principalFrom(c), productID, int(*req.Qty))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *handlers) removeCartItem(c *gin.Context) {
	productID, ok := pathID(c, "productId")
	if !ok {
		badRequest(c, msgInvalidProduct)
		return
	}
	view, err := h.deps.CartSvc.RemoveItem(c.Request.Context(), principalFrom(c), productID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *handlers) clearCart(c *gin.Context) {
	view, err := h.deps.CartSvc.ClearCart(c.Request.Context(), principalFrom(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func isWhole(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0) && f == math.Trunc(f)
}

// positiveInt accepts whole numbers in (0, 2^53].
func positiveInt(f *float64) (int64, bool) {
	if f == nil || !isWhole(*f) || *f <= 0 || *f > 1<<53 {
		return 0, false
	}
	return int64(*f), true
}
