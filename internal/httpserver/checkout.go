package httpserver

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// checkoutAddress picks the shipping address from a decoded body. The flat
// shippingAddress wins when it has content, then shipping.address. Values of
// the wrong type count as missing.
func checkoutAddress(body any) string {
	fields, ok := body.(map[string]any)
	if !ok {
		return ""
	}
	if flat, ok := fields["shippingAddress"].(string); ok && strings.TrimSpace(flat) != "" {
		return flat
	}
	if shipping, ok := fields["shipping"].(map[string]any); ok {
		if nested, ok := shipping["address"].(string); ok {
			return nested
		}
	}
	return ""
}

func (h *handlers) checkout(c *gin.Context) {
	var body any
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, msgInvalidPayload)
		return
	}
	order, err := h.deps.CheckoutSvc.Checkout(c.Request.Context(), principalFrom(c), checkoutAddress(body))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "orderId": order.OrderID, "total_cents": order.TotalCents})
}
