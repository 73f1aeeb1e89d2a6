package httpserver

import (
	"errors"
	"net/http"

	"postershop/internal/domain"
	accountsvc "postershop/internal/service/account"
	"github.com/gin-gonic/gin"
)

const (
	msgServerError     = "Server error"
	msgUnauthorized    = "Unauthorized"
	msgInvalidID       = "Invalid id"
	msgInvalidProduct  = "Invalid productId"
	msgInvalidPayload  = "Invalid payload"
	msgInvalidInput    = "Invalid input"
	msgProductNotFound = "Product Not Found"
	msgEmptyCart       = "Empty cart"
	msgInvalidAddress  = "Invalid address"
	msgEmailTaken      = "Email already registered"
	msgBadCredentials  = "Invalid email or password"
)

// writeError maps a service error onto a status and {"error": msg} body.
// Unclassified errors are logged with the request id and reported as a
// generic server error.
func (h *handlers) writeError(c *gin.Context, err error) {
	status, msg := classify(err)
	if status == http.StatusInternalServerError {
		h.logger.Printf("request failed request_id=%s method=%s path=%s err=%v",
			requestID(c), c.Request.Method, c.Request.URL.Path, err)
		_ = c.Error(err)
	}
	c.JSON(status, gin.H{"error": msg})
}

func classify(err error) (int, string) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, ve.Error()
	case errors.Is(err, domain.ErrEmptyCart):
		return http.StatusBadRequest, msgEmptyCart
	case errors.Is(err, domain.ErrInvalidAddress):
		return http.StatusBadRequest, msgInvalidAddress
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, msgUnauthorized
	case errors.Is(err, accountsvc.ErrInvalidCredentials):
		return http.StatusUnauthorized, msgBadCredentials
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "Not found"
	case errors.Is(err, domain.ErrAlreadyExists):
		return http.StatusConflict, "Already exists"
	default:
		return http.StatusInternalServerError, msgServerError
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
