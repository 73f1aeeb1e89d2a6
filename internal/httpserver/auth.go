package httpserver

import (
	"errors"
	"net/http"

	"postershop/internal/domain"
	accountsvc "postershop/internal/service/account"
	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *handlers) register(c *gin.Context) {
	var req accountsvc.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, msgInvalidInput)
		return
	}
	auth, err := h.deps.AccountSvc.Register(c.Request.Context(), req)
	if err != nil {
		switch {
		case domain.IsValidation(err):
			badRequest(c, msgInvalidInput)
		case errors.Is(err, domain.ErrAlreadyExists):
			c.JSON(http.StatusConflict, gin.H{"error": msgEmailTaken})
		default:
			h.writeError(c, err)
		}
		return
	}
	setSessionCookie(c, auth.Token, auth.ExpiresAt, h.deps.SecureCookies)
	c.JSON(http.StatusOK, gin.H{"ok": true, "user": auth.User, "token": auth.Token})
}

func (h *handlers) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": msgBadCredentials})
		return
	}
	auth, err := h.deps.AccountSvc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}
	setSessionCookie(c, auth.Token, auth.ExpiresAt, h.deps.SecureCookies)
	c.JSON(http.StatusOK, gin.H{"ok": true, "user": auth.User, "token": auth.Token})
}

func (h *handlers) logout(c *gin.Context) {
	if err := h.deps.AccountSvc.Logout(c.Request.Context(), sessionToken(c)); err != nil {
		h.writeError(c, err)
		return
	}
	clearSessionCookie(c, h.deps.SecureCookies)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *handlers) me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"user": principalFrom(c)})
}
