package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Auth header pieces and the Gin context key protected handlers read.
const (
	authHeaderName = "Authorization"
	bearerScheme   = "Bearer"
	ctxUserID      = "userId"

	errMissingAuthHeader = "missing Authorization header"
	errBadAuthHeader     = "invalid Authorization header format"
	errBadToken          = "invalid or expired token"
)

// userIdMiddleware guards /api/v1: it requires a "Bearer <token>" header,
// validates the token, and stores the owning user id under ctxUserID.
func (h *Handler) userIdMiddleware(c *gin.Context) {
	header := c.GetHeader(authHeaderName)
	if header == "" {
		h.abortUnauthorized(c, errMissingAuthHeader)
		return
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != bearerScheme {
		h.abortUnauthorized(c, errBadAuthHeader)
		return
	}

	userId, err := h.services.ParseToken(parts[1])
	if err != nil {
		if h.log != nil {
			h.log.Debugw("token_rejected", "err", err, "path", c.FullPath())
		}
		h.abortUnauthorized(c, errBadToken)
		return
	}

	c.Set(ctxUserID, userId)
	c.Next()
}

func (h *Handler) abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
}
