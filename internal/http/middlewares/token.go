package middlewares

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const TokenCookie = "token"

// TokenFromRequest returns the session token from the token cookie, falling
// back to an Authorization: Bearer header. Empty when neither is present.
func TokenFromRequest(c *gin.Context) string {
	if raw, err := c.Cookie(TokenCookie); err == nil && raw != "" {
		return raw
	}

	authHeader := c.GetHeader("Authorization")

	scheme, raw, ok := strings.Cut(authHeader, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}

	return strings.TrimSpace(raw)
}
