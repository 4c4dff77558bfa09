package middleware

import (
	"crypto/ecdsa"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"taskhub/internal/api/http/handler"
	"taskhub/internal/model"
	"taskhub/pkg/jwt"
)

// JWTAuth accepts the access cookie, a Bearer header or, for browser
// websockets that cannot set headers, the token query parameter.
func JWTAuth(publicKey *ecdsa.PublicKey) gin.HandlerFunc {
	return func(c *gin.Context) {
		var tokenStr string

		if cookie, err := c.Cookie("access"); err == nil {
			tokenStr = cookie
		}

		if tokenStr == "" {
			authHeader := c.GetHeader("Authorization")
			if strings.HasPrefix(authHeader, "Bearer ") {
				tokenStr = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}

		if tokenStr == "" {
			tokenStr = c.Query("token")
		}

		if tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, handler.ResponseWithMessage{
				Status:  handler.StatusNotPermitted,
				Message: "missing access token",
			})

			return
		}

		claims, err := jwt.ValidateToken(tokenStr, publicKey)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, handler.ResponseWithMessage{
				Status:  handler.StatusNotPermitted,
				Message: "invalid or expired token",
			})
			return
		}

		c.Set(model.UserUIDKey, claims[model.UserUIDKey])
		c.Set(model.UserNameKey, claims[model.UserNameKey])

		c.Next()
	}
}
