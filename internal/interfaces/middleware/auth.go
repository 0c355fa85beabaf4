package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/crewhq/backend/pkg/auth"
	"github.com/crewhq/backend/pkg/constants"
)

// RequireAuth is a middleware that validates JWT bearer tokens. Tokens are
// minted by the identity collaborator; this service only verifies them and
// places the user session in the gin context.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(constants.HeaderAuthorization)
		if authHeader == "" {
			abortUnauthorized(c, "No authorization token provided")
			return
		}

		// Extract token (format: "Bearer <token>")
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			abortUnauthorized(c, "Invalid authorization header format")
			return
		}

		claims, err := auth.ValidateToken(parts[1])
		if err != nil {
			abortUnauthorized(c, err.Error())
			return
		}

		c.Set(constants.ContextKeyUser, claims.User)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, gin.H{
		constants.ResponseError: "Unauthorized",
		constants.FieldMessage:  message,
		"code":                  "UNAUTHORIZED",
		"data":                  nil,
	})
	c.Abort()
}
