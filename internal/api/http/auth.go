package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const tokenContextKey = "authToken"

// AuthRequired pulls the opaque bearer token out of the Authorization header.
// Whether the token resolves to a user is up to the service layer.
func AuthRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		header := ctx.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid credential"})
			return
		}
		ctx.Set(tokenContextKey, token)
		ctx.Next()
	}
}

func authToken(ctx *gin.Context) string {
	return ctx.GetString(tokenContextKey)
}
