// Authentication middleware.
// Checks for a valid bearer token in the Authorization header. If valid, the
// decoded identity is stored in the request context for handlers downstream.
package routes

import (
	"log/slog"
	"strings"

	"room-access-control/internal/identity"
	. "room-access-control/internal/jwt"

	"github.com/gin-gonic/gin"
)

const identityContextKey = "identity"

// bearerToken extracts the token from an "Authorization: Bearer ..." header.
func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", false
	}
	return token, true
}

// CurrentIdentity returns the authenticated identity set by AuthMiddleware.
// The zero identity means the request was not authenticated.
func CurrentIdentity(c *gin.Context) identity.Identity {
	val, exists := c.Get(identityContextKey)
	if !exists {
		return identity.Identity{}
	}
	id, ok := val.(identity.Identity)
	if !ok {
		slog.Warn("Identity in context has unexpected type")
		return identity.Identity{}
	}
	return id
}

// AuthMiddleware rejects requests without a valid bearer token and stores
// the token's identity in the context.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		claims, err := DecodeAuthJWT(token)
		if err != nil {
			slog.Warn("AuthMiddleware: Invalid auth token", "error", err)
			AbortWithError(c, ErrNonValidToken)
			return
		}

		c.Set(identityContextKey, identity.Identity{
			SubjectID: claims.UserID,
			Email:     claims.Email,
			Role:      claims.Role,
		})
		c.Next()
	}
}
