package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/himfirm/backend/internal/domain/identity"
	"github.com/himfirm/backend/internal/infrastructure/auth"
	"github.com/himfirm/backend/internal/interfaces/http/dto"
)

const (
	// ContextKeyActor is the gin context key holding the authenticated actor
	ContextKeyActor = "auth_actor"

	bearerPrefix = "Bearer "
)

// AuthConfig configures the authentication middleware
type AuthConfig struct {
	TokenService *auth.TokenService
	SkipPaths    []string
}

// Auth validates the bearer token and stores the actor in the context
func Auth(cfg AuthConfig) gin.HandlerFunc {
	skip := make(map[string]bool, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = true
	}

	return func(c *gin.Context) {
		if skip[c.Request.URL.Path] {
			c.Next()
			return
		}

		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, bearerPrefix) {
			abortUnauthorized(c, "MISSING_TOKEN", "Authorization header with bearer token is required")
			return
		}

		claims, err := cfg.TokenService.ValidateAccessToken(strings.TrimPrefix(header, bearerPrefix))
		if err != nil {
			handleAuthError(c, err)
			return
		}

		actor, err := claims.Actor()
		if err != nil {
			abortUnauthorized(c, "INVALID_CLAIMS", "Token claims are not valid")
			return
		}

		c.Set(ContextKeyActor, actor)
		c.Next()
	}
}

// GetActor returns the authenticated actor from the gin context
func GetActor(c *gin.Context) (identity.Actor, bool) {
	value, exists := c.Get(ContextKeyActor)
	if !exists {
		return identity.Actor{}, false
	}
	actor, ok := value.(identity.Actor)
	return actor, ok
}

func handleAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		abortUnauthorized(c, "TOKEN_EXPIRED", "Token has expired")
	case errors.Is(err, auth.ErrInvalidTokenType):
		abortUnauthorized(c, "INVALID_TOKEN_TYPE", "An access token is required")
	default:
		abortUnauthorized(c, "INVALID_TOKEN", "Token is not valid")
	}
}

func abortUnauthorized(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(code, message))
}
