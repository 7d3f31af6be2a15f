package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/mobile-garage/internal/apperr"
	"github.com/ukydev/mobile-garage/internal/auth"
	"github.com/ukydev/mobile-garage/internal/models"
)

// Gin context keys.
const (
	ClaimsKey    = "claims"
	PrincipalKey = "principal"
)

// AuthMiddleware provides JWT authentication middleware
type AuthMiddleware struct {
	authService *auth.Service
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(authService *auth.Service) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
	}
}

// Abort stops the chain and writes err as the JSON error body.
func Abort(c *gin.Context, err *apperr.Error) {
	c.AbortWithStatusJSON(err.HTTPStatus(), err.Body())
}

// Authenticate validates the bearer token and stores the caller's claims and
// principal in the gin context.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Extract token from Authorization header
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			Abort(c, apperr.Unauthenticated("Authorization header required"))
			return
		}
		token, err := m.authService.ExtractTokenFromHeader(authHeader)
		if err != nil {
			Abort(c, apperr.Unauthenticated("Invalid authorization header format"))
			return
		}

		// Validate token
		claims, err := m.authService.ValidateToken(c.Request.Context(), token)
		switch {
		case err == nil:
		case errors.Is(err, auth.ErrExpiredToken):
			Abort(c, apperr.Unauthenticated("Token has expired"))
			return
		case errors.Is(err, auth.ErrRevokedToken):
			Abort(c, apperr.Unauthenticated("Token has been revoked"))
			return
		case errors.Is(err, auth.ErrInvalidToken):
			Abort(c, apperr.Unauthenticated("Invalid token"))
			return
		default:
			log.WithError(err).Error("token validation failed")
			Abort(c, apperr.From(err))
			return
		}

		principal, err := claims.Principal()
		if err != nil {
			Abort(c, apperr.Unauthenticated("Invalid token"))
			return
		}

		c.Set(ClaimsKey, claims)
		c.Set(PrincipalKey, principal)
		c.Next()
	}
}

// RequireRole rejects callers whose role is not one of roles. It must run
// after Authenticate.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := PrincipalFrom(c)
		if !ok {
			Abort(c, apperr.Unauthenticated("User context not found"))
			return
		}
		if !models.HasRole(p, roles...) {
			log.WithFields(log.Fields{
				"user_id":  p.UserID(),
				"role":     p.Role(),
				"required": roles,
				"path":     c.FullPath(),
			}).Debug("role check failed")
			Abort(c, apperr.Forbidden("Insufficient permissions"))
			return
		}
		c.Next()
	}
}

// PrincipalFrom returns the authenticated caller.
func PrincipalFrom(c *gin.Context) (models.Principal, bool) {
	v, ok := c.Get(PrincipalKey)
	if !ok {
		return nil, false
	}
	p, ok := v.(models.Principal)
	return p, ok
}

// ClaimsFrom returns the validated token claims.
func ClaimsFrom(c *gin.Context) (*models.Claims, bool) {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*models.Claims)
	return claims, ok
}
