package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yigit/schooldesk/internal/app/models"
	"github.com/yigit/schooldesk/internal/app/models/dto"
	"github.com/yigit/schooldesk/internal/app/services"
	"github.com/yigit/schooldesk/internal/pkg/apperrors"
	"github.com/yigit/schooldesk/internal/pkg/auth"
)

// Context keys set by JWTAuth
const (
	ContextKeyUserID    = "userID"
	ContextKeyEmail     = "email"
	ContextKeyRoleType  = "roleType"
	ContextKeySessionID = "sessionID"
)

// AuthMiddleware for authentication and authorization
type AuthMiddleware struct {
	jwtService   *auth.JWTService
	sessionCache services.SessionCacheService
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(jwtService *auth.JWTService, sessionCache services.SessionCacheService) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService:   jwtService,
		sessionCache: sessionCache,
	}
}

func abortUnauthorized(c *gin.Context, code dto.ErrorCode, details string) {
	errorDetail := dto.NewErrorDetail(code, "Authentication required").WithDetails(details)
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
}

// tokenFromRequest reads the bearer header, falling back to the token query parameter
// browsers use for websocket upgrades
func tokenFromRequest(c *gin.Context) (string, error) {
	if header := c.GetHeader("Authorization"); header != "" {
		return auth.ExtractBearerToken(header)
	}
	if token := strings.TrimSpace(c.Query("token")); token != "" {
		return token, nil
	}
	return "", auth.ErrInvalidFormat
}

// JWTAuth validates the access token and checks that its session is still live
func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := tokenFromRequest(c)
		if err != nil {
			abortUnauthorized(c, dto.ErrorCodeUnauthorized, "Authorization header missing or malformed")
			return
		}

		claims, err := m.jwtService.ValidateAndExtractClaims(tokenString)
		if err != nil {
			if errors.Is(err, auth.ErrExpiredToken) {
				abortUnauthorized(c, dto.ErrorCodeExpiredToken, "Token has expired")
				return
			}
			abortUnauthorized(c, dto.ErrorCodeInvalidToken, "Invalid token")
			return
		}

		if _, err := m.sessionCache.GetSession(c.Request.Context(), claims.UserID, claims.SessionID); err != nil {
			switch {
			case errors.Is(err, apperrors.ErrTokenExpired):
				abortUnauthorized(c, dto.ErrorCodeExpiredToken, "Session has expired")
			case apperrors.Is(err, apperrors.ErrTokenRevoked, apperrors.ErrSessionNotFound):
				abortUnauthorized(c, dto.ErrorCodeInvalidToken, "Session has been revoked")
			default:
				HandleAPIError(c, err)
				c.Abort()
			}
			return
		}

		c.Set(ContextKeyUserID, claims.UserID)
		c.Set(ContextKeyEmail, claims.Email)
		c.Set(ContextKeyRoleType, claims.RoleType)
		c.Set(ContextKeySessionID, claims.SessionID)

		c.Next()
	}
}

// RoleRequired lets the request through when the caller has one of the roles
func (m *AuthMiddleware) RoleRequired(roles ...models.RoleType) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(ContextKeyRoleType)
		if role == "" {
			abortUnauthorized(c, dto.ErrorCodeUnauthorized, "User role not found")
			return
		}

		for _, r := range roles {
			if string(r) == role {
				c.Next()
				return
			}
		}

		errorDetail := dto.NewErrorDetail(dto.ErrorCodeForbidden, "Access denied").
			WithDetails("You don't have sufficient permissions for this operation")
		c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponse(errorDetail))
	}
}

// GetActor builds the service caller from the values JWTAuth stored
func GetActor(c *gin.Context) services.Actor {
	return services.Actor{
		UserID:    c.GetInt64(ContextKeyUserID),
		Role:      models.RoleType(c.GetString(ContextKeyRoleType)),
		SessionID: c.GetString(ContextKeySessionID),
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
}
