package middleware

import (
	"errors"
	"strings"

	"homefix_backend/internal/auth"
	"homefix_backend/internal/logger"
	"homefix_backend/internal/models"
	"homefix_backend/pkg/apperrors"
	"homefix_backend/pkg/contextkeys"

	"github.com/gin-gonic/gin"
)

// TokenParser — проверка bearer токена (auth.TokenManager)
type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

// AuthMiddleware — middleware проверки JWT
func AuthMiddleware(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			apperrors.HandleError(c, apperrors.NewUnauthorizedError("Authorization header missing or invalid"))
			return
		}

		claims, err := tokens.Parse(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			if errors.Is(err, auth.ErrTokenExpired) {
				apperrors.HandleError(c, apperrors.ErrTokenExpired)
				return
			}
			apperrors.HandleError(c, apperrors.ErrInvalidToken)
			return
		}

		c.Set(contextkeys.UserIDKey, claims.UserID)
		c.Set(contextkeys.RoleKey, claims.Role)
		c.Request = c.Request.WithContext(logger.WithUserID(c.Request.Context(), claims.UserID))
		c.Next()
	}
}

// RequireRoles - middleware для проверки нескольких возможных ролей
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	roleSet := make(map[models.UserRole]bool, len(roles))
	for _, r := range roles {
		roleSet[r] = true
	}

	return func(c *gin.Context) {
		role, ok := GetRole(c)
		if !ok || !roleSet[role] {
			apperrors.HandleError(c, apperrors.ErrNotAuthorized)
			return
		}
		c.Next()
	}
}

// RequirePermission — проверка по таблице auth.Permissions
func RequirePermission(permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := GetRole(c)
		if !ok || !auth.HasPermission(role, permission) {
			logger.CtxWarn(c.Request.Context(), "permission denied",
				"permission", permission,
				"role", role,
				"path", c.Request.URL.Path)
			apperrors.HandleError(c, apperrors.ErrNotAuthorized)
			return
		}
		c.Next()
	}
}

// GetUserID извлекает ID пользователя из контекста
func GetUserID(c *gin.Context) string {
	return c.GetString(contextkeys.UserIDKey)
}

func GetRole(c *gin.Context) (models.UserRole, bool) {
	val, exists := c.Get(contextkeys.RoleKey)
	if !exists {
		return "", false
	}
	switch role := val.(type) {
	case models.UserRole:
		return role, true
	case string:
		return models.UserRole(role), true
	}
	return "", false
}
