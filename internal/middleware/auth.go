package middleware

import (
	"finlit_backend/internal/config"
	"finlit_backend/internal/model"
	"finlit_backend/internal/util"
	"strings"

	"github.com/gin-gonic/gin"
)

func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return c.Query("token")
}

// AuthMiddleware 强制认证，校验失败直接中断
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		claims, err := util.ParseJWT(tokenString, cfg.JWT.Secret)
		if err != nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		c.Set("user", claims)
		c.Next()
	}
}

// TryAuthMiddleware 可选认证：带合法token则注入用户，否则按游客继续
func TryAuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString != "" {
			if claims, err := util.ParseJWT(tokenString, cfg.JWT.Secret); err == nil {
				c.Set("user", claims)
			}
		}
		c.Next()
	}
}

func RoleMiddleware(roles ...model.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := util.GetUserFromContext(c)
		if user == nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		hasRole := false
		for _, role := range roles {
			// 管理员拥有全部权限
			if user.Role == model.Admin || user.Role == role {
				hasRole = true
				break
			}
		}

		if !hasRole {
			util.Forbidden(c)
			c.Abort()
			return
		}
		c.Next()
	}
}

type UserActivityRepo interface {
	UpdateLastSeen(userID uint) error
}

func ActivityMiddleware(repo UserActivityRepo) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := util.GetUserFromContext(c)
		if claims != nil {
			// 异步更新，不阻塞主流程
			go repo.UpdateLastSeen(claims.UserID)
		}
		c.Next()
	}
}
