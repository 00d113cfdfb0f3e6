package middleware

import (
	"strings"
	"survey_backend/internal/model"
	"survey_backend/internal/service"
	"survey_backend/internal/util"
	"survey_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthMiddleware 校验外部签发的 Bearer Token，并把 Claims 放入上下文；issuer 为空时不校验 iss
func AuthMiddleware(secret, issuer string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
		}

		if tokenString == "" {
			tokenString = c.Query("token")
		}

		if tokenString == "" {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		claims, err := util.ParseJWT(tokenString, secret, issuer)
		if err != nil {
			logger.Log.Debug("jwt rejected", zap.Error(err))
			util.Unauthorized(c)
			c.Abort()
			return
		}

		c.Set("user", claims)
		c.Next()
	}
}

// RequirePermission 在进入 controller 之前做服务端权限判定
func RequirePermission(policy *service.Policy, perm model.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := util.GetUserFromContext(c)
		if user == nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		if err := policy.Check(user, perm); err != nil {
			logger.Log.Info("permission denied",
				zap.String("user", user.UserRef()),
				zap.String("role", user.Role),
				zap.String("permission", string(perm)),
			)
			util.Forbidden(c)
			c.Abort()
			return
		}
		c.Next()
	}
}
