package app

import (
	"net/http"

	"Gin_postgres_redis_device_inventory/db"
	"Gin_postgres_redis_device_inventory/models"
	"Gin_postgres_redis_device_inventory/session"

	"github.com/gin-gonic/gin"
)

const AppSessionCookie = "app_session"

const (
	ctxUserID   = "userID"
	ctxUsername = "username"
	ctxRole     = "role"
)

func AuthRequired(appSess *session.AppSessionStore, repo *db.Repo, cfg Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ck, err := c.Request.Cookie(AppSessionCookie)
		if err != nil || ck.Value == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized"})
			return
		}
		as, err := appSess.Get(c.Request.Context(), ck.Value)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "invalid session"})
			return
		}

		// 确认用户仍存在，角色只解析一次
		u, err := repo.FindUserByID(c.Request.Context(), as.UserID)
		if err != nil {
			_ = appSess.Delete(c.Request.Context(), ck.Value)
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized"})
			return
		}
		SetActor(c, u.ID, u.Username, u.EffectiveRole(cfg.AdminEmails))
		c.Next()
	}
}

// SetActor 写入当前员工；测试里也直接用它
func SetActor(c *gin.Context, userID, username string, role models.Role) {
	c.Set(ctxUserID, userID)
	c.Set(ctxUsername, username)
	c.Set(ctxRole, role)
}

func CurrentUserID(c *gin.Context) (string, bool) {
	uid := c.GetString(ctxUserID)
	return uid, uid != ""
}

func CurrentUsername(c *gin.Context) string { return c.GetString(ctxUsername) }

func CurrentRole(c *gin.Context) models.Role {
	if v, ok := c.Get(ctxRole); ok {
		if r, ok := v.(models.Role); ok {
			return r
		}
	}
	return models.RoleReader
}

// RequirePermission 必须放在 AuthRequired 之后
func RequirePermission(p models.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentUserID(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized"})
			return
		}
		if !CurrentRole(c).Can(p) {
			c.AbortWithStatusJSON(http.StatusForbidden, H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}

func AdminOnly() gin.HandlerFunc { return RequirePermission(models.PermManageUsers) }
