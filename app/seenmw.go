// app/seenmw.go
package app

import (
	"time"

	"Gin_postgres_redis_device_inventory/db"
	"Gin_postgres_redis_device_inventory/session"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TouchLastSeen 节流写 last_seen_at，失败不阻塞请求
func TouchLastSeen(repo *db.Repo, appSess *session.AppSessionStore, throttle time.Duration, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, ok := CurrentUserID(c)
		if !ok {
			c.Next()
			return
		}
		first, err := appSess.MarkSeen(c.Request.Context(), uid, throttle)
		if err != nil {
			log.Debug("mark seen failed", zap.String("user_id", uid), zap.Error(err))
		}
		if first {
			if err := repo.TouchUserSeen(c.Request.Context(), uid); err != nil {
				log.Warn("touch user seen failed", zap.String("user_id", uid), zap.Error(err))
			}
		}
		c.Next()
	}
}
