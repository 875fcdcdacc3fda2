// app/bootstrap.go
package app

import (
	"context"
	"fmt"
	"time"

	"Gin_postgres_redis_device_inventory/db"
	"Gin_postgres_redis_device_inventory/models"

	"go.uber.org/zap"
)

// InviteLink 前端注册页
func InviteLink(webOrigin, token string) string {
	return fmt.Sprintf("%s/login?inviteToken=%s", webOrigin, token)
}

// BootstrapFirstAdmin 还没有管理员时给 BOOTSTRAP_EMAIL 发一个管理员邀请，返回链接
func BootstrapFirstAdmin(ctx context.Context, cfg Config, repo *db.Repo, log *zap.Logger) (string, error) {
	if cfg.BootstrapEmail == "" {
		return "", nil
	}
	n, err := repo.CountAdmins(ctx)
	if err != nil {
		return "", fmt.Errorf("count admins: %w", err)
	}
	if n > 0 {
		log.Info("admin exists, skip bootstrap", zap.Int64("admins", n))
		return "", nil
	}

	token := NewToken()
	if _, err := repo.CreateInvite(ctx, cfg.BootstrapEmail, token, models.RoleAdmin, time.Now().Add(24*time.Hour), "bootstrap"); err != nil {
		return "", fmt.Errorf("bootstrap invite: %w", err)
	}

	link := InviteLink(cfg.WebOrigin, token)
	log.Info("no admin found, created admin invite",
		zap.String("email", cfg.BootstrapEmail),
		zap.String("link", link),
	)
	return link, nil
}
