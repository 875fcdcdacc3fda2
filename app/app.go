package app

import (
	"context"
	"fmt"
	"time"

	"Gin_postgres_redis_device_inventory/db"
	"Gin_postgres_redis_device_inventory/session"

	"github.com/gin-gonic/gin"
	"github.com/go-webauthn/webauthn/webauthn"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 简化别名，便于 handlers 调用
type H = gin.H

// App 聚合各依赖
type App struct {
	Router *gin.Engine
	DB     *gorm.DB
	RDB    *redis.Client
	WA     *webauthn.WebAuthn
	Config Config
	Log    *zap.Logger

	appSess *session.AppSessionStore
}

func (a *App) AppSessions() *session.AppSessionStore { return a.appSess }

// New 连接 Postgres / Redis，初始化 WebAuthn 和 Gin
func New(cfg Config, log *zap.Logger) (*App, error) {
	// --- DB: Postgres ---
	dbConn, err := db.ConnectDB(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	// --- Redis ---
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPwd, DB: cfg.RedisDB})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}

	// --- WebAuthn RP ---
	wa, err := webauthn.New(&webauthn.Config{
		RPDisplayName: cfg.AppName,
		RPID:          cfg.RPID,
		RPOrigins:     cfg.RPOrigins,
	})
	if err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("webauthn: %w", err)
	}

	if err := RegisterValidators(); err != nil {
		_ = rdb.Close()
		return nil, err
	}

	// --- Gin ---
	r := NewRouter(cfg, log)
	return &App{
		Router: r, DB: dbConn, RDB: rdb, WA: wa, Config: cfg, Log: log,
		appSess: session.NewAppSessionStore(rdb, cfg.AppSessionTTL),
	}, nil
}

// NewRouter 带日志/恢复/CORS 的空路由
func NewRouter(cfg Config, log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(RequestLogger(log), Recovery(log))
	useCORS(r, []string{cfg.WebOrigin})
	return r
}

func (a *App) Close() {
	_ = a.RDB.Close()
	if sqlDB, err := a.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = a.Log.Sync()
}
