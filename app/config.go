package app

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config 从环境变量读取（可选 .env）
type Config struct {
	DatabaseURL string
	RedisAddr   string
	RedisPwd    string
	RedisDB     int

	WebOrigin     string
	RPID          string
	RPOrigins     []string
	SessionTTL    time.Duration // WebAuthn 流程临时数据
	AppSessionTTL time.Duration // 登录会话
	SeenThrottle  time.Duration

	AdminEmails    []string
	BootstrapEmail string

	Port      string
	LogLevel  string
	LogFormat string

	AppName string
	SMTP    SMTPConfig
}

type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// Enabled 未配置 SMTP 时只打印邀请链接
func (s SMTPConfig) Enabled() bool {
	return s.Host != "" && (s.Username != "" || s.From != "")
}

// LoadConfig 先加载 .env（不存在就忽略），再读环境变量
func LoadConfig(envFiles ...string) Config {
	_ = godotenv.Load(envFiles...)
	return configFromEnv()
}

func configFromEnv() Config {
	get := func(k, def string) string {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v
		}
		return def
	}
	seconds := func(k string, def time.Duration) time.Duration {
		if n, err := strconv.Atoi(get(k, "")); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
		return def
	}

	dsn := get("DATABASE_URL", "")
	if dsn == "" {
		dsn = fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
			get("DB_HOST", "127.0.0.1"),
			get("DB_USER", "postgres"),
			get("DB_PASSWORD", "postgres"),
			get("DB_NAME", "inventory"),
			get("DB_PORT", "5432"),
			get("DB_SSLMODE", "disable"),
		)
	}
	redisDB, _ := strconv.Atoi(get("REDIS_DB", "0"))
	webOrigin := get("WEB_ORIGIN", "http://localhost:5173")

	return Config{
		DatabaseURL:    dsn,
		RedisAddr:      get("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPwd:       os.Getenv("REDIS_PASSWORD"),
		RedisDB:        redisDB,
		WebOrigin:      webOrigin,
		RPID:           get("RP_ID", "localhost"),
		RPOrigins:      splitCSV(get("RP_ORIGINS", webOrigin), false),
		SessionTTL:     seconds("SESSION_TTL_SECONDS", 10*time.Minute),
		AppSessionTTL:  seconds("APP_SESSION_TTL_SECONDS", 24*time.Hour),
		SeenThrottle:   seconds("SEEN_THROTTLE_SECONDS", 5*time.Minute),
		AdminEmails:    splitCSV(os.Getenv("ADMIN_EMAILS"), true),
		BootstrapEmail: strings.ToLower(get("BOOTSTRAP_EMAIL", "")),
		Port:           get("PORT", "3001"),
		LogLevel:       get("LOG_LEVEL", "info"),
		LogFormat:      get("LOG_FORMAT", "json"),
		AppName:        get("APP_NAME", "Loaner Inventory"),
		SMTP: SMTPConfig{
			Host:     get("SMTP_HOST", ""),
			Port:     get("SMTP_PORT", "587"),
			Username: get("SMTP_USERNAME", ""),
			Password: get("SMTP_PASSWORD", ""),
			From:     get("SMTP_FROM", ""),
		},
	}
}

func splitCSV(s string, lower bool) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			if lower {
				t = strings.ToLower(t)
			}
			out = append(out, t)
		}
	}
	return out
}
