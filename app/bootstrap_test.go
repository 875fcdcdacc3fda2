package app

import (
	"context"
	"strings"
	"testing"

	"Gin_postgres_redis_device_inventory/db"
	"Gin_postgres_redis_device_inventory/db/dbtest"
	"Gin_postgres_redis_device_inventory/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestBootstrapFirstAdmin(t *testing.T) {
	repo := db.NewRepo(dbtest.Open(t))
	ctx := context.Background()
	cfg := Config{WebOrigin: "https://inv.example.com", BootstrapEmail: "first@example.com"}

	link, err := BootstrapFirstAdmin(ctx, Config{}, repo, zap.NewNop())
	require.NoError(t, err)
	assert.Empty(t, link)

	link, err = BootstrapFirstAdmin(ctx, cfg, repo, zap.NewNop())
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(link, "https://inv.example.com/login?inviteToken="))

	token := strings.TrimPrefix(link, "https://inv.example.com/login?inviteToken=")
	inv, err := repo.GetInviteByToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, inv.Role)
	assert.Equal(t, "first@example.com", inv.Email)

	// 已有管理员后不再生成
	require.NoError(t, repo.CreateUser(ctx, &models.User{ID: uuid.NewString(), Username: "boss@example.com", Role: models.RoleAdmin}))
	link, err = BootstrapFirstAdmin(ctx, cfg, repo, zap.NewNop())
	require.NoError(t, err)
	assert.Empty(t, link)
}
