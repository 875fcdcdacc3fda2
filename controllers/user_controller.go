package controllers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"Gin_postgres_redis_device_inventory/app"
	"Gin_postgres_redis_device_inventory/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type UserController struct{ *Srv }

func GetUserController(s *Srv) *UserController { return &UserController{Srv: s} }

type userView struct {
	models.User
	EffectiveRole models.Role         `json:"effectiveRole"`
	Permissions   []models.Permission `json:"permissions"`
}

func (uc *UserController) view(u models.User) userView {
	role := u.EffectiveRole(uc.Cfg.AdminEmails)
	return userView{User: u, EffectiveRole: role, Permissions: role.Permissions()}
}

// GET /webauthn/whoami
func (uc *UserController) WhoAmI(c *gin.Context) {
	uid, ok := app.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, app.H{"error": "unauthorized"})
		return
	}
	u, err := uc.Repo.FindUserByID(c.Request.Context(), uid)
	if err != nil {
		uc.writeError(c, err)
		return
	}
	credCount, _ := uc.Repo.CountCredentials(c.Request.Context(), uid)
	c.JSON(http.StatusOK, app.H{"user": uc.view(*u), "credentials": credCount})
}

// GET /api/users?q=alice&page=1&size=20
func (uc *UserController) ListUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))

	res, err := uc.Repo.ListUsers(c.Request.Context(), c.Query("q"), page, size)
	if err != nil {
		uc.writeError(c, err)
		return
	}
	users := make([]userView, 0, len(res.Users))
	for _, u := range res.Users {
		users = append(users, uc.view(u))
	}
	c.JSON(http.StatusOK, app.H{
		"total": res.Total,
		"users": users,
	})
}

// GET /api/users/:id
func (uc *UserController) GetUser(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid uuid"})
		return
	}
	user, err := uc.Repo.FindUserByID(c.Request.Context(), id)
	if err != nil {
		uc.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"user": uc.view(*user)})
}

// POST /admin/users 建账号 + 发注册邀请
func (uc *UserController) CreateUser(c *gin.Context) {
	var in struct {
		Email     string `json:"email" binding:"required,email"`
		FirstName string `json:"firstName" binding:"required,max=100"`
		LastName  string `json:"lastName" binding:"required,max=100"`
		Role      string `json:"role" binding:"omitempty,user_role"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		bindError(c, err)
		return
	}
	role := models.RoleReader
	if in.Role != "" {
		role, _ = models.ParseRole(in.Role)
	}
	ctx := c.Request.Context()
	email := strings.ToLower(strings.TrimSpace(in.Email))

	if _, err := uc.Repo.FindUserByUsername(ctx, email); err == nil {
		badFields(c, map[string]string{"email": "A user with this email already exists."})
		return
	}
	u := &models.User{
		ID:        uuid.NewString(),
		Username:  email,
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Role:      role,
	}
	if err := uc.Repo.CreateUser(ctx, u); err != nil {
		uc.writeError(c, err)
		return
	}

	actor := app.CurrentUsername(c)
	inv, link, err := uc.createInvite(ctx, email, role, 1, actor)
	if err != nil {
		uc.writeError(c, err)
		return
	}
	uc.Log.Info("user created", zap.String("email", email), zap.String("role", string(role)), zap.String("by", actor))

	c.JSON(http.StatusCreated, app.H{
		"message": "Successfully created user: " + email,
		"user":    uc.view(*u),
		"invite":  inv,
		"link":    link,
	})
}

// PATCH /api/users/:id/role
func (uc *UserController) SetRole(c *gin.Context) {
	var in struct {
		Role string `json:"role" binding:"required,user_role"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		bindError(c, err)
		return
	}
	role, _ := models.ParseRole(in.Role)
	id := c.Param("id")
	if err := uc.Repo.SetUserRole(c.Request.Context(), id, role); err != nil {
		uc.writeError(c, err)
		return
	}
	u, err := uc.Repo.FindUserByID(c.Request.Context(), id)
	if err != nil {
		uc.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"user": uc.view(*u)})
}

// DELETE /api/users/:id
func (uc *UserController) DeleteUser(c *gin.Context) {
	id := c.Param("id")

	// 不允许删除自己，避免锁死
	if uid, _ := app.CurrentUserID(c); uid == id {
		c.JSON(http.StatusBadRequest, app.H{"error": "cannot delete yourself"})
		return
	}

	ctx := c.Request.Context()
	target, err := uc.Repo.FindUserByID(ctx, id)
	if err != nil {
		uc.writeError(c, err)
		return
	}
	if target.EffectiveRole(uc.Cfg.AdminEmails) == models.RoleAdmin {
		c.JSON(http.StatusForbidden, app.H{"error": "cannot delete an admin"})
		return
	}

	if err := uc.Repo.DeleteUserByID(ctx, id); err != nil {
		uc.writeError(c, err)
		return
	}
	// 撤销该用户的所有登录会话
	if uc.AppSess != nil {
		if err := uc.AppSess.RevokeAllForUser(ctx, id); err != nil {
			uc.Log.Warn("revoke sessions failed", zap.String("user_id", id), zap.Error(err))
		}
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}

// createInvite 落库 + 发邮件；邮件失败只记日志
func (s *Srv) createInvite(ctx context.Context, email string, role models.Role, days int, createdBy string) (*models.Invite, string, error) {
	if days <= 0 {
		days = 1
	}
	token := app.NewToken()
	inv, err := s.Repo.CreateInvite(ctx, email, token, role, time.Now().AddDate(0, 0, days), createdBy)
	if err != nil {
		return nil, "", err
	}
	link := app.InviteLink(strings.TrimRight(s.Cfg.WebOrigin, "/"), token)
	if s.Mailer != nil {
		if err := s.Mailer.SendInvite(email, link, days); err != nil {
			s.Log.Warn("send invite mail failed", zap.String("email", email), zap.Error(err))
		}
	}
	return inv, link, nil
}
