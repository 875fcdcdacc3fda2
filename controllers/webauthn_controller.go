// controllers/webauthn_controller.go
package controllers

import (
	"context"
	"net/http"
	"time"

	"Gin_postgres_redis_device_inventory/app"

	"github.com/gin-gonic/gin"
	"github.com/go-webauthn/webauthn/protocol"
	"github.com/go-webauthn/webauthn/webauthn"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const waTimeout = 3 * time.Second

func registrationOpts() []webauthn.RegistrationOption {
	return []webauthn.RegistrationOption{
		webauthn.WithResidentKeyRequirement(protocol.ResidentKeyRequirementRequired),
		webauthn.WithAuthenticatorSelection(protocol.AuthenticatorSelection{
			UserVerification: protocol.VerificationRequired,
		}),
	}
}

// ===== 注册（邀请制） =====

func (s *Srv) BeginRegistration(c *gin.Context) {
	var in struct {
		InviteToken string `json:"inviteToken" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		bindError(c, err)
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), waTimeout)
	defer cancel()

	inv, err := s.Repo.GetInviteByToken(ctx, in.InviteToken)
	if err != nil || !inv.Usable(time.Now()) {
		c.JSON(http.StatusForbidden, app.H{"error": "invalid or expired invite"})
		return
	}

	// 用户名 = 邀请邮箱；管理员预建的账号直接复用，否则按邀请角色新建
	u, err := s.Repo.FindOrCreateUser(ctx, inv.Email, uuid.NewString(), inv.Role)
	if err != nil {
		s.writeError(c, err)
		return
	}

	opts, sd, err := s.WA.BeginRegistration(s.waUserFor(ctx, u), registrationOpts()...)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if err := s.Sess.SaveRegByToken(ctx, in.InviteToken, sd); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"opts": opts})
}

func (s *Srv) FinishRegistration(c *gin.Context) {
	token := c.Query("inviteToken")
	if token == "" {
		c.JSON(http.StatusBadRequest, app.H{"error": "missing inviteToken"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), waTimeout)
	defer cancel()
	inv, err := s.Repo.GetInviteByToken(ctx, token)
	if err != nil || !inv.Usable(time.Now()) {
		c.JSON(http.StatusForbidden, app.H{"error": "invalid or expired invite"})
		return
	}
	wUser, err := s.loadWAUserByUsername(ctx, inv.Email)
	if err != nil {
		s.writeError(c, err)
		return
	}

	sd, err := s.Sess.LoadRegByToken(ctx, token)
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "session expired or invalid"})
		return
	}

	cred, err := s.WA.FinishRegistration(wUser, *sd, c.Request)
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	if err := s.Repo.AddCredential(ctx, fromWaCred(wUser.user.ID, cred)); err != nil {
		s.writeError(c, err)
		return
	}
	s.Sess.DelRegByToken(ctx, token)
	if err := s.Repo.MarkInviteUsed(ctx, token); err != nil {
		s.Log.Warn("mark invite used failed", zap.String("email", inv.Email), zap.Error(err))
	}

	// 注册即登录
	if err := s.issueSession(ctx, c.Writer, wUser.user.ID, c.ClientIP(), c.Request.UserAgent()); err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": "create app session failed"})
		return
	}
	s.Log.Info("passkey registered", zap.String("user_id", wUser.user.ID), zap.String("email", inv.Email))
	c.JSON(http.StatusOK, app.H{"ok": true, "username": wUser.user.Username})
}

// ===== 添加新凭据（已登录） =====

func (s *Srv) BeginAddCredential(c *gin.Context) {
	uid, _ := app.CurrentUserID(c)
	ctx, cancel := context.WithTimeout(c.Request.Context(), waTimeout)
	defer cancel()

	wUser, err := s.loadWAUserByID(ctx, uid)
	if err != nil {
		c.JSON(http.StatusUnauthorized, app.H{"error": "unauthorized"})
		return
	}

	opts, sd, err := s.WA.BeginRegistration(wUser, registrationOpts()...)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if err := s.Sess.SaveReg(ctx, wUser.user.Username, sd); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"opts": opts})
}

func (s *Srv) FinishAddCredential(c *gin.Context) {
	uid, _ := app.CurrentUserID(c)
	ctx, cancel := context.WithTimeout(c.Request.Context(), waTimeout)
	defer cancel()

	wUser, err := s.loadWAUserByID(ctx, uid)
	if err != nil {
		c.JSON(http.StatusUnauthorized, app.H{"error": "unauthorized"})
		return
	}

	sd, err := s.Sess.LoadReg(ctx, wUser.user.Username)
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "session expired or invalid"})
		return
	}

	cred, err := s.WA.FinishRegistration(wUser, *sd, c.Request)
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	if err := s.Repo.AddCredential(ctx, fromWaCred(wUser.user.ID, cred)); err != nil {
		s.writeError(c, err)
		return
	}
	s.Sess.DelReg(ctx, wUser.user.Username)
	c.JSON(http.StatusOK, app.H{"ok": true})
}

// ===== 登录 =====

type loginBeginReq struct {
	Username     string `json:"username"`
	Discoverable bool   `json:"discoverable"`
}
type loginBeginResp struct {
	Options   *protocol.CredentialAssertion `json:"options"`
	SessionID string                        `json:"sessionId"`
}

func (s *Srv) BeginLogin(c *gin.Context) {
	var req loginBeginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "bad request"})
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), waTimeout)
	defer cancel()

	var (
		opts *protocol.CredentialAssertion
		sd   *webauthn.SessionData
		err  error
	)
	if req.Discoverable {
		opts, sd, err = s.WA.BeginDiscoverableLogin(webauthn.WithUserVerification(protocol.VerificationRequired))
	} else {
		wUser, err2 := s.loadWAUserByUsername(ctx, req.Username)
		if err2 != nil {
			s.writeError(c, err2)
			return
		}
		opts, sd, err = s.WA.BeginLogin(wUser, webauthn.WithUserVerification(protocol.VerificationRequired))
	}
	if err != nil {
		s.writeError(c, err)
		return
	}

	sid := uuid.NewString()
	if err := s.Sess.SaveAuth(ctx, sid, sd); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, loginBeginResp{Options: opts, SessionID: sid})
}

func (s *Srv) FinishLogin(c *gin.Context) {
	sid := c.Query("sessionId")
	if sid == "" {
		c.JSON(http.StatusBadRequest, app.H{"error": "missing sessionId"})
		return
	}
	ip, ua := c.ClientIP(), c.Request.UserAgent()

	ctx, cancel := context.WithTimeout(c.Request.Context(), waTimeout)
	defer cancel()
	sd, err := s.Sess.LoadAuth(ctx, sid)
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "session expired or invalid"})
		return
	}

	var (
		userID string
		cred   *webauthn.Credential
	)
	if username := c.Query("username"); username != "" {
		wUser, err := s.loadWAUserByUsername(ctx, username)
		if err != nil {
			s.writeError(c, err)
			return
		}
		if cred, err = s.WA.FinishLogin(wUser, *sd, c.Request); err != nil {
			c.JSON(http.StatusUnauthorized, app.H{"error": err.Error()})
			return
		}
		userID = wUser.user.ID
	} else {
		handler := func(rawID, _ []byte) (webauthn.User, error) {
			u, _, err := s.Repo.FindUserByCredentialID(ctx, rawID)
			if err != nil {
				return nil, protocol.ErrBadRequest.WithDetails("credential not found")
			}
			return s.waUserFor(ctx, u), nil
		}
		user, c2, err := s.WA.FinishPasskeyLogin(handler, *sd, c.Request)
		if err != nil {
			c.JSON(http.StatusUnauthorized, app.H{"error": err.Error()})
			return
		}
		userID = user.(*waUser).user.ID
		cred = c2
	}
	if err := s.Repo.UpdateCredentialCounter(ctx, cred.ID, cred.Authenticator.SignCount, cred.Authenticator.CloneWarning); err != nil {
		s.Log.Warn("update sign count failed", zap.String("user_id", userID), zap.Error(err))
	}
	if cred.Authenticator.CloneWarning {
		s.Log.Warn("authenticator clone warning", zap.String("user_id", userID))
	}
	_ = s.Repo.TouchCredentialUsed(ctx, cred.ID)
	s.Sess.DelAuth(ctx, sid)

	if err := s.issueSession(ctx, c.Writer, userID, ip, ua); err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": "create app session failed"})
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true, "redirect": "/devices"})
}

// POST /webauthn/logout 删 Redis 会话，Cookie 置空
func (s *Srv) Logout(c *gin.Context) {
	if ck, err := c.Request.Cookie(app.AppSessionCookie); err == nil && ck.Value != "" {
		_ = s.AppSess.Delete(c.Request.Context(), ck.Value)
	}
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     app.AppSessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   s.secureCookie(),
	})
	c.JSON(http.StatusOK, app.H{"ok": true})
}
