package controllers

import (
	"fmt"
	"net/http"
	"net/smtp"
	"strings"

	"Gin_postgres_redis_device_inventory/app"
	"Gin_postgres_redis_device_inventory/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type InviteController struct{ *Srv }

// 用 *Srv 作为依赖入口
func GetInviteController(s *Srv) *InviteController { return &InviteController{Srv: s} }

// POST /admin/invites
func (ic *InviteController) CreateInvite(c *gin.Context) {
	var in struct {
		Email   string `json:"email" binding:"required,email"`
		Role    string `json:"role" binding:"omitempty,user_role"`
		Expires int    `json:"expiresDays"` // 默认 1 天
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		bindError(c, err)
		return
	}
	role := models.RoleReader
	if in.Role != "" {
		role, _ = models.ParseRole(in.Role)
	}

	inv, link, err := ic.createInvite(c.Request.Context(), strings.ToLower(in.Email), role, in.Expires, app.CurrentUsername(c))
	if err != nil {
		ic.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, app.H{
		"link":   link, // 方便开发环境直接点
		"invite": inv,
	})
}

// -------------------- 邮件发送 --------------------

type InviteMailer interface {
	SendInvite(toEmail, link string, expiresDays int) error
}

type smtpMailer struct {
	conf    app.SMTPConfig
	appName string
	log     *zap.Logger
}

func NewSMTPMailer(cfg app.Config, log *zap.Logger) InviteMailer {
	return &smtpMailer{conf: cfg.SMTP, appName: cfg.AppName, log: log}
}

func (m *smtpMailer) SendInvite(toEmail, link string, expiresDays int) error {
	// 未配置 SMTP → 开发模式：打印即可，不报错
	if !m.conf.Enabled() {
		m.log.Info("invite link (smtp disabled)",
			zap.String("email", toEmail),
			zap.String("link", link),
			zap.Int("expires_days", expiresDays),
		)
		return nil
	}

	fromAddr := m.conf.From
	if fromAddr == "" {
		fromAddr = m.conf.Username
	}

	subject := fmt.Sprintf("%s Invitation", m.appName)
	htmlBody := fmt.Sprintf(`
<div style="font-family:Arial,sans-serif; font-size:14px; color:#222">
  <p>Hello,</p>
  <p>You have been added to <b>%s</b>. Click the button below to create your passkey and sign in:</p>
  <p>
    <a href="%s" style="display:inline-block; padding:10px 16px; background:#2563EB; color:#fff; text-decoration:none; border-radius:6px;">
      Accept Invitation
    </a>
  </p>
  <p>Or open this link directly:</p>
  <p><a href="%s">%s</a></p>
  <p>This invitation will expire in %d day(s).</p>
</div>
`, m.appName, link, link, link, expiresDays)

	msg := buildMIMEWithFromName(m.appName, fromAddr, toEmail, subject, htmlBody)

	auth := smtp.PlainAuth("", m.conf.Username, m.conf.Password, m.conf.Host)
	addr := m.conf.Host + ":" + m.conf.Port
	return smtp.SendMail(addr, auth, fromAddr, []string{toEmail}, []byte(msg))
}

func buildMIMEWithFromName(fromName, fromAddr, to, subject, html string) string {
	headers := []string{
		fmt.Sprintf("From: %s <%s>", fromName, fromAddr),
		fmt.Sprintf("To: %s", to),
		fmt.Sprintf("Subject: %s", subject),
		"MIME-Version: 1.0",
		"Content-Type: text/html; charset=UTF-8",
	}
	return strings.Join(headers, "\r\n") + "\r\n\r\n" + html
}
