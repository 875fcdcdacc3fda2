package routes

import (
	"net/http"

	"Gin_postgres_redis_device_inventory/app"
	"Gin_postgres_redis_device_inventory/controllers"
	"Gin_postgres_redis_device_inventory/models"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, a *app.App) {
	s := controllers.GetSrv(a)
	authMW := app.AuthRequired(s.AppSess, s.Repo, a.Config)
	seenMW := app.TouchLastSeen(s.Repo, s.AppSess, a.Config.SeenThrottle, a.Log)
	Register(r, s, authMW, seenMW)
}

// Register 挂全部路由；auth 中间件由调用方给，测试里换成直接注入身份
func Register(r *gin.Engine, s *controllers.Srv, authMW ...gin.HandlerFunc) {
	devCtl := controllers.NewDeviceController(s)
	lendeeCtl := controllers.NewLendeeController(s)
	uc := controllers.GetUserController(s)
	inviteCtl := controllers.GetInviteController(s)

	adminMW := app.AdminOnly()
	statusMW := app.RequirePermission(models.PermChangeDeviceStatus)
	attrsMW := app.RequirePermission(models.PermUpdateDeviceAttributes)

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, app.H{"ok": true}) })

	// ------------------------------
	// WebAuthn（公开+受保护）
	// ------------------------------
	wa := r.Group("/webauthn")
	{
		wa.POST("/register/begin", s.BeginRegistration)
		wa.POST("/register/finish", s.FinishRegistration)

		wa.POST("/login/begin", s.BeginLogin)
		wa.POST("/login/finish", s.FinishLogin)
	}
	waAuth := wa.Group("", authMW...)
	{
		waAuth.GET("/whoami", uc.WhoAmI)
		waAuth.POST("/logout", s.Logout)
	}

	// 已登录用户添加新凭据（绑定手机等）
	creds := r.Group("/api/credentials", authMW...)
	{
		creds.POST("/add/begin", s.BeginAddCredential)
		creds.POST("/add/finish", s.FinishAddCredential)
	}

	// ------------------------------
	// 设备
	// ------------------------------
	api := r.Group("/api", authMW...)
	api.GET("/kinds", devCtl.ListKinds)

	devices := api.Group("/devices")
	{
		devices.GET("", devCtl.ListDevices) // ?kind=&status=&q=&page=&size=
		devices.GET("/export.xlsx", devCtl.ExportDevices)
		devices.GET("/:id", devCtl.GetDevice)
		devices.GET("/:id/history", devCtl.DeviceHistory)

		devices.POST("", attrsMW, devCtl.CreateDevice)
		devices.PATCH("/:id", attrsMW, devCtl.UpdateDevice)
		devices.DELETE("/:id", attrsMW, devCtl.DeleteDevice)

		devices.POST("/:id/checkout", statusMW, devCtl.CheckOut)
		devices.POST("/:id/checkin", statusMW, devCtl.CheckIn)
	}

	lendees := api.Group("/lendees")
	{
		lendees.GET("", lendeeCtl.ListLendees)
		lendees.GET("/:id", lendeeCtl.GetLendee)
		lendees.POST("", statusMW, lendeeCtl.CreateLendee)
	}

	// ------------------------------
	// 员工管理（仅管理员）
	// ------------------------------
	adminChain := append(append([]gin.HandlerFunc{}, authMW...), adminMW)
	admin := r.Group("/admin", adminChain...)
	{
		admin.POST("/invites", inviteCtl.CreateInvite)
		admin.POST("/users", uc.CreateUser)
	}
	users := api.Group("/users", adminMW)
	{
		users.GET("", uc.ListUsers) // ?q=&page=&size=
		users.GET("/:id", uc.GetUser)
		users.PATCH("/:id/role", uc.SetRole)
		users.DELETE("/:id", uc.DeleteUser)
	}
}
