// controllers/device_controller.go
package controllers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"Gin_postgres_redis_device_inventory/app"
	"Gin_postgres_redis_device_inventory/db"
	"Gin_postgres_redis_device_inventory/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type DeviceController struct{ *Srv }

func NewDeviceController(s *Srv) *DeviceController { return &DeviceController{Srv: s} }

type optionView struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

type kindView struct {
	models.KindProfile
	StatusOptions []optionView `json:"statusOptions"`
}

// GET /api/kinds
func (dc *DeviceController) ListKinds(c *gin.Context) {
	ps := models.Profiles()
	kinds := make([]kindView, 0, len(ps))
	for _, p := range ps {
		kv := kindView{KindProfile: p}
		for _, st := range p.Statuses {
			kv.StatusOptions = append(kv.StatusOptions, optionView{Code: string(st), Label: st.Label()})
		}
		kinds = append(kinds, kv)
	}
	conds := []models.Condition{models.ConditionExcellent, models.ConditionScratched, models.ConditionBroken, models.ConditionMissing}
	condOpts := make([]optionView, 0, len(conds))
	for _, cd := range conds {
		condOpts = append(condOpts, optionView{Code: string(cd), Label: cd.Label()})
	}
	c.JSON(http.StatusOK, app.H{"kinds": kinds, "conditions": condOpts})
}

// 解析 ?kind=&status=&q=&page=&size=
func parseDevicesQuery(c *gin.Context) (db.DevicesQuery, map[string]string) {
	q := db.DevicesQuery{Q: c.Query("q")}
	fields := map[string]string{}
	if v := c.Query("kind"); v != "" {
		k, err := models.ParseKind(v)
		if err != nil {
			fields["kind"] = "Unknown device kind."
		}
		q.Kind = k
	}
	if v := c.Query("status"); v != "" {
		st, err := models.ParseStatus(v)
		if err != nil {
			fields["status"] = "Unknown status."
		}
		q.Status = st
	}
	q.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	q.Size, _ = strconv.Atoi(c.DefaultQuery("size", "20"))
	return q, fields
}

// GET /api/devices
func (dc *DeviceController) ListDevices(c *gin.Context) {
	q, fields := parseDevicesQuery(c)
	if len(fields) > 0 {
		badFields(c, fields)
		return
	}
	res, err := dc.Repo.ListDevices(c.Request.Context(), q)
	if err != nil {
		dc.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /api/devices/:id
func (dc *DeviceController) GetDevice(c *gin.Context) {
	row, err := dc.Repo.FindDeviceRow(c.Request.Context(), c.Param("id"))
	if err != nil {
		dc.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}

// GET /api/devices/:id/history?limit=
func (dc *DeviceController) DeviceHistory(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	evs, err := dc.Repo.ListDeviceEvents(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		dc.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"items": evs})
}

type createDeviceReq struct {
	Kind             string     `json:"kind" binding:"required,device_kind"`
	Name             string     `json:"name" binding:"max=50"`
	Description      string     `json:"description" binding:"max=1000"`
	ResponsibleParty string     `json:"responsibleParty" binding:"max=100"`
	Make             string     `json:"make" binding:"required,max=200"`
	SerialNumber     string     `json:"serialNumber" binding:"max=200"`
	Status           string     `json:"status" binding:"omitempty,device_status"`
	Condition        string     `json:"condition" binding:"omitempty,device_condition"`
	PurchasedAt      *time.Time `json:"purchasedAt"`
}

// POST /api/devices
func (dc *DeviceController) CreateDevice(c *gin.Context) {
	// 1) 绑定 + tag 校验，字段错误先收集
	var in createDeviceReq
	fields := map[string]string{}
	if err := c.ShouldBindJSON(&in); err != nil {
		fe, ok := app.FieldErrors(err)
		if !ok {
			c.JSON(http.StatusBadRequest, app.H{"error": "invalid request body"})
			return
		}
		fields = fe
	}

	// 2) 按子类型的规则补充校验
	kind, kindErr := models.ParseKind(in.Kind)
	if kindErr == nil {
		p := kind.Profile()
		if p.SerialRequired && strings.TrimSpace(in.SerialNumber) == "" {
			fields["serialNumber"] = app.MsgRequired
		}
		if st, err := models.ParseStatus(in.Status); in.Status != "" && err == nil && !p.Allows(st) {
			fields["status"] = "Status not allowed for this device kind."
		}
	}
	if len(fields) > 0 {
		badFields(c, fields)
		return
	}

	// 3) 落库
	d := &models.Device{
		Kind:             kind,
		Name:             strings.TrimSpace(in.Name),
		Description:      in.Description,
		ResponsibleParty: in.ResponsibleParty,
		Make:             strings.TrimSpace(in.Make),
		SerialNumber:     in.SerialNumber,
	}
	if in.Status != "" {
		d.Status, _ = models.ParseStatus(in.Status)
	}
	if in.Condition != "" {
		d.Condition, _ = models.ParseCondition(in.Condition)
	}
	if in.PurchasedAt != nil {
		d.PurchasedAt = *in.PurchasedAt
	}
	actorID, _ := app.CurrentUserID(c)
	if err := dc.Repo.CreateDevice(c.Request.Context(), d, actorID); err != nil {
		if fields, ok := deviceFields(err); ok {
			badFields(c, fields)
			return
		}
		dc.writeError(c, err)
		return
	}
	dc.Log.Info("device created",
		zap.String("device_id", d.ID),
		zap.String("kind", string(d.Kind)),
		zap.String("actor_id", actorID),
	)
	dc.respondRow(c, http.StatusCreated, d.ID)
}

type updateDeviceReq struct {
	Name             *string    `json:"name" binding:"omitempty,max=50"`
	Description      *string    `json:"description" binding:"omitempty,max=1000"`
	ResponsibleParty *string    `json:"responsibleParty" binding:"omitempty,max=100"`
	Make             *string    `json:"make" binding:"omitempty,max=200"`
	SerialNumber     *string    `json:"serialNumber" binding:"omitempty,max=200"`
	Status           *string    `json:"status" binding:"omitempty,device_status"`
	Condition        *string    `json:"condition" binding:"omitempty,device_condition"`
	PurchasedAt      *time.Time `json:"purchasedAt"`
}

// PATCH /api/devices/:id
func (dc *DeviceController) UpdateDevice(c *gin.Context) {
	var in updateDeviceReq
	if err := c.ShouldBindJSON(&in); err != nil {
		bindError(c, err)
		return
	}
	patch := db.DevicePatch{
		Name:             in.Name,
		Description:      in.Description,
		ResponsibleParty: in.ResponsibleParty,
		Make:             in.Make,
		SerialNumber:     in.SerialNumber,
		PurchasedAt:      in.PurchasedAt,
	}
	if in.Status != nil {
		st, _ := models.ParseStatus(*in.Status)
		patch.Status = &st
	}
	if in.Condition != nil {
		cd, _ := models.ParseCondition(*in.Condition)
		patch.Condition = &cd
	}

	actorID, _ := app.CurrentUserID(c)
	d, err := dc.Repo.UpdateDevice(c.Request.Context(), c.Param("id"), patch, actorID)
	if err != nil {
		if fields, ok := deviceFields(err); ok {
			badFields(c, fields)
			return
		}
		dc.writeError(c, err)
		return
	}
	dc.respondRow(c, http.StatusOK, d.ID)
}

// DELETE /api/devices/:id
func (dc *DeviceController) DeleteDevice(c *gin.Context) {
	actorID, _ := app.CurrentUserID(c)
	if err := dc.Repo.DeleteDevice(c.Request.Context(), c.Param("id"), actorID); err != nil {
		dc.writeError(c, err)
		return
	}
	dc.Log.Info("device deleted", zap.String("device_id", c.Param("id")), zap.String("actor_id", actorID))
	c.JSON(http.StatusOK, app.H{"ok": true})
}

// POST /api/devices/:id/checkout
func (dc *DeviceController) CheckOut(c *gin.Context) {
	var in struct {
		LendeeID string `json:"lendeeId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		bindError(c, err)
		return
	}
	// 借出人 = 当前登录员工
	lenderID, ok := app.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, app.H{"error": "unauthorized"})
		return
	}
	d, err := dc.Repo.CheckOutDevice(c.Request.Context(), c.Param("id"), lenderID, in.LendeeID)
	if err != nil {
		if errors.Is(err, db.ErrLendeeNotFound) {
			badFields(c, map[string]string{"lendeeId": "Unknown lendee."})
			return
		}
		dc.writeError(c, err)
		return
	}
	dc.Log.Info("device checked out",
		zap.String("device_id", d.ID),
		zap.String("lender_id", lenderID),
		zap.String("lendee_id", in.LendeeID),
	)
	dc.respondRow(c, http.StatusOK, d.ID)
}

// POST /api/devices/:id/checkin
func (dc *DeviceController) CheckIn(c *gin.Context) {
	var in struct {
		Condition string `json:"condition" binding:"omitempty,device_condition"`
	}
	// 空 body 等同于 excellent
	if err := c.ShouldBindJSON(&in); err != nil && !errors.Is(err, io.EOF) {
		bindError(c, err)
		return
	}
	cond := models.ConditionExcellent
	if in.Condition != "" {
		cond, _ = models.ParseCondition(in.Condition)
	}

	actorID, _ := app.CurrentUserID(c)
	d, err := dc.Repo.CheckInDevice(c.Request.Context(), c.Param("id"), cond, actorID)
	if err != nil {
		dc.writeError(c, err)
		return
	}
	dc.Log.Info("device checked in",
		zap.String("device_id", d.ID),
		zap.String("condition", string(d.Condition)),
		zap.String("status", string(d.Status)),
	)
	dc.respondRow(c, http.StatusOK, d.ID)
}

// 写操作统一返回带显示字段的行
func (dc *DeviceController) respondRow(c *gin.Context, status int, id string) {
	row, err := dc.Repo.FindDeviceRow(c.Request.Context(), id)
	if err != nil {
		dc.writeError(c, err)
		return
	}
	c.JSON(status, row)
}
