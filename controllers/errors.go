package controllers

import (
	"errors"
	"net/http"

	"Gin_postgres_redis_device_inventory/app"
	"Gin_postgres_redis_device_inventory/db"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// writeError repo 错误 → HTTP 状态码；未知错误只记日志，不回显
func (s *Srv) writeError(c *gin.Context, err error) {
	switch {
	case db.IsNotFound(err):
		c.JSON(http.StatusNotFound, app.H{"error": err.Error()})
	case errors.Is(err, db.ErrUnknownKind),
		errors.Is(err, db.ErrStatusNotAllowed),
		errors.Is(err, db.ErrSerialRequired),
		errors.Is(err, db.ErrCheckOutOnly),
		errors.Is(err, db.ErrConditionMismatch):
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
	case errors.Is(err, db.ErrInviteUsed):
		c.JSON(http.StatusConflict, app.H{"error": err.Error()})
	default:
		_ = c.Error(err)
		s.Log.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, app.H{"error": "internal server error"})
	}
}

// deviceFields 设备规则错误对应到表单字段
func deviceFields(err error) (map[string]string, bool) {
	switch {
	case errors.Is(err, db.ErrStatusNotAllowed):
		return map[string]string{"status": "Status not allowed for this device kind."}, true
	case errors.Is(err, db.ErrCheckOutOnly):
		return map[string]string{"status": "Use check-out to lend a device."}, true
	case errors.Is(err, db.ErrConditionMismatch):
		return map[string]string{"condition": "Broken or missing condition needs the matching status."}, true
	case errors.Is(err, db.ErrSerialRequired):
		return map[string]string{"serialNumber": app.MsgRequired}, true
	}
	return nil, false
}

// badFields 400 + 字段级提示
func badFields(c *gin.Context, fields map[string]string) {
	c.JSON(http.StatusBadRequest, app.H{"error": "validation failed", "fields": fields})
}

// bindError 绑定失败：校验错误给字段提示，其余按请求体格式错误处理
func bindError(c *gin.Context, err error) {
	if fields, ok := app.FieldErrors(err); ok {
		badFields(c, fields)
		return
	}
	c.JSON(http.StatusBadRequest, app.H{"error": "invalid request body"})
}
