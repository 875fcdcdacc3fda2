package app

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"Gin_postgres_redis_device_inventory/models"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	validatorsOnce sync.Once
	validatorsErr  error
)

// RegisterValidators 给 gin 的 validator 注册设备相关的 tag，可重复调用
func RegisterValidators() error {
	validatorsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			validatorsErr = errors.New("unexpected binding validator engine")
			return
		}
		// 错误里用 json 字段名
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
		for tag, fn := range map[string]validator.Func{
			"device_kind":      validKind,
			"device_status":    validStatus,
			"device_condition": validCondition,
			"user_role":        validRole,
		} {
			if err := v.RegisterValidation(tag, fn); err != nil {
				validatorsErr = err
				return
			}
		}
	})
	return validatorsErr
}

func validKind(fl validator.FieldLevel) bool {
	_, err := models.ParseKind(fl.Field().String())
	return err == nil
}

func validStatus(fl validator.FieldLevel) bool {
	_, err := models.ParseStatus(fl.Field().String())
	return err == nil
}

func validCondition(fl validator.FieldLevel) bool {
	_, err := models.ParseCondition(fl.Field().String())
	return err == nil
}

func validRole(fl validator.FieldLevel) bool {
	_, err := models.ParseRole(fl.Field().String())
	return err == nil
}

const MsgRequired = "This field is required."

var fieldMessages = map[string]string{
	"required":         MsgRequired,
	"email":            "Enter a valid email address.",
	"max":              "Ensure this value is not too long.",
	"device_kind":      "Unknown device kind.",
	"device_status":    "Unknown status.",
	"device_condition": "Unknown condition.",
	"user_role":        "Unknown role.",
}

// FieldErrors 把 validator 错误转成 {字段: 提示}；不是校验错误时 ok=false
func FieldErrors(err error) (map[string]string, bool) {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return nil, false
	}
	out := make(map[string]string, len(ve))
	for _, fe := range ve {
		msg, ok := fieldMessages[fe.Tag()]
		if !ok {
			msg = "Invalid value."
		}
		out[fe.Field()] = msg
	}
	return out, true
}
