// Package validator 为 gin 绑定提供 validator/v10 实现
package validator

import (
	"reflect"
	"strings"
	"sync"
	"unicode"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// CustomValidator 实现 binding.StructValidator
type CustomValidator struct {
	once     sync.Once
	validate *validator.Validate
}

var _ binding.StructValidator = (*CustomValidator)(nil)

// NewCustomValidator 创建验证器
func NewCustomValidator() *CustomValidator {
	return &CustomValidator{}
}

// ValidateStruct 校验结构体，非结构体直接放行
func (v *CustomValidator) ValidateStruct(obj interface{}) error {
	if kindOfData(obj) != reflect.Struct {
		return nil
	}
	v.lazyinit()
	return v.validate.Struct(obj)
}

// Engine 返回底层 *validator.Validate
func (v *CustomValidator) Engine() interface{} {
	v.lazyinit()
	return v.validate
}

func (v *CustomValidator) lazyinit() {
	v.once.Do(func() {
		v.validate = validator.New()
		v.validate.SetTagName("binding")
	})
}

func kindOfData(data interface{}) reflect.Kind {
	value := reflect.ValueOf(data)
	valueType := value.Kind()
	if valueType == reflect.Ptr {
		valueType = value.Elem().Kind()
	}
	return valueType
}

// RegisterCustom 注册自定义校验标签
//
//	notblank  去除空白后非空
//	oneofci   忽略大小写的 oneof
func RegisterCustom() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	_ = v.RegisterValidation("notblank", notBlank)
	_ = v.RegisterValidation("oneofci", oneOfCaseInsensitive)
}

func notBlank(fl validator.FieldLevel) bool {
	if fl.Field().Kind() != reflect.String {
		return true
	}
	return strings.TrimFunc(fl.Field().String(), unicode.IsSpace) != ""
}

func oneOfCaseInsensitive(fl validator.FieldLevel) bool {
	if fl.Field().Kind() != reflect.String {
		return false
	}
	val := fl.Field().String()
	if val == "" {
		return true
	}
	for _, opt := range strings.Fields(fl.Param()) {
		if strings.EqualFold(opt, val) {
			return true
		}
	}
	return false
}
