package app

import (
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	ut "github.com/go-playground/universal-translator"
	val "github.com/go-playground/validator/v10"
)

type ValidError struct {
	Key     string
	Message string
}

type ValidErrors []*ValidError

func (v *ValidError) Error() string {
	return v.Message
}

func (v ValidErrors) Error() string {
	return strings.Join(v.Errors(), ",")
}

func (v ValidErrors) Errors() []string {
	var errs []string
	for _, err := range v {
		errs = append(errs, err.Error())
	}
	return errs
}

// ErrorsToString 拼接全部错误消息
func (v ValidErrors) ErrorsToString() string {
	return strings.Join(v.Errors(), ", ")
}

// MapsToString 以 字段:消息 形式输出
func (v ValidErrors) MapsToString() map[string]string {
	out := make(map[string]string, len(v))
	for _, err := range v {
		out[err.Key] = err.Message
	}
	return out
}

// BindAndValid 绑定请求参数并校验，校验消息按请求语言翻译
func BindAndValid(c *gin.Context, v interface{}) (bool, ValidErrors) {
	var errs ValidErrors
	if err := c.ShouldBind(v); err != nil {
		verrs, ok := err.(val.ValidationErrors)
		if !ok {
			return false, ValidErrors{{Key: "request", Message: err.Error()}}
		}

		var trans ut.Translator
		if t, exists := c.Get("trans"); exists {
			trans, _ = t.(ut.Translator)
		}

		for _, fe := range verrs {
			msg := fe.Error()
			if trans != nil {
				msg = fe.Translate(trans)
			}
			errs = append(errs, &ValidError{Key: fe.Field(), Message: msg})
		}
		sort.Slice(errs, func(i, j int) bool { return errs[i].Key < errs[j].Key })
		return false, errs
	}
	return true, nil
}
