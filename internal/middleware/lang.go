package middleware

import (
	"strings"

	"github.com/haierkeys/note-feed-service/pkg/code"

	ut "github.com/go-playground/universal-translator"
	"github.com/gin-gonic/gin"
)

// LangWithTranslator 按 lang 查询参数或请求头选择校验翻译器与错误消息语言
// 未识别的语言回退到英文
func LangWithTranslator(uni *ut.UniversalTranslator) gin.HandlerFunc {
	fallback, _ := uni.GetTranslator("en")

	return func(c *gin.Context) {
		lang := c.Query("lang")
		if lang == "" {
			lang = c.GetHeader("lang")
		}
		lang = strings.ToLower(strings.ReplaceAll(lang, "-", "_"))

		if trans, found := uni.GetTranslator(lang); found && lang != "" {
			c.Set("trans", trans)
		} else {
			c.Set("trans", fallback)
		}

		if lang != "" {
			_ = code.SetGlobalDefaultLang(lang)
		}

		c.Next()
	}
}
