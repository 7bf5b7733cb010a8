package code

import (
	"errors"
	"sync/atomic"
)

// lang type, used to store English and Chinese text
// lang 类型，用来存储英文和中文文本
type lang struct {
	en    string // English // 英文
	zh_cn string // Chinese // 中文
}

const (
	LangEN = "en"
	LangZH = "zh_cn"

	FALLBACK_LNG = LangEN
)

// Default language is English // 默认语言为英文
// 在声明中初始化：common.go 的包级错误码在 init() 之前就会读取它
var lng = func() (v atomic.Value) {
	v.Store(FALLBACK_LNG)
	return
}()

// GetMessage returns the message for the global language, falling back to English
// GetMessage 根据全局语言返回相应的消息，缺失时回退到英文
func (l lang) GetMessage() string {
	return l.Message(GetGlobalDefaultLang())
}

// Message returns the message for the given language
// Message 返回指定语言的消息
func (l lang) Message(language string) string {
	switch language {
	case LangZH, "zh", "zh-CN":
		if l.zh_cn != "" {
			return l.zh_cn
		}
	}
	if l.en != "" {
		return l.en
	}
	return l.zh_cn
}

// GetSupportedLanguages returns all languages supported by the lang type
// GetSupportedLanguages 返回支持的语言
func GetSupportedLanguages() []string {
	return []string{LangEN, LangZH}
}

// SetGlobalDefaultLang sets the global default language
// 设置全局默认语言
func SetGlobalDefaultLang(language string) error {
	for _, l := range GetSupportedLanguages() {
		if language == l {
			lng.Store(language)
			return nil
		}
	}
	// If the language is invalid, return an error and set it to the default language
	// 如果语言无效，返回错误并设置为默认语言
	lng.Store(FALLBACK_LNG)
	return errors.New("unsupported language type, set defaulting to " + FALLBACK_LNG)
}

// GetGlobalDefaultLang gets the global default language
// 获取全局默认语言
func GetGlobalDefaultLang() string {
	if l, ok := lng.Load().(string); ok {
		return l
	}
	return FALLBACK_LNG
}
