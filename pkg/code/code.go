package code

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind error taxonomy used by the core
// Kind 核心错误分类
type Kind int

const (
	KindNone Kind = iota
	KindNotFound
	KindInvalidArgument
	KindExhausted
	KindUnauthorized
	KindUpstreamFailure
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "None"
	case KindNotFound:
		return "NotFound"
	case KindInvalidArgument:
		return "InvalidArgument"
	case KindExhausted:
		return "Exhausted"
	case KindUnauthorized:
		return "Unauthorized"
	case KindUpstreamFailure:
		return "UpstreamFailure"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

type Code struct {
	// 状态码
	code int
	// 状态
	status bool
	// 错误分类
	kind Kind
	// 错误消息
	Lang lang
	// 数据
	data     interface{}
	haveData bool
	// 错误详细信息
	details     []string
	haveDetails bool
	// 原始错误
	cause error
}

var codes = map[int]string{}

// NewError 注册一个错误码
func NewError(code int, kind Kind, l lang) *Code {
	if _, ok := codes[code]; ok {
		panic(fmt.Sprintf("错误码 %d 已经存在，请更换一个", code))
	}
	codes[code] = l.GetMessage()
	return &Code{code: code, status: false, kind: kind, Lang: l}
}

var sussCodes = map[int]string{}

// NewSuss 注册一个成功码
func NewSuss(code int, l lang) *Code {
	if _, ok := sussCodes[code]; ok {
		panic(fmt.Sprintf("成功码 %d 已经存在，请更换一个", code))
	}
	sussCodes[code] = l.GetMessage()
	return &Code{code: code, status: true, Lang: l}
}

// Clone 创建一个新的 Code 副本，With* 链式调用应在副本上进行
func (e *Code) Clone() *Code {
	return &Code{
		code:   e.code,
		status: e.status,
		kind:   e.kind,
		Lang:   e.Lang,
	}
}

func (e *Code) Error() string {
	if e.haveDetails && len(e.details) > 0 {
		return fmt.Sprintf("%s: %v", e.Msg(), e.details)
	}
	return e.Msg()
}

// Is two codes match when their numeric code is equal, so clones still satisfy errors.Is
// Is 数字码相同即视为同一错误
func (e *Code) Is(target error) bool {
	var t *Code
	if !errors.As(target, &t) {
		return false
	}
	return t.code == e.code
}

// Unwrap 返回原始错误
func (e *Code) Unwrap() error {
	return e.cause
}

func (e *Code) Code() int {
	return e.code
}

func (e *Code) Status() bool {
	return e.status
}

func (e *Code) Kind() Kind {
	return e.kind
}

func (e *Code) Msg() string {
	return e.Lang.GetMessage()
}

func (e *Code) Details() []string {
	return e.details
}

func (e *Code) Data() interface{} {
	return e.data
}

func (e *Code) HaveDetails() bool {
	return e.haveDetails
}

func (e *Code) HaveData() bool {
	return e.haveData
}

func (e *Code) WithData(data interface{}) *Code {
	c := e.Clone()
	c.details, c.haveDetails, c.cause = e.details, e.haveDetails, e.cause
	c.haveData = true
	c.data = data
	return c
}

func (e *Code) WithDetails(details ...string) *Code {
	c := e.Clone()
	c.data, c.haveData, c.cause = e.data, e.haveData, e.cause
	c.haveDetails = true
	c.details = append([]string{}, details...)
	return c
}

// WithCause 附加原始错误，保留错误链
func (e *Code) WithCause(err error) *Code {
	c := e.Clone()
	c.data, c.haveData = e.data, e.haveData
	c.details, c.haveDetails = e.details, e.haveDetails
	c.cause = err
	if err != nil && !c.haveDetails {
		c.haveDetails = true
		c.details = []string{err.Error()}
	}
	return c
}

func (e *Code) StatusCode() int {
	return http.StatusOK
}

// KindOf classifies any error; unknown errors count as upstream failures
// KindOf 对任意错误分类，未知错误视为上游失败
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	var c *Code
	if errors.As(err, &c) {
		return c.kind
	}
	return KindUpstreamFailure
}
