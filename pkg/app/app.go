package app

import (
	"net/http"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"

	"github.com/haierkeys/note-feed-service/pkg/code"
)

// VersionInfo 版本信息
type VersionInfo struct {
	Version   string `json:"version"`
	GitTag    string `json:"gitTag"`
	BuildTime string `json:"buildTime"`
}

type Response struct {
	Ctx *gin.Context
}

// Res 统一响应结构：Code/Status/Message/Data
// Details 为 nil 时不序列化
type Res struct {
	Code    int         `json:"code"`
	Status  bool        `json:"status"`
	Message interface{} `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

// FeedRes 时间线分页响应，NextCursor 为本页最旧一条的 ID，空页时为空
type FeedRes struct {
	List       interface{} `json:"list"`
	NextCursor string      `json:"nextCursor,omitempty"`
}

// ListRes 列表响应
type ListRes struct {
	List  interface{} `json:"list"`
	Total int         `json:"total"`
}

func NewResponse(ctx *gin.Context) *Response {
	return &Response{Ctx: ctx}
}

// GetRequestIP 获取ip
func GetRequestIP(c *gin.Context) string {
	reqIP := c.ClientIP()
	if reqIP == "::1" {
		reqIP = "127.0.0.1"
	}
	return reqIP
}

// ToResponse 输出统一响应
func (r *Response) ToResponse(codeObj *code.Code) {
	content := Res{
		Code:    codeObj.Code(),
		Status:  codeObj.Status(),
		Message: codeObj.Lang.GetMessage(),
		Data:    codeObj.Data(),
	}
	if codeObj.HaveDetails() {
		content.Details = strings.Join(codeObj.Details(), ",")
	}
	r.send(codeObj.StatusCode(), content)
}

// ToResponseList 输出列表响应
func (r *Response) ToResponseList(codeObj *code.Code, list interface{}, total int) {
	r.send(codeObj.StatusCode(), Res{
		Code:    codeObj.Code(),
		Status:  codeObj.Status(),
		Message: codeObj.Lang.GetMessage(),
		Data:    ListRes{List: list, Total: total},
	})
}

// ToResponseFeed 输出时间线分页响应
func (r *Response) ToResponseFeed(codeObj *code.Code, list interface{}, nextCursor string) {
	r.send(codeObj.StatusCode(), Res{
		Code:    codeObj.Code(),
		Status:  codeObj.Status(),
		Message: codeObj.Lang.GetMessage(),
		Data:    FeedRes{List: list, NextCursor: nextCursor},
	})
}

func (r *Response) send(statusCode int, content interface{}) {
	r.Ctx.Set("status_code", statusCode)
	body, err := sonic.Marshal(content)
	if err != nil {
		r.Ctx.JSON(http.StatusInternalServerError, Res{Code: code.ErrorServerInternal.Code(), Message: err.Error()})
		return
	}
	r.Ctx.Data(statusCode, "application/json; charset=utf-8", body)
}
