package app

import (
	"github.com/gin-gonic/gin"

	"github.com/haierkeys/note-feed-service/pkg/convert"
)

// PaginationConfig 时间线分页配置
type PaginationConfig struct {
	DefaultLimit int
	MaxLimit     int
}

// DefaultPaginationConfig 默认分页配置
var DefaultPaginationConfig = PaginationConfig{
	DefaultLimit: 20,
	MaxLimit:     100,
}

// GetLimitWithConfig 读取 limit 参数，非正值取默认值，超出上限截断
func GetLimitWithConfig(c *gin.Context, cfg PaginationConfig) int {
	limit := convert.StrTo(c.Query("limit")).MustInt()
	if limit <= 0 {
		return cfg.DefaultLimit
	}
	if limit > cfg.MaxLimit {
		return cfg.MaxLimit
	}
	return limit
}

// GetLimit 使用默认配置读取 limit
func GetLimit(c *gin.Context) int {
	return GetLimitWithConfig(c, DefaultPaginationConfig)
}

// GetCursor 读取 beforeId 游标，缺省时 ok 为 false
func GetCursor(c *gin.Context) (cursor int64, ok bool, err error) {
	return convert.StrTo(c.Query("beforeId")).OptionalInt64()
}
