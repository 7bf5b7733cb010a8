package service

import (
	"errors"

	"github.com/haierkeys/note-feed-service/internal/metrics"
	"github.com/haierkeys/note-feed-service/pkg/code"
	"github.com/haierkeys/note-feed-service/pkg/snowflake"
)

// IDGenerator 标识生成器，*snowflake.Generator 实现该接口
type IDGenerator interface {
	Generate() (snowflake.ID, error)
}

// nextID 生成新标识并映射错误码
func nextID(gen IDGenerator, m *metrics.Metrics) (int64, error) {
	id, err := gen.Generate()
	if err != nil {
		if errors.Is(err, snowflake.ErrExhausted) {
			m.IDExhausted.Inc()
			return 0, code.ErrorIDExhausted.WithCause(err)
		}
		return 0, code.ErrorIDGenerate.WithCause(err)
	}
	return id.Int64(), nil
}
