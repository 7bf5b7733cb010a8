// Package timex 提供带固定序列化格式的时间类型
package timex

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// Layout 序列化格式
const Layout = "2006-01-02 15:04:05"

// Time 以 Layout 格式输出 JSON，同时可直接作为 gorm 字段使用
type Time time.Time

// Now 返回当前时间
func Now() Time {
	return Time(time.Now())
}

// Std 返回标准库时间
func (t Time) Std() time.Time {
	return time.Time(t)
}

// IsZero 是否为零值
func (t Time) IsZero() bool {
	return time.Time(t).IsZero()
}

func (t Time) Unix() int64      { return time.Time(t).Unix() }
func (t Time) UnixMilli() int64 { return time.Time(t).UnixMilli() }
func (t Time) UnixMicro() int64 { return time.Time(t).UnixMicro() }
func (t Time) UnixNano() int64  { return time.Time(t).UnixNano() }

func (t Time) String() string {
	return time.Time(t).Format(Layout)
}

// MarshalJSON 零值输出 null
func (t Time) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + time.Time(t).Format(Layout) + `"`), nil
}

func (t *Time) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" || s == `""` {
		*t = Time{}
		return nil
	}
	parsed, err := time.ParseInLocation(`"`+Layout+`"`, s, time.Local)
	if err != nil {
		return err
	}
	*t = Time(parsed)
	return nil
}

// Value 实现 driver.Valuer
func (t Time) Value() (driver.Value, error) {
	if t.IsZero() {
		return nil, nil
	}
	return time.Time(t), nil
}

// Scan 实现 sql.Scanner
func (t *Time) Scan(v interface{}) error {
	switch val := v.(type) {
	case nil:
		*t = Time{}
	case time.Time:
		*t = Time(val)
	case string:
		return t.parseString(val)
	case []byte:
		return t.parseString(string(val))
	default:
		return fmt.Errorf("timex: cannot scan %T into Time", v)
	}
	return nil
}

func (t *Time) parseString(s string) error {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05.999999999-07:00", Layout} {
		if parsed, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			*t = Time(parsed)
			return nil
		}
	}
	return fmt.Errorf("timex: cannot parse %q", s)
}
