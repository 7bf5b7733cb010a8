package convert

import (
	"strconv"
	"strings"
)

// StrTo 字符串转换辅助
type StrTo string

func (s StrTo) String() string {
	return strings.TrimSpace(string(s))
}

func (s StrTo) Int() (int, error) {
	return strconv.Atoi(s.String())
}

func (s StrTo) MustInt() int {
	v, _ := s.Int()
	return v
}

func (s StrTo) Int64() (int64, error) {
	return strconv.ParseInt(s.String(), 10, 64)
}

func (s StrTo) MustInt64() int64 {
	v, _ := s.Int64()
	return v
}

// OptionalInt64 空字符串返回 (0, false, nil)
func (s StrTo) OptionalInt64() (int64, bool, error) {
	if s.String() == "" {
		return 0, false, nil
	}
	v, err := s.Int64()
	if err != nil {
		return 0, false, err
	}
	return v, true, nil
}
