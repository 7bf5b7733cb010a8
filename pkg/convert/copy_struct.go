package convert

import (
	"github.com/jinzhu/copier"
	"github.com/pkg/errors"
)

// StructAssign 按同名字段把 src 拷贝到 dst
// dst 须为指针；支持切片到切片的拷贝
func StructAssign(src interface{}, dst interface{}) error {
	if err := copier.CopyWithOption(dst, src, copier.Option{IgnoreEmpty: false, DeepCopy: true}); err != nil {
		return errors.Wrap(err, "convert.StructAssign")
	}
	return nil
}
