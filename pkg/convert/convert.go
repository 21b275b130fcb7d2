// Package convert 提供结构体转换辅助
package convert

import (
	"github.com/jinzhu/copier"
)

// StructAssign copies same-named fields from src into dst
// StructAssign 将 src 与 dst 同名字段的值复制到 dst 中
func StructAssign(src any, dst any) any {
	copier.Copy(dst, src)
	return dst
}
