package util

import (
	"crypto/rand"
)

// slugAlphabet is the URL-safe alphabet used for public link slugs.
// Matches the nanoid default set so slugs stay copy-paste safe in any URL.
// slugAlphabet 是公开链接 slug 使用的 URL 安全字母表。
// 与 nanoid 默认字符集一致，保证 slug 在任何 URL 中都可以直接粘贴。
const slugAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789_-"

// DefaultSlugLength 默认 slug 长度
const DefaultSlugLength = 8

// GenerateSlug generates a random URL-safe slug of the given length.
// The slug doubles as an unguessable capability token, so it is drawn from
// crypto/rand; collision handling is the caller's responsibility.
// GenerateSlug 生成指定长度的随机 URL 安全 slug。
// slug 同时作为不可猜测的访问凭证，因此使用 crypto/rand 生成；
// 冲突处理由调用方负责。
func GenerateSlug(length int) string {
	if length <= 0 {
		length = DefaultSlugLength
	}

	// crypto/rand.Read 不会返回错误（自 Go 1.24 起有此保证）
	buf := make([]byte, length)
	rand.Read(buf)

	out := make([]byte, length)
	for i, b := range buf {
		out[i] = slugAlphabet[int(b)&63]
	}
	return string(out)
}
