// Package service implements the business logic layer
// Package service 实现业务逻辑层
package service

import (
	"github.com/petalpost/proposal-link-service/pkg/util"
)

// ServiceConfig Service 层配置
type ServiceConfig struct {
	Link LinkServiceConfig
}

// LinkServiceConfig 链接服务配置
type LinkServiceConfig struct {
	// BaseURL 分享地址的公开基础 URL
	BaseURL string
	// SlugLength 生成 slug 的长度
	SlugLength int
	// CreateMaxAttempts slug 冲突时的最大重试次数
	CreateMaxAttempts int
}

// 默认值，配置缺省时使用
const (
	DefaultSlugLength        = util.DefaultSlugLength
	DefaultCreateMaxAttempts = 5
)

func (c LinkServiceConfig) slugLength() int {
	if c.SlugLength > 0 {
		return c.SlugLength
	}
	return DefaultSlugLength
}

func (c LinkServiceConfig) createMaxAttempts() int {
	if c.CreateMaxAttempts > 0 {
		return c.CreateMaxAttempts
	}
	return DefaultCreateMaxAttempts
}
