// Package domain 定义领域模型与持久化接口
package domain

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	// ErrLinkNotFound slug 对应的链接不存在
	ErrLinkNotFound = errors.New("link not found")
	// ErrSlugTaken slug 已被占用，调用方应换一个 slug 重试
	ErrSlugTaken = errors.New("slug already taken")
	// ErrAlreadyAnswered 链接已有最终回答，写入被拒绝
	ErrAlreadyAnswered = errors.New("link already answered")
)

// Answer 收件人的最终回答
type Answer string

const (
	AnswerAccepted Answer = "accepted"
	AnswerRejected Answer = "rejected"
)

// ButtonStyle 提案页面的按钮交互样式
type ButtonStyle string

const (
	ButtonStyleStandard   ButtonStyle = "standard"
	ButtonStylePersistent ButtonStyle = "persistent"
	ButtonStyleDecoy      ButtonStyle = "decoy"
)

// IsValidButtonStyle reports whether s belongs to the closed style enumeration
// IsValidButtonStyle 判断 s 是否属于封闭的样式枚举
func IsValidButtonStyle(s string) bool {
	switch ButtonStyle(s) {
	case ButtonStyleStandard, ButtonStylePersistent, ButtonStyleDecoy:
		return true
	}
	return false
}

// NormalizeAnswer maps raw client input onto the answer enumeration.
// Accepts "accepted"/"yes" and "rejected"/"no" case-insensitively with
// surrounding whitespace trimmed; anything else yields ok == false.
// NormalizeAnswer 将客户端原始输入归一化为回答枚举。
// 大小写不敏感并去除首尾空白，"accepted"/"yes" 与 "rejected"/"no" 之外
// 的输入返回 ok == false。
func NormalizeAnswer(raw string) (Answer, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "accepted", "yes":
		return AnswerAccepted, true
	case "rejected", "no":
		return AnswerRejected, true
	}
	return "", false
}

// RequestMeta 请求来源上下文，只写入存储，永不返回给客户端
type RequestMeta struct {
	UserAgent  string `json:"userAgent,omitempty"`
	IP         string `json:"ip,omitempty"`
	ClientMeta any    `json:"clientMeta,omitempty"`
}

// Link 提案链接领域模型
type Link struct {
	ID           int64
	Slug         string // 公开查找键，同时是不可猜测的访问凭证
	SenderName   string
	ReceiverName string
	PhotoURL     string
	BackgroundID string
	Message      string
	ButtonStyle  ButtonStyle
	Template     string
	Metadata     RequestMeta // 创建时上下文
	Answer       *Answer
	AnsweredAt   *time.Time
	AnsweredMeta *RequestMeta // 回答时上下文
	ViewCount    int64
	LastViewedAt *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsAnswered reports whether the terminal answer transition already happened
// IsAnswered 判断是否已经发生最终回答迁移
func (l *Link) IsAnswered() bool {
	return l.AnsweredAt != nil
}

// LinkRepository is the durable slug-to-record store. Implementations must
// provide the atomic primitives the service's correctness depends on:
// unique-slug enforcement at insert and a single conditional update for the
// answer transition.
// LinkRepository 是 slug 到记录的持久化存储。实现必须提供服务正确性
// 所依赖的原子原语：插入时的 slug 唯一约束，以及回答迁移的单条条件更新。
type LinkRepository interface {
	// Create inserts a new record; a duplicate slug yields ErrSlugTaken.
	// Create 插入新记录；slug 重复时返回 ErrSlugTaken。
	Create(ctx context.Context, link *Link) error

	// GetBySlug is a pure read; missing slug yields ErrLinkNotFound.
	// GetBySlug 纯读取；slug 不存在时返回 ErrLinkNotFound。
	GetBySlug(ctx context.Context, slug string) (*Link, error)

	// IncrementViewAndGet atomically bumps view_count, stamps last_viewed_at
	// and returns the updated record.
	// IncrementViewAndGet 原子地递增 view_count、更新 last_viewed_at
	// 并返回更新后的记录。
	IncrementViewAndGet(ctx context.Context, slug string, viewedAt time.Time) (*Link, error)

	// SetAnswerIfUnset performs the single-writer-wins answer transition as one
	// conditional update (condition: answered_at IS NULL). A lost race yields
	// ErrAlreadyAnswered together with the authoritative record; a missing slug
	// yields ErrLinkNotFound.
	// SetAnswerIfUnset 以单条条件更新（条件：answered_at IS NULL）完成
	// 单写者胜出的回答迁移。竞争失败返回 ErrAlreadyAnswered 和权威记录；
	// slug 不存在返回 ErrLinkNotFound。
	SetAnswerIfUnset(ctx context.Context, slug string, answer Answer, answeredAt time.Time, meta RequestMeta) (*Link, error)
}
