package dto

import "github.com/petalpost/proposal-link-service/pkg/timex"

// LinkCreateRequest 创建链接请求
// binding 标签顺序即校验失败时第一个被命名的字段顺序
type LinkCreateRequest struct {
	SenderName   string `json:"senderName" binding:"required" example:"Alex"`          // 发起人名字
	ReceiverName string `json:"receiverName" binding:"required" example:"Sam"`         // 收件人名字
	BackgroundID string `json:"backgroundId" binding:"required" example:"sunset"`      // 背景主题 ID
	Message      string `json:"message" binding:"required"`                            // 提案正文
	ButtonStyle  string `json:"buttonStyle" binding:"required" example:"standard"`     // 按钮样式: standard / persistent / decoy
	Template     string `json:"template" binding:"required" example:"romantic"`        // 消息模板标记
	PhotoURL     string `json:"photoUrl" binding:"omitempty,max=2048"`                 // 可选照片 URL
	Metadata     any    `json:"metadata"`                                              // 客户端附加上下文，只存档不回显
}

// LinkCreateResponse 创建链接响应
type LinkCreateResponse struct {
	Slug     string `json:"slug"`     // 公开 slug
	ShareURL string `json:"shareUrl"` // 完整分享地址
}

// LinkDTO 链接公开视图，不含创建与回答时的请求上下文
type LinkDTO struct {
	SenderName   string      `json:"senderName"`
	ReceiverName string      `json:"receiverName"`
	PhotoURL     *string     `json:"photoUrl"`
	BackgroundID string      `json:"backgroundId"`
	Message      string      `json:"message"`
	ButtonStyle  string      `json:"buttonStyle"`
	Template     string      `json:"template"`
	Answer       *string     `json:"answer"`
	AnsweredAt   *timex.Time `json:"answeredAt"`
}

// LinkViewResponse 检索响应，浏览统计随公开视图一起返回
type LinkViewResponse struct {
	Link         LinkDTO     `json:"link"`
	ViewCount    int64       `json:"viewCount"`
	LastViewedAt *timex.Time `json:"lastViewedAt"`
}

// LinkStatusResponse 回答状态查询响应（纯读取，不影响浏览计数）
type LinkStatusResponse struct {
	SenderName   string      `json:"senderName"`
	ReceiverName string      `json:"receiverName"`
	Answer       *string     `json:"answer"`
	AnsweredAt   *timex.Time `json:"answeredAt"`
}

// LinkAnswerRequest 提交回答请求
type LinkAnswerRequest struct {
	Answer string `json:"answer" binding:"required" example:"accepted"` // 原始回答，大小写不敏感，支持 yes/no 同义词
}

// LinkAnswerResponse 提交回答响应；冲突时携带已存档的回答
type LinkAnswerResponse struct {
	Answer     string      `json:"answer"`
	AnsweredAt *timex.Time `json:"answeredAt"`
}
