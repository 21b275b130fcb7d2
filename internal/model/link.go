package model

import "github.com/petalpost/proposal-link-service/pkg/timex"

const TableNameLink = "link"

// Link mapped from table <link>
type Link struct {
	ID           int64       `gorm:"column:id;primaryKey" json:"id" form:"id"`
	Slug         string      `gorm:"column:slug;size:32;not null;uniqueIndex:idx_link_slug" json:"slug" form:"slug"`
	SenderName   string      `gorm:"column:sender_name;not null" json:"senderName" form:"senderName"`
	ReceiverName string      `gorm:"column:receiver_name;not null" json:"receiverName" form:"receiverName"`
	PhotoURL     string      `gorm:"column:photo_url" json:"photoUrl" form:"photoUrl"`
	BackgroundID string      `gorm:"column:background_id;not null" json:"backgroundId" form:"backgroundId"`
	Message      string      `gorm:"column:message;type:text;not null" json:"message" form:"message"`
	ButtonStyle  string      `gorm:"column:button_style;not null" json:"buttonStyle" form:"buttonStyle"`
	Template     string      `gorm:"column:template;not null" json:"template" form:"template"`
	Metadata     string      `gorm:"column:metadata;type:text" json:"-"`
	Answer       *string     `gorm:"column:answer" json:"answer" form:"answer"`
	AnsweredAt   *timex.Time `gorm:"column:answered_at;type:datetime;default:NULL" json:"answeredAt" form:"answeredAt"`
	AnsweredMeta string      `gorm:"column:answered_meta;type:text" json:"-"`
	ViewCount    int64       `gorm:"column:view_count;not null;default:0" json:"viewCount" form:"viewCount"`
	LastViewedAt *timex.Time `gorm:"column:last_viewed_at;type:datetime;default:NULL" json:"lastViewedAt" form:"lastViewedAt"`
	CreatedAt    timex.Time  `gorm:"column:created_at;type:datetime;autoCreateTime:false" json:"createdAt" form:"createdAt"`
	UpdatedAt    timex.Time  `gorm:"column:updated_at;type:datetime;autoUpdateTime:false" json:"updatedAt" form:"updatedAt"`
}

// TableName Link's table name
func (*Link) TableName() string {
	return TableNameLink
}
