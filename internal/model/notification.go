package model

import (
	"time"
)

type NotificationType string

const (
	NotifySolve   NotificationType = "challenge_solved"
	NotifyComment NotificationType = "post_comment"
	NotifyLike    NotificationType = "post_like"
	NotifyMessage NotificationType = "new_message"
	NotifySystem  NotificationType = "system"
)

type Notification struct {
	UUIDBase
	UserID  uint                   `gorm:"index;not null" json:"userId"`
	Type    NotificationType       `gorm:"size:30;not null" json:"type"`
	Title   string                 `gorm:"size:100;not null" json:"title"`
	Message string                 `gorm:"size:500" json:"message"`
	Data    map[string]interface{} `gorm:"serializer:json;type:text" json:"data"`
	ReadAt  *time.Time             `json:"readAt"`
}

func (Notification) TableName() string {
	return "notifications"
}
