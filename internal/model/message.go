package model

import (
	"time"
)

// Conversation is a direct 1:1 thread. UpdatedAt is bumped on every send so
// the conversation list sorts by recency.
type Conversation struct {
	UUIDBase
	Participants []ConversationParticipant `gorm:"foreignKey:ConversationID" json:"participants"`
}

func (Conversation) TableName() string {
	return "conversations"
}

type ConversationParticipant struct {
	ConversationID string    `gorm:"primaryKey;type:varchar(36)" json:"conversationId"`
	UserID         uint      `gorm:"primaryKey;index" json:"userId"`
	User           User      `gorm:"foreignKey:UserID" json:"user"`
	JoinedAt       time.Time `gorm:"autoCreateTime" json:"joinedAt"`
}

func (ConversationParticipant) TableName() string {
	return "conversation_participants"
}

type Message struct {
	UUIDBase
	ConversationID string     `gorm:"index:idx_conv_created;type:varchar(36);not null" json:"conversationId"`
	CreatedAt      time.Time  `gorm:"index:idx_conv_created" json:"createdAt"`
	SenderID       uint       `gorm:"index;not null" json:"senderId"`
	Sender         User       `gorm:"foreignKey:SenderID" json:"sender"`
	Content        string     `gorm:"type:text;not null" json:"content"`
	ReadAt         *time.Time `json:"readAt"`
}

func (Message) TableName() string {
	return "messages"
}
