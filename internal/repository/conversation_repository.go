package repository

import (
	"time"

	"iwala99_backend/internal/model"

	"gorm.io/gorm"
)

type ConversationRepository struct {
	DB *gorm.DB
}

func NewConversationRepository(db *gorm.DB) *ConversationRepository {
	return &ConversationRepository{DB: db}
}

// ConversationSummary is one row of the inbox list.
type ConversationSummary struct {
	Conversation model.Conversation
	LastMessage  *model.Message
	UnreadCount  int64
}

func (r *ConversationRepository) FindByUser(userID uint) ([]ConversationSummary, error) {
	var conversations []model.Conversation
	err := r.DB.
		Joins("JOIN conversation_participants cp ON cp.conversation_id = conversations.id").
		Where("cp.user_id = ?", userID).
		Preload("Participants.User").
		Order("conversations.updated_at DESC").
		Find(&conversations).Error
	if err != nil {
		return nil, err
	}

	summaries := make([]ConversationSummary, 0, len(conversations))
	for _, conv := range conversations {
		var last model.Message
		var lastPtr *model.Message
		err := r.DB.Where("conversation_id = ?", conv.ID).
			Order("created_at DESC").
			First(&last).Error
		if err == nil {
			lastPtr = &last
		} else if err != gorm.ErrRecordNotFound {
			return nil, err
		}

		var unread int64
		err = r.DB.Model(&model.Message{}).
			Where("conversation_id = ? AND sender_id <> ? AND read_at IS NULL", conv.ID, userID).
			Count(&unread).Error
		if err != nil {
			return nil, err
		}

		summaries = append(summaries, ConversationSummary{
			Conversation: conv,
			LastMessage:  lastPtr,
			UnreadCount:  unread,
		})
	}
	return summaries, nil
}

// FindDirectBetween returns the existing 1:1 conversation between two
// users, or gorm.ErrRecordNotFound.
func (r *ConversationRepository) FindDirectBetween(userA, userB uint) (*model.Conversation, error) {
	var conv model.Conversation
	err := r.DB.
		Joins("JOIN conversation_participants a ON a.conversation_id = conversations.id AND a.user_id = ?", userA).
		Joins("JOIN conversation_participants b ON b.conversation_id = conversations.id AND b.user_id = ?", userB).
		Preload("Participants.User").
		First(&conv).Error
	return &conv, err
}

func (r *ConversationRepository) CreateDirect(userA, userB uint) (*model.Conversation, error) {
	conv := &model.Conversation{}
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(conv).Error; err != nil {
			return err
		}
		participants := []model.ConversationParticipant{
			{ConversationID: conv.ID, UserID: userA},
			{ConversationID: conv.ID, UserID: userB},
		}
		return tx.Create(&participants).Error
	})
	if err != nil {
		return nil, err
	}
	return r.FindByID(conv.ID)
}

func (r *ConversationRepository) FindByID(id string) (*model.Conversation, error) {
	var conv model.Conversation
	err := r.DB.Preload("Participants.User").Where("id = ?", id).First(&conv).Error
	return &conv, err
}

func (r *ConversationRepository) IsParticipant(conversationID string, userID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&model.ConversationParticipant{}).
		Where("conversation_id = ? AND user_id = ?", conversationID, userID).
		Count(&count).Error
	return count > 0, err
}

// RelatedUserIDs lists everyone who shares a conversation with the user,
// for presence fan-out.
func (r *ConversationRepository) RelatedUserIDs(userID uint) ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&model.ConversationParticipant{}).
		Distinct("user_id").
		Where("user_id <> ? AND conversation_id IN (?)",
			userID,
			r.DB.Model(&model.ConversationParticipant{}).
				Select("conversation_id").
				Where("user_id = ?", userID),
		).
		Pluck("user_id", &ids).Error
	return ids, err
}

// ParticipantIDs lists the members of a conversation for realtime fan-out.
func (r *ConversationRepository) ParticipantIDs(conversationID string) ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&model.ConversationParticipant{}).
		Where("conversation_id = ?", conversationID).
		Pluck("user_id", &ids).Error
	return ids, err
}

// CreateMessage inserts the message and touches the conversation so the
// inbox sorts it to the top.
func (r *ConversationRepository) CreateMessage(message *model.Message) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(message).Error; err != nil {
			return err
		}
		return tx.Model(&model.Conversation{}).
			Where("id = ?", message.ConversationID).
			UpdateColumn("updated_at", time.Now()).
			Error
	})
}

func (r *ConversationRepository) FindMessages(conversationID string, limit int) ([]model.Message, error) {
	var messages []model.Message
	err := r.DB.Preload("Sender").
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC").
		Limit(limit).
		Find(&messages).Error
	return messages, err
}

// MarkRead stamps every unread message from the other side.
func (r *ConversationRepository) MarkRead(conversationID string, readerID uint) error {
	return r.DB.Model(&model.Message{}).
		Where("conversation_id = ? AND sender_id <> ? AND read_at IS NULL", conversationID, readerID).
		Update("read_at", time.Now()).
		Error
}

func (r *ConversationRepository) CountUnread(userID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Message{}).
		Joins("JOIN conversation_participants cp ON cp.conversation_id = messages.conversation_id").
		Where("cp.user_id = ? AND messages.sender_id <> ? AND messages.read_at IS NULL", userID, userID).
		Count(&count).Error
	return count, err
}
