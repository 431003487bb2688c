package service

import (
	"errors"
	"strings"

	"iwala99_backend/internal/model"
	"iwala99_backend/internal/repository"
	"iwala99_backend/internal/util"

	"gorm.io/gorm"
)

type MessageService struct {
	ConversationRepo *repository.ConversationRepository
	UserRepo         *repository.UserRepository
	NotificationSvc  *NotificationService
	Hub              *RealtimeHub
}

func NewMessageService(
	conversationRepo *repository.ConversationRepository,
	userRepo *repository.UserRepository,
	notificationSvc *NotificationService,
	hub *RealtimeHub,
) *MessageService {
	return &MessageService{
		ConversationRepo: conversationRepo,
		UserRepo:         userRepo,
		NotificationSvc:  notificationSvc,
		Hub:              hub,
	}
}

// ConversationView is one inbox row, shaped around the other party.
type ConversationView struct {
	ID          string         `json:"id"`
	Peer        *model.User    `json:"peer"`
	PeerOnline  bool           `json:"peerOnline"`
	LastMessage *model.Message `json:"lastMessage"`
	UnreadCount int64          `json:"unreadCount"`
	UpdatedAt   string         `json:"updatedAt"`
}

func (s *MessageService) viewOf(summary repository.ConversationSummary, viewerID uint) ConversationView {
	view := ConversationView{
		ID:          summary.Conversation.ID,
		LastMessage: summary.LastMessage,
		UnreadCount: summary.UnreadCount,
		UpdatedAt:   summary.Conversation.UpdatedAt.UTC().Format("2006-01-02T15:04:05.000Z"),
	}
	for i := range summary.Conversation.Participants {
		p := &summary.Conversation.Participants[i]
		if p.UserID != viewerID {
			view.Peer = &p.User
			if s.Hub != nil {
				view.PeerOnline = s.Hub.IsUserOnline(p.UserID)
			}
			break
		}
	}
	return view
}

func (s *MessageService) ListConversations(userID uint) ([]ConversationView, error) {
	summaries, err := s.ConversationRepo.FindByUser(userID)
	if err != nil {
		return nil, err
	}

	views := make([]ConversationView, 0, len(summaries))
	for _, summary := range summaries {
		views = append(views, s.viewOf(summary, userID))
	}
	return views, nil
}

// StartConversation opens (or returns the existing) 1:1 thread with the
// user identified by public ID.
func (s *MessageService) StartConversation(userID uint, peerPublicID string) (*model.Conversation, error) {
	peer, err := s.UserRepo.FindByPublicID(peerPublicID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}

	if peer.ID == userID {
		return nil, util.ErrSelfConversation
	}

	conv, err := s.ConversationRepo.FindDirectBetween(userID, peer.ID)
	if err == nil {
		return conv, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	return s.ConversationRepo.CreateDirect(userID, peer.ID)
}

func (s *MessageService) authorize(conversationID string, userID uint) error {
	isMember, err := s.ConversationRepo.IsParticipant(conversationID, userID)
	if err != nil {
		return err
	}
	if !isMember {
		return util.ErrConversationAccess
	}
	return nil
}

// Messages returns the thread oldest first and marks the other side's
// messages read, matching the open-the-thread gesture.
func (s *MessageService) Messages(conversationID string, userID uint) ([]model.Message, error) {
	if err := s.authorize(conversationID, userID); err != nil {
		return nil, err
	}

	messages, err := s.ConversationRepo.FindMessages(conversationID, 200)
	if err != nil {
		return nil, err
	}

	if err := s.markReadAndNotify(conversationID, userID); err != nil {
		return nil, err
	}

	return messages, nil
}

func (s *MessageService) SendMessage(conversationID string, senderID uint, content string) (*model.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, errors.New("message content is empty")
	}

	if err := s.authorize(conversationID, senderID); err != nil {
		return nil, err
	}

	message := &model.Message{
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        content,
	}
	if err := s.ConversationRepo.CreateMessage(message); err != nil {
		return nil, err
	}

	sender, err := s.UserRepo.FindByID(senderID)
	if err == nil {
		message.Sender = *sender
	}

	memberIDs, err := s.ConversationRepo.ParticipantIDs(conversationID)
	if err != nil {
		return message, nil
	}

	var recipients []uint
	for _, id := range memberIDs {
		if id != senderID {
			recipients = append(recipients, id)
		}
	}

	if s.Hub != nil && len(recipients) > 0 {
		s.Hub.PushToUsers(recipients, WSMessage{
			Type: EventNewMessage,
			Data: message,
		})
	}

	// Offline recipients get a durable notification instead.
	if s.NotificationSvc != nil {
		for _, id := range recipients {
			if s.Hub != nil && s.Hub.IsUserOnline(id) {
				continue
			}
			s.NotificationSvc.Notify(id, model.NotifyMessage,
				"New message",
				message.Sender.Username+" sent you a message.",
				map[string]interface{}{
					"conversationId": conversationID,
				})
		}
	}

	return message, nil
}

func (s *MessageService) MarkRead(conversationID string, userID uint) error {
	if err := s.authorize(conversationID, userID); err != nil {
		return err
	}
	return s.markReadAndNotify(conversationID, userID)
}

// markReadAndNotify stamps unread messages and tells the other side so
// read receipts update live.
func (s *MessageService) markReadAndNotify(conversationID string, readerID uint) error {
	if err := s.ConversationRepo.MarkRead(conversationID, readerID); err != nil {
		return err
	}

	if s.Hub == nil {
		return nil
	}
	memberIDs, err := s.ConversationRepo.ParticipantIDs(conversationID)
	if err != nil {
		return nil
	}
	var others []uint
	for _, id := range memberIDs {
		if id != readerID {
			others = append(others, id)
		}
	}
	if len(others) > 0 {
		s.Hub.PushToUsers(others, WSMessage{
			Type: EventMessagesRead,
			Data: map[string]interface{}{
				"conversationId": conversationID,
				"readerId":       readerID,
			},
		})
	}
	return nil
}

func (s *MessageService) UnreadCount(userID uint) (int64, error) {
	return s.ConversationRepo.CountUnread(userID)
}
