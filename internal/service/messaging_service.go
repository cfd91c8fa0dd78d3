package service

import (
	"context"
	"fmt"

	"gameforum/internal/domain"
	"gameforum/internal/store"
	"gameforum/internal/ws"
)

// MessagingService drives private 1:1 conversations and keeps the other
// participant's unread badge current over the websocket hub.
type MessagingService struct {
	convs *store.ConversationStore
	hub   *ws.Hub
}

func NewMessagingService(convs *store.ConversationStore, hub *ws.Hub) *MessagingService {
	return &MessagingService{convs: convs, hub: hub}
}

// OpenConversation returns the conversation between the caller and the peer,
// creating it if needed. Refused when either side has blocked the other.
func (s *MessagingService) OpenConversation(ctx context.Context, callerID, peerID string) (*domain.Conversation, error) {
	return s.convs.GetOrCreate(ctx, callerID, peerID)
}

// ListConversations returns the caller's conversations.
func (s *MessagingService) ListConversations(ctx context.Context, callerID string) ([]domain.Conversation, error) {
	return s.convs.ListForUser(ctx, callerID)
}

// GetConversation returns one conversation; the caller must participate.
func (s *MessagingService) GetConversation(ctx context.Context, convID, callerID string) (*domain.Conversation, error) {
	conv, err := s.convs.Get(ctx, convID)
	if err != nil {
		return nil, err
	}
	if !conv.Involves(callerID) {
		return nil, fmt.Errorf("%w: not a participant", domain.ErrUnauthorized)
	}
	return conv, nil
}

// SendMessage appends a message and notifies the other participant with the
// new message and their updated unread total.
func (s *MessagingService) SendMessage(ctx context.Context, convID, senderID, content string) (*domain.Message, error) {
	if content == "" {
		return nil, fmt.Errorf("%w: message content is required", domain.ErrInvalidInput)
	}
	conv, err := s.GetConversation(ctx, convID, senderID)
	if err != nil {
		return nil, err
	}
	msg, err := s.convs.SendMessage(ctx, convID, senderID, content)
	if err != nil {
		return nil, err
	}

	peer := conv.Other(senderID)
	s.hub.NotifyUser(peer, ws.Event{Type: "private_message", Payload: msg})
	if unread, err := s.convs.CountUnread(ctx, peer); err == nil {
		s.hub.NotifyUser(peer, ws.Event{Type: "unread_messages", Payload: map[string]int{"count": unread}})
	}
	return msg, nil
}

// EditMessage rewrites one of the caller's own messages.
func (s *MessagingService) EditMessage(ctx context.Context, convID, msgID, callerID, newContent string) error {
	if newContent == "" {
		return fmt.Errorf("%w: message content is required", domain.ErrInvalidInput)
	}
	return s.convs.EditMessage(ctx, convID, msgID, callerID, newContent)
}

// DeleteMessage removes one of the caller's own messages.
func (s *MessagingService) DeleteMessage(ctx context.Context, convID, msgID, callerID string) error {
	return s.convs.DeleteMessage(ctx, convID, msgID, callerID)
}

// MarkRead flags everything addressed to the caller in one conversation.
func (s *MessagingService) MarkRead(ctx context.Context, convID, callerID string) error {
	return s.convs.MarkRead(ctx, convID, callerID)
}

// CountUnread totals the caller's unread messages across conversations.
func (s *MessagingService) CountUnread(ctx context.Context, callerID string) (int, error) {
	return s.convs.CountUnread(ctx, callerID)
}

// DeleteConversation removes a whole thread. Participants only; the thread
// disappears for both sides.
func (s *MessagingService) DeleteConversation(ctx context.Context, convID, callerID string) error {
	conv, err := s.convs.Get(ctx, convID)
	if err != nil {
		return err
	}
	if !conv.Involves(callerID) {
		return fmt.Errorf("%w: not a participant", domain.ErrUnauthorized)
	}
	return s.convs.Delete(ctx, convID)
}
