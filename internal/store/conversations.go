package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"gameforum/internal/blob"
	"gameforum/internal/domain"
)

// ConversationStore owns the "conversations" collection. It reads the users
// collection (through the UserStore) only to enforce block checks at
// creation time.
type ConversationStore struct {
	col   *blob.Collection[[]domain.Conversation]
	users *UserStore
	now   func() time.Time
	newID func() string
}

func NewConversationStore(blobs blob.Store, users *UserStore) *ConversationStore {
	return &ConversationStore{
		col: blob.NewCollection(blobs, conversationsKey, func() []domain.Conversation {
			return []domain.Conversation{}
		}),
		users: users,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Load returns every conversation. Absent or unreadable collections come
// back empty.
func (s *ConversationStore) Load(ctx context.Context) ([]domain.Conversation, error) {
	return s.col.Load(ctx)
}

// Get returns one conversation by ID.
func (s *ConversationStore) Get(ctx context.Context, convID string) (*domain.Conversation, error) {
	convs, err := s.col.Load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range convs {
		if convs[i].ID == convID {
			return &convs[i], nil
		}
	}
	return nil, fmt.Errorf("%w: conversation %s", domain.ErrNotFound, convID)
}

// GetOrCreate returns the conversation between the unordered pair (u1, u2),
// creating it if none exists. Creation is refused when either user is
// missing or either side has blocked the other.
func (s *ConversationStore) GetOrCreate(ctx context.Context, u1, u2 string) (*domain.Conversation, error) {
	a, err := s.users.GetByID(ctx, u1)
	if err != nil {
		return nil, err
	}
	b, err := s.users.GetByID(ctx, u2)
	if err != nil {
		return nil, err
	}
	if a == nil || b == nil {
		return nil, fmt.Errorf("%w: conversation participant", domain.ErrNotFound)
	}
	if a.HasBlocked(u2) || b.HasBlocked(u1) {
		return nil, fmt.Errorf("%w: one participant has blocked the other", domain.ErrInvalidState)
	}

	var result domain.Conversation
	err = s.col.Update(ctx, func(convs *[]domain.Conversation) error {
		for i := range *convs {
			if (*convs)[i].IsBetween(u1, u2) {
				result = (*convs)[i]
				return blob.ErrNoChange
			}
		}
		result = domain.Conversation{
			ID:       s.newID(),
			User1:    u1,
			User2:    u2,
			Messages: []domain.Message{},
		}
		*convs = append(*convs, result)
		return nil
	})
	if err != nil {
		return nil, wrapStorage("get or create conversation", err)
	}
	return &result, nil
}

// SendMessage appends a new unread message to the named conversation.
func (s *ConversationStore) SendMessage(ctx context.Context, convID, senderID, content string) (*domain.Message, error) {
	msg := domain.Message{
		ID:        s.newID(),
		SenderID:  senderID,
		Content:   content,
		Timestamp: domain.FormatTime(s.now()),
		Edited:    false,
		Read:      false,
	}
	err := s.updateConversation(ctx, convID, "send message", func(c *domain.Conversation) error {
		c.Messages = append(c.Messages, msg)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// EditMessage replaces a message's content. Only the original sender may
// edit; the timestamp is untouched and the edited flag is set.
func (s *ConversationStore) EditMessage(ctx context.Context, convID, msgID, callerID, newContent string) error {
	return s.updateConversation(ctx, convID, "edit message", func(c *domain.Conversation) error {
		for i := range c.Messages {
			if c.Messages[i].ID != msgID {
				continue
			}
			if c.Messages[i].SenderID != callerID {
				return fmt.Errorf("%w: only the sender may edit a message", domain.ErrUnauthorized)
			}
			c.Messages[i].Content = newContent
			c.Messages[i].Edited = true
			return nil
		}
		return fmt.Errorf("%w: message %s", domain.ErrNotFound, msgID)
	})
}

// DeleteMessage removes a message. Only the original sender may delete.
func (s *ConversationStore) DeleteMessage(ctx context.Context, convID, msgID, callerID string) error {
	return s.updateConversation(ctx, convID, "delete message", func(c *domain.Conversation) error {
		for i := range c.Messages {
			if c.Messages[i].ID != msgID {
				continue
			}
			if c.Messages[i].SenderID != callerID {
				return fmt.Errorf("%w: only the sender may delete a message", domain.ErrUnauthorized)
			}
			c.Messages = append(c.Messages[:i], c.Messages[i+1:]...)
			return nil
		}
		return fmt.Errorf("%w: message %s", domain.ErrNotFound, msgID)
	})
}

// MarkRead flags every message not sent by userID as read. Reports success
// even when nothing changed.
func (s *ConversationStore) MarkRead(ctx context.Context, convID, userID string) error {
	return s.updateConversation(ctx, convID, "mark messages read", func(c *domain.Conversation) error {
		changed := false
		for i := range c.Messages {
			if !c.Messages[i].Read && c.Messages[i].SenderID != userID {
				c.Messages[i].Read = true
				changed = true
			}
		}
		if !changed {
			return blob.ErrNoChange
		}
		return nil
	})
}

// CountUnread counts unread messages addressed to userID across every
// conversation the user participates in.
func (s *ConversationStore) CountUnread(ctx context.Context, userID string) (int, error) {
	convs, err := s.col.Load(ctx)
	if err != nil {
		return 0, err
	}
	total := 0
	for i := range convs {
		if !convs[i].Involves(userID) {
			continue
		}
		for _, m := range convs[i].Messages {
			if !m.Read && m.SenderID != userID {
				total++
			}
		}
	}
	return total, nil
}

// ListForUser returns every conversation userID participates in.
func (s *ConversationStore) ListForUser(ctx context.Context, userID string) ([]domain.Conversation, error) {
	convs, err := s.col.Load(ctx)
	if err != nil {
		return nil, err
	}
	out := []domain.Conversation{}
	for i := range convs {
		if convs[i].Involves(userID) {
			out = append(out, convs[i])
		}
	}
	return out, nil
}

// Delete removes a conversation outright. There is no per-participant
// soft-delete; the thread disappears for both sides.
func (s *ConversationStore) Delete(ctx context.Context, convID string) error {
	err := s.col.Update(ctx, func(convs *[]domain.Conversation) error {
		for i := range *convs {
			if (*convs)[i].ID == convID {
				*convs = append((*convs)[:i], (*convs)[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("%w: conversation %s", domain.ErrNotFound, convID)
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return wrapStorage("delete conversation", err)
	}
	return nil
}

func (s *ConversationStore) updateConversation(ctx context.Context, convID, op string, fn func(c *domain.Conversation) error) error {
	err := s.col.Update(ctx, func(convs *[]domain.Conversation) error {
		for i := range *convs {
			if (*convs)[i].ID == convID {
				return fn(&(*convs)[i])
			}
		}
		return fmt.Errorf("%w: conversation %s", domain.ErrNotFound, convID)
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrUnauthorized) {
			return err
		}
		return wrapStorage(op, err)
	}
	return nil
}
