package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"gameforum/internal/domain"
	"gameforum/internal/store"
)

// ForumService drives the topic/reply tree: creation with author counters,
// author-gated edits, moderated deletes and visibility, read watermarks and
// unread badges.
type ForumService struct {
	topics *store.TopicStore
	users  *store.UserStore
}

func NewForumService(topics *store.TopicStore, users *store.UserStore) *ForumService {
	return &ForumService{topics: topics, users: users}
}

// CreateTopic adds a topic authored by authorID and bumps the author's
// topicsCreated counter.
func (s *ForumService) CreateTopic(ctx context.Context, game, platform string, in store.TopicInput, authorID string) (*domain.Topic, error) {
	author, err := s.users.GetByID(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if author == nil {
		return nil, fmt.Errorf("%w: author %s", domain.ErrNotFound, authorID)
	}
	topic, err := s.topics.Add(ctx, game, platform, in, author)
	if err != nil {
		return nil, err
	}
	if err := s.users.IncrementCounters(ctx, authorID, 1, 0); err != nil {
		log.Printf("forum: counter bump for %s: %v", authorID, err)
	}
	return topic, nil
}

// Reply appends a reply authored by authorID and bumps the author's
// totalResponses counter.
func (s *ForumService) Reply(ctx context.Context, game, platform, topicID, content, authorID string) (*domain.Reply, error) {
	if content == "" {
		return nil, fmt.Errorf("%w: reply content is required", domain.ErrInvalidInput)
	}
	author, err := s.users.GetByID(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if author == nil {
		return nil, fmt.Errorf("%w: author %s", domain.ErrNotFound, authorID)
	}
	reply, err := s.topics.AddReply(ctx, game, platform, topicID, store.ReplyInput{
		AuthorID: author.ID,
		Username: author.Username,
		Content:  content,
	})
	if err != nil {
		return nil, err
	}
	if err := s.users.IncrementCounters(ctx, authorID, 0, 1); err != nil {
		log.Printf("forum: counter bump for %s: %v", authorID, err)
	}
	return reply, nil
}

// EditTopic is author-only; the store enforces it.
func (s *ForumService) EditTopic(ctx context.Context, game, platform, topicID string, upd store.TopicUpdate, callerID string) error {
	return s.topics.Edit(ctx, game, platform, topicID, upd, callerID)
}

// EditReply is author-only; the store enforces it.
func (s *ForumService) EditReply(ctx context.Context, game, platform, topicID, replyID, newContent, callerID string) error {
	if newContent == "" {
		return fmt.Errorf("%w: reply content is required", domain.ErrInvalidInput)
	}
	return s.topics.EditReply(ctx, game, platform, topicID, replyID, newContent, callerID)
}

// DeleteTopic requires the caller to be the author or a moderator. The
// store's delete is unconditional, so the gate lives here in one place.
func (s *ForumService) DeleteTopic(ctx context.Context, game, platform, topicID string, caller *domain.User) error {
	topic, err := s.topics.Get(ctx, game, platform, topicID)
	if err != nil {
		return err
	}
	if caller == nil || (topic.AuthorID != caller.ID && !caller.CanModerate()) {
		return fmt.Errorf("%w: delete requires the author or a moderator", domain.ErrUnauthorized)
	}
	return s.topics.Delete(ctx, game, platform, topicID)
}

// DeleteReply has the same gate as DeleteTopic.
func (s *ForumService) DeleteReply(ctx context.Context, game, platform, topicID, replyID string, caller *domain.User) error {
	topic, err := s.topics.Get(ctx, game, platform, topicID)
	if err != nil {
		return err
	}
	var reply *domain.Reply
	for i := range topic.Replies {
		if topic.Replies[i].ID == replyID {
			reply = &topic.Replies[i]
			break
		}
	}
	if reply == nil {
		return fmt.Errorf("%w: reply %s", domain.ErrNotFound, replyID)
	}
	if caller == nil || (reply.AuthorID != caller.ID && !caller.CanModerate()) {
		return fmt.Errorf("%w: delete requires the author or a moderator", domain.ErrUnauthorized)
	}
	return s.topics.DeleteReply(ctx, game, platform, topicID, replyID)
}

// SetTopicVisibility flips a topic online/offline. Moderators only.
func (s *ForumService) SetTopicVisibility(ctx context.Context, game, platform, topicID, status string, caller *domain.User) error {
	if caller == nil || !caller.CanModerate() {
		return fmt.Errorf("%w: moderation requires a moderator role", domain.ErrUnauthorized)
	}
	return s.topics.SetStatus(ctx, game, platform, topicID, status)
}

// SetReplyVisibility flips a reply online/offline. Moderators only.
func (s *ForumService) SetReplyVisibility(ctx context.Context, game, platform, topicID, replyID, status string, caller *domain.User) error {
	if caller == nil || !caller.CanModerate() {
		return fmt.Errorf("%w: moderation requires a moderator role", domain.ErrUnauthorized)
	}
	return s.topics.SetReplyStatus(ctx, game, platform, topicID, replyID, status)
}

// ListTopics returns a sub-forum's topics, newest first. Offline topics and
// replies are stripped unless the viewer can moderate.
func (s *ForumService) ListTopics(ctx context.Context, game, platform string, viewer *domain.User) ([]domain.Topic, error) {
	topics, err := s.topics.List(ctx, game, platform)
	if err != nil {
		return nil, err
	}
	if viewer != nil && viewer.CanModerate() {
		return topics, nil
	}
	out := []domain.Topic{}
	for i := range topics {
		if topics[i].Status == domain.ContentOffline {
			continue
		}
		t := topics[i]
		visible := []domain.Reply{}
		for _, r := range t.Replies {
			if r.Status != domain.ContentOffline {
				visible = append(visible, r)
			}
		}
		t.Replies = visible
		out = append(out, t)
	}
	return out, nil
}

// GetTopic returns one topic with the same visibility filtering as
// ListTopics.
func (s *ForumService) GetTopic(ctx context.Context, game, platform, topicID string, viewer *domain.User) (*domain.Topic, error) {
	topic, err := s.topics.Get(ctx, game, platform, topicID)
	if err != nil {
		return nil, err
	}
	if viewer != nil && viewer.CanModerate() {
		return topic, nil
	}
	if topic.Status == domain.ContentOffline {
		return nil, fmt.Errorf("%w: topic %s", domain.ErrNotFound, topicID)
	}
	t := *topic
	visible := []domain.Reply{}
	for _, r := range t.Replies {
		if r.Status != domain.ContentOffline {
			visible = append(visible, r)
		}
	}
	t.Replies = visible
	return &t, nil
}

// MarkTopicRead advances the viewer's read watermark for a topic to now.
func (s *ForumService) MarkTopicRead(ctx context.Context, userID, topicID string) error {
	return s.users.MarkTopicRead(ctx, userID, topicID, time.Now())
}

// UnreadReplies computes the viewer's unread-reply count for one topic,
// excluding the viewer's own replies.
func (s *ForumService) UnreadReplies(ctx context.Context, game, platform, topicID string, viewer *domain.User) (int, error) {
	topic, err := s.topics.Get(ctx, game, platform, topicID)
	if err != nil {
		return 0, err
	}
	if viewer == nil {
		return domain.CountRepliesAfter(topic, "", ""), nil
	}
	return domain.CountRepliesAfter(topic, viewer.LastReadTopics[topicID], viewer.ID), nil
}

// UserTopics lists the topics a user authored, across every sub-forum.
func (s *ForumService) UserTopics(ctx context.Context, userID string) ([]domain.Topic, error) {
	return s.topics.UserTopics(ctx, userID)
}

// UserReplies lists the replies a user authored, enriched for navigation.
func (s *ForumService) UserReplies(ctx context.Context, userID string) ([]domain.UserReply, error) {
	return s.topics.UserReplies(ctx, userID)
}
