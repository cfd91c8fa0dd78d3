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

// TopicStore owns the "topics" collection, a nested game → platform →
// topics document. Topics are prepended (newest first); replies are
// appended (oldest first). Path existence checks are centralized in the
// lookup helpers at the bottom of this file.
type TopicStore struct {
	col   *blob.Collection[domain.TopicTree]
	now   func() time.Time
	newID func() string
}

func NewTopicStore(blobs blob.Store) *TopicStore {
	return &TopicStore{
		col: blob.NewCollection(blobs, topicsKey, func() domain.TopicTree {
			return domain.TopicTree{}
		}),
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// TopicInput carries the caller-supplied fields of a new topic.
type TopicInput struct {
	Title   string
	Content string
}

// ReplyInput carries the caller-supplied fields of a new reply.
type ReplyInput struct {
	AuthorID string
	Username string
	Content  string
}

// TopicUpdate carries an edit; nil fields are left unchanged.
type TopicUpdate struct {
	Title   *string
	Content *string
}

// Load returns the whole topic tree.
func (s *TopicStore) Load(ctx context.Context) (domain.TopicTree, error) {
	return s.col.Load(ctx)
}

// List returns the topics of one game/platform sub-forum, newest first. An
// absent path is an empty list, not an error.
func (s *TopicStore) List(ctx context.Context, game, platform string) ([]domain.Topic, error) {
	tree, err := s.col.Load(ctx)
	if err != nil {
		return nil, err
	}
	return append([]domain.Topic{}, tree[game][platform]...), nil
}

// Get returns one topic by path and ID.
func (s *TopicStore) Get(ctx context.Context, game, platform, topicID string) (*domain.Topic, error) {
	tree, err := s.col.Load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range tree[game][platform] {
		if tree[game][platform][i].ID == topicID {
			return &tree[game][platform][i], nil
		}
	}
	return nil, fmt.Errorf("%w: topic %s", domain.ErrNotFound, topicID)
}

// Add creates a topic at the front of the game/platform list, creating the
// nested path if it does not exist yet.
func (s *TopicStore) Add(ctx context.Context, game, platform string, in TopicInput, author *domain.User) (*domain.Topic, error) {
	if author == nil {
		return nil, fmt.Errorf("%w: topic author is required", domain.ErrInvalidInput)
	}
	if game == "" || platform == "" || in.Title == "" {
		return nil, fmt.Errorf("%w: game, platform and title are required", domain.ErrInvalidInput)
	}
	topic := domain.Topic{
		ID:        s.newID(),
		Game:      game,
		Platform:  platform,
		Title:     in.Title,
		Content:   in.Content,
		AuthorID:  author.ID,
		Username:  author.Username,
		Timestamp: domain.FormatTime(s.now()),
		Edited:    false,
		Status:    domain.ContentOnline,
		Replies:   []domain.Reply{},
	}
	err := s.col.Update(ctx, func(tree *domain.TopicTree) error {
		if (*tree)[game] == nil {
			(*tree)[game] = map[string][]domain.Topic{}
		}
		(*tree)[game][platform] = append([]domain.Topic{topic}, (*tree)[game][platform]...)
		return nil
	})
	if err != nil {
		return nil, wrapStorage("add topic", err)
	}
	return &topic, nil
}

// AddReply appends a reply to a topic and returns it, so the caller can
// highlight the new entry. The topic path and ID must resolve.
func (s *TopicStore) AddReply(ctx context.Context, game, platform, topicID string, in ReplyInput) (*domain.Reply, error) {
	reply := domain.Reply{
		ID:        s.newID(),
		AuthorID:  in.AuthorID,
		Username:  in.Username,
		Content:   in.Content,
		Timestamp: domain.FormatTime(s.now()),
		Edited:    false,
		Status:    domain.ContentOnline,
	}
	err := s.updateTopic(ctx, game, platform, topicID, "add reply", func(t *domain.Topic) error {
		t.Replies = append(t.Replies, reply)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &reply, nil
}

// Edit replaces a topic's title and/or content. Only the author may edit;
// authorship and the creation timestamp never change.
func (s *TopicStore) Edit(ctx context.Context, game, platform, topicID string, upd TopicUpdate, callerID string) error {
	return s.updateTopic(ctx, game, platform, topicID, "edit topic", func(t *domain.Topic) error {
		if t.AuthorID != callerID {
			return fmt.Errorf("%w: only the author may edit a topic", domain.ErrUnauthorized)
		}
		if upd.Title != nil {
			t.Title = *upd.Title
		}
		if upd.Content != nil {
			t.Content = *upd.Content
		}
		t.Edited = true
		return nil
	})
}

// EditReply replaces a reply's content. Only the author may edit.
func (s *TopicStore) EditReply(ctx context.Context, game, platform, topicID, replyID, newContent, callerID string) error {
	return s.updateReply(ctx, game, platform, topicID, replyID, "edit reply", func(r *domain.Reply) error {
		if r.AuthorID != callerID {
			return fmt.Errorf("%w: only the author may edit a reply", domain.ErrUnauthorized)
		}
		r.Content = newContent
		r.Edited = true
		return nil
	})
}

// Delete removes a topic by ID. No authorization check happens at this
// layer; the forum service gates deletion behind author/moderator checks.
func (s *TopicStore) Delete(ctx context.Context, game, platform, topicID string) error {
	err := s.col.Update(ctx, func(tree *domain.TopicTree) error {
		list := (*tree)[game][platform]
		for i := range list {
			if list[i].ID == topicID {
				(*tree)[game][platform] = append(list[:i], list[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("%w: topic %s", domain.ErrNotFound, topicID)
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return wrapStorage("delete topic", err)
	}
	return nil
}

// DeleteReply removes a reply by ID. Same authorization note as Delete.
func (s *TopicStore) DeleteReply(ctx context.Context, game, platform, topicID, replyID string) error {
	return s.updateTopic(ctx, game, platform, topicID, "delete reply", func(t *domain.Topic) error {
		for i := range t.Replies {
			if t.Replies[i].ID == replyID {
				t.Replies = append(t.Replies[:i], t.Replies[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("%w: reply %s", domain.ErrNotFound, replyID)
	})
}

// SetStatus flips a topic's moderation visibility without touching its
// content.
func (s *TopicStore) SetStatus(ctx context.Context, game, platform, topicID, status string) error {
	if status != domain.ContentOnline && status != domain.ContentOffline {
		return fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, status)
	}
	return s.updateTopic(ctx, game, platform, topicID, "set topic status", func(t *domain.Topic) error {
		t.Status = status
		return nil
	})
}

// SetReplyStatus flips a reply's moderation visibility.
func (s *TopicStore) SetReplyStatus(ctx context.Context, game, platform, topicID, replyID, status string) error {
	if status != domain.ContentOnline && status != domain.ContentOffline {
		return fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, status)
	}
	return s.updateReply(ctx, game, platform, topicID, replyID, "set reply status", func(r *domain.Reply) error {
		r.Status = status
		return nil
	})
}

// UserTopics scans every sub-forum and returns the topics authored by
// userID. Topics already carry their game and platform.
func (s *TopicStore) UserTopics(ctx context.Context, userID string) ([]domain.Topic, error) {
	tree, err := s.col.Load(ctx)
	if err != nil {
		return nil, err
	}
	out := []domain.Topic{}
	for _, platforms := range tree {
		for _, topics := range platforms {
			for i := range topics {
				if topics[i].AuthorID == userID {
					out = append(out, topics[i])
				}
			}
		}
	}
	return out, nil
}

// UserReplies scans every sub-forum and returns the replies authored by
// userID, enriched with the addressing context of their topic.
func (s *TopicStore) UserReplies(ctx context.Context, userID string) ([]domain.UserReply, error) {
	tree, err := s.col.Load(ctx)
	if err != nil {
		return nil, err
	}
	out := []domain.UserReply{}
	for game, platforms := range tree {
		for platform, topics := range platforms {
			for i := range topics {
				for _, r := range topics[i].Replies {
					if r.AuthorID != userID {
						continue
					}
					out = append(out, domain.UserReply{
						Reply:      r,
						Game:       game,
						Platform:   platform,
						TopicID:    topics[i].ID,
						TopicTitle: topics[i].Title,
					})
				}
			}
		}
	}
	return out, nil
}

func (s *TopicStore) updateTopic(ctx context.Context, game, platform, topicID, op string, fn func(t *domain.Topic) error) error {
	err := s.col.Update(ctx, func(tree *domain.TopicTree) error {
		list := (*tree)[game][platform]
		for i := range list {
			if list[i].ID == topicID {
				return fn(&list[i])
			}
		}
		return fmt.Errorf("%w: topic %s", domain.ErrNotFound, topicID)
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrUnauthorized) {
			return err
		}
		return wrapStorage(op, err)
	}
	return nil
}

func (s *TopicStore) updateReply(ctx context.Context, game, platform, topicID, replyID, op string, fn func(r *domain.Reply) error) error {
	return s.updateTopic(ctx, game, platform, topicID, op, func(t *domain.Topic) error {
		for i := range t.Replies {
			if t.Replies[i].ID == replyID {
				return fn(&t.Replies[i])
			}
		}
		return fmt.Errorf("%w: reply %s", domain.ErrNotFound, replyID)
	})
}
