package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gameforum/internal/blob"
	"gameforum/internal/domain"
	"gameforum/internal/service"
	"gameforum/internal/store"
)

func newForumService(t *testing.T, userIDs ...string) (*service.ForumService, *store.UserStore) {
	t.Helper()
	mem := blob.NewMemory()
	users := store.NewUserStore(mem)

	seeded := make([]domain.User, 0, len(userIDs))
	for _, id := range userIDs {
		u := domain.User{
			ID:       id,
			Username: "name-" + id,
			Email:    id + "@example.com",
			Role:     domain.RoleUser,
			Status:   domain.StatusActive,
		}
		u.Normalize()
		seeded = append(seeded, u)
	}
	require.NoError(t, users.Save(context.Background(), seeded))

	return service.NewForumService(store.NewTopicStore(mem), users), users
}

func createTopic(t *testing.T, svc *service.ForumService, authorID string) *domain.Topic {
	t.Helper()
	topic, err := svc.CreateTopic(context.Background(), "chess", "pc", store.TopicInput{
		Title:   "openings",
		Content: "e4 or d4?",
	}, authorID)
	require.NoError(t, err)
	require.NotNil(t, topic)
	return topic
}

func TestCreateTopicBumpsCounter(t *testing.T) {
	svc, users := newForumService(t, "u1")
	ctx := context.Background()

	topic := createTopic(t, svc, "u1")
	assert.Equal(t, "name-u1", topic.Username)

	author, err := users.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, author.TopicsCreated)

	_, err = svc.CreateTopic(ctx, "chess", "pc", store.TopicInput{Title: "x"}, "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReplyBumpsCounter(t *testing.T) {
	svc, users := newForumService(t, "u1", "u2")
	ctx := context.Background()

	topic := createTopic(t, svc, "u1")

	reply, err := svc.Reply(ctx, "chess", "pc", topic.ID, "e4", "u2")
	require.NoError(t, err)
	assert.Equal(t, "name-u2", reply.Username)

	author, _ := users.GetByID(ctx, "u2")
	assert.Equal(t, 1, author.TotalResponses)

	_, err = svc.Reply(ctx, "chess", "pc", topic.ID, "", "u2")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDeleteTopicGate(t *testing.T) {
	svc, users := newForumService(t, "u1", "u2", "mod")
	ctx := context.Background()
	require.NoError(t, users.UpdateRole(ctx, "mod", domain.RoleModerator))

	topic := createTopic(t, svc, "u1")
	stranger, _ := users.GetByID(ctx, "u2")
	assert.ErrorIs(t, svc.DeleteTopic(ctx, "chess", "pc", topic.ID, stranger), domain.ErrUnauthorized)

	author, _ := users.GetByID(ctx, "u1")
	require.NoError(t, svc.DeleteTopic(ctx, "chess", "pc", topic.ID, author))

	// Moderators may delete other people's topics.
	topic = createTopic(t, svc, "u1")
	mod, _ := users.GetByID(ctx, "mod")
	require.NoError(t, svc.DeleteTopic(ctx, "chess", "pc", topic.ID, mod))
}

func TestDeleteReplyGate(t *testing.T) {
	svc, users := newForumService(t, "u1", "u2")
	ctx := context.Background()

	topic := createTopic(t, svc, "u1")
	reply, err := svc.Reply(ctx, "chess", "pc", topic.ID, "e4", "u2")
	require.NoError(t, err)

	// The topic author is not the reply author and cannot moderate.
	topicAuthor, _ := users.GetByID(ctx, "u1")
	assert.ErrorIs(t,
		svc.DeleteReply(ctx, "chess", "pc", topic.ID, reply.ID, topicAuthor),
		domain.ErrUnauthorized)

	replyAuthor, _ := users.GetByID(ctx, "u2")
	require.NoError(t, svc.DeleteReply(ctx, "chess", "pc", topic.ID, reply.ID, replyAuthor))
}

func TestOfflineContentHiddenFromUsers(t *testing.T) {
	svc, users := newForumService(t, "u1", "mod")
	ctx := context.Background()
	require.NoError(t, users.UpdateRole(ctx, "mod", domain.RoleModerator))
	mod, _ := users.GetByID(ctx, "mod")
	viewer, _ := users.GetByID(ctx, "u1")

	topic := createTopic(t, svc, "u1")
	hidden, err := svc.Reply(ctx, "chess", "pc", topic.ID, "spam", "u1")
	require.NoError(t, err)

	assert.ErrorIs(t,
		svc.SetTopicVisibility(ctx, "chess", "pc", topic.ID, domain.ContentOffline, viewer),
		domain.ErrUnauthorized)

	require.NoError(t, svc.SetReplyVisibility(ctx, "chess", "pc", topic.ID, hidden.ID, domain.ContentOffline, mod))

	got, err := svc.GetTopic(ctx, "chess", "pc", topic.ID, viewer)
	require.NoError(t, err)
	assert.Empty(t, got.Replies)

	// Moderators see the reply with its offline flag.
	got, err = svc.GetTopic(ctx, "chess", "pc", topic.ID, mod)
	require.NoError(t, err)
	require.Len(t, got.Replies, 1)
	assert.Equal(t, domain.ContentOffline, got.Replies[0].Status)

	// Taking the whole topic offline removes it from users entirely.
	require.NoError(t, svc.SetTopicVisibility(ctx, "chess", "pc", topic.ID, domain.ContentOffline, mod))

	_, err = svc.GetTopic(ctx, "chess", "pc", topic.ID, viewer)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	list, err := svc.ListTopics(ctx, "chess", "pc", viewer)
	require.NoError(t, err)
	assert.Empty(t, list)

	list, err = svc.ListTopics(ctx, "chess", "pc", mod)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestUnreadRepliesFlow(t *testing.T) {
	svc, users := newForumService(t, "u1", "u2")
	ctx := context.Background()

	topic := createTopic(t, svc, "u1")
	_, err := svc.Reply(ctx, "chess", "pc", topic.ID, "first", "u2")
	require.NoError(t, err)

	viewer, _ := users.GetByID(ctx, "u1")
	n, err := svc.UnreadReplies(ctx, "chess", "pc", topic.ID, viewer)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, svc.MarkTopicRead(ctx, "u1", topic.ID))
	viewer, _ = users.GetByID(ctx, "u1")
	n, err = svc.UnreadReplies(ctx, "chess", "pc", topic.ID, viewer)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	// A reply after the watermark is unread again; the viewer's own is not.
	_, err = svc.Reply(ctx, "chess", "pc", topic.ID, "second", "u2")
	require.NoError(t, err)
	_, err = svc.Reply(ctx, "chess", "pc", topic.ID, "mine", "u1")
	require.NoError(t, err)

	viewer, _ = users.GetByID(ctx, "u1")
	n, err = svc.UnreadReplies(ctx, "chess", "pc", topic.ID, viewer)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
