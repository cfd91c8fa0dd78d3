package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"gameforum/internal/domain"
)

func reply(author string, at time.Time) domain.Reply {
	return domain.Reply{
		ID:        "r-" + at.Format("150405.000000000"),
		AuthorID:  author,
		Content:   "hi",
		Timestamp: domain.FormatTime(at),
		Status:    domain.ContentOnline,
	}
}

func TestCountRepliesAfterNilTopic(t *testing.T) {
	assert.Equal(t, 0, domain.CountRepliesAfter(nil, "", "u1"))
}

func TestCountRepliesAfterNeverRead(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	topic := &domain.Topic{Replies: []domain.Reply{
		reply("u2", base),
		reply("u2", base.Add(time.Minute)),
		reply("u1", base.Add(2 * time.Minute)),
	}}

	// Empty watermark counts every reply, minus the viewer's own.
	assert.Equal(t, 2, domain.CountRepliesAfter(topic, "", "u1"))
	assert.Equal(t, 3, domain.CountRepliesAfter(topic, "", ""))
}

func TestCountRepliesAfterWatermark(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	topic := &domain.Topic{Replies: []domain.Reply{
		reply("u2", base),
		reply("u2", base.Add(time.Minute)),
	}}

	// u1 read the topic between the two replies.
	lastRead := domain.FormatTime(base.Add(30 * time.Second))
	assert.Equal(t, 1, domain.CountRepliesAfter(topic, lastRead, "u1"))
}

func TestCountRepliesAfterEqualTimestampIsRead(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 123456789, time.UTC)
	topic := &domain.Topic{Replies: []domain.Reply{reply("u2", at)}}

	assert.Equal(t, 0, domain.CountRepliesAfter(topic, domain.FormatTime(at), "u1"))
	assert.Equal(t, 1, domain.CountRepliesAfter(topic, domain.FormatTime(at.Add(-time.Nanosecond)), "u1"))
}

func TestCountRepliesAfterSkipsBadTimestamps(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	topic := &domain.Topic{Replies: []domain.Reply{
		{ID: "r1", AuthorID: "u2", Timestamp: ""},
		{ID: "r2", AuthorID: "u2", Timestamp: "not-a-time"},
		reply("u2", base),
	}}

	assert.Equal(t, 1, domain.CountRepliesAfter(topic, "", "u1"))
}
