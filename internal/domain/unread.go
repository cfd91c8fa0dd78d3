package domain

// CountRepliesAfter counts the replies of a topic strictly newer than the
// lastRead watermark, optionally skipping one author's own replies. An empty
// watermark means the topic was never read, so every reply counts. A reply
// whose timestamp equals the watermark is already read; replies without a
// timestamp are ignored.
//
// This is the unread-badge primitive. It performs no I/O and may be called
// repeatedly during rendering.
func CountRepliesAfter(t *Topic, lastRead string, excludeUserID string) int {
	if t == nil {
		return 0
	}

	watermark := int64(0)
	if lastRead != "" {
		ts, err := ParseTime(lastRead)
		if err == nil {
			watermark = ts.UnixNano()
		}
	}

	count := 0
	for i := range t.Replies {
		r := &t.Replies[i]
		if excludeUserID != "" && r.AuthorID == excludeUserID {
			continue
		}
		if r.Timestamp == "" {
			continue
		}
		ts, err := ParseTime(r.Timestamp)
		if err != nil {
			continue
		}
		if ts.UnixNano() > watermark {
			count++
		}
	}
	return count
}
