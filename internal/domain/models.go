package domain

import "time"

// Role values for User.Role.
const (
	RoleUser      = "user"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

// Account status values for User.Status.
const (
	StatusActive    = "active"
	StatusSuspended = "suspended"
)

// Visibility values for Topic.Status and Reply.Status. Offline content is
// hidden from non-privileged viewers but never deleted by moderation.
const (
	ContentOnline  = "online"
	ContentOffline = "offline"
)

// TimeLayout is the timestamp format used inside stored documents.
const TimeLayout = time.RFC3339Nano

// FormatTime renders a timestamp the way it is stored in the collections.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ParseTime parses a stored timestamp.
func ParseTime(s string) (time.Time, error) {
	return time.Parse(TimeLayout, s)
}

// User is one record of the "users" collection.
//
// The relationship fields (friends, pending requests, blocks) are stored
// redundantly on both records of a pair; every mutation of them goes through
// the social graph methods of the user store so both copies stay symmetric
// inside a single collection rewrite.
type User struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash string `json:"passwordHash"`
	Role         string `json:"role"`
	Status       string `json:"status"`

	Gender string  `json:"gender,omitempty"`
	Avatar *string `json:"avatar"`
	About  string  `json:"about,omitempty"`

	TopicsCreated  int `json:"topicsCreated"`
	TotalResponses int `json:"totalResponses"`

	Friends                []string `json:"friends"`
	IncomingFriendRequests []string `json:"incomingFriendRequests"`
	OutgoingFriendRequests []string `json:"outgoingFriendRequests"`
	BlockedUsers           []string `json:"blockedUsers"`

	// LastReadTopics maps topic ID to the time the user last opened that
	// topic. A missing entry means "never read". Entries for deleted topics
	// are left behind and ignored.
	LastReadTopics map[string]string `json:"lastReadTopics"`
}

// Normalize fills in the optional collection fields so callers never have to
// nil-check them. Older records written before a field existed come back
// from the blob store without it.
func (u *User) Normalize() {
	if u.Friends == nil {
		u.Friends = []string{}
	}
	if u.IncomingFriendRequests == nil {
		u.IncomingFriendRequests = []string{}
	}
	if u.OutgoingFriendRequests == nil {
		u.OutgoingFriendRequests = []string{}
	}
	if u.BlockedUsers == nil {
		u.BlockedUsers = []string{}
	}
	if u.LastReadTopics == nil {
		u.LastReadTopics = map[string]string{}
	}
}

// HasFriend reports whether id is in the user's friend set.
func (u *User) HasFriend(id string) bool {
	return contains(u.Friends, id)
}

// HasBlocked reports whether the user has blocked id.
func (u *User) HasBlocked(id string) bool {
	return contains(u.BlockedUsers, id)
}

// CanModerate reports whether the user may act on other people's content.
func (u *User) CanModerate() bool {
	return u.Role == RoleModerator || u.Role == RoleAdmin
}

func contains(list []string, id string) bool {
	for _, v := range list {
		if v == id {
			return true
		}
	}
	return false
}

// Message is a single private message inside a conversation.
type Message struct {
	ID        string `json:"id"`
	SenderID  string `json:"senderId"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
	Edited    bool   `json:"edited"`
	Read      bool   `json:"read"`
}

// Conversation is a 1:1 private thread between an unordered pair of users.
// At most one conversation exists per pair; messages are append-only in
// insertion order.
type Conversation struct {
	ID       string    `json:"id"`
	User1    string    `json:"user1"`
	User2    string    `json:"user2"`
	Messages []Message `json:"messages"`
}

// Involves reports whether userID is one of the two participants.
func (c *Conversation) Involves(userID string) bool {
	return c.User1 == userID || c.User2 == userID
}

// IsBetween reports whether the conversation links a and b, in either order.
func (c *Conversation) IsBetween(a, b string) bool {
	return (c.User1 == a && c.User2 == b) || (c.User1 == b && c.User2 == a)
}

// Other returns the participant that is not userID.
func (c *Conversation) Other(userID string) string {
	if c.User1 == userID {
		return c.User2
	}
	return c.User1
}

// Reply is a single response inside a topic, appended oldest-first.
type Reply struct {
	ID        string `json:"id"`
	AuthorID  string `json:"authorId"`
	Username  string `json:"username,omitempty"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
	Edited    bool   `json:"edited"`
	Status    string `json:"status"`
}

// Topic is a forum thread inside a game/platform sub-forum.
type Topic struct {
	ID        string  `json:"id"`
	Game      string  `json:"game"`
	Platform  string  `json:"platform"`
	Title     string  `json:"title"`
	Content   string  `json:"content"`
	AuthorID  string  `json:"authorId"`
	Username  string  `json:"username,omitempty"`
	Timestamp string  `json:"timestamp"`
	Edited    bool    `json:"edited"`
	Status    string  `json:"status"`
	Replies   []Reply `json:"replies"`
}

// TopicTree is the stored shape of the "topics" collection:
// game → platform → topics, newest topic first.
type TopicTree map[string]map[string][]Topic

// UserReply is a reply enriched with enough addressing context to navigate
// back to its topic without a second lookup.
type UserReply struct {
	Reply
	Game       string `json:"game"`
	Platform   string `json:"platform"`
	TopicID    string `json:"topicId"`
	TopicTitle string `json:"topicTitle"`
}
