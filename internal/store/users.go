package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"gameforum/internal/blob"
	"gameforum/internal/domain"
)

// Collection keys in the blob store.
const (
	usersKey         = "users"
	currentUserKey   = "currentUser"
	conversationsKey = "conversations"
	topicsKey        = "topics"
)

// wrapStorage tags a failed collection write with ErrStorage so callers can
// tell infrastructure failures apart from domain failures.
func wrapStorage(op string, err error) error {
	return fmt.Errorf("%s: %w", op, errors.Join(domain.ErrStorage, err))
}

// UserStore owns the "users" collection and the "currentUser" session
// document. All social-graph mutations also live on this type (social.go)
// because they are rewrites of the same collection.
type UserStore struct {
	blobs     blob.Store
	col       *blob.Collection[[]domain.User]
	sessionMu sync.Mutex
	now       func() time.Time
}

func NewUserStore(blobs blob.Store) *UserStore {
	return &UserStore{
		blobs: blobs,
		col: blob.NewCollection(blobs, usersKey, func() []domain.User {
			return []domain.User{}
		}),
		now: time.Now,
	}
}

// Load returns every user record. An absent or unreadable collection comes
// back as an empty slice.
func (s *UserStore) Load(ctx context.Context) ([]domain.User, error) {
	users, err := s.col.Load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].Normalize()
	}
	return users, nil
}

// Save replaces the whole users collection.
func (s *UserStore) Save(ctx context.Context, users []domain.User) error {
	if users == nil {
		return fmt.Errorf("%w: users must be a sequence", domain.ErrInvalidInput)
	}
	if err := s.col.Save(ctx, users); err != nil {
		return wrapStorage("save users", err)
	}
	return nil
}

// GetByID returns the user with the given ID, or nil when absent.
func (s *UserStore) GetByID(ctx context.Context, id string) (*domain.User, error) {
	users, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].ID == id {
			return &users[i], nil
		}
	}
	return nil, nil
}

// GetByEmail returns the user with the given email, matched
// case-insensitively, or nil when absent.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	users, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if strings.EqualFold(users[i].Email, email) {
			return &users[i], nil
		}
	}
	return nil, nil
}

// Create appends a new user record. Email and username must be unique
// (case-insensitive).
func (s *UserStore) Create(ctx context.Context, u *domain.User) error {
	if u == nil {
		return fmt.Errorf("%w: user is nil", domain.ErrInvalidInput)
	}
	u.Normalize()
	err := s.col.Update(ctx, func(users *[]domain.User) error {
		for i := range *users {
			if strings.EqualFold((*users)[i].Email, u.Email) {
				return fmt.Errorf("%w: email already used", domain.ErrInvalidState)
			}
			if strings.EqualFold((*users)[i].Username, u.Username) {
				return fmt.Errorf("%w: username already used", domain.ErrInvalidState)
			}
		}
		*users = append(*users, *u)
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidState) {
			return err
		}
		return wrapStorage("create user", err)
	}
	return nil
}

// EnsureAdmin makes sure the bootstrap admin account exists and holds the
// admin role. Safe to call on every startup.
func (s *UserStore) EnsureAdmin(ctx context.Context, email, username, passwordHash string) error {
	err := s.col.Update(ctx, func(users *[]domain.User) error {
		for i := range *users {
			if !strings.EqualFold((*users)[i].Email, email) {
				continue
			}
			if (*users)[i].Role == domain.RoleAdmin {
				return blob.ErrNoChange
			}
			(*users)[i].Role = domain.RoleAdmin
			(*users)[i].Normalize()
			log.Printf("store: promoted %s to admin", email)
			return nil
		}
		admin := domain.User{
			ID:           uuid.NewString(),
			Username:     username,
			Email:        email,
			PasswordHash: passwordHash,
			Role:         domain.RoleAdmin,
			Status:       domain.StatusActive,
		}
		admin.Normalize()
		*users = append(*users, admin)
		log.Printf("store: created admin account %s", email)
		return nil
	})
	if err != nil {
		return wrapStorage("ensure admin", err)
	}
	return nil
}

// SetCurrentUser stores the session singleton; nil clears it (logout).
func (s *UserStore) SetCurrentUser(ctx context.Context, u *domain.User) error {
	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()
	return s.writeSession(ctx, u)
}

// CurrentUser returns the session singleton, or nil when logged out. A
// missing lastReadTopics map is normalized to empty on the way out.
func (s *UserStore) CurrentUser(ctx context.Context) (*domain.User, error) {
	raw, err := s.blobs.Get(ctx, currentUserKey)
	if err != nil {
		log.Printf("store: get %q: %v", currentUserKey, err)
		return nil, nil
	}
	if raw == nil {
		return nil, nil
	}
	var u domain.User
	if err := json.Unmarshal(raw, &u); err != nil {
		log.Printf("store: decode %q: %v", currentUserKey, err)
		return nil, nil
	}
	u.Normalize()
	return &u, nil
}

func (s *UserStore) writeSession(ctx context.Context, u *domain.User) error {
	if u == nil {
		if err := s.blobs.Delete(ctx, currentUserKey); err != nil {
			return wrapStorage("clear session", err)
		}
		return nil
	}
	raw, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.blobs.Set(ctx, currentUserKey, raw); err != nil {
		return wrapStorage("save session", err)
	}
	return nil
}

// refreshSession overwrites the persisted session copy when it belongs to
// the given user, so CurrentUser reflects a mutation without a fresh login.
func (s *UserStore) refreshSession(ctx context.Context, u domain.User) {
	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()

	current, err := s.CurrentUser(ctx)
	if err != nil || current == nil || current.ID != u.ID {
		return
	}
	if err := s.writeSession(ctx, &u); err != nil {
		log.Printf("store: refresh session: %v", err)
	}
}

// UpdateRole changes a user's role.
func (s *UserStore) UpdateRole(ctx context.Context, userID, role string) error {
	if role != domain.RoleUser && role != domain.RoleModerator && role != domain.RoleAdmin {
		return fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, role)
	}
	return s.updateOne(ctx, userID, "update role", func(u *domain.User) {
		u.Role = role
	})
}

// Suspend marks an account suspended.
func (s *UserStore) Suspend(ctx context.Context, userID string) error {
	return s.updateOne(ctx, userID, "suspend user", func(u *domain.User) {
		u.Status = domain.StatusSuspended
	})
}

// Reactivate returns a suspended account to active.
func (s *UserStore) Reactivate(ctx context.Context, userID string) error {
	return s.updateOne(ctx, userID, "reactivate user", func(u *domain.User) {
		u.Status = domain.StatusActive
	})
}

// DeleteAccount removes a user record outright.
func (s *UserStore) DeleteAccount(ctx context.Context, userID string) error {
	err := s.col.Update(ctx, func(users *[]domain.User) error {
		for i := range *users {
			if (*users)[i].ID == userID {
				*users = append((*users)[:i], (*users)[i+1:]...)
				return nil
			}
		}
		return domain.ErrNotFound
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return wrapStorage("delete account", err)
	}
	return nil
}

// IncrementCounters bumps the per-user content counters.
func (s *UserStore) IncrementCounters(ctx context.Context, userID string, topics, replies int) error {
	return s.updateOne(ctx, userID, "increment counters", func(u *domain.User) {
		u.TopicsCreated += topics
		u.TotalResponses += replies
	})
}

// MarkTopicRead advances the user's read watermark for a topic to the given
// instant and refreshes the session copy. The caller supplies the clock;
// the store does not guard against it moving backwards.
func (s *UserStore) MarkTopicRead(ctx context.Context, userID, topicID string, at time.Time) error {
	var me domain.User
	err := s.col.Update(ctx, func(users *[]domain.User) error {
		for i := range *users {
			if (*users)[i].ID != userID {
				continue
			}
			(*users)[i].Normalize()
			(*users)[i].LastReadTopics[topicID] = domain.FormatTime(at)
			me = (*users)[i]
			return nil
		}
		return domain.ErrNotFound
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return wrapStorage("mark topic read", err)
	}
	s.refreshSession(ctx, me)
	return nil
}

func (s *UserStore) updateOne(ctx context.Context, userID, op string, mutate func(u *domain.User)) error {
	err := s.col.Update(ctx, func(users *[]domain.User) error {
		for i := range *users {
			if (*users)[i].ID == userID {
				(*users)[i].Normalize()
				mutate(&(*users)[i])
				return nil
			}
		}
		return domain.ErrNotFound
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return wrapStorage(op, err)
	}
	return nil
}
