package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gameforum/internal/blob"
	"gameforum/internal/domain"
)

func testUser(id string) domain.User {
	u := domain.User{
		ID:       id,
		Username: "name-" + id,
		Email:    id + "@example.com",
		Role:     domain.RoleUser,
		Status:   domain.StatusActive,
	}
	u.Normalize()
	return u
}

func seedUsers(t *testing.T, s *UserStore, ids ...string) {
	t.Helper()
	users := make([]domain.User, 0, len(ids))
	for _, id := range ids {
		users = append(users, testUser(id))
	}
	require.NoError(t, s.Save(context.Background(), users))
}

// seqIDs returns a deterministic ID generator for injecting into stores.
func seqIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func TestUserStoreLoadEmpty(t *testing.T) {
	s := NewUserStore(blob.NewMemory())

	users, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, users)
	assert.Empty(t, users)
}

func TestUserStoreSaveRejectsNil(t *testing.T) {
	s := NewUserStore(blob.NewMemory())

	err := s.Save(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestUserStoreCreateAndGet(t *testing.T) {
	s := NewUserStore(blob.NewMemory())
	ctx := context.Background()

	u := testUser("u1")
	require.NoError(t, s.Create(ctx, &u))

	got, err := s.GetByID(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "name-u1", got.Username)

	// Email lookup is case-insensitive.
	got, err = s.GetByEmail(ctx, "U1@Example.COM")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "u1", got.ID)

	missing, err := s.GetByID(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUserStoreCreateRejectsDuplicates(t *testing.T) {
	s := NewUserStore(blob.NewMemory())
	ctx := context.Background()

	u := testUser("u1")
	require.NoError(t, s.Create(ctx, &u))

	dupEmail := testUser("u2")
	dupEmail.Email = "U1@EXAMPLE.COM"
	assert.ErrorIs(t, s.Create(ctx, &dupEmail), domain.ErrInvalidState)

	dupName := testUser("u3")
	dupName.Username = "NAME-U1"
	assert.ErrorIs(t, s.Create(ctx, &dupName), domain.ErrInvalidState)

	users, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestEnsureAdminCreatesOnce(t *testing.T) {
	s := NewUserStore(blob.NewMemory())
	ctx := context.Background()

	require.NoError(t, s.EnsureAdmin(ctx, "admin@example.com", "Admin", "hash"))
	require.NoError(t, s.EnsureAdmin(ctx, "admin@example.com", "Admin", "hash"))

	users, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, domain.RoleAdmin, users[0].Role)
	assert.Equal(t, domain.StatusActive, users[0].Status)
	assert.NotEmpty(t, users[0].ID)
}

func TestEnsureAdminPromotesExisting(t *testing.T) {
	s := NewUserStore(blob.NewMemory())
	ctx := context.Background()

	u := testUser("u1")
	u.Email = "admin@example.com"
	require.NoError(t, s.Create(ctx, &u))

	require.NoError(t, s.EnsureAdmin(ctx, "Admin@Example.com", "Admin", "hash"))

	got, err := s.GetByID(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, domain.RoleAdmin, got.Role)

	users, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestCurrentUserRoundTrip(t *testing.T) {
	s := NewUserStore(blob.NewMemory())
	ctx := context.Background()

	got, err := s.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)

	u := testUser("u1")
	require.NoError(t, s.SetCurrentUser(ctx, &u))

	got, err = s.CurrentUser(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "u1", got.ID)

	require.NoError(t, s.SetCurrentUser(ctx, nil))
	got, err = s.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCurrentUserNormalizesOldRecords(t *testing.T) {
	mem := blob.NewMemory()
	s := NewUserStore(mem)
	ctx := context.Background()

	// A session written before the relationship fields existed.
	raw := []byte(`{"id":"u1","username":"old","email":"old@example.com"}`)
	require.NoError(t, mem.Set(ctx, currentUserKey, raw))

	got, err := s.CurrentUser(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.NotNil(t, got.Friends)
	assert.NotNil(t, got.BlockedUsers)
	assert.NotNil(t, got.LastReadTopics)
}

func TestUpdateRole(t *testing.T) {
	s := NewUserStore(blob.NewMemory())
	ctx := context.Background()
	seedUsers(t, s, "u1")

	require.NoError(t, s.UpdateRole(ctx, "u1", domain.RoleModerator))
	got, err := s.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleModerator, got.Role)

	assert.ErrorIs(t, s.UpdateRole(ctx, "u1", "overlord"), domain.ErrInvalidInput)
	assert.ErrorIs(t, s.UpdateRole(ctx, "nope", domain.RoleUser), domain.ErrNotFound)
}

func TestSuspendAndReactivate(t *testing.T) {
	s := NewUserStore(blob.NewMemory())
	ctx := context.Background()
	seedUsers(t, s, "u1")

	require.NoError(t, s.Suspend(ctx, "u1"))
	got, _ := s.GetByID(ctx, "u1")
	assert.Equal(t, domain.StatusSuspended, got.Status)

	require.NoError(t, s.Reactivate(ctx, "u1"))
	got, _ = s.GetByID(ctx, "u1")
	assert.Equal(t, domain.StatusActive, got.Status)
}

func TestDeleteAccount(t *testing.T) {
	s := NewUserStore(blob.NewMemory())
	ctx := context.Background()
	seedUsers(t, s, "u1", "u2")

	require.NoError(t, s.DeleteAccount(ctx, "u1"))

	users, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "u2", users[0].ID)

	assert.ErrorIs(t, s.DeleteAccount(ctx, "u1"), domain.ErrNotFound)
}

func TestIncrementCounters(t *testing.T) {
	s := NewUserStore(blob.NewMemory())
	ctx := context.Background()
	seedUsers(t, s, "u1")

	require.NoError(t, s.IncrementCounters(ctx, "u1", 1, 0))
	require.NoError(t, s.IncrementCounters(ctx, "u1", 0, 1))
	require.NoError(t, s.IncrementCounters(ctx, "u1", 0, 1))

	got, err := s.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, got.TopicsCreated)
	assert.Equal(t, 2, got.TotalResponses)
}

func TestMarkTopicReadStoresWatermark(t *testing.T) {
	s := NewUserStore(blob.NewMemory())
	ctx := context.Background()
	seedUsers(t, s, "u1")

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.MarkTopicRead(ctx, "u1", "t1", at))

	got, err := s.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.FormatTime(at), got.LastReadTopics["t1"])

	// A later read advances the watermark.
	later := at.Add(time.Hour)
	require.NoError(t, s.MarkTopicRead(ctx, "u1", "t1", later))
	got, _ = s.GetByID(ctx, "u1")
	assert.Equal(t, domain.FormatTime(later), got.LastReadTopics["t1"])

	assert.ErrorIs(t, s.MarkTopicRead(ctx, "nope", "t1", at), domain.ErrNotFound)
}

func TestMarkTopicReadRefreshesSession(t *testing.T) {
	s := NewUserStore(blob.NewMemory())
	ctx := context.Background()
	seedUsers(t, s, "u1", "u2")

	me := testUser("u1")
	require.NoError(t, s.SetCurrentUser(ctx, &me))

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.MarkTopicRead(ctx, "u1", "t1", at))

	session, err := s.CurrentUser(ctx)
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, domain.FormatTime(at), session.LastReadTopics["t1"])

	// Mutating another user leaves the session untouched.
	require.NoError(t, s.MarkTopicRead(ctx, "u2", "t2", at))
	session, _ = s.CurrentUser(ctx)
	assert.Empty(t, session.LastReadTopics["t2"])
}
