package service

import (
	"context"

	"gameforum/internal/domain"
	"gameforum/internal/store"
	"gameforum/internal/ws"
)

// SocialService runs the friend-request lifecycle and blocking on top of
// the user store, and pushes realtime notifications for the interesting
// transitions.
type SocialService struct {
	users *store.UserStore
	hub   *ws.Hub
}

func NewSocialService(users *store.UserStore, hub *ws.Hub) *SocialService {
	return &SocialService{users: users, hub: hub}
}

func (s *SocialService) SendFriendRequest(ctx context.Context, senderID, targetID string) error {
	if err := s.users.SendFriendRequest(ctx, senderID, targetID); err != nil {
		return err
	}
	s.hub.NotifyUser(targetID, ws.Event{Type: "friend_request", Payload: map[string]string{"from": senderID}})
	return nil
}

func (s *SocialService) AcceptFriendRequest(ctx context.Context, userID, fromID string) error {
	if err := s.users.AcceptFriendRequest(ctx, userID, fromID); err != nil {
		return err
	}
	s.hub.NotifyUser(fromID, ws.Event{Type: "friend_request_accepted", Payload: map[string]string{"by": userID}})
	return nil
}

func (s *SocialService) DeclineFriendRequest(ctx context.Context, userID, fromID string) error {
	return s.users.DeclineFriendRequest(ctx, userID, fromID)
}

func (s *SocialService) RemoveFriend(ctx context.Context, userID, friendID string) error {
	return s.users.RemoveFriend(ctx, userID, friendID)
}

func (s *SocialService) BlockUser(ctx context.Context, userID, targetID string) error {
	return s.users.BlockUser(ctx, userID, targetID)
}

func (s *SocialService) UnblockUser(ctx context.Context, userID, targetID string) error {
	return s.users.UnblockUser(ctx, userID, targetID)
}

// FriendsOf resolves a user's friend IDs to records. The friend list on a
// single record is authoritative because every mutation keeps both sides
// symmetric.
func (s *SocialService) FriendsOf(ctx context.Context, userID string) ([]domain.User, error) {
	return s.resolve(ctx, userID, func(u *domain.User) []string { return u.Friends })
}

// IncomingRequests resolves the users who sent a pending request to userID.
func (s *SocialService) IncomingRequests(ctx context.Context, userID string) ([]domain.User, error) {
	return s.resolve(ctx, userID, func(u *domain.User) []string { return u.IncomingFriendRequests })
}

// OutgoingRequests resolves the users userID has a pending request to.
func (s *SocialService) OutgoingRequests(ctx context.Context, userID string) ([]domain.User, error) {
	return s.resolve(ctx, userID, func(u *domain.User) []string { return u.OutgoingFriendRequests })
}

// BlockedUsers resolves the users userID has blocked.
func (s *SocialService) BlockedUsers(ctx context.Context, userID string) ([]domain.User, error) {
	return s.resolve(ctx, userID, func(u *domain.User) []string { return u.BlockedUsers })
}

func (s *SocialService) resolve(ctx context.Context, userID string, pick func(u *domain.User) []string) ([]domain.User, error) {
	all, err := s.users.Load(ctx)
	if err != nil {
		return nil, err
	}
	var me *domain.User
	byID := make(map[string]*domain.User, len(all))
	for i := range all {
		byID[all[i].ID] = &all[i]
		if all[i].ID == userID {
			me = &all[i]
		}
	}
	if me == nil {
		return nil, domain.ErrNotFound
	}
	out := []domain.User{}
	for _, id := range pick(me) {
		if u, ok := byID[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}
