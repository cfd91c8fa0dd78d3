package store

import (
	"context"
	"errors"
	"fmt"

	"gameforum/internal/domain"
)

// Social graph operations. Every operation is one serialized rewrite of the
// users collection: load once, locate both records, mutate them together,
// persist once. The symmetric fields (friends, incoming/outgoing requests)
// are stored redundantly on both records, so keeping the two sides
// consistent is entirely this file's job.
//
// State machine per pair, seen from A: none → A sends → pending →
// B accepts → friends, or B declines → none. Blocking is reachable from any
// state and drops the pair back to none while the block lasts; unblocking
// restores nothing.

// SendFriendRequest records a pending request from sender to target.
func (s *UserStore) SendFriendRequest(ctx context.Context, senderID, targetID string) error {
	if senderID == targetID {
		return fmt.Errorf("%w: cannot send a friend request to yourself", domain.ErrInvalidState)
	}
	return s.updatePair(ctx, senderID, targetID, "send friend request", func(sender, target *domain.User) error {
		if sender.HasFriend(targetID) || target.HasFriend(senderID) {
			return fmt.Errorf("%w: already friends", domain.ErrInvalidState)
		}
		if contains(sender.OutgoingFriendRequests, targetID) {
			return fmt.Errorf("%w: request already sent", domain.ErrInvalidState)
		}
		if target.HasBlocked(senderID) {
			return fmt.Errorf("%w: blocked by target", domain.ErrInvalidState)
		}
		sender.OutgoingFriendRequests = append(sender.OutgoingFriendRequests, targetID)
		target.IncomingFriendRequests = append(target.IncomingFriendRequests, senderID)
		return nil
	})
}

// AcceptFriendRequest turns a pending request from fromID into a friendship
// and refreshes the accepting user's session copy.
func (s *UserStore) AcceptFriendRequest(ctx context.Context, userID, fromID string) error {
	var me domain.User
	err := s.updatePair(ctx, userID, fromID, "accept friend request", func(u, from *domain.User) error {
		if !contains(u.IncomingFriendRequests, fromID) {
			return fmt.Errorf("%w: no pending request from this user", domain.ErrInvalidState)
		}
		clearPending(u, from)
		if !u.HasFriend(fromID) {
			u.Friends = append(u.Friends, fromID)
		}
		if !from.HasFriend(userID) {
			from.Friends = append(from.Friends, userID)
		}
		me = *u
		return nil
	})
	if err != nil {
		return err
	}
	s.refreshSession(ctx, me)
	return nil
}

// DeclineFriendRequest drops a pending request from fromID without creating
// a friendship, and refreshes the declining user's session copy.
func (s *UserStore) DeclineFriendRequest(ctx context.Context, userID, fromID string) error {
	var me domain.User
	err := s.updatePair(ctx, userID, fromID, "decline friend request", func(u, from *domain.User) error {
		if !contains(u.IncomingFriendRequests, fromID) {
			return fmt.Errorf("%w: no pending request from this user", domain.ErrInvalidState)
		}
		clearPending(u, from)
		me = *u
		return nil
	})
	if err != nil {
		return err
	}
	s.refreshSession(ctx, me)
	return nil
}

// RemoveFriend drops an existing friendship on both sides.
func (s *UserStore) RemoveFriend(ctx context.Context, userID, friendID string) error {
	return s.updatePair(ctx, userID, friendID, "remove friend", func(u, friend *domain.User) error {
		if !u.HasFriend(friendID) && !friend.HasFriend(userID) {
			return fmt.Errorf("%w: not friends", domain.ErrInvalidState)
		}
		u.Friends = remove(u.Friends, friendID)
		friend.Friends = remove(friend.Friends, userID)
		return nil
	})
}

// BlockUser adds target to the caller's block list and strips any
// friendship or pending request between the two, in both directions, inside
// the same collection rewrite.
func (s *UserStore) BlockUser(ctx context.Context, userID, targetID string) error {
	if userID == targetID {
		return fmt.Errorf("%w: cannot block yourself", domain.ErrInvalidState)
	}
	return s.updatePair(ctx, userID, targetID, "block user", func(u, target *domain.User) error {
		if u.HasBlocked(targetID) {
			return fmt.Errorf("%w: already blocked", domain.ErrInvalidState)
		}
		u.BlockedUsers = append(u.BlockedUsers, targetID)

		u.Friends = remove(u.Friends, targetID)
		target.Friends = remove(target.Friends, userID)

		u.OutgoingFriendRequests = remove(u.OutgoingFriendRequests, targetID)
		u.IncomingFriendRequests = remove(u.IncomingFriendRequests, targetID)
		target.OutgoingFriendRequests = remove(target.OutgoingFriendRequests, userID)
		target.IncomingFriendRequests = remove(target.IncomingFriendRequests, userID)
		return nil
	})
}

// UnblockUser clears the block flag only. It does not restore whatever
// relationship existed before the block.
func (s *UserStore) UnblockUser(ctx context.Context, userID, targetID string) error {
	return s.updatePair(ctx, userID, targetID, "unblock user", func(u, _ *domain.User) error {
		if !u.HasBlocked(targetID) {
			return fmt.Errorf("%w: user is not blocked", domain.ErrInvalidState)
		}
		u.BlockedUsers = remove(u.BlockedUsers, targetID)
		return nil
	})
}

// clearPending removes the pending-request entries between u and other in
// both directions. The reverse direction should never hold an entry at the
// same time, but stale data from an interrupted write is cleaned up too.
func clearPending(u, other *domain.User) {
	u.IncomingFriendRequests = remove(u.IncomingFriendRequests, other.ID)
	u.OutgoingFriendRequests = remove(u.OutgoingFriendRequests, other.ID)
	other.IncomingFriendRequests = remove(other.IncomingFriendRequests, u.ID)
	other.OutgoingFriendRequests = remove(other.OutgoingFriendRequests, u.ID)
}

// updatePair runs one rewrite of the users collection with both records of
// a pair located and normalized.
func (s *UserStore) updatePair(ctx context.Context, aID, bID, op string, fn func(a, b *domain.User) error) error {
	err := s.col.Update(ctx, func(users *[]domain.User) error {
		ai, bi := -1, -1
		for i := range *users {
			switch (*users)[i].ID {
			case aID:
				ai = i
			case bID:
				bi = i
			}
		}
		if ai == -1 || bi == -1 {
			return domain.ErrNotFound
		}
		(*users)[ai].Normalize()
		(*users)[bi].Normalize()
		return fn(&(*users)[ai], &(*users)[bi])
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrInvalidState) {
			return err
		}
		return wrapStorage(op, err)
	}
	return nil
}

func contains(list []string, id string) bool {
	for _, v := range list {
		if v == id {
			return true
		}
	}
	return false
}

func remove(list []string, id string) []string {
	out := list[:0]
	for _, v := range list {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
