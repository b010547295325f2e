package services

import (
	"context"
	"errors"

	"github.com/catatanku/backend/internal/models"
	"github.com/catatanku/backend/internal/repositories"
)

// RelationshipState is the actor's current relationship to a target user.
// At most one of following/requested holds at a time.
type RelationshipState string

const (
	StateNone      RelationshipState = "none"
	StateFollowing RelationshipState = "following"
	StateRequested RelationshipState = "requested"
)

// Errors returned by the social graph engine.
var (
	ErrSelfFollow       = errors.New("cannot follow yourself")
	ErrNoPendingRequest = errors.New("no pending follow request")
)

// Relationship derives the actor's state from the target's relationship
// sets. Pure; no store access.
func Relationship(target *models.User, actorID string) RelationshipState {
	if target.IsFollowedBy(actorID) {
		return StateFollowing
	}
	if target.HasFollowRequestFrom(actorID) {
		return StateRequested
	}
	return StateNone
}

// ButtonState is the display derivation of a relationship state.
type ButtonState struct {
	State   RelationshipState `json:"state"`
	Label   string            `json:"label"`
	Outline bool              `json:"outline"`
}

// Button maps a relationship state to its follow-button presentation.
func Button(state RelationshipState) ButtonState {
	switch state {
	case StateFollowing:
		return ButtonState{State: state, Label: "Mengikuti", Outline: true}
	case StateRequested:
		return ButtonState{State: state, Label: "Diminta", Outline: true}
	default:
		return ButtonState{State: StateNone, Label: "Ikuti"}
	}
}

// SocialGraph maintains follower/following/request sets and their counters.
// Every branch that touches more than one document runs inside a store
// transaction, so partial multi-write state cannot be observed.
type SocialGraph struct {
	users         repositories.UserRepository
	notifications *NotificationCoordinator
	txn           repositories.TxnRunner
}

// NewSocialGraph creates a new SocialGraph
func NewSocialGraph(userRepo repositories.UserRepository, notifications *NotificationCoordinator, txn repositories.TxnRunner) *SocialGraph {
	return &SocialGraph{users: userRepo, notifications: notifications, txn: txn}
}

// ToggleFollow walks the follow state machine one step for (actor, target)
// and returns the resulting relationship state:
//
//	following           -> none       (unfollow)
//	requested           -> none       (cancel request)
//	none, private target -> requested (send request)
//	none, public target  -> following (follow directly)
func (s *SocialGraph) ToggleFollow(ctx context.Context, actorID, targetID string) (RelationshipState, error) {
	if actorID == targetID {
		return StateNone, ErrSelfFollow
	}

	target, err := s.users.GetUserByID(ctx, targetID)
	if err != nil {
		return StateNone, err
	}
	actor, err := s.users.GetUserByID(ctx, actorID)
	if err != nil {
		return StateNone, err
	}

	switch Relationship(target, actorID) {
	case StateFollowing:
		err = s.txn.InTransaction(ctx, func(ctx context.Context) error {
			if _, err := s.users.RemoveFollowing(ctx, actorID, targetID); err != nil {
				return err
			}
			_, err := s.users.RemoveFollower(ctx, targetID, actorID)
			return err
		})
		return StateNone, err

	case StateRequested:
		err = s.txn.InTransaction(ctx, func(ctx context.Context) error {
			if _, err := s.users.RemoveFollowRequest(ctx, targetID, actorID); err != nil {
				return err
			}
			return s.notifications.RemoveFollowRequestNotification(ctx, actorID, targetID)
		})
		return StateNone, err

	default:
		if target.IsPrivate {
			err = s.txn.InTransaction(ctx, func(ctx context.Context) error {
				if _, err := s.users.AddFollowRequest(ctx, targetID, actorID); err != nil {
					return err
				}
				return s.notifications.NotifyFollowRequest(ctx, actor, targetID)
			})
			return StateRequested, err
		}

		err = s.txn.InTransaction(ctx, func(ctx context.Context) error {
			if _, err := s.users.AddFollowing(ctx, actorID, targetID); err != nil {
				return err
			}
			if _, err := s.users.AddFollower(ctx, targetID, actorID); err != nil {
				return err
			}
			return s.notifications.NotifyFollow(ctx, actor, targetID)
		})
		return StateFollowing, err
	}
}

// ApproveFollowRequest establishes the relationship requested by
// requesterID, removes the pending request and its notification, and sends
// the requester an acceptance notification, all in one transaction.
func (s *SocialGraph) ApproveFollowRequest(ctx context.Context, targetID, requesterID string) error {
	target, err := s.users.GetUserByID(ctx, targetID)
	if err != nil {
		return err
	}
	if !target.HasFollowRequestFrom(requesterID) {
		return ErrNoPendingRequest
	}
	if _, err := s.users.GetUserByID(ctx, requesterID); err != nil {
		return err
	}

	return s.txn.InTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.users.AddFollower(ctx, targetID, requesterID); err != nil {
			return err
		}
		if _, err := s.users.AddFollowing(ctx, requesterID, targetID); err != nil {
			return err
		}
		if _, err := s.users.RemoveFollowRequest(ctx, targetID, requesterID); err != nil {
			return err
		}
		if err := s.notifications.NotifyFollowAccepted(ctx, target, requesterID); err != nil {
			return err
		}
		return s.notifications.RemoveFollowRequestNotification(ctx, requesterID, targetID)
	})
}

// DeclineFollowRequest removes the pending request and its notification.
// No counters change.
func (s *SocialGraph) DeclineFollowRequest(ctx context.Context, targetID, requesterID string) error {
	target, err := s.users.GetUserByID(ctx, targetID)
	if err != nil {
		return err
	}
	if !target.HasFollowRequestFrom(requesterID) {
		return ErrNoPendingRequest
	}

	return s.txn.InTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.users.RemoveFollowRequest(ctx, targetID, requesterID); err != nil {
			return err
		}
		return s.notifications.RemoveFollowRequestNotification(ctx, requesterID, targetID)
	})
}
