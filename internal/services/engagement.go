package services

import (
	"context"

	"github.com/catatanku/backend/internal/models"
	"github.com/catatanku/backend/internal/repositories"
)

// Engagement implements the like and save toggles. Both are idempotent:
// the underlying writes are conditional on current set membership, so a
// repeated or racing toggle cannot move a counter without moving the set.
type Engagement struct {
	posts         repositories.PostRepository
	users         repositories.UserRepository
	notifications *NotificationCoordinator
}

// NewEngagement creates a new Engagement service
func NewEngagement(postRepo repositories.PostRepository, userRepo repositories.UserRepository, notifications *NotificationCoordinator) *Engagement {
	return &Engagement{posts: postRepo, users: userRepo, notifications: notifications}
}

// ToggleLike flips the actor's like on the post and returns the new liked
// state. Liking someone else's post creates a like notification; unliking
// removes it.
func (e *Engagement) ToggleLike(ctx context.Context, actorID, postID string) (bool, error) {
	post, err := e.posts.GetPostByID(ctx, postID)
	if err != nil {
		return false, err
	}

	if post.IsLikedBy(actorID) {
		changed, err := e.posts.Unlike(ctx, postID, actorID)
		if err != nil {
			return true, err
		}
		if changed {
			if err := e.notifications.RemoveLikeNotification(ctx, post, actorID); err != nil {
				return false, err
			}
		}
		return false, nil
	}

	actor, err := e.users.GetUserByID(ctx, actorID)
	if err != nil {
		return false, err
	}
	changed, err := e.posts.Like(ctx, postID, actorID)
	if err != nil {
		return false, err
	}
	if changed {
		if err := e.notifications.NotifyLike(ctx, post, actor); err != nil {
			return true, err
		}
	}
	return true, nil
}

// ToggleSave flips the post's membership in the actor's saved set and
// returns the new saved state. No counters, no notifications.
func (e *Engagement) ToggleSave(ctx context.Context, actorID, postID string) (bool, error) {
	if _, err := e.posts.GetPostByID(ctx, postID); err != nil {
		return false, err
	}
	actor, err := e.users.GetUserByID(ctx, actorID)
	if err != nil {
		return false, err
	}

	if actor.HasSaved(postID) {
		_, err := e.users.RemoveSavedPost(ctx, actorID, postID)
		return false, err
	}
	_, err = e.users.AddSavedPost(ctx, actorID, postID)
	return true, err
}

// SavedPosts returns the actor's saved posts, newest saved data first.
func (e *Engagement) SavedPosts(ctx context.Context, actorID string) ([]models.Post, error) {
	actor, err := e.users.GetUserByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	return e.posts.GetPostsByIDs(ctx, actor.SavedPosts)
}
