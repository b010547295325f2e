package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/catatanku/backend/internal/models"
	"github.com/catatanku/backend/internal/repositories"
	"github.com/catatanku/backend/internal/session"
	"github.com/sirupsen/logrus"
)

// Notification display texts.
const (
	contentFollow         = "mulai mengikuti Anda."
	contentFollowRequest  = "ingin mengikuti Anda."
	contentFollowAccepted = "menyetujui permintaan mengikuti Anda."
	contentLike           = "menyukai postingan Anda."
	contentVerification   = "meminta verifikasi akun."
)

// ErrNotAllowed is returned when a caller acts on a notification that is not
// addressed to them.
var ErrNotAllowed = errors.New("not allowed")

// NotificationCoordinator creates and resolves notification documents as
// side effects of social actions, and keeps the per-user unread indicator in
// sync through a standing watch on the notifications collection.
type NotificationCoordinator struct {
	notifications repositories.NotificationRepository
	users         repositories.UserRepository
	txn           repositories.TxnRunner
	indicators    *session.Registry
	superUserID   string
}

// NewNotificationCoordinator creates a new NotificationCoordinator
func NewNotificationCoordinator(
	notifRepo repositories.NotificationRepository,
	userRepo repositories.UserRepository,
	txn repositories.TxnRunner,
	indicators *session.Registry,
	superUserID string,
) *NotificationCoordinator {
	return &NotificationCoordinator{
		notifications: notifRepo,
		users:         userRepo,
		txn:           txn,
		indicators:    indicators,
		superUserID:   superUserID,
	}
}

func (c *NotificationCoordinator) create(ctx context.Context, n *models.Notification) error {
	err := c.notifications.Create(ctx, n)
	if err == repositories.ErrAlreadyExists {
		// An identical pending notification exists; the intent is satisfied.
		return nil
	}
	return err
}

func (c *NotificationCoordinator) remove(ctx context.Context, id string) error {
	err := c.notifications.Delete(ctx, id)
	if err == repositories.ErrNotFound {
		return nil
	}
	return err
}

// NotifyLike records a like notification, unless the liker is the author.
func (c *NotificationCoordinator) NotifyLike(ctx context.Context, post *models.Post, liker *models.User) error {
	if liker.ID == post.AuthorID {
		return nil
	}
	postID := post.ID.Hex()
	return c.create(ctx, &models.Notification{
		ID:            models.NotificationID(post.AuthorID, liker.ID, models.NotificationLike, postID),
		RecipientID:   post.AuthorID,
		Sender:        liker.Snapshot(),
		Type:          models.NotificationLike,
		Content:       contentLike,
		RelatedPostID: postID,
	})
}

// RemoveLikeNotification deletes the like notification on unlike.
func (c *NotificationCoordinator) RemoveLikeNotification(ctx context.Context, post *models.Post, likerID string) error {
	return c.remove(ctx, models.NotificationID(post.AuthorID, likerID, models.NotificationLike, post.ID.Hex()))
}

// NotifyFollow records a follow notification addressed to the target.
func (c *NotificationCoordinator) NotifyFollow(ctx context.Context, sender *models.User, recipientID string) error {
	return c.create(ctx, &models.Notification{
		ID:          models.NotificationID(recipientID, sender.ID, models.NotificationFollow, ""),
		RecipientID: recipientID,
		Sender:      sender.Snapshot(),
		Type:        models.NotificationFollow,
		Content:     contentFollow,
	})
}

// NotifyFollowAccepted records the follow notification sent back to a
// requester when their follow request is approved.
func (c *NotificationCoordinator) NotifyFollowAccepted(ctx context.Context, sender *models.User, recipientID string) error {
	return c.create(ctx, &models.Notification{
		ID:          models.NotificationID(recipientID, sender.ID, models.NotificationFollow, ""),
		RecipientID: recipientID,
		Sender:      sender.Snapshot(),
		Type:        models.NotificationFollow,
		Content:     contentFollowAccepted,
	})
}

// NotifyFollowRequest records a pending follow request notification. The
// composite key keeps it unique per (sender, recipient) pair.
func (c *NotificationCoordinator) NotifyFollowRequest(ctx context.Context, sender *models.User, recipientID string) error {
	return c.create(ctx, &models.Notification{
		ID:          models.NotificationID(recipientID, sender.ID, models.NotificationFollowRequest, ""),
		RecipientID: recipientID,
		Sender:      sender.Snapshot(),
		Type:        models.NotificationFollowRequest,
		Content:     contentFollowRequest,
	})
}

// RemoveFollowRequestNotification deletes the pending follow request
// notification for the (sender, recipient) pair.
func (c *NotificationCoordinator) RemoveFollowRequestNotification(ctx context.Context, senderID, recipientID string) error {
	return c.remove(ctx, models.NotificationID(recipientID, senderID, models.NotificationFollowRequest, ""))
}

// RequestVerification files a verification request addressed to the
// privileged reviewer account.
func (c *NotificationCoordinator) RequestVerification(ctx context.Context, actor *models.User) error {
	if actor.IsVerified {
		return fmt.Errorf("user %s is already verified", actor.ID)
	}
	return c.create(ctx, &models.Notification{
		ID:          models.NotificationID(c.superUserID, actor.ID, models.NotificationVerificationRequest, ""),
		RecipientID: c.superUserID,
		Sender:      actor.Snapshot(),
		Type:        models.NotificationVerificationRequest,
		Content:     contentVerification,
	})
}

// ApproveVerification marks the requester verified and deletes the request,
// in one transaction. Only the privileged reviewer may approve.
func (c *NotificationCoordinator) ApproveVerification(ctx context.Context, approverID, notificationID string) error {
	if approverID != c.superUserID {
		return ErrNotAllowed
	}
	n, err := c.notifications.GetByID(ctx, notificationID)
	if err != nil {
		return err
	}
	if n.Type != models.NotificationVerificationRequest {
		return ErrNotAllowed
	}
	return c.txn.InTransaction(ctx, func(ctx context.Context) error {
		if err := c.users.SetVerified(ctx, n.Sender.ID); err != nil {
			return err
		}
		return c.remove(ctx, notificationID)
	})
}

// Dismiss deletes a notification addressed to the caller. Declining a
// verification request is a dismissal by the reviewer.
func (c *NotificationCoordinator) Dismiss(ctx context.Context, recipientID, notificationID string) error {
	n, err := c.notifications.GetByID(ctx, notificationID)
	if err != nil {
		return err
	}
	if n.RecipientID != recipientID {
		return ErrNotAllowed
	}
	return c.remove(ctx, notificationID)
}

// ListForVisit returns the recipient's notifications newest first, then
// batch-marks the unread ones read and clears the unread indicator. This is
// the notifications-view semantics: visiting the view consumes the badge.
func (c *NotificationCoordinator) ListForVisit(ctx context.Context, recipientID string, page, limit int) ([]models.Notification, int64, error) {
	notifications, total, err := c.notifications.GetByRecipient(ctx, recipientID, page, limit)
	if err != nil {
		return nil, 0, err
	}
	if _, err := c.notifications.MarkAllRead(ctx, recipientID); err != nil {
		// The list is still good; only the badge state is affected.
		logrus.WithError(err).WithField("recipient", recipientID).Error("Failed to mark notifications read")
	} else {
		c.indicators.For(recipientID).SetUnreadNotifications(false)
	}
	return notifications, total, nil
}

// UnreadCount returns the number of unread notifications for the recipient.
func (c *NotificationCoordinator) UnreadCount(ctx context.Context, recipientID string) (int64, error) {
	return c.notifications.CountUnread(ctx, recipientID)
}

// Watch subscribes to notification inserts and flips the recipient's unread
// indicator the instant one arrives. Blocks until ctx is cancelled or the
// stream ends.
func (c *NotificationCoordinator) Watch(ctx context.Context) error {
	inserts, err := c.notifications.WatchInserts(ctx)
	if err != nil {
		return err
	}
	logrus.Info("Notification unread watch started.")
	for n := range inserts {
		if !n.Read {
			c.indicators.For(n.RecipientID).SetUnreadNotifications(true)
		}
	}
	return ctx.Err()
}
