package models

import (
	"strings"
	"time"
)

// Notification types.
const (
	NotificationLike                = "like"
	NotificationFollow              = "follow"
	NotificationFollowRequest       = "follow_request"
	NotificationVerificationRequest = "verification_request"
)

// Notification represents a user notification document. The document ID is
// the deterministic composite key built by NotificationID, so removing a
// notification is a keyed delete rather than a content-match query, and at
// most one pending follow_request per (sender, recipient) pair can exist.
type Notification struct {
	ID            string    `json:"id" bson:"_id"`
	RecipientID   string    `json:"recipientId" bson:"recipientId"`
	Sender        Author    `json:"sender" bson:"sender"`
	Type          string    `json:"type" bson:"type"`
	Content       string    `json:"content" bson:"content"`
	RelatedPostID string    `json:"relatedPostId,omitempty" bson:"relatedPostId,omitempty"`
	Read          bool      `json:"read" bson:"read"`
	CreatedAt     time.Time `json:"createdAt" bson:"createdAt"`
}

// NotificationID builds the composite document key. relatedID is empty for
// everything except like notifications.
func NotificationID(recipientID, senderID, ntype, relatedID string) string {
	parts := []string{recipientID, senderID, ntype}
	if relatedID != "" {
		parts = append(parts, relatedID)
	}
	return strings.Join(parts, ":")
}
