package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Media types for stories.
const (
	MediaImage = "image"
	MediaVideo = "video"
)

// MaxVideoSeconds caps the duration of an uploaded story video.
const MaxVideoSeconds = 25

// Story represents an ephemeral media item stored in MongoDB. Stories fall
// out of feed visibility 24 hours after CreatedAt; expiry is a query-time
// filter, not a deletion.
type Story struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	AuthorID  string             `json:"authorId" bson:"authorId"`
	Author    Author             `json:"author" bson:"author"`
	MediaURL  string             `json:"mediaUrl" bson:"mediaUrl"`
	MediaType string             `json:"mediaType" bson:"mediaType"`
	// MediaPath is the blob-store object path, kept so deletion can remove
	// the object alongside the document.
	MediaPath string    `json:"-" bson:"mediaPath"`
	Duration  int       `json:"duration,omitempty" bson:"duration,omitempty"` // seconds, video only
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

// StorySeen tracks which stories a user has viewed (PostgreSQL)
type StorySeen struct {
	ID      uint      `json:"id" gorm:"primaryKey"`
	StoryID string    `json:"story_id" gorm:"index;uniqueIndex:idx_story_user_seen"`
	UserID  string    `json:"user_id" gorm:"index;uniqueIndex:idx_story_user_seen;size:128"`
	SeenAt  time.Time `json:"seen_at"`
}

// CreateStoryRequest defines the non-file fields of the story upload form
type CreateStoryRequest struct {
	MediaType string `form:"mediaType" validate:"required,oneof=image video"`
	Duration  int    `form:"duration" validate:"omitempty,min=1,max=25"`
}
