package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post represents a text note stored in MongoDB. Likes must equal the size
// of LikedBy after any toggle completes; both move in one atomic update.
type Post struct {
	ID       primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	AuthorID string             `json:"authorId" bson:"authorId"`
	Author   Author             `json:"author" bson:"author"`
	Content  string             `json:"content" bson:"content"`
	Tags     []string           `json:"tags,omitempty" bson:"tags,omitempty"`
	Likes    int64              `json:"likes" bson:"likes"`
	LikedBy  []string           `json:"likedBy" bson:"likedBy"`
	Comments int64              `json:"comments" bson:"comments"`
	CreatedAt time.Time         `json:"createdAt" bson:"createdAt"`
}

// IsLikedBy reports whether userID is in the likedBy set.
func (p *Post) IsLikedBy(userID string) bool {
	return containsID(p.LikedBy, userID)
}

// CreatePostRequest defines the request body for posting a new note
type CreatePostRequest struct {
	Content string   `json:"content" validate:"required,min=3,max=500"`
	Tags    []string `json:"tags,omitempty" validate:"omitempty,max=5,dive,min=1,max=30"`
}

// SuggestTagsRequest defines the request body for the tag-suggestion call
type SuggestTagsRequest struct {
	Content string `json:"content" validate:"required,min=3,max=500"`
}
