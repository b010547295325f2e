package models

import "time"

// Stats are the denormalized counters shown on a profile. Every mutation of
// the relationship sets below updates the matching counter in the same
// atomic write, so they cannot drift under normal operation.
type Stats struct {
	Posts     int64 `json:"posts" bson:"posts"`
	Followers int64 `json:"followers" bson:"followers"`
	Following int64 `json:"following" bson:"following"`
}

// User represents a user document. The document ID is the opaque identity
// issued by the auth provider.
type User struct {
	ID         string `json:"id" bson:"_id"`
	Name       string `json:"name" bson:"name"`
	Handle     string `json:"handle" bson:"handle"`
	Email      string `json:"email" bson:"email"`
	AvatarURL  string `json:"avatarUrl" bson:"avatarUrl"`
	Bio        string `json:"bio" bson:"bio"`
	IsPrivate  bool   `json:"isPrivate" bson:"isPrivate"`
	IsVerified bool   `json:"isVerified" bson:"isVerified"`
	Stats      Stats  `json:"stats" bson:"stats"`

	// Relationship sets. FollowRequests is only meaningful on private accounts.
	Followers      []string `json:"followers" bson:"followers"`
	Following      []string `json:"following" bson:"following"`
	FollowRequests []string `json:"followRequests" bson:"followRequests"`
	SavedPosts     []string `json:"savedPosts" bson:"savedPosts"`

	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

// Author is the denormalized user snapshot embedded in posts, stories and
// notifications at creation time. It may go stale; that is accepted.
type Author struct {
	ID         string `json:"id" bson:"id"`
	Name       string `json:"name" bson:"name"`
	Handle     string `json:"handle" bson:"handle"`
	AvatarURL  string `json:"avatarUrl" bson:"avatarUrl"`
	IsVerified bool   `json:"isVerified" bson:"isVerified"`
}

// Snapshot returns the embeddable snapshot of the user.
func (u *User) Snapshot() Author {
	return Author{
		ID:         u.ID,
		Name:       u.Name,
		Handle:     u.Handle,
		AvatarURL:  u.AvatarURL,
		IsVerified: u.IsVerified,
	}
}

// IsFollowedBy reports whether userID is in the follower set.
func (u *User) IsFollowedBy(userID string) bool {
	return containsID(u.Followers, userID)
}

// HasFollowRequestFrom reports whether userID has a pending follow request.
func (u *User) HasFollowRequestFrom(userID string) bool {
	return containsID(u.FollowRequests, userID)
}

// HasSaved reports whether the post is in the user's saved set.
func (u *User) HasSaved(postID string) bool {
	return containsID(u.SavedPosts, postID)
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// CreateUserRequest defines the request body for completing signup. The
// identity itself comes from the verified auth-provider token.
type CreateUserRequest struct {
	Name      string `json:"name" validate:"required,min=2,max=50"`
	Handle    string `json:"handle" validate:"required,handle"`
	Email     string `json:"email" validate:"required,email"`
	AvatarURL string `json:"avatarUrl" validate:"omitempty,url"`
	Bio       string `json:"bio" validate:"omitempty,max=160"`
}

// UpdateProfileRequest defines the request body for editing the own profile
type UpdateProfileRequest struct {
	Name      string `json:"name,omitempty" validate:"omitempty,min=2,max=50"`
	Handle    string `json:"handle,omitempty" validate:"omitempty,handle"`
	AvatarURL string `json:"avatarUrl,omitempty" validate:"omitempty,url"`
	Bio       string `json:"bio,omitempty" validate:"omitempty,max=160"`
	IsPrivate *bool  `json:"isPrivate,omitempty"`
}
