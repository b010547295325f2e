package repositories

import (
	"context"
	"time"

	"github.com/catatanku/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserRepository defines the interface for user data operations. Mutators
// that touch a relationship set update the matching denormalized counter in
// the same write, and are conditional on current membership so a repeated
// call cannot move a counter without moving the set.
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByHandle(ctx context.Context, handle string) (*models.User, error)
	GetUsersByIDs(ctx context.Context, ids []string) ([]models.User, error)
	UpdateProfile(ctx context.Context, user *models.User) error
	SearchUsers(ctx context.Context, query string) ([]models.User, error)

	AddFollower(ctx context.Context, targetID, followerID string) (bool, error)
	RemoveFollower(ctx context.Context, targetID, followerID string) (bool, error)
	AddFollowing(ctx context.Context, userID, targetID string) (bool, error)
	RemoveFollowing(ctx context.Context, userID, targetID string) (bool, error)
	AddFollowRequest(ctx context.Context, targetID, requesterID string) (bool, error)
	RemoveFollowRequest(ctx context.Context, targetID, requesterID string) (bool, error)

	AddSavedPost(ctx context.Context, userID, postID string) (bool, error)
	RemoveSavedPost(ctx context.Context, userID, postID string) (bool, error)

	SetVerified(ctx context.Context, userID string) error
	AdjustPostCount(ctx context.Context, userID string, delta int64) error
}

// MongoUserRepository implements UserRepository for MongoDB
type MongoUserRepository struct {
	collection *mongo.Collection
}

// NewMongoUserRepository creates a new MongoUserRepository
func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{collection: db.Collection("users")}
}

// CreateUser creates a new user document with empty relationship sets
func (r *MongoUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	if user.Followers == nil {
		user.Followers = []string{}
	}
	if user.Following == nil {
		user.Following = []string{}
	}
	if user.FollowRequests == nil {
		user.FollowRequests = []string{}
	}
	if user.SavedPosts == nil {
		user.SavedPosts = []string{}
	}
	user.CreatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return ErrAlreadyExists
	}
	return err
}

// GetUserByID retrieves a user by ID
func (r *MongoUserRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetUserByHandle retrieves a user by their unique handle
func (r *MongoUserRepository) GetUserByHandle(ctx context.Context, handle string) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"handle": handle}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetUsersByIDs retrieves users by document-id batches, chunked to the
// store's IN-query size limit.
func (r *MongoUserRepository) GetUsersByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	users := make([]models.User, 0, len(ids))
	for _, chunk := range chunkIDs(ids) {
		cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": chunk}})
		if err != nil {
			return nil, err
		}
		var batch []models.User
		if err = cursor.All(ctx, &batch); err != nil {
			return nil, err
		}
		users = append(users, batch...)
	}
	return users, nil
}

// UpdateProfile updates the editable profile fields
func (r *MongoUserRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	update := bson.M{"$set": bson.M{
		"name":      user.Name,
		"handle":    user.Handle,
		"avatarUrl": user.AvatarURL,
		"bio":       user.Bio,
		"isPrivate": user.IsPrivate,
	}}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": user.ID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SearchUsers searches for users by name or handle (case-insensitive prefix)
func (r *MongoUserRepository) SearchUsers(ctx context.Context, query string) ([]models.User, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"name": bson.M{"$regex": query, "$options": "i"}},
		bson.M{"handle": bson.M{"$regex": query, "$options": "i"}},
	}}
	opts := options.Find().SetLimit(20)
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var users []models.User
	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// addToSet adds member to the named set and bumps counter by one, only if
// the member is absent. Returns whether the document changed.
func (r *MongoUserRepository) addToSet(ctx context.Context, userID, field, member, counter string) (bool, error) {
	filter := bson.M{"_id": userID, field: bson.M{"$ne": member}}
	update := bson.M{"$push": bson.M{field: member}}
	if counter != "" {
		update["$inc"] = bson.M{counter: 1}
	}
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

func (r *MongoUserRepository) pullFromSet(ctx context.Context, userID, field, member, counter string) (bool, error) {
	filter := bson.M{"_id": userID, field: member}
	update := bson.M{"$pull": bson.M{field: member}}
	if counter != "" {
		update["$inc"] = bson.M{counter: -1}
	}
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

func (r *MongoUserRepository) AddFollower(ctx context.Context, targetID, followerID string) (bool, error) {
	return r.addToSet(ctx, targetID, "followers", followerID, "stats.followers")
}

func (r *MongoUserRepository) RemoveFollower(ctx context.Context, targetID, followerID string) (bool, error) {
	return r.pullFromSet(ctx, targetID, "followers", followerID, "stats.followers")
}

func (r *MongoUserRepository) AddFollowing(ctx context.Context, userID, targetID string) (bool, error) {
	return r.addToSet(ctx, userID, "following", targetID, "stats.following")
}

func (r *MongoUserRepository) RemoveFollowing(ctx context.Context, userID, targetID string) (bool, error) {
	return r.pullFromSet(ctx, userID, "following", targetID, "stats.following")
}

func (r *MongoUserRepository) AddFollowRequest(ctx context.Context, targetID, requesterID string) (bool, error) {
	return r.addToSet(ctx, targetID, "followRequests", requesterID, "")
}

func (r *MongoUserRepository) RemoveFollowRequest(ctx context.Context, targetID, requesterID string) (bool, error) {
	return r.pullFromSet(ctx, targetID, "followRequests", requesterID, "")
}

func (r *MongoUserRepository) AddSavedPost(ctx context.Context, userID, postID string) (bool, error) {
	return r.addToSet(ctx, userID, "savedPosts", postID, "")
}

func (r *MongoUserRepository) RemoveSavedPost(ctx context.Context, userID, postID string) (bool, error) {
	return r.pullFromSet(ctx, userID, "savedPosts", postID, "")
}

// SetVerified flags the user as verified
func (r *MongoUserRepository) SetVerified(ctx context.Context, userID string) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$set": bson.M{"isVerified": true}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// AdjustPostCount moves the denormalized post counter
func (r *MongoUserRepository) AdjustPostCount(ctx context.Context, userID string, delta int64) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$inc": bson.M{"stats.posts": delta}})
	return err
}
