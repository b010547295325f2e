package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/catatanku/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/gorm"
)

// storyWindow is how long a story stays visible in the feed.
const storyWindow = 24 * time.Hour

// StoryRepository defines the interface for story operations. Story
// documents live in MongoDB; per-viewer seen tracking lives in PostgreSQL.
type StoryRepository interface {
	CreateStory(ctx context.Context, story *models.Story) error
	GetStoryByID(ctx context.Context, id string) (*models.Story, error)
	GetActiveStories(ctx context.Context) ([]models.Story, error)
	DeleteStory(ctx context.Context, id, authorID string) (*models.Story, error)
	MarkSeen(storySeen *models.StorySeen) error
	GetSeenStoryIDs(userID string, storyIDs []string) (map[string]bool, error)
}

type storyRepository struct {
	mongoCollection *mongo.Collection
	pgDB            *gorm.DB
}

// NewStoryRepository creates a story repository over both stores
func NewStoryRepository(mongoDB *mongo.Database, pgDB *gorm.DB) StoryRepository {
	return &storyRepository{
		mongoCollection: mongoDB.Collection("stories"),
		pgDB:            pgDB,
	}
}

func (r *storyRepository) CreateStory(ctx context.Context, story *models.Story) error {
	story.ID = primitive.NewObjectID()
	story.CreatedAt = time.Now()
	_, err := r.mongoCollection.InsertOne(ctx, story)
	return err
}

func (r *storyRepository) GetStoryByID(ctx context.Context, id string) (*models.Story, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid story ID format: %w", err)
	}
	var story models.Story
	err = r.mongoCollection.FindOne(ctx, bson.M{"_id": objID}).Decode(&story)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &story, nil
}

func (r *storyRepository) findActive(ctx context.Context, filter bson.M) ([]models.Story, error) {
	filter["createdAt"] = bson.M{"$gte": time.Now().Add(-storyWindow)}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := r.mongoCollection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var stories []models.Story
	if err = cursor.All(ctx, &stories); err != nil {
		return nil, err
	}
	return stories, nil
}

// GetActiveStories returns all stories inside the 24-hour window, oldest
// first so trays play in posting order.
func (r *storyRepository) GetActiveStories(ctx context.Context) ([]models.Story, error) {
	return r.findActive(ctx, bson.M{})
}

// DeleteStory removes the story document and returns it so the caller can
// also delete the backing media object. Only the author may delete.
func (r *storyRepository) DeleteStory(ctx context.Context, id, authorID string) (*models.Story, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid story ID format: %w", err)
	}

	var story models.Story
	err = r.mongoCollection.FindOneAndDelete(ctx, bson.M{"_id": objID, "authorId": authorID}).Decode(&story)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &story, nil
}

func (r *storyRepository) MarkSeen(storySeen *models.StorySeen) error {
	storySeen.SeenAt = time.Now()
	err := r.pgDB.Create(storySeen).Error
	if err != nil && err == gorm.ErrDuplicatedKey {
		return nil
	}
	return err
}

func (r *storyRepository) GetSeenStoryIDs(userID string, storyIDs []string) (map[string]bool, error) {
	result := make(map[string]bool)
	if len(storyIDs) == 0 {
		return result, nil
	}
	var seen []models.StorySeen
	err := r.pgDB.Where("user_id = ? AND story_id IN ?", userID, storyIDs).Find(&seen).Error
	if err != nil {
		return nil, err
	}
	for _, s := range seen {
		result[s.StoryID] = true
	}
	return result, nil
}
