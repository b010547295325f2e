package repositories

import (
	"context"
	"time"

	"github.com/catatanku/backend/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NotificationRepository defines the interface for notification operations.
// Document IDs are the deterministic composite keys from
// models.NotificationID, so deletes are keyed and a pending follow_request
// is unique per (sender, recipient) pair by construction.
type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*models.Notification, error)
	GetByRecipient(ctx context.Context, recipientID string, page, limit int) ([]models.Notification, int64, error)
	CountUnread(ctx context.Context, recipientID string) (int64, error)
	MarkAllRead(ctx context.Context, recipientID string) (int64, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time, types []string) (int64, error)
	WatchInserts(ctx context.Context) (<-chan models.Notification, error)
}

type mongoNotificationRepository struct {
	collection *mongo.Collection
}

// NewMongoNotificationRepository creates a new notification repository
func NewMongoNotificationRepository(db *mongo.Database) NotificationRepository {
	return &mongoNotificationRepository{collection: db.Collection("notifications")}
}

// Create inserts the notification. A duplicate key means an identical
// pending notification already exists; callers treat that as satisfied.
func (r *mongoNotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	n.CreatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, n)
	if mongo.IsDuplicateKeyError(err) {
		return ErrAlreadyExists
	}
	return err
}

// Delete removes the notification by its composite key
func (r *mongoNotificationRepository) Delete(ctx context.Context, id string) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoNotificationRepository) GetByID(ctx context.Context, id string) (*models.Notification, error) {
	var n models.Notification
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&n)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &n, nil
}

// GetByRecipient returns the recipient's notifications newest first
func (r *mongoNotificationRepository) GetByRecipient(ctx context.Context, recipientID string, page, limit int) ([]models.Notification, int64, error) {
	filter := bson.M{"recipientId": recipientID}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	skip := int64((page - 1) * limit)
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetSkip(skip).SetLimit(int64(limit))
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var notifications []models.Notification
	if err = cursor.All(ctx, &notifications); err != nil {
		return nil, 0, err
	}
	return notifications, total, nil
}

func (r *mongoNotificationRepository) CountUnread(ctx context.Context, recipientID string) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"recipientId": recipientID, "read": false})
}

// MarkAllRead batch-marks every unread notification of the recipient
func (r *mongoNotificationRepository) MarkAllRead(ctx context.Context, recipientID string) (int64, error) {
	res, err := r.collection.UpdateMany(ctx,
		bson.M{"recipientId": recipientID, "read": false},
		bson.M{"$set": bson.M{"read": true}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// DeleteOlderThan removes notifications of the given types created before
// the cutoff. Nothing schedules this; retention of plain like/follow
// notifications is intentionally left to the operator.
func (r *mongoNotificationRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time, types []string) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{
		"type":      bson.M{"$in": types},
		"createdAt": bson.M{"$lt": cutoff},
	})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// WatchInserts opens a change stream over notification inserts and delivers
// the inserted documents until ctx is cancelled. The channel is closed when
// the stream ends.
func (r *mongoNotificationRepository) WatchInserts(ctx context.Context) (<-chan models.Notification, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.D{{Key: "operationType", Value: "insert"}}}},
	}
	stream, err := r.collection.Watch(ctx, pipeline)
	if err != nil {
		return nil, err
	}

	out := make(chan models.Notification)
	go func() {
		defer close(out)
		defer stream.Close(context.Background())
		for stream.Next(ctx) {
			var event struct {
				FullDocument models.Notification `bson:"fullDocument"`
			}
			if err := stream.Decode(&event); err != nil {
				logrus.WithError(err).Error("Failed to decode notification change event")
				continue
			}
			select {
			case out <- event.FullDocument:
			case <-ctx.Done():
				return
			}
		}
		if err := stream.Err(); err != nil && ctx.Err() == nil {
			logrus.WithError(err).Error("Notification change stream terminated")
		}
	}()
	return out, nil
}
