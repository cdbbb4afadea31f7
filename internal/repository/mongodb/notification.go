package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/notihub/notification-backend-go/internal/domain/notification"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CollectionName = "notifications"

type notificationDocument struct {
	ID         primitive.ObjectID `bson:"_id"`
	OwnerID    string             `bson:"ownerId"`
	Content    string             `bson:"content"`
	Category   string             `bson:"category"`
	Read       bool               `bson:"read"`
	CanceledAt *time.Time         `bson:"canceledAt"`
	CreatedAt  time.Time          `bson:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt"`
}

func (d notificationDocument) toEntity() *notification.Notification {
	n := &notification.Notification{
		ID:        d.ID.Hex(),
		OwnerID:   d.OwnerID,
		Content:   d.Content,
		Category:  d.Category,
		Read:      d.Read,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
	if d.CanceledAt != nil {
		canceledAt := d.CanceledAt.UTC()
		n.CanceledAt = &canceledAt
	}
	return n
}

type notificationRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *mongo.Database) notification.Repository {
	return &notificationRepository{coll: db.Collection(CollectionName), now: time.Now}
}

// EnsureIndexes creates the (ownerId, createdAt desc) index used by listing
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(CollectionName).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "ownerId", Value: 1}, {Key: "createdAt", Value: -1}},
		Options: options.Index().SetName("idx_notifications_owner_created"),
	})
	if err != nil {
		return fmt.Errorf("failed to create notifications index: %w", err)
	}
	return nil
}

func (r *notificationRepository) Create(ctx context.Context, ownerID, content, category string) (*notification.Notification, error) {
	now := r.now().UTC().Truncate(time.Millisecond)

	doc := notificationDocument{
		ID:        primitive.NewObjectID(),
		OwnerID:   ownerID,
		Content:   content,
		Category:  category,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, storeError("create notification", err)
	}
	return doc.toEntity(), nil
}

func (r *notificationRepository) FindByID(ctx context.Context, id string, includeCanceled bool) (*notification.Notification, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, notification.ErrNotificationNotFound
	}

	filter := bson.M{"_id": oid}
	applyVisibility(filter, includeCanceled)

	var doc notificationDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, notification.ErrNotificationNotFound
		}
		return nil, storeError("get notification", err)
	}
	return doc.toEntity(), nil
}

func (r *notificationRepository) FindManyByOwner(ctx context.Context, ownerID string, page, pageSize int, includeCanceled bool) ([]*notification.Notification, error) {
	offset, err := notification.Offset(page, pageSize)
	if err != nil {
		return nil, err
	}

	filter := bson.M{"ownerId": ownerID}
	applyVisibility(filter, includeCanceled)

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(pageSize))

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, storeError("query notifications", err)
	}

	var docs []notificationDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, storeError("decode notifications", err)
	}

	notifications := make([]*notification.Notification, 0, len(docs))
	for _, doc := range docs {
		notifications = append(notifications, doc.toEntity())
	}
	return notifications, nil
}

func (r *notificationRepository) CountByOwner(ctx context.Context, ownerID string, includeCanceled bool) (int64, error) {
	filter := bson.M{"ownerId": ownerID}
	applyVisibility(filter, includeCanceled)

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, storeError("count notifications", err)
	}
	return total, nil
}

// Save uses an aggregation-pipeline update so read and canceledAt only move forward
func (r *notificationRepository) Save(ctx context.Context, n *notification.Notification) (*notification.Notification, error) {
	oid, err := primitive.ObjectIDFromHex(n.ID)
	if err != nil {
		return nil, notification.ErrNotificationNotFound
	}

	var canceledAt interface{}
	if n.CanceledAt != nil {
		canceledAt = n.CanceledAt.UTC().Truncate(time.Millisecond)
	}
	now := r.now().UTC().Truncate(time.Millisecond)

	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "read", Value: bson.D{{Key: "$or", Value: bson.A{"$read", n.Read}}}},
			{Key: "canceledAt", Value: bson.D{{Key: "$ifNull", Value: bson.A{"$canceledAt", canceledAt}}}},
			{Key: "updatedAt", Value: bson.D{{Key: "$max", Value: bson.A{"$createdAt", now}}}},
		}}},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc notificationDocument
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, notification.ErrNotificationNotFound
		}
		return nil, storeError("save notification", err)
	}
	return doc.toEntity(), nil
}

// applyVisibility hides soft-deleted documents; a null or missing canceledAt means active
func applyVisibility(filter bson.M, includeCanceled bool) {
	if !includeCanceled {
		filter["canceledAt"] = nil
	}
}

func storeError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", notification.ErrStoreUnavailable, op, err)
}
