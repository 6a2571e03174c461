package notifications

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// DefaultCollection is the collection MongoStorage uses unless told otherwise.
const DefaultCollection = "notifications"

// MongoStorage stores notifications in a MongoDB collection.
type MongoStorage struct {
	coll         *mongo.Collection
	transactions bool
	now          func() time.Time
}

// MongoStorageOption configures a MongoStorage.
type MongoStorageOption func(*MongoStorage)

// WithCollection selects a collection name other than DefaultCollection.
func WithCollection(name string) MongoStorageOption {
	return func(s *MongoStorage) {
		s.coll = s.coll.Database().Collection(name)
	}
}

// WithTransactions controls whether CreateBatch runs inside a transaction.
// Standalone servers do not support transactions; disable it there.
func WithTransactions(enabled bool) MongoStorageOption {
	return func(s *MongoStorage) {
		s.transactions = enabled
	}
}

// WithMongoClock overrides the clock used to stamp stored notifications.
func WithMongoClock(now func() time.Time) MongoStorageOption {
	return func(s *MongoStorage) {
		if now != nil {
			s.now = now
		}
	}
}

// NewMongoStorage creates a storage backed by db.
func NewMongoStorage(db *mongo.Database, opts ...MongoStorageOption) *MongoStorage {
	s := &MongoStorage{
		coll:         db.Collection(DefaultCollection),
		transactions: true,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EnsureIndexes creates the indexes the feed and unread queries rely on.
func (s *MongoStorage) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "timestamp", Value: -1}}},
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "read", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create notification indexes: %w", err)
	}
	return nil
}

func (s *MongoStorage) Create(ctx context.Context, notif Notification) error {
	if err := validate(notif); err != nil {
		return err
	}
	notif.Timestamp = s.now().UTC()
	if _, err := s.coll.InsertOne(ctx, notif); err != nil {
		return errors.Join(ErrFailedToStore, err)
	}
	return nil
}

func (s *MongoStorage) CreateBatch(ctx context.Context, notifs []Notification) error {
	if len(notifs) == 0 {
		return ErrEmptyBatch
	}

	now := s.now().UTC()
	docs := make([]any, len(notifs))
	for i, n := range notifs {
		if err := validate(n); err != nil {
			return err
		}
		n.Timestamp = now
		docs[i] = n
	}

	insert := func(ctx context.Context) (any, error) {
		return s.coll.InsertMany(ctx, docs)
	}

	if !s.transactions {
		if _, err := insert(ctx); err != nil {
			return errors.Join(ErrFailedToStore, err)
		}
		return nil
	}

	sess, err := s.coll.Database().Client().StartSession()
	if err != nil {
		return errors.Join(ErrFailedToStore, err)
	}
	defer sess.EndSession(context.WithoutCancel(ctx))

	if _, err := sess.WithTransaction(ctx, insert); err != nil {
		return errors.Join(ErrFailedToStore, err)
	}
	return nil
}

func (s *MongoStorage) Get(ctx context.Context, notifID string) (*Notification, error) {
	var n Notification
	err := s.coll.FindOne(ctx, bson.M{"_id": notifID}).Decode(&n)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotificationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}
	return &n, nil
}

func (s *MongoStorage) List(ctx context.Context, userID string, opts ListOptions) ([]Notification, error) {
	filter := bson.D{{Key: "userId", Value: userID}}
	if opts.OnlyUnread {
		filter = append(filter, bson.E{Key: "read", Value: false})
	}
	if len(opts.Types) > 0 {
		filter = append(filter, bson.E{Key: "type", Value: bson.M{"$in": opts.Types}})
	}
	if len(opts.Priorities) > 0 {
		filter = append(filter, bson.E{Key: "priority", Value: bson.M{"$in": opts.Priorities}})
	}

	findOpts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}})
	if opts.Limit > 0 {
		findOpts.SetLimit(int64(opts.Limit))
	}

	cur, err := s.coll.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, errors.Join(ErrFailedToList, err)
	}

	out := []Notification{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, errors.Join(ErrFailedToList, err)
	}
	return out, nil
}

func (s *MongoStorage) MarkRead(ctx context.Context, readAt time.Time, notifIDs ...string) (int, error) {
	if len(notifIDs) == 0 {
		return 0, nil
	}

	res, err := s.coll.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": notifIDs}, "read": false},
		bson.M{"$set": bson.M{"read": true, "readAt": readAt.UTC()}},
	)
	if err != nil {
		return 0, errors.Join(ErrFailedToMarkRead, err)
	}
	return int(res.ModifiedCount), nil
}
