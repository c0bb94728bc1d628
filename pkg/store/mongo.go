package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Defaults for MongoConfig.
const (
	DefaultMongoDatabase   = "callout"
	DefaultMongoCollection = "scenes"
)

// MongoConfig configures a MongoStore.
type MongoConfig struct {
	URI        string
	Database   string
	Collection string

	// Timeout bounds connecting and pinging. Defaults to 10s.
	Timeout time.Duration
}

// MongoStore keeps records in a MongoDB collection keyed by _id.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects, pings the server and ensures the created_at
// index exists.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.Database == "" {
		cfg.Database = DefaultMongoDatabase
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultMongoCollection
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	coll := client.Database(cfg.Database).Collection(cfg.Collection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "created_at", Value: -1}},
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("create index: %w", err)
	}
	return &MongoStore{client: client, coll: coll}, nil
}

// Get implements Store.
func (s *MongoStore) Get(ctx context.Context, id string) (*Record, error) {
	var rec Record
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("find scene: %w", err)
	}
	return &rec, nil
}

// Put implements Store. CreatedAt is only written on insert.
func (s *MongoStore) Put(ctx context.Context, rec *Record) error {
	if err := validate(rec); err != nil {
		return err
	}
	update := bson.M{
		"$set":         bson.M{"scene": rec.Scene, "updated_at": rec.UpdatedAt},
		"$setOnInsert": bson.M{"created_at": rec.CreatedAt},
	}
	_, err := s.coll.UpdateByID(ctx, rec.ID, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert scene: %w", err)
	}
	return nil
}

// Delete implements Store.
func (s *MongoStore) Delete(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete scene: %w", err)
	}
	if res.DeletedCount == 0 {
		return notFound(id)
	}
	return nil
}

// List implements Store.
func (s *MongoStore) List(ctx context.Context, limit int) ([]*Record, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list scenes: %w", err)
	}
	var out []*Record
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode scenes: %w", err)
	}
	return out, nil
}

// Close implements Store.
func (s *MongoStore) Close() error {
	return s.client.Disconnect(context.Background())
}

var _ Store = (*MongoStore)(nil)
