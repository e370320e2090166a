package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/journeyline/journeyline/pkg/cache"
	"github.com/journeyline/journeyline/pkg/timeline"
	"github.com/journeyline/journeyline/pkg/timeline/transform"
)

// Mongo defaults.
const (
	DefaultMongoDatabase   = "journeyline"
	DefaultMongoCollection = "timeline_nodes"
	mongoConnectTimeout    = 10 * time.Second
	mongoRetryDelay        = 500 * time.Millisecond
)

// MongoOptions configures [NewMongoStore].
type MongoOptions struct {
	URI        string
	Database   string
	Collection string
}

// MongoStore stores one document per record, unique on
// (user_id, external_id). Metadata is kept as a JSON string so arbitrary
// payload keys survive untouched.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// nodeDoc is the stored shape of a record.
type nodeDoc struct {
	UserID     string `bson:"user_id"`
	ExternalID string `bson:"external_id"`
	ParentID   string `bson:"parent_id,omitempty"`
	NodeType   string `bson:"node_type"`
	Title      string `bson:"title"`
	Metadata   string `bson:"metadata"`
	Seq        int64  `bson:"seq"`
}

// NewMongoStore connects, pings the primary and ensures the unique index.
func NewMongoStore(ctx context.Context, opts MongoOptions) (*MongoStore, error) {
	if opts.URI == "" {
		return nil, errors.New("mongo: uri is required")
	}
	if opts.Database == "" {
		opts.Database = DefaultMongoDatabase
	}
	if opts.Collection == "" {
		opts.Collection = DefaultMongoCollection
	}

	ctx, cancel := context.WithTimeout(ctx, mongoConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(opts.URI))
	if err != nil {
		return nil, fmt.Errorf("mongo: connect: %w", err)
	}
	err = cache.RetryWithBackoff(ctx, mongoRetryDelay, func() error {
		return cache.Retryable(client.Ping(ctx, readpref.Primary()))
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo: ping: %w", err)
	}

	coll := client.Database(opts.Database).Collection(opts.Collection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "external_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo: create index: %w", err)
	}

	return &MongoStore{client: client, coll: coll}, nil
}

func (s *MongoStore) List(ctx context.Context, userID string) ([]timeline.Record, error) {
	cur, err := s.coll.Find(ctx, bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "seq", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("mongo: list: %w", err)
	}
	var docs []nodeDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongo: list: %w", err)
	}

	out := make([]timeline.Record, 0, len(docs))
	for _, d := range docs {
		r, err := d.record()
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *MongoStore) Get(ctx context.Context, userID, id string) (timeline.Record, error) {
	var d nodeDoc
	err := s.coll.FindOne(ctx, bson.M{"user_id": userID, "external_id": id}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return timeline.Record{}, ErrNotFound
	}
	if err != nil {
		return timeline.Record{}, fmt.Errorf("mongo: get: %w", err)
	}
	return d.record()
}

func (s *MongoStore) Upsert(ctx context.Context, userID string, rec timeline.Record) error {
	flat := transform.Flatten([]timeline.Record{rec})
	for _, r := range flat {
		if err := validate(r); err != nil {
			return err
		}
	}

	for _, r := range flat {
		meta, err := json.Marshal(r.Meta.Clone())
		if err != nil {
			return fmt.Errorf("mongo: encode metadata of %s: %w", r.ID, err)
		}
		filter := bson.M{"user_id": userID, "external_id": r.ID}
		update := bson.M{
			"$set": bson.M{
				"parent_id": r.ParentID,
				"node_type": r.Type,
				"title":     r.Meta.String(timeline.MetaTitle),
				"metadata":  string(meta),
			},
			"$setOnInsert": bson.M{"seq": time.Now().UnixNano()},
		}
		if _, err := s.coll.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true)); err != nil {
			return fmt.Errorf("mongo: upsert %s: %w", r.ID, err)
		}
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, userID, id string) (int, error) {
	recs, err := s.List(ctx, userID)
	if err != nil {
		return 0, err
	}
	found := false
	for _, r := range recs {
		if r.ID == id {
			found = true
			break
		}
	}
	if !found {
		return 0, ErrNotFound
	}

	ids := descendants(recs, id)
	res, err := s.coll.DeleteMany(ctx, bson.M{"user_id": userID, "external_id": bson.M{"$in": ids}})
	if err != nil {
		return 0, fmt.Errorf("mongo: delete: %w", err)
	}
	return int(res.DeletedCount), nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (d nodeDoc) record() (timeline.Record, error) {
	r := timeline.Record{
		ID:       d.ExternalID,
		ParentID: d.ParentID,
		Type:     d.NodeType,
		Meta:     timeline.Meta{},
	}
	if d.Metadata != "" {
		if err := json.Unmarshal([]byte(d.Metadata), &r.Meta); err != nil {
			return timeline.Record{}, fmt.Errorf("mongo: decode metadata of %s: %w", d.ExternalID, err)
		}
	}
	if d.Title != "" && !r.Meta.Has(timeline.MetaTitle) {
		r.Meta[timeline.MetaTitle] = d.Title
	}
	return r, nil
}

// Ensure MongoStore implements Store.
var _ Store = (*MongoStore)(nil)
