package usage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	defaultMongoTimeout = 5 * time.Second
	mongoCollection     = "usage_stats"
	mongoDocumentID     = "usage"
)

// MongoStorage keeps every counter in a single document, updated with $inc.
type MongoStorage struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// MongoOptions selects the server and database.
type MongoOptions struct {
	URI      string
	Database string
}

type mongoUsageDoc struct {
	ID        string           `bson:"_id"`
	Counters  map[string]int64 `bson:"counters"`
	UpdatedAt time.Time        `bson:"updated_at"`
}

// NewMongoStorage connects and pings MongoDB.
func NewMongoStorage(ctx context.Context, opts MongoOptions) (*MongoStorage, error) {
	if opts.Database == "" {
		opts.Database = "tonetranslate"
	}
	ctx, cancel := withMongoTimeout(ctx)
	defer cancel()

	clientOptions := options.Client().ApplyURI(opts.URI)
	clientOptions.SetMaxPoolSize(10)
	clientOptions.SetServerSelectionTimeout(5 * time.Second)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	return &MongoStorage{
		client: client,
		coll:   client.Database(opts.Database).Collection(mongoCollection),
	}, nil
}

func withMongoTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, defaultMongoTimeout)
}

// LoadStats implements Storage
func (m *MongoStorage) LoadStats(ctx context.Context) (*Stats, error) {
	ctx, cancel := withMongoTimeout(ctx)
	defer cancel()

	var doc mongoUsageDoc
	err := m.coll.FindOne(ctx, bson.M{"_id": mongoDocumentID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return NewStats(), nil
	}
	if err != nil {
		return nil, err
	}
	return StatsFromCounters(doc.Counters), nil
}

// AddStats implements Storage
func (m *MongoStorage) AddStats(ctx context.Context, delta *Stats) error {
	flat := delta.Flatten()
	if len(flat) == 0 {
		return nil
	}
	inc := make(bson.M, len(flat))
	for field, v := range flat {
		inc["counters."+field] = v
	}

	ctx, cancel := withMongoTimeout(ctx)
	defer cancel()
	update := bson.M{
		"$inc": inc,
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}
	_, err := m.coll.UpdateOne(ctx, bson.M{"_id": mongoDocumentID}, update, options.Update().SetUpsert(true))
	return err
}

// Close disconnects the client
func (m *MongoStorage) Close() error {
	if m.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), defaultMongoTimeout)
	defer cancel()
	return m.client.Disconnect(ctx)
}
