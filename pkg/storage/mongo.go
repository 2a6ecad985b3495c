package storage

import (
	"context"
	"errors"
	"fmt"

	"venuebook/pkg/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName   = "client_state"
	DefaultNamespace = "default"
)

// Mongo stores all keys of a namespace as fields of a single document, so a
// batch is one atomic update.
type Mongo struct {
	client     *mongo.Client
	collection *mongo.Collection
	namespace  string
	owned      bool
}

type stateDocument struct {
	ID     string            `bson:"_id"`
	Values map[string]string `bson:"values"`
}

// ConnectMongo dials uri and returns a store that disconnects the client on
// Close.
func ConnectMongo(ctx context.Context, log *logger.Logger, uri, database string) (*Mongo, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	log.Info("Successfully connected to MongoDB", "database", database)
	m := NewMongo(client.Database(database).Collection(CollectionName), DefaultNamespace)
	m.client = client
	m.owned = true
	return m, nil
}

// NewMongo uses an existing collection. The caller keeps ownership of the
// client.
func NewMongo(collection *mongo.Collection, namespace string) *Mongo {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &Mongo{collection: collection, namespace: namespace}
}

func (m *Mongo) Get(ctx context.Context, key string) (string, bool, error) {
	var doc stateDocument
	err := m.collection.FindOne(ctx, bson.M{"_id": m.namespace}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read state: %w", err)
	}
	v, ok := doc.Values[key]
	return v, ok, nil
}

func (m *Mongo) Set(ctx context.Context, entries map[string]string) error {
	if len(entries) == 0 {
		return nil
	}
	set := bson.M{}
	for k, v := range entries {
		set["values."+k] = v
	}
	_, err := m.collection.UpdateOne(ctx,
		bson.M{"_id": m.namespace},
		bson.M{"$set": set},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to write state: %w", err)
	}
	return nil
}

func (m *Mongo) Remove(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	unset := bson.M{}
	for _, k := range keys {
		unset["values."+k] = ""
	}
	_, err := m.collection.UpdateOne(ctx, bson.M{"_id": m.namespace}, bson.M{"$unset": unset})
	if err != nil {
		return fmt.Errorf("failed to remove state: %w", err)
	}
	return nil
}

func (m *Mongo) Close(ctx context.Context) error {
	if !m.owned || m.client == nil {
		return nil
	}
	return m.client.Disconnect(ctx)
}
