package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"storefront/internal/domain/repositories"
	"storefront/internal/infrastructure/logger"
)

const collectionName = "client_state"

// StateStore keeps client state in MongoDB so a session and cart can
// follow the user between machines.
type StateStore struct {
	client     *mongo.Client
	collection *mongo.Collection
	namespace  string
	logger     *logger.Logger
}

func NewStateStore(uri, dbName, namespace string, logger *logger.Logger) (*StateStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	err = client.Ping(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	collection := client.Database(dbName).Collection(collectionName)

	_, err = collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "namespace", Value: 1}, {Key: "key", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	logger.Info("Connected to MongoDB state store", "database", dbName, "namespace", namespace)

	return &StateStore{
		client:     client,
		collection: collection,
		namespace:  namespace,
		logger:     logger,
	}, nil
}

func (s *StateStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (s *StateStore) Load(ctx context.Context, key string) ([]byte, error) {
	var doc StateDocument
	err := s.collection.FindOne(ctx, s.filter(key)).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repositories.ErrStateNotFound
		}
		return nil, fmt.Errorf("failed to load state %q: %w", key, err)
	}
	return doc.Value, nil
}

func (s *StateStore) Save(ctx context.Context, key string, value []byte) error {
	result, err := s.collection.UpdateOne(
		ctx,
		s.filter(key),
		bson.M{"$set": bson.M{"value": value, "updated_at": time.Now().UTC()}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to save state %q: %w", key, err)
	}

	if result.UpsertedCount > 0 {
		s.logger.Debug("State created", "namespace", s.namespace, "key", key)
	}
	return nil
}

func (s *StateStore) Delete(ctx context.Context, key string) error {
	_, err := s.collection.DeleteOne(ctx, s.filter(key))
	if err != nil {
		return fmt.Errorf("failed to delete state %q: %w", key, err)
	}
	return nil
}

func (s *StateStore) filter(key string) bson.M {
	return bson.M{"namespace": s.namespace, "key": key}
}
