package datastore

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/coreybb/itemgate/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"
)

// defaultMongoDatabase is used when the connection string names no database.
const defaultMongoDatabase = "test"

// MongoSource reads items from a MongoDB collection.
type MongoSource struct {
	name     string
	uri      string
	database string
}

// NewMongoSource validates the connection string and creates a MongoSource.
// No connection is opened until FetchItems is called.
func NewMongoSource(name, uri string) (*MongoSource, error) {
	cs, err := connstring.ParseAndValidate(uri)
	if err != nil {
		return nil, fmt.Errorf("invalid mongo connection string for source %s: %w", name, err)
	}

	database := cs.Database
	if database == "" {
		database = defaultMongoDatabase
	}

	return &MongoSource{name: name, uri: uri, database: database}, nil
}

func (s *MongoSource) Name() string {
	return s.name
}

// Database returns the database the items collection is read from.
func (s *MongoSource) Database() string {
	return s.database
}

// FetchItems connects, reads every document of the items collection and
// disconnects.
func (s *MongoSource) FetchItems(ctx context.Context) ([]models.Item, error) {
	slog.Info("Connecting to source", "source", s.name, "url", redactURL(s.uri))

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(s.uri))
	if err != nil {
		slog.Error("Source connection error", "source", s.name, "error", err)
		return nil, connectError(s.name, err)
	}
	defer func() {
		// The request context may already be done; disconnect regardless.
		if err := client.Disconnect(context.WithoutCancel(ctx)); err != nil {
			slog.Warn("Source disconnect failed", "source", s.name, "error", err)
		}
	}()

	// Connect is lazy, so ping to surface unreachable servers as connect errors.
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		slog.Error("Source connection error", "source", s.name, "error", err)
		return nil, connectError(s.name, err)
	}
	slog.Info("Connected to source", "source", s.name)

	items, err := findItems(ctx, client.Database(s.database).Collection(itemsCollection))
	if err != nil {
		slog.Error("Source query error", "source", s.name, "error", err)
		return nil, queryError(s.name, err)
	}
	if len(items) == 0 {
		slog.Info("No items retrieved from source", "source", s.name)
	}
	return items, nil
}

// findItems runs a match-all find against coll and normalizes each document.
func findItems(ctx context.Context, coll *mongo.Collection) ([]models.Item, error) {
	cursor, err := coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", coll.Name(), err)
	}

	var docs []bson.M
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to read %s cursor: %w", coll.Name(), err)
	}

	items := make([]models.Item, 0, len(docs))
	for _, doc := range docs {
		items = append(items, models.Item{
			ID:   doc["_id"],
			Name: doc["name"],
		})
	}
	return items, nil
}
