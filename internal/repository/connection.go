package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func ConnectMongoDB(ctx context.Context, uri, database string) (*mongo.Database, error) {
	clientOptions := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(100).
		SetMinPoolSize(10)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	// Verify connection
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return client.Database(database), nil
}

// EnsureIndexes creates the indexes the repositories rely on.
// The unique (session_id, product_id) index keeps one line per product per session.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	cartIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "session_id", Value: 1}, {Key: "product_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("session_product_unique"),
		},
	}
	if _, err := db.Collection(cartCollection).Indexes().CreateMany(ctx, cartIndexes); err != nil {
		return fmt.Errorf("failed to create cart indexes: %w", err)
	}

	orderIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "session_id", Value: 1}, {Key: "created_at", Value: -1}},
		},
	}
	if _, err := db.Collection(orderCollection).Indexes().CreateMany(ctx, orderIndexes); err != nil {
		return fmt.Errorf("failed to create order indexes: %w", err)
	}

	productIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "category", Value: 1}},
		},
	}
	if _, err := db.Collection(productCollection).Indexes().CreateMany(ctx, productIndexes); err != nil {
		return fmt.Errorf("failed to create product indexes: %w", err)
	}

	return nil
}
