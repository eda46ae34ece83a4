package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/fjod/storefront/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoOrderRepository struct {
	collection *mongo.Collection
}

func NewOrderRepository(db *mongo.Database) OrderRepository {
	return &mongoOrderRepository{collection: db.Collection(orderCollection)}
}

func (m *mongoOrderRepository) InsertOrder(ctx context.Context, order *domain.Order) error {
	if order.ID.IsZero() {
		order.ID = primitive.NewObjectID()
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now().UTC()
	}

	if _, err := m.collection.InsertOne(ctx, order); err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}
	return nil
}

func (m *mongoOrderRepository) ListOrders(ctx context.Context, sessionID string) ([]domain.Order, error) {
	// ObjectIDs grow monotonically, so _id breaks created_at ties in insertion order
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})

	cursor, err := m.collection.Find(ctx, bson.M{"session_id": sessionID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer cursor.Close(ctx)

	orders := make([]domain.Order, 0)
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("failed to decode orders: %w", err)
	}

	return orders, nil
}
