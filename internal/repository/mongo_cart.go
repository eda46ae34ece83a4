package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/storefront/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoCartRepository struct {
	collection *mongo.Collection
}

func NewCartRepository(db *mongo.Database) CartRepository {
	return &mongoCartRepository{collection: db.Collection(cartCollection)}
}

func (m *mongoCartRepository) FindLine(ctx context.Context, sessionID string, productID primitive.ObjectID) (*domain.CartLine, error) {
	var line domain.CartLine

	filter := bson.M{"session_id": sessionID, "product_id": productID}
	err := m.collection.FindOne(ctx, filter).Decode(&line)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrLineNotFound
		}
		return nil, fmt.Errorf("failed to find cart line: %w", err)
	}

	return &line, nil
}

func (m *mongoCartRepository) ListLines(ctx context.Context, sessionID string) ([]domain.CartLine, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := m.collection.Find(ctx, bson.M{"session_id": sessionID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart lines: %w", err)
	}
	defer cursor.Close(ctx)

	lines := make([]domain.CartLine, 0)
	if err := cursor.All(ctx, &lines); err != nil {
		return nil, fmt.Errorf("failed to decode cart lines: %w", err)
	}

	return lines, nil
}

func (m *mongoCartRepository) InsertLine(ctx context.Context, line *domain.CartLine) error {
	now := time.Now().UTC()
	if line.ID.IsZero() {
		line.ID = primitive.NewObjectID()
	}
	line.CreatedAt = now
	line.UpdatedAt = now

	_, err := m.collection.InsertOne(ctx, line)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateLine
		}
		return fmt.Errorf("failed to insert cart line: %w", err)
	}

	return nil
}

func (m *mongoCartRepository) IncrementQuantity(ctx context.Context, lineID primitive.ObjectID, delta int) (*domain.CartLine, error) {
	update := bson.M{
		"$inc": bson.M{"quantity": delta},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var line domain.CartLine
	err := m.collection.FindOneAndUpdate(ctx, bson.M{"_id": lineID}, update, opts).Decode(&line)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrLineNotFound
		}
		return nil, fmt.Errorf("failed to update cart line quantity: %w", err)
	}

	return &line, nil
}

func (m *mongoCartRepository) DeleteLine(ctx context.Context, lineID primitive.ObjectID) error {
	result, err := m.collection.DeleteOne(ctx, bson.M{"_id": lineID})
	if err != nil {
		return fmt.Errorf("failed to delete cart line: %w", err)
	}

	if result.DeletedCount == 0 {
		return ErrLineNotFound
	}

	return nil
}

func (m *mongoCartRepository) DeleteNonPositive(ctx context.Context, sessionID string) (int64, error) {
	filter := bson.M{"session_id": sessionID, "quantity": bson.M{"$lte": 0}}
	return m.deleteMany(ctx, filter)
}

func (m *mongoCartRepository) DeleteSession(ctx context.Context, sessionID string) (int64, error) {
	return m.deleteMany(ctx, bson.M{"session_id": sessionID})
}

func (m *mongoCartRepository) DeleteLines(ctx context.Context, sessionID string, lineIDs []primitive.ObjectID) (int64, error) {
	if len(lineIDs) == 0 {
		return 0, nil
	}
	filter := bson.M{"session_id": sessionID, "_id": bson.M{"$in": lineIDs}}
	return m.deleteMany(ctx, filter)
}

func (m *mongoCartRepository) deleteMany(ctx context.Context, filter bson.M) (int64, error) {
	result, err := m.collection.DeleteMany(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to delete cart lines: %w", err)
	}
	return result.DeletedCount, nil
}
