package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/fjod/storefront/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoProductRepository struct {
	collection *mongo.Collection
}

func NewProductRepository(db *mongo.Database) ProductRepository {
	return &mongoProductRepository{collection: db.Collection(productCollection)}
}

func (m *mongoProductRepository) GetProduct(ctx context.Context, id primitive.ObjectID) (*domain.Product, error) {
	var product domain.Product

	err := m.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return &product, nil
}

func (m *mongoProductRepository) ListProducts(ctx context.Context, filter ProductFilter) ([]domain.Product, error) {
	query := bson.M{}
	if filter.Category != "" {
		query["category"] = filter.Category
	}

	opts := options.Find()
	if filter.Limit > 0 {
		opts.SetLimit(filter.Limit)
	}

	cursor, err := m.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer cursor.Close(ctx)

	products := make([]domain.Product, 0)
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}

	return products, nil
}

func (m *mongoProductRepository) CountProducts(ctx context.Context) (int64, error) {
	n, err := m.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return n, nil
}

func (m *mongoProductRepository) InsertProducts(ctx context.Context, products []domain.Product) (int, error) {
	if len(products) == 0 {
		return 0, nil
	}

	docs := make([]interface{}, 0, len(products))
	for i := range products {
		if products[i].ID.IsZero() {
			products[i].ID = primitive.NewObjectID()
		}
		docs = append(docs, products[i])
	}

	res, err := m.collection.InsertMany(ctx, docs)
	if err != nil {
		return 0, fmt.Errorf("failed to insert products: %w", err)
	}

	return len(res.InsertedIDs), nil
}

func (m *mongoProductRepository) DeleteAllProducts(ctx context.Context) (int64, error) {
	res, err := m.collection.DeleteMany(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to delete products: %w", err)
	}
	return res.DeletedCount, nil
}
