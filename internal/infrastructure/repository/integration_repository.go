package repository

import (
	"context"
	"fmt"
	"time"

	"theme-images-manager/internal/domain"
	"theme-images-manager/internal/infrastructure/repository/entity"
	"theme-images-manager/internal/ports"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoIntegrationRepository implements IntegrationRepository using MongoDB
type MongoIntegrationRepository struct {
	collection *mongo.Collection
}

// NewMongoIntegrationRepository creates a new MongoDB integration repository
func NewMongoIntegrationRepository(db *mongo.Database) ports.IntegrationRepository {
	return &MongoIntegrationRepository{
		collection: db.Collection("integrations"),
	}
}

// EnsureIndexes creates the unique key index and the shop lookup index
func (r *MongoIntegrationRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "key", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "shopDomain", Value: 1}},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create integrations indexes: %w", err)
	}
	return nil
}

// Create creates a new integration
func (r *MongoIntegrationRepository) Create(ctx context.Context, integration *domain.Integration) error {
	doc := entity.MongoIntegrationDocFromDomain(integration)
	doc.UpdatedAt = time.Now()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now()
	}

	_, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("failed to create integration: %w", err)
	}

	return nil
}

// GetByKey retrieves an integration by its key
func (r *MongoIntegrationRepository) GetByKey(ctx context.Context, key string) (*domain.Integration, error) {
	var doc entity.MongoIntegrationDoc
	filter := bson.M{"key": key}

	err := r.collection.FindOne(ctx, filter).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get integration: %w", err)
	}

	return doc.ToDomain(), nil
}

// DeleteByShop deletes every integration of a shop
func (r *MongoIntegrationRepository) DeleteByShop(ctx context.Context, shopDomain string) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"shopDomain": shopDomain})
	if err != nil {
		return fmt.Errorf("failed to delete integrations: %w", err)
	}
	return nil
}
