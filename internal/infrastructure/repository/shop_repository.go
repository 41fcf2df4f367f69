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

// MongoShopRepository implements ShopRepository using MongoDB
type MongoShopRepository struct {
	shopsCollection *mongo.Collection
}

// NewMongoShopRepository creates a new MongoDB shop repository
func NewMongoShopRepository(db *mongo.Database) ports.ShopRepository {
	return &MongoShopRepository{
		shopsCollection: db.Collection("shops"),
	}
}

// EnsureIndexes creates the unique index on shop domain
func (r *MongoShopRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.shopsCollection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "domain", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create shops index: %w", err)
	}
	return nil
}

// SaveShop saves or updates a shop
func (r *MongoShopRepository) SaveShop(ctx context.Context, shop *domain.Shop) error {
	doc := entity.MongoShopDocFromDomain(shop)
	doc.UpdatedAt = time.Now()
	if doc.InstalledAt.IsZero() {
		doc.InstalledAt = doc.UpdatedAt
	}

	opts := options.Update().SetUpsert(true)
	filter := bson.M{"domain": shop.Domain}
	update := bson.M{"$set": doc}

	_, err := r.shopsCollection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return fmt.Errorf("failed to save shop: %w", err)
	}

	return nil
}

// GetShop retrieves a shop by domain
func (r *MongoShopRepository) GetShop(ctx context.Context, shopDomain string) (*domain.Shop, error) {
	var doc entity.MongoShopDoc
	filter := bson.M{"domain": shopDomain}

	err := r.shopsCollection.FindOne(ctx, filter).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get shop: %w", err)
	}

	return doc.ToDomain(), nil
}

// DeleteShop removes a shop and its token
func (r *MongoShopRepository) DeleteShop(ctx context.Context, shopDomain string) error {
	_, err := r.shopsCollection.DeleteOne(ctx, bson.M{"domain": shopDomain})
	if err != nil {
		return fmt.Errorf("failed to delete shop: %w", err)
	}
	return nil
}
