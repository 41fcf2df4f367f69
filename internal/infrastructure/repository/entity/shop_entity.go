package entity

import (
	"time"

	"theme-images-manager/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MongoShopDoc represents an installed shop in MongoDB
type MongoShopDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Domain      string             `bson:"domain"`
	AccessToken string             `bson:"accessToken"` // encrypted
	Scope       string             `bson:"scope"`
	InstalledAt time.Time          `bson:"installedAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

// ToDomain converts the MongoDB document to a domain entity
func (d *MongoShopDoc) ToDomain() *domain.Shop {
	return &domain.Shop{
		Domain:      d.Domain,
		AccessToken: d.AccessToken,
		Scope:       d.Scope,
		InstalledAt: d.InstalledAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

// MongoShopDocFromDomain converts a domain entity to a MongoDB document
func MongoShopDocFromDomain(shop *domain.Shop) *MongoShopDoc {
	return &MongoShopDoc{
		Domain:      shop.Domain,
		AccessToken: shop.AccessToken,
		Scope:       shop.Scope,
		InstalledAt: shop.InstalledAt,
		UpdatedAt:   shop.UpdatedAt,
	}
}
