package domain

import "time"

// Integration binds an opaque session key to an installed shop.
// The key is handed to the browser after a completed install and is how
// gateway requests find their tenant.
type Integration struct {
	ID         string    `json:"id" bson:"_id"`
	Key        string    `json:"key" bson:"key"`
	ShopDomain string    `json:"shop_domain" bson:"shop_domain"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" bson:"updated_at"`
}
