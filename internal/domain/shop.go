package domain

import "time"

// Shop is an installed shop and its Admin API credential.
// AccessToken holds ciphertext while at rest and plaintext only inside a request.
type Shop struct {
	Domain      string    `json:"domain" bson:"domain"`
	AccessToken string    `json:"-" bson:"accessToken"`
	Scope       string    `json:"scope" bson:"scope"`
	InstalledAt time.Time `json:"installed_at" bson:"installedAt"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updatedAt"`
}
