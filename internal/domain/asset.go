package domain

import (
	"strings"
	"time"
)

// AssetKeyPrefix is the theme directory all managed images live under
const AssetKeyPrefix = "assets/"

var imageContentTypes = map[string]bool{
	"image/gif":  true,
	"image/jpeg": true,
	"image/png":  true,
}

// IsImageContentType reports whether a theme asset is one of the managed image types
func IsImageContentType(contentType string) bool {
	return imageContentTypes[contentType]
}

// AssetKey returns the theme key for a display name
func AssetKey(name string) string {
	return AssetKeyPrefix + name
}

// AssetName strips the asset directory from a theme key
func AssetName(key string) string {
	return strings.TrimPrefix(key, AssetKeyPrefix)
}

// Image is a theme asset annotated for the client
type Image struct {
	Key         string     `json:"key"`
	PublicURL   string     `json:"public_url,omitempty"`
	ContentType string     `json:"content_type"`
	Size        int        `json:"size,omitempty"`
	ThemeID     uint64     `json:"theme_id,omitempty"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
	Name        string     `json:"name"`
	Type        string     `json:"type"`
}

// AssetPayload is the upload shape the asset API expects
type AssetPayload struct {
	Key        string `json:"key"`
	Attachment string `json:"attachment"`
}

// AssetOutcome is the result of one item in an upload or delete batch
type AssetOutcome struct {
	Key   string `json:"key"`
	Name  string `json:"name"`
	Asset *Image `json:"asset,omitempty"`
	Error string `json:"error,omitempty"`
	// Rejected marks an item refused before any call to the shop
	Rejected bool `json:"-"`
}

// OK reports whether the item succeeded
func (o AssetOutcome) OK() bool { return o.Error == "" }
