package domain

// WebhookEvent is a verified webhook delivery
type WebhookEvent struct {
	Topic    string `json:"topic"`
	Shop     string `json:"shop"`
	Payload  []byte `json:"payload"`
	Verified bool   `json:"verified"`
}
