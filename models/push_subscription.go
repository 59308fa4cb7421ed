package models

import (
	"time"

	"github.com/google/uuid"
)

// PushSubscription is one browser that opted in to Web Push notifications.
type PushSubscription struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Endpoint  string    `json:"endpoint" db:"endpoint"`
	P256dh    string    `json:"p256dh" db:"p256dh"`
	Auth      string    `json:"auth" db:"auth"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

func (PushSubscription) TableName() string {
	return "push_subscriptions"
}

func (PushSubscription) CreateTableSQL() string {
	return `
	CREATE TABLE IF NOT EXISTS push_subscriptions (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		endpoint TEXT NOT NULL UNIQUE,
		p256dh TEXT NOT NULL,
		auth TEXT NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT now()
	);`
}
