package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// CartSnapshot holds the serialized cart of one browser session.
type CartSnapshot struct {
	SessionID uuid.UUID       `json:"session_id" db:"session_id"`
	Key       string          `json:"key" db:"key"`
	Payload   json.RawMessage `json:"payload" db:"payload"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
}

func (CartSnapshot) TableName() string {
	return "cart_snapshots"
}

func (CartSnapshot) CreateTableSQL() string {
	return `
	CREATE TABLE IF NOT EXISTS cart_snapshots (
		session_id UUID NOT NULL,
		key TEXT NOT NULL,
		payload JSONB NOT NULL,
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT now(),
		PRIMARY KEY (session_id, key)
	);`
}
