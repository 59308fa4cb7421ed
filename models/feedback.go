package models

import (
	"time"

	"github.com/google/uuid"
)

type Feedback struct {
	ID            uuid.UUID `json:"id" db:"id"`
	CustomerName  string    `json:"customer_name" db:"customer_name"`
	CustomerEmail *string   `json:"customer_email,omitempty" db:"customer_email"`
	Rating        int       `json:"rating" db:"rating"`
	Message       string    `json:"message" db:"message"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// Testimonial is the public view of a feedback row. It never carries the
// customer's email.
type Testimonial struct {
	ID           uuid.UUID `json:"id"`
	CustomerName string    `json:"customer_name"`
	Rating       int       `json:"rating"`
	Message      string    `json:"message"`
	CreatedAt    time.Time `json:"created_at"`
}

func (f Feedback) Testimonial() Testimonial {
	return Testimonial{
		ID:           f.ID,
		CustomerName: f.CustomerName,
		Rating:       f.Rating,
		Message:      f.Message,
		CreatedAt:    f.CreatedAt,
	}
}

func (Feedback) TableName() string {
	return "feedback"
}

func (Feedback) CreateTableSQL() string {
	return `
	CREATE TABLE IF NOT EXISTS feedback (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		customer_name TEXT NOT NULL,
		customer_email TEXT,
		rating INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
		message TEXT NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT now()
	);`
}
