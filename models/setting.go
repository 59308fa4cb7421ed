package models

import "time"

// Setting keys
const (
	SettingContactEmail = "contact_email"

	DefaultContactEmail = "info@jmbcontractors.co.za"
)

type Setting struct {
	Key       string    `json:"key" db:"key"`
	Value     string    `json:"value" db:"value"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

func (Setting) TableName() string { return "settings" }

func (Setting) CreateTableSQL() string {
	return `CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT now()
	);`
}
