package models

import "time"

// Contact is the model for the 'contacts' table (the site contact form).
type Contact struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Message   string    `json:"message" db:"message"`
	Locale    string    `json:"locale" db:"locale"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
