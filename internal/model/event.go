package model

import (
	"time"

	"github.com/google/uuid"
)

// Event is one biennial meeting. Members register per (member, event).
type Event struct {
	ID        uuid.UUID  `json:"id"`
	CreatedAt *time.Time `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
	Name      string     `json:"name"`
	Date      time.Time  `json:"date"`
	Venues    []*Venue   `json:"venues,omitempty"`
}

// Venue is one meeting location with its session slots.
type Venue struct {
	Name     string      `json:"name"`
	Region   Region      `json:"region"`
	City     string      `json:"city,omitempty"`
	Sessions []time.Time `json:"sessions,omitempty"`
}
