package models

import "time"

// Section is a named grouping for posts (e.g. "Cutting", "Strength").
type Section struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"unique;not null" json:"name"`
	Description string `json:"description"`
	// PostCount is not persisted; computed at query time. It counts every
	// post in the section regardless of visibility.
	PostCount int64     `gorm:"->;-:migration" json:"post_count"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
