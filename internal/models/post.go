package models

import "time"

// Post type discriminator values.
const (
	PostTypeMeal    = "meal"
	PostTypeWorkout = "workout"
)

// Post is a meal or workout plan. Two independent flags drive its
// lifecycle: the owner sets IsPublic, staff set IsApproved. A post is
// visible to everyone only once both are set.
type Post struct {
	ID              uint    `gorm:"primaryKey" json:"id"`
	SectionID       *uint   `gorm:"index" json:"section_id"`
	UserID          uint    `gorm:"not null;index" json:"user_id"`
	User            User    `gorm:"foreignKey:UserID" json:"user"`
	Title           string  `gorm:"not null" json:"title"`
	Type            string  `gorm:"not null" json:"type"`
	Description     string  `gorm:"not null" json:"description"`
	IsPublic        bool    `gorm:"not null;default:false" json:"is_public"`
	IsApproved      bool    `gorm:"not null;default:false" json:"is_approved"`
	Calories        *int    `json:"calories"`
	Recommendations string  `json:"recommendations"`
	// AverageRating is not persisted; computed at query time. Nil when the
	// post has no ratings.
	AverageRating *float64 `gorm:"->;-:migration" json:"average_rating"`
	// CommentCount is not persisted; computed at query time.
	CommentCount int       `gorm:"->;-:migration" json:"comment_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
