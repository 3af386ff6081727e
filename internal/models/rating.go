package models

import "time"

// Rating is a 1-5 star score a user gives a post. At most one rating
// exists per (post, user) pair; re-rating updates the stored row in place.
type Rating struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_ratings_post_user" json:"post_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_ratings_post_user" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID" json:"user"`
	Rating    int       `gorm:"not null" json:"rating"`
	CreatedAt time.Time `json:"created_at"`
}
