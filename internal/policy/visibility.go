package policy

import (
	"trainhub/internal/models"

	"gorm.io/gorm"
)

// CanViewPost decides whether the actor may see the post.
//
// Guests see only published posts (public AND approved). Authenticated
// users additionally see every public post and all of their own posts,
// whatever the flags. Staff see everything.
func CanViewPost(a Actor, p *models.Post) bool {
	switch ResolveRole(a, p.UserID) {
	case RoleAdmin, RoleOwner:
		return true
	case RoleAuthenticated:
		return p.IsPublic
	default:
		return p.IsPublic && p.IsApproved
	}
}

// PostScope returns a GORM scope that restricts a post query to rows the
// actor may see. It must agree with CanViewPost for every row: a post
// visible on the detail endpoint appears in lists, and vice versa.
func PostScope(a Actor) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch {
		case a.IsStaff:
			return db
		case a.IsGuest():
			return db.Where("posts.is_public = ? AND posts.is_approved = ?", true, true)
		default:
			return db.Where("posts.is_public = ? OR posts.user_id = ?", true, a.ID)
		}
	}
}

// PublishedScope restricts a post query to fully published rows
// regardless of the actor.
func PublishedScope(db *gorm.DB) *gorm.DB {
	return db.Where("posts.is_public = ? AND posts.is_approved = ?", true, true)
}

// PendingScope restricts a post query to rows awaiting moderation:
// made public by their owner but not yet approved.
func PendingScope(db *gorm.DB) *gorm.DB {
	return db.Where("posts.is_public = ? AND posts.is_approved = ?", true, false)
}

// UserPostsScope returns a GORM scope for listing one profile's posts.
// Owners and staff see the full profile; everyone else sees only the
// published subset.
func UserPostsScope(a Actor, profileID uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Where("posts.user_id = ?", profileID)
		if a.IsStaff || a.ID == profileID {
			return db
		}
		return db.Where("posts.is_public = ? AND posts.is_approved = ?", true, true)
	}
}
