// Package policy holds the access rules for posts and their child
// resources: who can see what, and who may perform which mutation.
// All functions are pure so the rules can be tested exhaustively.
package policy

// Actor identifies the requester for a policy check. A zero-ID actor is
// an unauthenticated guest.
type Actor struct {
	ID      uint
	IsStaff bool
}

// IsGuest reports whether the actor is unauthenticated.
func (a Actor) IsGuest() bool {
	return a.ID == 0
}

// Role is the resolved relationship between an actor and a resource.
type Role int

const (
	RoleGuest Role = iota
	RoleAuthenticated
	RoleOwner
	RoleAdmin
)

func (r Role) String() string {
	switch r {
	case RoleGuest:
		return "guest"
	case RoleAuthenticated:
		return "authenticated"
	case RoleOwner:
		return "owner"
	case RoleAdmin:
		return "admin"
	}
	return "unknown"
}

// ResolveRole classifies the actor relative to a resource owner.
// Admin outranks owner: a staff member acting on their own post is
// still resolved as admin.
func ResolveRole(a Actor, ownerID uint) Role {
	switch {
	case a.IsGuest():
		return RoleGuest
	case a.IsStaff:
		return RoleAdmin
	case a.ID == ownerID:
		return RoleOwner
	default:
		return RoleAuthenticated
	}
}
