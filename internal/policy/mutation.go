package policy

// Operation is a mutation an actor may attempt on a post or one of its
// child resources.
type Operation string

const (
	OpCreate  Operation = "create"
	OpUpdate  Operation = "update"
	OpReplace Operation = "replace"
	OpDelete  Operation = "delete"
	OpPublish Operation = "publish"
	OpApprove Operation = "approve"
)

// Decision is the outcome of a mutation check. Reason is set only when
// the mutation is denied.
type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(reason string) Decision {
	return Decision{Reason: reason}
}

// CanMutate decides whether the actor may perform op on a resource owned
// by ownerID.
//
// Content edits and publishing belong to the owner alone; staff cannot
// rewrite or publish someone else's work. Approval belongs to staff
// alone. Deletion is shared between the owner and staff.
func CanMutate(a Actor, ownerID uint, op Operation) Decision {
	if a.IsGuest() {
		return deny("authentication required")
	}

	switch op {
	case OpCreate:
		return allow()
	case OpUpdate, OpReplace:
		if a.ID != ownerID {
			return deny("only the owner can modify this resource")
		}
		return allow()
	case OpPublish:
		if a.ID != ownerID {
			return deny("only the owner can publish this post")
		}
		return allow()
	case OpApprove:
		if !a.IsStaff {
			return deny("approval requires staff privileges")
		}
		return allow()
	case OpDelete:
		if a.ID != ownerID && !a.IsStaff {
			return deny("only the owner or staff can delete this resource")
		}
		return allow()
	}

	return deny("unknown operation")
}
