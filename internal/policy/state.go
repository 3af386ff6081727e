package policy

// PublicationState is the combined lifecycle state derived from a post's
// two publication flags.
type PublicationState int

const (
	// StateDraft: not public, not approved.
	StateDraft PublicationState = iota
	// StatePending: made public by the owner, awaiting staff approval.
	StatePending
	// StateAccepted: approved by staff while still private.
	StateAccepted
	// StatePublished: public and approved; visible to guests.
	StatePublished
)

func (s PublicationState) String() string {
	switch s {
	case StateDraft:
		return "draft"
	case StatePending:
		return "pending"
	case StateAccepted:
		return "accepted"
	case StatePublished:
		return "published"
	}
	return "unknown"
}

// Transition is a publication state change request.
type Transition int

const (
	// TransitionPublish sets the public flag. Owner operation.
	TransitionPublish Transition = iota
	// TransitionApprove sets the approved flag. Staff operation.
	TransitionApprove
)

// StateOf derives the publication state from the stored flags.
func StateOf(isPublic, isApproved bool) PublicationState {
	switch {
	case isPublic && isApproved:
		return StatePublished
	case isPublic:
		return StatePending
	case isApproved:
		return StateAccepted
	default:
		return StateDraft
	}
}

// Flags returns the flag pair that encodes the state.
func (s PublicationState) Flags() (isPublic, isApproved bool) {
	switch s {
	case StatePublished:
		return true, true
	case StatePending:
		return true, false
	case StateAccepted:
		return false, true
	default:
		return false, false
	}
}

// Apply advances the state by one transition. Both transitions are
// idempotent and neither flag can ever be cleared; there is no edge that
// retracts a publish or an approval.
func Apply(s PublicationState, t Transition) PublicationState {
	isPublic, isApproved := s.Flags()
	switch t {
	case TransitionPublish:
		isPublic = true
	case TransitionApprove:
		isApproved = true
	}
	return StateOf(isPublic, isApproved)
}
