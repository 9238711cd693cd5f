package divider

import "errors"

// Sentinel errors returned by Config.Build. All are matchable with
// errors.Is; the web layer maps them to user-facing messages.
var (
	// ErrInsufficientMembers means fewer present members than the minimum
	// needed to form even one valid group.
	ErrInsufficientMembers = errors.New("divider: not enough present members to form a group")

	// ErrNoLeaders means no facilitator or counselor is present while the
	// leader-per-group policy is active.
	ErrNoLeaders = errors.New("divider: no facilitators or counselors are present")

	// ErrConstraintUnsatisfiable means the deterministic construction steps
	// could not meet the hard size constraints with the given inputs.
	ErrConstraintUnsatisfiable = errors.New("divider: cannot satisfy group size constraints")
)
