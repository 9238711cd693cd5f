package divider

import "strings"

// Role classifies a member's function within the organization.
// Facilitators and counselors are collectively "leaders".
type Role string

const (
	RoleFacilitator Role = "facilitator"
	RoleCounselor   Role = "counselor"
	RoleRegular     Role = "regular"
)

// ParseRole maps a stored role string to a Role. Unknown values and the
// legacy "none" both map to RoleRegular.
func ParseRole(s string) Role {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "facilitator":
		return RoleFacilitator
	case "counselor":
		return RoleCounselor
	default:
		return RoleRegular
	}
}

// IsLeader reports whether the role counts toward leader coverage.
func (r Role) IsLeader() bool {
	return r == RoleFacilitator || r == RoleCounselor
}

// Member is one person as seen by the partitioning engine. Members are
// treated as immutable values; identity is carried by ID alone and is
// never used for ordering.
type Member struct {
	ID              string
	Surname         string
	GivenName       string
	Role            Role
	Gender          string
	FaithStatus     string
	EducationStatus string
	IsGraduated     bool
	IsPresent       bool
	PrepAttended    bool
}

// Graduated is the canonical EducationStatus value for graduated
// members.
const Graduated = "graduated"
