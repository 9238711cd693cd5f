// internal/domain/models/member.go
package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Member role values as stored. "facilitator" and "counselor" count as
// leaders when groups are generated; everything else is "regular".
const (
	RoleFacilitator = "facilitator"
	RoleCounselor   = "counselor"
	RoleRegular     = "regular"
)

// Education status values as stored. EducationGraduated is the one the
// group divider treats specially (graduates are clustered together).
const (
	EducationUndergraduate = "undergraduate"
	EducationGraduate      = "graduate"
	EducationGraduated     = "graduated"
)

// Member is one person on the community roster.
//
// NOTE:
//   - Presence and prep attendance are NOT stored here; they are
//     per-meeting facts and live in the attendance collection.
type Member struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Surname    string             `bson:"surname" json:"surname"`
	GivenName  string             `bson:"given_name" json:"given_name"`
	FullNameCI string             `bson:"full_name_ci" json:"full_name_ci"` // lowercase, diacritics-stripped

	Role            string `bson:"role" json:"role"`                         // facilitator | counselor | regular
	Gender          string `bson:"gender" json:"gender"`                     // open categorical
	FaithStatus     string `bson:"faith_status" json:"faith_status"`         // open categorical
	EducationStatus string `bson:"education_status" json:"education_status"` // undergraduate | graduate | graduated

	Active bool   `bson:"active" json:"active"`
	Notes  string `bson:"notes,omitempty" json:"notes,omitempty"` // sanitized HTML

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// FullName renders "Surname GivenName" for display and search keys.
func (m Member) FullName() string {
	return strings.TrimSpace(m.Surname + " " + m.GivenName)
}

// IsGraduated reports whether the member has completed their studies.
func (m Member) IsGraduated() bool {
	return m.EducationStatus == EducationGraduated
}
