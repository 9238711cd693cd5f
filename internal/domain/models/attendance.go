// internal/domain/models/attendance.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Attendance records one member's presence for one meeting date.
// Exactly one document per (member_id, date); date is stored as a
// "2006-01-02" string so the unique index and range queries stay simple.
type Attendance struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	MemberID primitive.ObjectID `bson:"member_id" json:"member_id"`
	Date     string             `bson:"date" json:"date"`

	Present      bool   `bson:"present" json:"present"`
	PrepAttended bool   `bson:"prep_attended" json:"prep_attended"`
	Notes        string `bson:"notes,omitempty" json:"notes,omitempty"`

	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// DateLayout is the canonical meeting-date format.
const DateLayout = "2006-01-02"

// Today returns the current date in the canonical meeting-date format.
func Today() string {
	return time.Now().Format(DateLayout)
}
