// internal/testutil/fixtures.go
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/khebert/koinonia/internal/domain/models"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateMember inserts a roster member with the given name and role.
// Gender defaults to "female", faith status to "member", education
// status to undergraduate; use CreateMemberWithDetails to control them.
func (f *Fixtures) CreateMember(ctx context.Context, surname, givenName, role string) models.Member {
	f.t.Helper()
	return f.CreateMemberWithDetails(ctx, models.Member{
		Surname:         surname,
		GivenName:       givenName,
		Role:            role,
		Gender:          "female",
		FaithStatus:     "member",
		EducationStatus: models.EducationUndergraduate,
		Active:          true,
	})
}

// CreateMemberWithDetails inserts a roster member from a template.
// ID, FullNameCI, and timestamps are filled in.
func (f *Fixtures) CreateMemberWithDetails(ctx context.Context, m models.Member) models.Member {
	f.t.Helper()

	now := time.Now().UTC()
	m.ID = primitive.NewObjectID()
	m.FullNameCI = text.Fold(m.FullName())
	m.CreatedAt = now
	m.UpdatedAt = now

	if _, err := f.db.Collection("members").InsertOne(ctx, m); err != nil {
		f.t.Fatalf("failed to create test member: %v", err)
	}
	return m
}

// CreateAttendance inserts an attendance record for a member on a date.
func (f *Fixtures) CreateAttendance(ctx context.Context, memberID primitive.ObjectID, date string, present, prepAttended bool) models.Attendance {
	f.t.Helper()

	a := models.Attendance{
		ID:           primitive.NewObjectID(),
		MemberID:     memberID,
		Date:         date,
		Present:      present,
		PrepAttended: prepAttended,
		UpdatedAt:    time.Now().UTC(),
	}

	if _, err := f.db.Collection("attendance").InsertOne(ctx, a); err != nil {
		f.t.Fatalf("failed to create test attendance record: %v", err)
	}
	return a
}
