// internal/app/store/attendance/attendancestore.go
package attendancestore

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/khebert/koinonia/internal/domain/models"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("attendance")}
}

var errBadDate = errors.New(`date must be formatted "2006-01-02"`)

func validDate(date string) bool {
	_, err := time.Parse(models.DateLayout, date)
	return err == nil
}

// Get loads the attendance record for one member on one date.
// Returns mongo.ErrNoDocuments if none exists.
func (s *Store) Get(ctx context.Context, memberID primitive.ObjectID, date string) (*models.Attendance, error) {
	var a models.Attendance
	err := s.c.FindOne(ctx, bson.M{"member_id": memberID, "date": date}).Decode(&a)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// SetPresent upserts a member's presence for a date. Absent members
// keep any prep flag they already have; it is simply ignored until they
// are marked present again.
func (s *Store) SetPresent(ctx context.Context, memberID primitive.ObjectID, date string, present bool) error {
	if !validDate(date) {
		return errBadDate
	}
	_, err := s.c.UpdateOne(ctx,
		bson.M{"member_id": memberID, "date": date},
		bson.M{
			"$set": bson.M{
				"present":    present,
				"updated_at": time.Now().UTC(),
			},
			"$setOnInsert": bson.M{
				"_id":           primitive.NewObjectID(),
				"prep_attended": false,
			},
		},
		options.Update().SetUpsert(true),
	)
	return err
}

// SetPrep upserts a member's prep-meeting flag for a date.
func (s *Store) SetPrep(ctx context.Context, memberID primitive.ObjectID, date string, prepAttended bool) error {
	if !validDate(date) {
		return errBadDate
	}
	_, err := s.c.UpdateOne(ctx,
		bson.M{"member_id": memberID, "date": date},
		bson.M{
			"$set": bson.M{
				"prep_attended": prepAttended,
				"updated_at":    time.Now().UTC(),
			},
			"$setOnInsert": bson.M{
				"_id":     primitive.NewObjectID(),
				"present": false,
			},
		},
		options.Update().SetUpsert(true),
	)
	return err
}

// SetNotes upserts the free-form note on a member's attendance record.
func (s *Store) SetNotes(ctx context.Context, memberID primitive.ObjectID, date, notes string) error {
	if !validDate(date) {
		return errBadDate
	}
	_, err := s.c.UpdateOne(ctx,
		bson.M{"member_id": memberID, "date": date},
		bson.M{
			"$set": bson.M{
				"notes":      notes,
				"updated_at": time.Now().UTC(),
			},
			"$setOnInsert": bson.M{
				"_id":           primitive.NewObjectID(),
				"present":       false,
				"prep_attended": false,
			},
		},
		options.Update().SetUpsert(true),
	)
	return err
}

// ForDate loads all attendance records for one meeting date, keyed by
// member ID. Members without a record that day are simply absent.
func (s *Store) ForDate(ctx context.Context, date string) (map[primitive.ObjectID]models.Attendance, error) {
	cur, err := s.c.Find(ctx, bson.M{"date": date})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	byMember := map[primitive.ObjectID]models.Attendance{}
	for cur.Next(ctx) {
		var a models.Attendance
		if err := cur.Decode(&a); err != nil {
			return nil, err
		}
		byMember[a.MemberID] = a
	}
	return byMember, cur.Err()
}

// DeleteByMember removes all attendance records for a member. Called
// when the member is deleted from the roster. Returns the number of
// documents removed.
func (s *Store) DeleteByMember(ctx context.Context, memberID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"member_id": memberID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DateSummary aggregates one meeting date for reports.
type DateSummary struct {
	Date         string `bson:"_id"`
	PresentCount int64  `bson:"present_count"`
	PrepCount    int64  `bson:"prep_count"`
}

// Summaries aggregates presence and prep counts per meeting date,
// newest first, up to limit dates. limit <= 0 means all dates.
func (s *Store) Summaries(ctx context.Context, limit int64) ([]DateSummary, error) {
	pipe := mongo.Pipeline{
		bson.D{{Key: "$group", Value: bson.M{
			"_id":           "$date",
			"present_count": bson.M{"$sum": bson.M{"$cond": []interface{}{"$present", 1, 0}}},
			"prep_count":    bson.M{"$sum": bson.M{"$cond": []interface{}{"$prep_attended", 1, 0}}},
		}}},
		bson.D{{Key: "$sort", Value: bson.M{"_id": -1}}},
	}
	if limit > 0 {
		pipe = append(pipe, bson.D{{Key: "$limit", Value: limit}})
	}
	cur, err := s.c.Aggregate(ctx, pipe)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []DateSummary
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}
