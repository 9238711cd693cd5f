// internal/app/system/indexes/indexes_test.go
package indexes_test

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/khebert/koinonia/internal/app/system/indexes"
	"github.com/khebert/koinonia/internal/testutil"
)

func TestEnsureAllIsIdempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("first EnsureAll: %v", err)
	}
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("second EnsureAll: %v", err)
	}
}

func TestEnsureAllCreatesNamedIndexes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll: %v", err)
	}

	want := map[string][]string{
		"members": {
			"idx_members_fullnameci__id",
			"idx_members_active_fullnameci__id",
			"idx_members_role",
		},
		"attendance": {
			"uniq_attendance_member_date",
			"idx_attendance_date_member",
		},
	}

	for coll, names := range want {
		cur, err := db.Collection(coll).Indexes().List(ctx)
		if err != nil {
			t.Fatalf("list %s indexes: %v", coll, err)
		}
		found := map[string]bool{}
		for cur.Next(ctx) {
			var idx struct {
				Name string `bson:"name"`
			}
			if err := cur.Decode(&idx); err != nil {
				t.Fatalf("decode index: %v", err)
			}
			found[idx.Name] = true
		}
		cur.Close(ctx)
		for _, n := range names {
			if !found[n] {
				t.Errorf("%s: index %q missing", coll, n)
			}
		}
	}
}

func TestAttendanceUniqueIndexRejectsDuplicates(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll: %v", err)
	}

	memberID := primitive.NewObjectID()
	doc := bson.M{
		"_id":           primitive.NewObjectID(),
		"member_id":     memberID,
		"date":          "2026-03-01",
		"present":       true,
		"prep_attended": false,
		"updated_at":    time.Now().UTC(),
	}
	if _, err := db.Collection("attendance").InsertOne(ctx, doc); err != nil {
		t.Fatalf("first insert: %v", err)
	}

	doc["_id"] = primitive.NewObjectID()
	if _, err := db.Collection("attendance").InsertOne(ctx, doc); err == nil {
		t.Fatal("duplicate (member_id, date) insert should fail")
	}
}
