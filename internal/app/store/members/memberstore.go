// internal/app/store/members/memberstore.go
package memberstore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/khebert/koinonia/internal/app/system/normalize"
	"github.com/khebert/koinonia/internal/app/system/paging"
	"github.com/khebert/koinonia/internal/domain/models"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("members")}
}

var (
	errBadRole      = errors.New(`role must be "facilitator"|"counselor"|"regular"`)
	errBadEducation = errors.New(`education status must be "undergraduate"|"graduate"|"graduated"`)
	errNoName       = errors.New("surname and given name are required")
)

func validRole(role string) bool {
	switch role {
	case models.RoleFacilitator, models.RoleCounselor, models.RoleRegular:
		return true
	}
	return false
}

func validEducation(status string) bool {
	switch status {
	case models.EducationUndergraduate, models.EducationGraduate, models.EducationGraduated:
		return true
	}
	return false
}

// GetByID loads a member by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Member, error) {
	var m models.Member
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&m); err != nil {
		return nil, err
	}
	return &m, nil
}

// Create inserts a new member after normalizing and validating fields.
// New members are active unless explicitly deactivated.
func (s *Store) Create(ctx context.Context, m models.Member) (models.Member, error) {
	m.ID = primitive.NewObjectID()
	m.Surname = normalize.Name(m.Surname)
	m.GivenName = normalize.Name(m.GivenName)
	m.Role = normalize.Label(m.Role)
	m.Gender = normalize.Label(m.Gender)
	m.FaithStatus = normalize.Label(m.FaithStatus)
	m.EducationStatus = normalize.Label(m.EducationStatus)

	if m.Surname == "" || m.GivenName == "" {
		return models.Member{}, errNoName
	}
	if m.Role == "" {
		m.Role = models.RoleRegular
	}
	if !validRole(m.Role) {
		return models.Member{}, errBadRole
	}
	if m.EducationStatus == "" {
		m.EducationStatus = models.EducationUndergraduate
	}
	if !validEducation(m.EducationStatus) {
		return models.Member{}, errBadEducation
	}

	m.FullNameCI = text.Fold(m.FullName())

	now := time.Now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, m); err != nil {
		return models.Member{}, err
	}
	return m, nil
}

// Update holds the fields that can be edited on a member.
type Update struct {
	Surname         string
	GivenName       string
	Role            string
	Gender          string
	FaithStatus     string
	EducationStatus string
	Notes           string
}

// UpdateInfo rewrites a member's editable fields.
func (s *Store) UpdateInfo(ctx context.Context, id primitive.ObjectID, upd Update) error {
	surname := normalize.Name(upd.Surname)
	given := normalize.Name(upd.GivenName)
	if surname == "" || given == "" {
		return errNoName
	}
	role := normalize.Label(upd.Role)
	if !validRole(role) {
		return errBadRole
	}
	education := normalize.Label(upd.EducationStatus)
	if !validEducation(education) {
		return errBadEducation
	}

	full := models.Member{Surname: surname, GivenName: given}.FullName()
	set := bson.M{
		"surname":          surname,
		"given_name":       given,
		"full_name_ci":     text.Fold(full),
		"role":             role,
		"gender":           normalize.Label(upd.Gender),
		"faith_status":     normalize.Label(upd.FaithStatus),
		"education_status": education,
		"notes":            upd.Notes,
		"updated_at":       time.Now().UTC(),
	}

	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": set})
	return err
}

// SetActive flips a member's active flag. Inactive members stay on the
// roster but are excluded from attendance and grouping.
func (s *Store) SetActive(ctx context.Context, id primitive.ObjectID, active bool) error {
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"active":     active,
		"updated_at": time.Now().UTC(),
	}})
	return err
}

// Delete removes a member by ID. Returns the number of documents
// deleted (0 or 1). Attendance records are cleaned up separately.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// ListFilter selects members for List and Count.
type ListFilter struct {
	SearchQuery string // prefix search on full_name_ci
	ActiveOnly  bool
}

func (f ListFilter) clauses() []bson.M {
	var clauses []bson.M
	if f.ActiveOnly {
		clauses = append(clauses, bson.M{"active": true})
	}
	if f.SearchQuery != "" {
		q := text.Fold(f.SearchQuery)
		hi := q + "￿"
		clauses = append(clauses, bson.M{"full_name_ci": bson.M{"$gte": q, "$lt": hi}})
	}
	return clauses
}

func andify(clauses []bson.M) bson.M {
	switch len(clauses) {
	case 0:
		return bson.M{}
	case 1:
		return clauses[0]
	default:
		return bson.M{"$and": clauses}
	}
}

// List fetches one page of members using keyset pagination sorted by
// folded full name. Fetches PageSize+1 rows; the caller trims with
// paging.TrimPage.
func (s *Store) List(ctx context.Context, filter ListFilter, cfg paging.KeysetConfig) ([]models.Member, error) {
	clauses := filter.clauses()
	if ks := cfg.KeysetWindow("full_name_ci"); ks != nil {
		clauses = append(clauses, ks)
	}

	findOpts := options.Find()
	cfg.ApplyToFind(findOpts, "full_name_ci")

	cur, err := s.c.Find(ctx, andify(clauses), findOpts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []models.Member
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns the number of members matching the filter.
func (s *Store) Count(ctx context.Context, filter ListFilter) (int64, error) {
	return s.c.CountDocuments(ctx, andify(filter.clauses()))
}

// ListActive loads every active member sorted by folded full name.
// Used by attendance recording and group generation, where the whole
// roster is needed at once.
func (s *Store) ListActive(ctx context.Context) ([]models.Member, error) {
	findOpts := options.Find().SetSort(bson.D{
		{Key: "full_name_ci", Value: 1},
		{Key: "_id", Value: 1},
	})
	cur, err := s.c.Find(ctx, bson.M{"active": true}, findOpts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []models.Member
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// ListAll loads the whole roster, active and inactive, sorted by
// folded full name. Used by the roster export.
func (s *Store) ListAll(ctx context.Context) ([]models.Member, error) {
	findOpts := options.Find().SetSort(bson.D{
		{Key: "full_name_ci", Value: 1},
		{Key: "_id", Value: 1},
	})
	cur, err := s.c.Find(ctx, bson.M{}, findOpts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []models.Member
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// CountByRole returns per-role member counts for the dashboard.
func (s *Store) CountByRole(ctx context.Context) (map[string]int64, error) {
	pipe := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"active": true}}},
		bson.D{{Key: "$group", Value: bson.M{"_id": "$role", "count": bson.M{"$sum": 1}}}},
	}
	cur, err := s.c.Aggregate(ctx, pipe)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	counts := map[string]int64{}
	for cur.Next(ctx) {
		var row struct {
			Role  string `bson:"_id"`
			Count int64  `bson:"count"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		counts[row.Role] = row.Count
	}
	return counts, cur.Err()
}

// InsertMany bulk-inserts members from a CSV import. Each member is
// normalized the same way Create normalizes a single one.
func (s *Store) InsertMany(ctx context.Context, members []models.Member) (int, error) {
	if len(members) == 0 {
		return 0, nil
	}

	now := time.Now().UTC()
	docs := make([]interface{}, 0, len(members))
	for _, m := range members {
		m.ID = primitive.NewObjectID()
		m.Surname = normalize.Name(m.Surname)
		m.GivenName = normalize.Name(m.GivenName)
		m.Role = normalize.Label(m.Role)
		if m.Role == "" {
			m.Role = models.RoleRegular
		}
		m.Gender = normalize.Label(m.Gender)
		m.FaithStatus = normalize.Label(m.FaithStatus)
		m.EducationStatus = normalize.Label(m.EducationStatus)
		if m.EducationStatus == "" {
			m.EducationStatus = models.EducationUndergraduate
		}
		m.FullNameCI = text.Fold(m.FullName())
		m.Active = true
		m.CreatedAt = now
		m.UpdatedAt = now
		docs = append(docs, m)
	}

	res, err := s.c.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	inserted := 0
	if res != nil {
		inserted = len(res.InsertedIDs)
	}
	if err != nil && !wafflemongo.IsDup(err) {
		return inserted, err
	}
	return inserted, nil
}
