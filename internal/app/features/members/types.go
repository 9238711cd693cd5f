// internal/app/features/members/types.go
package members

import (
	"html/template"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/khebert/koinonia/internal/app/system/formutil"
	"github.com/khebert/koinonia/internal/app/system/viewdata"
	"github.com/khebert/koinonia/internal/domain/models"
)

// roleOptions and educationOptions feed the form selects.
var roleOptions = []string{models.RoleRegular, models.RoleFacilitator, models.RoleCounselor}

var educationOptions = []string{
	models.EducationUndergraduate,
	models.EducationGraduate,
	models.EducationGraduated,
}

// Table row for the roster list.
type memberRow struct {
	ID              primitive.ObjectID
	FullName        string
	Role            string
	Gender          string
	FaithStatus     string
	EducationStatus string
	Active          bool
}

// List page VM.
type listData struct {
	viewdata.BaseVM

	SearchQuery string
	ActiveOnly  bool

	Shown      int
	Total      int64
	HasPrev    bool
	HasNext    bool
	PrevCursor string
	NextCursor string
	RangeStart int
	RangeEnd   int
	PrevStart  int
	NextStart  int

	MemberRows []memberRow
}

// memberForm echoes form values back on validation errors; it doubles
// as the initial state for the edit form.
type memberForm struct {
	Surname         string
	GivenName       string
	Gender          string
	FaithStatus     string
	Role            string
	EducationStatus string
	Notes           string
}

type newData struct {
	formutil.Base
	Form      memberForm
	Roles     []string
	Education []string
}

type editData struct {
	formutil.Base
	ID        string
	Active    bool
	Form      memberForm
	Roles     []string
	Education []string
}

type viewData struct {
	viewdata.BaseVM

	ID              string
	FullName        string
	Role            string
	Gender          string
	FaithStatus     string
	EducationStatus string
	Active          bool
	Notes           template.HTML // sanitized at write time
}

type uploadData struct {
	formutil.Base
	Created int
	Done    bool
}
