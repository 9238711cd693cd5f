// internal/app/features/members/create.go
package members

import (
	"context"
	"net/http"
	"strings"

	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"

	uierrors "github.com/khebert/koinonia/internal/app/features/errors"
	"github.com/khebert/koinonia/internal/app/system/formutil"
	"github.com/khebert/koinonia/internal/app/system/htmlsanitize"
	"github.com/khebert/koinonia/internal/app/system/timeouts"
	"github.com/khebert/koinonia/internal/domain/models"
)

// ServeNew renders the "Add member" form.
func (h *Handler) ServeNew(w http.ResponseWriter, r *http.Request) {
	data := newData{
		Form:      memberForm{Role: models.RoleRegular, EducationStatus: models.EducationUndergraduate},
		Roles:     roleOptions,
		Education: educationOptions,
	}
	formutil.SetBase(&data.Base, r, "Add member", "/members")
	templates.Render(w, r, "member_new", data)
}

func formToMemberForm(r *http.Request) memberForm {
	return memberForm{
		Surname:         strings.TrimSpace(r.FormValue("surname")),
		GivenName:       strings.TrimSpace(r.FormValue("given_name")),
		Gender:          strings.TrimSpace(r.FormValue("gender")),
		FaithStatus:     strings.TrimSpace(r.FormValue("faith_status")),
		Role:            strings.TrimSpace(r.FormValue("role")),
		EducationStatus: strings.TrimSpace(r.FormValue("education_status")),
		Notes:           htmlsanitize.Sanitize(r.FormValue("notes")),
	}
}

// HandleCreate processes the Add member form POST.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		uierrors.RenderServerError(w, r, h.Log, err)
		return
	}

	form := formToMemberForm(r)

	reRender := func(msg string) {
		data := newData{Form: form, Roles: roleOptions, Education: educationOptions}
		formutil.SetBase(&data.Base, r, "Add member", "/members")
		data.SetError(msg)
		templates.Render(w, r, "member_new", data)
	}

	if form.Surname == "" || form.GivenName == "" {
		reRender("Surname and given name are required.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	created, err := h.Members.Create(ctx, models.Member{
		Surname:         form.Surname,
		GivenName:       form.GivenName,
		Gender:          form.Gender,
		FaithStatus:     form.FaithStatus,
		Role:            form.Role,
		EducationStatus: form.EducationStatus,
		Notes:           form.Notes,
		Active:          true,
	})
	if err != nil {
		h.Log.Warn("create member failed", zap.Error(err))
		reRender("Could not add the member: " + err.Error())
		return
	}

	h.flash(w, r, created.FullName()+" added to the roster.")
	http.Redirect(w, r, "/members", http.StatusSeeOther)
}
