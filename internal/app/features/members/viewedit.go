// internal/app/features/members/viewedit.go
package members

import (
	"context"
	"html/template"
	"net/http"

	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	uierrors "github.com/khebert/koinonia/internal/app/features/errors"
	memberstore "github.com/khebert/koinonia/internal/app/store/members"
	"github.com/khebert/koinonia/internal/app/system/formutil"
	"github.com/khebert/koinonia/internal/app/system/timeouts"
	"github.com/khebert/koinonia/internal/app/system/viewdata"
)

// memberID extracts and parses the {id} URL parameter.
func memberID(r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	return id, err == nil
}

// ServeView handles GET /members/{id}/view.
func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	id, ok := memberID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	m, err := h.Members.GetByID(ctx, id)
	if err == mongo.ErrNoDocuments {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		uierrors.RenderServerError(w, r, h.Log, err)
		return
	}

	data := viewData{
		BaseVM:          viewdata.NewBaseVM(r, m.FullName(), "/members"),
		ID:              m.ID.Hex(),
		FullName:        m.FullName(),
		Role:            m.Role,
		Gender:          m.Gender,
		FaithStatus:     m.FaithStatus,
		EducationStatus: m.EducationStatus,
		Active:          m.Active,
		Notes:           template.HTML(m.Notes),
	}
	templates.Render(w, r, "member_view", data)
}

// ServeEdit handles GET /members/{id}/edit.
func (h *Handler) ServeEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := memberID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	m, err := h.Members.GetByID(ctx, id)
	if err == mongo.ErrNoDocuments {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		uierrors.RenderServerError(w, r, h.Log, err)
		return
	}

	data := editData{
		ID:     m.ID.Hex(),
		Active: m.Active,
		Form: memberForm{
			Surname:         m.Surname,
			GivenName:       m.GivenName,
			Gender:          m.Gender,
			FaithStatus:     m.FaithStatus,
			Role:            m.Role,
			EducationStatus: m.EducationStatus,
			Notes:           m.Notes,
		},
		Roles:     roleOptions,
		Education: educationOptions,
	}
	formutil.SetBase(&data.Base, r, "Edit "+m.FullName(), "/members")
	templates.Render(w, r, "member_edit", data)
}

// HandleEdit processes POST /members/{id}/edit.
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := memberID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		uierrors.RenderServerError(w, r, h.Log, err)
		return
	}

	form := formToMemberForm(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	err := h.Members.UpdateInfo(ctx, id, memberstore.Update{
		Surname:         form.Surname,
		GivenName:       form.GivenName,
		Gender:          form.Gender,
		FaithStatus:     form.FaithStatus,
		Role:            form.Role,
		EducationStatus: form.EducationStatus,
		Notes:           form.Notes,
	})
	if err != nil {
		h.Log.Warn("edit member failed", zap.Error(err))
		data := editData{ID: id.Hex(), Form: form, Roles: roleOptions, Education: educationOptions}
		formutil.SetBase(&data.Base, r, "Edit member", "/members")
		data.SetError("Could not save the member: " + err.Error())
		templates.Render(w, r, "member_edit", data)
		return
	}

	h.flash(w, r, "Member updated.")
	http.Redirect(w, r, "/members", http.StatusSeeOther)
}

// HandleToggleActive processes POST /members/{id}/toggle_active.
// Inactive members stay on the roster but drop out of attendance and
// grouping.
func (h *Handler) HandleToggleActive(w http.ResponseWriter, r *http.Request) {
	id, ok := memberID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	m, err := h.Members.GetByID(ctx, id)
	if err == mongo.ErrNoDocuments {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		uierrors.RenderServerError(w, r, h.Log, err)
		return
	}

	if err := h.Members.SetActive(ctx, id, !m.Active); err != nil {
		uierrors.RenderServerError(w, r, h.Log, err)
		return
	}

	if m.Active {
		h.flash(w, r, m.FullName()+" deactivated.")
	} else {
		h.flash(w, r, m.FullName()+" reactivated.")
	}
	http.Redirect(w, r, "/members", http.StatusSeeOther)
}

// HandleDelete processes POST /members/{id}/delete. The member's
// attendance history goes with them.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := memberID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	n, err := h.Members.Delete(ctx, id)
	if err != nil {
		uierrors.RenderServerError(w, r, h.Log, err)
		return
	}
	if n > 0 {
		if _, err := h.Attendance.DeleteByMember(ctx, id); err != nil {
			h.Log.Warn("delete member attendance failed",
				zap.String("member_id", id.Hex()),
				zap.Error(err))
		}
		h.flash(w, r, "Member removed.")
	}

	http.Redirect(w, r, "/members", http.StatusSeeOther)
}
