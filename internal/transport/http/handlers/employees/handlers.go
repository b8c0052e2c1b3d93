package employeeshandler

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"staffdesk/internal/domain/audit"
	"staffdesk/internal/domain/auth"
	"staffdesk/internal/domain/employees"
	"staffdesk/internal/platform/requestctx"
	"staffdesk/internal/transport/http/middleware"
	"staffdesk/internal/transport/http/shared"
	"staffdesk/internal/transport/http/web"
)

const (
	msgRegistered        = "Registration successful!"
	msgSubmissionError   = "There was an error with your submission."
	msgProfileSaved      = "Update was successful."
	msgCannotUpdateAdmin = "You cannot update an Admin employee."
	msgEmployeeSaved     = "Profile updated successfully!"
	msgCannotDeleteAdmin = "You cannot delete an Admin employee."
	msgCannotViewAdmin   = "You cannot view the history of an Admin employee."
	msgRoleNotGrantable  = "Only an administrator can grant the Administrator role."
	msgEmployeeDeleted   = "Employee deleted successfully."
	msgUsernameTaken     = "A user with that username already exists."
	msgEmailTaken        = "A user with that email already exists."
	msgPasswordMismatch  = "The two password fields didn't match."
	msgNotFound          = "That employee does not exist."
	msgInternal          = "Something went wrong. Please try again."
	employeeListPath     = "/employees"
	historyLimit         = 50
)

type Service interface {
	Register(ctx context.Context, reg employees.Registration) (employees.Record, error)
	Dashboard(ctx context.Context, identity auth.Identity) (employees.Dashboard, error)
	Profile(ctx context.Context, identity auth.Identity) (employees.Profile, error)
	PersonalDetails(ctx context.Context, identity auth.Identity) (employees.PersonalDetails, error)
	UpdateProfile(ctx context.Context, identity auth.Identity, upd employees.ProfileUpdate) (employees.PersonalDetails, error)
	ListEmployees(ctx context.Context, identity auth.Identity, search string, limit, offset int) (employees.List, error)
	ExportEmployees(ctx context.Context, identity auth.Identity, search string) ([]employees.Row, error)
	Target(ctx context.Context, identity auth.Identity, jobID string) (employees.Record, error)
	UpdateEmployee(ctx context.Context, identity auth.Identity, jobID string, upd employees.EmployeeUpdate) (employees.Record, error)
	DeleteEmployee(ctx context.Context, identity auth.Identity, jobID string) (employees.Record, error)
}

// Reauthenticator swaps the caller's session after a password change.
type Reauthenticator interface {
	Reauthenticate(ctx context.Context, identity auth.Identity, username, password string) (string, error)
}

type Handler struct {
	Employees Service
	Auth      Reauthenticator
	Audit     audit.Trail
	Sessions  *web.Sessions
	Views     *web.Renderer
	Now       func() time.Time
}

func NewHandler(svc Service, reauth Reauthenticator, trail audit.Trail, sessions *web.Sessions, views *web.Renderer) *Handler {
	return &Handler{
		Employees: svc,
		Auth:      reauth,
		Audit:     trail,
		Sessions:  sessions,
		Views:     views,
		Now:       time.Now,
	}
}

type Middleware = func(http.Handler) http.Handler

// RegisterRoutes mounts the public, logged-in and manager-only pages. formLimit
// wraps the registration POST.
func (h *Handler) RegisterRoutes(r chi.Router, requireLogin, requireManager, formLimit Middleware) {
	r.Get("/", h.HandleIndex)
	r.Get("/register", h.HandleRegisterForm)
	r.With(formLimit).Post("/register", h.HandleRegister)

	r.Group(func(r chi.Router) {
		r.Use(requireLogin)
		r.Get("/home", h.HandleHome)
		r.Get("/profile/{id}", h.HandleProfile)
		r.Get("/profile/{id}/edit", h.HandleEditProfileForm)
		r.Post("/profile/{id}/edit", h.HandleEditProfile)

		r.Group(func(r chi.Router) {
			r.Use(requireManager)
			r.Get("/employees", h.HandleList)
			r.Get("/employees/export.pdf", h.HandleExport)
			r.Get("/employees/{empID}/edit", h.HandleEditEmployeeForm)
			r.Post("/employees/{empID}/edit", h.HandleEditEmployee)
			r.Get("/employees/{empID}/history", h.HandleHistory)
			r.Get("/employees/{empID}/delete", h.HandleDeleteEmployeeForm)
			r.Post("/employees/{empID}/delete", h.HandleDeleteEmployee)
		})
	})
}

func (h *Handler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	h.Views.Render(w, r, http.StatusOK, "index", web.Page{})
}

func (h *Handler) HandleRegisterForm(w http.ResponseWriter, r *http.Request) {
	h.Views.Render(w, r, http.StatusOK, "register", web.Page{Title: "Register"})
}

func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.Views.RenderError(w, r, http.StatusBadRequest, "The form could not be read.")
		return
	}
	reg := employees.Registration{
		FirstName: strings.TrimSpace(r.PostForm.Get("first_name")),
		LastName:  strings.TrimSpace(r.PostForm.Get("last_name")),
		Username:  strings.TrimSpace(r.PostForm.Get("username")),
		Email:     strings.TrimSpace(r.PostForm.Get("email")),
		Password:  r.PostForm.Get("password1"),
	}
	form := url.Values{
		"first_name": {reg.FirstName},
		"last_name":  {reg.LastName},
		"username":   {reg.Username},
		"email":      {reg.Email},
	}

	v := shared.NewValidator()
	validateIdentityFields(v, reg.FirstName, reg.LastName, reg.Username, reg.Email)
	if v.Required("password1", reg.Password, "is required") {
		validatePassword(v, reg.Password, r.PostForm.Get("password2"), reg.Username)
	}
	if v.HasIssues() {
		h.rejectForm(w, r, "register", "Register", form, v)
		return
	}

	rec, err := h.Employees.Register(r.Context(), reg)
	if addTakenIssues(v, err) {
		h.rejectForm(w, r, "register", "Register", form, v)
		return
	}
	if err != nil {
		h.fail(w, r, "register employee", err)
		return
	}

	h.record(r, auditEntry(employees.AuditActionRegister, rec.Job.ID, nil, rec.Personal))
	h.Sessions.AddFlash(w, r, web.FlashSuccess, msgRegistered)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) HandleHome(w http.ResponseWriter, r *http.Request) {
	identity := mustIdentity(r)
	dash, err := h.Employees.Dashboard(r.Context(), identity)
	if err != nil {
		h.fail(w, r, "load dashboard", err)
		return
	}
	h.Views.Render(w, r, http.StatusOK, "home", web.Page{Title: "Home", Data: dash})
}

// HandleProfile ignores the id in the path and always shows the caller.
func (h *Handler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	identity := mustIdentity(r)
	profile, err := h.Employees.Profile(r.Context(), identity)
	if err != nil {
		h.fail(w, r, "load profile", err)
		return
	}
	h.Views.Render(w, r, http.StatusOK, "profile", web.Page{Title: "Profile", Data: profile})
}

func (h *Handler) HandleEditProfileForm(w http.ResponseWriter, r *http.Request) {
	h.Sessions.ClearFlashes(w, r)
	identity := mustIdentity(r)
	personal, err := h.Employees.PersonalDetails(r.Context(), identity)
	if err != nil {
		h.fail(w, r, "load personal details", err)
		return
	}
	h.Views.Render(w, r, http.StatusOK, "edit-profile", web.Page{
		Title: "Edit profile",
		Form:  personalForm(personal),
	})
}

func (h *Handler) HandleEditProfile(w http.ResponseWriter, r *http.Request) {
	h.Sessions.ClearFlashes(w, r)
	identity := mustIdentity(r)
	if err := r.ParseForm(); err != nil {
		h.Views.RenderError(w, r, http.StatusBadRequest, "The form could not be read.")
		return
	}
	upd := employees.ProfileUpdate{
		FirstName:   strings.TrimSpace(r.PostForm.Get("first_name")),
		LastName:    strings.TrimSpace(r.PostForm.Get("last_name")),
		Username:    strings.TrimSpace(r.PostForm.Get("username")),
		Email:       strings.TrimSpace(r.PostForm.Get("email")),
		NewPassword: r.PostForm.Get("password1"),
	}
	form := url.Values{
		"first_name": {upd.FirstName},
		"last_name":  {upd.LastName},
		"username":   {upd.Username},
		"email":      {upd.Email},
	}

	v := shared.NewValidator()
	validateIdentityFields(v, upd.FirstName, upd.LastName, upd.Username, upd.Email)
	if upd.NewPassword != "" || r.PostForm.Get("password2") != "" {
		validatePassword(v, upd.NewPassword, r.PostForm.Get("password2"), upd.Username)
	}
	if v.HasIssues() {
		h.rejectForm(w, r, "edit-profile", "Edit profile", form, v)
		return
	}

	before, err := h.Employees.UpdateProfile(r.Context(), identity, upd)
	if addTakenIssues(v, err) {
		h.rejectForm(w, r, "edit-profile", "Edit profile", form, v)
		return
	}
	if err != nil {
		h.fail(w, r, "update profile", err)
		return
	}
	h.record(r, auditEntry(employees.AuditActionProfileUpdate, before.JobDetailsID, before, profileAuditView(upd)))

	identity.Username = upd.Username
	if upd.NewPassword != "" {
		token, err := h.Auth.Reauthenticate(r.Context(), identity, upd.Username, upd.NewPassword)
		if err != nil {
			slog.Warn("re-authentication after password change failed", "err", err, "accountId", identity.AccountID)
		} else if err := h.Sessions.SetToken(w, r, token); err != nil {
			slog.Warn("store refreshed session failed", "err", err, "accountId", identity.AccountID)
		}
	}
	r = r.WithContext(requestctx.WithIdentity(r.Context(), identity))

	h.Sessions.AddFlash(w, r, web.FlashSuccess, msgProfileSaved)
	h.Views.Render(w, r, http.StatusOK, "edit-profile", web.Page{Title: "Edit profile", Form: form})
}

type listPage struct {
	List    employees.List
	Search  string
	Page    shared.Pagination
	HasPrev bool
	HasNext bool
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	identity := mustIdentity(r)
	search := strings.TrimSpace(r.URL.Query().Get("search"))
	page := shared.ParsePagination(r, employees.DefaultPageSize, employees.MaxPageSize)

	list, err := h.Employees.ListEmployees(r.Context(), identity, search, page.Limit, page.Offset)
	if err != nil {
		h.fail(w, r, "list employees", err)
		return
	}
	h.Views.Render(w, r, http.StatusOK, "list", web.Page{
		Title: "Employees",
		Data: listPage{
			List:    list,
			Search:  search,
			Page:    page,
			HasPrev: page.Offset > 0,
			HasNext: page.Next() < list.Total,
		},
	})
}

func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	identity := mustIdentity(r)
	search := strings.TrimSpace(r.URL.Query().Get("search"))
	rows, err := h.Employees.ExportEmployees(r.Context(), identity, search)
	if err != nil {
		h.fail(w, r, "export employees", err)
		return
	}

	var buf bytes.Buffer
	if err := employees.WriteDirectoryPDF(&buf, rows, h.Now()); err != nil {
		h.fail(w, r, "render employee pdf", err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="employees.pdf"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (h *Handler) HandleEditEmployeeForm(w http.ResponseWriter, r *http.Request) {
	h.Sessions.ClearFlashes(w, r)
	rec, ok := h.loadTarget(w, r, msgCannotUpdateAdmin)
	if !ok {
		return
	}
	h.Views.Render(w, r, http.StatusOK, "edit-employee", web.Page{
		Title: "Edit employee",
		Form:  employeeForm(rec),
		Data:  rec,
	})
}

func (h *Handler) HandleEditEmployee(w http.ResponseWriter, r *http.Request) {
	h.Sessions.ClearFlashes(w, r)
	rec, ok := h.loadTarget(w, r, msgCannotUpdateAdmin)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		h.Views.RenderError(w, r, http.StatusBadRequest, "The form could not be read.")
		return
	}

	form := url.Values{}
	for _, field := range []string{"role", "department", "review_date", "rating", "comments"} {
		form.Set(field, r.PostForm.Get(field))
	}

	v := shared.NewValidator()
	role, roleOK := employees.ParseRole(form.Get("role"))
	if !roleOK {
		v.Add("role", "Select a valid choice.")
	}
	department, depOK := employees.ParseDepartment(form.Get("department"))
	if !depOK {
		v.Add("department", "Select a valid choice.")
	}
	upd := employees.EmployeeUpdate{
		Role:       role,
		Department: department,
		ReviewDate: v.OptionalDate("review_date", form.Get("review_date")),
		Rating:     v.OptionalIntRange("rating", form.Get("rating"), employees.MinRating, employees.MaxRating),
		Comments:   strings.TrimSpace(form.Get("comments")),
	}
	v.MaxLength("comments", upd.Comments, employees.MaxCommentLength)
	if v.HasIssues() {
		h.Sessions.AddFlash(w, r, web.FlashError, msgSubmissionError)
		h.Views.Render(w, r, http.StatusOK, "edit-employee", web.Page{
			Title:  "Edit employee",
			Form:   form,
			Errors: v.Fields(),
			Data:   rec,
		})
		return
	}

	before, err := h.Employees.UpdateEmployee(r.Context(), mustIdentity(r), rec.Job.ID, upd)
	if h.refused(w, r, err, msgCannotUpdateAdmin) {
		return
	}
	if errors.Is(err, employees.ErrRoleNotGrantable) {
		v.Add("role", msgRoleNotGrantable)
		h.Sessions.AddFlash(w, r, web.FlashError, msgSubmissionError)
		h.Views.Render(w, r, http.StatusOK, "edit-employee", web.Page{
			Title:  "Edit employee",
			Form:   form,
			Errors: v.Fields(),
			Data:   rec,
		})
		return
	}
	if err != nil {
		h.fail(w, r, "update employee", err)
		return
	}

	h.record(r, auditEntry(employees.AuditActionUpdate, rec.Job.ID, employeeAuditView(before), upd))
	h.Sessions.AddFlash(w, r, web.FlashSuccess, msgEmployeeSaved)
	http.Redirect(w, r, employeeListPath, http.StatusSeeOther)
}

type historyView struct {
	Record employees.Record
	Events []audit.Event
}

// HandleHistory lists the recorded changes to one employee, newest first.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	h.Sessions.ClearFlashes(w, r)
	rec, ok := h.loadTarget(w, r, msgCannotViewAdmin)
	if !ok {
		return
	}
	var events []audit.Event
	if h.Audit != nil {
		var err error
		events, err = h.Audit.List(r.Context(), audit.Filter{EntityType: employees.AuditEntityEmployee, EntityID: rec.Job.ID}, historyLimit, 0)
		if err != nil {
			h.fail(w, r, "list audit events", err)
			return
		}
	}
	h.Views.Render(w, r, http.StatusOK, "history", web.Page{
		Title: "Employee history",
		Data:  historyView{Record: rec, Events: events},
	})
}

func (h *Handler) HandleDeleteEmployeeForm(w http.ResponseWriter, r *http.Request) {
	h.Sessions.ClearFlashes(w, r)
	rec, ok := h.loadTarget(w, r, msgCannotDeleteAdmin)
	if !ok {
		return
	}
	h.Views.Render(w, r, http.StatusOK, "confirm-delete", web.Page{Title: "Delete employee", Data: rec})
}

func (h *Handler) HandleDeleteEmployee(w http.ResponseWriter, r *http.Request) {
	h.Sessions.ClearFlashes(w, r)
	rec, ok := h.loadTarget(w, r, msgCannotDeleteAdmin)
	if !ok {
		return
	}

	removed, err := h.Employees.DeleteEmployee(r.Context(), mustIdentity(r), rec.Job.ID)
	if h.refused(w, r, err, msgCannotDeleteAdmin) {
		return
	}
	if errors.Is(err, employees.ErrNotFound) {
		h.Views.RenderError(w, r, http.StatusNotFound, msgNotFound)
		return
	}
	if err != nil {
		h.fail(w, r, "delete employee", err)
		return
	}

	h.record(r, auditEntry(employees.AuditActionDelete, rec.Job.ID, employeeAuditView(removed), nil))
	h.Sessions.AddFlash(w, r, web.FlashSuccess, msgEmployeeDeleted)
	http.Redirect(w, r, employeeListPath, http.StatusSeeOther)
}

// loadTarget resolves {empID}. It writes the 404, the refusal redirect or the
// error page itself and reports false in those cases.
func (h *Handler) loadTarget(w http.ResponseWriter, r *http.Request, refusal string) (employees.Record, bool) {
	rec, err := h.Employees.Target(r.Context(), mustIdentity(r), chi.URLParam(r, "empID"))
	if errors.Is(err, employees.ErrNotFound) {
		h.Views.RenderError(w, r, http.StatusNotFound, msgNotFound)
		return employees.Record{}, false
	}
	if h.refused(w, r, err, refusal) {
		return employees.Record{}, false
	}
	if err != nil {
		h.fail(w, r, "load employee", err)
		return employees.Record{}, false
	}
	return rec, true
}

func (h *Handler) refused(w http.ResponseWriter, r *http.Request, err error, message string) bool {
	if !errors.Is(err, employees.ErrProtectedEmployee) {
		return false
	}
	h.Sessions.AddFlash(w, r, web.FlashError, message)
	http.Redirect(w, r, employeeListPath, http.StatusSeeOther)
	return true
}

func (h *Handler) rejectForm(w http.ResponseWriter, r *http.Request, name, title string, form url.Values, v *shared.Validator) {
	h.Sessions.AddFlash(w, r, web.FlashError, msgSubmissionError)
	h.Views.Render(w, r, http.StatusOK, name, web.Page{
		Title:  title,
		Form:   form,
		Errors: v.Fields(),
	})
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	if errors.Is(err, employees.ErrNotFound) {
		h.Views.RenderError(w, r, http.StatusNotFound, msgNotFound)
		return
	}
	slog.Error(op+" failed", "err", err, "requestId", middleware.GetRequestID(r.Context()))
	h.Views.RenderError(w, r, http.StatusInternalServerError, msgInternal)
}

func (h *Handler) record(r *http.Request, entry audit.Entry) {
	if h.Audit == nil {
		return
	}
	if identity, ok := middleware.GetIdentity(r.Context()); ok {
		entry.ActorAccountID = identity.AccountID
	}
	entry.RequestID = middleware.GetRequestID(r.Context())
	entry.IP = shared.ClientIP(r)
	if err := h.Audit.Record(r.Context(), entry); err != nil {
		slog.Warn("audit "+entry.Action+" failed", "err", err, "entityId", entry.EntityID)
	}
}

func auditEntry(action, entityID string, before, after any) audit.Entry {
	return audit.Entry{
		Action:     action,
		EntityType: employees.AuditEntityEmployee,
		EntityID:   entityID,
		Before:     before,
		After:      after,
	}
}

func profileAuditView(upd employees.ProfileUpdate) map[string]any {
	return map[string]any{
		"firstName":       upd.FirstName,
		"lastName":        upd.LastName,
		"username":        upd.Username,
		"email":           upd.Email,
		"passwordChanged": upd.NewPassword != "",
	}
}

func employeeAuditView(rec employees.Record) map[string]any {
	view := map[string]any{
		"username":   rec.Personal.Username,
		"role":       rec.Job.Role,
		"department": rec.Job.Department,
	}
	if rec.Performance != nil {
		view["performance"] = rec.Performance
	}
	return view
}

func mustIdentity(r *http.Request) auth.Identity {
	identity, _ := middleware.GetIdentity(r.Context())
	return identity
}
