package employeeshandler

import (
	"errors"
	"net/url"
	"strconv"

	"staffdesk/internal/domain/auth"
	"staffdesk/internal/domain/employees"
	"staffdesk/internal/transport/http/shared"
)

func validateIdentityFields(v *shared.Validator, firstName, lastName, username, email string) {
	if v.Required("first_name", firstName, "is required") {
		v.MaxLength("first_name", firstName, 150)
	}
	if v.Required("last_name", lastName, "is required") {
		v.MaxLength("last_name", lastName, 150)
	}
	v.Username("username", username)
	v.Email("email", email)
}

func validatePassword(v *shared.Validator, password, confirmation, username string) {
	for _, problem := range auth.PasswordProblems(password, username) {
		v.Add("password1", "Password "+problem+".")
	}
	if password != confirmation {
		v.Add("password2", msgPasswordMismatch)
	}
}

// addTakenIssues turns uniqueness failures into field errors and reports
// whether err was only that.
func addTakenIssues(v *shared.Validator, err error) bool {
	if err == nil {
		return false
	}
	taken := false
	if errors.Is(err, employees.ErrUsernameTaken) {
		v.Add("username", msgUsernameTaken)
		taken = true
	}
	if errors.Is(err, employees.ErrEmailTaken) {
		v.Add("email", msgEmailTaken)
		taken = true
	}
	return taken
}

func personalForm(p employees.PersonalDetails) url.Values {
	return url.Values{
		"first_name": {p.FirstName},
		"last_name":  {p.LastName},
		"username":   {p.Username},
		"email":      {p.Email},
	}
}

func employeeForm(rec employees.Record) url.Values {
	form := url.Values{
		"role":       {string(rec.Job.Role)},
		"department": {string(rec.Job.Department)},
	}
	if perf := rec.Performance; perf != nil {
		if perf.ReviewDate != nil {
			form.Set("review_date", perf.ReviewDate.Format("2006-01-02"))
		}
		if perf.Rating != nil {
			form.Set("rating", strconv.Itoa(*perf.Rating))
		}
		form.Set("comments", perf.Comments)
	}
	return form
}
