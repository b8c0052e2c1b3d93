package shared

import (
	"net/mail"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

var usernamePattern = regexp.MustCompile(`^[\p{L}\p{N}@.+\-_]+$`)

type ValidationIssue struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

type Validator struct {
	issues []ValidationIssue
}

func NewValidator() *Validator {
	return &Validator{issues: make([]ValidationIssue, 0, 4)}
}

func (v *Validator) Add(field, reason string) {
	if v == nil {
		return
	}
	field = strings.TrimSpace(field)
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return
	}
	v.issues = append(v.issues, ValidationIssue{
		Field:  field,
		Reason: reason,
	})
}

func (v *Validator) Required(field, value, reason string) bool {
	if strings.TrimSpace(value) == "" {
		v.Add(field, reason)
		return false
	}
	return true
}

func (v *Validator) MaxLength(field, value string, limit int) {
	if utf8.RuneCountInString(value) > limit {
		v.Add(field, "must be at most "+strconv.Itoa(limit)+" characters")
	}
}

// Username accepts 3 to 150 letters, digits and @.+-_ characters.
func (v *Validator) Username(field, value string) {
	if !v.Required(field, value, "is required") {
		return
	}
	length := utf8.RuneCountInString(value)
	if length < 3 || length > 150 {
		v.Add(field, "must be between 3 and 150 characters")
		return
	}
	if !usernamePattern.MatchString(value) {
		v.Add(field, "may contain only letters, digits and @/./+/-/_")
	}
}

func (v *Validator) Email(field, value string) {
	if !v.Required(field, value, "is required") {
		return
	}
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value {
		v.Add(field, "must be a valid email address")
	}
}

// OptionalDate returns nil for a blank value.
func (v *Validator) OptionalDate(field, raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parsed, err := ParseDate(raw)
	if err != nil || parsed.IsZero() {
		v.Add(field, "must be a valid date in YYYY-MM-DD format")
		return nil
	}
	return &parsed
}

// OptionalIntRange returns nil for a blank value.
func (v *Validator) OptionalIntRange(field, raw string, lo, hi int) *int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed < lo || parsed > hi {
		v.Add(field, "must be a whole number from "+strconv.Itoa(lo)+" to "+strconv.Itoa(hi))
		return nil
	}
	return &parsed
}

func (v *Validator) HasIssues() bool {
	return v != nil && len(v.issues) > 0
}

func (v *Validator) Issues() []ValidationIssue {
	if v == nil || len(v.issues) == 0 {
		return nil
	}
	out := make([]ValidationIssue, len(v.issues))
	copy(out, v.issues)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Field < out[j].Field
	})
	return out
}

// Fields groups issues by form field for template rendering.
func (v *Validator) Fields() map[string][]string {
	out := map[string][]string{}
	for _, issue := range v.Issues() {
		out[issue.Field] = append(out[issue.Field], issue.Reason)
	}
	return out
}
