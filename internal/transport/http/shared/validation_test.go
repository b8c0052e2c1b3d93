package shared

import (
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
)

func TestValidatorUsername(t *testing.T) {
	tests := []struct {
		value string
		ok    bool
	}{
		{value: "ada", ok: true},
		{value: "ada.lovelace+hr@corp_1-x", ok: true},
		{value: "ab", ok: false},
		{value: "", ok: false},
		{value: "with space", ok: false},
		{value: "semi;colon", ok: false},
		{value: strings.Repeat("a", 151), ok: false},
	}
	for _, tc := range tests {
		v := NewValidator()
		v.Username("username", tc.value)
		if v.HasIssues() == tc.ok {
			t.Fatalf("%q: expected ok=%v, issues %v", tc.value, tc.ok, v.Issues())
		}
	}
}

func TestValidatorEmail(t *testing.T) {
	tests := []struct {
		value string
		ok    bool
	}{
		{value: "ada@example.com", ok: true},
		{value: "not-an-email", ok: false},
		{value: "Ada <ada@example.com>", ok: false},
		{value: "", ok: false},
	}
	for _, tc := range tests {
		v := NewValidator()
		v.Email("email", tc.value)
		if v.HasIssues() == tc.ok {
			t.Fatalf("%q: expected ok=%v, issues %v", tc.value, tc.ok, v.Issues())
		}
	}
}

func TestValidatorOptionalFields(t *testing.T) {
	v := NewValidator()
	if got := v.OptionalDate("review_date", ""); got != nil {
		t.Fatalf("expected nil for blank date, got %v", got)
	}
	if got := v.OptionalDate("review_date", "2024-02-29"); got == nil || got.Day() != 29 {
		t.Fatalf("expected parsed date, got %v", got)
	}
	if got := v.OptionalIntRange("rating", " 5 ", 1, 5); got == nil || *got != 5 {
		t.Fatalf("expected rating 5, got %v", got)
	}
	if v.HasIssues() {
		t.Fatalf("unexpected issues %v", v.Issues())
	}

	v.OptionalDate("review_date", "29/02/2024")
	v.OptionalIntRange("rating", "6", 1, 5)
	v.OptionalIntRange("rating", "four", 1, 5)
	v.MaxLength("comments", strings.Repeat("x", 11), 10)

	fields := v.Fields()
	want := map[string]int{"review_date": 1, "rating": 2, "comments": 1}
	got := map[string]int{}
	for field, reasons := range fields {
		got[field] = len(reasons)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected issue counts %v, got %v", want, got)
	}
}

func TestParsePagination(t *testing.T) {
	req := httptest.NewRequest("GET", "/employees?limit=500&offset=-3", nil)
	page := ParsePagination(req, 25, 100)
	if page.Limit != 100 || page.Offset != 0 {
		t.Fatalf("unexpected pagination %+v", page)
	}

	req = httptest.NewRequest("GET", "/employees?limit=10&offset=20", nil)
	page = ParsePagination(req, 25, 100)
	if page.Limit != 10 || page.Offset != 20 {
		t.Fatalf("unexpected pagination %+v", page)
	}
	if page.Next() != 30 || page.Prev() != 10 {
		t.Fatalf("unexpected neighbours next=%d prev=%d", page.Next(), page.Prev())
	}
}
