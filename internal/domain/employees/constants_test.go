package employees

import (
	"reflect"
	"testing"
)

func TestRolePredicates(t *testing.T) {
	tests := []struct {
		role      Role
		protected bool
		manager   bool
	}{
		{RoleUnassigned, false, false},
		{RoleEmployee, false, false},
		{RoleManager, false, true},
		{RoleAdmin, true, true},
	}
	for _, tc := range tests {
		if tc.role.IsProtected() != tc.protected {
			t.Fatalf("%q: IsProtected = %v", tc.role, !tc.protected)
		}
		if tc.role.IsManager() != tc.manager {
			t.Fatalf("%q: IsManager = %v", tc.role, !tc.manager)
		}
	}
}

func TestParseRoleAndDepartment(t *testing.T) {
	if role, ok := ParseRole(" mgr "); !ok || role != RoleManager {
		t.Fatalf("expected MGR, got %q %v", role, ok)
	}
	if _, ok := ParseRole("CEO"); ok {
		t.Fatal("expected CEO to be rejected")
	}
	if dep, ok := ParseDepartment(""); !ok || dep != DepartmentUnassigned {
		t.Fatalf("expected empty department to be accepted, got %q %v", dep, ok)
	}
	if _, ok := ParseDepartment("LEGAL"); ok {
		t.Fatal("expected LEGAL to be rejected")
	}
}

func TestDepartmentLabel(t *testing.T) {
	if got := DepartmentFinance.Label(); got != "Finance" {
		t.Fatalf("expected Finance, got %q", got)
	}
	if got := Department("XYZ").Label(); got != "XYZ" {
		t.Fatalf("expected code fallback, got %q", got)
	}
}

func TestDepartmentsMatching(t *testing.T) {
	tests := []struct {
		query string
		want  []string
	}{
		{query: "", want: []string{}},
		{query: "fin", want: []string{"FIN"}},
		{query: "TION", want: []string{"IT", "OPS"}},
		{query: "nothing", want: []string{}},
	}
	for _, tc := range tests {
		got := DepartmentsMatching(tc.query)
		if !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("%q: expected %v, got %v", tc.query, tc.want, got)
		}
	}
}
