package audit

import (
	"reflect"
	"testing"
)

func TestBuildQuery(t *testing.T) {
	query, args := buildQuery("SELECT COUNT(1)", Filter{EntityType: "employee", EntityID: "job-1"})
	want := "SELECT COUNT(1) FROM audit_events WHERE 1=1 AND entity_type = $1 AND entity_id = $2"
	if query != want {
		t.Fatalf("unexpected query:\n%s\nwant:\n%s", query, want)
	}
	if !reflect.DeepEqual(args, []any{"employee", "job-1"}) {
		t.Fatalf("unexpected args %v", args)
	}
}

func TestMarshalOptional(t *testing.T) {
	payload, err := marshalOptional(nil)
	if err != nil || payload != nil {
		t.Fatalf("expected nil payload, got %q %v", payload, err)
	}
	payload, err = marshalOptional(map[string]string{"role": "MGR"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(payload) != `{"role":"MGR"}` {
		t.Fatalf("unexpected payload %s", payload)
	}
}
