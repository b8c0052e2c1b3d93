package metrics

import (
	"testing"
	"time"
)

func TestCollectorSnapshot(t *testing.T) {
	c := New()
	c.Record(200, 10*time.Millisecond)
	c.Record(303, 20*time.Millisecond)
	c.Record(404, 0)
	c.Record(429, 0)
	c.Record(500, 30*time.Millisecond)
	c.RecordLogin(true)
	c.RecordLogin(false)
	c.RecordLogin(false)

	snap := c.Snapshot()
	checks := map[string]uint64{
		"requestsTotal":        5,
		"errorsTotal":          1,
		"clientErrorsTotal":    2,
		"rateLimitedTotal":     1,
		"redirectsTotal":       1,
		"loginsSucceededTotal": 1,
		"loginsFailedTotal":    2,
		"totalDurationMs":      60,
	}
	for key, want := range checks {
		if got := snap[key].(uint64); got != want {
			t.Fatalf("%s: expected %d, got %d", key, want, got)
		}
	}
	if avg := snap["avgDurationMs"].(float64); avg != 12 {
		t.Fatalf("expected avg 12ms, got %v", avg)
	}
}
