package models

import (
	"encoding/json"
	"testing"
)

func TestBudgetTotal_IgnoresNonNumeric(t *testing.T) {
	var budget Budget
	raw := `{"personnel": 1000, "equipment": 500, "travel": "tbd", "misc": null, "venue": {"amount": 20}}`
	if err := json.Unmarshal([]byte(raw), &budget); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if got := budget.Total(); got != 1500 {
		t.Fatalf("expected total 1500, got %v", got)
	}
}

func TestBudgetTotal_Empty(t *testing.T) {
	var budget Budget
	if got := budget.Total(); got != 0 {
		t.Fatalf("expected 0 for nil budget, got %v", got)
	}
}

func TestDate_JSONRoundTrip(t *testing.T) {
	var opp Opportunity
	if err := json.Unmarshal([]byte(`{"deadline":"2025-06-01"}`), &opp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if opp.Deadline.String() != "2025-06-01" {
		t.Fatalf("unexpected deadline %s", opp.Deadline)
	}

	out, err := json.Marshal(opp.Deadline)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `"2025-06-01"` {
		t.Fatalf("unexpected json %s", out)
	}
}

func TestParseDate_Rejects(t *testing.T) {
	for _, in := range []string{"", "01/06/2025", "2025-13-01", "soon"} {
		if _, err := ParseDate(in); err == nil {
			t.Errorf("expected error for %q", in)
		}
	}
}

func TestParseDate_AcceptsTimestamp(t *testing.T) {
	d, err := ParseDate("2025-06-01T15:04:05Z")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.String() != "2025-06-01" {
		t.Fatalf("unexpected date %s", d)
	}
}
