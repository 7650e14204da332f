package models

import (
	"encoding/json"
	"testing"

	"cloud.google.com/go/civil"
)

func TestProgress(t *testing.T) {
	tests := []struct {
		name     string
		deal     Deal
		expected float64
	}{
		{"half raised", Deal{TargetAmount: 1000, RaisedAmount: 500}, 50},
		{"zero target ignores raised", Deal{TargetAmount: 0, RaisedAmount: 900}, 0},
		{"over-subscribed", Deal{TargetAmount: 100, RaisedAmount: 150}, 150},
		{"nothing raised", Deal{TargetAmount: 100}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.deal.Progress(); got != tt.expected {
				t.Errorf("expected progress %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestHasDocuments(t *testing.T) {
	if (Deal{}).HasDocuments() {
		t.Error("empty link must not count as documents")
	}
	if (Deal{DocumentsLink: "#"}).HasDocuments() {
		t.Error("placeholder link must not count as documents")
	}
	if !(Deal{DocumentsLink: "https://example.com/deck.pdf"}).HasDocuments() {
		t.Error("expected real link to count as documents")
	}
}

func TestStatusKnown(t *testing.T) {
	for _, s := range []DealStatus{StatusOpen, StatusDueDiligence, StatusClosed} {
		if !s.Known() {
			t.Errorf("expected %q to be known", s)
		}
	}
	for _, s := range []DealStatus{"", "open", "Paused"} {
		if s.Known() {
			t.Errorf("expected %q to be unknown", s)
		}
	}
}

func TestDueDateVariants(t *testing.T) {
	parsed := ParsedDate(civil.Date{Year: 2025, Month: 8, Day: 15})
	if d, ok := parsed.Date(); !ok || d.Day != 15 {
		t.Fatalf("expected parsed date, got %v %v", d, ok)
	}
	if _, ok := parsed.Raw(); ok {
		t.Error("parsed date must not report raw text")
	}
	if parsed.String() != "2025-08-15" {
		t.Errorf("unexpected string form %q", parsed.String())
	}

	raw := RawDate("end of Q3")
	if text, ok := raw.Raw(); !ok || text != "end of Q3" {
		t.Fatalf("expected raw text, got %q %v", text, ok)
	}
	if !RawDate("").IsZero() {
		t.Error("empty raw text should be absent")
	}
}

func TestDueDateJSONRoundTrip(t *testing.T) {
	in := Deal{Title: "A", DueDate: RawDate("TBD")}
	b, err := json.Marshal(in)
	if err != nil {
		t.Fatal(err)
	}
	var out Deal
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatal(err)
	}
	if out.DueDate != in.DueDate {
		t.Errorf("expected %v, got %v", in.DueDate, out.DueDate)
	}

	b, _ = json.Marshal(Deal{})
	var empty map[string]any
	_ = json.Unmarshal(b, &empty)
	if empty["due_date"] != nil {
		t.Errorf("absent due date should encode as null, got %v", empty["due_date"])
	}
}
