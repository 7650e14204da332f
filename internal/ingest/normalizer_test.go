package ingest

import (
	"testing"

	"github.com/david/deal-portal/internal/models"
)

func TestNormalize_Scenario(t *testing.T) {
	rows := []RawRow{
		{"Title": "A", "Target Amount": "1000", "Raised Amount": "500", "Status": "Open"},
		{"Title": "", "Target Amount": "200"},
		{"Title": "B", "Target Amount": "bad", "Raised Amount": "0", "Status": "Closed"},
	}

	res := Normalize(rows)
	if len(res.Deals) != 2 {
		t.Fatalf("expected 2 deals, got %d", len(res.Deals))
	}
	if res.Dropped != 1 {
		t.Errorf("expected 1 dropped row, got %d", res.Dropped)
	}

	a, b := res.Deals[0], res.Deals[1]
	if a.Title != "A" || a.TargetAmount != 1000 || a.RaisedAmount != 500 || a.Progress() != 50 {
		t.Errorf("unexpected deal A: %+v (progress %v)", a, a.Progress())
	}
	if b.Title != "B" || b.TargetAmount != 0 || b.RaisedAmount != 0 || b.Progress() != 0 {
		t.Errorf("unexpected deal B: %+v", b)
	}
	if a.Row != 2 || b.Row != 4 {
		t.Errorf("expected sheet rows 2 and 4, got %d and %d", a.Row, b.Row)
	}
}

func TestNormalize_HeaderAliases(t *testing.T) {
	variants := []RawRow{
		{"Title": "X", "Target Amount": "10", "Min Investment": "5", "Due Date": "2025-08-15", "Documents Link": "https://d"},
		{"title": "X", "target_amount": "10", "min_investment": "5", "due_date": "2025-08-15", "documents_link": "https://d"},
		{"Title": "X", "TargetAmount": "10", "MinInvestment": "5", "DueDate": "2025-08-15", "DocumentsLink": "https://d"},
		{" TITLE ": "X", "TARGET AMOUNT": "10", "Min-Investment": "5", "due date": "2025-08-15", "Documents URL": "https://d"},
	}

	for _, raw := range variants {
		res := Normalize([]RawRow{raw})
		if len(res.Deals) != 1 {
			t.Fatalf("expected one deal for %v", raw)
		}
		d := res.Deals[0]
		if d.TargetAmount != 10 || d.MinInvestment != 5 || d.DocumentsLink != "https://d" {
			t.Errorf("aliasing failed for %v: %+v", raw, d)
		}
		if date, ok := d.DueDate.Date(); !ok || date.String() != "2025-08-15" {
			t.Errorf("due date not parsed for %v: %v", raw, d.DueDate)
		}
	}
}

func TestNormalize_MissingColumnsDefault(t *testing.T) {
	res := Normalize([]RawRow{{"Title": "Only title", "Unrelated": "ignored"}})
	if len(res.Deals) != 1 {
		t.Fatalf("expected 1 deal, got %d", len(res.Deals))
	}
	d := res.Deals[0]
	if d.Description != "" || d.Industry != "" || d.Status != "" {
		t.Errorf("expected empty text defaults, got %+v", d)
	}
	if d.TargetAmount != 0 || d.RaisedAmount != 0 || d.MinInvestment != 0 {
		t.Errorf("expected zero numeric defaults, got %+v", d)
	}
	if !d.DueDate.IsZero() || d.HasDocuments() {
		t.Errorf("expected absent optional fields, got %+v", d)
	}
}

func TestNormalize_DropsBlankTitles(t *testing.T) {
	rows := []RawRow{
		{"Title": "   "},
		{"Title": "\t\n"},
		{"Description": "no title column at all"},
		{"Title": "  Kept  "},
	}
	res := Normalize(rows)
	if len(res.Deals) != 1 || res.Deals[0].Title != "Kept" {
		t.Fatalf("expected only the trimmed 'Kept' deal, got %+v", res.Deals)
	}
	if res.Dropped != 3 {
		t.Errorf("expected 3 dropped, got %d", res.Dropped)
	}
}

func TestNormalize_PreservesDuplicatesAndOrder(t *testing.T) {
	rows := []RawRow{{"Title": "Same"}, {"Title": "Other"}, {"Title": "Same"}}
	res := Normalize(rows)
	if len(res.Deals) != 3 {
		t.Fatalf("expected 3 deals, got %d", len(res.Deals))
	}
	want := []string{"Same", "Other", "Same"}
	for i, d := range res.Deals {
		if d.Title != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], d.Title)
		}
	}
	if res.Deals[0].ID == res.Deals[2].ID {
		t.Error("duplicate titles on different rows must get distinct ids")
	}
}

func TestNormalize_UnknownStatusPassesThrough(t *testing.T) {
	res := Normalize([]RawRow{{"Title": "P", "Status": "  On   Hold "}})
	if res.Deals[0].Status != models.DealStatus("On Hold") {
		t.Errorf("expected status kept as 'On Hold', got %q", res.Deals[0].Status)
	}
	if res.Deals[0].Status.Known() {
		t.Error("unrecognised status must be unknown")
	}
}

func TestNormalize_DuplicateAliasPrefersNonEmpty(t *testing.T) {
	res := Normalize([]RawRow{{"Title": "", "title": "lower wins"}})
	if len(res.Deals) != 1 || res.Deals[0].Title != "lower wins" {
		t.Fatalf("expected non-empty alias to win, got %+v", res.Deals)
	}
}

func TestNormalizeTable_RaggedRows(t *testing.T) {
	headers := []string{"Title", "Industry", "", "Target Amount", "Title"}
	rows := [][]string{
		{"Solar", "Energy", "x", "2,500"},
		{"Short"},
		{},
	}
	res := NormalizeTable(headers, rows)
	if len(res.Deals) != 2 || res.Dropped != 1 {
		t.Fatalf("expected 2 deals and 1 dropped, got %d/%d", len(res.Deals), res.Dropped)
	}
	if res.Deals[0].TargetAmount != 2500 || res.Deals[0].Industry != "Energy" {
		t.Errorf("unexpected first deal %+v", res.Deals[0])
	}
	if res.Deals[1].Industry != "" {
		t.Errorf("padded cell should be empty, got %q", res.Deals[1].Industry)
	}
}

func TestDealID_Stable(t *testing.T) {
	if DealID(2, "A") != DealID(2, "A") {
		t.Error("expected deterministic ids")
	}
	if DealID(2, "A") == DealID(3, "A") {
		t.Error("expected row to influence id")
	}
}

func TestResolveColumn(t *testing.T) {
	headers := []string{"Title", "Target Amount", "Notes"}
	tests := []struct {
		name  string
		col   int
		found bool
	}{
		{"Title", 0, true},
		{"target_amount", 1, true},
		{"TargetAmount", 1, true},
		{"Notes", 2, true},
		{"raised_amount", 0, false},
		{"Nonexistent", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			col, ok := ResolveColumn(headers, tt.name)
			if ok != tt.found || (ok && col != tt.col) {
				t.Errorf("expected (%d,%v), got (%d,%v)", tt.col, tt.found, col, ok)
			}
		})
	}
}

func TestNormalizeTable_ByteOrderMarkHeader(t *testing.T) {
	res := NormalizeTable([]string{"\ufeffTitle", "Target Amount"}, [][]string{{"A", "100"}})
	if len(res.Deals) != 1 || res.Dropped != 0 {
		t.Fatalf("expected 1 deal and 0 dropped, got %d/%d", len(res.Deals), res.Dropped)
	}
	if res.Deals[0].Title != "A" || res.Deals[0].TargetAmount != 100 {
		t.Errorf("unexpected deal %+v", res.Deals[0])
	}
}
