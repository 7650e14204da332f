package models

import (
	"github.com/google/uuid"
)

// DealStatus is the lifecycle stage reported by the sheet. Values outside the
// known set are kept verbatim and treated as unknown.
type DealStatus string

const (
	StatusOpen          DealStatus = "Open"
	StatusDueDiligence  DealStatus = "Due Diligence"
	StatusClosed        DealStatus = "Closed"
	DefaultAppendStatus            = StatusOpen
)

// Known reports whether s is one of the recognised statuses.
func (s DealStatus) Known() bool {
	switch s {
	case StatusOpen, StatusDueDiligence, StatusClosed:
		return true
	}
	return false
}

type Deal struct {
	ID            uuid.UUID  `json:"id"`
	Row           int        `json:"row"` // 1-based sheet row; the header is row 1
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Industry      string     `json:"industry"`
	TargetAmount  float64    `json:"target_amount"`
	RaisedAmount  float64    `json:"raised_amount"`
	Status        DealStatus `json:"status"`
	MinInvestment float64    `json:"min_investment"`
	DueDate       DueDate    `json:"due_date"`
	DocumentsLink string     `json:"documents_link"`
	ImageURL      string     `json:"image_url"`
}

// Progress returns raised as a percentage of target, or 0 when there is no target.
func (d Deal) Progress() float64 {
	if d.TargetAmount <= 0 {
		return 0
	}
	return d.RaisedAmount / d.TargetAmount * 100
}

// HasDocuments is false for an empty link and for the "#" placeholder.
func (d Deal) HasDocuments() bool {
	return d.DocumentsLink != "" && d.DocumentsLink != "#"
}

// DealCollection is ordered by source row.
type DealCollection []Deal

// Clone returns an independent copy so callers cannot alias a snapshot.
func (c DealCollection) Clone() DealCollection {
	out := make(DealCollection, len(c))
	copy(out, c)
	return out
}

// ByID finds a deal by its identifier.
func (c DealCollection) ByID(id uuid.UUID) (Deal, bool) {
	for _, d := range c {
		if d.ID == id {
			return d, true
		}
	}
	return Deal{}, false
}
