package view

import (
	"fmt"
	"html/template"

	"github.com/microcosm-cc/bluemonday"

	"github.com/david/deal-portal/internal/models"
)

// Descriptions are typed by operators into the sheet and may carry markup.
var descriptionPolicy = bluemonday.UGCPolicy()

// Card is everything the dashboard needs to render one deal.
type Card struct {
	ID                 string        `json:"id"`
	Row                int           `json:"row"`
	Title              string        `json:"title"`
	Description        template.HTML `json:"description"`
	Industry           string        `json:"industry"`
	Status             string        `json:"status"`
	StatusColor        string        `json:"status_color"`
	StatusClass        string        `json:"status_class"`
	Target             string        `json:"target"`
	Raised             string        `json:"raised"`
	MinInvestment      string        `json:"min_investment,omitempty"`
	ProgressFraction   float64       `json:"progress_fraction"`
	ProgressLabel      string        `json:"progress_label"`
	ShowProgress       bool          `json:"show_progress"`
	CanExpressInterest bool          `json:"can_express_interest"`
	DocumentsLink      string        `json:"documents_link,omitempty"`
	ImageURL           string        `json:"image_url,omitempty"`
	DueDate            string        `json:"due_date,omitempty"`
}

func NewCard(d models.Deal) Card {
	c := Card{
		ID:                 d.ID.String(),
		Row:                d.Row,
		Title:              d.Title,
		Description:        template.HTML(descriptionPolicy.Sanitize(d.Description)),
		Industry:           d.Industry,
		Status:             string(d.Status),
		StatusColor:        StatusColor(d.Status),
		StatusClass:        StatusClass(d.Status),
		Target:             FormatCurrency(d.TargetAmount),
		Raised:             FormatCurrency(d.RaisedAmount),
		ProgressFraction:   ProgressFraction(d),
		ProgressLabel:      fmt.Sprintf("%.1f%%", d.Progress()),
		ShowProgress:       ShowProgress(d),
		CanExpressInterest: CanExpressInterest(d),
		ImageURL:           d.ImageURL,
		DueDate:            DueDateDisplay(d.DueDate),
	}
	if d.MinInvestment > 0 {
		c.MinInvestment = FormatCurrency(d.MinInvestment)
	}
	if d.HasDocuments() {
		c.DocumentsLink = d.DocumentsLink
	}
	return c
}

func Cards(deals models.DealCollection) []Card {
	out := make([]Card, len(deals))
	for i, d := range deals {
		out[i] = NewCard(d)
	}
	return out
}
