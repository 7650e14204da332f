package ingest

import (
	"github.com/david/deal-portal/internal/models"
)

// RawRow is one untrusted data row keyed by whatever header text the sheet uses.
type RawRow map[string]string

// Field is a canonical deal column.
type Field string

const (
	FieldTitle         Field = "title"
	FieldDescription   Field = "description"
	FieldIndustry      Field = "industry"
	FieldTargetAmount  Field = "target_amount"
	FieldRaisedAmount  Field = "raised_amount"
	FieldStatus        Field = "status"
	FieldMinInvestment Field = "min_investment"
	FieldDueDate       Field = "due_date"
	FieldDocumentsLink Field = "documents_link"
	FieldImageURL      Field = "image_url"
)

// Fields lists canonical columns in the order used for a fresh sheet.
var Fields = []Field{
	FieldTitle,
	FieldDescription,
	FieldIndustry,
	FieldTargetAmount,
	FieldRaisedAmount,
	FieldStatus,
	FieldMinInvestment,
	FieldDueDate,
	FieldDocumentsLink,
	FieldImageURL,
}

// Result is the outcome of normalising one fetch.
type Result struct {
	Deals models.DealCollection
	// Dropped counts rows discarded for having no title. It is diagnostic only.
	Dropped int
}
