// Package ingest normalizes raw CSV exports from external banking tools into
// transaction drafts: header reconciliation against a known alias table and
// per-row field parsing with independent error collection.
package ingest

// Field names of the import schema.
const (
	FieldDate        = "date"
	FieldDescription = "description"
	FieldAmount      = "amount"
	FieldCategory    = "category"
	FieldType        = "type"
	FieldTag         = "tag"
)

// RequiredFields must all resolve to a column for a row to be importable.
var RequiredFields = []string{FieldDate, FieldDescription, FieldAmount, FieldCategory, FieldType}

// OptionalFields are imported when present.
var OptionalFields = []string{FieldTag}

// headerAliases maps each schema field to the column names banks commonly
// use, in preference order.
var headerAliases = map[string][]string{
	FieldDate:        {"date", "transaction date", "posted date", "posting date", "timestamp"},
	FieldDescription: {"description", "details", "memo", "narrative", "payee", "merchant"},
	FieldAmount:      {"amount", "value", "amt", "total"},
	FieldCategory:    {"category", "cat", "category name"},
	FieldType:        {"type", "transaction type", "trans type", "kind"},
	FieldTag:         {"tag", "tags", "label", "labels"},
}

// typeAliases folds bank statement vocabulary onto the two transaction types.
var typeAliases = map[string]string{
	"income":     "income",
	"credit":     "income",
	"cr":         "income",
	"deposit":    "income",
	"in":         "income",
	"expense":    "expense",
	"debit":      "expense",
	"dr":         "expense",
	"withdrawal": "expense",
	"payment":    "expense",
	"purchase":   "expense",
	"out":        "expense",
}
