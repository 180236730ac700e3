package domain

// RowRole describes the structural role of a row in the BOQ hierarchy.
type RowRole string

// RowRole constants
const (
	RowRoleMain        RowRole = "main"
	RowRoleSubordinate RowRole = "subordinate"
	RowRoleSection     RowRole = "section"
	RowRoleUnknown     RowRole = "unknown"
)

// SubordinateType refines subordinate rows by what they carry.
type SubordinateType string

// SubordinateType constants
const (
	SubordinateRepeat      SubordinateType = "repeat"
	SubordinateNote        SubordinateType = "note"
	SubordinateCalculation SubordinateType = "calculation"
	SubordinateOther       SubordinateType = "other"
)

// Confidence expresses how certain a role assignment is.
type Confidence string

// Confidence constants
const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// SourceRef locates an item in the originating spreadsheet.
// The classifier only uses RowStart for ordering; everything else is opaque.
type SourceRef struct {
	Sheet    string `json:"sheet"`
	RowStart int    `json:"row_start"`
	RowEnd   int    `json:"row_end"`
	CellRef  string `json:"cell_ref,omitempty"`
}

// Item is a single parsed BOQ row. Upstream parsing fills the spreadsheet
// fields; the classifier enriches the classifier-owned fields in place and
// never creates or deletes items.
type Item struct {
	ID             string    `json:"id"`
	Kod            string    `json:"kod"`
	Popis          string    `json:"popis"`
	PopisFull      string    `json:"popis_full"` // popis plus continuation-row text
	PopisDetail    []string  `json:"popis_detail,omitempty"`
	MJ             *string   `json:"mj,omitempty"`
	Mnozstvi       *float64  `json:"mnozstvi,omitempty"`
	CenaJednotkova *float64  `json:"cena_jednotkova,omitempty"`
	CenaCelkem     *float64  `json:"cena_celkem,omitempty"`
	Source         SourceRef `json:"source"`

	// Classifier-owned fields
	RowRole                  RowRole         `json:"row_role,omitempty"`
	SubordinateType          SubordinateType `json:"subordinate_type,omitempty"`
	ParentItemID             *string         `json:"parent_item_id,omitempty"`
	BoqLineNumber            *int            `json:"boq_line_number,omitempty"`
	ClassificationConfidence Confidence      `json:"classification_confidence,omitempty"`
	ClassificationWarnings   []string        `json:"classification_warnings,omitempty"`
	Skupina                  *WorkGroup      `json:"skupina,omitempty"`
	SkupinaSuggested         *WorkGroup      `json:"skupina_suggested,omitempty"`
}

// Unit returns the unit of measure or "" when absent.
func (i *Item) Unit() string {
	if i.MJ == nil {
		return ""
	}
	return *i.MJ
}

// HasCompleteData reports whether the row carries a unit, a positive
// quantity and at least one positive price. Rows with complete data are
// priced work items even when their code is ad hoc (e.g. "Pol1").
func (i *Item) HasCompleteData() bool {
	if i.Unit() == "" {
		return false
	}
	if i.Mnozstvi == nil || *i.Mnozstvi <= 0 {
		return false
	}
	unitPrice := i.CenaJednotkova != nil && *i.CenaJednotkova > 0
	totalPrice := i.CenaCelkem != nil && *i.CenaCelkem > 0
	return unitPrice || totalPrice
}

// HasAnyNumericData reports whether any of the numeric fields is populated.
func (i *Item) HasAnyNumericData() bool {
	return i.Mnozstvi != nil || i.CenaJednotkova != nil || i.CenaCelkem != nil
}
