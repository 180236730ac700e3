package classifier

import (
	"fmt"
	"sort"

	"github.com/rozpoctar/boq-classifier/internal/domain"
	"github.com/rozpoctar/boq-classifier/internal/textnorm"
)

// RowClassifier assigns each BOQ row its structural role, parent link and
// line number in a single forward pass over the rows in sheet order. The
// only state carried between rows is the id of the most recent main item;
// section headings reset it.
type RowClassifier struct {
	logger Logger
}

// NewRowClassifier creates a row classifier. logger may be nil.
func NewRowClassifier(logger Logger) *RowClassifier {
	if logger == nil {
		logger = nopLogger{}
	}
	return &RowClassifier{logger: logger}
}

// rowDecision is the outcome of the per-row precedence chain.
type rowDecision struct {
	role     domain.RowRole
	subType  domain.SubordinateType
	shape    codeShape
	warnings []string
	// explicit subordinate evidence, used for confidence assignment
	marker   bool
	subIndex bool
	calcHint bool
}

// ClassifyRows annotates the items with role, parent, line number, subtype,
// confidence and warnings, and returns them together with aggregate counts.
// The input is sorted by source row position defensively; ties keep input
// order. Classification never fails: the worst outcome for a row is the
// unknown role with a warning attached.
func (rc *RowClassifier) ClassifyRows(items []*domain.Item) ([]*domain.Item, *domain.RowStats) {
	sorted := make([]*domain.Item, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Source.RowStart < sorted[j].Source.RowStart
	})

	stats := &domain.RowStats{Total: len(sorted)}

	var currentMainID *string
	lineNumber := 0

	for _, item := range sorted {
		resetOwnedFields(item)

		decision := rc.decide(item, currentMainID)

		item.RowRole = decision.role
		item.ClassificationWarnings = decision.warnings

		switch decision.role {
		case domain.RowRoleMain:
			lineNumber++
			n := lineNumber
			item.BoqLineNumber = &n
			currentMainID = &item.ID
			stats.MainCount++

		case domain.RowRoleSubordinate:
			item.SubordinateType = decision.subType
			item.ParentItemID = currentMainID
			stats.SubordinateCount++

		case domain.RowRoleSection:
			currentMainID = nil
			stats.SectionCount++

		case domain.RowRoleUnknown:
			stats.UnknownCount++
		}

		item.ClassificationConfidence = assignConfidence(decision)
	}

	stats.MaxLineNumber = lineNumber

	rc.logger.Info("row role classification complete",
		"total", stats.Total,
		"main", stats.MainCount,
		"subordinate", stats.SubordinateCount,
		"section", stats.SectionCount,
		"unknown", stats.UnknownCount,
	)

	return sorted, stats
}

// decide runs the fixed precedence chain for one row. First match wins.
func (rc *RowClassifier) decide(item *domain.Item, currentMainID *string) rowDecision {
	kod := item.Kod
	normPopis := textnorm.Normalize(item.Popis)

	// 0. Explicit estimating-software markers.
	if isExplicitMarker(kod) {
		return rowDecision{
			role:    domain.RowRoleSubordinate,
			subType: domain.SubordinateOther,
			marker:  true,
		}
	}

	// 0b. Codeless quantity breakdown under the current main item.
	if kod == "" && currentMainID != nil &&
		(hasDecimalMultiplication(item.Popis) || hasSummaryKeyword(normPopis)) {
		return rowDecision{
			role:     domain.RowRoleSubordinate,
			subType:  domain.SubordinateCalculation,
			calcHint: true,
		}
	}

	// 1. Any code backed by complete row data prices a work item, even when
	// the code itself is ad hoc ("Pol1").
	if kod != "" && item.HasCompleteData() {
		if shape := mainCodeShape(kod); shape != shapeNone {
			return rowDecision{role: domain.RowRoleMain, shape: shape}
		}
		return rowDecision{role: domain.RowRoleMain, shape: shapeCompleteData}
	}

	// 1b. Recognized main-item code shapes.
	if shape := mainCodeShape(kod); shape != shapeNone {
		// A small ordinal with no prices is a heading, not an item; that is
		// handled below, and mainCodeShape never matches 1-2 digit codes.
		return rowDecision{role: domain.RowRoleMain, shape: shape}
	}

	// 2. Sub-measurement index (one letter + 1-3 digits).
	if isSubIndexCode(kod) {
		d := rowDecision{
			role:     domain.RowRoleSubordinate,
			subType:  domain.SubordinateRepeat,
			subIndex: true,
		}
		if currentMainID == nil {
			d.warnings = append(d.warnings,
				fmt.Sprintf("sub-index row %q has no preceding main item", kod))
			rc.logger.Warn("sub-index row without preceding main item",
				"item_id", item.ID, "kod", kod)
		}
		return d
	}

	// 3. Codeless section headings.
	if kod == "" && isSectionHeading(normPopis) {
		return rowDecision{role: domain.RowRoleSection}
	}

	// 3b. Alternate "díl" heading: a small ordinal code with a description
	// and no quantity or unit price.
	if isOrdinalCode(kod) && item.Mnozstvi == nil && item.CenaJednotkova == nil && item.Popis != "" {
		return rowDecision{role: domain.RowRoleSection}
	}

	// 4. Codeless continuation of the current main item.
	if kod == "" && currentMainID != nil {
		subType := domain.SubordinateOther
		calcHint := false
		switch {
		case hasArithmeticIndicators(item.Popis) || item.Mnozstvi != nil:
			subType = domain.SubordinateCalculation
			calcHint = hasArithmeticIndicators(item.Popis)
		case !item.HasAnyNumericData():
			subType = domain.SubordinateNote
		}
		return rowDecision{
			role:     domain.RowRoleSubordinate,
			subType:  subType,
			calcHint: calcHint,
		}
	}

	// 5. Unrecognized code under a main item.
	if kod != "" && currentMainID != nil {
		return rowDecision{
			role:    domain.RowRoleSubordinate,
			subType: domain.SubordinateOther,
			warnings: []string{
				fmt.Sprintf("unrecognized code shape %q", kod),
			},
		}
	}

	// 6. Nothing matched.
	d := rowDecision{role: domain.RowRoleUnknown}
	if kod == "" && normPopis == "" {
		d.warnings = append(d.warnings, "empty row")
	}
	return d
}

// assignConfidence grades the decision after the role is fixed.
func assignConfidence(d rowDecision) domain.Confidence {
	switch d.role {
	case domain.RowRoleMain:
		if d.shape.strong() {
			return domain.ConfidenceHigh
		}
		if d.shape == shapeDotted || d.shape == shapeGenericDigits || d.shape == shapeCompleteData {
			return domain.ConfidenceMedium
		}
		return domain.ConfidenceLow

	case domain.RowRoleSection:
		return domain.ConfidenceHigh

	case domain.RowRoleSubordinate:
		if d.marker || d.subIndex || d.calcHint || d.subType == domain.SubordinateNote {
			return domain.ConfidenceHigh
		}
		return domain.ConfidenceMedium

	default:
		return domain.ConfidenceLow
	}
}

// resetOwnedFields clears the classifier-owned fields so that re-running
// the pass over already annotated items yields identical results.
func resetOwnedFields(item *domain.Item) {
	item.RowRole = ""
	item.SubordinateType = ""
	item.ParentItemID = nil
	item.BoqLineNumber = nil
	item.ClassificationConfidence = ""
	item.ClassificationWarnings = nil
}
