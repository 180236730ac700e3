// internal/classifier/codes.go
package classifier

import (
	"regexp"
	"strconv"
	"strings"
)

// maxSectionHeadingLen is the longest popis still considered a heading when
// it contains a section keyword. Longer texts are work descriptions.
const maxSectionHeadingLen = 100

// maxOrdinalSectionCode is the highest integer kod treated as a "díl"
// ordinal heading (alternate section shape without the Díl prefix).
const maxOrdinalSectionCode = 99

// codeShape categorizes a recognized main-item code.
type codeShape int

const (
	shapeNone codeShape = iota
	shapeDigitRun                // 121101101 — 6+ digit catalogue code
	shapeLetterDigits            // R123456 — letter + 5+ digits
	shapeDashed                  // 123-4567 — digit run, dash, digit run
	shapeDotted                  // 272.32.11 — 2-3 digit dotted groups
	shapeGenericDigits           // 3+ leading digits, anything after
	shapeCompleteData            // ad-hoc code backed by complete row data
)

// strong reports whether the shape alone is high-confidence evidence of a
// main item. Dotted and generic shapes appear in section numbering too.
func (s codeShape) strong() bool {
	return s == shapeDigitRun || s == shapeLetterDigits || s == shapeDashed
}

var (
	reDigitRun     = regexp.MustCompile(`^\d{6,}$`)
	reLetterDigits = regexp.MustCompile(`^[A-Za-z]\d{5,}$`)
	reDashed       = regexp.MustCompile(`^\d+-\d+$`)
	reDotted       = regexp.MustCompile(`^\d{2,3}(?:\.\d{1,3}){1,2}$`)
	reGenericCode  = regexp.MustCompile(`^\d{3,}`)

	// One letter plus 1-3 digits is a repeated-measurement sub-index
	// (e.g. "A195"), not an independent item code.
	reSubIndex = regexp.MustCompile(`^[A-Za-z]\d{1,3}$`)

	// "15,200*0,030" style quantity breakdowns inside descriptions.
	reDecimalMult = regexp.MustCompile(`\d+(?:[.,]\d+)?\s*\*\s*\d+(?:[.,]\d+)?`)

	// Arithmetic indicators in continuation rows ("2*3,5=7,0").
	reArithmetic = regexp.MustCompile(`\d\s*[*+=]\s*\d`)

	// Roman-numeral headings ("III. Zakládání"), matched on normalized text.
	reRomanHeading = regexp.MustCompile(`^[ivxlcdm]+[.)]\s`)
)

// explicitMarkers are codes the source estimating software uses to tag
// non-priced rows: VV (výkaz výměr), PP/PSC (descriptions), VRN (overheads).
var explicitMarkers = map[string]struct{}{
	"VV":  {},
	"PP":  {},
	"PSC": {},
	"VRN": {},
}

// sectionPrefixes start a section heading in normalized popis text.
var sectionPrefixes = []string{
	"dil ",
	"dil:",
	"oddil",
	"hsv",
	"psv",
}

// sectionKeywords mark short headings as section labels.
var sectionKeywords = []string{
	"zemni prace",
	"zakladani",
	"zaklady",
	"svisle konstrukce",
	"vodorovne konstrukce",
	"komunikace",
	"upravy povrchu",
	"trubni vedeni",
	"ostatni konstrukce",
	"dokoncovaci prace",
	"presun hmot",
	"izolace",
	"demolice",
	"staveniste",
	"prace a dodavky",
}

// summaryKeywords identify quantity-total continuation rows.
var summaryKeywords = []string{
	"celkem",
	"soucet",
	"mezisoucet",
	"celkova vymera",
	"celkove mnozstvi",
}

// isExplicitMarker reports whether kod is one of the estimating-software
// row markers. Comparison is case-insensitive.
func isExplicitMarker(kod string) bool {
	_, ok := explicitMarkers[strings.ToUpper(strings.TrimSpace(kod))]
	return ok
}

// mainCodeShape recognizes the code shapes of independently priced items.
// Order matters: the strongest shapes are tested first so that confidence
// assignment sees the best available match.
func mainCodeShape(kod string) codeShape {
	kod = strings.TrimSpace(kod)
	switch {
	case kod == "":
		return shapeNone
	case reDigitRun.MatchString(kod):
		return shapeDigitRun
	case reLetterDigits.MatchString(kod):
		return shapeLetterDigits
	case reDashed.MatchString(kod):
		return shapeDashed
	case reDotted.MatchString(kod):
		return shapeDotted
	case reGenericCode.MatchString(kod):
		return shapeGenericDigits
	default:
		return shapeNone
	}
}

// isSubIndexCode reports whether kod looks like a sub-measurement index.
func isSubIndexCode(kod string) bool {
	return reSubIndex.MatchString(strings.TrimSpace(kod))
}

// isOrdinalCode reports whether kod is a small integer (0-99) as used by
// the alternate "díl" heading shape.
func isOrdinalCode(kod string) bool {
	kod = strings.TrimSpace(kod)
	if kod == "" {
		return false
	}
	n, err := strconv.Atoi(kod)
	if err != nil {
		return false
	}
	return n >= 0 && n <= maxOrdinalSectionCode
}

// isSectionHeading applies the section-header heuristics to a normalized
// (diacritics-stripped, lowercased) description.
func isSectionHeading(normPopis string) bool {
	if normPopis == "" {
		return false
	}
	for _, prefix := range sectionPrefixes {
		if strings.HasPrefix(normPopis, prefix) {
			return true
		}
	}
	if reRomanHeading.MatchString(normPopis) {
		return true
	}
	if len(normPopis) <= maxSectionHeadingLen {
		for _, kw := range sectionKeywords {
			if strings.Contains(normPopis, kw) {
				return true
			}
		}
	}
	return false
}

// hasDecimalMultiplication reports whether the text contains a quantity
// breakdown like "15,200*0,030".
func hasDecimalMultiplication(text string) bool {
	return reDecimalMult.MatchString(text)
}

// hasSummaryKeyword reports whether the normalized text is a quantity total.
func hasSummaryKeyword(normPopis string) bool {
	for _, kw := range summaryKeywords {
		if strings.Contains(normPopis, kw) {
			return true
		}
	}
	return false
}

// hasArithmeticIndicators reports whether the text computes something.
func hasArithmeticIndicators(text string) bool {
	return reArithmetic.MatchString(text)
}
