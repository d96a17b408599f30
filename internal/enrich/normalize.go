package enrich

import (
	"strconv"
	"strings"

	"github.com/tts885/musubisuite/internal/domain"
)

// NormalizeCapital converts capital amounts that were stated in units of
// ten thousand yen into plain yen. Japanese sources quote capital in man-yen
// almost universally, so a small number is a unit mismatch, not a small
// company: no registered company has a capital of 8,000 yen.
func NormalizeCapital(capital *int64) *int64 {
	if capital == nil {
		return nil
	}
	v := *capital
	switch {
	case v <= 0:
		return capital
	case v < 10_000:
		v *= 10_000
	case v < 100_000:
		// Five-digit values still read as man-yen. Anything at or above
		// 100,000 is taken at face value.
		v *= 10_000
	}
	out := v
	return &out
}

// Field weights for the confidence heuristic. Identity fields count more
// than contact detail.
const totalFieldWeight = 81

// ConfidenceScore rates how complete a generated profile is, 0-100. Each
// populated field contributes its weight.
func ConfidenceScore(p *domain.CompanyProfile) int {
	weighted := []struct {
		weight  int
		present bool
	}{
		{10, p.CompanyName != ""},
		{8, p.LegalName != ""},
		{7, p.Representative != ""},
		{7, p.Website != ""},
		{6, p.EstablishedDate != ""},
		{6, p.Industry != ""},
		{5, p.Capital != nil},
		{5, p.EmployeeCount != nil},
		{5, p.Description != ""},
		{5, p.Phone != ""},
		{4, p.PostalCode != ""},
		{4, p.Prefecture != ""},
		{4, p.City != ""},
		{3, p.Address != ""},
		{2, p.Fax != ""},
	}

	score := 0
	for _, w := range weighted {
		if w.present {
			score += w.weight
		}
	}
	return score * 100 / totalFieldWeight
}

// Diff lists the fields where next carries a value that differs from prev,
// each change scored by how substantial the new value is. Numeric changes
// are trusted more than short strings. An empty or nil new value never
// produces a change, and company_name is the lookup key, not a tracked field.
func Diff(prev, next *domain.CompanyProfile) []domain.FieldChange {
	var changes []domain.FieldChange

	strField := func(name, oldV, newV string) {
		if oldV == newV || newV == "" {
			return
		}
		changes = append(changes, domain.FieldChange{
			Field:      name,
			OldValue:   oldV,
			NewValue:   newV,
			Confidence: stringConfidence(newV),
		})
	}

	strField("legal_name", prev.LegalName, next.LegalName)
	strField("representative", prev.Representative, next.Representative)
	strField("established_date", prev.EstablishedDate, next.EstablishedDate)
	strField("industry", prev.Industry, next.Industry)
	strField("website", prev.Website, next.Website)
	strField("description", prev.Description, next.Description)
	strField("postal_code", prev.PostalCode, next.PostalCode)
	strField("prefecture", prev.Prefecture, next.Prefecture)
	strField("city", prev.City, next.City)
	strField("address", prev.Address, next.Address)
	strField("phone", prev.Phone, next.Phone)
	strField("fax", prev.Fax, next.Fax)

	if next.Capital != nil && !int64PtrEq(prev.Capital, next.Capital) {
		changes = append(changes, domain.FieldChange{
			Field:      "capital",
			OldValue:   int64PtrVal(prev.Capital),
			NewValue:   *next.Capital,
			Confidence: 90,
		})
	}
	if next.EmployeeCount != nil && !intPtrEq(prev.EmployeeCount, next.EmployeeCount) {
		changes = append(changes, domain.FieldChange{
			Field:      "employee_count",
			OldValue:   intPtrVal(prev.EmployeeCount),
			NewValue:   *next.EmployeeCount,
			Confidence: 90,
		})
	}
	return changes
}

// stringConfidence treats longer values as richer and therefore more likely
// to be real data rather than a guess.
func stringConfidence(v string) int {
	switch {
	case v == "":
		return 0
	case len(v) > 50:
		return 95
	case len(v) > 20:
		return 85
	case len(v) > 10:
		return 75
	default:
		return 65
	}
}

func int64PtrEq(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func intPtrEq(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func int64PtrVal(p *int64) interface{} {
	if p == nil {
		return nil
	}
	return *p
}

func intPtrVal(p *int) interface{} {
	if p == nil {
		return nil
	}
	return *p
}

// parseAmount pulls an integer out of model output that may arrive as a
// number, a quoted number, or a string with units ("1,000万円").
func parseAmount(raw string) (int64, bool) {
	raw = strings.TrimSpace(strings.Trim(raw, `"`))
	if raw == "" || raw == "null" {
		return 0, false
	}
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return 0, false
	}
	n, err := strconv.ParseInt(digits.String(), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
