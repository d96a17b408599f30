package enrich

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tts885/musubisuite/internal/domain"
)

func int64Ptr(v int64) *int64 { return &v }
func intPtr(v int) *int       { return &v }

func TestNormalizeCapital(t *testing.T) {
	cases := []struct {
		name string
		in   *int64
		want *int64
	}{
		{"nil passes through", nil, nil},
		{"small value treated as man-yen", int64Ptr(5_000), int64Ptr(50_000_000)},
		{"five digits treated as man-yen", int64Ptr(50_000), int64Ptr(500_000_000)},
		{"boundary just below", int64Ptr(99_999), int64Ptr(999_990_000)},
		{"six digits taken as yen", int64Ptr(100_000), int64Ptr(100_000)},
		{"large value unchanged", int64Ptr(100_000_000), int64Ptr(100_000_000)},
		{"zero unchanged", int64Ptr(0), int64Ptr(0)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := NormalizeCapital(tc.in)
			if tc.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tc.want, *got)
		})
	}
}

func TestNormalizeCapital_DoesNotMutateInput(t *testing.T) {
	in := int64Ptr(5_000)
	_ = NormalizeCapital(in)
	assert.Equal(t, int64(5_000), *in)
}

func TestConfidenceScore_Empty(t *testing.T) {
	assert.Equal(t, 0, ConfidenceScore(&domain.CompanyProfile{}))
}

func TestConfidenceScore_Full(t *testing.T) {
	full := &domain.CompanyProfile{
		CompanyName:     "Acme",
		LegalName:       "株式会社Acme",
		Representative:  "山田太郎",
		EstablishedDate: "2001-04-01",
		Capital:         int64Ptr(10_000_000),
		EmployeeCount:   intPtr(120),
		Industry:        "Software",
		Website:         "https://acme.example.jp",
		Description:     "Business software vendor.",
		PostalCode:      "100-0001",
		Prefecture:      "東京都",
		City:            "千代田区",
		Address:         "1-1-1",
		Phone:           "03-1234-5678",
		Fax:             "03-1234-5679",
	}
	assert.Equal(t, 100, ConfidenceScore(full))
}

func TestConfidenceScore_PartialWeights(t *testing.T) {
	// company_name (10) + website (7) out of 81.
	p := &domain.CompanyProfile{
		CompanyName: "Acme",
		Website:     "https://acme.example.jp",
	}
	assert.Equal(t, 17*100/81, ConfidenceScore(p))
}

func TestDiff_IdenticalProfilesYieldNoChanges(t *testing.T) {
	p := &domain.CompanyProfile{
		CompanyName: "Acme",
		Capital:     int64Ptr(10_000_000),
	}
	q := &domain.CompanyProfile{
		CompanyName: "Acme",
		Capital:     int64Ptr(10_000_000),
	}
	assert.Empty(t, Diff(p, q))
}

func TestDiff_StringRichnessConfidence(t *testing.T) {
	prev := &domain.CompanyProfile{}
	next := &domain.CompanyProfile{
		LegalName:   "Acme",                    // short
		Website:     "https://acme.example.jp", // >20
		Address:     "1-1-1 Chiyoda",           // >10
		Description: "Acme builds accounting and invoicing software for small businesses across Japan.", // >50
	}

	changes := Diff(prev, next)
	byField := map[string]domain.FieldChange{}
	for _, ch := range changes {
		byField[ch.Field] = ch
	}

	assert.Equal(t, 65, byField["legal_name"].Confidence)
	assert.Equal(t, 85, byField["website"].Confidence)
	assert.Equal(t, 75, byField["address"].Confidence)
	assert.Equal(t, 95, byField["description"].Confidence)
}

func TestDiff_NumericChanges(t *testing.T) {
	prev := &domain.CompanyProfile{Capital: int64Ptr(10_000_000), EmployeeCount: intPtr(100)}
	next := &domain.CompanyProfile{Capital: int64Ptr(50_000_000), EmployeeCount: intPtr(150)}

	changes := Diff(prev, next)
	require.Len(t, changes, 2)
	for _, ch := range changes {
		assert.Equal(t, 90, ch.Confidence)
	}
}

func TestDiff_EmptyNewValuesProduceNoChanges(t *testing.T) {
	prev := &domain.CompanyProfile{
		Phone:         "03-1234-5678",
		Industry:      "Software",
		Capital:       int64Ptr(10_000_000),
		EmployeeCount: intPtr(100),
	}
	// A refresh that came back blank must not erase known data.
	next := &domain.CompanyProfile{}

	assert.Empty(t, Diff(prev, next))
}

func TestDiff_CompanyNameNotTracked(t *testing.T) {
	prev := &domain.CompanyProfile{CompanyName: "Old Name"}
	next := &domain.CompanyProfile{CompanyName: "New Name"}

	assert.Empty(t, Diff(prev, next))
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want int64
		ok   bool
	}{
		{`5000000`, 5_000_000, true},
		{`"5,000,000"`, 5_000_000, true},
		{`"1,000万円"`, 1_000, true},
		{`"約120名"`, 120, true},
		{`null`, 0, false},
		{`""`, 0, false},
		{`"unknown"`, 0, false},
	}
	for _, tc := range cases {
		got, ok := parseAmount(tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
		if tc.ok {
			assert.Equal(t, tc.want, got, tc.in)
		}
	}
}
