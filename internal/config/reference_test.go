package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Veraticus/finnet/internal/common"
	"github.com/Veraticus/finnet/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "reference.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadReferenceData_EmptyPath(t *testing.T) {
	ref, err := LoadReferenceData("")
	require.NoError(t, err)
	assert.Equal(t, DefaultReferenceData(), ref)
}

func TestLoadReferenceData_PartialOverride(t *testing.T) {
	path := writeFile(t, `
product_codes:
  FX_OUT:
    category: Outward Remittance
    regulatory_code: "3100"
    risk_level: High
keyword_rules:
  - name: Fuel
    any_of: [FUEL, PETROL]
    category: Fuel
`)

	ref, err := LoadReferenceData(path)
	require.NoError(t, err)

	require.Len(t, ref.ProductCodes, 1)
	assert.Equal(t, model.ProductMapping{Category: "Outward Remittance", RegulatoryCode: "3100", RiskLevel: model.RiskHigh}, ref.ProductCodes["FX_OUT"])
	require.Len(t, ref.KeywordRules, 1)
	assert.Equal(t, []string{"FUEL", "PETROL"}, ref.KeywordRules[0].AnyOf)
	assert.Equal(t, model.DefaultAdvisoryCategories(), ref.AdvisoryCategories)
}

func TestLoadReferenceData_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "malformed yaml", content: "product_codes: [unterminated"},
		{name: "rule without predicate", content: "keyword_rules:\n  - name: x\n    category: X\n"},
		{name: "rule with blank keywords only", content: "keyword_rules:\n  - name: x\n    category: X\n    all_of: [\"  \"]\n"},
		{name: "duplicate advisory code", content: "advisory_categories:\n  - {code: \"1\", name: A}\n  - {code: \"1\", name: B}\n"},
		{name: "reserved advisory code", content: "advisory_categories:\n  - {code: MANUAL_REVIEW, name: A}\n"},
		{name: "mapping without category", content: "product_codes:\n  X:\n    regulatory_code: N/A\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadReferenceData(writeFile(t, tt.content))
			require.Error(t, err)
			assert.ErrorIs(t, err, common.ErrInvalidConfig)
		})
	}
}

func TestReferenceData_SaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ref.yaml")
	require.NoError(t, DefaultReferenceData().Save(path))

	ref, err := LoadReferenceData(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultReferenceData().ProductCodes, ref.ProductCodes)
	assert.Len(t, ref.KeywordRules, len(DefaultReferenceData().KeywordRules))
}
