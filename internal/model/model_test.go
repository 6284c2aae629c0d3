package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionRecord_Validate(t *testing.T) {
	tests := []struct {
		name    string
		record  TransactionRecord
		wantErr bool
	}{
		{
			name:   "valid record",
			record: TransactionRecord{ID: "1", Amount: decimal.NewFromInt(540)},
		},
		{
			name:   "zero amount is allowed",
			record: TransactionRecord{ID: "2", Amount: decimal.Zero},
		},
		{
			name:    "missing id",
			record:  TransactionRecord{ID: "  ", Amount: decimal.NewFromInt(10)},
			wantErr: true,
		},
		{
			name:    "negative amount",
			record:  TransactionRecord{ID: "3", Amount: decimal.NewFromInt(-1)},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.record.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidRecord)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestTransactionRecord_HasProductCode(t *testing.T) {
	assert.True(t, TransactionRecord{ProductCode: "INT_CR"}.HasProductCode())
	assert.False(t, TransactionRecord{}.HasProductCode())
	assert.False(t, TransactionRecord{ProductCode: " \t"}.HasProductCode())
}

func TestCategoryMapping_Lookup(t *testing.T) {
	m := DefaultCategoryMapping()

	pm, ok := m.Lookup(" LN_PMT ")
	require.True(t, ok)
	assert.Equal(t, "Loan Repayment", pm.Category)
	assert.Equal(t, NoRegulatoryCode, pm.RegulatoryCode)
	assert.Equal(t, RiskLow, pm.RiskLevel)

	_, ok = m.Lookup("")
	assert.False(t, ok)

	_, ok = m.Lookup("TRF_IB")
	assert.False(t, ok)
}

func TestCategoryMapping_Validate(t *testing.T) {
	assert.NoError(t, DefaultCategoryMapping().Validate())

	bad := CategoryMapping{"X": {Category: ""}}
	assert.Error(t, bad.Validate())

	badRisk := CategoryMapping{"X": {Category: "Fees", RiskLevel: "Extreme"}}
	assert.Error(t, badRisk.Validate())
}

func TestParseRiskLevel(t *testing.T) {
	level, err := ParseRiskLevel("HIGH")
	require.NoError(t, err)
	assert.Equal(t, RiskHigh, level)

	level, err = ParseRiskLevel("")
	require.NoError(t, err)
	assert.Equal(t, RiskLow, level)

	_, err = ParseRiskLevel("severe")
	assert.Error(t, err)
}

func TestKeywordRule_Code(t *testing.T) {
	assert.Equal(t, NoRegulatoryCode, KeywordRule{Category: "Cash Withdrawal"}.Code())
	assert.Equal(t, "1215", KeywordRule{Category: "Cloud", RegulatoryCode: "1215"}.Code())
}

func TestAdvisoryResult_OK(t *testing.T) {
	ok := AdvisoryResult{Category: AdvisoryCategory{Code: "4010", Name: "Family Maintenance"}}
	assert.True(t, ok.OK())

	failed := AdvisoryFailed(FailureTimeout, nil, "")
	assert.False(t, failed.OK())
	assert.Equal(t, FailureTimeout, failed.Failure)
}

func TestStoredResult_Effective(t *testing.T) {
	base := StoredResult{
		BatchID: "b1",
		ClassificationResult: ClassificationResult{
			TransactionID:  "2",
			Category:       CategoryCustomerTransfer,
			RegulatoryCode: CodeManualReview,
			ReviewStatus:   StatusManualReviewRequired,
		},
	}

	assert.Equal(t, base.ClassificationResult, base.Effective())

	approved := base
	approved.Review = &ReviewDecision{Approved: true, Reviewer: "ops"}
	assert.Equal(t, CodeManualReview, approved.Effective().RegulatoryCode)
	assert.Equal(t, StatusReviewApproved, approved.Effective().ReviewStatus)
	assert.False(t, approved.Effective().NeedsReview())

	corrected := base
	corrected.Review = &ReviewDecision{Reviewer: "ops", Category: "Education Fees", RegulatoryCode: "2210"}
	got := corrected.Effective()
	assert.Equal(t, "Education Fees", got.Category)
	assert.Equal(t, "2210", got.RegulatoryCode)
	assert.Equal(t, StatusReviewCorrected, got.ReviewStatus)
	assert.Equal(t, CodeManualReview, corrected.RegulatoryCode, "stored result must not change")
	assert.Equal(t, StatusManualReviewRequired, corrected.ReviewStatus)

	rejected := base
	rejected.Review = &ReviewDecision{Reviewer: "ops", Note: "needs customer contact"}
	got = rejected.Effective()
	assert.Equal(t, StatusReviewRejected, got.ReviewStatus)
	assert.Equal(t, CategoryCustomerTransfer, got.Category)
}
