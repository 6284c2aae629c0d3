package engine

import (
	"context"
	"log/slog"
	"testing"

	"github.com/Veraticus/finnet/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWaterfall(t *testing.T, advisor Advisor) *Waterfall {
	t.Helper()
	w, err := New(DefaultConfig(), advisor, slog.Default())
	require.NoError(t, err)
	return w
}

func record(id, code, desc string, amount int64) model.TransactionRecord {
	return model.TransactionRecord{
		ID:          id,
		AccountID:   "ACC-" + id,
		ProductCode: code,
		Description: desc,
		Amount:      decimal.NewFromInt(amount),
		Currency:    "LKR",
	}
}

func TestWaterfall_Classify(t *testing.T) {
	tests := []struct {
		name       string
		record     model.TransactionRecord
		wantCat    string
		wantCode   string
		wantTier   model.ResolutionTier
		wantStatus model.ReviewStatus
		wantRisk   bool
		wantAdvice int
	}{
		{
			name:       "product map resolves loan repayment",
			record:     record("3", "LN_PMT", "AUTO LOAN 40404", 15000),
			wantCat:    "Loan Repayment",
			wantCode:   "N/A",
			wantTier:   model.TierProductMap,
			wantStatus: model.StatusAutoCleared,
		},
		{
			name:       "product map ignores description",
			record:     record("5", "INT_CR", "ATM WITHDRAWAL family support", 540),
			wantCat:    "Interest Income",
			wantCode:   "N/A",
			wantTier:   model.TierProductMap,
			wantStatus: model.StatusAutoCleared,
		},
		{
			name:       "unmapped product code falls to keyword rule",
			record:     record("6", "TRF_OT", "atm withdrawal kandy", 20000),
			wantCat:    "Cash Withdrawal",
			wantCode:   "N/A",
			wantTier:   model.TierKeywordRule,
			wantStatus: model.StatusAutoCleared,
		},
		{
			name:       "keyword rule carries its own code",
			record:     record("7", "", "AWS monthly invoice", 9000),
			wantCat:    "Software/IT Services",
			wantCode:   "1215",
			wantTier:   model.TierKeywordRule,
			wantStatus: model.StatusAutoCleared,
		},
		{
			name:       "advisory classifier below threshold",
			record:     record("4", "", "family support monthly", 150000),
			wantCat:    "Family Maintenance",
			wantCode:   "4010",
			wantTier:   model.TierAdvisoryClassifier,
			wantStatus: model.StatusAutoCleared,
			wantAdvice: 1,
		},
		{
			name:       "over threshold forces manual review",
			record:     record("8", "", "Consulting fees", 1200000),
			wantCat:    "Software/IT Services",
			wantCode:   "1215",
			wantTier:   model.TierAdvisoryClassifier,
			wantStatus: model.StatusManualReviewRequired,
			wantRisk:   true,
			wantAdvice: 1,
		},
		{
			name:       "threshold is inclusive",
			record:     record("9", "LN_PMT", "AUTO LOAN", 1000000),
			wantCat:    "Loan Repayment",
			wantCode:   "N/A",
			wantTier:   model.TierProductMap,
			wantStatus: model.StatusManualReviewRequired,
			wantRisk:   true,
		},
		{
			name:       "blank product code skips the product map",
			record:     record("11", "  ", "ATM WITHDRAWAL GALLE", 5000),
			wantCat:    "Cash Withdrawal",
			wantCode:   "N/A",
			wantTier:   model.TierKeywordRule,
			wantStatus: model.StatusAutoCleared,
		},
		{
			name:       "empty description reaches the advisory tier",
			record:     record("10", "", "   ", 100),
			wantCat:    model.CategoryCustomerTransfer,
			wantCode:   model.CodeManualReview,
			wantTier:   model.TierAdvisoryClassifier,
			wantStatus: model.StatusManualReviewRequired,
			wantAdvice: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			advisor := NewMockAdvisor()
			w := newTestWaterfall(t, advisor)

			result, err := w.Classify(context.Background(), tt.record)
			require.NoError(t, err)

			assert.Equal(t, tt.record.ID, result.TransactionID)
			assert.Equal(t, tt.record.Description, result.OriginalDescription)
			assert.Equal(t, tt.wantCat, result.Category)
			assert.Equal(t, tt.wantCode, result.RegulatoryCode)
			assert.Equal(t, tt.wantTier, result.ResolutionTier)
			assert.Equal(t, tt.wantStatus, result.ReviewStatus)
			assert.Equal(t, tt.wantRisk, result.RiskFlag)
			assert.Len(t, advisor.Calls(), tt.wantAdvice)
		})
	}
}

func TestWaterfall_AdvisoryFailureNeverErrors(t *testing.T) {
	failures := []model.AdvisoryFailure{
		model.FailureTimeout,
		model.FailureNetwork,
		model.FailureBadResponse,
		model.FailureRateLimited,
	}

	for _, failure := range failures {
		t.Run(string(failure), func(t *testing.T) {
			advisor := NewMockAdvisor()
			advisor.Failure = failure
			w := newTestWaterfall(t, advisor)

			result, err := w.Classify(context.Background(), record("1", "TRF_IB", "Payment for web design course", 25000))
			require.NoError(t, err)

			assert.Equal(t, model.TierAdvisoryClassifier, result.ResolutionTier)
			assert.Equal(t, model.CodeManualReview, result.RegulatoryCode)
			assert.Equal(t, model.CategoryCustomerTransfer, result.Category)
			assert.Equal(t, failure, result.AdvisoryFailure)
			assert.Equal(t, model.StatusManualReviewRequired, result.ReviewStatus)
			assert.False(t, result.RiskFlag)
		})
	}
}

type panickingAdvisor struct{}

func (panickingAdvisor) Advise(context.Context, model.AdvisoryRequest) model.AdvisoryResult {
	panic("provider exploded")
}

func TestWaterfall_AdvisorPanicIsContained(t *testing.T) {
	w := newTestWaterfall(t, panickingAdvisor{})

	result, err := w.Classify(context.Background(), record("1", "", "unknown transfer", 10))
	require.NoError(t, err)
	assert.Equal(t, model.CodeManualReview, result.RegulatoryCode)
	assert.Equal(t, model.FailureBadResponse, result.AdvisoryFailure)
}

func TestWaterfall_NilAdvisor(t *testing.T) {
	w := newTestWaterfall(t, nil)

	result, err := w.Classify(context.Background(), record("1", "", "unknown transfer", 10))
	require.NoError(t, err)
	assert.Equal(t, model.CodeManualReview, result.RegulatoryCode)
	assert.Equal(t, model.FailureDisabled, result.AdvisoryFailure)
}

func TestWaterfall_RejectsInvalidRecords(t *testing.T) {
	advisor := NewMockAdvisor()
	w := newTestWaterfall(t, advisor)

	_, err := w.Classify(context.Background(), record("", "", "x", 10))
	assert.ErrorIs(t, err, model.ErrInvalidRecord)

	_, err = w.Classify(context.Background(), record("1", "", "x", -10))
	assert.ErrorIs(t, err, model.ErrInvalidRecord)

	assert.Empty(t, advisor.Calls())
}

func TestWaterfall_Idempotent(t *testing.T) {
	w := newTestWaterfall(t, NewMockAdvisor())
	rec := record("4", "", "family support monthly", 150000)

	first, err := w.Classify(context.Background(), rec)
	require.NoError(t, err)
	second, err := w.Classify(context.Background(), rec)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestWaterfall_CopiesMapping(t *testing.T) {
	cfg := DefaultConfig()
	w, err := New(cfg, nil, nil)
	require.NoError(t, err)

	cfg.Mapping["LN_PMT"] = model.ProductMapping{Category: "Changed"}

	result, err := w.Classify(context.Background(), record("1", "LN_PMT", "loan", 10))
	require.NoError(t, err)
	assert.Equal(t, "Loan Repayment", result.Category)
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Rules = []model.KeywordRule{{Name: "broken", Category: "X"}}
	_, err := New(cfg, nil, nil)
	assert.Error(t, err)

	cfg = DefaultConfig()
	cfg.AMLThreshold = decimal.NewFromInt(-1)
	_, err = New(cfg, nil, nil)
	assert.Error(t, err)

	cfg = DefaultConfig()
	cfg.Mapping = model.CategoryMapping{"X": {}}
	_, err = New(cfg, nil, nil)
	assert.Error(t, err)
}

func TestWaterfall_RiskLevelFromMapping(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Mapping["FX_OUT"] = model.ProductMapping{Category: "Outward Remittance", RegulatoryCode: "3100", RiskLevel: model.RiskHigh}
	w, err := New(cfg, nil, nil)
	require.NoError(t, err)

	result, err := w.Classify(context.Background(), record("1", "FX_OUT", "swift out", 5000))
	require.NoError(t, err)
	assert.Equal(t, model.RiskHigh, result.RiskLevel)
	assert.Equal(t, "3100", result.RegulatoryCode)
	assert.Equal(t, model.StatusAutoCleared, result.ReviewStatus)
}
