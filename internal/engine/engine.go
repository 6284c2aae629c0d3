// Package engine implements the classification waterfall that assigns a
// regulatory category to each transaction and flags high-value transfers.
package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Veraticus/finnet/internal/model"
	"github.com/Veraticus/finnet/internal/pattern"
	"github.com/shopspring/decimal"
)

// DefaultAMLThreshold is the reporting threshold used when none is configured.
var DefaultAMLThreshold = decimal.NewFromInt(1_000_000)

// Config holds the reference data and thresholds the waterfall runs against.
// It is copied into the Waterfall at construction; later changes to the
// caller's maps or slices do not affect it.
type Config struct {
	AMLThreshold decimal.Decimal
	Mapping      model.CategoryMapping
	Rules        []model.KeywordRule
	Workers      int
}

// DefaultConfig returns the built-in product map, keyword rules and threshold.
func DefaultConfig() Config {
	return Config{
		AMLThreshold: DefaultAMLThreshold,
		Mapping:      model.DefaultCategoryMapping(),
		Rules:        pattern.DefaultRules(),
		Workers:      4,
	}
}

// Waterfall classifies transactions through the product map, keyword rule
// and advisory tiers, then applies the AML risk evaluation. It holds no
// mutable state and is safe for concurrent use.
type Waterfall struct {
	advisor   Advisor
	rules     RuleMatcher
	logger    *slog.Logger
	mapping   model.CategoryMapping
	threshold decimal.Decimal
	workers   int
}

// New creates a waterfall. A nil advisor is allowed: Tier 3 then always
// degrades to the manual-review sentinel.
func New(cfg Config, advisor Advisor, logger *slog.Logger) (*Waterfall, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if err := cfg.Mapping.Validate(); err != nil {
		return nil, fmt.Errorf("invalid product mapping: %w", err)
	}
	if cfg.AMLThreshold.IsNegative() {
		return nil, fmt.Errorf("AML threshold must not be negative, got %s", cfg.AMLThreshold)
	}

	matcher, err := pattern.NewMatcher(cfg.Rules)
	if err != nil {
		return nil, fmt.Errorf("invalid keyword rules: %w", err)
	}

	mapping := make(model.CategoryMapping, len(cfg.Mapping))
	for code, pm := range cfg.Mapping {
		mapping[code] = pm
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}

	return &Waterfall{
		advisor:   advisor,
		rules:     matcher,
		logger:    logger,
		mapping:   mapping,
		threshold: cfg.AMLThreshold,
		workers:   workers,
	}, nil
}

// Threshold returns the configured AML threshold.
func (w *Waterfall) Threshold() decimal.Decimal {
	return w.threshold
}

// Classify resolves one record. Callers must pass records that satisfy
// model.TransactionRecord.Validate; anything else is rejected with
// model.ErrInvalidRecord. Advisory failures never produce an error.
func (w *Waterfall) Classify(ctx context.Context, record model.TransactionRecord) (model.ClassificationResult, error) {
	if err := record.Validate(); err != nil {
		return model.ClassificationResult{}, err
	}

	result := model.ClassificationResult{
		TransactionID:       record.ID,
		AccountID:           record.AccountID,
		Date:                record.Date,
		Currency:            record.Currency,
		Amount:              record.Amount,
		ProductCode:         record.ProductCode,
		OriginalDescription: record.Description,
		Category:            model.CategoryUnclassified,
		RegulatoryCode:      model.NoRegulatoryCode,
		RiskLevel:           model.RiskLow,
	}

	switch {
	case w.resolveProductMap(record, &result):
	case w.resolveKeywordRule(record, &result):
	default:
		w.resolveAdvisory(ctx, record, &result)
	}

	w.evaluateRisk(&result)

	w.logger.Debug("transaction classified",
		"transaction_id", result.TransactionID,
		"tier", result.ResolutionTier,
		"category", result.Category,
		"regulatory_code", result.RegulatoryCode,
		"review_status", result.ReviewStatus)

	return result, nil
}

// resolveProductMap is Tier 1.
func (w *Waterfall) resolveProductMap(record model.TransactionRecord, result *model.ClassificationResult) bool {
	if !record.HasProductCode() {
		return false
	}
	pm, ok := w.mapping.Lookup(record.ProductCode)
	if !ok {
		return false
	}

	result.Category = pm.Category
	result.RegulatoryCode = codeOrDefault(pm.RegulatoryCode)
	result.RiskLevel = riskOrDefault(pm.RiskLevel)
	result.ResolutionTier = model.TierProductMap
	return true
}

// resolveKeywordRule is Tier 2.
func (w *Waterfall) resolveKeywordRule(record model.TransactionRecord, result *model.ClassificationResult) bool {
	rule, ok := w.rules.Match(record.Description)
	if !ok {
		return false
	}

	result.Category = rule.Category
	result.RegulatoryCode = rule.Code()
	result.RiskLevel = riskOrDefault(rule.RiskLevel)
	result.ResolutionTier = model.TierKeywordRule
	return true
}

// resolveAdvisory is Tier 3. It always resolves.
func (w *Waterfall) resolveAdvisory(ctx context.Context, record model.TransactionRecord, result *model.ClassificationResult) {
	result.ResolutionTier = model.TierAdvisoryClassifier

	advice := w.advise(ctx, model.AdvisoryRequest{
		Description: record.Description,
		Amount:      record.Amount,
	})

	if !advice.OK() {
		failure := advice.Failure
		if failure == model.FailureNone {
			failure = model.FailureBadResponse
		}
		result.Category = model.CategoryCustomerTransfer
		result.RegulatoryCode = model.CodeManualReview
		result.AdvisoryFailure = failure

		w.logger.Warn("advisory classification unavailable, routing to manual review",
			"transaction_id", record.ID,
			"failure", failure,
			"error", advice.Err)
		return
	}

	result.Category = advice.Category.Name
	result.RegulatoryCode = advice.Category.Code
}

// advise calls the advisor and converts a panic or a missing advisor into a failure.
func (w *Waterfall) advise(ctx context.Context, req model.AdvisoryRequest) (result model.AdvisoryResult) {
	if w.advisor == nil {
		return model.AdvisoryFailed(model.FailureDisabled, nil, "")
	}

	defer func() {
		if r := recover(); r != nil {
			result = model.AdvisoryFailed(model.FailureBadResponse, fmt.Errorf("advisor panic: %v", r), "")
		}
	}()

	return w.advisor.Advise(ctx, req)
}

func codeOrDefault(code string) string {
	if code == "" {
		return model.NoRegulatoryCode
	}
	return code
}

func riskOrDefault(level model.RiskLevel) model.RiskLevel {
	if level == "" {
		return model.RiskLow
	}
	return level
}
