package config

import (
	"fmt"
	"os"

	"github.com/Veraticus/finnet/internal/common"
	"github.com/Veraticus/finnet/internal/model"
	"github.com/Veraticus/finnet/internal/pattern"
	"gopkg.in/yaml.v3"
)

// ReferenceData is the static regulatory reference data: the product code
// map (Tier 1), the keyword rule table (Tier 2) and the advisory enumeration
// (Tier 3).
type ReferenceData struct {
	ProductCodes       model.CategoryMapping    `yaml:"product_codes"`
	KeywordRules       []model.KeywordRule      `yaml:"keyword_rules"`
	AdvisoryCategories []model.AdvisoryCategory `yaml:"advisory_categories"`
}

// DefaultReferenceData returns the built-in reference data.
func DefaultReferenceData() *ReferenceData {
	return &ReferenceData{
		ProductCodes:       model.DefaultCategoryMapping(),
		KeywordRules:       pattern.DefaultRules(),
		AdvisoryCategories: model.DefaultAdvisoryCategories(),
	}
}

// LoadReferenceData reads a reference data YAML file. Sections missing from
// the file keep their built-in defaults; an empty path returns the defaults.
func LoadReferenceData(path string) (*ReferenceData, error) {
	ref := DefaultReferenceData()
	if path == "" {
		return ref, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading reference data: %w", err)
	}

	var file ReferenceData
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: parsing reference data %s: %v", common.ErrInvalidConfig, path, err)
	}

	if file.ProductCodes != nil {
		ref.ProductCodes = file.ProductCodes
	}
	if file.KeywordRules != nil {
		ref.KeywordRules = file.KeywordRules
	}
	if file.AdvisoryCategories != nil {
		ref.AdvisoryCategories = file.AdvisoryCategories
	}

	if err := ref.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", common.ErrInvalidConfig, path, err)
	}
	return ref, nil
}

// Validate checks the reference data for internal consistency.
func (r *ReferenceData) Validate() error {
	if err := r.ProductCodes.Validate(); err != nil {
		return err
	}
	if _, err := pattern.NewMatcher(r.KeywordRules); err != nil {
		return err
	}

	seen := make(map[string]bool, len(r.AdvisoryCategories))
	for _, cat := range r.AdvisoryCategories {
		if cat.Code == "" || cat.Name == "" {
			return fmt.Errorf("advisory category needs both code and name")
		}
		if cat.Code == model.CodeManualReview {
			return fmt.Errorf("advisory code %s is reserved", cat.Code)
		}
		if seen[cat.Code] {
			return fmt.Errorf("duplicate advisory code %s", cat.Code)
		}
		seen[cat.Code] = true
	}
	return nil
}

// Save writes reference data as YAML.
func (r *ReferenceData) Save(path string) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshaling reference data: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing reference data: %w", err)
	}
	return nil
}
