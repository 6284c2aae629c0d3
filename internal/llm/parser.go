package llm

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Veraticus/finnet/internal/model"
)

var codePattern = regexp.MustCompile(`\b\d{4}\b`)

// ParseAdvisoryCode extracts a category from a raw completion. It accepts a
// bare code, a code embedded in prose ("Code: 1215."), or a category name.
// A response naming only codes outside the enumeration is rejected.
func ParseAdvisoryCode(raw string, categories []model.AdvisoryCategory) (model.AdvisoryCategory, error) {
	content := cleanResponse(raw)
	if content == "" {
		return model.AdvisoryCategory{}, fmt.Errorf("%w: empty response", ErrUnparseable)
	}

	byCode := make(map[string]model.AdvisoryCategory, len(categories))
	for _, cat := range categories {
		byCode[cat.Code] = cat
	}

	if cat, ok := byCode[content]; ok {
		return cat, nil
	}

	codes := codePattern.FindAllString(content, -1)
	for _, code := range codes {
		if cat, ok := byCode[code]; ok {
			return cat, nil
		}
	}

	lower := strings.ToLower(content)
	for _, cat := range categories {
		if cat.Name != "" && strings.Contains(lower, strings.ToLower(cat.Name)) {
			return cat, nil
		}
	}

	if len(codes) > 0 {
		return model.AdvisoryCategory{}, fmt.Errorf("%w: unknown code %q", ErrUnparseable, codes[0])
	}
	return model.AdvisoryCategory{}, fmt.Errorf("%w: %q", ErrUnparseable, truncate(content, 80))
}

// cleanResponse strips markdown fences, quotes and surrounding whitespace.
func cleanResponse(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.Trim(s, " \t\r\n`\"'.")
	return s
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
