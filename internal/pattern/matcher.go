package pattern

import (
	"fmt"
	"regexp"
	"strings"
)

// Matcher evaluates descriptions against an ordered list of keyword rules.
// It is immutable after construction and safe for concurrent use.
type Matcher struct {
	compiledRegex map[int]*regexp.Regexp
	rules         []Rule
}

// NewMatcher validates the rules and pre-compiles their patterns.
// Rule order is preserved: the first matching rule always wins.
func NewMatcher(rules []Rule) (*Matcher, error) {
	m := &Matcher{
		rules:         make([]Rule, len(rules)),
		compiledRegex: make(map[int]*regexp.Regexp),
	}

	for i, rule := range rules {
		if strings.TrimSpace(rule.Category) == "" {
			return nil, fmt.Errorf("rule %d (%s): category is required", i, rule.Name)
		}

		rule.AllOf = normalizeKeywords(rule.AllOf)
		rule.AnyOf = normalizeKeywords(rule.AnyOf)
		rule.Pattern = strings.TrimSpace(rule.Pattern)
		if !rule.HasPredicate() {
			return nil, fmt.Errorf("rule %d (%s): at least one non-blank all_of, any_of or pattern is required", i, rule.Name)
		}
		m.rules[i] = rule

		if rule.Pattern != "" {
			expr := rule.Pattern
			if !strings.HasPrefix(expr, "(?i)") {
				expr = "(?i)" + expr
			}
			re, err := regexp.Compile(expr)
			if err != nil {
				return nil, fmt.Errorf("rule %d (%s): invalid pattern: %w", i, rule.Name, err)
			}
			m.compiledRegex[i] = re
		}
	}

	return m, nil
}

// Match returns the first rule whose predicates hold for the description.
func (m *Matcher) Match(description string) (Rule, bool) {
	normalized := strings.ToUpper(description)

	for i, rule := range m.rules {
		if m.matchesRule(i, rule, normalized) {
			return rule, true
		}
	}

	return Rule{}, false
}

// Rules returns a copy of the rule table in evaluation order.
func (m *Matcher) Rules() []Rule {
	out := make([]Rule, len(m.rules))
	copy(out, m.rules)
	return out
}

func (m *Matcher) matchesRule(idx int, rule Rule, normalized string) bool {
	for _, kw := range rule.AllOf {
		if !strings.Contains(normalized, kw) {
			return false
		}
	}

	if len(rule.AnyOf) > 0 {
		found := false
		for _, kw := range rule.AnyOf {
			if strings.Contains(normalized, kw) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if re, ok := m.compiledRegex[idx]; ok && !re.MatchString(normalized) {
		return false
	}

	return true
}

// normalizeKeywords upper-cases keywords and drops blanks.
func normalizeKeywords(keywords []string) []string {
	if len(keywords) == 0 {
		return nil
	}
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToUpper(strings.TrimSpace(kw))
		if kw != "" {
			out = append(out, kw)
		}
	}
	return out
}
