package llm

import (
	"context"
	"strconv"
	"strings"
	"sync"
)

// MockClient is a deterministic Client used for dry runs and tests. It reads
// the description back out of the prompt and answers with a code chosen by
// keyword, or "UNKNOWN" when nothing fits.
type MockClient struct {
	calls int
	mu    sync.Mutex
}

// NewMockClient creates a new mock provider.
func NewMockClient() *MockClient {
	return &MockClient{}
}

var mockKeywords = []struct {
	code     string
	keywords []string
}{
	{"4010", []string{"FAMILY", "PARENT", "SUPPORT"}},
	{"2210", []string{"COURSE", "TUITION", "SCHOOL", "UNIVERSITY", "EDUCATION"}},
	{"2250", []string{"HOSPITAL", "MEDICAL", "PHARMACY", "CLINIC"}},
	{"1215", []string{"SOFTWARE", "WEB", "CONSULT", "HOSTING", "IT SERVICE"}},
	{"1000", []string{"IMPORT", "GOODS", "SHIPMENT", "CARGO"}},
}

// Complete answers with a purpose code for the description in the prompt.
func (m *MockClient) Complete(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}

	desc := strings.ToUpper(extractDescription(prompt))
	for _, entry := range mockKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(desc, kw) {
				return entry.code, nil
			}
		}
	}
	return "UNKNOWN", nil
}

// Calls returns how many completions were requested.
func (m *MockClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// extractDescription pulls the quoted description line out of a prompt built by BuildPrompt.
func extractDescription(prompt string) string {
	for _, line := range strings.Split(prompt, "\n") {
		rest, ok := strings.CutPrefix(line, "Description: ")
		if !ok {
			continue
		}
		if unquoted, err := strconv.Unquote(rest); err == nil {
			return unquoted
		}
		return rest
	}
	return ""
}
