package engine

import (
	"context"
	"strings"
	"sync"

	"github.com/Veraticus/finnet/internal/model"
)

// MockAdvisor is a test implementation of the Advisor interface.
// It answers from a description-keyword table, or fails with Failure when set.
type MockAdvisor struct {
	Responses map[string]model.AdvisoryCategory
	Failure   model.AdvisoryFailure
	calls     []model.AdvisoryRequest
	mu        sync.Mutex
}

// NewMockAdvisor creates a mock advisor that knows the default ITRS enumeration
// by a few obvious keywords.
func NewMockAdvisor() *MockAdvisor {
	cats := model.DefaultAdvisoryCategories()
	return &MockAdvisor{
		Responses: map[string]model.AdvisoryCategory{
			"FAMILY":  cats[0],
			"CONSULT": cats[1],
			"COURSE":  cats[2],
			"MEDICAL": cats[3],
			"IMPORT":  cats[4],
		},
	}
}

// Advise records the call and returns the configured answer.
func (m *MockAdvisor) Advise(_ context.Context, req model.AdvisoryRequest) model.AdvisoryResult {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, req)

	if m.Failure != model.FailureNone {
		return model.AdvisoryFailed(m.Failure, nil, "")
	}

	desc := strings.ToUpper(req.Description)
	for keyword, cat := range m.Responses {
		if strings.Contains(desc, keyword) {
			return model.AdvisoryResult{Category: cat, Raw: cat.Code}
		}
	}
	return model.AdvisoryFailed(model.FailureBadResponse, nil, "UNKNOWN")
}

// Calls returns the requests seen so far.
func (m *MockAdvisor) Calls() []model.AdvisoryRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.AdvisoryRequest, len(m.calls))
	copy(out, m.calls)
	return out
}
