package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/Veraticus/finnet/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubClient returns a fixed response or error and counts calls.
type stubClient struct {
	err      error
	response string
	delay    time.Duration
	calls    int
	mu       sync.Mutex
}

func (s *stubClient) Complete(ctx context.Context, _ string) (string, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()

	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return "", fmt.Errorf("request failed: %w", ctx.Err())
		}
	}
	return s.response, s.err
}

func (s *stubClient) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// timeoutErr satisfies net.Error.
type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func TestAdvisor_Advise(t *testing.T) {
	req := model.AdvisoryRequest{Description: "Payment for web design course", Amount: decimal.NewFromInt(25000)}

	tests := []struct {
		client      *stubClient
		name        string
		wantCode    string
		wantFailure model.AdvisoryFailure
		timeout     time.Duration
	}{
		{
			name:     "success",
			client:   &stubClient{response: "2210"},
			wantCode: "2210",
		},
		{
			name:        "network error",
			client:      &stubClient{err: errors.New("connection refused")},
			wantFailure: model.FailureNetwork,
		},
		{
			name:        "non-success status",
			client:      &stubClient{err: &StatusError{Provider: "ollama", Code: 503, Body: "loading"}},
			wantFailure: model.FailureNetwork,
		},
		{
			name:        "transport timeout",
			client:      &stubClient{err: fmt.Errorf("request failed: %w", timeoutErr{})},
			wantFailure: model.FailureTimeout,
		},
		{
			name:        "deadline exceeded",
			client:      &stubClient{response: "2210", delay: time.Second},
			timeout:     20 * time.Millisecond,
			wantFailure: model.FailureTimeout,
		},
		{
			name:        "unparseable response",
			client:      &stubClient{response: "I am not sure"},
			wantFailure: model.FailureBadResponse,
		},
		{
			name:        "malformed envelope",
			client:      &stubClient{err: fmt.Errorf("%w: unexpected end of JSON input", ErrMalformedResponse)},
			wantFailure: model.FailureBadResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			advisor := NewAdvisor(tt.client, Config{Timeout: tt.timeout, CacheTTL: -1}, slog.Default())

			result := advisor.Advise(context.Background(), req)

			assert.Equal(t, 1, tt.client.callCount(), "exactly one provider call")
			if tt.wantFailure == model.FailureNone {
				require.True(t, result.OK())
				assert.Equal(t, tt.wantCode, result.Category.Code)
				return
			}
			assert.False(t, result.OK())
			assert.Equal(t, tt.wantFailure, result.Failure)
			assert.Error(t, result.Err)
		})
	}
}

func TestAdvisor_CachesSuccessOnly(t *testing.T) {
	client := &stubClient{response: "4010"}
	advisor := NewAdvisor(client, Config{CacheTTL: time.Minute}, slog.Default())
	req := model.AdvisoryRequest{Description: "family support monthly", Amount: decimal.NewFromInt(150000)}

	first := advisor.Advise(context.Background(), req)
	second := advisor.Advise(context.Background(), req)

	require.True(t, first.OK())
	assert.False(t, first.Cached)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Category, second.Category)
	assert.Equal(t, 1, client.callCount())

	failing := &stubClient{err: errors.New("boom")}
	advisor = NewAdvisor(failing, Config{CacheTTL: time.Minute}, slog.Default())
	advisor.Advise(context.Background(), req)
	advisor.Advise(context.Background(), req)
	assert.Equal(t, 2, failing.callCount())
}

func TestAdvisor_RateLimited(t *testing.T) {
	client := &stubClient{response: "4010"}
	advisor := NewAdvisor(client, Config{RateLimit: 1, CacheTTL: -1, Timeout: 50 * time.Millisecond}, slog.Default())

	first := advisor.Advise(context.Background(), model.AdvisoryRequest{Description: "a", Amount: decimal.NewFromInt(1)})
	second := advisor.Advise(context.Background(), model.AdvisoryRequest{Description: "b", Amount: decimal.NewFromInt(1)})

	assert.True(t, first.OK())
	assert.Equal(t, model.FailureRateLimited, second.Failure)
	assert.Equal(t, 1, client.callCount())
}

func TestAdvisor_DefaultCategories(t *testing.T) {
	advisor := NewAdvisor(&stubClient{}, Config{}, nil)
	assert.Equal(t, model.DefaultAdvisoryCategories(), advisor.Categories())
}

func TestMockClient(t *testing.T) {
	mock := NewMockClient()
	cats := model.DefaultAdvisoryCategories()

	tests := []struct {
		description string
		want        string
	}{
		{"family support monthly", "4010"},
		{"Payment for web design course", "2210"},
		{"Consulting fees", "1215"},
		{"hospital bill", "2250"},
		{"SAVINGS INTEREST", "UNKNOWN"},
	}

	for _, tt := range tests {
		prompt := BuildPrompt(model.AdvisoryRequest{Description: tt.description, Amount: decimal.NewFromInt(1)}, cats)
		got, err := mock.Complete(context.Background(), prompt)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.description)
	}
	assert.Equal(t, len(tests), mock.Calls())
}

func TestNewClient(t *testing.T) {
	tests := []struct {
		name    string
		errMsg  string
		config  Config
		wantErr bool
	}{
		{name: "default provider is ollama", config: Config{}},
		{name: "ollama", config: Config{Provider: "Ollama"}},
		{name: "openai", config: Config{Provider: "openai", APIKey: "k"}},
		{name: "openai without key", config: Config{Provider: "openai"}, wantErr: true},
		{name: "anthropic", config: Config{Provider: "anthropic", APIKey: "k"}},
		{name: "anthropic without key", config: Config{Provider: "anthropic"}, wantErr: true},
		{name: "mock", config: Config{Provider: "mock"}},
		{name: "unknown", config: Config{Provider: "bard"}, wantErr: true, errMsg: "unsupported LLM provider: bard"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.config)
			if tt.wantErr {
				require.Error(t, err)
				if tt.errMsg != "" {
					assert.Equal(t, tt.errMsg, err.Error())
				}
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, client)
		})
	}
}
