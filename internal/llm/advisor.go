package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/finnet/internal/model"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// Advisor is the advisory classifier used by Tier 3 of the waterfall.
// It is safe for concurrent use.
type Advisor struct {
	client     Client
	cache      *gocache.Cache
	limiter    *rate.Limiter
	logger     *slog.Logger
	categories []model.AdvisoryCategory
	timeout    time.Duration
}

// New creates an Advisor together with the provider client named in cfg.
func New(cfg Config, logger *slog.Logger) (*Advisor, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	return NewAdvisor(client, cfg, logger), nil
}

// NewAdvisor wraps an existing client. A zero CacheTTL uses a 24h cache, a
// negative one disables caching; a RateLimit of zero or less disables limiting.
func NewAdvisor(client Client, cfg Config, logger *slog.Logger) *Advisor {
	if logger == nil {
		logger = slog.Default()
	}

	categories := cfg.Categories
	if len(categories) == 0 {
		categories = model.DefaultAdvisoryCategories()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	a := &Advisor{
		client:     client,
		logger:     logger,
		categories: categories,
		timeout:    timeout,
	}

	switch {
	case cfg.CacheTTL == 0:
		a.cache = gocache.New(24*time.Hour, time.Hour)
	case cfg.CacheTTL > 0:
		a.cache = gocache.New(cfg.CacheTTL, cfg.CacheTTL)
	}

	if cfg.RateLimit > 0 {
		burst := cfg.RateLimit
		if burst > 10 {
			burst = 10
		}
		a.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RateLimit)), burst)
	}

	return a
}

// Categories returns the enumeration offered to the provider.
func (a *Advisor) Categories() []model.AdvisoryCategory {
	out := make([]model.AdvisoryCategory, len(a.categories))
	copy(out, a.categories)
	return out
}

// Advise asks the provider for a purpose code. It makes at most one provider
// call, never retries, and never returns an error: every failure is reported
// in the result.
func (a *Advisor) Advise(ctx context.Context, req model.AdvisoryRequest) model.AdvisoryResult {
	key := cacheKey(req)
	if a.cache != nil {
		if v, found := a.cache.Get(key); found {
			if cat, ok := v.(model.AdvisoryCategory); ok {
				return model.AdvisoryResult{Category: cat, Cached: true}
			}
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	if a.limiter != nil {
		if err := a.limiter.Wait(callCtx); err != nil {
			kind := model.FailureRateLimited
			if callCtx.Err() != nil {
				kind = model.FailureTimeout
			}
			a.logger.Warn("advisory call not sent", "failure", kind, "error", err)
			return model.AdvisoryFailed(kind, err, "")
		}
	}

	raw, err := a.client.Complete(callCtx, BuildPrompt(req, a.categories))
	if err != nil {
		kind := classifyFailure(err)
		a.logger.Warn("advisory classifier failed",
			"failure", kind,
			"error", err)
		return model.AdvisoryFailed(kind, err, raw)
	}

	cat, err := ParseAdvisoryCode(raw, a.categories)
	if err != nil {
		a.logger.Warn("advisory classifier returned unusable response",
			"failure", model.FailureBadResponse,
			"response", truncate(raw, 80),
			"error", err)
		return model.AdvisoryFailed(model.FailureBadResponse, err, raw)
	}

	if a.cache != nil {
		a.cache.Set(key, cat, gocache.DefaultExpiration)
	}

	a.logger.Debug("advisory classification",
		"code", cat.Code,
		"category", cat.Name)

	return model.AdvisoryResult{Category: cat, Raw: raw}
}

func cacheKey(req model.AdvisoryRequest) string {
	return strings.ToUpper(strings.TrimSpace(req.Description)) + "|" + req.Amount.StringFixed(2)
}
