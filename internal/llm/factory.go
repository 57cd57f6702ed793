package llm

import (
	"fmt"
	"os"

	"github.com/fraudsight/fraudsight/internal/config"
)

// NewFromConfig builds the provider chain described by the configuration:
// an OpenAI-compatible client wrapped with transient-error retries and,
// when rate_limit_rpm is set, a token bucket rate limiter.
func NewFromConfig(cfg *config.Config) (Provider, error) {
	apiKey := ""
	if envVar := config.APIKeyEnvVar(cfg.Provider); envVar != "" {
		apiKey = os.Getenv(envVar)
		if apiKey == "" {
			return nil, fmt.Errorf("%s environment variable is not set", envVar)
		}
	}

	var provider Provider = NewOpenAIProvider(string(cfg.Provider), apiKey, cfg.ResolveBaseURL(), cfg.Model)
	provider = NewRetryingProvider(provider)
	if cfg.RateLimitRPM > 0 {
		provider = NewRateLimitedProvider(provider, cfg.RateLimitRPM)
	}

	return provider, nil
}
