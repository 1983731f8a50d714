package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ppiankov/codescan/internal/llm"
)

// Environment variables consulted by Resolve.
const (
	EnvOpenAIKey     = "OPENAI_API_KEY"
	EnvOpenAIBaseURL = "OPENAI_BASE_URL"
	EnvOpenAIModel   = "OPENAI_MODEL"

	EnvAzureEndpoint   = "AZURE_OPENAI_ENDPOINT"
	EnvAzureKey        = "AZURE_OPENAI_API_KEY"
	EnvAzureDeployment = "AZURE_OPENAI_DEPLOYMENT"
	EnvAzureAPIVersion = "AZURE_OPENAI_API_VERSION"
)

const (
	defaultOpenAIBaseURL = "https://api.openai.com"
	defaultOpenAIModel   = "gpt-4-1106-preview"
	defaultAzureVersion  = "2024-02-01"
	defaultTemperature   = 0.2
)

// ValidationError reports a missing or invalid configuration value.
// It is fatal: scanning never starts when one is returned.
type ValidationError struct {
	Field  string // settings key, e.g. "api_key"
	Env    string // environment variable that could supply it, if any
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Env != "" {
		return fmt.Sprintf("config: %s %s (set %s or %s in the config file)", e.Field, e.Reason, e.Env, e.Field)
	}
	return fmt.Sprintf("config: %s %s", e.Field, e.Reason)
}

// Resolve builds the model client configuration from settings and the
// environment. Settings win over environment variables; defaults fill the
// rest. All missing required values are reported together.
func Resolve(s *Settings, getenv func(string) string) (llm.Config, error) {
	provider := strings.ToLower(strings.TrimSpace(s.Provider))
	if provider == "" {
		provider = llm.ProviderOpenAI
	}

	cfg := llm.Config{
		Provider:    provider,
		Temperature: defaultTemperature,
		MaxTokens:   s.MaxTokens,
		Timeout:     s.Timeout,
	}
	if s.Temperature != nil {
		cfg.Temperature = *s.Temperature
	}

	var errs []error
	if cfg.Temperature < 0 || cfg.Temperature > 2 {
		errs = append(errs, &ValidationError{Field: "temperature", Reason: fmt.Sprintf("must be between 0 and 2, got %g", cfg.Temperature)})
	}
	if cfg.MaxTokens < 0 {
		errs = append(errs, &ValidationError{Field: "max_tokens", Reason: "must not be negative"})
	}

	apiKey, err := resolveKey(s.APIKey, getenv)
	if err != nil {
		errs = append(errs, err)
	}

	switch provider {
	case llm.ProviderOpenAI:
		cfg.APIKey = firstNonEmpty(apiKey, getenv(EnvOpenAIKey))
		cfg.BaseURL = firstNonEmpty(s.BaseURL, getenv(EnvOpenAIBaseURL), defaultOpenAIBaseURL)
		cfg.Model = firstNonEmpty(s.Model, getenv(EnvOpenAIModel), defaultOpenAIModel)
		if cfg.APIKey == "" && err == nil {
			errs = append(errs, &ValidationError{Field: "api_key", Env: EnvOpenAIKey, Reason: "is required"})
		}

	case llm.ProviderAzure:
		cfg.APIKey = firstNonEmpty(apiKey, getenv(EnvAzureKey))
		cfg.BaseURL = firstNonEmpty(s.BaseURL, getenv(EnvAzureEndpoint))
		cfg.Deployment = firstNonEmpty(s.Deployment, getenv(EnvAzureDeployment))
		cfg.APIVersion = firstNonEmpty(s.APIVersion, getenv(EnvAzureAPIVersion), defaultAzureVersion)
		cfg.Model = s.Model
		if cfg.BaseURL == "" {
			errs = append(errs, &ValidationError{Field: "base_url", Env: EnvAzureEndpoint, Reason: "is required"})
		}
		if cfg.APIKey == "" && err == nil {
			errs = append(errs, &ValidationError{Field: "api_key", Env: EnvAzureKey, Reason: "is required"})
		}
		if cfg.Deployment == "" {
			errs = append(errs, &ValidationError{Field: "deployment", Env: EnvAzureDeployment, Reason: "is required"})
		}

	default:
		errs = append(errs, &ValidationError{Field: "provider", Reason: fmt.Sprintf("must be %q or %q, got %q", llm.ProviderOpenAI, llm.ProviderAzure, s.Provider)})
	}

	if len(errs) > 0 {
		return llm.Config{}, errors.Join(errs...)
	}
	return cfg, nil
}

// resolveKey expands "env:VAR_NAME" references.
func resolveKey(key string, getenv func(string) string) (string, error) {
	envKey, ok := strings.CutPrefix(key, "env:")
	if !ok {
		return key, nil
	}
	v := getenv(envKey)
	if v == "" {
		return "", &ValidationError{Field: "api_key", Reason: fmt.Sprintf("references env var %q which is not set", envKey)}
	}
	return v, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
