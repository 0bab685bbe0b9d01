package driven

import "github.com/alexpineda/llmdump/internal/core/domain"

// AIConfigValidator checks LLM settings against the live provider before
// they are reported as usable.
type AIConfigValidator interface {
	// ValidateLLM pings the configured provider. An unconfigured LLM is
	// not an error.
	ValidateLLM(config *domain.LLMSettings) error
}
