// Package throttle provides an LLMService decorator that caps the request
// rate sent to a provider.
package throttle

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/alexpineda/llmdump/internal/core/ports/driven"
)

var _ driven.LLMService = (*LLMService)(nil)

// LLMService delays Generate and Chat calls so that no more than the
// configured number of requests per minute reach the wrapped service.
// Ping, ModelName and Close pass straight through.
type LLMService struct {
	next    driven.LLMService
	limiter *rate.Limiter
}

// Wrap returns next limited to requestsPerMinute. A non-positive rate
// returns next unchanged.
func Wrap(next driven.LLMService, requestsPerMinute int) driven.LLMService {
	if next == nil || requestsPerMinute <= 0 {
		return next
	}
	every := time.Minute / time.Duration(requestsPerMinute)
	return &LLMService{
		next:    next,
		limiter: rate.NewLimiter(rate.Every(every), 1),
	}
}

// Generate waits for a token then delegates.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	if err := s.wait(ctx); err != nil {
		return "", err
	}
	return s.next.Generate(ctx, prompt, opts)
}

// Chat waits for a token then delegates.
func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	if err := s.wait(ctx); err != nil {
		return "", err
	}
	return s.next.Chat(ctx, messages, opts)
}

func (s *LLMService) wait(ctx context.Context) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("throttle: %w", err)
	}
	return nil
}

// ModelName returns the wrapped service's model.
func (s *LLMService) ModelName() string {
	return s.next.ModelName()
}

// Ping is not rate limited.
func (s *LLMService) Ping(ctx context.Context) error {
	return s.next.Ping(ctx)
}

// Close closes the wrapped service.
func (s *LLMService) Close() error {
	return s.next.Close()
}
