package enrichment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ErrChainExhausted is returned when every model in the chain failed
// or produced unusable content
var ErrChainExhausted = errors.New("all models in the chain failed")

// minUsableLength is the shortest generated answer worth keeping.
// Anything shorter is treated as a refusal or truncation and the chain
// moves on to the next model.
const minUsableLength = 50

// ProviderError carries the HTTP status of a failed provider call so
// the chain can tell transient failures from permanent ones
type ProviderError struct {
	Provider   string
	StatusCode int
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s returned status %d", e.Provider, e.StatusCode)
}

// Transient reports whether the call is worth retrying on another
// model. Rate limits and server errors are transient; other 4xx
// responses indicate a request that will fail everywhere.
func (e *ProviderError) Transient() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}

// ModelClient generates a completion for a prompt using a named model
type ModelClient interface {
	Generate(ctx context.Context, model, prompt string) (string, error)
}

// ContentGenerator walks an ordered list of models until one produces
// usable content. Each attempt gets its own timeout so a hung provider
// cannot stall the whole chain.
type ContentGenerator struct {
	client         ModelClient
	models         []string
	attemptTimeout time.Duration
	logger         *zap.Logger
}

func NewContentGenerator(client ModelClient, models []string, attemptTimeout time.Duration, logger *zap.Logger) *ContentGenerator {
	return &ContentGenerator{
		client:         client,
		models:         models,
		attemptTimeout: attemptTimeout,
		logger:         logger,
	}
}

// Generate returns the first usable completion and the model that
// produced it. Permanent provider errors abort the chain immediately;
// transient errors and short answers advance to the next model.
func (g *ContentGenerator) Generate(ctx context.Context, prompt string) (string, string, error) {
	if len(g.models) == 0 {
		return "", "", ErrChainExhausted
	}

	for _, model := range g.models {
		content, err := g.attempt(ctx, model, prompt)
		if err != nil {
			var provErr *ProviderError
			if errors.As(err, &provErr) && !provErr.Transient() {
				return "", "", fmt.Errorf("generation failed permanently: %w", err)
			}
			if ctx.Err() != nil {
				return "", "", ctx.Err()
			}
			g.logger.Warn("model attempt failed, trying next",
				zap.String("model", model),
				zap.Error(err),
			)
			continue
		}

		if len(strings.TrimSpace(content)) < minUsableLength {
			g.logger.Warn("model produced unusable content, trying next",
				zap.String("model", model),
				zap.Int("length", len(content)),
			)
			continue
		}

		return content, model, nil
	}

	return "", "", ErrChainExhausted
}

func (g *ContentGenerator) attempt(ctx context.Context, model, prompt string) (string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, g.attemptTimeout)
	defer cancel()

	return g.client.Generate(attemptCtx, model, prompt)
}
