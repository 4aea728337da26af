// Package saga contains the processes that call the text-generation provider.
//
// Every saga follows the same order: read the profile, call the provider
// without holding any lock, fall back to a deterministic template when the
// provider fails, and only then apply the result through a command handler.
// A provider failure therefore never leaves a partial write behind.
package saga

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/pathwise/pathwise-hub/internal/application/command"
	"github.com/pathwise/pathwise-hub/internal/domain/account"
	"github.com/pathwise/pathwise-hub/internal/domain/generation"
	"github.com/pathwise/pathwise-hub/internal/domain/shared"
	"github.com/pathwise/pathwise-hub/pkg/logger"
)

// DefaultProviderTimeout bounds one provider call.
const DefaultProviderTimeout = 60 * time.Second

// TemplateNotice tells the user the content did not come from the provider.
const TemplateNotice = "AI generation is unavailable right now, so this was built from a template."

// ══════════════════════════════════════════════════════════════════════════════
// DEPENDENCIES
// ══════════════════════════════════════════════════════════════════════════════

// Deps bundles what the generation sagas need.
type Deps struct {
	Accounts account.Repository

	// Provider may be nil: every saga then runs in template mode.
	Provider generation.Provider
	Recorder *command.RecordGenerationHandler

	Timeout time.Duration
	Logger  *logger.Logger
}

func (d Deps) withDefaults() Deps {
	if d.Timeout <= 0 {
		d.Timeout = DefaultProviderTimeout
	}
	if d.Logger == nil {
		d.Logger = logger.Nop()
	}
	return d
}

// generator wraps the provider call shared by all sagas.
type generator struct {
	Deps
}

func newGenerator(d Deps) generator {
	return generator{Deps: d.withDefaults()}
}

// generate calls the provider with a timeout. Any failure, including an
// empty answer, is logged and reported as an error for the caller to fall back on.
func (g generator) generate(ctx context.Context, operation, prompt string) (string, error) {
	if g.Provider == nil {
		return "", shared.ErrProviderUnavailable
	}

	ctx, cancel := context.WithTimeout(ctx, g.Timeout)
	defer cancel()

	start := time.Now()
	text, err := g.Provider.Generate(ctx, prompt)
	if err == nil && strings.TrimSpace(text) == "" {
		err = shared.ErrEmptyGeneration
	}
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = shared.WrapError("generation", operation, shared.ErrTimeout, "provider timed out", err)
		}
		g.Logger.Warn("text generation failed, using template",
			logger.Operation(operation),
			logger.String("provider", g.Provider.Name()),
			logger.Latency(time.Since(start)),
			logger.Err(err),
		)
		return "", err
	}

	g.Logger.Debug("text generated",
		logger.Operation(operation),
		logger.String("provider", g.Provider.Name()),
		logger.Latency(time.Since(start)),
		logger.Int("chars", len(text)),
	)
	return text, nil
}
