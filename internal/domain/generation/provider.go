// Package generation contains the text-generation port and everything that is
// deterministic around it: prompt construction, curated resources, resume styles
// and the template generators used when the provider cannot answer.
package generation

import "context"

// Provider produces prose for a prompt. Implementations live in infrastructure/external.
type Provider interface {
	// Generate returns the generated text or an error. An empty string is never
	// returned together with a nil error.
	Generate(ctx context.Context, prompt string) (string, error)

	// Name identifies the provider in logs.
	Name() string
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context, prompt string) (string, error)

// Generate implements Provider.
func (f ProviderFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// Name implements Provider.
func (f ProviderFunc) Name() string {
	return "func"
}
