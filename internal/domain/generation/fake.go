package generation

import (
	"context"
	"sync"
)

// Fake is a deterministic Provider for tests and offline runs.
// With Err set it fails every call; otherwise it answers Response, or
// echoes a fixed prefix plus the first line of the prompt when Response is empty.
type Fake struct {
	Response string
	Err      error

	mu      sync.Mutex
	prompts []string
}

// Generate implements Provider.
func (f *Fake) Generate(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if f.Err != nil {
		return "", f.Err
	}
	if f.Response != "" {
		return f.Response, nil
	}
	first := prompt
	for i, r := range prompt {
		if r == '\n' {
			first = prompt[:i]
			break
		}
	}
	return "# Generated\n\n" + first, nil
}

// Name implements Provider.
func (f *Fake) Name() string { return "fake" }

// Calls returns the number of Generate calls.
func (f *Fake) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

// LastPrompt returns the most recent prompt, or "".
func (f *Fake) LastPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.prompts) == 0 {
		return ""
	}
	return f.prompts[len(f.prompts)-1]
}
