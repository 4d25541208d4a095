package rewriting

import (
	"context"
	"strings"
	"sync"

	"github.com/jonathan/humane/internal/llm"
)

// fakeClient answers prompts with canned responses chosen by substring.
type fakeClient struct {
	mu        sync.Mutex
	responses map[string]string // prompt substring -> response
	failures  map[string]error  // prompt substring -> error
	prompts   []string
	tiers     []llm.ModelTier
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		responses: make(map[string]string),
		failures:  make(map[string]error),
	}
}

func (f *fakeClient) respond(prompt string, tier llm.ModelTier) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	f.tiers = append(f.tiers, tier)

	for key, err := range f.failures {
		if strings.Contains(prompt, key) {
			return "", err
		}
	}
	for key, resp := range f.responses {
		if strings.Contains(prompt, key) {
			return resp, nil
		}
	}
	return "", nil
}

func (f *fakeClient) GenerateContent(_ context.Context, prompt string, tier llm.ModelTier) (string, error) {
	return f.respond(prompt, tier)
}

func (f *fakeClient) GenerateJSON(_ context.Context, prompt string, tier llm.ModelTier) (string, error) {
	return f.respond(prompt, tier)
}

func (f *fakeClient) GetModel(tier llm.ModelTier) string {
	return "fake-" + string(tier)
}

func (f *fakeClient) Close() error {
	return nil
}

func (f *fakeClient) promptCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}
