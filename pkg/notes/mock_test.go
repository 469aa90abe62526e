package notes

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/otherjamesbrown/minute-cli/pkg/llm"
)

// fakeProvider scripts model responses per request. The respond function
// receives the request and returns the raw JSON the "model" produced.
type fakeProvider struct {
	mu      sync.Mutex
	calls   []llm.CompletionRequest
	respond func(req llm.CompletionRequest) (string, error)
}

func (f *fakeProvider) Name() string { return "fake/test-model" }

func (f *fakeProvider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	f.record(req)
	content, err := f.respond(req)
	if err != nil {
		return nil, err
	}
	return &llm.CompletionResponse{Content: content, Model: "test-model"}, nil
}

func (f *fakeProvider) CompleteStructured(ctx context.Context, req llm.CompletionRequest, target interface{}) error {
	f.record(req)
	content, err := f.respond(req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(content), target); err != nil {
		return fmt.Errorf("parse structured response: %w", err)
	}
	return nil
}

func (f *fakeProvider) record(req llm.CompletionRequest) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)
}

func (f *fakeProvider) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeProvider) callsForStage(stage string) []llm.CompletionRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []llm.CompletionRequest
	for _, c := range f.calls {
		if c.Stage == stage {
			out = append(out, c)
		}
	}
	return out
}

// mustJSON marshals v for scripted responses.
func mustJSON(v interface{}) string {
	out, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(out)
}
