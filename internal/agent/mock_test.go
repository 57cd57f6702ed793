package agent

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/fraudsight/fraudsight/internal/llm"
)

// scriptedProvider returns canned responses in order. Responses are shared
// between Complete and Stream; Stream delivers the content word by word.
type scriptedProvider struct {
	mu        sync.Mutex
	responses []scriptedResponse
	requests  []llm.CompletionRequest
}

type scriptedResponse struct {
	content string
	err     error
}

func (p *scriptedProvider) next(req llm.CompletionRequest) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.requests = append(p.requests, req)
	if len(p.responses) == 0 {
		return "", errors.New("scripted provider exhausted")
	}
	r := p.responses[0]
	p.responses = p.responses[1:]
	return r.content, r.err
}

func (p *scriptedProvider) Complete(_ context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	content, err := p.next(req)
	if err != nil {
		return nil, err
	}
	return &llm.CompletionResponse{Content: content}, nil
}

func (p *scriptedProvider) Stream(_ context.Context, req llm.CompletionRequest, fn llm.FragmentFunc) (string, error) {
	content, err := p.next(req)
	if err != nil {
		return "", err
	}
	if fn != nil {
		words := strings.SplitAfter(content, " ")
		for _, w := range words {
			if err := fn(w); err != nil {
				return "", err
			}
		}
	}
	return content, nil
}

func (p *scriptedProvider) Name() string { return "scripted" }

func (p *scriptedProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.requests)
}

func testLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}
