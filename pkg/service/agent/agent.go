package agent

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/memoria-lab/memoria/pkg/domain/model"
)

// Engine produces the assistant reply for one turn. The working context
// carries replayed history; the user text may already be augmented with
// retrieved memory.
type Engine interface {
	Reply(ctx context.Context, wc *model.WorkingContext, userText string) (string, error)
}

// LLMEngine drives a gollem LLM client. The working context is rendered
// into the system prompt so the model sees replayed history and the
// standing instruction as background, not as user input.
type LLMEngine struct {
	client       gollem.LLMClient
	systemPrompt string
}

var _ Engine = &LLMEngine{}

type Option func(*LLMEngine)

// WithSystemPrompt sets the base system prompt placed before the rendered
// working context.
func WithSystemPrompt(prompt string) Option {
	return func(x *LLMEngine) {
		x.systemPrompt = prompt
	}
}

const defaultSystemPrompt = "You are a helpful assistant. Answer the user's request directly and concisely."

func New(client gollem.LLMClient, options ...Option) *LLMEngine {
	engine := &LLMEngine{
		client:       client,
		systemPrompt: defaultSystemPrompt,
	}
	for _, opt := range options {
		opt(engine)
	}
	return engine
}

func (x *LLMEngine) Reply(ctx context.Context, wc *model.WorkingContext, userText string) (string, error) {
	prompt := x.systemPrompt
	if wc != nil && !wc.IsEmpty() {
		prompt += "\n\n" + wc.Render()
	}

	ag := gollem.New(x.client, gollem.WithSystemPrompt(prompt))
	resp, err := ag.Execute(ctx, gollem.Text(userText))
	if err != nil {
		return "", goerr.Wrap(err, "failed to execute agent")
	}
	return strings.Join(resp.Texts, "\n"), nil
}
