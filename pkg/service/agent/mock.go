package agent

import (
	"context"

	"github.com/memoria-lab/memoria/pkg/domain/model"
)

// Mock is a test double for Engine. ReplyFunc receives the exact working
// context and user text so tests can assert what the engine was shown.
type Mock struct {
	ReplyFunc func(ctx context.Context, wc *model.WorkingContext, userText string) (string, error)
}

var _ Engine = &Mock{}

func (x *Mock) Reply(ctx context.Context, wc *model.WorkingContext, userText string) (string, error) {
	if x.ReplyFunc == nil {
		return "ok", nil
	}
	return x.ReplyFunc(ctx, wc, userText)
}
