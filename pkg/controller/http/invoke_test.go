package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	httpctrl "github.com/memoria-lab/memoria/pkg/controller/http"
	"github.com/memoria-lab/memoria/pkg/domain/interfaces"
	"github.com/memoria-lab/memoria/pkg/domain/model"
	"github.com/memoria-lab/memoria/pkg/domain/types"
	"github.com/memoria-lab/memoria/pkg/repository/memory"
	"github.com/memoria-lab/memoria/pkg/service/agent"
	"github.com/memoria-lab/memoria/pkg/usecase"
)

type invokeResult struct {
	Result   string `json:"result"`
	Metadata struct {
		ActorID   string `json:"actor_id"`
		SessionID string `json:"session_id"`
		Memory    bool   `json:"memory"`
	} `json:"metadata"`
	Warnings []string `json:"warnings"`
}

func postInvoke(t *testing.T, server *httpctrl.Server, body string) (*httptest.ResponseRecorder, invokeResult) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/invoke", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	var result invokeResult
	if rec.Code == http.StatusOK {
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	}
	return rec, result
}

func TestInvokeWithIdentity(t *testing.T) {
	store := memory.New()
	var seen *model.WorkingContext
	engine := &agent.Mock{
		ReplyFunc: func(ctx context.Context, wc *model.WorkingContext, userText string) (string, error) {
			seen = wc
			return "hello alice", nil
		},
	}
	server := httpctrl.New(usecase.New(store), engine)

	rec, result := postInvoke(t, server, `{"prompt": "hi, I am alice@example.com"}`)

	gt.Number(t, rec.Code).Equal(http.StatusOK)
	gt.Value(t, result.Result).Equal("hello alice")
	gt.Bool(t, result.Metadata.Memory).True()
	gt.Bool(t, strings.HasPrefix(result.Metadata.ActorID, "actor_")).True()
	gt.Value(t, result.Metadata.SessionID).NotEqual("")
	gt.Array(t, result.Warnings).Length(0)

	// The engine received the standing instruction via the working context.
	gt.Value(t, seen).NotNil()
	gt.Value(t, seen.Instruction).NotEqual("")

	// The user turn is persisted under the returned scope; the assistant
	// turn follows asynchronously.
	scope := model.Scope{
		Actor:   types.ActorID(result.Metadata.ActorID),
		Session: types.SessionID(result.Metadata.SessionID),
	}
	waitForTurns(t, store, scope, 2)
}

func TestInvokeResumesSession(t *testing.T) {
	store := memory.New()
	engine := &agent.Mock{}
	server := httpctrl.New(usecase.New(store), engine)

	_, first := postInvoke(t, server, `{"prompt": "hello from alice@example.com"}`)
	scope := model.Scope{
		Actor:   types.ActorID(first.Metadata.ActorID),
		Session: types.SessionID(first.Metadata.SessionID),
	}
	waitForTurns(t, store, scope, 2)

	var replayed int
	engine.ReplyFunc = func(ctx context.Context, wc *model.WorkingContext, userText string) (string, error) {
		replayed = len(wc.Turns)
		return "welcome back", nil
	}

	body, err := json.Marshal(map[string]string{
		"prompt":     "it is alice@example.com again",
		"session_id": first.Metadata.SessionID,
	})
	gt.NoError(t, err)
	rec, second := postInvoke(t, server, string(body))

	gt.Number(t, rec.Code).Equal(http.StatusOK)
	gt.Value(t, second.Metadata.SessionID).Equal(first.Metadata.SessionID)
	gt.Number(t, replayed).Equal(2)
}

func TestInvokeWithoutIdentity(t *testing.T) {
	calls := 0
	store := &countingStore{calls: &calls}
	engine := &agent.Mock{
		ReplyFunc: func(ctx context.Context, wc *model.WorkingContext, userText string) (string, error) {
			return "anonymous reply", nil
		},
	}
	server := httpctrl.New(usecase.New(store), engine)

	rec, result := postInvoke(t, server, `{"prompt": "no identity here"}`)

	gt.Number(t, rec.Code).Equal(http.StatusOK)
	gt.Value(t, result.Result).Equal("anonymous reply")
	gt.Bool(t, result.Metadata.Memory).False()
	gt.Value(t, result.Metadata.ActorID).Equal("")
	gt.Number(t, calls).Equal(0)
}

func TestInvokeBadRequests(t *testing.T) {
	server := httpctrl.New(usecase.New(memory.New()), &agent.Mock{})

	rec, _ := postInvoke(t, server, `not json`)
	gt.Number(t, rec.Code).Equal(http.StatusBadRequest)

	rec, _ = postInvoke(t, server, `{"prompt": ""}`)
	gt.Number(t, rec.Code).Equal(http.StatusBadRequest)
}

func TestInvokeSurfacesWriteBackWarning(t *testing.T) {
	store := &countingStore{
		calls: new(int),
		appendErr: func() error {
			return goerr.New("store rejected write")
		},
	}
	server := httpctrl.New(usecase.New(store), &agent.Mock{})

	rec, result := postInvoke(t, server, `{"prompt": "please remember, alice@example.com"}`)

	// The reply succeeds; the memory failure shows up as a warning.
	gt.Number(t, rec.Code).Equal(http.StatusOK)
	gt.Value(t, result.Result).Equal("ok")
	gt.Array(t, result.Warnings).Length(1)
}

func TestHealthz(t *testing.T) {
	server := httpctrl.New(usecase.New(memory.New()), &agent.Mock{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	gt.Number(t, rec.Code).Equal(http.StatusOK)
}

func waitForTurns(t *testing.T, store interfaces.Store, scope model.Scope, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		turns, err := store.ListRecentTurns(context.Background(), scope.Actor, scope.Session, -1)
		gt.NoError(t, err)
		if len(turns) >= n {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("expected %d turns for scope %v", n, scope)
}

// countingStore counts store calls and optionally fails writes.
type countingStore struct {
	calls     *int
	appendErr func() error
}

func (s *countingStore) ListRecentTurns(ctx context.Context, actor types.ActorID, session types.SessionID, k int) ([]model.Turn, error) {
	*s.calls++
	return nil, nil
}

func (s *countingStore) Retrieve(ctx context.Context, actor types.ActorID, namespace, query string, topK int) ([]model.MemoryItem, error) {
	*s.calls++
	return nil, nil
}

func (s *countingStore) AppendTurn(ctx context.Context, scope model.Scope, turn model.Turn) error {
	*s.calls++
	if s.appendErr != nil {
		return s.appendErr()
	}
	return nil
}

func (s *countingStore) Close() error { return nil }
