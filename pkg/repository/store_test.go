package repository_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/memoria-lab/memoria/pkg/domain/interfaces"
	"github.com/memoria-lab/memoria/pkg/domain/model"
	"github.com/memoria-lab/memoria/pkg/domain/types"
	"github.com/memoria-lab/memoria/pkg/repository/firestore"
	"github.com/memoria-lab/memoria/pkg/repository/memory"
)

func testScope() model.Scope {
	return model.Scope{
		Actor:   "actor_ab12cd34ef56",
		Session: types.SessionID(fmt.Sprintf("sess-%d", time.Now().UnixNano())),
	}
}

func runTurnLogTest(t *testing.T, newStore func(t *testing.T) interfaces.Store) {
	t.Helper()

	t.Run("ListRecentTurns returns empty for unknown scope", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		turns, err := store.ListRecentTurns(ctx, "actor_0000000000ab", "no-such-session", 5)
		gt.NoError(t, err).Required()
		gt.Array(t, turns).Length(0)
	})

	t.Run("AppendTurn then ListRecentTurns preserves order and roles", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		scope := testScope()

		texts := []struct {
			role types.Role
			text string
		}{
			{types.RoleUser, "my charger is broken"},
			{types.RoleAssistant, "sorry to hear that, which model?"},
			{types.RoleUser, "the USB-C one"},
		}
		for _, tt := range texts {
			turn := model.NewTurn(tt.role, tt.text)
			gt.NoError(t, store.AppendTurn(ctx, scope, turn)).Required()
			// CreatedAt ordering must be strict for replay.
			time.Sleep(5 * time.Millisecond)
		}

		turns, err := store.ListRecentTurns(ctx, scope.Actor, scope.Session, 10)
		gt.NoError(t, err).Required()
		gt.Array(t, turns).Length(3)
		for i, tt := range texts {
			gt.Value(t, turns[i].Role).Equal(tt.role)
			gt.Value(t, turns[i].Text).Equal(tt.text)
		}
	})

	t.Run("ListRecentTurns honors the window size", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		scope := testScope()

		for i := 0; i < 7; i++ {
			turn := model.NewTurn(types.RoleUser, fmt.Sprintf("turn %d", i))
			gt.NoError(t, store.AppendTurn(ctx, scope, turn)).Required()
			time.Sleep(5 * time.Millisecond)
		}

		turns, err := store.ListRecentTurns(ctx, scope.Actor, scope.Session, 5)
		gt.NoError(t, err).Required()
		gt.Array(t, turns).Length(5)
		gt.Value(t, turns[0].Text).Equal("turn 2")
		gt.Value(t, turns[4].Text).Equal("turn 6")
	})

	t.Run("AppendTurn rejects invalid input", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		gt.Error(t, store.AppendTurn(ctx, model.Scope{}, model.NewTurn(types.RoleUser, "hi")))
		gt.Error(t, store.AppendTurn(ctx, testScope(), model.Turn{Role: types.RoleUser}))
	})

	t.Run("sessions of the same actor are isolated", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		scopeA := testScope()
		scopeB := model.Scope{Actor: scopeA.Actor, Session: scopeA.Session + "-other"}

		gt.NoError(t, store.AppendTurn(ctx, scopeA, model.NewTurn(types.RoleUser, "in session A"))).Required()

		turns, err := store.ListRecentTurns(ctx, scopeB.Actor, scopeB.Session, 5)
		gt.NoError(t, err).Required()
		gt.Array(t, turns).Length(0)
	})
}

func TestMemoryStoreTurnLog(t *testing.T) {
	runTurnLogTest(t, func(t *testing.T) interfaces.Store {
		return memory.New()
	})
}

func TestFirestoreTurnLog(t *testing.T) {
	projectID := os.Getenv("TEST_FIRESTORE_PROJECT")
	if projectID == "" {
		t.Skip("TEST_FIRESTORE_PROJECT is not set")
	}

	runTurnLogTest(t, func(t *testing.T) interfaces.Store {
		prefix := fmt.Sprintf("test-%d-", time.Now().UnixNano())
		client, err := firestore.New(context.Background(), projectID, os.Getenv("TEST_FIRESTORE_DATABASE"),
			firestore.WithCollectionPrefix(prefix))
		gt.NoError(t, err).Required()
		t.Cleanup(func() {
			gt.NoError(t, client.Close())
		})
		return client
	})
}

func TestMemoryStoreRetrieve(t *testing.T) {
	ctx := context.Background()
	actor := types.ActorID("actor_ab12cd34ef56")

	t.Run("unknown namespace returns empty", func(t *testing.T) {
		store := memory.New()
		items, err := store.Retrieve(ctx, actor, "preferences/"+actor.String(), "anything", 3)
		gt.NoError(t, err).Required()
		gt.Array(t, items).Length(0)
	})

	t.Run("ranks by overlap and honors topK", func(t *testing.T) {
		store := memory.New()
		ns := "preferences/" + actor.String()
		store.Seed(actor,
			model.MemoryItem{Namespace: ns, Text: "prefers email over phone calls"},
			model.MemoryItem{Namespace: ns, Text: "prefers the black phone cover"},
			model.MemoryItem{Namespace: ns, Text: "lives in Osaka"},
		)

		items, err := store.Retrieve(ctx, actor, ns, "which phone cover do I like", 2)
		gt.NoError(t, err).Required()
		gt.Array(t, items).Length(2).Required()
		gt.Value(t, items[0].Text).Equal("prefers the black phone cover")
		gt.Bool(t, items[0].Score >= items[1].Score).True()
	})

	t.Run("namespaces are isolated", func(t *testing.T) {
		store := memory.New()
		store.Seed(actor, model.MemoryItem{Namespace: "facts/" + actor.String(), Text: "phone purchased in June"})

		items, err := store.Retrieve(ctx, actor, "preferences/"+actor.String(), "phone", 3)
		gt.NoError(t, err).Required()
		gt.Array(t, items).Length(0)
	})

	t.Run("rejects non-positive topK", func(t *testing.T) {
		store := memory.New()
		_, err := store.Retrieve(ctx, actor, "preferences/x", "q", 0)
		gt.Error(t, err)
	})
}
