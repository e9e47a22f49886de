package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/memoria-lab/memoria/pkg/cli/config"
	"github.com/memoria-lab/memoria/pkg/domain/model"
)

func defaults() (int, int, int, time.Duration) {
	return model.DefaultReplayDepth, model.DefaultTopK, model.DefaultBudgetChars, model.DefaultTimeout
}

func TestRecall_Configure(t *testing.T) {
	t.Run("defaults without a policy file", func(t *testing.T) {
		depth, topK, budget, timeout := defaults()
		cfg := config.NewRecallForTest("", depth, topK, budget, timeout)

		policy, err := cfg.Configure()
		gt.NoError(t, err)
		gt.Value(t, policy).Equal(model.DefaultRecallPolicy())
	})

	t.Run("flag overrides", func(t *testing.T) {
		_, topK, budget, timeout := defaults()
		cfg := config.NewRecallForTest("", 10, topK, budget, timeout)

		policy, err := cfg.Configure()
		gt.NoError(t, err)
		gt.Number(t, policy.ReplayDepth).Equal(10)
		gt.Number(t, policy.TopK).Equal(model.DefaultTopK)
	})

	t.Run("loads policy file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "policy.toml")
		body := `
replay_depth = 8
timeout = "500ms"

[[namespace]]
kind = "profile"
template = "profile/{actor}"
header = "Known profile facts:"
`
		gt.NoError(t, os.WriteFile(path, []byte(body), 0600))

		depth, topK, budget, timeout := defaults()
		cfg := config.NewRecallForTest(path, depth, topK, budget, timeout)

		policy, err := cfg.Configure()
		gt.NoError(t, err)
		gt.Number(t, policy.ReplayDepth).Equal(8)
		gt.Value(t, policy.Timeout).Equal(500 * time.Millisecond)
		gt.Array(t, policy.Namespaces).Length(1)
		gt.Value(t, policy.Namespaces[0].Kind).Equal("profile")
		// Unset scalars keep their defaults.
		gt.Number(t, policy.TopK).Equal(model.DefaultTopK)
	})

	t.Run("rejects invalid policy file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "policy.toml")
		body := `
[[namespace]]
kind = "broken"
template = "no-actor-placeholder"
header = "Broken:"
`
		gt.NoError(t, os.WriteFile(path, []byte(body), 0600))

		depth, topK, budget, timeout := defaults()
		cfg := config.NewRecallForTest(path, depth, topK, budget, timeout)

		_, err := cfg.Configure()
		gt.Error(t, err)
	})

	t.Run("rejects missing policy file", func(t *testing.T) {
		depth, topK, budget, timeout := defaults()
		cfg := config.NewRecallForTest("/no/such/policy.toml", depth, topK, budget, timeout)

		_, err := cfg.Configure()
		gt.Error(t, err)
	})
}

func TestRepository_Configure(t *testing.T) {
	t.Run("memory backend", func(t *testing.T) {
		cfg := config.NewRepositoryForTest("memory", "", "", "")
		store, err := cfg.Configure(t.Context(), nil)
		gt.NoError(t, err)
		gt.Value(t, store).NotNil()
		gt.NoError(t, store.Close())
	})

	t.Run("firestore backend requires project ID", func(t *testing.T) {
		cfg := config.NewRepositoryForTest("firestore", "", "", "")
		_, err := cfg.Configure(t.Context(), nil)
		gt.Error(t, err)
	})

	t.Run("unknown backend", func(t *testing.T) {
		cfg := config.NewRepositoryForTest("redis", "", "", "")
		_, err := cfg.Configure(t.Context(), nil)
		gt.Error(t, err)
	})
}

func TestGemini_Configure(t *testing.T) {
	t.Run("returns nil client when project ID is empty", func(t *testing.T) {
		cfg := config.NewGeminiForTest("", "us-central1")
		client, err := cfg.Configure(t.Context())
		gt.NoError(t, err)
		gt.Value(t, client).Nil()
	})

	t.Run("returns flags", func(t *testing.T) {
		cfg := config.NewGeminiForTest("", "")
		flags := cfg.Flags()
		gt.Value(t, len(flags)).Equal(2)
	})
}
