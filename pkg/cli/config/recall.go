package config

import (
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/memoria-lab/memoria/pkg/domain/model"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"
)

// Recall holds CLI flags for the recall policy. A TOML policy file defines
// the namespace set; the scalar knobs can be overridden per flag.
type Recall struct {
	policyFile  string
	replayDepth int
	topK        int
	budgetChars int
	timeout     time.Duration
}

// policyFileFormat is the TOML shape of a policy file:
//
//	replay_depth = 5
//	top_k = 3
//	budget_chars = 4000
//	timeout = "2s"
//
//	[[namespace]]
//	kind = "preferences"
//	template = "preferences/{actor}"
//	header = "These are known user preferences:"
type policyFileFormat struct {
	ReplayDepth int               `toml:"replay_depth"`
	TopK        int               `toml:"top_k"`
	BudgetChars int               `toml:"budget_chars"`
	Timeout     string            `toml:"timeout"`
	Namespaces  []model.Namespace `toml:"namespace"`
}

// Flags returns CLI flags for recall configuration
func (x *Recall) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "recall-policy",
			Usage:       "Path to a TOML recall policy file",
			Sources:     cli.EnvVars("MEMORIA_RECALL_POLICY"),
			Destination: &x.policyFile,
		},
		&cli.IntFlag{
			Name:        "recall-replay-depth",
			Usage:       "Number of recent turns replayed at session start",
			Value:       model.DefaultReplayDepth,
			Sources:     cli.EnvVars("MEMORIA_RECALL_REPLAY_DEPTH"),
			Destination: &x.replayDepth,
		},
		&cli.IntFlag{
			Name:        "recall-top-k",
			Usage:       "Per-namespace retrieval size",
			Value:       model.DefaultTopK,
			Sources:     cli.EnvVars("MEMORIA_RECALL_TOP_K"),
			Destination: &x.topK,
		},
		&cli.IntFlag{
			Name:        "recall-budget-chars",
			Usage:       "Character budget for injected retrieval text per turn",
			Value:       model.DefaultBudgetChars,
			Sources:     cli.EnvVars("MEMORIA_RECALL_BUDGET_CHARS"),
			Destination: &x.budgetChars,
		},
		&cli.DurationFlag{
			Name:        "recall-timeout",
			Usage:       "Per-read store timeout before degrading to empty results",
			Value:       model.DefaultTimeout,
			Sources:     cli.EnvVars("MEMORIA_RECALL_TIMEOUT"),
			Destination: &x.timeout,
		},
	}
}

// Configure builds the recall policy: defaults, then the policy file, then
// flag overrides for the scalar knobs.
func (x *Recall) Configure() (model.RecallPolicy, error) {
	policy := model.DefaultRecallPolicy()

	if x.policyFile != "" {
		loaded, err := loadPolicyFile(x.policyFile)
		if err != nil {
			return model.RecallPolicy{}, err
		}
		policy = loaded
	}

	if x.replayDepth != model.DefaultReplayDepth {
		policy.ReplayDepth = x.replayDepth
	}
	if x.topK != model.DefaultTopK {
		policy.TopK = x.topK
	}
	if x.budgetChars != model.DefaultBudgetChars {
		policy.BudgetChars = x.budgetChars
	}
	if x.timeout != model.DefaultTimeout {
		policy.Timeout = x.timeout
	}

	if err := policy.Validate(); err != nil {
		return model.RecallPolicy{}, goerr.Wrap(err, "invalid recall policy", goerr.V("path", x.policyFile))
	}
	return policy, nil
}

func loadPolicyFile(path string) (model.RecallPolicy, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		return model.RecallPolicy{}, goerr.Wrap(err, "failed to read recall policy file", goerr.V("path", path))
	}

	var file policyFileFormat
	if err := toml.Unmarshal(data, &file); err != nil {
		return model.RecallPolicy{}, goerr.Wrap(err, "failed to parse recall policy file", goerr.V("path", path))
	}

	policy := model.DefaultRecallPolicy()
	if file.ReplayDepth != 0 {
		policy.ReplayDepth = file.ReplayDepth
	}
	if file.TopK != 0 {
		policy.TopK = file.TopK
	}
	if file.BudgetChars != 0 {
		policy.BudgetChars = file.BudgetChars
	}
	if file.Timeout != "" {
		timeout, err := time.ParseDuration(file.Timeout)
		if err != nil {
			return model.RecallPolicy{}, goerr.Wrap(err, "invalid timeout in recall policy file", goerr.V("timeout", file.Timeout))
		}
		policy.Timeout = timeout
	}
	if len(file.Namespaces) > 0 {
		policy.Namespaces = file.Namespaces
	}
	return policy, nil
}
