package usecase

import (
	"context"
	"sort"
	"strings"

	"github.com/memoria-lab/memoria/pkg/domain/interfaces"
	"github.com/memoria-lab/memoria/pkg/domain/model"
	"github.com/memoria-lab/memoria/pkg/domain/types"
	"github.com/memoria-lab/memoria/pkg/utils/logging"
	"golang.org/x/sync/errgroup"
)

// standingInstruction is prepended to every replayed session context so
// the reasoning engine treats injected memory as background, not as part
// of the user's request.
const standingInstruction = "You have access to the user's long-term memory. Recalled facts are background knowledge only: never recite them verbatim to the user, and treat them as possibly stale. Prefer the current request when they conflict."

// Recall augments the conversation from the store: on session start it
// replays recent history, and on each user turn it injects retrieved
// memory items under the turn's text. Store failures degrade to an
// unaugmented turn rather than failing the conversation.
type Recall struct {
	store   interfaces.Store
	policy  model.RecallPolicy
	metrics *Metrics
}

func NewRecall(store interfaces.Store, policy model.RecallPolicy, metrics *Metrics) *Recall {
	return &Recall{store: store, policy: policy, metrics: metrics}
}

func (x *Recall) OnSessionStart(ctx context.Context, ev *SessionStartEvent) error {
	wc := &model.WorkingContext{Instruction: standingInstruction}
	ev.Context = wc

	rctx, cancel := context.WithTimeout(ctx, x.policy.Timeout)
	defer cancel()

	turns, err := x.store.ListRecentTurns(rctx, ev.Scope.Actor, ev.Scope.Session, x.policy.ReplayDepth)
	if err != nil {
		logging.From(ctx).Warn("session replay unavailable, starting cold",
			"actor", ev.Scope.Actor,
			"error", err,
		)
		x.metrics.RecallDegraded("replay")
		return nil
	}
	wc.Turns = turns
	return nil
}

func (x *Recall) OnTurnAppended(ctx context.Context, ev *TurnAppendedEvent) error {
	if ev.Turn.Role != types.RoleUser {
		return nil
	}

	rctx, cancel := context.WithTimeout(ctx, x.policy.Timeout)
	defer cancel()

	results := make([][]model.MemoryItem, len(x.policy.Namespaces))
	eg, gctx := errgroup.WithContext(rctx)
	for i, ns := range x.policy.Namespaces {
		eg.Go(func() error {
			items, err := x.store.Retrieve(gctx, ev.Scope.Actor, ns.Render(ev.Scope), ev.Turn.Text, x.policy.TopK)
			if err != nil {
				logging.From(ctx).Warn("memory retrieval unavailable",
					"namespace", ns.Kind,
					"actor", ev.Scope.Actor,
					"error", err,
				)
				x.metrics.RecallDegraded(ns.Kind)
				return nil
			}
			results[i] = items
			return nil
		})
	}
	_ = eg.Wait()

	block := renderInjection(x.policy.Namespaces, results, x.policy.BudgetChars)
	if block == "" {
		return nil
	}
	ev.Augmented = ev.Turn.Text + "\n\n" + block
	return nil
}

type scoredLine struct {
	ns    int
	score float64
	text  string
}

// renderInjection formats retrieved items into a headed block, one section
// per non-empty namespace, then enforces the character budget by dropping
// whole items, lowest score first, until the block fits. Items are never
// truncated mid-text.
func renderInjection(namespaces []model.Namespace, results [][]model.MemoryItem, budget int) string {
	var lines []scoredLine
	for i, items := range results {
		sorted := make([]model.MemoryItem, len(items))
		copy(sorted, items)
		sort.SliceStable(sorted, func(a, b int) bool {
			if sorted[a].Score != sorted[b].Score {
				return sorted[a].Score > sorted[b].Score
			}
			return sorted[a].Text < sorted[b].Text
		})
		for _, item := range sorted {
			lines = append(lines, scoredLine{ns: i, score: item.Score, text: item.Text})
		}
	}

	for {
		block := renderBlock(namespaces, lines)
		if len(block) <= budget || len(lines) == 0 {
			return block
		}
		// Drop the lowest-score item; among ties, the longest one, so the
		// block converges on the budget without losing short items.
		lowest := 0
		for i, ln := range lines {
			if ln.score < lines[lowest].score ||
				(ln.score == lines[lowest].score && len(ln.text) > len(lines[lowest].text)) {
				lowest = i
			}
		}
		lines = append(lines[:lowest], lines[lowest+1:]...)
	}
}

func renderBlock(namespaces []model.Namespace, lines []scoredLine) string {
	var sections []string
	for i, ns := range namespaces {
		var body []string
		for _, ln := range lines {
			if ln.ns == i {
				body = append(body, "- "+ln.text)
			}
		}
		if len(body) == 0 {
			continue
		}
		sections = append(sections, ns.Header+"\n"+strings.Join(body, "\n"))
	}
	return strings.Join(sections, "\n\n")
}
