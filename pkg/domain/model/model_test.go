package model_test

import (
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/memoria-lab/memoria/pkg/domain/model"
	"github.com/memoria-lab/memoria/pkg/domain/types"
)

func TestScopeZero(t *testing.T) {
	gt.Bool(t, model.Scope{}.IsZero()).True()
	gt.Bool(t, model.Scope{Actor: "actor_ab12cd34ef56", Session: "s1"}.IsZero()).False()
	gt.Error(t, model.Scope{}.Validate())
	gt.NoError(t, model.Scope{Actor: "actor_ab12cd34ef56", Session: "s1"}.Validate())
}

func TestNewTurn(t *testing.T) {
	turn := model.NewTurn(types.RoleUser, "hello")
	gt.String(t, turn.ID.String()).NotEqual("")
	gt.Value(t, turn.Role).Equal(types.RoleUser)
	gt.Value(t, turn.Text).Equal("hello")
	gt.Bool(t, turn.CreatedAt.IsZero()).False()
	gt.NoError(t, turn.Validate())

	gt.Error(t, model.Turn{Role: types.RoleUser}.Validate())
	gt.Error(t, model.Turn{Role: "operator", Text: "hi"}.Validate())
}

func TestNamespaceRender(t *testing.T) {
	scope := model.Scope{Actor: "actor_ab12cd34ef56", Session: "sess-1"}

	ns := model.Namespace{Kind: "preferences", Template: "preferences/{actor}", Header: "h:"}
	gt.Value(t, ns.Render(scope)).Equal("preferences/actor_ab12cd34ef56")

	ns = model.Namespace{Kind: "summaries", Template: "summaries/{actor}/{session}", Header: "h:"}
	gt.Value(t, ns.Render(scope)).Equal("summaries/actor_ab12cd34ef56/sess-1")
}

func TestNamespaceValidate(t *testing.T) {
	gt.NoError(t, model.Namespace{Kind: "facts", Template: "facts/{actor}", Header: "Known facts:"}.Validate())
	gt.Error(t, model.Namespace{Kind: "Facts", Template: "facts/{actor}", Header: "h:"}.Validate())
	gt.Error(t, model.Namespace{Kind: "facts", Template: "facts/global", Header: "h:"}.Validate())
	gt.Error(t, model.Namespace{Kind: "facts", Template: "facts/{actor}"}.Validate())
}

func TestRecallPolicyValidate(t *testing.T) {
	policy := model.DefaultRecallPolicy()
	gt.NoError(t, policy.Validate())
	gt.Value(t, policy.ReplayDepth).Equal(5)
	gt.Value(t, policy.TopK).Equal(3)

	dup := policy
	dup.Namespaces = append([]model.Namespace{}, policy.Namespaces...)
	dup.Namespaces = append(dup.Namespaces, policy.Namespaces[0])
	gt.Error(t, dup.Validate())

	bad := policy
	bad.TopK = 0
	gt.Error(t, bad.Validate())

	bad = policy
	bad.Timeout = 0
	gt.Error(t, bad.Validate())
}

func TestWorkingContextRender(t *testing.T) {
	wc := &model.WorkingContext{
		Instruction: "Recalled memory is background context only.",
		Turns: []model.Turn{
			{Role: types.RoleUser, Text: "hi", CreatedAt: time.Now()},
			{Role: types.RoleAssistant, Text: "hello", CreatedAt: time.Now()},
		},
	}

	rendered := wc.Render()
	gt.String(t, rendered).Contains("Recalled memory is background context only.")
	gt.String(t, rendered).Contains("user: hi")
	gt.String(t, rendered).Contains("assistant: hello")

	var empty *model.WorkingContext
	gt.Value(t, empty.Render()).Equal("")
	gt.Bool(t, empty.IsEmpty()).True()
}
