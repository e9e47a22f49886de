package types_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/memoria-lab/memoria/pkg/domain/types"
)

func TestActorIDValidate(t *testing.T) {
	cases := []struct {
		name    string
		id      types.ActorID
		wantErr bool
	}{
		{"valid hashed actor", "actor_3f2a9c1b0d4e", false},
		{"valid plain actor", "alice", false},
		{"empty", "", true},
		{"uppercase", "Actor_X", true},
		{"leading underscore", "_actor", true},
		{"contains space", "actor 1", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.id.Validate()
			if tc.wantErr {
				gt.Error(t, err)
			} else {
				gt.NoError(t, err)
			}
		})
	}
}

func TestSessionIDValidate(t *testing.T) {
	gt.Error(t, types.SessionID("").Validate())
	gt.NoError(t, types.SessionID("0190a8b2-7c1d-7e4f-8a01-aabbccddeeff").Validate())
}

func TestRoleValidate(t *testing.T) {
	gt.NoError(t, types.RoleUser.Validate())
	gt.NoError(t, types.RoleAssistant.Validate())
	gt.Error(t, types.Role("system").Validate())
	gt.Error(t, types.Role("").Validate())
}
