package usecase

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/memoria-lab/memoria/pkg/domain/model"
	"github.com/memoria-lab/memoria/pkg/domain/types"
)

var emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)

// ResolveScope derives a memory scope from a raw identity token, typically
// an email address found in the request. It returns false when no usable
// token is present, in which case the caller must run without memory.
func ResolveScope(raw string) (model.Scope, bool) {
	token := emailPattern.FindString(raw)
	if token == "" {
		return model.Scope{}, false
	}
	return model.Scope{
		Actor:   ActorIDFromToken(token),
		Session: NewSessionID(),
	}, true
}

// ActorIDFromToken hashes an identity token into a stable, opaque actor ID.
// The same token always yields the same actor so memories accumulate across
// sessions, and the raw token never reaches the store.
func ActorIDFromToken(token string) types.ActorID {
	normalized := strings.ToLower(strings.TrimSpace(token))
	sum := sha256.Sum256([]byte(normalized))
	return types.ActorID("actor_" + hex.EncodeToString(sum[:])[:12])
}

// NewSessionID mints a fresh session identifier. V7 keeps sessions
// time-ordered in the store.
func NewSessionID() types.SessionID {
	return types.SessionID(uuid.Must(uuid.NewV7()).String())
}
