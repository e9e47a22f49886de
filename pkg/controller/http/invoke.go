package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/memoria-lab/memoria/pkg/domain/types"
	"github.com/memoria-lab/memoria/pkg/usecase"
	"github.com/memoria-lab/memoria/pkg/utils/async"
	"github.com/memoria-lab/memoria/pkg/utils/errutil"
)

type invokeRequest struct {
	// Prompt is the user's message. An email address anywhere in it is
	// used as the identity token.
	Prompt string `json:"prompt"`

	// SessionID resumes an existing session instead of minting a new one.
	SessionID string `json:"session_id,omitempty"`
}

type invokeMetadata struct {
	ActorID   string `json:"actor_id,omitempty"`
	SessionID string `json:"session_id,omitempty"`
	Memory    bool   `json:"memory"`
}

type invokeResponse struct {
	Result   string         `json:"result"`
	Metadata invokeMetadata `json:"metadata"`
	Warnings []string       `json:"warnings,omitempty"`
}

// handleInvoke runs one conversational turn: resolve the caller's memory
// scope, assemble context, augment the prompt with recalled memory, ask
// the engine, and persist the assistant reply in the background. Memory
// failures degrade the response, never fail it.
func (s *Server) handleInvoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req invokeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to decode invoke request"), http.StatusBadRequest)
		return
	}
	if req.Prompt == "" {
		errutil.HandleHTTP(ctx, w, goerr.New("prompt is required"), http.StatusBadRequest)
		return
	}

	scope, ok := usecase.ResolveScope(req.Prompt)
	if ok && req.SessionID != "" {
		scope.Session = types.SessionID(req.SessionID)
	}

	var warnings []string

	wc, err := s.uc.OnSessionStart(ctx, scope)
	if err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to start session"), http.StatusInternalServerError)
		return
	}

	prompt, err := s.uc.OnUserTurn(ctx, scope, req.Prompt)
	if err != nil {
		// Augmented or verbatim, the prompt is still usable. Report the
		// memory failure alongside the result.
		errutil.Handle(ctx, err, "memory error on user turn")
		warnings = append(warnings, "memory error: the turn may not be remembered")
	}

	result, err := s.engine.Reply(ctx, wc, prompt)
	if err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to generate reply"), http.StatusInternalServerError)
		return
	}

	async.Dispatch(ctx, func(ctx context.Context) error {
		return s.uc.OnTurnCompleted(ctx, scope, result)
	})

	resp := invokeResponse{
		Result:   result,
		Warnings: warnings,
		Metadata: invokeMetadata{Memory: ok},
	}
	if ok {
		resp.Metadata.ActorID = scope.Actor.String()
		resp.Metadata.SessionID = scope.Session.String()
	}

	data, err := json.Marshal(resp)
	if err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to marshal invoke response"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data) //nolint:errcheck // header already committed
}
