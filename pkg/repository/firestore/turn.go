package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/memoria-lab/memoria/pkg/domain/model"
	"github.com/memoria-lab/memoria/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// turnDoc is the Firestore document representation of model.Turn.
type turnDoc struct {
	ID        types.TurnID `firestore:"ID"`
	Role      string       `firestore:"Role"`
	Text      string       `firestore:"Text"`
	CreatedAt time.Time    `firestore:"CreatedAt"`
}

func toTurnDoc(t model.Turn) *turnDoc {
	return &turnDoc{
		ID:        t.ID,
		Role:      t.Role.String(),
		Text:      t.Text,
		CreatedAt: t.CreatedAt,
	}
}

func fromTurnDoc(d *turnDoc) model.Turn {
	return model.Turn{
		ID:        d.ID,
		Role:      types.Role(d.Role),
		Text:      d.Text,
		CreatedAt: d.CreatedAt,
	}
}

func (c *Client) AppendTurn(ctx context.Context, scope model.Scope, turn model.Turn) error {
	if err := scope.Validate(); err != nil {
		return goerr.Wrap(err, "cannot append turn to invalid scope")
	}
	if err := turn.Validate(); err != nil {
		return goerr.Wrap(err, "cannot append invalid turn")
	}

	docRef := c.turnsCollection(scope.Actor, scope.Session).Doc(turn.ID.String())
	if _, err := docRef.Create(ctx, toTurnDoc(turn)); err != nil {
		// The turn ID is unique per attempt; AlreadyExists means this exact
		// turn was already persisted.
		if status.Code(err) == codes.AlreadyExists {
			return nil
		}
		return goerr.Wrap(err, "failed to append turn",
			goerr.V("actor", scope.Actor),
			goerr.V("session", scope.Session),
			goerr.V("turnID", turn.ID),
		)
	}
	return nil
}

// ListRecentTurns returns the k most recent turns in chronological order.
// A negative k returns the whole session log.
func (c *Client) ListRecentTurns(ctx context.Context, actor types.ActorID, session types.SessionID, k int) ([]model.Turn, error) {
	if k == 0 {
		return nil, nil
	}

	q := c.turnsCollection(actor, session).
		OrderBy("CreatedAt", firestore.Desc)
	if k > 0 {
		q = q.Limit(k)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	turns := []model.Turn{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate turns",
				goerr.V("actor", actor),
				goerr.V("session", session),
			)
		}

		var d turnDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal turn")
		}
		turns = append(turns, fromTurnDoc(&d))
	}

	// Reverse into chronological order for replay.
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns, nil
}
