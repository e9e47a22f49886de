package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"github.com/memoria-lab/memoria/pkg/domain/model"
	"github.com/memoria-lab/memoria/pkg/utils/safe"
)

// Archiver exports session transcripts to a GCS bucket as JSONL, one
// object per session. Exports are snapshots for offline analysis; the
// store remains the source of truth.
type Archiver struct {
	client *storage.Client
	bucket string
}

func New(ctx context.Context, bucket string) (*Archiver, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage client", goerr.V("bucket", bucket))
	}
	return &Archiver{client: client, bucket: bucket}, nil
}

type transcriptRecord struct {
	Turn      string    `json:"turn"`
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Export writes the session transcript to
// transcripts/{actor}/{session}.jsonl and returns the object path.
func (x *Archiver) Export(ctx context.Context, scope model.Scope, turns []model.Turn) (string, error) {
	if err := scope.Validate(); err != nil {
		return "", goerr.Wrap(err, "cannot export invalid scope")
	}

	path := fmt.Sprintf("transcripts/%s/%s.jsonl", scope.Actor, scope.Session)
	w := x.client.Bucket(x.bucket).Object(path).NewWriter(ctx)
	w.ContentType = "application/jsonl"

	encoder := json.NewEncoder(w)
	for _, turn := range turns {
		record := transcriptRecord{
			Turn:      turn.ID.String(),
			Role:      turn.Role.String(),
			Text:      turn.Text,
			CreatedAt: turn.CreatedAt,
		}
		if err := encoder.Encode(record); err != nil {
			safe.Close(ctx, w)
			return "", goerr.Wrap(err, "failed to encode transcript record", goerr.V("turn", turn.ID))
		}
	}

	if err := w.Close(); err != nil {
		return "", goerr.Wrap(err, "failed to finalize transcript object",
			goerr.V("bucket", x.bucket),
			goerr.V("path", path),
		)
	}
	return path, nil
}

func (x *Archiver) Close() error {
	return x.client.Close()
}
