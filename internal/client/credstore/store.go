package credstore

import (
	"context"

	"github.com/snipperhq/snipper-cli/internal/client/models"
)

// Store is durable storage for the credential pair, outliving a single
// process run.
//
// Contract:
//   - Save: persists both tokens atomically; readers never observe a pair
//     where only one token was replaced.
//   - Load: returns the last saved pair, or (nil, nil) when no pair is
//     cached. A row set missing either token counts as absent.
//   - Clear: removes the pair; clearing an empty store is a no-op.
//   - ClientID: returns the stable installation id, generating one on first
//     use. The id survives Clear.
type Store interface {
	Save(ctx context.Context, creds models.Credentials) error
	Load(ctx context.Context) (*models.Credentials, error)
	Clear(ctx context.Context) error
	ClientID(ctx context.Context) (string, error)
}
