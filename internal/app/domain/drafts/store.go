// Package drafts keeps the single in-progress planner draft of each browser session.
package drafts

import (
	"context"

	"github.com/FACorreiaa/backpackor/internal/app/models"
)

// Store is the draft slot. One draft per session; the last Save wins.
// Load returns models.ErrNoDraft when the session has no draft.
type Store interface {
	Load(ctx context.Context, sessionID string) (models.Draft, error)
	Save(ctx context.Context, sessionID string, draft models.Draft) error
	Clear(ctx context.Context, sessionID string) error
}

const keyPrefix = "planner:draft:"

func draftKey(sessionID string) string {
	return keyPrefix + sessionID
}
