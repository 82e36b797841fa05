package integration

import (
	"context"

	"github.com/google/uuid"
)

// LocationCache remembers resolved inventory locations across operations so the
// location lookup is not repeated on every update. Get returns "" and a nil error on a miss.
type LocationCache interface {
	Get(ctx context.Context, platform PlatformCode, ownerID uuid.UUID) (string, error)
	Set(ctx context.Context, platform PlatformCode, ownerID uuid.UUID, locationID string) error
}
