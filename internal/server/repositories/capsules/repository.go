package capsules

import (
	"context"
	"time"

	"github.com/dmitrijs2005/timecapsule/internal/server/models"
)

// Repository is the capsule store. Every lookup is scoped by owner.
type Repository interface {
	Create(ctx context.Context, capsule *models.Capsule) error
	GetByID(ctx context.Context, ownerID, id string) (*models.Capsule, error)
	// GetByIDForUpdate reads the row and locks it until the surrounding
	// transaction ends.
	GetByIDForUpdate(ctx context.Context, ownerID, id string) (*models.Capsule, error)
	CountByOwner(ctx context.Context, ownerID string) (int, error)
	ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]*models.Capsule, error)
	Update(ctx context.Context, capsule *models.Capsule) error
	Delete(ctx context.Context, ownerID, id string) error
	// MarkRetired flags every capsule unlocked before cutoff in one
	// statement and returns how many rows changed.
	MarkRetired(ctx context.Context, cutoff, now time.Time) (int64, error)
}
