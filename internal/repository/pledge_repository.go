package repository

import (
	"context"

	"github.com/pledges/backend/internal/model"
)

// PledgeRepository persists completed pledge payments recorded from
// Stripe webhook events.
type PledgeRepository interface {
	// Create inserts a pledge. Returns ErrDuplicate when the same Stripe
	// payment or subscription invoice was already recorded.
	Create(ctx context.Context, p *model.Pledge) error
	// ListRecent returns the most recently recorded pledges.
	ListRecent(ctx context.Context, limit int) ([]*model.Pledge, error)
	// PledgedUnits returns the total units across recorded pledges.
	PledgedUnits(ctx context.Context) (int, error)
}
