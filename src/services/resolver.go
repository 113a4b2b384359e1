package services

import (
	"context"

	"investmentapp/src/models"
	"investmentapp/src/repositories"
	"investmentapp/src/utils"

	"github.com/jackc/pgx/v5"
)

// IdentityResolver turns loosely-trusted keys into the records currently
// persisted in the store. Every write path starts here; nothing is written
// from a value the caller built.
type IdentityResolver struct {
	holders     repositories.HolderRepository
	instruments repositories.InstrumentRepository
	positions   repositories.PositionRepository
}

func NewIdentityResolver(store *repositories.Store) *IdentityResolver {
	return &IdentityResolver{
		holders:     store.Holders,
		instruments: store.Instruments,
		positions:   store.Positions,
	}
}

// ResolveHolderByEmail matches the email case-insensitively.
func (r *IdentityResolver) ResolveHolderByEmail(ctx context.Context, email string, tx pgx.Tx) (*models.Holder, error) {
	if err := utils.RequireNotBlank("email", email); err != nil {
		return nil, err
	}
	key := utils.NormalizeEmail(email)
	holder, err := r.holders.GetByEmail(ctx, key, tx)
	if err != nil {
		return nil, err
	}
	if holder == nil {
		return nil, utils.NewNotFoundError(utils.KindHolder, key)
	}
	return holder, nil
}

// ResolveInstrumentByTicker matches the ticker case-insensitively.
func (r *IdentityResolver) ResolveInstrumentByTicker(ctx context.Context, ticker string, tx pgx.Tx) (*models.Instrument, error) {
	if err := utils.RequireNotBlank("ticker", ticker); err != nil {
		return nil, err
	}
	key := utils.NormalizeTicker(ticker)
	instrument, err := r.instruments.GetByTicker(ctx, key, tx)
	if err != nil {
		return nil, err
	}
	if instrument == nil {
		return nil, utils.NewNotFoundError(utils.KindInstrument, key)
	}
	return instrument, nil
}

func (r *IdentityResolver) ResolveHolderByID(ctx context.Context, id int, tx pgx.Tx) (*models.Holder, error) {
	if id <= 0 {
		return nil, utils.NewValidationError("holderId", "must be positive")
	}
	holder, err := r.holders.GetByID(ctx, id, tx)
	if err != nil {
		return nil, err
	}
	if holder == nil {
		return nil, utils.NewNotFoundError(utils.KindHolder, id)
	}
	return holder, nil
}

func (r *IdentityResolver) ResolvePositionByID(ctx context.Context, id int, tx pgx.Tx) (*models.Position, error) {
	if id <= 0 {
		return nil, utils.NewValidationError("positionId", "must be positive")
	}
	position, err := r.positions.GetByID(ctx, id, tx)
	if err != nil {
		return nil, err
	}
	if position == nil {
		return nil, utils.NewNotFoundError(utils.KindPosition, id)
	}
	return position, nil
}
