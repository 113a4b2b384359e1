package services

import (
	"context"
	"fmt"
	"time"

	"investmentapp/src/models"
	"investmentapp/src/repositories"
	"investmentapp/src/utils"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

type PositionServiceI interface {
	AddOrUpdatePosition(ctx context.Context, email, ticker string, shares decimal.Decimal) (*models.Position, error)
	CreateOrUpdate(ctx context.Context, candidate *models.Position) (*models.Position, error)
	DeletePositionByTicker(ctx context.Context, email, ticker string) error
	DeletePositionByID(ctx context.Context, email string, positionID int) error
	RetrievePortfolio(ctx context.Context, email string) ([]models.Position, error)
	ExportPortfolioXLSX(ctx context.Context, email string) (*excelize.File, error)
}

// PositionService reconciles declared positions against the store. Every
// public method is one transaction: resolve, guard, write, relink.
type PositionService struct {
	store         *repositories.Store
	resolver      *IdentityResolver
	relationships *RelationshipMaintainer
	cache         PortfolioCache

	conflictBackoff time.Duration
}

func NewPositionService(store *repositories.Store, cache PortfolioCache) *PositionService {
	if cache == nil {
		cache = NoopPortfolioCache()
	}
	return &PositionService{
		store:           store,
		resolver:        NewIdentityResolver(store),
		relationships:   NewRelationshipMaintainer(store),
		cache:           cache,
		conflictBackoff: defaultConflictBackoff,
	}
}

// AddOrUpdatePosition sets the holder's shares in the instrument. Shares
// overwrite the previous value; zero is kept as a position.
func (s *PositionService) AddOrUpdatePosition(ctx context.Context, email, ticker string, shares decimal.Decimal) (*models.Position, error) {
	if err := utils.ValidateShares(shares); err != nil {
		return nil, err
	}
	if err := utils.RequireNotBlank("email", email); err != nil {
		return nil, err
	}
	if err := utils.RequireNotBlank("ticker", ticker); err != nil {
		return nil, err
	}

	logger := utils.LoggerFromContext(ctx).WithFields(logrus.Fields{"email": email, "ticker": ticker})

	var result *models.Position
	err := retryOnConflict(ctx, s.conflictBackoff, func(ctx context.Context) error {
		return s.store.Transactor.WithTx(ctx, func(tx pgx.Tx) error {
			holder, err := s.resolver.ResolveHolderByEmail(ctx, email, tx)
			if err != nil {
				return err
			}
			instrument, err := s.resolver.ResolveInstrumentByTicker(ctx, ticker, tx)
			if err != nil {
				return err
			}

			existing, err := s.store.Positions.GetByHolderAndInstrument(ctx, holder.ID, instrument.ID, tx)
			if err != nil {
				return err
			}
			if existing != nil {
				existing.Shares = shares
				if err := s.store.Positions.UpdateShares(ctx, existing, tx); err != nil {
					return err
				}
				existing.Holder, existing.Instrument = holder, instrument
				result = existing
				logger.WithField("positionId", existing.ID).Debug("updated shares")
				return nil
			}

			position := &models.Position{
				HolderID:     holder.ID,
				InstrumentID: instrument.ID,
				Shares:       shares,
			}
			if err := s.store.Positions.Create(ctx, position, tx); err != nil {
				return err
			}
			if err := s.relationships.Link(ctx, holder, instrument, position, tx); err != nil {
				return err
			}
			position.Holder, position.Instrument = holder, instrument
			result = position
			logger.WithField("positionId", position.ID).Debug("created position")
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, result.Holder.Email)
	return result, nil
}

// CreateOrUpdate accepts a caller-built position graph but only reads the
// holder email, the instrument ticker and the share count from it. Ids and
// any other nested state are ignored.
func (s *PositionService) CreateOrUpdate(ctx context.Context, candidate *models.Position) (*models.Position, error) {
	if candidate == nil {
		return nil, utils.NewValidationError("position", "is required")
	}
	if candidate.Holder == nil {
		return nil, utils.NewValidationError("position.holder", "is required")
	}
	if candidate.Instrument == nil {
		return nil, utils.NewValidationError("position.instrument", "is required")
	}
	return s.AddOrUpdatePosition(ctx, candidate.Holder.Email, candidate.Instrument.Ticker, candidate.Shares)
}

// DeletePositionByTicker removes the holder's position in ticker. A missing
// position is a NotFoundError so callers can tell it from a deletion.
func (s *PositionService) DeletePositionByTicker(ctx context.Context, email, ticker string) error {
	var holder *models.Holder
	err := s.store.Transactor.WithTx(ctx, func(tx pgx.Tx) error {
		var err error
		holder, err = s.resolver.ResolveHolderByEmail(ctx, email, tx)
		if err != nil {
			return err
		}
		instrument, err := s.resolver.ResolveInstrumentByTicker(ctx, ticker, tx)
		if err != nil {
			return err
		}
		position, err := s.store.Positions.GetByHolderAndInstrument(ctx, holder.ID, instrument.ID, tx)
		if err != nil {
			return err
		}
		if position == nil {
			return utils.NewNotFoundError(utils.KindPosition, fmt.Sprintf("%s/%s", holder.Email, instrument.Ticker))
		}
		return s.deleteGuarded(ctx, holder, position, tx)
	})
	if err != nil {
		return err
	}

	s.cache.Invalidate(ctx, holder.Email)
	return nil
}

// DeletePositionByID removes a position by id after checking that it belongs
// to the holder identified by email.
func (s *PositionService) DeletePositionByID(ctx context.Context, email string, positionID int) error {
	var holder *models.Holder
	err := s.store.Transactor.WithTx(ctx, func(tx pgx.Tx) error {
		var err error
		holder, err = s.resolver.ResolveHolderByEmail(ctx, email, tx)
		if err != nil {
			return err
		}
		position, err := s.resolver.ResolvePositionByID(ctx, positionID, tx)
		if err != nil {
			return err
		}
		return s.deleteGuarded(ctx, holder, position, tx)
	})
	if err != nil {
		return err
	}

	s.cache.Invalidate(ctx, holder.Email)
	return nil
}

func (s *PositionService) deleteGuarded(ctx context.Context, holder *models.Holder, position *models.Position, tx pgx.Tx) error {
	if err := AuthorizeOwnership(holder, position); err != nil {
		return err
	}
	if err := s.relationships.Unlink(ctx, position, tx); err != nil {
		return err
	}
	if err := s.store.Positions.Delete(ctx, position.ID, tx); err != nil {
		return err
	}
	utils.LoggerFromContext(ctx).WithFields(logrus.Fields{
		"email":      holder.Email,
		"positionId": position.ID,
	}).Debug("deleted position")
	return nil
}

// RetrievePortfolio returns the holder's positions ordered by id, each with
// its instrument loaded.
func (s *PositionService) RetrievePortfolio(ctx context.Context, email string) ([]models.Position, error) {
	holder, err := s.resolver.ResolveHolderByEmail(ctx, email, nil)
	if err != nil {
		return nil, err
	}

	if cached, ok := s.cache.Get(ctx, holder.Email); ok {
		return cached, nil
	}
	generation := s.cache.Generation(ctx, holder.Email)

	positions, err := s.store.Positions.GetByHolderWithInstrument(ctx, holder.ID, nil)
	if err != nil {
		return nil, err
	}
	if positions == nil {
		positions = []models.Position{}
	}

	utils.LoggerFromContext(ctx).WithFields(logrus.Fields{
		"email":     holder.Email,
		"positions": len(positions),
	}).Debug("retrieved portfolio")

	s.cache.Set(ctx, holder.Email, generation, positions)
	return positions, nil
}
