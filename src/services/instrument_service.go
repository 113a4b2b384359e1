package services

import (
	"context"
	"strings"
	"time"

	"investmentapp/src/models"
	"investmentapp/src/repositories"
	"investmentapp/src/utils"

	"github.com/jackc/pgx/v5"
)

type InstrumentServiceI interface {
	CreateOrUpdateInstrument(ctx context.Context, instrument models.Instrument) (*models.Instrument, error)
	ListInstruments(ctx context.Context) ([]models.Instrument, error)
}

type InstrumentService struct {
	store *repositories.Store

	conflictBackoff time.Duration
}

func NewInstrumentService(store *repositories.Store) *InstrumentService {
	return &InstrumentService{store: store, conflictBackoff: defaultConflictBackoff}
}

// CreateOrUpdateInstrument upserts by ticker. Tickers are stored upper-case.
func (s *InstrumentService) CreateOrUpdateInstrument(ctx context.Context, instrument models.Instrument) (*models.Instrument, error) {
	if err := utils.RequireNotBlank("ticker", instrument.Ticker); err != nil {
		return nil, err
	}
	if err := utils.RequireNotBlank("name", instrument.Name); err != nil {
		return nil, err
	}
	if instrument.Price.IsNegative() {
		return nil, utils.NewValidationError("price", "must not be negative")
	}
	instrument.Ticker = utils.NormalizeTicker(instrument.Ticker)
	instrument.Name = strings.TrimSpace(instrument.Name)

	var result *models.Instrument
	err := retryOnConflict(ctx, s.conflictBackoff, func(ctx context.Context) error {
		return s.store.Transactor.WithTx(ctx, func(tx pgx.Tx) error {
			existing, err := s.store.Instruments.GetByTicker(ctx, instrument.Ticker, tx)
			if err != nil {
				return err
			}
			if existing != nil {
				existing.Name = instrument.Name
				existing.Price = instrument.Price
				existing.Description = instrument.Description
				if err := s.store.Instruments.Update(ctx, existing, tx); err != nil {
					return err
				}
				result = existing
				return nil
			}

			created := instrument
			created.ID = 0
			if err := s.store.Instruments.Create(ctx, &created, tx); err != nil {
				return err
			}
			result = &created
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	utils.LoggerFromContext(ctx).WithField("ticker", result.Ticker).Debug("instrument saved")
	return result, nil
}

func (s *InstrumentService) ListInstruments(ctx context.Context) ([]models.Instrument, error) {
	instruments, err := s.store.Instruments.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	if instruments == nil {
		instruments = []models.Instrument{}
	}
	return instruments, nil
}
