package services

import (
	"context"
	"fmt"

	"investmentapp/src/models"
	"investmentapp/src/repositories"
	"investmentapp/src/utils"

	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"
)

type RelationshipServiceI interface {
	Audit(ctx context.Context) ([]models.LinkDiscrepancy, error)
	Repair(ctx context.Context) ([]models.LinkDiscrepancy, error)
}

// RelationshipMaintainer keeps holder_positions and instrument_positions
// symmetric with the positions table. Link and Unlink must run inside the
// transaction that writes the position.
type RelationshipMaintainer struct {
	transactor repositories.Transactor
	links      repositories.LinkRepository
	positions  repositories.PositionRepository
}

func NewRelationshipMaintainer(store *repositories.Store) *RelationshipMaintainer {
	return &RelationshipMaintainer{
		transactor: store.Transactor,
		links:      store.Links,
		positions:  store.Positions,
	}
}

func (m *RelationshipMaintainer) Link(ctx context.Context, holder *models.Holder, instrument *models.Instrument, position *models.Position, tx pgx.Tx) error {
	if position.HolderID != holder.ID || position.InstrumentID != instrument.ID {
		return fmt.Errorf("position %d does not reference holder %d and instrument %d", position.ID, holder.ID, instrument.ID)
	}
	if err := m.links.Link(ctx, models.HolderSide, holder.ID, position.ID, tx); err != nil {
		return fmt.Errorf("link holder %d to position %d: %w", holder.ID, position.ID, err)
	}
	if err := m.links.Link(ctx, models.InstrumentSide, instrument.ID, position.ID, tx); err != nil {
		return fmt.Errorf("link instrument %d to position %d: %w", instrument.ID, position.ID, err)
	}
	return nil
}

func (m *RelationshipMaintainer) Unlink(ctx context.Context, position *models.Position, tx pgx.Tx) error {
	if err := m.links.Unlink(ctx, models.HolderSide, position.ID, tx); err != nil {
		return fmt.Errorf("unlink holder from position %d: %w", position.ID, err)
	}
	if err := m.links.Unlink(ctx, models.InstrumentSide, position.ID, tx); err != nil {
		return fmt.Errorf("unlink instrument from position %d: %w", position.ID, err)
	}
	return nil
}

// HolderPositionIDs reads the holder→positions index.
func (m *RelationshipMaintainer) HolderPositionIDs(ctx context.Context, holderID int) ([]int, error) {
	return m.links.PositionIDs(ctx, models.HolderSide, holderID, nil)
}

// InstrumentPositionIDs reads the instrument→positions index.
func (m *RelationshipMaintainer) InstrumentPositionIDs(ctx context.Context, instrumentID int) ([]int, error) {
	return m.links.PositionIDs(ctx, models.InstrumentSide, instrumentID, nil)
}

// Audit compares both indexes with the positions table without changing
// anything.
func (m *RelationshipMaintainer) Audit(ctx context.Context) ([]models.LinkDiscrepancy, error) {
	var discrepancies []models.LinkDiscrepancy
	err := m.transactor.WithTx(ctx, func(tx pgx.Tx) error {
		var err error
		discrepancies, err = m.findDiscrepancies(ctx, tx)
		return err
	})
	return discrepancies, err
}

// Repair adds missing links and removes dangling ones in one transaction and
// returns what it fixed.
func (m *RelationshipMaintainer) Repair(ctx context.Context) ([]models.LinkDiscrepancy, error) {
	logger := utils.LoggerFromContext(ctx)

	var discrepancies []models.LinkDiscrepancy
	err := m.transactor.WithTx(ctx, func(tx pgx.Tx) error {
		var err error
		discrepancies, err = m.findDiscrepancies(ctx, tx)
		if err != nil {
			return err
		}

		positions, err := m.positionsByID(ctx, tx)
		if err != nil {
			return err
		}

		for _, d := range discrepancies {
			if d.Missing {
				err = m.links.Link(ctx, d.Side, d.OwnerID, d.PositionID, tx)
			} else {
				err = m.links.Unlink(ctx, d.Side, d.PositionID, tx)
				if err == nil {
					// Unlink clears every owner of the position on that side,
					// so put back the one the positions table expects.
					if p, ok := positions[d.PositionID]; ok {
						err = m.links.Link(ctx, d.Side, expectedOwner(d.Side, p), p.ID, tx)
					}
				}
			}
			if err != nil {
				return fmt.Errorf("repair %s link for position %d: %w", d.Side, d.PositionID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(discrepancies) > 0 {
		logger.WithFields(logrus.Fields{"repaired": len(discrepancies)}).Warn("relationship indexes were out of sync")
	}
	return discrepancies, nil
}

func (m *RelationshipMaintainer) positionsByID(ctx context.Context, tx pgx.Tx) (map[int]models.Position, error) {
	positions, err := m.positions.GetAll(ctx, tx)
	if err != nil {
		return nil, err
	}
	byID := make(map[int]models.Position, len(positions))
	for _, p := range positions {
		byID[p.ID] = p
	}
	return byID, nil
}

func expectedOwner(side models.LinkSide, p models.Position) int {
	if side == models.HolderSide {
		return p.HolderID
	}
	return p.InstrumentID
}

func (m *RelationshipMaintainer) findDiscrepancies(ctx context.Context, tx pgx.Tx) ([]models.LinkDiscrepancy, error) {
	positions, err := m.positions.GetAll(ctx, tx)
	if err != nil {
		return nil, err
	}

	var discrepancies []models.LinkDiscrepancy
	for _, side := range []models.LinkSide{models.HolderSide, models.InstrumentSide} {
		links, err := m.links.All(ctx, side, tx)
		if err != nil {
			return nil, err
		}

		actual := make(map[models.Link]bool, len(links))
		for _, l := range links {
			actual[l] = true
		}

		expected := make(map[models.Link]bool, len(positions))
		for _, p := range positions {
			l := models.Link{Side: side, OwnerID: expectedOwner(side, p), PositionID: p.ID}
			expected[l] = true
			if !actual[l] {
				discrepancies = append(discrepancies, models.LinkDiscrepancy{Link: l, Missing: true})
			}
		}

		for _, l := range links {
			if !expected[l] {
				discrepancies = append(discrepancies, models.LinkDiscrepancy{Link: l, Missing: false})
			}
		}
	}
	return discrepancies, nil
}
