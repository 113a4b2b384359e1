package repositories

import (
	"context"
	"fmt"

	"investmentapp/src/models"
	"investmentapp/src/utils"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PositionRepository is the source of truth for holder/instrument ownership.
// Create returns a *utils.ConflictError when the (holder, instrument) pair
// already has a position.
type PositionRepository interface {
	GetByID(ctx context.Context, id int, tx pgx.Tx) (*models.Position, error)
	GetByHolderAndInstrument(ctx context.Context, holderID, instrumentID int, tx pgx.Tx) (*models.Position, error)
	GetByHolderWithInstrument(ctx context.Context, holderID int, tx pgx.Tx) ([]models.Position, error)
	GetAll(ctx context.Context, tx pgx.Tx) ([]models.Position, error)
	Create(ctx context.Context, p *models.Position, tx pgx.Tx) error
	UpdateShares(ctx context.Context, p *models.Position, tx pgx.Tx) error
	Delete(ctx context.Context, id int, tx pgx.Tx) error
}

type positionRepo struct {
	db *pgxpool.Pool
}

func NewPositionRepository(db *pgxpool.Pool) PositionRepository {
	return &positionRepo{db: db}
}

const positionColumns = `id, holder_id, instrument_id, shares, created_at, updated_at`

func scanPosition(row pgx.Row) (*models.Position, error) {
	var p models.Position
	err := row.Scan(&p.ID, &p.HolderID, &p.InstrumentID, &p.Shares, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *positionRepo) GetByID(ctx context.Context, id int, tx pgx.Tx) (*models.Position, error) {
	return scanPosition(conn(r.db, tx).QueryRow(ctx,
		`SELECT `+positionColumns+` FROM positions WHERE id = $1`+lockClause(tx), id))
}

func (r *positionRepo) GetByHolderAndInstrument(ctx context.Context, holderID, instrumentID int, tx pgx.Tx) (*models.Position, error) {
	return scanPosition(conn(r.db, tx).QueryRow(ctx,
		`SELECT `+positionColumns+` FROM positions
		WHERE holder_id = $1 AND instrument_id = $2`+lockClause(tx),
		holderID, instrumentID))
}

func (r *positionRepo) GetByHolderWithInstrument(ctx context.Context, holderID int, tx pgx.Tx) ([]models.Position, error) {
	rows, err := conn(r.db, tx).Query(ctx,
		`SELECT p.id, p.holder_id, p.instrument_id, p.shares, p.created_at, p.updated_at,
			i.id, i.ticker, i.name, i.price, i.description, i.created_at, i.updated_at
		FROM positions p
		JOIN instruments i ON i.id = p.instrument_id
		WHERE p.holder_id = $1
		ORDER BY p.id ASC`,
		holderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var positions []models.Position
	for rows.Next() {
		var p models.Position
		var i models.Instrument
		if err := rows.Scan(
			&p.ID, &p.HolderID, &p.InstrumentID, &p.Shares, &p.CreatedAt, &p.UpdatedAt,
			&i.ID, &i.Ticker, &i.Name, &i.Price, &i.Description, &i.CreatedAt, &i.UpdatedAt,
		); err != nil {
			return nil, err
		}
		p.Instrument = &i
		positions = append(positions, p)
	}
	return positions, rows.Err()
}

func (r *positionRepo) GetAll(ctx context.Context, tx pgx.Tx) ([]models.Position, error) {
	rows, err := conn(r.db, tx).Query(ctx, `SELECT `+positionColumns+` FROM positions ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var positions []models.Position
	for rows.Next() {
		var p models.Position
		if err := rows.Scan(&p.ID, &p.HolderID, &p.InstrumentID, &p.Shares, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		positions = append(positions, p)
	}
	return positions, rows.Err()
}

func (r *positionRepo) Create(ctx context.Context, p *models.Position, tx pgx.Tx) error {
	err := conn(r.db, tx).QueryRow(ctx,
		`INSERT INTO positions (holder_id, instrument_id, shares)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`,
		p.HolderID, p.InstrumentID, p.Shares,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	return asConflict(err, utils.KindPosition, fmt.Sprintf("holder=%d instrument=%d", p.HolderID, p.InstrumentID))
}

func (r *positionRepo) UpdateShares(ctx context.Context, p *models.Position, tx pgx.Tx) error {
	err := conn(r.db, tx).QueryRow(ctx,
		`UPDATE positions SET shares = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		p.ID, p.Shares,
	).Scan(&p.UpdatedAt)
	if isNoRows(err) {
		return utils.NewNotFoundError(utils.KindPosition, p.ID)
	}
	return err
}

func (r *positionRepo) Delete(ctx context.Context, id int, tx pgx.Tx) error {
	tag, err := conn(r.db, tx).Exec(ctx, `DELETE FROM positions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return utils.NewNotFoundError(utils.KindPosition, id)
	}
	return nil
}
