package repositories

import (
	"context"

	"investmentapp/src/models"
	"investmentapp/src/utils"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type InstrumentRepository interface {
	GetAll(ctx context.Context) ([]models.Instrument, error)
	GetByID(ctx context.Context, id int, tx pgx.Tx) (*models.Instrument, error)
	GetByTicker(ctx context.Context, ticker string, tx pgx.Tx) (*models.Instrument, error)
	Create(ctx context.Context, i *models.Instrument, tx pgx.Tx) error
	Update(ctx context.Context, i *models.Instrument, tx pgx.Tx) error
}

type instrumentRepo struct {
	db *pgxpool.Pool
}

func NewInstrumentRepository(db *pgxpool.Pool) InstrumentRepository {
	return &instrumentRepo{db: db}
}

const instrumentColumns = `id, ticker, name, price, description, created_at, updated_at`

func scanInstrument(row pgx.Row) (*models.Instrument, error) {
	var i models.Instrument
	err := row.Scan(&i.ID, &i.Ticker, &i.Name, &i.Price, &i.Description, &i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return &i, nil
}

func (r *instrumentRepo) GetAll(ctx context.Context) ([]models.Instrument, error) {
	rows, err := r.db.Query(ctx, `SELECT `+instrumentColumns+` FROM instruments ORDER BY ticker`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var instruments []models.Instrument
	for rows.Next() {
		var i models.Instrument
		if err := rows.Scan(&i.ID, &i.Ticker, &i.Name, &i.Price, &i.Description, &i.CreatedAt, &i.UpdatedAt); err != nil {
			return nil, err
		}
		instruments = append(instruments, i)
	}
	return instruments, rows.Err()
}

func (r *instrumentRepo) GetByID(ctx context.Context, id int, tx pgx.Tx) (*models.Instrument, error) {
	return scanInstrument(conn(r.db, tx).QueryRow(ctx,
		`SELECT `+instrumentColumns+` FROM instruments WHERE id = $1`, id))
}

func (r *instrumentRepo) GetByTicker(ctx context.Context, ticker string, tx pgx.Tx) (*models.Instrument, error) {
	return scanInstrument(conn(r.db, tx).QueryRow(ctx,
		`SELECT `+instrumentColumns+` FROM instruments WHERE lower(ticker) = lower($1)`, ticker))
}

func (r *instrumentRepo) Create(ctx context.Context, i *models.Instrument, tx pgx.Tx) error {
	err := conn(r.db, tx).QueryRow(ctx,
		`INSERT INTO instruments (ticker, name, price, description)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`,
		i.Ticker, i.Name, i.Price, i.Description,
	).Scan(&i.ID, &i.CreatedAt, &i.UpdatedAt)
	return asConflict(err, utils.KindInstrument, i.Ticker)
}

func (r *instrumentRepo) Update(ctx context.Context, i *models.Instrument, tx pgx.Tx) error {
	err := conn(r.db, tx).QueryRow(ctx,
		`UPDATE instruments SET name = $2, price = $3, description = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		i.ID, i.Name, i.Price, i.Description,
	).Scan(&i.UpdatedAt)
	if isNoRows(err) {
		return utils.NewNotFoundError(utils.KindInstrument, i.Ticker)
	}
	return err
}
