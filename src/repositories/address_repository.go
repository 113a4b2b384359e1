package repositories

import (
	"context"

	"investmentapp/src/models"
	"investmentapp/src/utils"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AddressRepository interface {
	GetByID(ctx context.Context, id int, tx pgx.Tx) (*models.Address, error)
	Create(ctx context.Context, a *models.Address, tx pgx.Tx) error
	Update(ctx context.Context, a *models.Address, tx pgx.Tx) error
}

type addressRepo struct {
	db *pgxpool.Pool
}

func NewAddressRepository(db *pgxpool.Pool) AddressRepository {
	return &addressRepo{db: db}
}

func (r *addressRepo) GetByID(ctx context.Context, id int, tx pgx.Tx) (*models.Address, error) {
	var a models.Address
	err := conn(r.db, tx).QueryRow(ctx,
		`SELECT id, street, state, zipcode FROM addresses WHERE id = $1`+lockClause(tx), id,
	).Scan(&a.ID, &a.Street, &a.State, &a.Zipcode)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (r *addressRepo) Create(ctx context.Context, a *models.Address, tx pgx.Tx) error {
	return conn(r.db, tx).QueryRow(ctx,
		`INSERT INTO addresses (street, state, zipcode) VALUES ($1, $2, $3) RETURNING id`,
		a.Street, a.State, a.Zipcode,
	).Scan(&a.ID)
}

func (r *addressRepo) Update(ctx context.Context, a *models.Address, tx pgx.Tx) error {
	tag, err := conn(r.db, tx).Exec(ctx,
		`UPDATE addresses SET street = $2, state = $3, zipcode = $4 WHERE id = $1`,
		a.ID, a.Street, a.State, a.Zipcode)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return utils.NewNotFoundError(utils.KindAddress, a.ID)
	}
	return nil
}
