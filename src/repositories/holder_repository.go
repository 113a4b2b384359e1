package repositories

import (
	"context"

	"investmentapp/src/models"
	"investmentapp/src/utils"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// HolderRepository returns (nil, nil) from lookups that match nothing.
type HolderRepository interface {
	GetByID(ctx context.Context, id int, tx pgx.Tx) (*models.Holder, error)
	GetByEmail(ctx context.Context, email string, tx pgx.Tx) (*models.Holder, error)
	Create(ctx context.Context, h *models.Holder, tx pgx.Tx) error
	Update(ctx context.Context, h *models.Holder, tx pgx.Tx) error
	SetAddress(ctx context.Context, holderID, addressID int, tx pgx.Tx) error
}

type holderRepo struct {
	db *pgxpool.Pool
}

func NewHolderRepository(db *pgxpool.Pool) HolderRepository {
	return &holderRepo{db: db}
}

const holderColumns = `id, email, first_name, last_name, password_hash, address_id, created_at, updated_at`

func scanHolder(row pgx.Row) (*models.Holder, error) {
	var h models.Holder
	err := row.Scan(&h.ID, &h.Email, &h.FirstName, &h.LastName, &h.PasswordHash, &h.AddressID, &h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return &h, nil
}

func (r *holderRepo) GetByID(ctx context.Context, id int, tx pgx.Tx) (*models.Holder, error) {
	return scanHolder(conn(r.db, tx).QueryRow(ctx,
		`SELECT `+holderColumns+` FROM holders WHERE id = $1`+lockClause(tx), id))
}

func (r *holderRepo) GetByEmail(ctx context.Context, email string, tx pgx.Tx) (*models.Holder, error) {
	return scanHolder(conn(r.db, tx).QueryRow(ctx,
		`SELECT `+holderColumns+` FROM holders WHERE lower(email) = lower($1)`+lockClause(tx), email))
}

func (r *holderRepo) Create(ctx context.Context, h *models.Holder, tx pgx.Tx) error {
	err := conn(r.db, tx).QueryRow(ctx,
		`INSERT INTO holders (email, first_name, last_name, password_hash, address_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`,
		h.Email, h.FirstName, h.LastName, h.PasswordHash, h.AddressID,
	).Scan(&h.ID, &h.CreatedAt, &h.UpdatedAt)
	return asConflict(err, utils.KindHolder, h.Email)
}

func (r *holderRepo) Update(ctx context.Context, h *models.Holder, tx pgx.Tx) error {
	err := conn(r.db, tx).QueryRow(ctx,
		`UPDATE holders SET email = $2, first_name = $3, last_name = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		h.ID, h.Email, h.FirstName, h.LastName,
	).Scan(&h.UpdatedAt)
	if isNoRows(err) {
		return utils.NewNotFoundError(utils.KindHolder, h.ID)
	}
	return asConflict(err, utils.KindHolder, h.Email)
}

func (r *holderRepo) SetAddress(ctx context.Context, holderID, addressID int, tx pgx.Tx) error {
	tag, err := conn(r.db, tx).Exec(ctx,
		`UPDATE holders SET address_id = $2, updated_at = NOW() WHERE id = $1`, holderID, addressID)
	if err != nil {
		return asConflict(err, utils.KindAddress, addressID)
	}
	if tag.RowsAffected() == 0 {
		return utils.NewNotFoundError(utils.KindHolder, holderID)
	}
	return nil
}
