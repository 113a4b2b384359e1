package repositories

import (
	"context"
	"errors"
	"fmt"

	"investmentapp/src/utils"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

// Transactor runs fn inside one store transaction. A non-nil error from fn
// rolls back everything fn wrote.
type Transactor interface {
	WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}

// Store bundles the repositories that make up the entity store.
type Store struct {
	Transactor  Transactor
	Holders     HolderRepository
	Instruments InstrumentRepository
	Positions   PositionRepository
	Addresses   AddressRepository
	Roles       RoleRepository
	Links       LinkRepository
}

func NewPostgresStore(db *pgxpool.Pool) *Store {
	return &Store{
		Transactor:  NewTransactor(db),
		Holders:     NewHolderRepository(db),
		Instruments: NewInstrumentRepository(db),
		Positions:   NewPositionRepository(db),
		Addresses:   NewAddressRepository(db),
		Roles:       NewRoleRepository(db),
		Links:       NewLinkRepository(db),
	}
}

type pgxTransactor struct {
	db *pgxpool.Pool
}

func NewTransactor(db *pgxpool.Pool) Transactor {
	return &pgxTransactor{db: db}
}

func (t *pgxTransactor) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) (err error) {
	tx, err := t.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// querier is the subset shared by *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// conn uses the caller's transaction when there is one.
func conn(db *pgxpool.Pool, tx pgx.Tx) querier {
	if tx != nil {
		return tx
	}
	return db
}

// lockClause row-locks reads made inside a transaction.
func lockClause(tx pgx.Tx) string {
	if tx != nil {
		return " FOR UPDATE"
	}
	return ""
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

func asConflict(err error, kind string, key any) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return &utils.ConflictError{Kind: kind, Key: fmt.Sprint(key), Err: err}
	}
	return err
}
