package repositories

import (
	"context"
	"fmt"

	"investmentapp/src/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LinkRepository stores the two back-reference indexes,
// holder_positions and instrument_positions. Link is idempotent.
type LinkRepository interface {
	Link(ctx context.Context, side models.LinkSide, ownerID, positionID int, tx pgx.Tx) error
	Unlink(ctx context.Context, side models.LinkSide, positionID int, tx pgx.Tx) error
	PositionIDs(ctx context.Context, side models.LinkSide, ownerID int, tx pgx.Tx) ([]int, error)
	All(ctx context.Context, side models.LinkSide, tx pgx.Tx) ([]models.Link, error)
}

type linkRepo struct {
	db *pgxpool.Pool
}

func NewLinkRepository(db *pgxpool.Pool) LinkRepository {
	return &linkRepo{db: db}
}

func linkTable(side models.LinkSide) (table, ownerColumn string, err error) {
	switch side {
	case models.HolderSide:
		return "holder_positions", "holder_id", nil
	case models.InstrumentSide:
		return "instrument_positions", "instrument_id", nil
	default:
		return "", "", fmt.Errorf("unknown link side %q", side)
	}
}

func (r *linkRepo) Link(ctx context.Context, side models.LinkSide, ownerID, positionID int, tx pgx.Tx) error {
	table, owner, err := linkTable(side)
	if err != nil {
		return err
	}
	_, err = conn(r.db, tx).Exec(ctx,
		fmt.Sprintf(`INSERT INTO %s (%s, position_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, table, owner),
		ownerID, positionID)
	return err
}

func (r *linkRepo) Unlink(ctx context.Context, side models.LinkSide, positionID int, tx pgx.Tx) error {
	table, _, err := linkTable(side)
	if err != nil {
		return err
	}
	_, err = conn(r.db, tx).Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE position_id = $1`, table), positionID)
	return err
}

func (r *linkRepo) PositionIDs(ctx context.Context, side models.LinkSide, ownerID int, tx pgx.Tx) ([]int, error) {
	table, owner, err := linkTable(side)
	if err != nil {
		return nil, err
	}
	rows, err := conn(r.db, tx).Query(ctx,
		fmt.Sprintf(`SELECT position_id FROM %s WHERE %s = $1 ORDER BY position_id`, table, owner), ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *linkRepo) All(ctx context.Context, side models.LinkSide, tx pgx.Tx) ([]models.Link, error) {
	table, owner, err := linkTable(side)
	if err != nil {
		return nil, err
	}
	rows, err := conn(r.db, tx).Query(ctx,
		fmt.Sprintf(`SELECT %s, position_id FROM %s ORDER BY position_id`, owner, table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []models.Link
	for rows.Next() {
		l := models.Link{Side: side}
		if err := rows.Scan(&l.OwnerID, &l.PositionID); err != nil {
			return nil, err
		}
		links = append(links, l)
	}
	return links, rows.Err()
}
