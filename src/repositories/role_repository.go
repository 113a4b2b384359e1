package repositories

import (
	"context"

	"investmentapp/src/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RoleRepository interface {
	GetByEmail(ctx context.Context, email string, tx pgx.Tx) ([]models.RoleGrant, error)
	// Grant is idempotent: granting an existing role leaves one row.
	Grant(ctx context.Context, g *models.RoleGrant, tx pgx.Tx) error
}

type roleRepo struct {
	db *pgxpool.Pool
}

func NewRoleRepository(db *pgxpool.Pool) RoleRepository {
	return &roleRepo{db: db}
}

func (r *roleRepo) GetByEmail(ctx context.Context, email string, tx pgx.Tx) ([]models.RoleGrant, error) {
	rows, err := conn(r.db, tx).Query(ctx,
		`SELECT id, email, role, created_at FROM role_grants WHERE lower(email) = lower($1) ORDER BY id`, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var grants []models.RoleGrant
	for rows.Next() {
		var g models.RoleGrant
		if err := rows.Scan(&g.ID, &g.Email, &g.Role, &g.CreatedAt); err != nil {
			return nil, err
		}
		grants = append(grants, g)
	}
	return grants, rows.Err()
}

func (r *roleRepo) Grant(ctx context.Context, g *models.RoleGrant, tx pgx.Tx) error {
	query := `
		INSERT INTO role_grants (email, role)
		VALUES ($1, $2)
		ON CONFLICT (lower(email), role) DO UPDATE SET role = EXCLUDED.role
		RETURNING id, created_at`

	return conn(r.db, tx).QueryRow(ctx, query, g.Email, g.Role).Scan(&g.ID, &g.CreatedAt)
}
