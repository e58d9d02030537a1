package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hexlight/portal-notifier/internal/domain"
)

type pgProjectRepository struct {
	pool *pgxpool.Pool
}

// NewPgProjectRepository returns a ProjectRepository backed by PostgreSQL.
func NewPgProjectRepository(pool *pgxpool.Pool) ProjectRepository {
	return &pgProjectRepository{pool: pool}
}

func (r *pgProjectRepository) GetByName(ctx context.Context, name string) (*domain.Project, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, member_ids
		FROM projects WHERE name = $1`, name)

	var p domain.Project
	err := row.Scan(&p.ID, &p.Name, &p.MemberIDs)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
