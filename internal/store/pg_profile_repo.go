package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hexlight/portal-notifier/internal/domain"
)

type pgProfileRepository struct {
	pool *pgxpool.Pool
}

// NewPgProfileRepository returns a ProfileRepository backed by PostgreSQL.
func NewPgProfileRepository(pool *pgxpool.Pool) ProfileRepository {
	return &pgProfileRepository{pool: pool}
}

func (r *pgProfileRepository) GetByName(ctx context.Context, name string) (*domain.Profile, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, email, messaging_endpoint_id, created_at, updated_at
		FROM profiles WHERE name = $1`, name)

	p, err := scanProfile(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return p, err
}

func (r *pgProfileRepository) GetByIDs(ctx context.Context, ids []string) ([]*domain.Profile, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, name, email, messaging_endpoint_id, created_at, updated_at
		FROM profiles WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	var profiles []*domain.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

func (r *pgProfileRepository) SetEndpointID(ctx context.Context, profileID, endpointID string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE profiles
		SET messaging_endpoint_id = $1, updated_at = NOW()
		WHERE id = $2`, endpointID, profileID)
	if err != nil {
		return fmt.Errorf("update profile endpoint: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// scanProfile reads a single profile row from any pgx row type.
func scanProfile(row pgx.Row) (*domain.Profile, error) {
	var p domain.Profile
	err := row.Scan(&p.ID, &p.Name, &p.Email, &p.EndpointID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
