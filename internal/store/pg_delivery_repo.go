package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hexlight/portal-notifier/internal/domain"
)

type pgDeliveryRepository struct {
	pool *pgxpool.Pool
}

// NewPgDeliveryRepository returns a DeliveryRepository backed by PostgreSQL.
func NewPgDeliveryRepository(pool *pgxpool.Pool) DeliveryRepository {
	return &pgDeliveryRepository{pool: pool}
}

func (r *pgDeliveryRepository) Create(ctx context.Context, d *domain.Delivery) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO deliveries
			(id, bug_id, kind, endpoint_id, outcome, error_message, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		d.ID, d.BugID, d.Kind, d.EndpointID, d.Outcome, d.ErrorMessage, d.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert delivery: %w", err)
	}
	return nil
}

func (r *pgDeliveryRepository) ListByBug(ctx context.Context, bugID int) ([]*domain.Delivery, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, bug_id, kind, endpoint_id, outcome, error_message, created_at
		FROM deliveries WHERE bug_id = $1
		ORDER BY created_at DESC`, bugID)
	if err != nil {
		return nil, fmt.Errorf("list deliveries: %w", err)
	}
	defer rows.Close()

	var deliveries []*domain.Delivery
	for rows.Next() {
		d, err := scanDelivery(rows)
		if err != nil {
			return nil, err
		}
		deliveries = append(deliveries, d)
	}
	return deliveries, rows.Err()
}

func (r *pgDeliveryRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM deliveries WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune deliveries: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanDelivery(row pgx.Row) (*domain.Delivery, error) {
	var d domain.Delivery
	err := row.Scan(&d.ID, &d.BugID, &d.Kind, &d.EndpointID, &d.Outcome, &d.ErrorMessage, &d.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
