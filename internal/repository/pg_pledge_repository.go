package repository

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pledges/backend/internal/model"
)

type pgPledgeRepository struct {
	pool *pgxpool.Pool
}

// NewPgPledgeRepository returns a PostgreSQL-backed PledgeRepository.
func NewPgPledgeRepository(pool *pgxpool.Pool) PledgeRepository {
	return &pgPledgeRepository{pool: pool}
}

const pledgeSelectCols = `id, donor_name, units, frequency, duration, amount, currency,
	includes_zakat, zakat_percentage, zakat_amount,
	COALESCE(stripe_payment_id, ''), COALESCE(stripe_subscription_id, ''), created_at`

func scanPledge(scan func(...any) error) (*model.Pledge, error) {
	p := &model.Pledge{}
	return p, scan(
		&p.ID, &p.DonorName, &p.Units, &p.Frequency, &p.Duration,
		&p.Amount, &p.Currency,
		&p.IncludesZakat, &p.ZakatPercentage, &p.ZakatAmount,
		&p.StripePaymentID, &p.StripeSubscriptionID, &p.CreatedAt,
	)
}

func (r *pgPledgeRepository) Create(ctx context.Context, p *model.Pledge) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO pledges
		 (donor_name, units, frequency, duration, amount, currency,
		  includes_zakat, zakat_percentage, zakat_amount,
		  stripe_payment_id, stripe_subscription_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NULLIF($10,''), NULLIF($11,''))`,
		p.DonorName, p.Units, p.Frequency, p.Duration, p.Amount, p.Currency,
		p.IncludesZakat, p.ZakatPercentage, p.ZakatAmount,
		p.StripePaymentID, p.StripeSubscriptionID,
	)
	if err != nil && strings.Contains(err.Error(), "duplicate key") {
		return ErrDuplicate
	}
	return err
}

func (r *pgPledgeRepository) ListRecent(ctx context.Context, limit int) ([]*model.Pledge, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+pledgeSelectCols+`
		 FROM pledges
		 ORDER BY created_at DESC
		 LIMIT $1`,
		limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*model.Pledge
	for rows.Next() {
		p, err := scanPledge(rows.Scan)
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func (r *pgPledgeRepository) PledgedUnits(ctx context.Context) (int, error) {
	// One row is recorded per completed checkout session, so a plain sum
	// counts each pledge once.
	var units int
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(units), 0)::int FROM pledges`,
	).Scan(&units)
	return units, err
}
