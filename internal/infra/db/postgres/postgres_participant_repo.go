package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"promo-raffle/internal/domain"
	"promo-raffle/internal/domain/model"
	"promo-raffle/internal/domain/ports/repository"
	"promo-raffle/internal/infra/metrics"
)

// Ensure implementation satisfies the interface.
var _ repository.ParticipantRepository = (*participantRepo)(nil)

type participantRepo struct {
	pool *pgxpool.Pool
}

func NewParticipantRepo(pool *pgxpool.Pool) *participantRepo {
	return &participantRepo{pool: pool}
}

func (r *participantRepo) ExistsByCode(ctx context.Context, tx repository.Tx, code string) (bool, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT EXISTS (SELECT 1 FROM participants WHERE code = $1);`, code)
	if err != nil {
		return false, err
	}
	var ok bool
	if err := row.Scan(&ok); err != nil {
		metrics.IncDBError("participants", "exists")
		return false, fmt.Errorf("participant exists: %w", err)
	}
	return ok, nil
}

// Create inserts the participant. The unique index on code turns a second
// claim into domain.ErrAlreadyExists; an unknown code violates the foreign key.
func (r *participantRepo) Create(ctx context.Context, tx repository.Tx, p *model.Participant) error {
	const q = `
INSERT INTO participants (id, full_name, email, phone, instagram, code, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7);`
	_, err := execSQL(ctx, r.pool, tx, q, p.ID, p.FullName, p.Email, p.Phone, p.Instagram, p.Code, p.CreatedAt)
	switch {
	case err == nil:
		return nil
	case isUniqueViolation(err):
		return domain.ErrAlreadyExists
	case isForeignKeyViolation(err):
		return domain.ErrInvalidCode
	default:
		metrics.IncDBError("participants", "insert")
		return fmt.Errorf("insert participant: %w", err)
	}
}

func (r *participantRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Participant, error) {
	const q = `
SELECT id, full_name, email, phone, instagram, code, created_at
  FROM participants
 ORDER BY created_at DESC, id DESC;`
	rows, err := queryRows(ctx, r.pool, tx, q)
	if err != nil {
		metrics.IncDBError("participants", "list")
		return nil, fmt.Errorf("list participants: %w", err)
	}
	defer rows.Close()

	var out []*model.Participant
	for rows.Next() {
		var p model.Participant
		if err := rows.Scan(&p.ID, &p.FullName, &p.Email, &p.Phone, &p.Instagram, &p.Code, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrReadDatabaseRow, err)
		}
		out = append(out, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	return out, nil
}

func (r *participantRepo) Count(ctx context.Context, tx repository.Tx) (int, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT COUNT(*) FROM participants;`)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		metrics.IncDBError("participants", "count")
		return 0, fmt.Errorf("count participants: %w", err)
	}
	return n, nil
}
