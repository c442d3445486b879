package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"promo-raffle/internal/domain"
	"promo-raffle/internal/domain/model"
	"promo-raffle/internal/domain/ports/repository"
	"promo-raffle/internal/infra/metrics"
)

// Ensure implementation satisfies the interface.
var _ repository.CodeRepository = (*codeRepo)(nil)

type codeRepo struct {
	pool *pgxpool.Pool
}

func NewCodeRepo(pool *pgxpool.Pool) *codeRepo {
	return &codeRepo{pool: pool}
}

const codeColumns = `id, code, used, created_at, used_at`

func (r *codeRepo) Exists(ctx context.Context, tx repository.Tx, value string) (bool, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT EXISTS (SELECT 1 FROM raffle_codes WHERE code = $1);`, value)
	if err != nil {
		return false, err
	}
	var ok bool
	if err := row.Scan(&ok); err != nil {
		metrics.IncDBError("raffle_codes", "exists")
		return false, fmt.Errorf("code exists: %w", err)
	}
	return ok, nil
}

// Create inserts a new, unused code. A duplicate value maps to domain.ErrAlreadyExists.
func (r *codeRepo) Create(ctx context.Context, tx repository.Tx, c *model.Code) error {
	const q = `
INSERT INTO raffle_codes (id, code, used, created_at, used_at)
VALUES ($1, $2, $3, $4, $5);`
	_, err := execSQL(ctx, r.pool, tx, q, c.ID, c.Value, c.Used, c.CreatedAt, c.UsedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		metrics.IncDBError("raffle_codes", "insert")
		return fmt.Errorf("insert code: %w", err)
	}
	return nil
}

func (r *codeRepo) FindByValue(ctx context.Context, tx repository.Tx, value string) (*model.Code, error) {
	q := `SELECT ` + codeColumns + ` FROM raffle_codes WHERE code = $1;`
	return r.queryOne(ctx, tx, q, value)
}

// FindUnused returns the code only while it is unused. Inside a transaction the
// row stays locked until commit so concurrent redemptions queue behind it.
func (r *codeRepo) FindUnused(ctx context.Context, tx repository.Tx, value string) (*model.Code, error) {
	q := `SELECT ` + codeColumns + ` FROM raffle_codes WHERE code = $1 AND used = FALSE`
	if inTx(tx) {
		q += ` FOR UPDATE`
	}
	return r.queryOne(ctx, tx, q+`;`, value)
}

// MarkUsed flips the flag only if it is still false and reports whether it did.
func (r *codeRepo) MarkUsed(ctx context.Context, tx repository.Tx, value string, at time.Time) (bool, error) {
	const q = `
UPDATE raffle_codes
   SET used = TRUE, used_at = $2
 WHERE code = $1 AND used = FALSE;`
	tag, err := execSQL(ctx, r.pool, tx, q, value, at)
	if err != nil {
		metrics.IncDBError("raffle_codes", "mark_used")
		return false, fmt.Errorf("mark code used: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// DeleteAll removes every code. Codes referenced by participants make the
// statement fail with domain.ErrCodesInUse.
func (r *codeRepo) DeleteAll(ctx context.Context, tx repository.Tx) (int64, error) {
	tag, err := execSQL(ctx, r.pool, tx, `DELETE FROM raffle_codes;`)
	if err != nil {
		if isForeignKeyViolation(err) {
			return 0, domain.ErrCodesInUse
		}
		metrics.IncDBError("raffle_codes", "delete")
		return 0, fmt.Errorf("delete codes: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *codeRepo) Stats(ctx context.Context, tx repository.Tx) (*model.CodeStats, error) {
	const q = `
SELECT COUNT(*), COUNT(*) FILTER (WHERE used)
  FROM raffle_codes;`
	row, err := pickRow(ctx, r.pool, tx, q)
	if err != nil {
		return nil, err
	}
	var st model.CodeStats
	if err := row.Scan(&st.Total, &st.Used); err != nil {
		metrics.IncDBError("raffle_codes", "stats")
		return nil, fmt.Errorf("code stats: %w", err)
	}
	st.Unused = st.Total - st.Used
	return &st, nil
}

func (r *codeRepo) queryOne(ctx context.Context, tx repository.Tx, q string, args ...interface{}) (*model.Code, error) {
	row, err := pickRow(ctx, r.pool, tx, q, args...)
	if err != nil {
		return nil, err
	}
	var c model.Code
	if err := row.Scan(&c.ID, &c.Value, &c.Used, &c.CreatedAt, &c.UsedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		metrics.IncDBError("raffle_codes", "select")
		return nil, fmt.Errorf("%w: %v", domain.ErrReadDatabaseRow, err)
	}
	return &c, nil
}
