package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

// Tx is an opaque transaction handle; its concrete type is infra-defined
// (pgx.Tx for Postgres). Repositories must accept nil (non-transactional path).
type Tx interface{}

var NoTX Tx

// TransactionManager runs fn inside a single store transaction. If fn returns
// an error the transaction is rolled back, otherwise it is committed.
//
// Usage:
//
//	tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx Tx) error {
//		c, err := codes.FindUnused(ctx, tx, value)
//		...
//		return err
//	})
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
