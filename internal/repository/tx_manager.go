package repository

import "context"

// TxManager scopes a unit of work: every repository call made with the
// context passed to fn runs on one database transaction, committed when fn
// returns nil and rolled back otherwise.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
