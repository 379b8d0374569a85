package service

import (
	"context"
	"database/sql"

	"github.com/crosspilot/crosspilot/internal/repository"
)

// Tx is the slice of transaction behavior the services need.
// *sql.Tx satisfies it.
type Tx interface {
	repository.Execer
	Commit() error
	Rollback() error
}

// TxBeginner starts transactions. Production code wraps the *sql.DB
// with NewTxBeginner; tests substitute an in-memory implementation.
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (Tx, error)
}

type sqlTxBeginner struct {
	db *sql.DB
}

func NewTxBeginner(db *sql.DB) TxBeginner {
	return &sqlTxBeginner{db: db}
}

func (b *sqlTxBeginner) BeginTx(ctx context.Context, opts *sql.TxOptions) (Tx, error) {
	tx, err := b.db.BeginTx(ctx, opts)
	if err != nil {
		return nil, err
	}
	return tx, nil
}
