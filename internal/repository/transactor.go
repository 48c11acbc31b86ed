package repository

import (
	"context"

	"jobboard/internal/database"
	"jobboard/internal/domain/job"
	"jobboard/internal/domain/user"
)

// Transactor hands out repositories bound to a single transaction.
type Transactor struct {
	db database.DB
}

func NewTransactor(db database.DB) *Transactor {
	return &Transactor{db: db}
}

// InTx commits when fn returns nil and rolls back otherwise.
func (t *Transactor) InTx(ctx context.Context, fn func(users user.Repository, jobs job.Repository) error) error {
	return database.WithTx(ctx, t.db, func(tx database.Tx) error {
		return fn(NewPostgresUserRepository(tx), NewPostgresJobRepository(tx))
	})
}
