package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/saeid-a/StudioBookingBack/internal/ports"
)

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store runs repositories against the pool, or inside one transaction via InTx.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Contracts() ports.ContractRepository {
	return NewContractRepository(s.pool)
}

func (s *Store) Sessions() ports.SessionRepository {
	return NewSessionRepository(s.pool)
}

func (s *Store) InTx(ctx context.Context, fn func(tx ports.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := fn(&storeTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

type storeTx struct {
	tx pgx.Tx
}

func (t *storeTx) Contracts() ports.ContractRepository {
	return NewContractRepository(t.tx)
}

func (t *storeTx) Sessions() ports.SessionRepository {
	return NewSessionRepository(t.tx)
}

// LockContract serializes credit checks and check-ins on one contract.
func (t *storeTx) LockContract(ctx context.Context, contractID string) error {
	return t.advisoryLock(ctx, "contract:"+contractID)
}

// LockTrainerDay serializes conflict checks for one trainer and day.
func (t *storeTx) LockTrainerDay(ctx context.Context, trainerID string, date int64) error {
	return t.advisoryLock(ctx, fmt.Sprintf("trainer:%s:%d", trainerID, date))
}

func (t *storeTx) advisoryLock(ctx context.Context, key string) error {
	if _, err := t.tx.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtextextended($1, 0))", key); err != nil {
		return fmt.Errorf("advisory lock %s: %w", key, err)
	}
	return nil
}
