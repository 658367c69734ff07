package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/Despachos-api/internal/application/logistics"
	"github.com/jhoicas/Despachos-api/internal/domain/repository"
)

var _ logistics.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(uow logistics.UnitOfWork) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(newTxUnit(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// txUnit repositorios atados a una pgx.Tx (o a un savepoint, que pgx modela como tx anidada).
type txUnit struct {
	tx          pgx.Tx
	pallets     *PalletRepo
	loads       *LoadRepo
	memberships *MembershipRepo
	releases    *ReleaseRequestRepo
	shipped     *ShippedPalletRepo
}

func newTxUnit(tx pgx.Tx) *txUnit {
	return &txUnit{
		tx:          tx,
		pallets:     NewPalletRepository(tx),
		loads:       NewLoadRepository(tx),
		memberships: NewMembershipRepository(tx),
		releases:    NewReleaseRequestRepository(tx),
		shipped:     NewShippedPalletRepository(tx),
	}
}

func (u *txUnit) Pallets() repository.PalletRepository {
	return u.pallets
}

func (u *txUnit) Loads() repository.LoadRepository {
	return u.loads
}

func (u *txUnit) Memberships() repository.MembershipRepository {
	return u.memberships
}

func (u *txUnit) Releases() repository.ReleaseRequestRepository {
	return u.releases
}

func (u *txUnit) Shipped() repository.ShippedPalletRepository {
	return u.shipped
}

// Savepoint tx.Begin sobre una tx abierta emite SAVEPOINT; Rollback hace ROLLBACK TO SAVEPOINT
// y Commit hace RELEASE SAVEPOINT.
func (u *txUnit) Savepoint(ctx context.Context, fn func(uow logistics.UnitOfWork) error) error {
	sp, err := u.tx.Begin(ctx)
	if err != nil {
		return fmt.Errorf("savepoint: %w", err)
	}
	defer func() { _ = sp.Rollback(ctx) }()

	if err := fn(newTxUnit(sp)); err != nil {
		return err
	}
	if err := sp.Commit(ctx); err != nil {
		return fmt.Errorf("release savepoint: %w", err)
	}
	return nil
}
