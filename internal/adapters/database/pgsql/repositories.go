package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/agencyops/travel_ledger_app/internal/core/ports/repositories"
)

// Compile-time checks that the pgx implementations satisfy their ports.
var (
	_ portsrepo.DocumentNumberRepositoryFacade = (*PgxDocumentNumberRepository)(nil)
	_ portsrepo.FxRepositoryFacade             = (*PgxFxRepository)(nil)
	_ portsrepo.VoucherRepositoryFacade        = (*PgxVoucherRepository)(nil)
	_ portsrepo.LedgerRepositoryFacade         = (*PgxLedgerRepository)(nil)
	_ portsrepo.AccountRepositoryFacade        = (*PgxAccountRepository)(nil)
)

// NewRepositoryProvider wires every pgx repository onto one shared pool.
func NewRepositoryProvider(pool *pgxpool.Pool) *portsrepo.RepositoryProvider {
	return &portsrepo.RepositoryProvider{
		DocumentNumberRepo: NewPgxDocumentNumberRepository(pool),
		FxRepo:             NewPgxFxRepository(pool),
		VoucherRepo:        NewPgxVoucherRepository(pool),
		LedgerRepo:         NewPgxLedgerRepository(pool),
		AccountRepo:        NewPgxAccountRepository(pool),
	}
}
