package services

import (
	portsrepo "github.com/agencyops/travel_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/agencyops/travel_ledger_app/internal/core/ports/services"
	"github.com/agencyops/travel_ledger_app/pkg/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies.
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	clock := NewRealClock()
	resolver := NewDefaultAccountResolver()

	container := &portssvc.ServiceContainer{}

	// The sequencer comes first since every document-creating service pulls
	// numbers from it.
	container.Sequencer = NewSequencerService(repos.DocumentNumberRepo, clock)
	container.Fx = NewFxService(repos.FxRepo, clock, cfg.BaseCurrencyCode)
	container.Account = NewAccountService(repos.AccountRepo, clock)
	container.Voucher = NewVoucherService(repos.VoucherRepo, container.Account, container.Sequencer, clock)
	container.Ledger = NewLedgerService(repos.LedgerRepo, container.Sequencer, container.Fx, resolver, clock, cfg.BaseCurrencyCode)

	return container
}
