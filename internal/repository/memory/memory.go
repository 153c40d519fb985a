package memory

import (
	"investment_manager/internal/repository"
)

var (
	_ repository.AccountRepository    = (*AccountRepository)(nil)
	_ repository.InvestmentRepository = (*InvestmentRepository)(nil)
	_ repository.LedgerRepository     = (*LedgerRepository)(nil)
	_ repository.AtomicStore          = (*Store)(nil)
)
