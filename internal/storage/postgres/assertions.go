package postgres

import (
	"github.com/tinoosan/finledger/internal/service/account"
	"github.com/tinoosan/finledger/internal/service/analytics"
	"github.com/tinoosan/finledger/internal/service/budget"
	"github.com/tinoosan/finledger/internal/service/category"
	"github.com/tinoosan/finledger/internal/service/currency"
	"github.com/tinoosan/finledger/internal/service/tag"
	"github.com/tinoosan/finledger/internal/service/transaction"
	"github.com/tinoosan/finledger/internal/service/user"
)

// Compile-time interface assertions documenting which interfaces Store satisfies.
var (
	_ user.Repo          = (*Store)(nil)
	_ user.Writer        = (*Store)(nil)
	_ account.Repo       = (*Store)(nil)
	_ account.Writer     = (*Store)(nil)
	_ category.Repo      = (*Store)(nil)
	_ category.Writer    = (*Store)(nil)
	_ tag.Repo           = (*Store)(nil)
	_ tag.Writer         = (*Store)(nil)
	_ transaction.Repo   = (*Store)(nil)
	_ transaction.Writer = (*Store)(nil)
	_ currency.Repo      = (*Store)(nil)
	_ currency.Writer    = (*Store)(nil)
	_ budget.Repo        = (*Store)(nil)
	_ budget.Writer      = (*Store)(nil)
	_ analytics.Repo     = (*Store)(nil)
)
