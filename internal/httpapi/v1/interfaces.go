package v1

import (
	"context"

	"github.com/tinoosan/finledger/internal/service/account"
	"github.com/tinoosan/finledger/internal/service/analytics"
	"github.com/tinoosan/finledger/internal/service/budget"
	"github.com/tinoosan/finledger/internal/service/category"
	"github.com/tinoosan/finledger/internal/service/currency"
	"github.com/tinoosan/finledger/internal/service/tag"
	"github.com/tinoosan/finledger/internal/service/transaction"
	"github.com/tinoosan/finledger/internal/service/user"
)

// ReadyChecker is optionally implemented by stores to indicate readiness.
type ReadyChecker interface {
	Ready(ctx context.Context) error
}

// Store composes every repository and writer the API's services need.
// Both the in-memory and Postgres stores satisfy it.
type Store interface {
	user.Repo
	user.Writer
	account.Repo
	account.Writer
	category.Repo
	category.Writer
	tag.Repo
	tag.Writer
	transaction.Repo
	transaction.Writer
	currency.Repo
	currency.Writer
	budget.Repo
	budget.Writer
	analytics.Repo
}
