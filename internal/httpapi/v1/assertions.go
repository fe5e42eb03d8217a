package v1

import (
	"github.com/tinoosan/finledger/internal/storage/memory"
	"github.com/tinoosan/finledger/internal/storage/postgres"
)

var (
	_ Store        = (*memory.Store)(nil)
	_ Store        = (*postgres.Store)(nil)
	_ ReadyChecker = (*postgres.Store)(nil)
)
