//go:build integration

// Package containers starts the Postgres instance used by store integration
// tests. One container serves every suite in a test binary.
package containers

import (
	"sync"
	"testing"
)

var (
	sharedMu sync.Mutex
	shared   *PostgresContainer
)

// SharedPostgres returns the package-wide container, starting and migrating it
// on first use. Suites isolate themselves with TruncateModuleTables.
func SharedPostgres(t *testing.T) *PostgresContainer {
	t.Helper()

	sharedMu.Lock()
	defer sharedMu.Unlock()

	if shared == nil {
		shared = NewPostgresContainer(t)
	}
	return shared
}
