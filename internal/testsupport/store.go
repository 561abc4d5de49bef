package testsupport

import (
	"path/filepath"
	"testing"

	"github.com/jonboulle/clockwork"

	"echosurvey/internal/ledger"
)

// MustOpenLedger opens a ledger in a temp directory and registers cleanup.
func MustOpenLedger(t testing.TB, clock clockwork.Clock) *ledger.Store {
	t.Helper()

	store, err := ledger.Open(filepath.Join(t.TempDir(), "echosurvey.db"), ledger.WithClock(clock))
	if err != nil {
		t.Fatalf("ledger.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}
