package testsupport

import (
	"testing"

	"picvoice/internal/config"
	"picvoice/internal/store"
)

// MustOpenStore opens a store against the test config and registers
// cleanup. Failures abort the test.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := st.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})
	return st
}
