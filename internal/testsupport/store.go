package testsupport

import (
	"context"
	"testing"

	"marquee/internal/config"
	"marquee/internal/store"
)

// MustOpenStore opens a store.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})
	return st
}

// NewSubmission creates a pending submission for tests using the provided store.
func NewSubmission(t testing.TB, st *store.Store, memory, resolution, guest string) *store.Submission {
	t.Helper()

	ctx := context.Background()
	id, err := st.CreateSubmission(ctx, memory, resolution, guest)
	if err != nil {
		t.Fatalf("store.CreateSubmission: %v", err)
	}
	sub, err := st.GetSubmission(ctx, id)
	if err != nil || sub == nil {
		t.Fatalf("store.GetSubmission(%d): %v", id, err)
	}
	return sub
}
