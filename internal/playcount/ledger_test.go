package playcount

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestIncrementConcurrentNoLostUpdates(t *testing.T) {
	ledger := NewLedger(filepath.Join(t.TempDir(), "play_counts.json"), nil)

	const workers = 50
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := ledger.Increment("videos/a/x.mp4"); err != nil {
				t.Errorf("Increment: %v", err)
			}
			if _, err := ledger.Increment("videos/a/y.mp4"); err != nil {
				t.Errorf("Increment: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if got := ledger.Get("videos/a/x.mp4"); got != workers {
		t.Fatalf("x count = %d, want %d", got, workers)
	}
	if got := ledger.Total(); got != 2*workers {
		t.Fatalf("total = %d, want %d", got, 2*workers)
	}
}

func TestLoadDuringIncrementsKeepsEveryPlay(t *testing.T) {
	ledger := NewLedger(filepath.Join(t.TempDir(), "play_counts.json"), nil)
	allKnown := func(string) bool { return true }

	stop := make(chan struct{})
	reloaded := make(chan struct{})
	go func() {
		defer close(reloaded)
		for {
			select {
			case <-stop:
				return
			default:
			}
			if _, err := ledger.Load(allKnown); err != nil {
				t.Errorf("Load: %v", err)
				return
			}
		}
	}()

	const workers = 50
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := ledger.Increment("videos/a/v.mp4"); err != nil {
				t.Errorf("Increment: %v", err)
			}
		}()
	}
	wg.Wait()
	close(stop)
	<-reloaded

	if got := ledger.Get("videos/a/v.mp4"); got != workers {
		t.Fatalf("count after concurrent reloads = %d, want %d", got, workers)
	}
	if _, err := ledger.Load(allKnown); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := ledger.Get("videos/a/v.mp4"); got != workers {
		t.Fatalf("persisted count = %d, want %d", got, workers)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "play_counts.json")
	ledger := NewLedger(path, nil)
	for _, id := range []string{"videos/a/1.mp4", "videos/a/1.mp4", "videos/b/2.mp4"} {
		if _, err := ledger.Increment(id); err != nil {
			t.Fatalf("Increment: %v", err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read ledger: %v", err)
	}
	var payload fileFormat
	if err := json.Unmarshal(data, &payload); err != nil {
		t.Fatalf("ledger is not valid json: %v", err)
	}
	if payload.Version != 1 || payload.LastUpdated == "" {
		t.Fatalf("unexpected header: %+v", payload)
	}

	reloaded := NewLedger(path, nil)
	pruned, err := reloaded.Load(func(string) bool { return true })
	if err != nil || pruned != 0 {
		t.Fatalf("Load pruned=%d err=%v", pruned, err)
	}
	want := ledger.Snapshot()
	got := reloaded.Snapshot()
	if len(got) != len(want) {
		t.Fatalf("snapshot = %v, want %v", got, want)
	}
	for id, n := range want {
		if got[id] != n {
			t.Fatalf("count[%s] = %d, want %d", id, got[id], n)
		}
	}
}

func TestLoadPrunesUnknownVideos(t *testing.T) {
	path := filepath.Join(t.TempDir(), "play_counts.json")
	content := `{"version":1,"last_updated":"2026-01-01T00:00:00Z","counts":{"videos/a/keep.mp4":3,"videos/a/gone.mp4":7}}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	ledger := NewLedger(path, nil)
	pruned, err := ledger.Load(func(id string) bool { return id == "videos/a/keep.mp4" })
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if pruned != 1 {
		t.Fatalf("pruned = %d, want 1", pruned)
	}
	if ledger.Get("videos/a/keep.mp4") != 3 || ledger.Get("videos/a/gone.mp4") != 0 {
		t.Fatalf("unexpected counts: %v", ledger.Snapshot())
	}
}

func TestLoadCorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "play_counts.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	ledger := NewLedger(path, nil)
	if _, err := ledger.Load(nil); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if ledger.Total() != 0 {
		t.Fatalf("expected empty ledger, got %v", ledger.Snapshot())
	}
}

func TestFailedSaveKeepsPreviousFileAndInMemoryCount(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "play_counts.json")
	ledger := NewLedger(path, nil)
	if _, err := ledger.Increment("videos/a/1.mp4"); err != nil {
		t.Fatalf("Increment: %v", err)
	}
	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	// A directory squatting on the temp path makes the next write fail.
	if err := os.MkdirAll(filepath.Join(path+".tmp", "block"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	count, err := ledger.Increment("videos/a/1.mp4")
	if err == nil {
		t.Fatal("expected save error")
	}
	if count != 2 || ledger.Get("videos/a/1.mp4") != 2 {
		t.Fatalf("in-memory count should advance, got %d", count)
	}
	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read after failure: %v", err)
	}
	if string(after) != string(before) {
		t.Fatal("previous ledger file must remain intact")
	}
}
