package injection

import (
	"reflect"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	"marquee/internal/deck"
	"marquee/internal/store"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func approvedAt(id int64, reviewed time.Time, guest string) *store.Submission {
	sub := &store.Submission{
		ID:         id,
		Memory:     "memory text",
		Resolution: "resolution text",
		Status:     store.StatusApproved,
		ReviewedAt: &reviewed,
	}
	if guest != "" {
		sub.GuestName = &guest
	}
	return sub
}

func slideIDs(slides []deck.Slide) []string {
	out := make([]string, len(slides))
	for i, s := range slides {
		out[i] = s.ID
	}
	return out
}

func TestFromSubmissionDerivesPair(t *testing.T) {
	reviewed := time.UnixMilli(1_767_225_600_000)
	memory, resolution := FromSubmission(approvedAt(7, reviewed, ""))

	if memory.ID != "submission-7-memory" || resolution.ID != "submission-7-resolution" {
		t.Fatalf("unexpected ids: %s, %s", memory.ID, resolution.ID)
	}
	if memory.GuestName != "Anonymous" || resolution.GuestName != "Anonymous" {
		t.Fatalf("expected Anonymous guest, got %q", memory.GuestName)
	}
	if memory.InjectedAt != reviewed.UnixMilli() || resolution.InjectedAt != memory.InjectedAt+1 {
		t.Fatalf("unexpected timestamps: %d, %d", memory.InjectedAt, resolution.InjectedAt)
	}
	if memory.Template != "memory" || resolution.Template != "resolution" {
		t.Fatalf("unexpected templates")
	}
	if memory.Background != "/images/memories.png" || resolution.Background != "/images/resolutions.png" {
		t.Fatalf("unexpected backgrounds")
	}
	if memory.Duration != 25000 || !memory.IsInjected() || !resolution.IsInjected() {
		t.Fatalf("unexpected slide: %+v", memory)
	}

	again, _ := FromSubmission(approvedAt(7, reviewed, ""))
	if !reflect.DeepEqual(memory, again) {
		t.Fatal("derivation is not deterministic")
	}
}

func TestProjectOrdersByReviewTimeWithUnreviewedLast(t *testing.T) {
	base := time.UnixMilli(1_000_000)
	unreviewed := &store.Submission{ID: 1, Memory: "m", Resolution: "r", Status: store.StatusApproved}
	pending := &store.Submission{ID: 9, Memory: "m", Resolution: "r", Status: store.StatusPending}
	subs := []*store.Submission{
		unreviewed,
		approvedAt(3, base.Add(10*time.Millisecond), "Cy"),
		pending,
		approvedAt(2, base, "Bo"),
	}

	got := slideIDs(Project(subs))
	want := []string{
		"submission-2-memory", "submission-2-resolution",
		"submission-3-memory", "submission-3-resolution",
		"submission-1-memory", "submission-1-resolution",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Project = %v, want %v", got, want)
	}
}

func TestApproveThenListSinceZero(t *testing.T) {
	inj := NewInjector(nil)
	inj.OnApprove(approvedAt(5, time.UnixMilli(2_000_000), "Ann"))

	slides := inj.ListSince(0)
	if len(slides) != 2 {
		t.Fatalf("got %d slides, want 2", len(slides))
	}
	if slides[0].Template != "memory" || slides[1].Template != "resolution" {
		t.Fatalf("resolution must follow memory: %v", slideIDs(slides))
	}
	if slides[1].InjectedAt-slides[0].InjectedAt != 1 {
		t.Fatalf("timestamps differ by %d", slides[1].InjectedAt-slides[0].InjectedAt)
	}
}

func TestListSinceIsInclusive(t *testing.T) {
	inj := NewInjector(nil)
	inj.OnApprove(approvedAt(1, time.UnixMilli(1_000), ""))
	inj.OnApprove(approvedAt(2, time.UnixMilli(5_000), ""))

	got := slideIDs(inj.ListSince(5_000))
	want := []string{"submission-2-memory", "submission-2-resolution"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ListSince(5000) = %v, want %v", got, want)
	}
	if got := inj.ListSince(5_001); len(got) != 1 || got[0].ID != "submission-2-resolution" {
		t.Fatalf("ListSince(5001) = %v", slideIDs(got))
	}
}

func TestOnUnapproveRemovesOnlyThatPair(t *testing.T) {
	inj := NewInjector(nil)
	for id := int64(1); id <= 3; id++ {
		inj.OnApprove(approvedAt(id, time.UnixMilli(id*1000), ""))
	}

	if removed := inj.OnUnapprove(2); removed != 2 {
		t.Fatalf("removed %d, want 2", removed)
	}
	want := []string{
		"submission-1-memory", "submission-1-resolution",
		"submission-3-memory", "submission-3-resolution",
	}
	if got := slideIDs(inj.Snapshot()); !reflect.DeepEqual(got, want) {
		t.Fatalf("after unapprove = %v", got)
	}
	if removed := inj.OnUnapprove(2); removed != 0 {
		t.Fatalf("second unapprove removed %d", removed)
	}
	if removed := inj.OnUnapprove(12); removed != 0 {
		t.Fatalf("unrelated id removed %d", removed)
	}
}

func TestOnApproveTwiceKeepsSinglePair(t *testing.T) {
	inj := NewInjector(nil)
	inj.OnApprove(approvedAt(4, time.UnixMilli(1_000), ""))
	inj.OnApprove(approvedAt(4, time.UnixMilli(9_000), ""))

	slides := inj.Snapshot()
	if len(slides) != 2 || slides[0].InjectedAt != 9_000 {
		t.Fatalf("expected one refreshed pair, got %+v", slides)
	}
}

func TestRebuildMatchesLiveList(t *testing.T) {
	subs := []*store.Submission{
		approvedAt(1, time.UnixMilli(1_000), "A"),
		approvedAt(2, time.UnixMilli(3_000), "B"),
	}
	live := NewInjector(nil)
	for _, sub := range subs {
		live.OnApprove(sub)
	}
	restarted := NewInjector(nil)
	if n := restarted.Rebuild([]*store.Submission{subs[1], subs[0]}); n != 4 {
		t.Fatalf("Rebuild = %d", n)
	}
	if !reflect.DeepEqual(live.Snapshot(), restarted.Snapshot()) {
		t.Fatal("rebuilt list differs from live list")
	}
}

func TestConcurrentApproveAndUnapprove(t *testing.T) {
	inj := NewInjector(nil)
	var wg sync.WaitGroup
	for id := int64(1); id <= 40; id++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			inj.OnApprove(approvedAt(id, time.UnixMilli(id*10), ""))
			if id%2 == 0 {
				inj.OnUnapprove(id)
			}
			_ = inj.ListSince(0)
		}(id)
	}
	wg.Wait()
	if inj.Len() != 40 {
		t.Fatalf("Len = %d, want 40", inj.Len())
	}
}
