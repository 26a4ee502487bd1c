package bookingstate

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"
	"golang.org/x/sync/errgroup"
)

func newTestEngine(store Store) *Engine {
	var tick int64
	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	var ids int64
	return NewEngine(DefaultTable(), store,
		WithClock(func() time.Time {
			n := atomic.AddInt64(&tick, 1)
			return base.Add(time.Duration(n) * time.Second)
		}),
		WithIDGenerator(func() string {
			return fmt.Sprintf("rec-%d", atomic.AddInt64(&ids, 1))
		}),
	)
}

// walk initializes bookingID and applies actions in order, failing the test on error.
func walk(t *testing.T, e *Engine, bookingID string, actions ...Action) {
	t.Helper()
	ctx := context.Background()
	if _, err := e.InitializeBooking(ctx, bookingID, "staff-1"); err != nil {
		t.Fatalf("init: %v", err)
	}
	for _, a := range actions {
		if _, err := e.TransitionState(ctx, bookingID, a, "staff-1"); err != nil {
			t.Fatalf("transition %s: %v", a, err)
		}
	}
}

func TestScenario_InitializeNewBooking(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(NewMemoryStore())

	if _, found, err := e.CurrentState(ctx, "bk-1"); err != nil || found {
		t.Fatalf("expected no state, found=%v err=%v", found, err)
	}

	rec, err := e.InitializeBooking(ctx, "bk-1", "staff-1")
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if rec.OldState != nil || rec.NewState != StateDraft || rec.Sequence != 1 {
		t.Fatalf("unexpected init record: %+v", rec)
	}

	st, found, err := e.CurrentState(ctx, "bk-1")
	if err != nil || !found || st != StateDraft {
		t.Fatalf("expected draft, got %q found=%v err=%v", st, found, err)
	}
}

func TestScenario_StartFromDraft(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(NewMemoryStore())
	walk(t, e, "bk-2")

	res, err := e.TransitionState(ctx, "bk-2", ActionStart, "staff-2")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if res.OldState != StateDraft || res.NewState != StateInProgress {
		t.Fatalf("unexpected result: %+v", res)
	}

	hist, err := e.History(ctx, "bk-2")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(hist) != 2 {
		t.Fatalf("expected 2 records, got %d", len(hist))
	}
	if hist[0].OldState != nil || hist[0].NewState != StateDraft {
		t.Fatalf("unexpected first record: %+v", hist[0])
	}
	if hist[1].OldState == nil || *hist[1].OldState != StateDraft || hist[1].NewState != StateInProgress {
		t.Fatalf("unexpected second record: %+v", hist[1])
	}
	if hist[1].ActorID != "staff-2" || hist[1].Sequence != 2 {
		t.Fatalf("unexpected actor/sequence: %+v", hist[1])
	}
	if !hist[0].Timestamp.Before(hist[1].Timestamp) {
		t.Fatalf("expected ascending timestamps")
	}
}

func TestScenario_DepartedCannotStart(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(NewMemoryStore())
	walk(t, e, "bk-3", ActionStart)

	res, err := e.TransitionState(ctx, "bk-3", ActionManualConfirm, "staff-1")
	if err != nil {
		t.Fatalf("manual confirm: %v", err)
	}
	if res.NewState != StateDeparted {
		t.Fatalf("expected departed, got %s", res.NewState)
	}

	_, err = e.TransitionState(ctx, "bk-3", ActionStart, "staff-1")
	var engErr *Error
	if !errors.As(err, &engErr) || engErr.Kind != KindInvalidTransition {
		t.Fatalf("expected invalid transition, got %v", err)
	}
	if engErr.State != StateDeparted || engErr.Action != ActionStart {
		t.Fatalf("expected error context departed/Start, got %s/%s", engErr.State, engErr.Action)
	}
}

func TestScenario_CancelBooked(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(NewMemoryStore())
	walk(t, e, "bk-4", ActionBook)

	res, err := e.TransitionState(ctx, "bk-4", ActionCancel, "staff-1")
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if res.NewState != StateCancelled {
		t.Fatalf("expected cancelled, got %s", res.NewState)
	}
	if got := e.ValidActions(StateCancelled); len(got) != 0 {
		t.Fatalf("expected no actions, got %v", got)
	}
}

func TestScenario_CompletedRejectsEverything(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(NewMemoryStore())
	walk(t, e, "bk-5", ActionStart, ActionFinish)

	before, err := e.History(ctx, "bk-5")
	if err != nil {
		t.Fatalf("history: %v", err)
	}

	for _, a := range AllActions() {
		_, err := e.TransitionState(ctx, "bk-5", a, "staff-1")
		if !IsKind(err, KindInvalidTransition) {
			t.Fatalf("action %s: expected invalid transition, got %v", a, err)
		}
	}

	after, err := e.History(ctx, "bk-5")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if diff := cmp.Diff(before, after); diff != "" {
		t.Fatalf("history changed (-before +after):\n%s", diff)
	}
}

func TestInitializeTwiceFails(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(NewMemoryStore())
	walk(t, e, "bk-6")

	_, err := e.InitializeBooking(ctx, "bk-6", "staff-1")
	if !IsKind(err, KindAlreadyInitialized) {
		t.Fatalf("expected already initialized, got %v", err)
	}
	hist, _ := e.History(ctx, "bk-6")
	if len(hist) != 1 {
		t.Fatalf("expected 1 record, got %d", len(hist))
	}
}

func TestTransitionWithoutHistory(t *testing.T) {
	e := newTestEngine(NewMemoryStore())
	_, err := e.TransitionState(context.Background(), "missing", ActionStart, "staff-1")
	if !IsKind(err, KindNotInitialized) {
		t.Fatalf("expected not initialized, got %v", err)
	}
}

func TestHistoryIsStableBetweenReads(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(NewMemoryStore())
	walk(t, e, "bk-7", ActionBook, ActionStart)

	first, err := e.History(ctx, "bk-7")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	second, err := e.History(ctx, "bk-7")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("history differs between reads:\n%s", diff)
	}

	if _, err := e.TransitionState(ctx, "bk-7", ActionFinish, "staff-1"); err != nil {
		t.Fatalf("finish: %v", err)
	}
	third, _ := e.History(ctx, "bk-7")
	if len(third) != len(first)+1 {
		t.Fatalf("expected fresh read with %d records, got %d", len(first)+1, len(third))
	}
}

func TestEmptyHistoryIsNonNil(t *testing.T) {
	hist, err := newTestEngine(NewMemoryStore()).History(context.Background(), "none")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if hist == nil || len(hist) != 0 {
		t.Fatalf("expected empty slice, got %#v", hist)
	}
}

func TestCurrentStateMatchesLastResult(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(NewMemoryStore())
	walk(t, e, "bk-8")

	for _, a := range []Action{ActionBook, ActionStart, ActionManualConfirm, ActionFinish} {
		res, err := e.TransitionState(ctx, "bk-8", a, "staff-1")
		if err != nil {
			t.Fatalf("%s: %v", a, err)
		}
		st, found, err := e.CurrentState(ctx, "bk-8")
		if err != nil || !found || st != res.NewState {
			t.Fatalf("after %s expected %s, got %s (found=%v err=%v)", a, res.NewState, st, found, err)
		}
	}
}

type failingStore struct {
	err error
}

func (f failingStore) LatestHistory(context.Context, string) (*Record, error) { return nil, f.err }
func (f failingStore) History(context.Context, string) ([]Record, error)      { return nil, f.err }
func (f failingStore) AppendHistory(context.Context, Record) error            { return f.err }

func TestPersistenceFailureIsWrapped(t *testing.T) {
	cause := errors.New("connection reset")
	e := newTestEngine(failingStore{err: cause})
	ctx := context.Background()

	_, err := e.TransitionState(ctx, "bk-9", ActionStart, "staff-1")
	if !IsKind(err, KindPersistence) {
		t.Fatalf("expected persistence failure, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to be preserved")
	}
	if _, _, err := e.CurrentState(ctx, "bk-9"); !IsKind(err, KindPersistence) {
		t.Fatalf("expected persistence failure from CurrentState, got %v", err)
	}
	if _, err := e.History(ctx, "bk-9"); !IsKind(err, KindPersistence) {
		t.Fatalf("expected persistence failure from History, got %v", err)
	}
}

// appendRaceStore lets every caller read the same snapshot before any append lands.
type appendRaceStore struct {
	*MemoryStore
	snapshot *Record
}

func (s appendRaceStore) LatestHistory(context.Context, string) (*Record, error) {
	rec := *s.snapshot
	return &rec, nil
}

func TestConcurrentTransitionsFromSameSnapshot(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	ctx := context.Background()
	mem := NewMemoryStore()
	walk(t, newTestEngine(mem), "bk-10")
	snap, _ := mem.LatestHistory(ctx, "bk-10")
	e := newTestEngine(appendRaceStore{MemoryStore: mem, snapshot: snap})

	const workers = 8
	var succeeded, conflicted int64
	var g errgroup.Group
	for i := 0; i < workers; i++ {
		actor := fmt.Sprintf("staff-%d", i)
		g.Go(func() error {
			_, err := e.TransitionState(ctx, "bk-10", ActionStart, actor)
			switch {
			case err == nil:
				atomic.AddInt64(&succeeded, 1)
			case IsKind(err, KindConcurrentTransition):
				atomic.AddInt64(&conflicted, 1)
			default:
				return err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if succeeded != 1 || conflicted != workers-1 {
		t.Fatalf("expected 1 success and %d conflicts, got %d/%d", workers-1, succeeded, conflicted)
	}

	hist, _ := mem.History(ctx, "bk-10")
	if len(hist) != 2 {
		t.Fatalf("expected linear history of 2 records, got %d", len(hist))
	}
}

func TestConcurrentTransitionsAgainstLiveStore(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	ctx := context.Background()
	e := newTestEngine(NewMemoryStore())
	walk(t, e, "bk-11")

	var succeeded int64
	var g errgroup.Group
	for i := 0; i < 16; i++ {
		g.Go(func() error {
			_, err := e.TransitionState(ctx, "bk-11", ActionStart, "staff-1")
			if err == nil {
				atomic.AddInt64(&succeeded, 1)
				return nil
			}
			if IsKind(err, KindConcurrentTransition) || IsKind(err, KindInvalidTransition) {
				return nil
			}
			return err
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if succeeded != 1 {
		t.Fatalf("expected exactly one success, got %d", succeeded)
	}
}
