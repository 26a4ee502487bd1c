package booking

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"carwash/internal/bookingstate"
)

func TestWashLabels(t *testing.T) {
	want := map[bookingstate.State]string{
		bookingstate.StateDraft:      "Awaiting Wash",
		bookingstate.StateBooked:     "Booked",
		bookingstate.StateInProgress: "Washing",
		bookingstate.StateDeparted:   "Departed",
		bookingstate.StateCompleted:  "Washed",
		bookingstate.StateCancelled:  "Not Washed",
	}
	for _, st := range bookingstate.AllStates() {
		got, ok := WashLabel(st)
		if !ok || got != want[st] {
			t.Fatalf("%s: expected %q, got %q (ok=%v)", st, want[st], got, ok)
		}
		effects := SideEffectsFor(st)
		if len(effects) != 1 || effects[0].Name != "vehicle.wash_status="+want[st] {
			t.Fatalf("%s: unexpected side effects %+v", st, effects)
		}
	}
}

func TestSideEffectsFor_UnknownState(t *testing.T) {
	if got := SideEffectsFor(bookingstate.State("teleported")); got != nil {
		t.Fatalf("expected no side effects, got %+v", got)
	}
}

func TestNormalizeFilter(t *testing.T) {
	cases := []struct {
		in   ListFilter
		want ListFilter
	}{
		{ListFilter{}, ListFilter{Limit: DefaultListLimit}},
		{ListFilter{Limit: 500, Offset: -4}, ListFilter{Limit: MaxListLimit}},
		{ListFilter{Status: bookingstate.StateBooked, Limit: 7, Offset: 3}, ListFilter{Status: bookingstate.StateBooked, Limit: 7, Offset: 3}},
	}
	for _, tc := range cases {
		if got := normalizeFilter(tc.in); got != tc.want {
			t.Fatalf("normalizeFilter(%+v) = %+v, want %+v", tc.in, got, tc.want)
		}
	}
}

func TestRecordTransitionLabels(t *testing.T) {
	okBefore := testutil.ToFloat64(transitionsTotal.WithLabelValues("Book", "ok"))
	invalidBefore := testutil.ToFloat64(transitionsTotal.WithLabelValues("Book", "invalid_transition"))
	missingBefore := testutil.ToFloat64(transitionsTotal.WithLabelValues("Book", "not_found"))

	recordTransition(bookingstate.ActionBook, nil)
	recordTransition(bookingstate.ActionBook, &bookingstate.Error{Kind: bookingstate.KindInvalidTransition})
	recordTransition(bookingstate.ActionBook, errors.Join(errors.New("tx"), ErrNotFound))

	if got := testutil.ToFloat64(transitionsTotal.WithLabelValues("Book", "ok")); got != okBefore+1 {
		t.Fatalf("ok counter: expected %v, got %v", okBefore+1, got)
	}
	if got := testutil.ToFloat64(transitionsTotal.WithLabelValues("Book", "invalid_transition")); got != invalidBefore+1 {
		t.Fatalf("invalid counter: expected %v, got %v", invalidBefore+1, got)
	}
	if got := testutil.ToFloat64(transitionsTotal.WithLabelValues("Book", "not_found")); got != missingBefore+1 {
		t.Fatalf("not_found counter: expected %v, got %v", missingBefore+1, got)
	}
}

func TestStateView(t *testing.T) {
	table := bookingstate.DefaultTable()

	v := stateView(table, "", false)
	if v.Initialized || v.ValidActions == nil || len(v.ValidActions) != 0 {
		t.Fatalf("unexpected view for uninitialized booking: %+v", v)
	}

	v = stateView(table, bookingstate.StateBooked, true)
	if !v.Initialized || v.Display.Label == "" || len(v.ValidActions) != 2 {
		t.Fatalf("unexpected view for booked: %+v", v)
	}
}
