package domain

import "testing"

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to RideStatus
		want     bool
	}{
		{RideStatusPending, RideStatusOngoing, true},
		{RideStatusPending, RideStatusCancelled, true},
		{RideStatusOngoing, RideStatusCompleted, true},
		{RideStatusOngoing, RideStatusCancelled, true},
		{RideStatusPending, RideStatusCompleted, false},
		{RideStatusCompleted, RideStatusOngoing, false},
		{RideStatusCompleted, RideStatusCancelled, false},
		{RideStatusCancelled, RideStatusOngoing, false},
		{RideStatusOngoing, RideStatusPending, false},
	}

	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestPredecessorsOf(t *testing.T) {
	got := PredecessorsOf(RideStatusCancelled)
	if len(got) != 2 || got[0] != RideStatusOngoing || got[1] != RideStatusPending {
		t.Errorf("PredecessorsOf(CANCELLED) = %v", got)
	}
	if got := PredecessorsOf(RideStatusPending); len(got) != 0 {
		t.Errorf("PredecessorsOf(PENDING) = %v, want none", got)
	}
}

func TestTerminalStates(t *testing.T) {
	for _, s := range []RideStatus{RideStatusCompleted, RideStatusCancelled} {
		if !IsTerminal(s) {
			t.Errorf("expected %s to be terminal", s)
		}
		if got := DescribeValidFrom(s); got != "none (terminal state)" {
			t.Errorf("DescribeValidFrom(%s) = %q", s, got)
		}
	}
	if got := DescribeValidFrom(RideStatusPending); got != "ONGOING, CANCELLED" {
		t.Errorf("DescribeValidFrom(PENDING) = %q", got)
	}
}
