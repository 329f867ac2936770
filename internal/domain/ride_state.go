package domain

import (
	"sort"
	"strings"
)

// rideTransitions lists the allowed target states for every ride status.
var rideTransitions = map[RideStatus][]RideStatus{
	RideStatusPending:   {RideStatusOngoing, RideStatusCancelled},
	RideStatusOngoing:   {RideStatusCompleted, RideStatusCancelled},
	RideStatusCompleted: {},
	RideStatusCancelled: {},
}

// CanTransition reports whether a ride may move from one status to another.
func CanTransition(from, to RideStatus) bool {
	for _, s := range rideTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// ValidTransitionsFrom returns the statuses reachable from s in one step.
func ValidTransitionsFrom(s RideStatus) []RideStatus {
	out := make([]RideStatus, len(rideTransitions[s]))
	copy(out, rideTransitions[s])
	return out
}

// PredecessorsOf returns every status that may transition into to.
func PredecessorsOf(to RideStatus) []RideStatus {
	var out []RideStatus
	for from := range rideTransitions {
		if CanTransition(from, to) {
			out = append(out, from)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// IsTerminal reports whether no transition leaves s.
func IsTerminal(s RideStatus) bool {
	return len(rideTransitions[s]) == 0
}

// DescribeValidFrom renders the allowed targets of s for error messages.
func DescribeValidFrom(s RideStatus) string {
	next := rideTransitions[s]
	if len(next) == 0 {
		return "none (terminal state)"
	}
	names := make([]string, len(next))
	for i, n := range next {
		names[i] = string(n)
	}
	return strings.Join(names, ", ")
}
