package queue

import (
	"cmp"
	"strings"
	"time"
)

// Compare ranks two tasks at the instant now. A negative result means a
// should be dispatched before b.
//
// Precedence:
//  1. eligible tasks (AvailableAt <= now) before tasks that are not yet eligible
//  2. among tasks that are not yet eligible, the sooner AvailableAt first
//  3. higher Priority first
//  4. lower FailCount first
//  5. earlier CreatedAt first
//
// The ID is the last tie-break so the order is total and sorting is deterministic.
func Compare(a, b *Task, now time.Time) int {
	aReady, bReady := a.Eligible(now), b.Eligible(now)
	switch {
	case aReady && !bReady:
		return -1
	case !aReady && bReady:
		return 1
	case !aReady && !bReady:
		if c := a.AvailableAt.Compare(b.AvailableAt); c != 0 {
			return c
		}
	}

	if c := cmp.Compare(b.Priority, a.Priority); c != 0 {
		return c
	}
	if c := cmp.Compare(a.FailCount, b.FailCount); c != 0 {
		return c
	}
	if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
		return c
	}
	return strings.Compare(a.ID, b.ID)
}

// Less reports whether a ranks strictly higher than b at now.
func Less(a, b *Task, now time.Time) bool {
	return Compare(a, b, now) < 0
}

// best returns the index of the highest ranked task, or -1 for an empty slice.
func best(tasks []*Task, now time.Time) int {
	idx := -1
	for i, t := range tasks {
		if idx < 0 || Compare(t, tasks[idx], now) < 0 {
			idx = i
		}
	}
	return idx
}
