package service

import (
	"sort"

	"leadflow_backend/internal/tasks/repository"
)

// priorityRank orders priorities for the pending queue. Higher wins.
var priorityRank = map[repository.Priority]int{
	repository.PriorityUrgent: 3,
	repository.PriorityHigh:   2,
	repository.PriorityMedium: 1,
	repository.PriorityLow:    0,
}

// queueLess is the total order of the pending queue: priority descending,
// then due date ascending with undated tasks last, then creation time as a
// stable tiebreak.
func queueLess(a, b repository.Task) bool {
	ra, rb := priorityRank[a.Priority], priorityRank[b.Priority]
	if ra != rb {
		return ra > rb
	}

	switch {
	case a.DueAt == nil && b.DueAt == nil:
		return a.CreatedAt.Before(b.CreatedAt)
	case a.DueAt == nil:
		return false
	case b.DueAt == nil:
		return true
	case !a.DueAt.Equal(*b.DueAt):
		return a.DueAt.Before(*b.DueAt)
	default:
		return a.CreatedAt.Before(b.CreatedAt)
	}
}

// sortQueue orders tasks in place per the pending queue policy.
func sortQueue(tasks []repository.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return queueLess(tasks[i], tasks[j])
	})
}
