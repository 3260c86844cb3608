package service

import (
	"testing"
	"time"

	"leadflow_backend/internal/tasks/repository"
)

func task(priority repository.Priority, dueAt *time.Time, createdAt time.Time) repository.Task {
	return repository.Task{Priority: priority, DueAt: dueAt, CreatedAt: createdAt}
}

func ptrTime(t time.Time) *time.Time { return &t }

func TestSortQueuePriorityBeatsDueDate(t *testing.T) {
	base := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	soon := ptrTime(base.Add(time.Hour))
	later := ptrTime(base.Add(72 * time.Hour))

	tasks := []repository.Task{
		task(repository.PriorityLow, soon, base),
		task(repository.PriorityUrgent, later, base),
		task(repository.PriorityMedium, soon, base),
	}

	sortQueue(tasks)

	if tasks[0].Priority != repository.PriorityUrgent {
		t.Fatalf("first task priority = %s, want URGENT regardless of due date", tasks[0].Priority)
	}
	if tasks[1].Priority != repository.PriorityMedium {
		t.Fatalf("second task priority = %s, want MEDIUM", tasks[1].Priority)
	}
	if tasks[2].Priority != repository.PriorityLow {
		t.Fatalf("third task priority = %s, want LOW", tasks[2].Priority)
	}
}

func TestSortQueueDueDateBreaksTies(t *testing.T) {
	base := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	early := ptrTime(base.Add(time.Hour))
	late := ptrTime(base.Add(48 * time.Hour))

	tasks := []repository.Task{
		task(repository.PriorityHigh, nil, base),
		task(repository.PriorityHigh, late, base),
		task(repository.PriorityHigh, early, base),
	}

	sortQueue(tasks)

	if tasks[0].DueAt == nil || !tasks[0].DueAt.Equal(*early) {
		t.Fatalf("first task should have the earliest due date")
	}
	if tasks[1].DueAt == nil || !tasks[1].DueAt.Equal(*late) {
		t.Fatalf("second task should have the later due date")
	}
	if tasks[2].DueAt != nil {
		t.Fatalf("undated task should sort last, got due %v", tasks[2].DueAt)
	}
}

func TestSortQueueStableOnCreatedAt(t *testing.T) {
	base := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)

	first := task(repository.PriorityMedium, nil, base)
	second := task(repository.PriorityMedium, nil, base.Add(time.Minute))

	tasks := []repository.Task{second, first}
	sortQueue(tasks)

	if !tasks[0].CreatedAt.Equal(base) {
		t.Fatalf("older task should come first on full tie")
	}
}
