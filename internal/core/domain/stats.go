package domain

import "math"

type TodoStats struct {
	Total          int
	Pending        int
	InProgress     int
	Completed      int
	CompletionRate float64
}

// NewTodoStats counts todos per status. CompletionRate is the completed share
// in percent rounded to two decimals, or 0 for an empty slice.
func NewTodoStats(todos []Todo) TodoStats {
	stats := TodoStats{Total: len(todos)}

	for _, todo := range todos {
		switch todo.Status {
		case TodoStatusPending:
			stats.Pending++
		case TodoStatusInProgress:
			stats.InProgress++
		case TodoStatusCompleted:
			stats.Completed++
		}
	}

	if stats.Total > 0 {
		rate := float64(stats.Completed) / float64(stats.Total) * 100
		stats.CompletionRate = math.Round(rate*100) / 100
	}

	return stats
}

func (s TodoStats) CountFor(status TodoStatus) int {
	switch status {
	case TodoStatusPending:
		return s.Pending
	case TodoStatusInProgress:
		return s.InProgress
	case TodoStatusCompleted:
		return s.Completed
	default:
		return 0
	}
}
