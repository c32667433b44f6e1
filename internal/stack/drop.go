package stack

import "github.com/XertroV/tasks/cmdstack/internal/models"

// DropOptions selects how many entries Drop removes and from which end.
type DropOptions struct {
	Count   int
	All     bool
	FromEnd bool
}

// Drop pops entries from the next end, or from the oldest end when FromEnd
// is set, returning them in pop order.
func Drop(stack *models.Stack, opts DropOptions) []models.Entry {
	dropped := make([]models.Entry, 0)
	for opts.All || len(dropped) < opts.Count {
		var (
			entry models.Entry
			ok    bool
		)
		if opts.FromEnd {
			entry, ok = stack.PopLast()
		} else {
			entry, ok = stack.PopNext()
		}
		if !ok {
			break
		}
		dropped = append(dropped, entry)
	}
	return dropped
}
