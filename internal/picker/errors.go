package picker

import (
	"fmt"
	"sort"
	"strings"
)

// ContractViolationError is reported (in strict mode) when a transition targets a
// contact that is not in the list it is supposed to come from.
type ContractViolationError struct {
	Op     string
	ID     int
	Reason string
}

func (e *ContractViolationError) Error() string {
	return fmt.Sprintf("picker: %s contact %d: %s", e.Op, e.ID, e.Reason)
}

type PartitionError struct {
	Missing    []int
	Duplicated []int
	Unknown    []int
}

func (e *PartitionError) Error() string {
	parts := make([]string, 0, 3)
	if len(e.Missing) > 0 {
		parts = append(parts, fmt.Sprintf("missing %v", e.Missing))
	}
	if len(e.Duplicated) > 0 {
		parts = append(parts, fmt.Sprintf("duplicated %v", e.Duplicated))
	}
	if len(e.Unknown) > 0 {
		parts = append(parts, fmt.Sprintf("unknown %v", e.Unknown))
	}
	return "picker: partition broken: " + strings.Join(parts, "; ")
}

// StaleArmError means pendingDelete survived a non-empty query.
type StaleArmError struct {
	Query string
}

func (e *StaleArmError) Error() string {
	return fmt.Sprintf("picker: pending delete armed with non-empty query %q", e.Query)
}

func sortedKeys(m map[int]bool) []int {
	if len(m) == 0 {
		return nil
	}
	out := make([]int, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}
