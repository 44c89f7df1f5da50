package catalog

import (
	"fmt"
	"strings"
)

// Validate checks items for structural problems without building a catalog.
func Validate(items []Item) error {
	return validateItems(items)
}

// validateItems performs all structural checks on the given item set.
// Returns a combined error describing all problems found, or nil if valid.
func validateItems(items []Item) error {
	var errs []string

	idSet := make(map[string]bool, len(items))

	for i, it := range items {
		if strings.TrimSpace(it.ID) == "" {
			errs = append(errs, fmt.Sprintf("item at position %d has an empty ID", i))
			continue
		}
		if idSet[it.ID] {
			errs = append(errs, fmt.Sprintf("duplicate item ID: %q", it.ID))
		}
		idSet[it.ID] = true

		if strings.TrimSpace(it.Subject) == "" {
			errs = append(errs, fmt.Sprintf("item %q has no subject", it.ID))
		}
		if !it.Difficulty.Valid() {
			errs = append(errs, fmt.Sprintf("item %q has unknown difficulty %q (want one of %v)", it.ID, it.Difficulty, AllDifficulties()))
		}
		if it.EstimatedMinutes < 0 {
			errs = append(errs, fmt.Sprintf("item %q: EstimatedMinutes must be >= 0, got %d", it.ID, it.EstimatedMinutes))
		}
	}

	// Dangling and self prerequisites.
	for _, it := range items {
		for _, prereqID := range it.Prerequisites {
			if prereqID == it.ID {
				errs = append(errs, fmt.Sprintf("item %q lists itself as a prerequisite", it.ID))
				continue
			}
			if !idSet[prereqID] {
				errs = append(errs, fmt.Sprintf("item %q references nonexistent prerequisite %q", it.ID, prereqID))
			}
		}
	}

	if cycle := cycleNodes(items); len(cycle) > 0 {
		errs = append(errs, fmt.Sprintf("cycle detected involving items: %s", strings.Join(cycle, ", ")))
	}

	if len(errs) > 0 {
		return fmt.Errorf("catalog validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}

// cycleNodes runs Kahn's algorithm and returns the IDs left with a positive
// in-degree, which are exactly the items on or behind a cycle.
func cycleNodes(items []Item) []string {
	known := make(map[string]bool, len(items))
	for _, it := range items {
		known[it.ID] = true
	}

	// Dangling edges are reported separately and must not look like cycles.
	inDegree := make(map[string]int, len(items))
	adjList := make(map[string][]string)
	for _, it := range items {
		for _, prereqID := range it.Prerequisites {
			if !known[prereqID] {
				continue
			}
			inDegree[it.ID]++
			adjList[prereqID] = append(adjList[prereqID], it.ID)
		}
	}

	var queue []string
	for _, it := range items {
		if inDegree[it.ID] == 0 {
			queue = append(queue, it.ID)
		}
	}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, depID := range adjList[id] {
			inDegree[depID]--
			if inDegree[depID] == 0 {
				queue = append(queue, depID)
			}
		}
	}

	var stuck []string
	seen := make(map[string]bool)
	for _, it := range items {
		if inDegree[it.ID] > 0 && !seen[it.ID] {
			stuck = append(stuck, it.ID)
			seen[it.ID] = true
		}
	}
	return stuck
}
