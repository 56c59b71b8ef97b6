package services

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

func parseTableCount(raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid table count %q: %w", raw, err)
	}
	if n < 1 {
		return 0, fmt.Errorf("table count must be at least 1, got %d", n)
	}
	return n, nil
}

// parseCategoryIDs reads the comma separated list of active category ids.
func parseCategoryIDs(raw string) ([]int, error) {
	var ids []int
	seen := make(map[int]bool)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid category id %q: %w", part, err)
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	return ids, nil
}

func formatCategoryIDs(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}
