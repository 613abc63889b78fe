package utils

import (
	"fmt"
	"sort"
	"strings"
)

// Bookkeeping attributes of an observation record that are not filter criteria.
var observationInternalKeys = map[string]struct{}{
	"id":          {},
	"offers":      {},
	"lastChecked": {},
	"categoryId":  {},
}

// FilterObservationPayload keeps only the filter criteria of a raw
// observation record. Null and empty values are dropped.
func FilterObservationPayload(record map[string]any) map[string]any {
	filters := make(map[string]any, len(record))
	for k, v := range record {
		if _, internal := observationInternalKeys[k]; internal {
			continue
		}
		if v == nil {
			continue
		}
		if s, ok := v.(string); ok && IsEmptyOrWhitespace(s) {
			continue
		}
		filters[k] = v
	}
	return filters
}

// FormatFilters renders filters as "k:v" pairs sorted by key.
func FormatFilters(filters map[string]any) string {
	keys := make([]string, 0, len(filters))
	for k := range filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", k, filters[k]))
	}
	return strings.Join(parts, " ")
}
