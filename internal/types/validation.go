package types

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationErrors maps a field key to a human readable message
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, v[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Empty reports whether no field failed
func (v ValidationErrors) Empty() bool {
	return len(v) == 0
}
