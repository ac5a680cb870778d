// Package planning owns the collection of user-created sampling points: id
// allocation, add/edit/move/delete, bulk replace and merge, change
// notification, and the pending-placement flow driven by map clicks.
package planning

import (
	"strconv"
	"strings"
)

// NextID returns prefix followed by the smallest positive integer not already
// used as a numeric suffix among ids carrying that prefix. Ids whose suffix is
// not a positive integer are ignored.
//
// Deleting "P-2" from {P-1, P-2, P-3} makes the next allocation "P-2" again.
func NextID(prefix string, ids []string) string {
	used := make(map[int]bool, len(ids))
	for _, id := range ids {
		if !strings.HasPrefix(id, prefix) {
			continue
		}
		n, err := strconv.Atoi(id[len(prefix):])
		if err != nil || n < 1 {
			continue
		}
		used[n] = true
	}

	next := 1
	for used[next] {
		next++
	}
	return prefix + strconv.Itoa(next)
}
