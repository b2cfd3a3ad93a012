package signaling

import (
	"fmt"
	"regexp"
	"strconv"
)

var identifierPattern = regexp.MustCompile(`User-(\d+)`)

// NextIdentifier returns the next free display identifier given the
// identifiers currently held in a room. Identifiers follow the form
// User-<n>; the next one is User-<max+1>, so numbers are never handed
// back to a later joiner while the room lives. Strings that don't
// match contribute 0 instead of failing.
func NextIdentifier(existing []string) string {
	maxID := 0
	for _, id := range existing {
		m := identifierPattern.FindStringSubmatch(id)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if n > maxID {
			maxID = n
		}
	}
	return fmt.Sprintf("User-%d", maxID+1)
}
