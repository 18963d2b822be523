package corpus

import "strconv"

// formatWordID/parseWordID isolate the string<->WordID conversion JSON
// object keys require (WordID must serialize as a string when used as a
// JSON map key) to this one boundary, per spec.md §9's redesign note.
func formatWordID(id WordID) string {
	return strconv.Itoa(int(id))
}

func parseWordID(s string) (WordID, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	return WordID(n), nil
}
