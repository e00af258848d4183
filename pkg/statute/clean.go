package statute

import "strings"

// Clean removes UI artifacts from text and collapses every whitespace run to
// a single space. Removing an artifact can join text into a new artifact, so
// both steps repeat until the text stops changing; Clean(Clean(s)) == Clean(s).
func Clean(text string, artifacts []string) string {
	out := collapseSpace(text)
	for {
		next := out
		for _, artifact := range artifacts {
			if artifact == "" {
				continue
			}
			next = strings.ReplaceAll(next, artifact, "")
		}
		next = collapseSpace(next)
		if next == out {
			return out
		}
		out = next
	}
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
