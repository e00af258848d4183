package statute

import (
	"fmt"
	"strconv"
)

// BaseIdentifier derives a chunk's identifier before de-duplication.
//
// Units inside a numbered chapter and article get "chapter-article", plus
// "-marker" when the unit carries a clause marker. Everything else falls back
// to its position, "sectionIndex-clauseIndex".
func BaseIdentifier(meta Metadata, sectionIndex, clauseIndex int) string {
	chapter, article := meta[KeyChapterNo], meta[KeyArticleNo]
	if chapter != "" && article != "" {
		id := chapter + "-" + article
		if marker := meta[KeyItemNo]; marker != "" {
			id += "-" + marker
		}
		return id
	}
	return strconv.Itoa(sectionIndex) + "-" + strconv.Itoa(clauseIndex)
}

// IDCounter tracks every identifier handed out so far: how many times a base
// was requested and which suffixed forms are already taken.
type IDCounter map[string]int

// AssignIdentifiers makes bases unique in order. The first occurrence of a
// base keeps it unchanged; the n-th becomes "base-n", skipping any suffix
// already in use. The counter is updated and returned so a caller can thread
// it through several documents that share one output.
func AssignIdentifiers(bases []string, counter IDCounter) ([]string, IDCounter) {
	if counter == nil {
		counter = IDCounter{}
	}

	ids := make([]string, len(bases))
	for i, base := range bases {
		counter[base]++
		n := counter[base]
		if n == 1 {
			ids[i] = base
			continue
		}

		id := fmt.Sprintf("%s-%d", base, n)
		for counter[id] > 0 {
			n++
			id = fmt.Sprintf("%s-%d", base, n)
		}
		counter[base] = n
		counter[id]++
		ids[i] = id
	}
	return ids, counter
}
