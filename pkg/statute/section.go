package statute

import (
	"sort"
	"strings"

	"github.com/coolbeans/lexchunk/pkg/pattern"
)

// SplitSections splits a chapter body at every article, addendum and table
// boundary. A boundary starts a new section; the pieces between boundaries
// are trimmed and blank pieces are dropped. When two rules open a section at
// the same offset, the earlier rule in the profile wins.
//
// Section indexes are positional within the returned slice; the chunker
// renumbers them across the whole document.
func SplitSections(text string, chapter *ChapterInfo, header *HeaderInfo, c *pattern.CompiledProfile) []Section {
	kinds := make(map[int]SectionKind)
	for _, rule := range c.Sections {
		for _, start := range rule.Starts(text) {
			if _, taken := kinds[start]; !taken {
				kinds[start] = SectionKind(rule.Kind)
			}
		}
	}

	if _, ok := kinds[0]; !ok {
		kinds[0] = SectionKindUnmarked
	}
	offsets := make([]int, 0, len(kinds))
	for offset := range kinds {
		offsets = append(offsets, offset)
	}
	sort.Ints(offsets)

	var sections []Section
	for i, start := range offsets {
		end := len(text)
		if i+1 < len(offsets) {
			end = offsets[i+1]
		}
		piece := strings.TrimSpace(text[start:end])
		if piece == "" {
			continue
		}
		sections = append(sections, Section{
			Index:   len(sections),
			Kind:    kinds[start],
			Text:    piece,
			Chapter: chapter,
			Header:  header,
		})
	}
	return sections
}
