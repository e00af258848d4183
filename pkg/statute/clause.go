package statute

import (
	"strings"

	"github.com/coolbeans/lexchunk/pkg/pattern"
)

// ExtractArticle reads the first article header in text. A header without a
// title yields an empty Title.
func ExtractArticle(text string, c *pattern.CompiledProfile) ArticleInfo {
	loc := c.Article.FindStringSubmatchIndex(text)
	if loc == nil {
		return ArticleInfo{}
	}
	return ArticleInfo{
		Number: group(text, loc, 1),
		Title:  strings.TrimSpace(group(text, loc, 2)),
	}
}

// SplitClauses splits a section at each clause marker.
//
// Span 0 is the text before the first marker and is dropped when blank, so a
// section that opens directly with ① yields clauses starting at index 1. Every
// clause inherits the section's article; marker spans also record their
// marker. A section without markers comes back as a single clause.
func SplitClauses(text string, c *pattern.CompiledProfile) []Clause {
	article := ExtractArticle(text, c)

	locs := c.ClauseMarker.FindAllStringSubmatchIndex(text, -1)
	if len(locs) == 0 {
		trimmed := strings.TrimSpace(text)
		if trimmed == "" {
			return nil
		}
		return []Clause{{Index: 0, Text: trimmed, Article: article}}
	}

	clauses := make([]Clause, 0, len(locs)+1)
	if lead := strings.TrimSpace(text[:markerStart(locs[0])]); lead != "" {
		clauses = append(clauses, Clause{Index: 0, Text: lead, Article: article})
	}

	for k, loc := range locs {
		start := markerStart(loc)
		end := len(text)
		if k+1 < len(locs) {
			end = markerStart(locs[k+1])
		}
		piece := strings.TrimSpace(text[start:end])
		if piece == "" {
			continue
		}

		marker := group(text, loc, 1)
		if marker == "" {
			marker = strings.TrimSpace(text[loc[0]:loc[1]])
		}
		a := article
		a.ClauseMarker = marker
		clauses = append(clauses, Clause{
			Index:   k + 1,
			Text:    piece,
			Marker:  marker,
			Article: a,
		})
	}
	return clauses
}

// markerStart is where a clause begins: the marker itself when the pattern
// captures it, otherwise the whole match.
func markerStart(loc []int) int {
	if len(loc) > 3 && loc[2] >= 0 {
		return loc[2]
	}
	return loc[0]
}
