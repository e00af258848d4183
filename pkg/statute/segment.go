package statute

import (
	"regexp"
	"strings"

	"github.com/coolbeans/lexchunk/pkg/pattern"
)

// ChapterSpan is a byte range of the document belonging to one chapter.
//
// Start is where the chapter heading match begins and BodyStart is the first
// byte after the heading line, or the first section boundary on that line.
// Chapter is nil for a span outside any chapter.
type ChapterSpan struct {
	Start     int
	BodyStart int
	End       int
	Chapter   *ChapterInfo
}

// Body returns the span's text after the heading line.
func (s ChapterSpan) Body(text string) string {
	return text[s.BodyStart:s.End]
}

// SegmentChapters partitions the document at chapter headings.
//
// Each span runs from its heading to the next heading (or the end of the
// document). Text before the first heading is not covered. When the document
// has no chapter headings at all, a single chapterless span covers it whole.
func SegmentChapters(text string, c *pattern.CompiledProfile) []ChapterSpan {
	matches := findHeadings(c.Chapter, text)
	if len(matches) == 0 {
		return []ChapterSpan{{Start: 0, BodyStart: 0, End: len(text)}}
	}

	spans := make([]ChapterSpan, 0, len(matches))
	for i, m := range matches {
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}

		// The heading line, amendment annotation included, is not body text.
		titleStart, titleEnd := -1, groupEnd(m, 2)
		if len(m) > 5 {
			titleStart = m[4]
		}
		bodyStart := end
		if nl := strings.IndexByte(text[titleEnd:end], '\n'); nl >= 0 {
			bodyStart = titleEnd + nl + 1
		}
		// A section boundary on the heading line ends the title there.
		if titleStart >= 0 {
			if b := firstBoundary(text[titleStart:bodyStart], c); b >= 0 {
				titleEnd = titleStart + b
				bodyStart = titleEnd
			}
		}

		info := &ChapterInfo{Number: group(text, m, 1)}
		if titleStart >= 0 {
			info.Title = strings.TrimSpace(text[titleStart:titleEnd])
		}

		spans = append(spans, ChapterSpan{
			Start:     m[0],
			BodyStart: bodyStart,
			End:       end,
			Chapter:   info,
		})
	}
	return spans
}

// findHeadings returns submatch indexes of every chapter heading. Scanning
// resumes at the end of the title rather than the end of the match, so the
// line terminator a heading consumes can still open the heading that follows.
func findHeadings(re *regexp.Regexp, text string) [][]int {
	var matches [][]int
	pos := 0
	for pos < len(text) {
		loc := re.FindStringSubmatchIndex(text[pos:])
		if loc == nil {
			break
		}
		for i := range loc {
			if loc[i] >= 0 {
				loc[i] += pos
			}
		}
		matches = append(matches, loc)

		next := groupEnd(loc, 2)
		if next <= pos {
			next = loc[1]
		}
		if next <= pos {
			next = pos + 1
		}
		pos = next
	}
	return matches
}

// firstBoundary returns the offset of the earliest section boundary in text,
// or -1.
func firstBoundary(text string, c *pattern.CompiledProfile) int {
	first := -1
	for _, rule := range c.Sections {
		if loc := rule.Re.FindStringIndex(text); loc != nil && (first < 0 || loc[0] < first) {
			first = loc[0]
		}
	}
	return first
}

// group returns capture group n of a submatch index slice, or "".
func group(text string, loc []int, n int) string {
	if 2*n+1 >= len(loc) || loc[2*n] < 0 {
		return ""
	}
	return text[loc[2*n]:loc[2*n+1]]
}

// groupEnd returns the end offset of capture group n, falling back to the
// end of the whole match when the group did not participate.
func groupEnd(loc []int, n int) int {
	if 2*n+1 < len(loc) && loc[2*n+1] >= 0 {
		return loc[2*n+1]
	}
	return loc[1]
}
