package statute

import (
	"strings"

	"github.com/coolbeans/lexchunk/pkg/pattern"
)

// ExtractHeader reads the law name, effective date, publication info and
// issuing ministry from the document.
//
// The law name is the first non-blank line unless that line is already
// structural text (a chapter or article heading). Any effective-date tag on
// the same line is cut off, so "Sample Act [Effective 2020.1.1][Act No. 1]"
// yields "Sample Act".
func ExtractHeader(text string, c *pattern.CompiledProfile) *HeaderInfo {
	header := &HeaderInfo{}

	if line := firstNonBlankLine(text); line != "" {
		skip := c.LawNameSkip != nil && c.LawNameSkip.MatchString(line)
		if !skip {
			if c.Effective != nil {
				if loc := c.Effective.FindStringIndex(line); loc != nil {
					line = strings.TrimSpace(line[:loc[0]])
				}
			}
			header.LawName = line
		}
	}

	if c.Effective != nil {
		if m := c.Effective.FindStringSubmatch(text); m != nil {
			header.EffectiveDate = strings.TrimSpace(m[1])
			header.PublicationInfo = strings.TrimSpace(m[2])
		}
	}

	if c.Ministry != nil {
		if m := c.Ministry.FindStringSubmatch(text); m != nil {
			header.Ministry = strings.TrimSpace(m[1])
		}
	}

	return header
}

func firstNonBlankLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
