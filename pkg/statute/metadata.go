package statute

import (
	"regexp"
	"strings"

	"github.com/coolbeans/lexchunk/pkg/pattern"
)

// Metadata is the flat string map attached to every chunk.
type Metadata map[string]string

// Overlay copies every key of layer into m, replacing existing values.
func (m Metadata) Overlay(layer map[string]string) Metadata {
	for k, v := range layer {
		m[k] = v
	}
	return m
}

// Clone returns an independent copy of m.
func (m Metadata) Clone() Metadata {
	out := make(Metadata, len(m))
	return out.Overlay(m)
}

// SectionType returns the section_type value.
func (m Metadata) SectionType() string {
	return m[KeySectionType]
}

// classifier is one rule of the section_type decision list. Rules are tried
// in order and the first match decides.
type classifier struct {
	name        string
	sectionType string
	match       func(u unit) bool
	apply       func(u unit, meta Metadata)
}

// unit is the text under classification plus its inherited context.
type unit struct {
	text    string
	article ArticleInfo
	c       *pattern.CompiledProfile
}

var classifiers = []classifier{
	{
		name:        "article-header",
		sectionType: SectionTypeArticle,
		match:       func(u unit) bool { return u.c.Article.MatchString(u.text) },
		apply:       applyArticleHeader,
	},
	{
		name:        "addendum",
		sectionType: SectionTypeAddendum,
		match:       func(u unit) bool { return matches(u.c.AddendumKeyword, u.text) },
		apply:       applyAddendum,
	},
	{
		name:        "table",
		sectionType: SectionTypeTable,
		match:       func(u unit) bool { return matches(u.c.TableKeyword, u.text) },
		apply:       applyTable,
	},
	{
		// A clause split away from its article header.
		name:        "clause-continuation",
		sectionType: SectionTypeArticle,
		match: func(u unit) bool {
			return u.article.Number != "" && u.c.ClauseMarker.MatchString(u.text)
		},
		apply: applyClauseMarker,
	},
	{
		name:        "fallback",
		sectionType: SectionTypeOther,
		match:       func(unit) bool { return true },
	},
}

// ExtractMetadata builds the metadata of one unit of text.
//
// Layers are applied in order, later layers overriding earlier ones: header
// fields, chapter fields, fields inherited from the enclosing article, the
// inherited clause marker, the section classification and finally amendment
// dates.
func ExtractMetadata(text string, chapter *ChapterInfo, header *HeaderInfo, article ArticleInfo, c *pattern.CompiledProfile) Metadata {
	meta := Metadata{}
	meta.Overlay(header.Fields())
	meta.Overlay(chapter.Fields())

	u := unit{text: text, article: article, c: c}
	if article.Number != "" {
		meta[KeyArticleNo] = article.Number
		meta[KeyArticleTitle] = article.Title
	}
	if article.ClauseMarker != "" && c.ClauseMarker.MatchString(text) {
		meta[KeyItemNo] = article.ClauseMarker
		meta[KeyDetailType] = DetailTypeClause
	}

	classify(u, meta)

	if m := findSubmatch(c.Amended, text); m != nil {
		meta[KeyAmendmentDate] = strings.TrimSpace(m[1])
	}
	if m := findSubmatch(c.FullyAmended, text); m != nil {
		meta[KeyFullAmendmentDate] = strings.TrimSpace(m[1])
	}
	return meta
}

// Classify returns the section_type text would receive inside article.
func Classify(text string, article ArticleInfo, c *pattern.CompiledProfile) string {
	meta := Metadata{}
	classify(unit{text: text, article: article, c: c}, meta)
	return meta.SectionType()
}

func classify(u unit, meta Metadata) {
	for _, rule := range classifiers {
		if !rule.match(u) {
			continue
		}
		meta[KeySectionType] = rule.sectionType
		if rule.apply != nil {
			rule.apply(u, meta)
		}
		return
	}
}

func applyArticleHeader(u unit, meta Metadata) {
	loc := u.c.Article.FindStringSubmatchIndex(u.text)
	meta[KeyArticleNo] = group(u.text, loc, 1)
	meta[KeyArticleTitle] = strings.TrimSpace(group(u.text, loc, 2))

	// Numbered items only count inside a marked clause.
	if !setClauseMarker(u, meta) {
		return
	}
	if m := findSubmatch(u.c.Subitem, u.text); m != nil {
		meta[KeySubitemNo] = m[1]
		meta[KeySubdetailType] = SubdetailTypeItem
	}
}

func applyClauseMarker(u unit, meta Metadata) {
	setClauseMarker(u, meta)
}

// setClauseMarker records the first clause marker in the text and reports
// whether there was one.
func setClauseMarker(u unit, meta Metadata) bool {
	loc := u.c.ClauseMarker.FindStringSubmatchIndex(u.text)
	if loc == nil {
		return false
	}
	marker := group(u.text, loc, 1)
	if marker == "" {
		marker = strings.TrimSpace(u.text[loc[0]:loc[1]])
	}
	meta[KeyItemNo] = marker
	meta[KeyDetailType] = DetailTypeClause
	return true
}

func applyAddendum(u unit, meta Metadata) {
	if m := findSubmatch(u.c.AddendumTag, u.text); len(m) > 2 {
		meta[KeyAddendumType] = strings.TrimSpace(m[1])
		meta[KeyAddendumNo] = strings.TrimSpace(m[2])
	}
}

func applyTable(u unit, meta Metadata) {
	m := findSubmatch(u.c.TableHeader, u.text)
	if len(m) < 3 {
		return
	}
	number := strings.TrimSpace(m[1])
	if number == "" {
		number = u.c.TableDefaultNumber
	}
	meta[KeyTableNo] = number
	meta[KeyTableTitle] = strings.TrimSpace(m[2])
}

// matches reports whether an optional pattern is present and matches.
func matches(re *regexp.Regexp, text string) bool {
	return re != nil && re.MatchString(text)
}

func findSubmatch(re *regexp.Regexp, text string) []string {
	if re == nil {
		return nil
	}
	m := re.FindStringSubmatch(text)
	if m == nil || len(m) < 2 {
		return nil
	}
	return m
}
