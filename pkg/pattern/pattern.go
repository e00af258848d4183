// Package pattern provides pluggable structure profiles for statute text.
//
// A Profile bundles every regular expression the statute parser needs: chapter
// headings, the ordered section boundary rules, article headers, clause markers,
// addendum and table tags, amendment annotations and the scraping artifacts to
// strip. Profiles are YAML documents; two are built in and more can be loaded
// from a directory through a Registry.
package pattern

import (
	"fmt"
	"regexp"
	"unicode/utf8"
)

// Boundary kinds recognized by the section splitter.
const (
	KindArticle  = "article"
	KindAddendum = "addendum"
	KindTable    = "table"
)

// Profile defines the patterns for one family of statute text.
type Profile struct {
	// Metadata
	Name      string `yaml:"name" json:"name"`
	ProfileID string `yaml:"profile_id" json:"profile_id"`
	Version   string `yaml:"version" json:"version"`
	Language  string `yaml:"language" json:"language"`

	// Detection configuration used when the profile is chosen automatically
	Detection DetectionConfig `yaml:"detection" json:"detection"`

	Header    HeaderConfig    `yaml:"header" json:"header"`
	Chapter   ChapterConfig   `yaml:"chapter" json:"chapter"`
	Sections  []BoundaryRule  `yaml:"sections" json:"sections"`
	Article   ArticleConfig   `yaml:"article" json:"article"`
	Clause    ClauseConfig    `yaml:"clause" json:"clause"`
	Addendum  AddendumConfig  `yaml:"addendum" json:"addendum"`
	Table     TableConfig     `yaml:"table" json:"table"`
	Amendment AmendmentConfig `yaml:"amendment" json:"amendment"`

	// Artifacts are literal strings removed from cleaned content
	Artifacts []string `yaml:"artifacts" json:"artifacts"`

	// Compiled patterns (populated by Compile)
	compiled *CompiledProfile
}

// DetectionConfig defines how to recognize text written in this profile's style.
type DetectionConfig struct {
	RequiredIndicators []Indicator `yaml:"required_indicators" json:"required_indicators"`
	OptionalIndicators []Indicator `yaml:"optional_indicators" json:"optional_indicators"`
	NegativeIndicators []Indicator `yaml:"negative_indicators" json:"negative_indicators"`
}

// Indicator represents a pattern that indicates a particular profile.
type Indicator struct {
	Pattern string `yaml:"pattern" json:"pattern"`
	Weight  int    `yaml:"weight" json:"weight"`

	compiled *regexp.Regexp
}

// HeaderConfig locates document-level information.
type HeaderConfig struct {
	// LawNameSkip rejects a first line that is already structural text.
	LawNameSkip string `yaml:"law_name_skip" json:"law_name_skip"`
	// Effective captures (1) the effective date and (2) the publication info.
	Effective string `yaml:"effective" json:"effective"`
	// Ministry captures (1) the issuing ministry.
	Ministry string `yaml:"ministry" json:"ministry"`
}

// ChapterConfig defines the chapter heading. Groups: (1) number, (2) title.
type ChapterConfig struct {
	Boundary string `yaml:"boundary" json:"boundary"`
}

// BoundaryRule marks the start of a section. Rules are tried in order.
type BoundaryRule struct {
	Kind    string `yaml:"kind" json:"kind"`
	Pattern string `yaml:"pattern" json:"pattern"`
}

// ArticleConfig defines the article header. Groups: (1) number, (2) title.
type ArticleConfig struct {
	Header string `yaml:"header" json:"header"`
}

// ClauseConfig defines enumerated clause markers and numbered sub-items.
type ClauseConfig struct {
	// Marker captures (1) the marker symbol; the match must start at the symbol.
	Marker string `yaml:"marker" json:"marker"`
	// Subitem captures (1) a numbered list marker such as "1.".
	Subitem string `yaml:"subitem" json:"subitem"`
}

// AddendumConfig defines addendum detection. Tag groups: (1) type, (2) number.
type AddendumConfig struct {
	Keyword string `yaml:"keyword" json:"keyword"`
	Tag     string `yaml:"tag" json:"tag"`
}

// TableConfig defines appended table detection. Header groups: (1) number, (2) title.
type TableConfig struct {
	Keyword       string `yaml:"keyword" json:"keyword"`
	Header        string `yaml:"header" json:"header"`
	DefaultNumber string `yaml:"default_number" json:"default_number"`
}

// AmendmentConfig captures (1) the date of amendment annotations.
type AmendmentConfig struct {
	Amended      string `yaml:"amended" json:"amended"`
	FullyAmended string `yaml:"fully_amended" json:"fully_amended"`
}

// CompiledBoundary is a compiled section boundary rule.
type CompiledBoundary struct {
	Kind string
	Re   *regexp.Regexp

	// at matches Re preceded by exactly one rune of left context, so a
	// candidate start can be checked with ^ and \b seeing the real text.
	at *regexp.Regexp
}

// Starts returns every offset where the rule matches, including matches
// that begin inside an earlier, longer match.
func (b CompiledBoundary) Starts(text string) []int {
	var starts []int
	pos := 0
	for pos < len(text) {
		loc := b.Re.FindStringIndex(text[pos:])
		if loc == nil {
			break
		}
		start := pos + loc[0]
		if loc[0] > 0 || pos == 0 || b.matchesAt(text, start) {
			starts = append(starts, start)
		}
		_, size := utf8.DecodeRuneInString(text[start:])
		if size == 0 {
			break
		}
		pos = start + size
	}
	return starts
}

// matchesAt reports whether the rule matches at start given the text before it.
func (b CompiledBoundary) matchesAt(text string, start int) bool {
	if b.at == nil {
		return false
	}
	_, size := utf8.DecodeLastRuneInString(text[:start])
	return b.at.MatchString(text[start-size:])
}

// CompiledProfile holds the compiled form of a Profile. Optional patterns that
// were left empty compile to nil.
type CompiledProfile struct {
	LawNameSkip     *regexp.Regexp
	Effective       *regexp.Regexp
	Ministry        *regexp.Regexp
	Chapter         *regexp.Regexp
	Sections        []CompiledBoundary
	Article         *regexp.Regexp
	ClauseMarker    *regexp.Regexp
	Subitem         *regexp.Regexp
	AddendumKeyword *regexp.Regexp
	AddendumTag     *regexp.Regexp
	TableKeyword    *regexp.Regexp
	TableHeader     *regexp.Regexp
	Amended         *regexp.Regexp
	FullyAmended    *regexp.Regexp

	TableDefaultNumber string
	Artifacts          []string

	RequiredIndicators []*regexp.Regexp
	OptionalIndicators []*regexp.Regexp
	NegativeIndicators []*regexp.Regexp
}

// Compile compiles all regex patterns in the Profile.
// Returns an error if any pattern fails to compile.
func (p *Profile) Compile() error {
	c := &CompiledProfile{
		TableDefaultNumber: p.Table.DefaultNumber,
		Artifacts:          append([]string(nil), p.Artifacts...),
	}
	if c.TableDefaultNumber == "" {
		c.TableDefaultNumber = "1"
	}

	optional := []struct {
		field   string
		pattern string
		dst     **regexp.Regexp
	}{
		{"header.law_name_skip", p.Header.LawNameSkip, &c.LawNameSkip},
		{"header.effective", p.Header.Effective, &c.Effective},
		{"header.ministry", p.Header.Ministry, &c.Ministry},
		{"chapter.boundary", p.Chapter.Boundary, &c.Chapter},
		{"article.header", p.Article.Header, &c.Article},
		{"clause.marker", p.Clause.Marker, &c.ClauseMarker},
		{"clause.subitem", p.Clause.Subitem, &c.Subitem},
		{"addendum.keyword", p.Addendum.Keyword, &c.AddendumKeyword},
		{"addendum.tag", p.Addendum.Tag, &c.AddendumTag},
		{"table.keyword", p.Table.Keyword, &c.TableKeyword},
		{"table.header", p.Table.Header, &c.TableHeader},
		{"amendment.amended", p.Amendment.Amended, &c.Amended},
		{"amendment.fully_amended", p.Amendment.FullyAmended, &c.FullyAmended},
	}
	for _, o := range optional {
		if o.pattern == "" {
			continue
		}
		compiled, err := regexp.Compile(o.pattern)
		if err != nil {
			return fmt.Errorf("compiling %s pattern %q: %w", o.field, o.pattern, err)
		}
		*o.dst = compiled
	}

	for i, rule := range p.Sections {
		compiled, err := regexp.Compile(rule.Pattern)
		if err != nil {
			return fmt.Errorf("compiling sections[%d] (%s) pattern %q: %w", i, rule.Kind, rule.Pattern, err)
		}
		at, err := regexp.Compile(`\A(?s:.)(?:` + rule.Pattern + `)`)
		if err != nil {
			return fmt.Errorf("compiling sections[%d] (%s) pattern %q: %w", i, rule.Kind, rule.Pattern, err)
		}
		c.Sections = append(c.Sections, CompiledBoundary{Kind: rule.Kind, Re: compiled, at: at})
	}

	indicatorSets := []struct {
		name string
		list []Indicator
		dst  *[]*regexp.Regexp
	}{
		{"required", p.Detection.RequiredIndicators, &c.RequiredIndicators},
		{"optional", p.Detection.OptionalIndicators, &c.OptionalIndicators},
		{"negative", p.Detection.NegativeIndicators, &c.NegativeIndicators},
	}
	for _, set := range indicatorSets {
		for i := range set.list {
			ind := &set.list[i]
			compiled, err := regexp.Compile(ind.Pattern)
			if err != nil {
				return fmt.Errorf("compiling %s indicator %d pattern %q: %w", set.name, i, ind.Pattern, err)
			}
			ind.compiled = compiled
			*set.dst = append(*set.dst, compiled)
		}
	}

	p.compiled = c
	return nil
}

// IsCompiled returns true if the profile has been compiled.
func (p *Profile) IsCompiled() bool {
	return p.compiled != nil
}

// Compiled returns the compiled patterns, or nil before Compile has run.
func (p *Profile) Compiled() *CompiledProfile {
	return p.compiled
}

// Validate checks that the profile has all required fields.
func (p *Profile) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("profile name is required")
	}
	if p.ProfileID == "" {
		return fmt.Errorf("profile profile_id is required")
	}
	if p.Version == "" {
		return fmt.Errorf("profile version is required")
	}
	if p.Chapter.Boundary == "" {
		return fmt.Errorf("chapter boundary pattern is required")
	}
	if len(p.Sections) == 0 {
		return fmt.Errorf("at least one section boundary rule is required")
	}
	if p.Article.Header == "" {
		return fmt.Errorf("article header pattern is required")
	}
	if p.Clause.Marker == "" {
		return fmt.Errorf("clause marker pattern is required")
	}
	return nil
}

// SectionRule returns the boundary rule for the given kind.
func (p *Profile) SectionRule(kind string) *BoundaryRule {
	for i := range p.Sections {
		if p.Sections[i].Kind == kind {
			return &p.Sections[i]
		}
	}
	return nil
}
