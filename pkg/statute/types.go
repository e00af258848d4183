// Package statute decomposes statute text into addressable chunks.
//
// The pipeline runs four stages over the whole document: chapter segmentation,
// section splitting (articles, addenda, tables), clause splitting with metadata
// extraction, and identifier assignment. Every pattern comes from a
// pattern.Profile, so the same code handles Korean statute exports and their
// English renderings.
package statute

// Metadata keys emitted on every chunk. Only KeySectionType is always present.
const (
	KeyLawName           = "law_name"
	KeyEffectiveDate     = "effective_date"
	KeyPublicationInfo   = "publication_info"
	KeyMinistry          = "ministry"
	KeyChapterNo         = "chapter_no"
	KeyChapterTitle      = "chapter_title"
	KeyArticleNo         = "article_no"
	KeyArticleTitle      = "article_title"
	KeyItemNo            = "item_no"
	KeyDetailType        = "detail_type"
	KeySubitemNo         = "subitem_no"
	KeySubdetailType     = "subdetail_type"
	KeySectionType       = "section_type"
	KeyAddendumType      = "addendum_type"
	KeyAddendumNo        = "addendum_no"
	KeyTableNo           = "table_no"
	KeyTableTitle        = "table_title"
	KeyAmendmentDate     = "amendment_date"
	KeyFullAmendmentDate = "full_amendment_date"
)

// MetadataKeys lists every metadata key in output order.
var MetadataKeys = []string{
	KeyLawName, KeyEffectiveDate, KeyPublicationInfo, KeyMinistry,
	KeyChapterNo, KeyChapterTitle, KeyArticleNo, KeyArticleTitle,
	KeyItemNo, KeyDetailType, KeySubitemNo, KeySubdetailType,
	KeySectionType, KeyAddendumType, KeyAddendumNo, KeyTableNo, KeyTableTitle,
	KeyAmendmentDate, KeyFullAmendmentDate,
}

// Values of KeySectionType.
const (
	SectionTypeArticle  = "article"
	SectionTypeAddendum = "addendum"
	SectionTypeTable    = "table"
	SectionTypeOther    = "other"
)

// SectionTypes lists the closed set of section_type values.
var SectionTypes = []string{SectionTypeArticle, SectionTypeAddendum, SectionTypeTable, SectionTypeOther}

const (
	// DetailTypeClause is the detail_type of a unit carrying a clause marker.
	DetailTypeClause = "clause"
	// SubdetailTypeItem is the subdetail_type of a unit carrying a numbered item.
	SubdetailTypeItem = "item"
)

// HeaderInfo is document-level information, extracted once per document.
type HeaderInfo struct {
	LawName         string `json:"law_name,omitempty"`
	EffectiveDate   string `json:"effective_date,omitempty"`
	PublicationInfo string `json:"publication_info,omitempty"`
	Ministry        string `json:"ministry,omitempty"`
}

// Fields returns the non-empty header fields as a metadata layer.
func (h *HeaderInfo) Fields() map[string]string {
	fields := make(map[string]string, 4)
	if h == nil {
		return fields
	}
	setIfPresent(fields, KeyLawName, h.LawName)
	setIfPresent(fields, KeyEffectiveDate, h.EffectiveDate)
	setIfPresent(fields, KeyPublicationInfo, h.PublicationInfo)
	setIfPresent(fields, KeyMinistry, h.Ministry)
	return fields
}

// ChapterInfo identifies the chapter a span of text belongs to.
// A nil *ChapterInfo means the text is not inside any chapter.
type ChapterInfo struct {
	Number string `json:"number"`
	Title  string `json:"title"`
}

// Fields returns the chapter metadata layer; empty for a nil chapter.
func (c *ChapterInfo) Fields() map[string]string {
	fields := make(map[string]string, 2)
	if c == nil || c.Number == "" {
		return fields
	}
	fields[KeyChapterNo] = c.Number
	fields[KeyChapterTitle] = c.Title
	return fields
}

// SectionKind records which boundary rule opened a section.
type SectionKind string

const (
	SectionKindArticle  SectionKind = "article"
	SectionKindAddendum SectionKind = "addendum"
	SectionKindTable    SectionKind = "table"
	// SectionKindUnmarked is text that precedes the first boundary of its chapter.
	SectionKindUnmarked SectionKind = "unmarked"
)

// Section is one article, addendum block or table block.
type Section struct {
	Index   int
	Kind    SectionKind
	Text    string
	Chapter *ChapterInfo
	Header  *HeaderInfo
}

// ArticleInfo is the article a clause belongs to.
type ArticleInfo struct {
	Number       string
	Title        string
	ClauseMarker string
}

// Clause is a sub-span of a Section delimited by a clause marker.
// Index is the span position within the section; span 0 precedes any marker.
type Clause struct {
	Index   int
	Text    string
	Marker  string
	Article ArticleInfo
}

// Chunk is one emitted unit of text with its identifier and metadata.
type Chunk struct {
	ID             string   `json:"id" yaml:"id"`
	Content        string   `json:"content" yaml:"content"`
	CleanedContent string   `json:"cleaned_content" yaml:"cleaned_content"`
	Metadata       Metadata `json:"metadata" yaml:"metadata"`
}

func setIfPresent(fields map[string]string, key, value string) {
	if value != "" {
		fields[key] = value
	}
}
