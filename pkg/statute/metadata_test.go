package statute

import "testing"

func TestExtractMetadataOwnHeaderWins(t *testing.T) {
	c := compiled(t, "ko-statute")
	inherited := ArticleInfo{Number: "4", Title: "기존", ClauseMarker: "①"}

	meta := ExtractMetadata("제9조(신설) ② 새 조문의 둘째 항.", nil, nil, inherited, c)

	if meta[KeyArticleNo] != "9" || meta[KeyArticleTitle] != "신설" {
		t.Errorf("article = %s/%s, want 9/신설", meta[KeyArticleNo], meta[KeyArticleTitle])
	}
	if meta[KeyItemNo] != "②" {
		t.Errorf("item_no = %q, want ②", meta[KeyItemNo])
	}
	if meta[KeySectionType] != SectionTypeArticle {
		t.Errorf("section_type = %q", meta[KeySectionType])
	}
}

func TestExtractMetadataLayers(t *testing.T) {
	c := compiled(t, "en-statute")
	header := &HeaderInfo{LawName: "Sample Act", EffectiveDate: "2020.1.1"}
	chapter := &ChapterInfo{Number: "2", Title: "Duties"}

	meta := ExtractMetadata("Plain text without structure.", chapter, header, ArticleInfo{}, c)

	want := Metadata{
		KeyLawName:       "Sample Act",
		KeyEffectiveDate: "2020.1.1",
		KeyChapterNo:     "2",
		KeyChapterTitle:  "Duties",
		KeySectionType:   SectionTypeOther,
	}
	if len(meta) != len(want) {
		t.Errorf("ExtractMetadata() = %v, want %v", meta, want)
	}
	for k, v := range want {
		if meta[k] != v {
			t.Errorf("%s = %q, want %q", k, meta[k], v)
		}
	}
}

func TestClassify(t *testing.T) {
	ko := compiled(t, "ko-statute")
	inArticle := ArticleInfo{Number: "2", Title: "정의"}

	tests := []struct {
		name    string
		text    string
		article ArticleInfo
		want    string
	}{
		{"article header", "제1조(목적) 목적.", ArticleInfo{}, SectionTypeArticle},
		{"article header beats addendum", "부칙 제1조(시행일) 시행한다.", ArticleInfo{}, SectionTypeArticle},
		{"addendum", "부 칙 <법률 제1호>", ArticleInfo{}, SectionTypeAddendum},
		{"table", "[별표] 서식", ArticleInfo{}, SectionTypeTable},
		{"table keyword only", "과태료의 부과기준은 다음과 같다.", ArticleInfo{}, SectionTypeTable},
		{"clause continuation", "① 첫째 항.", inArticle, SectionTypeArticle},
		{"marker outside article", "① 첫째 항.", ArticleInfo{}, SectionTypeOther},
		{"plain text in article", "다음과 같다.", inArticle, SectionTypeOther},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.text, tt.article, ko); got != tt.want {
				t.Errorf("Classify(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

// A split-off clause must stay an article unit rather than falling through to
// "other".
func TestExtractMetadataClauseContinuation(t *testing.T) {
	c := compiled(t, "ko-statute")
	article := ArticleInfo{Number: "2", Title: "정의", ClauseMarker: "③"}

	meta := ExtractMetadata("③ 셋째 항.", &ChapterInfo{Number: "1", Title: "총칙"}, nil, article, c)

	if meta[KeySectionType] != SectionTypeArticle {
		t.Errorf("section_type = %q, want article", meta[KeySectionType])
	}
	if meta[KeyItemNo] != "③" || meta[KeyDetailType] != DetailTypeClause {
		t.Errorf("item_no = %q detail_type = %q", meta[KeyItemNo], meta[KeyDetailType])
	}
	if meta[KeyArticleNo] != "2" || meta[KeyArticleTitle] != "정의" {
		t.Errorf("article = %s/%s", meta[KeyArticleNo], meta[KeyArticleTitle])
	}
}

func TestExtractMetadataSubitem(t *testing.T) {
	c := compiled(t, "ko-statute")
	text := "제2조(정의) ① 용어의 뜻은 다음과 같다.\n1. 첫째 용어\n2. 둘째 용어"

	meta := ExtractMetadata(text, nil, nil, ArticleInfo{}, c)

	if meta[KeyItemNo] != "①" {
		t.Errorf("item_no = %q, want ①", meta[KeyItemNo])
	}
	if meta[KeySubitemNo] != "1." || meta[KeySubdetailType] != SubdetailTypeItem {
		t.Errorf("subitem_no = %q subdetail_type = %q", meta[KeySubitemNo], meta[KeySubdetailType])
	}
}

func TestExtractMetadataSubitemNeedsClauseMarker(t *testing.T) {
	c := compiled(t, "ko-statute")
	text := "제2조(정의) 이 법에서 사용하는 용어의 뜻은 다음과 같다.\n1. \"개인정보\"란 살아 있는 개인에 관한 정보를 말한다."

	meta := ExtractMetadata(text, nil, nil, ArticleInfo{}, c)

	for _, key := range []string{KeyItemNo, KeyDetailType, KeySubitemNo, KeySubdetailType} {
		if v, ok := meta[key]; ok {
			t.Errorf("%s = %q, want absent", key, v)
		}
	}
	if meta[KeyArticleNo] != "2" {
		t.Errorf("article_no = %q, want 2", meta[KeyArticleNo])
	}
}

func TestExtractMetadataInheritedMarkerWithoutArticle(t *testing.T) {
	c := compiled(t, "en-statute")
	inherited := ArticleInfo{ClauseMarker: "①"}

	meta := ExtractMetadata("① This Act enters into force.", nil, nil, inherited, c)

	if meta[KeyItemNo] != "①" || meta[KeyDetailType] != DetailTypeClause {
		t.Errorf("item_no = %q detail_type = %q, want ① clause", meta[KeyItemNo], meta[KeyDetailType])
	}
	if _, ok := meta[KeyArticleNo]; ok {
		t.Errorf("article_no = %q, want absent", meta[KeyArticleNo])
	}
}

func TestExtractMetadataSubitemIgnoresDates(t *testing.T) {
	c := compiled(t, "ko-statute")
	meta := ExtractMetadata("제1조(목적) 목적. <개정 2014. 3. 24.>", nil, nil, ArticleInfo{}, c)

	if _, ok := meta[KeySubitemNo]; ok {
		t.Errorf("subitem_no = %q, want absent", meta[KeySubitemNo])
	}
	if meta[KeyAmendmentDate] != "2014. 3. 24" {
		t.Errorf("amendment_date = %q", meta[KeyAmendmentDate])
	}
}

func TestExtractMetadataTableDefaultNumber(t *testing.T) {
	c := compiled(t, "ko-statute")
	meta := ExtractMetadata("[별표] 과태료의 부과기준", nil, nil, ArticleInfo{}, c)

	if meta[KeyTableNo] != "1" {
		t.Errorf("table_no = %q, want 1", meta[KeyTableNo])
	}
	if meta[KeyTableTitle] != "과태료의 부과기준" {
		t.Errorf("table_title = %q", meta[KeyTableTitle])
	}
}

func TestExtractMetadataAmendments(t *testing.T) {
	c := compiled(t, "en-statute")
	text := "Article 8 (Duties) Text. <Amended 2019. 12. 3.> [Wholly Amended 2015. 7. 24.]"

	meta := ExtractMetadata(text, nil, nil, ArticleInfo{}, c)

	if meta[KeyAmendmentDate] != "2019. 12. 3" {
		t.Errorf("amendment_date = %q", meta[KeyAmendmentDate])
	}
	if meta[KeyFullAmendmentDate] != "2015. 7. 24" {
		t.Errorf("full_amendment_date = %q", meta[KeyFullAmendmentDate])
	}
}

func TestMetadataOverlayAndClone(t *testing.T) {
	base := Metadata{KeyLawName: "A", KeyChapterNo: "1"}
	clone := base.Clone()
	clone.Overlay(map[string]string{KeyChapterNo: "2"})

	if base[KeyChapterNo] != "1" {
		t.Errorf("Clone() shares storage: base chapter_no = %q", base[KeyChapterNo])
	}
	if clone[KeyChapterNo] != "2" || clone[KeyLawName] != "A" {
		t.Errorf("Overlay() = %v", clone)
	}
}

func TestHeaderAndChapterFields(t *testing.T) {
	var nilHeader *HeaderInfo
	if len(nilHeader.Fields()) != 0 {
		t.Error("nil header should have no fields")
	}
	var nilChapter *ChapterInfo
	if len(nilChapter.Fields()) != 0 {
		t.Error("nil chapter should have no fields")
	}
	h := &HeaderInfo{LawName: "Act"}
	if fields := h.Fields(); len(fields) != 1 || fields[KeyLawName] != "Act" {
		t.Errorf("Fields() = %v", fields)
	}
}
