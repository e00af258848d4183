package statute

import "testing"

func TestSplitClausesNoMarkers(t *testing.T) {
	text := "제3조(적용범위) 이 법은 모든 경우에 적용한다."
	clauses := SplitClauses(text, compiled(t, "ko-statute"))

	if len(clauses) != 1 {
		t.Fatalf("SplitClauses() = %d clauses, want 1", len(clauses))
	}
	c := clauses[0]
	if c.Index != 0 || c.Text != text || c.Marker != "" {
		t.Errorf("clause = %+v", c)
	}
	if c.Article.Number != "3" || c.Article.Title != "적용범위" {
		t.Errorf("Article = %+v", c.Article)
	}
}

func TestSplitClauses(t *testing.T) {
	text := "제5조(책무) 국가는 다음을 한다.\n① 첫째 의무.\n② 둘째 의무."
	clauses := SplitClauses(text, compiled(t, "ko-statute"))

	want := []struct {
		index  int
		text   string
		marker string
	}{
		{0, "제5조(책무) 국가는 다음을 한다.", ""},
		{1, "① 첫째 의무.", "①"},
		{2, "② 둘째 의무.", "②"},
	}
	if len(clauses) != len(want) {
		t.Fatalf("SplitClauses() = %d clauses, want %d", len(clauses), len(want))
	}
	for i, w := range want {
		c := clauses[i]
		if c.Index != w.index || c.Text != w.text || c.Marker != w.marker {
			t.Errorf("clause[%d] = %+v, want %+v", i, c, w)
		}
		if c.Article.Number != "5" || c.Article.Title != "책무" {
			t.Errorf("clause[%d].Article = %+v", i, c.Article)
		}
		if c.Article.ClauseMarker != w.marker {
			t.Errorf("clause[%d].Article.ClauseMarker = %q, want %q", i, c.Article.ClauseMarker, w.marker)
		}
	}
}

func TestSplitClausesLeadingMarker(t *testing.T) {
	clauses := SplitClauses("① only clause. ② second.", compiled(t, "en-statute"))

	if len(clauses) != 2 {
		t.Fatalf("SplitClauses() = %d clauses, want 2", len(clauses))
	}
	if clauses[0].Index != 1 || clauses[0].Marker != "①" {
		t.Errorf("first clause = %+v, want index 1 marker ①", clauses[0])
	}
	if clauses[0].Article.Number != "" {
		t.Errorf("Article = %+v, want empty", clauses[0].Article)
	}
}

func TestExtractArticleEmptyTitle(t *testing.T) {
	article := ExtractArticle("Article 12 () Reserved.", compiled(t, "en-statute"))
	if article.Number != "12" {
		t.Errorf("Number = %q, want 12", article.Number)
	}
	if article.Title != "" {
		t.Errorf("Title = %q, want empty", article.Title)
	}
}
