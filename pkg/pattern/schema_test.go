package pattern

import (
	"strings"
	"testing"
)

func TestValidateSchemaValid(t *testing.T) {
	errs := ValidateSchema(minimalProfile("valid-profile"))
	if len(errs) != 0 {
		t.Errorf("ValidateSchema() = %v, want no errors", errs)
	}
}

func TestValidateSchemaFields(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(p *Profile)
		wantField string
	}{
		{"missing name", func(p *Profile) { p.Name = "" }, "name"},
		{"uppercase id", func(p *Profile) { p.ProfileID = "Ko-Statute" }, "profile_id"},
		{"bad version", func(p *Profile) { p.Version = "1.0" }, "version"},
		{"chapter without groups", func(p *Profile) { p.Chapter.Boundary = `\sChapter\s+\d+` }, "chapter.boundary"},
		{"article with one group", func(p *Profile) { p.Article.Header = `Article\s+(\d+)` }, "article.header"},
		{"broken ministry regex", func(p *Profile) { p.Header.Ministry = `([` }, "header.ministry"},
		{"table header one group", func(p *Profile) { p.Table.Header = `\[Table\s*(\d*)\]` }, "table.header"},
		{"unknown boundary kind", func(p *Profile) { p.Sections[0].Kind = "annex" }, "sections[0].kind"},
		{"empty-matching boundary", func(p *Profile) { p.Sections[0].Pattern = `\s*` }, "sections[0].pattern"},
		{"blank artifact", func(p *Profile) { p.Artifacts = []string{"  "} }, "artifacts[0]"},
		{
			"duplicate boundary kind",
			func(p *Profile) {
				p.Sections = append(p.Sections, BoundaryRule{Kind: KindArticle, Pattern: `Art\.`})
			},
			"sections[1].kind",
		},
		{
			"positive negative indicator",
			func(p *Profile) {
				p.Detection.NegativeIndicators = []Indicator{{Pattern: `x`, Weight: 5}}
			},
			"detection.negative_indicators[0].weight",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := minimalProfile("test-profile")
			tt.mutate(p)
			errs := ValidateSchema(p)
			found := false
			for _, err := range errs {
				if err.Field == tt.wantField {
					found = true
				}
			}
			if !found {
				t.Errorf("ValidateSchema() = %v, want error on field %q", errs, tt.wantField)
			}
		})
	}
}

func TestValidationErrorsError(t *testing.T) {
	var none ValidationErrors
	if none.Error() != "no errors" {
		t.Errorf("empty Error() = %q", none.Error())
	}

	one := ValidationErrors{{Field: "name", Message: "required field is missing"}}
	if one.Error() != "name: required field is missing" {
		t.Errorf("single Error() = %q", one.Error())
	}

	two := ValidationErrors{
		{Field: "name", Message: "required field is missing"},
		{Field: "version", Message: "must be semantic version (e.g., 1.0.0)", Value: "x"},
	}
	msg := two.Error()
	if !strings.HasPrefix(msg, "2 validation errors:") || !strings.Contains(msg, "(got: x)") {
		t.Errorf("multi Error() = %q", msg)
	}
}
