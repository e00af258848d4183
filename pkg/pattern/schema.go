package pattern

import (
	"fmt"
	"regexp"
	"strings"
)

// SchemaVersion is the current profile schema version
const SchemaVersion = "1.0.0"

// ValidationError represents a schema validation error with context
type ValidationError struct {
	Field   string
	Message string
	Value   interface{}
}

func (e ValidationError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string {
	if len(errs) == 0 {
		return "no errors"
	}
	if len(errs) == 1 {
		return errs[0].Error()
	}
	messages := make([]string, len(errs))
	for i, err := range errs {
		messages[i] = err.Error()
	}
	return fmt.Sprintf("%d validation errors:\n  - %s", len(errs), strings.Join(messages, "\n  - "))
}

// groupRequirement is the minimum number of capture groups a pattern needs.
type groupRequirement struct {
	field    string
	pattern  string
	groups   int
	required bool
}

// ValidateSchema performs comprehensive validation of a Profile.
// It returns descriptive errors for all validation failures.
func ValidateSchema(p *Profile) ValidationErrors {
	var errs ValidationErrors

	if p.Name == "" {
		errs = append(errs, ValidationError{Field: "name", Message: "required field is missing"})
	}

	if p.ProfileID == "" {
		errs = append(errs, ValidationError{Field: "profile_id", Message: "required field is missing"})
	} else if !isValidProfileID(p.ProfileID) {
		errs = append(errs, ValidationError{
			Field:   "profile_id",
			Message: "must be lowercase alphanumeric with hyphens, starting with a letter",
			Value:   p.ProfileID,
		})
	}

	if p.Version == "" {
		errs = append(errs, ValidationError{Field: "version", Message: "required field is missing"})
	} else if !isValidVersion(p.Version) {
		errs = append(errs, ValidationError{
			Field:   "version",
			Message: "must be semantic version (e.g., 1.0.0)",
			Value:   p.Version,
		})
	}

	errs = append(errs, validateGroups(p)...)
	errs = append(errs, validateSections(p.Sections)...)
	errs = append(errs, validateDetection(&p.Detection)...)

	for i, artifact := range p.Artifacts {
		if strings.TrimSpace(artifact) == "" {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("artifacts[%d]", i),
				Message: "artifact must not be blank",
			})
		}
	}

	return errs
}

func validateGroups(p *Profile) ValidationErrors {
	var errs ValidationErrors

	requirements := []groupRequirement{
		{"header.law_name_skip", p.Header.LawNameSkip, 0, false},
		{"header.effective", p.Header.Effective, 2, false},
		{"header.ministry", p.Header.Ministry, 1, false},
		{"chapter.boundary", p.Chapter.Boundary, 2, true},
		{"article.header", p.Article.Header, 2, true},
		{"clause.marker", p.Clause.Marker, 1, true},
		{"clause.subitem", p.Clause.Subitem, 1, false},
		{"addendum.keyword", p.Addendum.Keyword, 0, false},
		{"addendum.tag", p.Addendum.Tag, 2, false},
		{"table.keyword", p.Table.Keyword, 0, false},
		{"table.header", p.Table.Header, 2, false},
		{"amendment.amended", p.Amendment.Amended, 1, false},
		{"amendment.fully_amended", p.Amendment.FullyAmended, 1, false},
	}

	for _, req := range requirements {
		if req.pattern == "" {
			if req.required {
				errs = append(errs, ValidationError{Field: req.field, Message: "pattern is required"})
			}
			continue
		}
		compiled, err := regexp.Compile(req.pattern)
		if err != nil {
			errs = append(errs, ValidationError{Field: req.field, Message: "invalid regular expression", Value: err.Error()})
			continue
		}
		if compiled.NumSubexp() < req.groups {
			errs = append(errs, ValidationError{
				Field:   req.field,
				Message: fmt.Sprintf("pattern needs at least %d capture groups", req.groups),
				Value:   compiled.NumSubexp(),
			})
		}
	}

	return errs
}

func validateSections(rules []BoundaryRule) ValidationErrors {
	var errs ValidationErrors

	if len(rules) == 0 {
		errs = append(errs, ValidationError{
			Field:   "sections",
			Message: "at least one boundary rule is needed",
		})
	}

	validKinds := map[string]bool{KindArticle: true, KindAddendum: true, KindTable: true}
	seen := make(map[string]bool)

	for i, rule := range rules {
		field := fmt.Sprintf("sections[%d]", i)

		if !validKinds[rule.Kind] {
			errs = append(errs, ValidationError{Field: field + ".kind", Message: "invalid boundary kind", Value: rule.Kind})
		} else if seen[rule.Kind] {
			errs = append(errs, ValidationError{Field: field + ".kind", Message: "duplicate boundary kind", Value: rule.Kind})
		}
		seen[rule.Kind] = true

		if rule.Pattern == "" {
			errs = append(errs, ValidationError{Field: field + ".pattern", Message: "pattern is required"})
			continue
		}
		compiled, err := regexp.Compile(rule.Pattern)
		if err != nil {
			errs = append(errs, ValidationError{Field: field + ".pattern", Message: "invalid regular expression", Value: err.Error()})
			continue
		}
		// A boundary that can match the empty string would split everywhere.
		if compiled.MatchString("") {
			errs = append(errs, ValidationError{Field: field + ".pattern", Message: "pattern must not match the empty string"})
		}
	}

	return errs
}

func validateDetection(d *DetectionConfig) ValidationErrors {
	var errs ValidationErrors

	for i, ind := range d.RequiredIndicators {
		errs = append(errs, validateIndicator(fmt.Sprintf("detection.required_indicators[%d]", i), &ind, true)...)
	}
	for i, ind := range d.OptionalIndicators {
		errs = append(errs, validateIndicator(fmt.Sprintf("detection.optional_indicators[%d]", i), &ind, true)...)
	}
	for i, ind := range d.NegativeIndicators {
		errs = append(errs, validateIndicator(fmt.Sprintf("detection.negative_indicators[%d]", i), &ind, false)...)
	}

	return errs
}

func validateIndicator(field string, ind *Indicator, positiveWeight bool) ValidationErrors {
	var errs ValidationErrors

	if ind.Pattern == "" {
		errs = append(errs, ValidationError{Field: field + ".pattern", Message: "pattern is required"})
	}

	if positiveWeight {
		if ind.Weight < 1 || ind.Weight > 100 {
			errs = append(errs, ValidationError{
				Field:   field + ".weight",
				Message: "weight must be between 1 and 100",
				Value:   ind.Weight,
			})
		}
	} else if ind.Weight > -1 || ind.Weight < -100 {
		errs = append(errs, ValidationError{
			Field:   field + ".weight",
			Message: "negative indicator weight must be between -100 and -1",
			Value:   ind.Weight,
		})
	}

	return errs
}

func isValidProfileID(id string) bool {
	if len(id) == 0 {
		return false
	}
	// Must start with lowercase letter
	if id[0] < 'a' || id[0] > 'z' {
		return false
	}
	for _, c := range id[1:] {
		if !((c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '-') {
			return false
		}
	}
	return true
}

func isValidVersion(v string) bool {
	parts := strings.Split(v, ".")
	if len(parts) != 3 {
		return false
	}
	for _, part := range parts {
		if len(part) == 0 {
			return false
		}
		for _, c := range part {
			if c < '0' || c > '9' {
				return false
			}
		}
	}
	return true
}
