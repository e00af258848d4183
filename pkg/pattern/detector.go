package pattern

import (
	"fmt"
	"sort"
	"strings"
)

// ProfileMatch represents a detected profile match with confidence score.
type ProfileMatch struct {
	ProfileID  string
	Profile    *Profile
	Confidence float64
	Score      float64
	MaxScore   float64
	Indicators []IndicatorMatch

	RequiredMatched int
	RequiredTotal   int
	OptionalMatched int
	OptionalTotal   int
	NegativeMatched int
	TotalMatchCount int
}

// IndicatorMatch represents a matched indicator.
type IndicatorMatch struct {
	Pattern    string
	Weight     int
	MatchCount int
	Type       string // "required", "optional", "negative"
}

// String returns a human-readable summary of the match.
func (m *ProfileMatch) String() string {
	return fmt.Sprintf("%s: %.1f%% confidence (score: %.1f/%.1f, %d indicators matched)",
		m.ProfileID, m.Confidence*100, m.Score, m.MaxScore, len(m.Indicators))
}

// DebugString returns detailed debug information about the match.
func (m *ProfileMatch) DebugString() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Profile: %s (%s)\n", m.Profile.Name, m.ProfileID))
	sb.WriteString(fmt.Sprintf("  Confidence: %.2f (%.1f%%)\n", m.Confidence, m.Confidence*100))
	sb.WriteString(fmt.Sprintf("  Score: %.1f / %.1f (max)\n", m.Score, m.MaxScore))
	sb.WriteString(fmt.Sprintf("  Required: %d/%d matched\n", m.RequiredMatched, m.RequiredTotal))
	sb.WriteString(fmt.Sprintf("  Optional: %d/%d matched\n", m.OptionalMatched, m.OptionalTotal))
	sb.WriteString(fmt.Sprintf("  Negative: %d triggered\n", m.NegativeMatched))
	for _, ind := range m.Indicators {
		sb.WriteString(fmt.Sprintf("    [%s] weight=%d matches=%d pattern=%q\n",
			ind.Type, ind.Weight, ind.MatchCount, ind.Pattern))
	}
	return sb.String()
}

// Detector picks the profile that best fits a document.
type Detector struct {
	registry Registry

	// MinConfidence filters out matches at or below this threshold (0.0-1.0)
	MinConfidence float64
}

// NewDetector creates a detector over the profiles in registry.
func NewDetector(registry Registry) *Detector {
	return &Detector{registry: registry}
}

// Detect analyzes content and returns profile matches ranked by confidence.
func (d *Detector) Detect(content string) []ProfileMatch {
	profiles := d.registry.List()
	if len(profiles) == 0 {
		return nil
	}

	matches := make([]ProfileMatch, 0, len(profiles))
	for _, profile := range profiles {
		match := evaluateProfile(content, profile)
		if match.Confidence > d.MinConfidence {
			matches = append(matches, match)
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Confidence != matches[j].Confidence {
			return matches[i].Confidence > matches[j].Confidence
		}
		if matches[i].TotalMatchCount != matches[j].TotalMatchCount {
			return matches[i].TotalMatchCount > matches[j].TotalMatchCount
		}
		return matches[i].ProfileID < matches[j].ProfileID
	})

	return matches
}

// DetectBest returns the best matching profile, or nil if nothing matched.
func (d *Detector) DetectBest(content string) *ProfileMatch {
	matches := d.Detect(content)
	if len(matches) == 0 {
		return nil
	}
	return &matches[0]
}

// evaluateProfile scores a single profile against the content.
func evaluateProfile(content string, profile *Profile) ProfileMatch {
	match := ProfileMatch{
		ProfileID:     profile.ProfileID,
		Profile:       profile,
		RequiredTotal: len(profile.Detection.RequiredIndicators),
		OptionalTotal: len(profile.Detection.OptionalIndicators),
	}

	var score, maxScore float64

	evaluate := func(indicators []Indicator, kind string) int {
		matched := 0
		for _, ind := range indicators {
			if kind != "negative" {
				maxScore += float64(ind.Weight)
			}
			if ind.compiled == nil {
				continue
			}
			found := ind.compiled.FindAllStringIndex(content, -1)
			if len(found) == 0 {
				continue
			}
			matched++
			score += float64(ind.Weight)
			match.TotalMatchCount += len(found)
			match.Indicators = append(match.Indicators, IndicatorMatch{
				Pattern:    ind.Pattern,
				Weight:     ind.Weight,
				MatchCount: len(found),
				Type:       kind,
			})
		}
		return matched
	}

	match.RequiredMatched = evaluate(profile.Detection.RequiredIndicators, "required")
	// If no required indicators matched, confidence is 0
	if match.RequiredMatched == 0 {
		return match
	}
	match.OptionalMatched = evaluate(profile.Detection.OptionalIndicators, "optional")
	match.NegativeMatched = evaluate(profile.Detection.NegativeIndicators, "negative")

	match.Score = score
	match.MaxScore = maxScore
	if maxScore > 0 {
		match.Confidence = score / maxScore
		if match.Confidence < 0 {
			match.Confidence = 0
		}
		if match.Confidence > 1 {
			match.Confidence = 1
		}
	}

	return match
}
