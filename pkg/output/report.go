package output

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/coolbeans/lexchunk/pkg/pattern"
	"github.com/coolbeans/lexchunk/pkg/statute"
)

// FormatBytes converts byte count to human-readable format.
func FormatBytes(byteCount int64) string {
	switch {
	case byteCount >= 1024*1024*1024:
		return fmt.Sprintf("%.1f GB", float64(byteCount)/(1024*1024*1024))
	case byteCount >= 1024*1024:
		return fmt.Sprintf("%.1f MB", float64(byteCount)/(1024*1024))
	case byteCount >= 1024:
		return fmt.Sprintf("%.1f KB", float64(byteCount)/1024)
	default:
		return fmt.Sprintf("%d B", byteCount)
	}
}

// FormatReport formats a run manifest for terminal output.
func FormatReport(m *Manifest) string {
	var builder strings.Builder

	builder.WriteString("\nChunking Report\n")
	builder.WriteString(strings.Repeat("═", 60) + "\n")
	builder.WriteString(fmt.Sprintf("Profile: %s %s", m.Profile, m.ProfileVersion))
	if m.Detected {
		builder.WriteString(" (detected)")
	}
	builder.WriteString("\n")
	builder.WriteString(fmt.Sprintf("Input:   %d files, %s\n", len(m.Sources), FormatBytes(int64(m.InputBytes))))
	if m.Output != "" {
		builder.WriteString(fmt.Sprintf("Output:  %s (%s)\n", m.Output, m.Format))
	}
	if m.Passages != "" {
		builder.WriteString(fmt.Sprintf("Passages: %s\n", m.Passages))
	}
	if d := m.Duration(); d > 0 {
		builder.WriteString(fmt.Sprintf("Elapsed: %s\n", d.Round(time.Millisecond)))
	}
	builder.WriteString(strings.Repeat("─", 60) + "\n")
	builder.WriteString(FormatStats(m.Stats))

	return builder.String()
}

// FormatStats formats chunking counts as a small table.
func FormatStats(stats statute.Stats) string {
	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("Chapters: %d | Sections: %d | Chunks: %d | Duplicate IDs: %d\n",
		stats.Chapters, stats.Sections, stats.Chunks, stats.Duplicates))

	if len(stats.SectionTypes) > 0 {
		builder.WriteString(fmt.Sprintf("\n  %-14s %8s\n", "SECTION TYPE", "CHUNKS"))
		for _, name := range statute.SectionTypes {
			if n := stats.SectionTypes[name]; n > 0 {
				builder.WriteString(fmt.Sprintf("  %-14s %8d\n", name, n))
			}
		}
	}

	if len(stats.SectionKinds) > 0 {
		builder.WriteString(fmt.Sprintf("\n  %-14s %8s\n", "BOUNDARY", "SECTIONS"))
		for _, name := range sortedKeys(stats.SectionKinds) {
			builder.WriteString(fmt.Sprintf("  %-14s %8d\n", name, stats.SectionKinds[name]))
		}
	}

	if stats.EmptyChunks > 0 {
		builder.WriteString(fmt.Sprintf("\n  [WARN] %d chunks are empty after cleaning\n", stats.EmptyChunks))
	}

	return builder.String()
}

// FormatReportJSON formats a manifest as JSON.
func FormatReportJSON(m *Manifest) string {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Sprintf(`{"error": %q}`, err.Error())
	}
	return string(data)
}

// FormatProfileTable formats a list of structure profiles as a table.
func FormatProfileTable(profiles []*pattern.Profile) string {
	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("%-20s %-8s %-5s %s\n", "PROFILE", "VERSION", "LANG", "NAME"))
	builder.WriteString(strings.Repeat("─", 60) + "\n")

	for _, p := range profiles {
		name := p.Name
		if len(name) > 40 {
			name = name[:37] + "..."
		}
		builder.WriteString(fmt.Sprintf("%-20s %-8s %-5s %s\n", p.ProfileID, p.Version, p.Language, name))
	}

	builder.WriteString(fmt.Sprintf("\nTotal: %d profiles\n", len(profiles)))

	return builder.String()
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
