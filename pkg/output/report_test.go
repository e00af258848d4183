package output

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coolbeans/lexchunk/pkg/corpus"
	"github.com/coolbeans/lexchunk/pkg/pattern"
	"github.com/coolbeans/lexchunk/pkg/statute"
)

func TestFormatBytes(t *testing.T) {
	testCases := []struct {
		name     string
		input    int64
		expected string
	}{
		{"zero bytes", 0, "0 B"},
		{"small bytes", 512, "512 B"},
		{"kilobytes", 1536, "1.5 KB"},
		{"megabytes", 5242880, "5.0 MB"},
		{"gigabytes", 1610612736, "1.5 GB"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.expected, FormatBytes(testCase.input))
		})
	}
}

func sampleManifest() *Manifest {
	m := NewManifest()
	m.Profile = "ko-statute"
	m.ProfileVersion = "1.0.0"
	m.Sources = []corpus.Source{{Path: "data/raw/a.txt", Size: 2048, Encoding: "utf-8"}}
	m.InputBytes = 2048
	m.Output = "data/processed/chunks.json"
	m.Format = FormatJSON
	m.Stats = statute.Stats{
		Chapters:     2,
		Sections:     5,
		Chunks:       8,
		Duplicates:   1,
		SectionKinds: map[string]int{"article": 3, "addendum": 1, "table": 1},
		SectionTypes: map[string]int{"article": 6, "addendum": 1, "table": 1},
	}
	return m
}

func TestNewManifest(t *testing.T) {
	m := NewManifest()
	_, err := uuid.Parse(m.RunID)
	assert.NoError(t, err)
	assert.Equal(t, manifestVersion, m.Version)
	assert.Zero(t, m.Duration())

	m.StartedAt = time.Now().Add(-2 * time.Second)
	m.Finish()
	assert.GreaterOrEqual(t, m.Duration(), 2*time.Second)
}

func TestManifestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "chunks.manifest.json")
	m := sampleManifest()
	m.Finish()

	require.NoError(t, m.Save(path))

	loaded, err := LoadManifest(path)
	require.NoError(t, err)
	assert.Equal(t, m.RunID, loaded.RunID)
	assert.Equal(t, m.Stats, loaded.Stats)
	assert.Equal(t, m.Sources, loaded.Sources)

	_, err = LoadManifest(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}

func TestManifestPath(t *testing.T) {
	assert.Equal(t, "data/chunks.manifest.json", ManifestPath("data/chunks.json"))
	assert.Equal(t, "out.manifest.json", ManifestPath("out.jsonl"))
}

func TestFormatReport(t *testing.T) {
	m := sampleManifest()
	m.Detected = true
	out := FormatReport(m)

	assert.Contains(t, out, "Chunking Report")
	assert.Contains(t, out, "ko-statute 1.0.0 (detected)")
	assert.Contains(t, out, "1 files, 2.0 KB")
	assert.Contains(t, out, "Chapters: 2 | Sections: 5 | Chunks: 8 | Duplicate IDs: 1")
	assert.Contains(t, out, "SECTION TYPE")
	assert.NotContains(t, out, "other")

	// Section types print in canonical order.
	assert.Less(t, strings.Index(out, "  article"), strings.Index(out, "  addendum"))
	assert.Less(t, strings.Index(out, "  addendum"), strings.Index(out, "  table"))
}

func TestFormatStatsEmptyWarning(t *testing.T) {
	out := FormatStats(statute.Stats{EmptyChunks: 2})
	assert.Contains(t, out, "[WARN] 2 chunks are empty")
}

func TestFormatReportJSON(t *testing.T) {
	out := FormatReportJSON(sampleManifest())
	assert.Contains(t, out, `"profile": "ko-statute"`)
	assert.Contains(t, out, `"run_id"`)
}

func TestFormatProfileTable(t *testing.T) {
	ko, err := pattern.BuiltinProfile("ko-statute")
	require.NoError(t, err)
	en, err := pattern.BuiltinProfile("en-statute")
	require.NoError(t, err)

	out := FormatProfileTable([]*pattern.Profile{en, ko})
	assert.Contains(t, out, "PROFILE")
	assert.Contains(t, out, "ko-statute")
	assert.Contains(t, out, "Total: 2 profiles")
}

func TestInspect(t *testing.T) {
	var buf bytes.Buffer
	n, err := Inspect(&buf, sampleChunks(), InspectOptions{})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	out := buf.String()
	assert.Contains(t, out, "ID: 1-1-①")
	assert.Contains(t, out, "Total: 3 of 3 chunks")
	// law_name is printed before section_type.
	assert.Less(t, strings.Index(out, "law_name:"), strings.Index(out, "section_type:"))
}

func TestInspectFilters(t *testing.T) {
	chunks := sampleChunks()

	tests := []struct {
		name string
		opts InspectOptions
		want []string
	}{
		{"by id", InspectOptions{ID: "3-0"}, []string{"3-0"}},
		{"by section type", InspectOptions{SectionType: "article"}, []string{"1-1", "1-1-①"}},
		{"limit", InspectOptions{Limit: 1}, []string{"1-1"}},
		{"no match", InspectOptions{ID: "9-9"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ids []string
			for _, c := range tt.opts.Filter(chunks) {
				ids = append(ids, c.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}
