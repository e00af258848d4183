package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/coolbeans/lexchunk/pkg/corpus"
	"github.com/coolbeans/lexchunk/pkg/statute"
)

const manifestVersion = "1.0.0"

// Manifest records what one run read, which profile it used and what it wrote.
type Manifest struct {
	Version        string          `json:"version"`
	RunID          string          `json:"run_id"`
	StartedAt      time.Time       `json:"started_at"`
	FinishedAt     time.Time       `json:"finished_at"`
	Profile        string          `json:"profile"`
	ProfileVersion string          `json:"profile_version"`
	Detected       bool            `json:"detected,omitempty"`
	Sources        []corpus.Source `json:"sources"`
	InputBytes     int             `json:"input_bytes"`
	Output         string          `json:"output"`
	Format         Format          `json:"format"`
	Passages       string          `json:"passages,omitempty"`
	Stats          statute.Stats   `json:"stats"`
}

// NewManifest starts a manifest for a run beginning now.
func NewManifest() *Manifest {
	return &Manifest{
		Version:   manifestVersion,
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
	}
}

// Duration is the wall time of the run, zero until Finish is called.
func (m *Manifest) Duration() time.Duration {
	if m.FinishedAt.IsZero() {
		return 0
	}
	return m.FinishedAt.Sub(m.StartedAt)
}

// Finish stamps the end of the run.
func (m *Manifest) Finish() {
	m.FinishedAt = time.Now()
}

// ManifestPath returns the manifest location for an output file:
// "chunks.json" becomes "chunks.manifest.json".
func ManifestPath(outputPath string) string {
	ext := filepath.Ext(outputPath)
	return strings.TrimSuffix(outputPath, ext) + ".manifest.json"
}

// LoadManifest reads a manifest from disk.
func LoadManifest(manifestPath string) (*Manifest, error) {
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	manifest := &Manifest{}
	if err := json.Unmarshal(data, manifest); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	return manifest, nil
}

// Save writes the manifest to disk.
func (m *Manifest) Save(manifestPath string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	return writeAtomic(manifestPath, data)
}
