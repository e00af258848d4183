package output

import (
	"bytes"
	"strings"

	"github.com/coolbeans/lexchunk/pkg/statute"
)

// DefaultPassagePrefix marks text as a retrieval passage for E5-style
// embedding models.
const DefaultPassagePrefix = "passage: "

// Passage is one embedder input record.
type Passage struct {
	ID       string           `json:"id"`
	Text     string           `json:"text"`
	Metadata statute.Metadata `json:"metadata"`
}

// Passages converts chunks into embedder input. Chunks whose content is blank
// are skipped, and text that already carries the prefix is not prefixed again.
func Passages(chunks []statute.Chunk, prefix string) []Passage {
	if prefix == "" {
		prefix = DefaultPassagePrefix
	}
	marker := strings.TrimSpace(prefix)

	passages := make([]Passage, 0, len(chunks))
	for _, c := range chunks {
		if strings.TrimSpace(c.Content) == "" {
			continue
		}
		text := c.Content
		if !strings.HasPrefix(text, marker) {
			text = prefix + text
		}
		passages = append(passages, Passage{ID: c.ID, Text: text, Metadata: c.Metadata})
	}
	return passages
}

// WritePassages writes passages as JSONL.
func WritePassages(path string, passages []Passage) error {
	var buf bytes.Buffer
	if err := writeLines(&buf, passages); err != nil {
		return err
	}
	return writeAtomic(path, buf.Bytes())
}
