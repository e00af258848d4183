package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/coolbeans/lexchunk/pkg/statute"
)

// InspectOptions filters and shapes Inspect output.
type InspectOptions struct {
	// ID prints only the chunk with this identifier.
	ID string
	// SectionType keeps only chunks of this section_type.
	SectionType string
	// Limit caps the number of chunks printed; 0 prints all.
	Limit int
	// Cleaned prints cleaned_content instead of content.
	Cleaned bool
}

// Filter returns the chunks selected by the options, in order.
func (o InspectOptions) Filter(chunks []statute.Chunk) []statute.Chunk {
	var out []statute.Chunk
	for _, c := range chunks {
		if o.ID != "" && c.ID != o.ID {
			continue
		}
		if o.SectionType != "" && c.Metadata.SectionType() != o.SectionType {
			continue
		}
		out = append(out, c)
		if o.Limit > 0 && len(out) == o.Limit {
			break
		}
	}
	return out
}

// Inspect prints chunks one block at a time: the identifier, each present
// metadata field in canonical order, then the text. It returns the number of
// chunks printed.
func Inspect(w io.Writer, chunks []statute.Chunk, opts InspectOptions) (int, error) {
	selected := opts.Filter(chunks)
	for _, c := range selected {
		var b strings.Builder
		fmt.Fprintf(&b, "ID: %s\n", c.ID)
		for _, key := range statute.MetadataKeys {
			if value, ok := c.Metadata[key]; ok {
				fmt.Fprintf(&b, "  %-20s %s\n", key+":", value)
			}
		}
		text := c.Content
		if opts.Cleaned {
			text = c.CleanedContent
		}
		fmt.Fprintf(&b, "%s\n%s\n", text, strings.Repeat("=", 60))
		if _, err := io.WriteString(w, b.String()); err != nil {
			return 0, err
		}
	}
	if _, err := fmt.Fprintf(w, "\nTotal: %d of %d chunks\n", len(selected), len(chunks)); err != nil {
		return 0, err
	}
	return len(selected), nil
}
