package output

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/coolbeans/lexchunk/pkg/statute"
)

//go:embed chunk.schema.json
var chunkSchemaJSON []byte

const chunkSchemaURL = "chunk.schema.json"

var chunkSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(chunkSchemaURL, bytes.NewReader(chunkSchemaJSON)); err != nil {
		return nil, fmt.Errorf("failed to load chunk schema: %w", err)
	}
	schema, err := compiler.Compile(chunkSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chunk schema: %w", err)
	}
	return schema, nil
})

// ChunkSchema returns the embedded JSON Schema for chunk files.
func ChunkSchema() []byte {
	return chunkSchemaJSON
}

// ValidationError is a single problem found in a chunk file.
type ValidationError struct {
	// Location is a JSON pointer into the chunk array, e.g. "/3/metadata".
	Location string
	Message  string
}

func (e ValidationError) Error() string {
	if e.Location == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Location, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no errors"
	}
	if len(e) == 1 {
		return e[0].Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d validation errors:\n", len(e))
	for _, err := range e {
		fmt.Fprintf(&b, "  - %s\n", err.Error())
	}
	return b.String()
}

// Validate checks chunks against the chunk schema and verifies that every
// identifier is unique. It returns nil when the chunks are valid.
func Validate(chunks []statute.Chunk) error {
	schema, err := chunkSchema()
	if err != nil {
		return err
	}

	if chunks == nil {
		chunks = []statute.Chunk{}
	}
	raw, err := json.Marshal(chunks)
	if err != nil {
		return fmt.Errorf("encode chunks: %w", err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("decode chunks: %w", err)
	}

	var errs ValidationErrors
	if err := schema.Validate(doc); err != nil {
		var verr *jsonschema.ValidationError
		if !errors.As(err, &verr) {
			return fmt.Errorf("validate chunks: %w", err)
		}
		errs = append(errs, flatten(verr)...)
	}

	seen := make(map[string]int, len(chunks))
	for i, c := range chunks {
		if first, dup := seen[c.ID]; dup {
			errs = append(errs, ValidationError{
				Location: fmt.Sprintf("/%d/id", i),
				Message:  fmt.Sprintf("duplicate id %q (first at index %d)", c.ID, first),
			})
			continue
		}
		seen[c.ID] = i
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// flatten collects the leaf causes of a schema validation error.
func flatten(err *jsonschema.ValidationError) ValidationErrors {
	if len(err.Causes) == 0 {
		return ValidationErrors{{Location: err.InstanceLocation, Message: err.Message}}
	}
	var out ValidationErrors
	for _, cause := range err.Causes {
		out = append(out, flatten(cause)...)
	}
	return out
}
