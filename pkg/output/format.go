// Package output writes, reads, validates and summarizes chunk files.
package output

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/coolbeans/lexchunk/pkg/statute"
)

// Format is a chunk file encoding.
type Format string

const (
	FormatJSON  Format = "json"
	FormatJSONL Format = "jsonl"
	FormatYAML  Format = "yaml"
)

// Formats lists the supported formats.
var Formats = []Format{FormatJSON, FormatJSONL, FormatYAML}

// ParseFormat resolves a format name.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "json":
		return FormatJSON, nil
	case "jsonl", "ndjson":
		return FormatJSONL, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown output format %q (want json, jsonl or yaml)", name)
}

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", fmt.Errorf("cannot infer format of %s: no extension", path)
	}
	return ParseFormat(ext)
}

// Write encodes chunks to w. JSON output is indented and keeps non-ASCII
// text unescaped.
func Write(w io.Writer, chunks []statute.Chunk, format Format) error {
	if chunks == nil {
		chunks = []statute.Chunk{}
	}

	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		if err := enc.Encode(chunks); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	case FormatJSONL:
		return writeLines(w, chunks)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(chunks); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown output format %q", format)
}

// writeLines writes one compact JSON document per line.
func writeLines[T any](w io.Writer, items []T) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)
	for i := range items {
		if err := enc.Encode(items[i]); err != nil {
			return fmt.Errorf("encode line %d: %w", i, err)
		}
	}
	return bw.Flush()
}

// WriteFile writes chunks to path, creating parent directories.
func WriteFile(path string, chunks []statute.Chunk, format Format) error {
	var buf bytes.Buffer
	if err := Write(&buf, chunks, format); err != nil {
		return err
	}
	return writeAtomic(path, buf.Bytes())
}

// writeAtomic writes through a temporary file so readers never see a
// partially written output.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to set permissions on %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

// Read decodes chunks from r.
func Read(r io.Reader, format Format) ([]statute.Chunk, error) {
	var chunks []statute.Chunk

	switch format {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&chunks); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
	case FormatJSONL:
		dec := json.NewDecoder(r)
		for line := 1; ; line++ {
			var c statute.Chunk
			if err := dec.Decode(&c); err == io.EOF {
				break
			} else if err != nil {
				return nil, fmt.Errorf("decode jsonl record %d: %w", line, err)
			}
			chunks = append(chunks, c)
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&chunks); err != nil && err != io.EOF {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
	return chunks, nil
}

// ReadFile reads a chunk file, inferring the format from its extension.
func ReadFile(path string) ([]statute.Chunk, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open chunk file: %w", err)
	}
	defer f.Close()
	return Read(f, format)
}
