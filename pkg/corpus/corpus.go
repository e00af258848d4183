// Package corpus loads raw statute text files and joins them into the single
// document the chunker consumes.
package corpus

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/avast/retry-go/v4"
	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"
)

// Supported encodings.
const (
	EncodingUTF8  = "utf-8"
	EncodingEUCKR = "euc-kr"
	EncodingAuto  = "auto"
)

// Defaults applied by Load when a Loader field is left empty.
const (
	DefaultPattern   = "*.txt"
	DefaultSeparator = "\n\n"
	DefaultAttempts  = 3
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Source describes one input file.
type Source struct {
	Path     string `json:"path"`
	Size     int64  `json:"size"`
	Encoding string `json:"encoding"`
}

// Corpus is the concatenated input text.
type Corpus struct {
	Text    string   `json:"-"`
	Sources []Source `json:"sources"`
}

// Loader reads every file under Dir matching Pattern.
type Loader struct {
	Dir string
	// Pattern is a doublestar glob relative to Dir ("*.txt", "**/*.txt").
	Pattern string
	// Encoding is utf-8, euc-kr or auto.
	Encoding string
	// Separator is appended after each file.
	Separator string
	// Attempts bounds retries of a failed read.
	Attempts uint
	Logger   *slog.Logger
}

// Load reads, decodes and joins the matching files in lexical path order.
func (l *Loader) Load(ctx context.Context) (*Corpus, error) {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}

	encoding := strings.ToLower(l.Encoding)
	if encoding == "" {
		encoding = EncodingAuto
	}
	if !ValidEncoding(encoding) {
		return nil, fmt.Errorf("unsupported encoding %q", l.Encoding)
	}

	paths, err := l.Files()
	if err != nil {
		return nil, err
	}

	separator := l.Separator
	if separator == "" {
		separator = DefaultSeparator
	}

	var (
		buf     strings.Builder
		sources = make([]Source, 0, len(paths))
	)
	for _, path := range paths {
		data, err := l.read(ctx, path)
		if err != nil {
			return nil, err
		}

		text, used, err := Decode(data, encoding)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
		logger.Debug("loaded input file", "path", path, "bytes", len(data), "encoding", used)

		buf.WriteString(text)
		buf.WriteString(separator)
		sources = append(sources, Source{Path: path, Size: int64(len(data)), Encoding: used})
	}

	logger.Info("loaded corpus", "files", len(sources), "bytes", buf.Len())
	return &Corpus{Text: buf.String(), Sources: sources}, nil
}

// Files returns the sorted input paths.
func (l *Loader) Files() ([]string, error) {
	info, err := os.Stat(l.Dir)
	if err != nil {
		return nil, fmt.Errorf("input directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("input path is not a directory: %s", l.Dir)
	}

	pattern := l.Pattern
	if pattern == "" {
		pattern = DefaultPattern
	}

	matches, err := doublestar.FilepathGlob(filepath.Join(l.Dir, pattern))
	if err != nil {
		return nil, fmt.Errorf("glob error: %w", err)
	}

	files := matches[:0]
	for _, match := range matches {
		fi, err := os.Stat(match)
		if err != nil || fi.IsDir() {
			continue
		}
		files = append(files, match)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no files match %s in %s", pattern, l.Dir)
	}

	sort.Strings(files)
	return files, nil
}

func (l *Loader) read(ctx context.Context, path string) ([]byte, error) {
	attempts := l.Attempts
	if attempts == 0 {
		attempts = DefaultAttempts
	}

	var data []byte
	err := retry.Do(
		func() error {
			var err error
			data, err = os.ReadFile(path)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(100*time.Millisecond),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return !errors.Is(err, fs.ErrNotExist) && !errors.Is(err, fs.ErrPermission)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// ValidEncoding reports whether name is a supported encoding.
func ValidEncoding(name string) bool {
	switch strings.ToLower(name) {
	case EncodingUTF8, EncodingEUCKR, EncodingAuto:
		return true
	}
	return false
}

// Decode converts data to a UTF-8 string and reports the encoding used.
// "auto" picks UTF-8 when the bytes are valid UTF-8 and EUC-KR otherwise.
// A leading UTF-8 byte order mark is dropped.
func Decode(data []byte, encoding string) (string, string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	switch strings.ToLower(encoding) {
	case EncodingAuto, "":
		if utf8.Valid(data) {
			return string(data), EncodingUTF8, nil
		}
		return decodeEUCKR(data)
	case EncodingUTF8:
		if !utf8.Valid(data) {
			return "", "", fmt.Errorf("input is not valid UTF-8")
		}
		return string(data), EncodingUTF8, nil
	case EncodingEUCKR:
		return decodeEUCKR(data)
	}
	return "", "", fmt.Errorf("unsupported encoding %q", encoding)
}

func decodeEUCKR(data []byte) (string, string, error) {
	out, _, err := transform.Bytes(korean.EUCKR.NewDecoder(), data)
	if err != nil {
		return "", "", err
	}
	return string(out), EncodingEUCKR, nil
}

// WriteRaw writes the concatenated text, creating parent directories.
func (c *Corpus) WriteRaw(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(c.Text), 0644); err != nil {
		return fmt.Errorf("write raw text: %w", err)
	}
	return nil
}

// Bytes is the size of the concatenated text.
func (c *Corpus) Bytes() int {
	return len(c.Text)
}
