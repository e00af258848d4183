package corpus

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"
)

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, data, 0644))
}

func TestLoaderLoadJoinsInOrder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.txt"), []byte("둘째 법"))
	writeFile(t, filepath.Join(dir, "a.txt"), []byte("첫째 법"))
	writeFile(t, filepath.Join(dir, "notes.md"), []byte("ignored"))

	loader := &Loader{Dir: dir}
	c, err := loader.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "첫째 법\n\n둘째 법\n\n", c.Text)
	require.Len(t, c.Sources, 2)
	assert.Equal(t, filepath.Join(dir, "a.txt"), c.Sources[0].Path)
	assert.Equal(t, EncodingUTF8, c.Sources[0].Encoding)
	assert.Equal(t, len(c.Text), c.Bytes())
}

func TestLoaderRecursivePattern(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "top.txt"), []byte("top"))
	writeFile(t, filepath.Join(dir, "nested", "deep.txt"), []byte("deep"))

	flat, err := (&Loader{Dir: dir}).Files()
	require.NoError(t, err)
	assert.Len(t, flat, 1)

	all, err := (&Loader{Dir: dir, Pattern: "**/*.txt"}).Files()
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestLoaderCustomSeparator(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), []byte("A"))
	writeFile(t, filepath.Join(dir, "b.txt"), []byte("B"))

	c, err := (&Loader{Dir: dir, Separator: "\n"}).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "A\nB\n", c.Text)
}

func TestLoaderErrors(t *testing.T) {
	t.Run("missing directory", func(t *testing.T) {
		_, err := (&Loader{Dir: filepath.Join(t.TempDir(), "absent")}).Load(context.Background())
		assert.Error(t, err)
	})

	t.Run("no matching files", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "a.md"), []byte("x"))
		_, err := (&Loader{Dir: dir}).Load(context.Background())
		assert.ErrorContains(t, err, "no files match")
	})

	t.Run("bad encoding", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "a.txt"), []byte("x"))
		_, err := (&Loader{Dir: dir, Encoding: "latin-9"}).Load(context.Background())
		assert.ErrorContains(t, err, "unsupported encoding")
	})
}

func TestDecode(t *testing.T) {
	eucKR, _, err := transform.String(korean.EUCKR.NewEncoder(), "제1조(목적)")
	require.NoError(t, err)

	t.Run("auto detects utf-8", func(t *testing.T) {
		text, used, err := Decode([]byte("제1조(목적)"), EncodingAuto)
		require.NoError(t, err)
		assert.Equal(t, "제1조(목적)", text)
		assert.Equal(t, EncodingUTF8, used)
	})

	t.Run("auto falls back to euc-kr", func(t *testing.T) {
		text, used, err := Decode([]byte(eucKR), EncodingAuto)
		require.NoError(t, err)
		assert.Equal(t, "제1조(목적)", text)
		assert.Equal(t, EncodingEUCKR, used)
	})

	t.Run("explicit utf-8 rejects euc-kr bytes", func(t *testing.T) {
		_, _, err := Decode([]byte(eucKR), EncodingUTF8)
		assert.Error(t, err)
	})

	t.Run("strips byte order mark", func(t *testing.T) {
		text, _, err := Decode(append([]byte{0xEF, 0xBB, 0xBF}, "법"...), EncodingUTF8)
		require.NoError(t, err)
		assert.Equal(t, "법", text)
	})
}

func TestCorpusWriteRaw(t *testing.T) {
	path := filepath.Join(t.TempDir(), "intermediate", "raw_text.txt")
	c := &Corpus{Text: "본문\n\n"}

	require.NoError(t, c.WriteRaw(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "본문\n\n", string(data))
}
