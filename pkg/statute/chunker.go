package statute

import (
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/coolbeans/lexchunk/pkg/pattern"
)

// ChunkerOptions configures a Chunker.
type ChunkerOptions struct {
	// KeepPreamble emits text before the first chapter heading as a
	// chapterless span instead of dropping it.
	KeepPreamble bool
	// Workers > 1 splits chapters concurrently.
	Workers int
	Logger  *slog.Logger
}

// Stats counts what a Chunk call produced.
type Stats struct {
	Chapters     int            `json:"chapters"`
	Sections     int            `json:"sections"`
	Chunks       int            `json:"chunks"`
	Duplicates   int            `json:"duplicates"`
	EmptyChunks  int            `json:"empty_chunks"`
	SectionKinds map[string]int `json:"section_kinds"`
	SectionTypes map[string]int `json:"section_types"`
}

// Result is the ordered chunk list plus its stats.
type Result struct {
	Chunks []Chunk
	Stats  Stats
}

// Chunker runs the full decomposition with one profile.
type Chunker struct {
	profile  *pattern.Profile
	compiled *pattern.CompiledProfile
	opts     ChunkerOptions
	logger   *slog.Logger
}

// NewChunker creates a Chunker for profile, compiling it if needed.
func NewChunker(profile *pattern.Profile, opts ChunkerOptions) (*Chunker, error) {
	if profile == nil {
		return nil, fmt.Errorf("profile is required")
	}
	if !profile.IsCompiled() {
		if err := profile.Compile(); err != nil {
			return nil, fmt.Errorf("compile profile %s: %w", profile.ProfileID, err)
		}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Chunker{
		profile:  profile,
		compiled: profile.Compiled(),
		opts:     opts,
		logger:   logger,
	}, nil
}

// Profile returns the profile the chunker was built with.
func (ch *Chunker) Profile() *pattern.Profile {
	return ch.profile
}

// Chunk decomposes one document into identified chunks.
func (ch *Chunker) Chunk(text string) *Result {
	result, _ := ch.ChunkWith(text, IDCounter{})
	return result
}

// ChunkWith is Chunk with an identifier counter carried over from earlier
// documents, so identifiers stay unique across all of them.
func (ch *Chunker) ChunkWith(text string, counter IDCounter) (*Result, IDCounter) {
	c := ch.compiled
	header := ExtractHeader(text, c)
	spans := ch.spans(text)

	perChapter := make([][]sectionUnits, len(spans))
	work := func(i int) {
		perChapter[i] = ch.splitChapter(spans[i].Body(text), spans[i].Chapter, header)
	}

	if ch.opts.Workers > 1 && len(spans) > 1 {
		var g errgroup.Group
		g.SetLimit(ch.opts.Workers)
		for i := range spans {
			g.Go(func() error {
				work(i)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i := range spans {
			work(i)
		}
	}

	stats := Stats{
		SectionKinds: make(map[string]int),
		SectionTypes: make(map[string]int),
	}
	for _, span := range spans {
		if span.Chapter != nil {
			stats.Chapters++
		}
	}

	var (
		bases   []string
		pending []pendingChunk
	)
	sectionIndex := 0
	for _, sections := range perChapter {
		for _, s := range sections {
			stats.Sections++
			stats.SectionKinds[string(s.kind)]++
			for _, u := range s.units {
				bases = append(bases, BaseIdentifier(u.meta, sectionIndex, u.clause.Index))
				pending = append(pending, u)
			}
			sectionIndex++
		}
	}

	ids, counter := AssignIdentifiers(bases, counter)

	chunks := make([]Chunk, len(pending))
	for i, u := range pending {
		if ids[i] != bases[i] {
			stats.Duplicates++
			ch.logger.Debug("duplicate identifier", "base", bases[i], "assigned", ids[i])
		}
		cleaned := Clean(u.clause.Text, c.Artifacts)
		if cleaned == "" {
			stats.EmptyChunks++
		}
		stats.SectionTypes[u.meta.SectionType()]++
		chunks[i] = Chunk{
			ID:             ids[i],
			Content:        u.clause.Text,
			CleanedContent: cleaned,
			Metadata:       u.meta,
		}
	}
	stats.Chunks = len(chunks)

	if stats.Duplicates > 0 {
		ch.logger.Warn("renamed duplicate identifiers", "count", stats.Duplicates)
	}
	if stats.EmptyChunks > 0 {
		ch.logger.Warn("chunks empty after cleaning", "count", stats.EmptyChunks)
	}
	ch.logger.Debug("chunked document",
		"profile", ch.profile.ProfileID,
		"chapters", stats.Chapters,
		"sections", stats.Sections,
		"chunks", stats.Chunks)

	return &Result{Chunks: chunks, Stats: stats}, counter
}

type pendingChunk struct {
	clause Clause
	meta   Metadata
}

type sectionUnits struct {
	kind  SectionKind
	units []pendingChunk
}

func (ch *Chunker) spans(text string) []ChapterSpan {
	spans := SegmentChapters(text, ch.compiled)
	if !ch.opts.KeepPreamble || spans[0].Chapter == nil || spans[0].Start == 0 {
		return spans
	}
	if strings.TrimSpace(text[:spans[0].Start]) == "" {
		return spans
	}
	preamble := ChapterSpan{Start: 0, BodyStart: 0, End: spans[0].Start}
	return append([]ChapterSpan{preamble}, spans...)
}

func (ch *Chunker) splitChapter(body string, chapter *ChapterInfo, header *HeaderInfo) []sectionUnits {
	sections := SplitSections(body, chapter, header, ch.compiled)
	out := make([]sectionUnits, 0, len(sections))
	for _, s := range sections {
		clauses := SplitClauses(s.Text, ch.compiled)
		units := make([]pendingChunk, 0, len(clauses))
		for _, cl := range clauses {
			meta := ExtractMetadata(cl.Text, s.Chapter, s.Header, cl.Article, ch.compiled)
			units = append(units, pendingChunk{clause: cl, meta: meta})
		}
		out = append(out, sectionUnits{kind: s.Kind, units: units})
	}
	return out
}
