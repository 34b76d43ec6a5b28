// Package splitter divides text into size-bounded, overlap-preserving
// chunks by recursively descending a prioritised separator table.
package splitter

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/custodia-labs/ragdex/internal/core/domain"
)

// DefaultChunkSize is the default maximum chunk length in bytes.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default overlap carried between chunks.
const DefaultChunkOverlap = 20

// LengthFunc measures a piece of text. The default counts bytes.
type LengthFunc func(text string) int

// Splitter turns long text into chunks no longer than its chunk size,
// preferring to break at the coarsest separator that occurs in the text.
type Splitter struct {
	chunkSize    int
	chunkOverlap int
	separators   []string
	length       LengthFunc
}

// Option configures a Splitter.
type Option func(*Splitter)

// WithChunkSize sets the maximum chunk length.
func WithChunkSize(size int) Option {
	return func(s *Splitter) {
		if size > 0 {
			s.chunkSize = size
		}
	}
}

// WithChunkOverlap sets the overlap carried between adjacent chunks.
func WithChunkOverlap(overlap int) Option {
	return func(s *Splitter) {
		if overlap >= 0 {
			s.chunkOverlap = overlap
		}
	}
}

// WithSeparators sets the separator priority table.
func WithSeparators(separators []string) Option {
	return func(s *Splitter) {
		if len(separators) > 0 {
			s.separators = separators
		}
	}
}

// WithLengthFunc replaces the byte-count length function.
func WithLengthFunc(fn LengthFunc) Option {
	return func(s *Splitter) {
		if fn != nil {
			s.length = fn
		}
	}
}

// New creates a splitter with the given options.
func New(opts ...Option) *Splitter {
	s := &Splitter{
		chunkSize:    DefaultChunkSize,
		chunkOverlap: DefaultChunkOverlap,
		separators:   DefaultSeparators,
		length:       func(text string) int { return len(text) },
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// HeaderOptions control the per-chunk prefix added by CreateChunks.
type HeaderOptions struct {
	// ChunkHeader is prepended to every chunk.
	ChunkHeader string

	// ChunkOverlapHeader is additionally prepended to every chunk after
	// the first when AppendOverlapHeader is set.
	ChunkOverlapHeader string

	// AppendOverlapHeader enables the continuation marker.
	AppendOverlapHeader bool
}

// DefaultHeaderOptions returns empty headers with the standard
// continuation marker.
func DefaultHeaderOptions() HeaderOptions {
	return HeaderOptions{ChunkOverlapHeader: "(cont'd) "}
}

// SplitText splits text into chunks. Separators that contain any
// non-whitespace character are kept and re-attached to the front of the
// piece that follows them; purely-whitespace separators are dropped and
// re-inserted as joiners during merging.
func (s *Splitter) SplitText(text string) []string {
	keepSeparator := false
	for _, sep := range s.separators {
		if hasNonSpace(sep) {
			keepSeparator = true
			break
		}
	}
	return s.splitText(text, s.separators, keepSeparator)
}

// CreateChunks splits each text and wraps the pieces as domain chunks.
// Each chunk's metadata is a copy of the matching entry in metadatas plus
// a line-range "loc" entry locating the chunk within its text. The header
// prefix is excluded from line accounting.
func (s *Splitter) CreateChunks(texts []string, metadatas []domain.Metadata, header HeaderOptions) []domain.Chunk {
	var chunks []domain.Chunk
	for i, text := range texts {
		lineCounter := 1
		prevChunk := ""
		havePrev := false
		indexPrev := 0

		for _, chunk := range s.SplitText(text) {
			content := header.ChunkHeader

			// Locate this chunk in the source, searching forward from
			// just past the previous chunk's start. Overlapping chunks
			// restart before the previous end, so the line counter may
			// move backwards.
			from := 0
			if havePrev {
				from = indexPrev + 1
			}
			indexChunk := 0
			if from <= len(text) {
				if found := strings.Index(text[from:], chunk); found >= 0 {
					indexChunk = found + from
				}
			}

			if !havePrev {
				lineCounter += countNewlines(text[:indexChunk])
			} else {
				indexEndPrev := indexPrev + s.length(prevChunk)
				switch {
				case indexEndPrev < indexChunk:
					lineCounter += countNewlines(text[indexEndPrev:indexChunk])
				case indexEndPrev > indexChunk:
					back := countNewlines(text[indexChunk:indexEndPrev])
					if back > lineCounter {
						lineCounter = 0
					} else {
						lineCounter -= back
					}
				}
				if header.AppendOverlapHeader {
					content += header.ChunkOverlapHeader
				}
			}

			newlines := countNewlines(chunk)

			var meta domain.Metadata
			if i < len(metadatas) {
				meta = metadatas[i].Clone()
			}
			meta = meta.Set(domain.LocMetadata, fmt.Sprintf("%d:%d", lineCounter, lineCounter+newlines))
			content += chunk
			chunks = append(chunks, domain.Chunk{Text: content, Metadata: meta})

			lineCounter += newlines
			prevChunk = chunk
			havePrev = true
			indexPrev = indexChunk
		}
	}
	return chunks
}

func (s *Splitter) splitText(text string, separators []string, keepSeparator bool) []string {
	var finalChunks []string

	// Pick the first separator that occurs in the text; everything after
	// it in the table becomes the narrower set for oversized pieces. The
	// empty separator always matches and ends the descent.
	separator := ""
	if len(separators) > 0 {
		separator = separators[len(separators)-1]
	}
	var narrower []string
	for i, sep := range separators {
		if sep == "" {
			separator = sep
			break
		}
		if strings.Contains(text, sep) {
			separator = sep
			narrower = separators[i+1:]
			break
		}
	}

	splits := splitOnSeparator(text, separator, keepSeparator)

	// Kept separators already sit inside the pieces, so merging joins
	// with nothing; dropped separators are re-inserted.
	joiner := separator
	if keepSeparator {
		joiner = ""
	}

	var goodSplits []string
	for _, piece := range splits {
		if s.length(piece) < s.chunkSize {
			goodSplits = append(goodSplits, piece)
			continue
		}
		if len(goodSplits) > 0 {
			finalChunks = append(finalChunks, s.mergeSplits(goodSplits, joiner)...)
			goodSplits = nil
		}
		if len(narrower) == 0 {
			finalChunks = append(finalChunks, piece)
		} else {
			finalChunks = append(finalChunks, s.splitText(piece, narrower, keepSeparator)...)
		}
	}
	if len(goodSplits) > 0 {
		finalChunks = append(finalChunks, s.mergeSplits(goodSplits, joiner)...)
	}
	return finalChunks
}

// mergeSplits greedily packs pieces into chunks of at most chunkSize,
// then drops pieces from the front of the window until at most
// chunkOverlap remains to seed the next chunk.
func (s *Splitter) mergeSplits(splits []string, separator string) []string {
	var docs []string
	var current []string
	total := 0
	for _, piece := range splits {
		pieceLen := s.length(piece)
		if total+pieceLen+len(current)*len(separator) > s.chunkSize {
			if len(current) > 0 {
				if doc, ok := joinDocs(current, separator); ok {
					docs = append(docs, doc)
				}
				for total > s.chunkOverlap ||
					(total+pieceLen+len(current)*len(separator) > s.chunkSize && total > 0) {
					total -= s.length(current[0])
					current = current[1:]
				}
			}
		}
		current = append(current, piece)
		total += pieceLen
	}
	if doc, ok := joinDocs(current, separator); ok {
		docs = append(docs, doc)
	}
	return docs
}

func joinDocs(docs []string, separator string) (string, bool) {
	text := strings.TrimSpace(strings.Join(docs, separator))
	if text == "" {
		return "", false
	}
	return text, true
}

// splitOnSeparator cuts text at every separator occurrence. In keep mode
// each piece after the first starts with the separator that preceded it.
// The empty separator splits into single runes. Empty pieces are dropped.
func splitOnSeparator(text, separator string, keepSeparator bool) []string {
	var splits []string
	switch {
	case separator == "":
		splits = strings.Split(text, "")
	case keepSeparator:
		sepLen := len(separator)
		prev := 0
		for {
			idx := strings.Index(text[prev:], separator)
			if idx < 0 {
				break
			}
			splits = append(splits, text[max(prev-sepLen, 0):prev+idx])
			prev += idx + sepLen
		}
		if prev < len(text) {
			splits = append(splits, text[max(prev-sepLen, 0):])
		}
	default:
		splits = strings.Split(text, separator)
	}

	filtered := splits[:0]
	for _, piece := range splits {
		if piece != "" {
			filtered = append(filtered, piece)
		}
	}
	return filtered
}

func hasNonSpace(s string) bool {
	for _, r := range s {
		if !unicode.IsSpace(r) {
			return true
		}
	}
	return false
}

func countNewlines(s string) int {
	return strings.Count(s, "\n")
}
