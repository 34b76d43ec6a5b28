package domain

// Well-known metadata keys attached by loaders. The double-underscore keys
// are internal routing hints consumed during sync; they are stripped before
// chunk metadata is persisted.
const (
	// PathMetadata carries the resolved path or URL of a loaded document.
	PathMetadata = "__path__"

	// ExtensionMetadata carries the file-extension-like format hint used
	// to pick a separator table for splitting.
	ExtensionMetadata = "__extension__"

	// DefaultExtension is assumed when a loader provides no format hint.
	DefaultExtension = "txt"

	// LocMetadata carries the line range a chunk covers in its file,
	// formatted "first:last".
	LocMetadata = "loc"
)

// MetaEntry is a single metadata key/value pair.
type MetaEntry struct {
	Key   string
	Value string
}

// Metadata is an insertion-ordered list of string key/value pairs.
// Order is preserved through persistence so chunk headers and exported
// records render deterministically.
type Metadata []MetaEntry

// Get returns the value for key and whether it was present.
func (m Metadata) Get(key string) (string, bool) {
	for _, e := range m {
		if e.Key == key {
			return e.Value, true
		}
	}
	return "", false
}

// Set replaces the value for key, or appends a new entry if absent.
func (m Metadata) Set(key, value string) Metadata {
	for i, e := range m {
		if e.Key == key {
			m[i].Value = value
			return m
		}
	}
	return append(m, MetaEntry{Key: key, Value: value})
}

// Delete removes key and returns its value and whether it was present.
func (m *Metadata) Delete(key string) (string, bool) {
	for i, e := range *m {
		if e.Key == key {
			*m = append((*m)[:i], (*m)[i+1:]...)
			return e.Value, true
		}
	}
	return "", false
}

// Clone returns an independent copy of the metadata.
func (m Metadata) Clone() Metadata {
	if m == nil {
		return nil
	}
	out := make(Metadata, len(m))
	copy(out, m)
	return out
}

// RawDocument is loader output before splitting: the full text of one
// source plus its routing metadata.
type RawDocument struct {
	// Path is the resolved path or URL the content came from.
	Path string

	// Text is the raw textual content.
	Text string

	// Metadata carries loader hints, at minimum ExtensionMetadata.
	Metadata Metadata
}

// Chunk is a bounded-size slice of a source document, the atomic unit of
// indexing and retrieval. Chunks are produced only by the splitter and are
// immutable after creation.
type Chunk struct {
	// Text is the chunk content, prefixed with the document metadata
	// header so retrieved chunks are self-describing.
	Text string

	// Metadata always carries a "loc" line-range entry computed during
	// splitting.
	Metadata Metadata
}

// File is one ingested source: its content hash, origin path and the
// ordered chunks produced from it. Owned exclusively by the corpus and
// keyed by FileID.
type File struct {
	// Hash is the lowercase hex SHA-256 digest of the raw content,
	// used to detect unchanged sources during sync.
	Hash string

	// Path is the source path or URL.
	Path string

	// Chunks are the split documents in document order. A chunk's
	// position in this slice is the low half of its DocumentID.
	Chunks []Chunk
}
