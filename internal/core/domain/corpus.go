package domain

import "sort"

// Corpus is the complete indexed state of one document collection: the
// settings it was built with, every loaded file with its chunks, and the
// embedding vector of every chunk. It is the unit of persistence; the
// keyword and vector indices are derived from it and rebuilt on load.
//
// Corpus is not safe for concurrent mutation. The service layer guards
// it and swaps in a fresh instance after a successful sync.
type Corpus struct {
	// Settings the corpus was built with.
	Settings Settings

	// NextFileID is the identifier the next added file receives.
	// File identifiers are never reused.
	NextFileID FileID

	// DocumentPaths are the registered sources, in registration order:
	// local globs, URLs and loader protocol strings.
	DocumentPaths []string

	// Files holds every loaded file keyed by its identifier.
	Files map[FileID]*File

	// Vectors holds one embedding per chunk, keyed by document
	// identifier.
	Vectors map[DocumentID][]float32
}

// NewCorpus returns an empty corpus with the given settings.
func NewCorpus(settings Settings) *Corpus {
	return &Corpus{
		Settings: settings,
		Files:    make(map[FileID]*File),
		Vectors:  make(map[DocumentID][]float32),
	}
}

// FileIDs returns all file identifiers in ascending order. Iterating in
// this order keeps derived output (index rebuilds, listings, saves)
// deterministic.
func (c *Corpus) FileIDs() []FileID {
	ids := make([]FileID, 0, len(c.Files))
	for id := range c.Files {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// File returns the file with the given identifier.
func (c *Corpus) File(id FileID) (*File, bool) {
	f, ok := c.Files[id]
	return f, ok
}

// Document returns the chunk addressed by the given document identifier.
func (c *Corpus) Document(id DocumentID) (*Chunk, bool) {
	f, ok := c.Files[id.File()]
	if !ok {
		return nil, false
	}
	i := id.Chunk()
	if i < 0 || i >= len(f.Chunks) {
		return nil, false
	}
	return &f.Chunks[i], true
}

// DocumentIDs returns every chunk's identifier, ordered by file then
// chunk position.
func (c *Corpus) DocumentIDs() []DocumentID {
	ids := make([]DocumentID, 0, c.DocumentCount())
	for _, fileID := range c.FileIDs() {
		for i := range c.Files[fileID].Chunks {
			ids = append(ids, NewDocumentID(fileID, i))
		}
	}
	return ids
}

// FileCount returns the number of loaded files.
func (c *Corpus) FileCount() int {
	return len(c.Files)
}

// DocumentCount returns the total number of chunks across all files.
func (c *Corpus) DocumentCount() int {
	n := 0
	for _, f := range c.Files {
		n += len(f.Chunks)
	}
	return n
}

// AddFile stores a file and its per-chunk vectors under a fresh
// identifier and returns it. vectors must hold one embedding per chunk.
func (c *Corpus) AddFile(f *File, vectors [][]float32) FileID {
	id := c.NextFileID
	c.NextFileID++
	c.Files[id] = f
	for i, vec := range vectors {
		c.Vectors[NewDocumentID(id, i)] = vec
	}
	return id
}

// DeleteFiles removes the given files together with their chunk vectors.
// Unknown identifiers are ignored.
func (c *Corpus) DeleteFiles(ids []FileID) {
	for _, id := range ids {
		f, ok := c.Files[id]
		if !ok {
			continue
		}
		for i := range f.Chunks {
			delete(c.Vectors, NewDocumentID(id, i))
		}
		delete(c.Files, id)
	}
}

// FilesByHash groups file identifiers by content hash. Several files may
// share a hash when identical content was loaded from different paths.
func (c *Corpus) FilesByHash() map[string][]FileID {
	byHash := make(map[string][]FileID)
	for _, id := range c.FileIDs() {
		h := c.Files[id].Hash
		byHash[h] = append(byHash[h], id)
	}
	return byHash
}

// PathIndex maps each loaded file path to its identifier.
func (c *Corpus) PathIndex() map[string]FileID {
	byPath := make(map[string]FileID, len(c.Files))
	for _, id := range c.FileIDs() {
		byPath[c.Files[id].Path] = id
	}
	return byPath
}

// HasPath reports whether the given source is already registered.
func (c *Corpus) HasPath(path string) bool {
	for _, p := range c.DocumentPaths {
		if p == path {
			return true
		}
	}
	return false
}

// AddPath registers a source. It reports whether the source was new.
func (c *Corpus) AddPath(path string) bool {
	if c.HasPath(path) {
		return false
	}
	c.DocumentPaths = append(c.DocumentPaths, path)
	return true
}

// RemovePath deregisters a source. It reports whether the source was
// present. The files loaded from it remain until the next sync.
func (c *Corpus) RemovePath(path string) bool {
	for i, p := range c.DocumentPaths {
		if p == path {
			c.DocumentPaths = append(c.DocumentPaths[:i], c.DocumentPaths[i+1:]...)
			return true
		}
	}
	return false
}
