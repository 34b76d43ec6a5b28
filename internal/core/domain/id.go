package domain

// FileID identifies one ingested source (a file, a URL, or a loader path).
// IDs are assigned from a forward counter and are never reused within the
// lifetime of a corpus, so deleting a file cannot invalidate another file's
// chunk identifiers.
type FileID uint32

// DocumentID is the packed identifier for a single chunk. The file id
// occupies the upper 32 bits and the intra-file chunk index the lower
// 32 bits. It is the primary key shared by the keyword index, the vector
// index and the corpus vector map.
type DocumentID uint64

// chunkIndexMask extracts the low half of a DocumentID.
const chunkIndexMask = 1<<32 - 1

// NewDocumentID packs a file id and a chunk index into one DocumentID.
// The chunk index must fit in 32 bits; realistic corpora stay far below
// that bound, so the index is masked rather than validated.
func NewDocumentID(file FileID, chunk int) DocumentID {
	return DocumentID(uint64(file)<<32 | uint64(uint32(chunk)))
}

// File returns the file id encoded in the upper half of the identifier.
func (id DocumentID) File() FileID {
	return FileID(id >> 32)
}

// Chunk returns the intra-file chunk index encoded in the lower half.
func (id DocumentID) Chunk() int {
	return int(id & chunkIndexMask)
}
