// Package yamlstore persists the corpus as a single YAML document.
// Embedding vectors are encoded as base64 runs of little-endian float32
// values; chunk metadata keeps its insertion order through the round trip.
package yamlstore

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/ragdex/internal/core/domain"
	"github.com/custodia-labs/ragdex/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.DataStore = (*Store)(nil)

// Store is a file-based implementation of driven.DataStore using YAML.
// The whole corpus is written on every save; there is no partial update.
type Store struct {
	mu       sync.Mutex
	filePath string
}

// New creates a YAML corpus store backed by the given file path. The
// file and its parent directory are created on the first save.
func New(filePath string) *Store {
	return &Store{filePath: filePath}
}

// Load reads and decodes the persisted corpus.
func (s *Store) Load(ctx context.Context) (*domain.Corpus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no corpus at '%s': %w", s.filePath, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load corpus from '%s': %w", s.filePath, err)
	}

	var doc corpusDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode corpus from '%s': %w", s.filePath, err)
	}

	corpus, err := doc.toDomain()
	if err != nil {
		return nil, fmt.Errorf("corpus at '%s' is corrupt: %w", s.filePath, err)
	}
	return corpus, nil
}

// Save encodes the corpus and atomically replaces the store file.
func (s *Store) Save(ctx context.Context, corpus *domain.Corpus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := yaml.Marshal(newCorpusDoc(corpus))
	if err != nil {
		return fmt.Errorf("failed to encode corpus: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.filePath), 0700); err != nil {
		return err
	}

	if err := s.writeAtomic(data); err != nil {
		return fmt.Errorf("failed to save corpus to '%s': %w", s.filePath, err)
	}
	return nil
}

// writeAtomic writes data to a temp file in the target directory and
// renames it over the store file, so readers never observe a partial
// document (caller must hold the lock).
func (s *Store) writeAtomic(data []byte) error {
	dir := filepath.Dir(s.filePath)
	base := filepath.Base(s.filePath)

	tmp, err := os.CreateTemp(dir, base+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmpName, s.filePath)
}

// Exists reports whether a persisted corpus is present.
func (s *Store) Exists() bool {
	_, err := os.Stat(s.filePath)
	return err == nil
}

// Path returns the store file path.
func (s *Store) Path() string {
	return s.filePath
}

// corpusDoc is the on-disk document schema. Key names are part of the
// stored format and must not change.
type corpusDoc struct {
	EmbeddingModel string             `yaml:"embedding_model"`
	ChunkSize      int                `yaml:"chunk_size"`
	ChunkOverlap   int                `yaml:"chunk_overlap"`
	RerankerModel  *string            `yaml:"reranker_model"`
	TopK           int                `yaml:"top_k"`
	BatchSize      *int               `yaml:"batch_size"`
	NextFileID     uint32             `yaml:"next_file_id"`
	DocumentPaths  []string           `yaml:"document_paths"`
	Files          map[uint32]fileDoc `yaml:"files"`
	Vectors        map[uint64]string  `yaml:"vectors"`
}

type fileDoc struct {
	Hash      string     `yaml:"hash"`
	Path      string     `yaml:"path"`
	Documents []chunkDoc `yaml:"documents"`
}

type chunkDoc struct {
	PageContent string      `yaml:"page_content"`
	Metadata    metadataDoc `yaml:"metadata"`
}

// metadataDoc serializes chunk metadata as a YAML mapping that preserves
// entry order, which plain Go maps cannot guarantee.
type metadataDoc domain.Metadata

// MarshalYAML implements yaml.Marshaler.
func (m metadataDoc) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, entry := range m {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: entry.Key},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: entry.Value},
		)
	}
	return node, nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (m *metadataDoc) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("metadata must be a mapping, got %s", node.Tag)
	}
	entries := make(metadataDoc, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		entries = append(entries, domain.MetaEntry{
			Key:   node.Content[i].Value,
			Value: node.Content[i+1].Value,
		})
	}
	*m = entries
	return nil
}

// newCorpusDoc converts a corpus into its document form.
func newCorpusDoc(corpus *domain.Corpus) corpusDoc {
	doc := corpusDoc{
		EmbeddingModel: corpus.Settings.EmbeddingModel,
		ChunkSize:      corpus.Settings.ChunkSize,
		ChunkOverlap:   corpus.Settings.ChunkOverlap,
		TopK:           corpus.Settings.TopK,
		NextFileID:     uint32(corpus.NextFileID),
		DocumentPaths:  corpus.DocumentPaths,
		Files:          make(map[uint32]fileDoc, len(corpus.Files)),
		Vectors:        make(map[uint64]string, len(corpus.Vectors)),
	}

	// Optional settings persist as null when unset.
	if corpus.Settings.RerankerModel != "" {
		model := corpus.Settings.RerankerModel
		doc.RerankerModel = &model
	}
	if corpus.Settings.BatchSize != 0 {
		size := corpus.Settings.BatchSize
		doc.BatchSize = &size
	}

	for id, file := range corpus.Files {
		documents := make([]chunkDoc, 0, len(file.Chunks))
		for _, chunk := range file.Chunks {
			documents = append(documents, chunkDoc{
				PageContent: chunk.Text,
				Metadata:    metadataDoc(chunk.Metadata),
			})
		}
		doc.Files[uint32(id)] = fileDoc{
			Hash:      file.Hash,
			Path:      file.Path,
			Documents: documents,
		}
	}

	for id, vector := range corpus.Vectors {
		doc.Vectors[uint64(id)] = encodeVector(vector)
	}

	return doc
}

// toDomain converts the document form back into a corpus.
func (d corpusDoc) toDomain() (*domain.Corpus, error) {
	corpus := domain.NewCorpus(domain.Settings{
		EmbeddingModel: d.EmbeddingModel,
		ChunkSize:      d.ChunkSize,
		ChunkOverlap:   d.ChunkOverlap,
		TopK:           d.TopK,
	})
	if d.RerankerModel != nil {
		corpus.Settings.RerankerModel = *d.RerankerModel
	}
	if d.BatchSize != nil {
		corpus.Settings.BatchSize = *d.BatchSize
	}
	corpus.NextFileID = domain.FileID(d.NextFileID)
	corpus.DocumentPaths = d.DocumentPaths

	for id, file := range d.Files {
		chunks := make([]domain.Chunk, 0, len(file.Documents))
		for _, document := range file.Documents {
			chunks = append(chunks, domain.Chunk{
				Text:     document.PageContent,
				Metadata: domain.Metadata(document.Metadata),
			})
		}
		corpus.Files[domain.FileID(id)] = &domain.File{
			Hash:   file.Hash,
			Path:   file.Path,
			Chunks: chunks,
		}
	}

	for id, encoded := range d.Vectors {
		vector, err := decodeVector(encoded)
		if err != nil {
			return nil, fmt.Errorf("invalid vector for chunk %d: %w", id, err)
		}
		corpus.Vectors[domain.DocumentID(id)] = vector
	}

	return corpus, nil
}

// encodeVector packs an embedding as base64 over little-endian float32
// bytes, which is far more compact in YAML than a float sequence.
func encodeVector(vector []float32) string {
	buf := make([]byte, 4*len(vector))
	for i, v := range vector {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return base64.StdEncoding.EncodeToString(buf)
}

// decodeVector is the inverse of encodeVector.
func decodeVector(encoded string) ([]float32, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, err
	}
	if len(raw)%4 != 0 {
		return nil, fmt.Errorf("embedding byte length %d is not a multiple of 4", len(raw))
	}

	vector := make([]float32, len(raw)/4)
	for i := range vector {
		vector[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	return vector, nil
}
