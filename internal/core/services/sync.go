package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/ragdex/internal/core/domain"
	"github.com/custodia-labs/ragdex/internal/logger"
	"github.com/custodia-labs/ragdex/internal/splitter"
)

// Sync loads every registered source, re-chunks and re-embeds whatever
// changed, and persists the result.
//
//nolint:gocyclo // Orchestration function with necessary sequential steps
func (r *Rag) Sync(ctx context.Context, opts domain.SyncOptions) (*domain.SyncReport, error) {
	if !r.syncing.CompareAndSwap(false, true) {
		return nil, domain.ErrSyncInProgress
	}
	defer r.syncing.Store(false)

	start := time.Now()
	runID := uuid.NewString()
	logger.Section("Sync Documents")
	logger.Debug("Sync %s: refresh=%t", runID, opts.Refresh)

	// 1. Snapshot the state the diff runs against. Only a sync mutates
	// files, and syncs are serialised, so the snapshot stays valid until
	// the mutation below.
	r.mu.RLock()
	settings := r.corpus.Settings
	paths := append([]string(nil), r.corpus.DocumentPaths...)
	fileIDs := r.corpus.FileIDs()
	idPath := make(map[domain.FileID]string, len(fileIDs))
	idHash := make(map[domain.FileID]string, len(fileIDs))
	for _, id := range fileIDs {
		f, _ := r.corpus.File(id)
		idPath[id] = f.Path
		idHash[id] = f.Hash
	}
	r.mu.RUnlock()

	// 2. Resolve sources into loadable units; expansion failures are
	// collected alongside load failures.
	resolved, errs := r.loader.Resolve(ctx, paths)
	logger.Debug("Resolved %d source(s) into %d unit(s)", len(paths), len(resolved))

	// 3. Load each unit sequentially, in resolution order.
	raws := make([]domain.RawDocument, 0, len(resolved))
	for i, src := range resolved {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrAborted, err)
		}
		reportProgress(opts.Progress, fmt.Sprintf("Load %s [%d/%d]", src.Path, i+1, len(resolved)))
		docs, err := r.loader.Load(ctx, src)
		if err != nil {
			logger.Warn("Load %s: %v", src.Path, err)
			errs = append(errs, fmt.Errorf("load %s: %w", src.Path, err))
			continue
		}
		raws = append(raws, docs...)
	}

	// 4. Compute the deletion candidate set. A refresh puts every stored
	// file up for re-evaluation; otherwise only files whose path vanished
	// from the loaded set are candidates, with changed files added below.
	deletions := make(map[domain.FileID]bool)
	if opts.Refresh {
		for _, id := range fileIDs {
			deletions[id] = true
		}
	} else {
		loaded := make(map[string]bool, len(raws))
		for _, raw := range raws {
			loaded[raw.Path] = true
		}
		for _, id := range fileIDs {
			if !loaded[idPath[id]] {
				deletions[id] = true
			}
		}
	}

	// 5. Diff by content hash. A stored file with the same hash and the
	// same path is rescued: it keeps its identifier and vectors. Anything
	// else is split into fresh chunks.
	idsByHash := make(map[string][]domain.FileID, len(idHash))
	for _, id := range fileIDs {
		idsByHash[idHash[id]] = append(idsByHash[idHash[id]], id)
	}
	idByPath := make(map[string]domain.FileID, len(idPath))
	for _, id := range fileIDs {
		idByPath[idPath[id]] = id
	}

	unchanged := 0
	var newFiles []*domain.File
	for _, raw := range raws {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrAborted, err)
		}
		if raw.Path == "" {
			continue
		}

		hash := contentHash(raw.Text)
		if opts.Refresh {
			if id, ok := rescueCandidate(idsByHash[hash], idPath, raw.Path, deletions); ok {
				delete(deletions, id)
				unchanged++
				continue
			}
		} else if id, ok := idByPath[raw.Path]; ok {
			if idHash[id] == hash {
				unchanged++
				continue
			}
			deletions[id] = true
		}

		chunks := splitDocument(raw, settings)
		newFiles = append(newFiles, &domain.File{Hash: hash, Path: raw.Path, Chunks: chunks})
	}

	// 6. Gate on load errors before anything is embedded or mutated.
	if len(errs) > 0 {
		logger.Warn("%d source(s) failed to load", len(errs))
		if opts.OnLoadErrors == nil || !opts.OnLoadErrors(errs) {
			return nil, fmt.Errorf("%w: %w", domain.ErrAborted, errors.Join(errs...))
		}
	}

	// 7. Embed every new chunk, batched and in order.
	var texts []string
	for _, f := range newFiles {
		for _, c := range f.Chunks {
			texts = append(texts, c.Text)
		}
	}
	vectors, err := r.embedAll(ctx, texts, settings, opts.Progress)
	if err != nil {
		return nil, err
	}

	// 8. Mutate, rebuild both indices and save, atomically with respect
	// to searches.
	delIDs := make([]domain.FileID, 0, len(deletions))
	for id := range deletions {
		delIDs = append(delIDs, id)
	}
	sort.Slice(delIDs, func(i, j int) bool { return delIDs[i] < delIDs[j] })

	// Refuse an empty post-sync corpus before anything is touched. The
	// snapshot stays valid here because syncs are serialised.
	if len(fileIDs)-len(delIDs)+len(newFiles) == 0 {
		return nil, domain.ErrNoDocuments
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.corpus.DeleteFiles(delIDs)
	vi := 0
	for _, f := range newFiles {
		n := len(f.Chunks)
		r.corpus.AddFile(f, vectors[vi:vi+n])
		vi += n
	}
	r.corpus.DocumentPaths = paths

	reportProgress(opts.Progress, "Building index")
	if err := r.rebuildIndices(ctx); err != nil {
		return nil, err
	}
	if err := r.store.Save(ctx, r.corpus); err != nil {
		return nil, fmt.Errorf("save corpus: %w", err)
	}

	report := &domain.SyncReport{
		RunID:     runID,
		Added:     len(newFiles),
		Deleted:   len(delIDs),
		Unchanged: unchanged,
		Chunks:    r.corpus.DocumentCount(),
		Duration:  time.Since(start),
	}
	logger.Info("Sync complete: %d added, %d deleted, %d unchanged, %d chunks",
		report.Added, report.Deleted, report.Unchanged, report.Chunks)
	return report, nil
}

// embedAll embeds texts in order, batch by batch. Batch size follows the
// corpus settings capped by the model's input window.
func (r *Rag) embedAll(ctx context.Context, texts []string, settings domain.Settings, progress func(string)) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	batch := settings.EmbedBatchSize(r.embedding.DefaultBatchSize(), r.embedding.MaxInputTokens())
	total := (len(texts) + batch - 1) / batch
	logger.Debug("Embedding %d chunk(s) in %d batch(es) of up to %d", len(texts), total, batch)

	out := make([][]float32, 0, len(texts))
	for i := 0; i < len(texts); i += batch {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrAborted, err)
		}
		end := i + batch
		if end > len(texts) {
			end = len(texts)
		}
		reportProgress(progress, fmt.Sprintf("Creating embeddings [%d/%d]", i/batch+1, total))

		vecs, err := r.embedWithRetry(ctx, texts[i:end])
		if err != nil {
			return nil, err
		}
		out = append(out, vecs...)
	}
	return out, nil
}

// embedWithRetry embeds one batch, retrying transient failures with
// exponential backoff before giving up.
func (r *Rag) embedWithRetry(ctx context.Context, texts []string) ([][]float32, error) {
	var lastErr error
	for attempt := 1; attempt <= r.retryLimit; attempt++ {
		vecs, err := r.embedding.Embed(ctx, texts, false)
		if err == nil {
			if len(vecs) != len(texts) {
				return nil, fmt.Errorf("%w: got %d vectors for %d texts", domain.ErrEmbeddingFailed, len(vecs), len(texts))
			}
			return vecs, nil
		}
		lastErr = err
		if attempt < r.retryLimit {
			backoff := time.Duration(1<<(attempt-1)) * r.backoffUnit
			logger.Debug("Embedding attempt %d failed, retrying in %s: %v", attempt, backoff, err)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", domain.ErrAborted, ctx.Err())
			}
		}
	}
	return nil, fmt.Errorf("%w after %d attempts: %w", domain.ErrEmbeddingFailed, r.retryLimit, lastErr)
}

// rescueCandidate picks the deletion candidate matching the loaded path
// among the files sharing its content hash.
func rescueCandidate(ids []domain.FileID, idPath map[domain.FileID]string, path string, deletions map[domain.FileID]bool) (domain.FileID, bool) {
	for _, id := range ids {
		if deletions[id] && idPath[id] == path {
			return id, true
		}
	}
	return 0, false
}

// splitDocument splits one loaded document into chunks with the
// extension-appropriate separator table. Loader routing metadata is
// stripped; whatever remains is rendered into the chunk header.
func splitDocument(raw domain.RawDocument, settings domain.Settings) []domain.Chunk {
	meta := raw.Metadata.Clone()
	meta.Delete(domain.PathMetadata)
	ext, ok := meta.Delete(domain.ExtensionMetadata)
	if !ok || ext == "" {
		ext = domain.DefaultExtension
	}

	sp := splitter.New(
		splitter.WithChunkSize(settings.ChunkSize),
		splitter.WithChunkOverlap(settings.ChunkOverlap),
		splitter.WithSeparators(splitter.ForExtension(ext)),
	)
	header := splitter.DefaultHeaderOptions()
	header.ChunkHeader = metadataHeader(raw.Path, meta)
	return sp.CreateChunks([]string{raw.Text}, []domain.Metadata{nil}, header)
}

// metadataHeader renders the self-describing prefix carried by every
// chunk of a document.
func metadataHeader(path string, meta domain.Metadata) string {
	var b strings.Builder
	b.WriteString("<document_metadata>\npath: ")
	b.WriteString(path)
	b.WriteByte('\n')
	for _, e := range meta {
		b.WriteString(e.Key)
		b.WriteString(": ")
		b.WriteString(e.Value)
		b.WriteByte('\n')
	}
	b.WriteString("</document_metadata>\n\n")
	return b.String()
}

// contentHash returns the lowercase hex SHA-256 digest of text.
func contentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

func reportProgress(fn func(string), line string) {
	if fn != nil {
		fn(line)
	}
}
