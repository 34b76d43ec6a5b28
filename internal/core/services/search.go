package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/ragdex/internal/core/domain"
	"github.com/custodia-labs/ragdex/internal/logger"
	"github.com/custodia-labs/ragdex/internal/splitter"
)

// Rank fusion parameters. The vector list gets a slight edge so semantic
// matches win ties against exact-term matches.
const (
	vectorFusionWeight  = 1.125
	keywordFusionWeight = 1.0
)

// scoredID is one ranked chunk before hydration.
type scoredID struct {
	id    domain.DocumentID
	score float64
}

// Search runs a hybrid query against the synced corpus: keyword and
// vector searches in parallel, fused by reciprocal rank fusion or
// reordered by the configured reranker.
func (r *Rag) Search(ctx context.Context, query string, opts domain.SearchOptions) (*domain.SearchOutput, error) {
	logger.Section("Search Execution")
	logger.Debug("Query: %q", query)

	query = strings.TrimSpace(query)
	if query == "" {
		logger.Debug("Empty query, returning no results")
		return &domain.SearchOutput{}, nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.corpus.FileCount() == 0 {
		return nil, domain.ErrNoDocuments
	}

	settings := r.corpus.Settings
	topK := opts.TopK
	if topK <= 0 {
		topK = settings.TopK
	}
	rerankModel := opts.RerankModel
	if rerankModel == "" {
		rerankModel = settings.RerankerModel
	}
	logger.Debug("TopK: %d, reranker: %q", topK, rerankModel)

	// Keyword and vector searches run in parallel; either failure fails
	// the whole search.
	var keywordIDs, vectorIDs []domain.DocumentID
	var keywordErr, vectorErr error

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		keywordIDs, keywordErr = r.keywordSearch(ctx, query, topK, opts.MinKeywordScore)
	}()
	go func() {
		defer wg.Done()
		vectorIDs, vectorErr = r.vectorSearch(ctx, query, settings, topK, opts.MinVectorScore)
	}()
	wg.Wait()

	if keywordErr != nil {
		return nil, fmt.Errorf("keyword search: %w", keywordErr)
	}
	if vectorErr != nil {
		return nil, fmt.Errorf("vector search: %w", vectorErr)
	}
	logger.Debug("Vector hits: %d, keyword hits: %d", len(vectorIDs), len(keywordIDs))

	var ranked []scoredID
	if rerankModel != "" {
		var err error
		ranked, err = r.rerank(ctx, query, rerankModel, vectorIDs, keywordIDs, topK)
		if err != nil {
			return nil, err
		}
	} else {
		ranked = reciprocalRankFusion(
			[][]domain.DocumentID{vectorIDs, keywordIDs},
			[]float64{vectorFusionWeight, keywordFusionWeight},
			topK,
		)
	}

	output := r.assembleOutput(ranked)
	logger.Info("Search returned %d result(s)", len(output.IDs))

	if r.history != nil {
		if err := r.history.Append(ctx, query, len(output.IDs)); err != nil {
			logger.Warn("Record search history: %v", err)
		}
	}
	return output, nil
}

// keywordSearch queries the keyword index with the raw query text.
func (r *Rag) keywordSearch(ctx context.Context, query string, topK int, minScore float64) ([]domain.DocumentID, error) {
	hits, err := r.keyword.Search(ctx, query, topK, minScore)
	if err != nil {
		return nil, err
	}
	ids := make([]domain.DocumentID, len(hits))
	for i, hit := range hits {
		ids[i] = hit.ID
	}
	return ids, nil
}

// vectorSearch splits the query like an ingested document, embeds the
// pieces and concatenates each piece's matches in rank order.
func (r *Rag) vectorSearch(ctx context.Context, query string, settings domain.Settings, topK int, minScore float64) ([]domain.DocumentID, error) {
	sp := splitter.New(
		splitter.WithChunkSize(settings.ChunkSize),
		splitter.WithChunkOverlap(settings.ChunkOverlap),
	)
	pieces := sp.SplitText(query)

	embeddings, err := r.embedding.Embed(ctx, pieces, true)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	var ids []domain.DocumentID
	for _, embedding := range embeddings {
		hits, err := r.vector.Search(ctx, embedding, topK, minScore)
		if err != nil {
			return nil, err
		}
		for _, hit := range hits {
			ids = append(ids, hit.ID)
		}
	}
	return ids, nil
}

// rerank reorders the deduplicated union of both hit lists with an
// external model. A reranker failure fails the search; there is no
// silent fallback to rank fusion.
func (r *Rag) rerank(ctx context.Context, query, model string, vectorIDs, keywordIDs []domain.DocumentID, topK int) ([]scoredID, error) {
	if r.rerankers == nil {
		return nil, fmt.Errorf("%w: no reranker configured for model %q", domain.ErrRerankFailed, model)
	}
	reranker, err := r.rerankers(model)
	if err != nil {
		return nil, fmt.Errorf("retrieve reranker %q: %w", model, err)
	}
	defer reranker.Close()

	// Union preserving first-seen order, vector hits first.
	seen := make(map[domain.DocumentID]bool)
	var ids []domain.DocumentID
	var documents []string
	for _, id := range append(append([]domain.DocumentID(nil), vectorIDs...), keywordIDs...) {
		if seen[id] {
			continue
		}
		seen[id] = true
		chunk, ok := r.corpus.Document(id)
		if !ok {
			continue
		}
		ids = append(ids, id)
		documents = append(documents, chunk.Text)
	}
	if len(documents) == 0 {
		return nil, nil
	}

	results, err := reranker.Rerank(ctx, query, documents, topK)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrRerankFailed, err)
	}

	ranked := make([]scoredID, 0, len(results))
	for _, result := range results {
		if len(ranked) >= topK {
			break
		}
		if result.Index < 0 || result.Index >= len(ids) {
			continue
		}
		ranked = append(ranked, scoredID{id: ids[result.Index], score: result.Score})
	}
	return ranked, nil
}

// reciprocalRankFusion merges ranked lists: each occurrence at zero-based
// rank contributes weight/(rrfK+rank+1) with rrfK = 2*topK. Ties keep
// first-seen order.
func reciprocalRankFusion(lists [][]domain.DocumentID, weights []float64, topK int) []scoredID {
	rrfK := topK * 2
	scores := make(map[domain.DocumentID]float64)
	var order []domain.DocumentID

	for li, list := range lists {
		for rank, id := range list {
			if _, ok := scores[id]; !ok {
				order = append(order, id)
			}
			scores[id] += weights[li] / float64(rrfK+rank+1)
		}
	}

	ranked := make([]scoredID, 0, len(order))
	for _, id := range order {
		ranked = append(ranked, scoredID{id: id, score: scores[id]})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	if len(ranked) > topK {
		ranked = ranked[:topK]
	}
	return ranked
}

// assembleOutput hydrates ranked ids into the answer context. Ids whose
// chunk vanished are skipped.
func (r *Rag) assembleOutput(ranked []scoredID) *domain.SearchOutput {
	output := &domain.SearchOutput{}
	texts := make([]string, 0, len(ranked))
	seenSource := make(map[string]bool)

	for _, sc := range ranked {
		chunk, ok := r.corpus.Document(sc.id)
		if !ok {
			continue
		}
		file, _ := r.corpus.File(sc.id.File())

		output.IDs = append(output.IDs, sc.id)
		output.Results = append(output.Results, domain.SearchResult{
			ID:    sc.id,
			Path:  file.Path,
			Text:  chunk.Text,
			Score: sc.score,
		})
		texts = append(texts, chunk.Text)
		if !seenSource[file.Path] {
			seenSource[file.Path] = true
			output.Sources = append(output.Sources, file.Path)
		}
	}

	output.Text = strings.Join(texts, "\n\n")
	return output
}
