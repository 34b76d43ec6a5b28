// Package bm25 implements Okapi BM25 keyword scoring over chunk text.
package bm25

import (
	"context"
	"math"
	"runtime"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/ragdex/internal/core/domain"
	"github.com/custodia-labs/ragdex/internal/core/ports/driven"
)

// Default Okapi BM25 parameters.
const (
	DefaultK1      = 1.5
	DefaultB       = 0.75
	DefaultEpsilon = 0.25
)

// Options hold the BM25 scoring parameters.
type Options struct {
	// K1 controls term-frequency saturation.
	K1 float64

	// B controls document-length normalisation.
	B float64

	// Epsilon replaces negative idf values as a fraction of the average
	// idf, keeping very common terms from scoring negatively.
	Epsilon float64
}

// DefaultOptions returns the standard parameters.
func DefaultOptions() Options {
	return Options{K1: DefaultK1, B: DefaultB, Epsilon: DefaultEpsilon}
}

// Ensure Index implements the interface.
var _ driven.KeywordIndex = (*Index)(nil)

// Index is an in-memory BM25 index. It is rebuilt wholesale from the
// corpus; searches may run concurrently with each other but not with a
// rebuild, which swaps the whole state under the lock.
type Index struct {
	opts Options

	mu         sync.RWMutex
	corpusSize int
	avgdl      float64
	docIDs     []domain.DocumentID
	docFreqs   []map[string]int
	docLen     []int
	idf        map[string]float64
}

// New creates an empty index.
func New(opts Options) *Index {
	return &Index{opts: opts}
}

// Rebuild tokenises all documents in parallel and replaces the index
// state.
func (x *Index) Rebuild(ctx context.Context, docs []driven.IndexDocument) error {
	tokenized := make([][]string, len(docs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i := range docs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			tokenized[i] = tokenize(docs[i].Text)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	docFreqs := make([]map[string]int, 0, len(docs))
	docLen := make([]int, 0, len(docs))
	termDocs := make(map[string]int)
	totalLen := 0
	for _, tokens := range tokenized {
		docLen = append(docLen, len(tokens))
		totalLen += len(tokens)

		frequencies := make(map[string]int)
		for _, token := range tokens {
			frequencies[token]++
		}
		docFreqs = append(docFreqs, frequencies)

		for token := range frequencies {
			termDocs[token]++
		}
	}

	avgdl := 0.0
	if len(docs) > 0 {
		avgdl = float64(totalLen) / float64(len(docs))
	}

	ids := make([]domain.DocumentID, len(docs))
	for i, doc := range docs {
		ids[i] = doc.ID
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	x.corpusSize = len(docs)
	x.avgdl = avgdl
	x.docIDs = ids
	x.docFreqs = docFreqs
	x.docLen = docLen
	x.idf = calcIDF(termDocs, len(docs), x.opts.Epsilon)
	return nil
}

// Search scores every document against the query and returns up to topK
// hits by descending score. Ties keep rebuild input order. Hits scoring
// at or below minScore are dropped; pass math.Inf(-1) to keep all.
func (x *Index) Search(ctx context.Context, query string, topK int, minScore float64) ([]driven.Hit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	scores := x.scores(query)
	hits := make([]driven.Hit, 0, len(scores))
	for i, score := range scores {
		if score <= minScore {
			continue
		}
		hits = append(hits, driven.Hit{ID: x.docIDs[i], Score: score})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

// scores computes the dense BM25 score vector for a query.
// Callers hold at least a read lock.
func (x *Index) scores(query string) []float64 {
	scores := make([]float64, x.corpusSize)
	for _, q := range tokenize(query) {
		idf, ok := x.idf[q]
		if !ok {
			continue
		}
		for i, doc := range x.docFreqs {
			freq := float64(doc[q])
			scores[i] += idf * (freq * (x.opts.K1 + 1.0) /
				(freq + x.opts.K1*(1.0-x.opts.B+x.opts.B*float64(x.docLen[i])/x.avgdl)))
		}
	}
	return scores
}

// calcIDF derives per-term inverse document frequencies. Terms occurring
// in more than half the corpus come out negative and are replaced by
// epsilon times the average idf, computed before replacement.
func calcIDF(termDocs map[string]int, corpusSize int, epsilon float64) map[string]float64 {
	idf := make(map[string]float64, len(termDocs))
	var negative []string
	idfSum := 0.0
	for term, df := range termDocs {
		value := math.Log(float64(corpusSize)-float64(df)+0.5) - math.Log(float64(df)+0.5)
		idf[term] = value
		idfSum += value
		if value < 0 {
			negative = append(negative, term)
		}
	}

	if len(idf) > 0 {
		averageIDF := idfSum / float64(len(idf))
		for _, term := range negative {
			idf[term] = epsilon * averageIDF
		}
	}
	return idf
}
