package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/ragdex/internal/adapters/driven/ai"
	"github.com/custodia-labs/ragdex/internal/adapters/driven/config/file"
	"github.com/custodia-labs/ragdex/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/ragdex/internal/adapters/driven/storage/yamlstore"
	"github.com/custodia-labs/ragdex/internal/adapters/driven/vector/vecgo"
	"github.com/custodia-labs/ragdex/internal/core/domain"
	"github.com/custodia-labs/ragdex/internal/core/ports/driving"
	"github.com/custodia-labs/ragdex/internal/core/services"
	"github.com/custodia-labs/ragdex/internal/index/bm25"
	"github.com/custodia-labs/ragdex/internal/loaders"
	"github.com/custodia-labs/ragdex/internal/logger"
)

// corpusFile is the persisted corpus, stored next to the config file.
const corpusFile = "corpus.yaml"

// Configuration keys the composition root reads beyond the provider
// settings the ai factory resolves itself.
const (
	keyChunkSize    = "chunk_size"
	keyChunkOverlap = "chunk_overlap"
	keyTopK         = "top_k"
	keyBatchSize    = "batch_size"
	keyRerankModel  = "reranker.model"
	keyGitHubToken  = "github.token"
	keyLoaders      = "document_loaders"
	keyCrawlPages   = "crawler.max_pages"
	keyCrawlDepth   = "crawler.max_depth"
	keyCrawlRPS     = "crawler.requests_per_second"
)

// initServices builds the production service graph and installs it for
// the running command.
func initServices(ctx context.Context) error {
	svc, cleanup, err := buildServices(ctx)
	if err != nil {
		return err
	}
	ragService = svc
	serviceCleanup = cleanup
	return nil
}

// buildServices wires the production adapters into a Rag service. The
// returned cleanup closes the service and its backing stores.
func buildServices(ctx context.Context) (driving.RagService, func(), error) {
	cfg, err := file.NewConfigStore("")
	if err != nil {
		return nil, nil, fmt.Errorf("open config: %w", err)
	}
	root := filepath.Dir(cfg.Path())

	embedder, err := ai.CreateAndValidateEmbeddingService(ai.EmbeddingSettingsFromConfig(cfg))
	if err != nil {
		return nil, nil, err
	}

	rerankers, err := ai.RerankerFactory(ai.RerankSettingsFromConfig(cfg))
	if err != nil {
		return nil, nil, err
	}

	db, err := sqlite.NewStore(filepath.Join(root, "data"))
	if err != nil {
		return nil, nil, fmt.Errorf("open cache store: %w", err)
	}

	loaderCommands = cfg.GetStringMap(keyLoaders)
	registry, err := loaders.NewRegistry(loaders.Config{
		Commands: loaderCommands,
		Cache:    db.FetchCache(sqlite.DefaultFetchTTL),
		Crawler: loaders.CrawlerOptions{
			MaxPages:          cfg.GetInt(keyCrawlPages),
			MaxDepth:          cfg.GetInt(keyCrawlDepth),
			RequestsPerSecond: cfg.GetFloat(keyCrawlRPS),
		},
		GitHubToken: cfg.GetString(keyGitHubToken),
	})
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("configure loaders: %w", err)
	}

	svc, err := services.New(ctx, services.Config{
		Store:     yamlstore.New(filepath.Join(root, corpusFile)),
		Loader:    registry,
		Embedding: embedder,
		Keyword:   bm25.New(bm25.DefaultOptions()),
		Vector:    vecgo.New(),
		History:   db.HistoryStore(),
		Rerankers: rerankers,
		Settings: domain.Settings{
			ChunkSize:     cfg.GetInt(keyChunkSize),
			ChunkOverlap:  cfg.GetInt(keyChunkOverlap),
			TopK:          cfg.GetInt(keyTopK),
			BatchSize:     cfg.GetInt(keyBatchSize),
			RerankerModel: cfg.GetString(keyRerankModel),
		},
	})
	if err != nil {
		db.Close()
		return nil, nil, err
	}

	cleanup := func() {
		if err := svc.Close(); err != nil {
			logger.Warn("Close service: %v", err)
		}
		if err := db.Close(); err != nil {
			logger.Warn("Close cache store: %v", err)
		}
	}
	return svc, cleanup, nil
}
