// Package ai builds the embedding and rerank services selected by the
// application configuration.
package ai

import (
	"context"
	"fmt"
	"time"

	ollamaembed "github.com/custodia-labs/ragdex/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/ragdex/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/ragdex/internal/adapters/driven/rerank/cohere"
	"github.com/custodia-labs/ragdex/internal/core/domain"
	"github.com/custodia-labs/ragdex/internal/core/ports/driven"
)

// Provider names accepted in configuration.
const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
	ProviderCohere = "cohere"
)

// pingTimeout is the maximum time to wait for provider connectivity
// validation.
const pingTimeout = 5 * time.Second

// EmbeddingSettings selects and configures an embedding provider.
type EmbeddingSettings struct {
	// Provider is "openai" (default) or "ollama".
	Provider string

	// Model overrides the provider's default embedding model.
	Model string

	// BaseURL overrides the provider's default endpoint.
	BaseURL string

	// APIKey authenticates hosted providers. Ollama ignores it.
	APIKey string

	// Dimensions overrides the embedding width where the provider
	// supports it.
	Dimensions int
}

// RerankSettings selects and configures a rerank provider.
type RerankSettings struct {
	// Provider is "cohere" or empty for none.
	Provider string

	// BaseURL overrides the provider's default endpoint.
	BaseURL string

	// APIKey authenticates the provider.
	APIKey string
}

// EmbeddingSettingsFromConfig reads the embedding provider selection
// from the configuration store.
func EmbeddingSettingsFromConfig(cfg driven.ConfigStore) EmbeddingSettings {
	return EmbeddingSettings{
		Provider:   cfg.GetString("embedding.provider"),
		Model:      cfg.GetString("embedding.model"),
		BaseURL:    cfg.GetString("embedding.base_url"),
		APIKey:     cfg.GetString("openai.api_key"),
		Dimensions: cfg.GetInt("embedding.dimensions"),
	}
}

// RerankSettingsFromConfig reads the rerank provider selection from the
// configuration store.
func RerankSettingsFromConfig(cfg driven.ConfigStore) RerankSettings {
	return RerankSettings{
		Provider: cfg.GetString("reranker.provider"),
		BaseURL:  cfg.GetString("reranker.base_url"),
		APIKey:   cfg.GetString("cohere.api_key"),
	}
}

// CreateEmbeddingService creates the configured embedding service. An
// empty provider defaults to openai.
func CreateEmbeddingService(settings EmbeddingSettings) (driven.EmbeddingService, error) {
	switch settings.Provider {
	case "", ProviderOpenAI:
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:     settings.APIKey,
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: settings.Dimensions,
		})

	case ProviderOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}), nil

	default:
		return nil, fmt.Errorf("%w: unsupported embedding provider %q",
			domain.ErrInvalidInput, settings.Provider)
	}
}

// CreateAndValidateEmbeddingService creates the configured embedding
// service and, where the provider exposes a health probe, verifies
// connectivity before returning it.
func CreateAndValidateEmbeddingService(settings EmbeddingSettings) (driven.EmbeddingService, error) {
	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}

	if err := ping(svc); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: %s unreachable: %w",
			domain.ErrEmbeddingUnavailable, svc.ModelName(), err)
	}
	return svc, nil
}

// ping probes providers that support it; hosted APIs without a health
// endpoint pass through.
func ping(svc driven.EmbeddingService) error {
	pinger, ok := svc.(interface{ Ping(ctx context.Context) error })
	if !ok {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return pinger.Ping(ctx)
}

// RerankerFactory returns a factory building rerankers bound to the
// configured provider, or nil when reranking is not configured.
func RerankerFactory(settings RerankSettings) (func(model string) (driven.Reranker, error), error) {
	switch settings.Provider {
	case "", "none":
		return nil, nil

	case ProviderCohere:
		return func(model string) (driven.Reranker, error) {
			return cohere.NewReranker(cohere.Config{
				APIKey:  settings.APIKey,
				BaseURL: settings.BaseURL,
				Model:   model,
			})
		}, nil

	default:
		return nil, fmt.Errorf("%w: unsupported rerank provider %q",
			domain.ErrRerankUnavailable, settings.Provider)
	}
}
