package bootstrap

import (
	"context"
	"fmt"

	"multimodal-assistant-be/internal/config"
	"multimodal-assistant-be/internal/pkg/logger"
	"multimodal-assistant-be/pkg/collaborator"
	"multimodal-assistant-be/pkg/collaborator/captioner"
	"multimodal-assistant-be/pkg/collaborator/docqa"
	"multimodal-assistant-be/pkg/collaborator/transcriber"
	"multimodal-assistant-be/pkg/embedding"
	"multimodal-assistant-be/pkg/embedding/jina"
	"multimodal-assistant-be/pkg/gcp"
	"multimodal-assistant-be/pkg/llm"
	"multimodal-assistant-be/pkg/llm/factory"

	"github.com/redis/go-redis/v9"
)

// DefaultCollaborators builds the production factories. The returned closer
// releases the shared history backend.
func DefaultCollaborators(cfg *config.Config, log logger.ILogger) (collaborator.Set, func() error) {
	history, closeHistory := newHistoryStore(cfg, log)
	gcpOpts := gcp.ClientOptions(cfg.Speech.GCPAccessToken)

	set := collaborator.Set{
		DocumentQA: func(ctx context.Context, pdfPath, credential string) (collaborator.DocumentQA, error) {
			embedder, err := newEmbedder(cfg, credential)
			if err != nil {
				return nil, err
			}
			chatLLM, err := newChatLLM(cfg, credential)
			if err != nil {
				return nil, err
			}
			return docqa.New(ctx, pdfPath, docqa.Options{
				Embedder:     embedder,
				LLM:          chatLLM,
				History:      history,
				ChunkSize:    cfg.Ai.ChunkSize,
				ChunkOverlap: cfg.Ai.ChunkOverlap,
				TopK:         cfg.Ai.TopK,
			})
		},
		Transcriber: func(ctx context.Context) (collaborator.Transcriber, error) {
			return transcriber.New(ctx, transcriber.Config{
				LanguageCode:  cfg.Speech.LanguageCode,
				Mp3SampleRate: cfg.Speech.Mp3SampleRate,
			}, gcpOpts...)
		},
		Captioner: func(ctx context.Context) (collaborator.Captioner, error) {
			var narrator llm.LLMProvider
			if cfg.Vision.Narrator != "" {
				baseURL := ""
				if cfg.Vision.Narrator == "ollama" {
					baseURL = cfg.Ai.OllamaBaseURL
				}
				p, err := factory.NewLLMProvider(cfg.Vision.Narrator, cfg.Vision.NarratorModel, baseURL, cfg.Vision.NarratorKey)
				if err != nil {
					// plain observations still make a usable caption
					log.Warn("BOOTSTRAP", "Caption narrator disabled", map[string]interface{}{"error": err.Error()})
				} else {
					narrator = p
				}
			}
			return captioner.New(ctx, captioner.Config{}, narrator, gcpOpts...)
		},
	}

	return set, closeHistory
}

func newHistoryStore(cfg *config.Config, log logger.ILogger) (docqa.HistoryStore, func() error) {
	if cfg.Ai.HistoryBackend != "redis" {
		return docqa.NewCacheHistory(cfg.Ai.HistoryWindow, cfg.Session.TTL), func() error { return nil }
	}

	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Warn("BOOTSTRAP", "Failed to parse Redis URL, using direct Addr", map[string]interface{}{"error": err.Error()})
		opt = &redis.Options{Addr: cfg.App.RedisURL}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Warn("BOOTSTRAP", "Failed to connect to Redis", map[string]interface{}{"error": err.Error()})
	}
	return docqa.NewRedisHistory(rdb, cfg.Ai.HistoryWindow, cfg.Session.TTL), rdb.Close
}

// newEmbedder picks the embedding backend. The session credential is the
// Gemini key; jina uses the server-side key.
func newEmbedder(cfg *config.Config, credential string) (embedding.EmbeddingProvider, error) {
	switch cfg.Ai.EmbeddingProvider {
	case "gemini", "":
		return embedding.NewGeminiProvider(cfg.Ai.GeminiBaseURL, credential), nil
	case "ollama":
		return embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaModel), nil
	case "jina":
		if cfg.Keys.Jina == "" {
			return nil, fmt.Errorf("jina embedding provider requires JINA_API_KEY")
		}
		return jina.NewJinaProvider(cfg.Keys.Jina, ""), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Ai.EmbeddingProvider)
	}
}

func newChatLLM(cfg *config.Config, credential string) (llm.LLMProvider, error) {
	switch cfg.Ai.LLMProvider {
	case "ollama":
		return factory.NewLLMProvider("ollama", cfg.Ai.LLMModel, cfg.Ai.OllamaBaseURL, "")
	case "huggingface":
		return factory.NewLLMProvider("huggingface", cfg.Ai.LLMModel, "", cfg.Keys.HuggingFace)
	default:
		return factory.NewLLMProvider(cfg.Ai.LLMProvider, cfg.Ai.LLMModel, cfg.Ai.GeminiBaseURL, credential)
	}
}
