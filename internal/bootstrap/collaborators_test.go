package bootstrap

import (
	"testing"
	"time"

	"multimodal-assistant-be/internal/config"
	"multimodal-assistant-be/internal/pkg/logger"
	"multimodal-assistant-be/pkg/collaborator/docqa"
	"multimodal-assistant-be/pkg/embedding"
	"multimodal-assistant-be/pkg/embedding/jina"
	"multimodal-assistant-be/pkg/llm/gemini"
	"multimodal-assistant-be/pkg/llm/huggingface"
	"multimodal-assistant-be/pkg/llm/ollama"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Session: config.SessionConfig{TTL: time.Hour},
		Ai: config.AIConfig{
			EmbeddingProvider: "gemini",
			LLMProvider:       "gemini",
			LLMModel:          "gemini-1.5-flash",
			OllamaBaseURL:     "http://ollama:11434",
			OllamaModel:       "nomic-embed-text",
			HistoryBackend:    "memory",
			HistoryWindow:     10,
		},
	}
}

func TestNewEmbedder(t *testing.T) {
	cfg := testConfig()

	e, err := newEmbedder(cfg, "user-key")
	require.NoError(t, err)
	assert.NotNil(t, e)

	cfg.Ai.EmbeddingProvider = "ollama"
	e, err = newEmbedder(cfg, "")
	require.NoError(t, err)
	assert.Implements(t, (*embedding.EmbeddingProvider)(nil), e)

	cfg.Ai.EmbeddingProvider = "jina"
	_, err = newEmbedder(cfg, "")
	assert.ErrorContains(t, err, "JINA_API_KEY")

	cfg.Keys.Jina = "jina-key"
	e, err = newEmbedder(cfg, "")
	require.NoError(t, err)
	assert.IsType(t, &jina.JinaProvider{}, e)

	cfg.Ai.EmbeddingProvider = "word2vec"
	_, err = newEmbedder(cfg, "")
	assert.Error(t, err)
}

func TestNewChatLLM(t *testing.T) {
	cfg := testConfig()

	p, err := newChatLLM(cfg, "user-key")
	require.NoError(t, err)
	assert.IsType(t, &gemini.GeminiProvider{}, p)

	_, err = newChatLLM(cfg, "")
	assert.Error(t, err)

	cfg.Ai.LLMProvider = "ollama"
	p, err = newChatLLM(cfg, "")
	require.NoError(t, err)
	assert.IsType(t, &ollama.OllamaProvider{}, p)

	cfg.Ai.LLMProvider = "huggingface"
	p, err = newChatLLM(cfg, "")
	require.NoError(t, err)
	assert.IsType(t, &huggingface.HuggingFaceProvider{}, p)
}

func TestNewHistoryStore_DefaultsToMemory(t *testing.T) {
	store, closeFn := newHistoryStore(testConfig(), logger.NewNopLogger())
	defer closeFn()

	assert.IsType(t, &docqa.CacheHistory{}, store)
}

func TestDefaultCollaborators_AllFactoriesSet(t *testing.T) {
	set, closeFn := DefaultCollaborators(testConfig(), logger.NewNopLogger())
	defer closeFn()

	assert.NotNil(t, set.DocumentQA)
	assert.NotNil(t, set.Transcriber)
	assert.NotNil(t, set.Captioner)
}
