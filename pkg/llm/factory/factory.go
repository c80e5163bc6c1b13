package factory

import (
	"fmt"

	"multimodal-assistant-be/pkg/llm"
	"multimodal-assistant-be/pkg/llm/gemini"
	"multimodal-assistant-be/pkg/llm/huggingface"
	"multimodal-assistant-be/pkg/llm/ollama"
)

// NewLLMProvider builds a chat backend. apiKey is ignored by ollama.
func NewLLMProvider(providerType, modelName, baseURL, apiKey string) (llm.LLMProvider, error) {
	switch providerType {
	case "ollama":
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, modelName), nil
	case "gemini", "":
		if apiKey == "" {
			return nil, fmt.Errorf("gemini provider requires an API key")
		}
		return gemini.NewGeminiProvider(baseURL, apiKey, modelName), nil
	case "huggingface":
		return huggingface.NewHuggingFaceProvider(apiKey, baseURL, modelName), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
