package factory

import (
	"fmt"

	"smart-grocery-be/pkg/llm"
	"smart-grocery-be/pkg/llm/ollama"
)

const defaultOllamaURL = "http://localhost:11434"

// NewLLMProvider builds the provider named by providerType.
func NewLLMProvider(providerType, modelName, baseURL string) (llm.LLMProvider, error) {
	switch providerType {
	case "ollama", "":
		if baseURL == "" {
			baseURL = defaultOllamaURL
		}
		return ollama.NewOllamaProvider(baseURL, modelName), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
