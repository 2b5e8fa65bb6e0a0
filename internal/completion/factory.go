package completion

import "fmt"

// New builds the provider named by kind ("openai", "gemini", or
// "openrouter"). model may be empty to use the provider's default.
func New(kind, apiKey, model string) (Provider, error) {
	switch kind {
	case "openai":
		return NewOpenAIProvider(apiKey, model), nil
	case "gemini":
		return NewGeminiProvider(apiKey, model), nil
	case "openrouter":
		p := NewOpenRouterProvider(apiKey)
		if model != "" {
			p = p.WithModels([]string{model})
		}
		return p, nil
	default:
		return nil, fmt.Errorf("completion: unsupported provider %q", kind)
	}
}
