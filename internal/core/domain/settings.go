package domain

// AIProvider identifies an external AI service vendor.
type AIProvider string

// Available AI providers.
const (
	// AIProviderNone disables the capability.
	AIProviderNone AIProvider = "none"

	// AIProviderOllama uses a local Ollama server.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI uses the OpenAI API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic uses the Anthropic API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderNone, AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderNone:
		return "Disabled"
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI API"
	case AIProviderAnthropic:
		return "Anthropic API"
	default:
		return "Unknown"
	}
}
