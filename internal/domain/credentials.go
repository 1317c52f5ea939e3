package domain

// ManagedCredential is the non-secret sentinel stored in place of a real
// key when the hosting environment supplies it.
const ManagedCredential = "System Managed"

// Credentials maps each supported provider to its API key. The blob is
// loaded once at startup and rewritten in full on every edit; the store
// does no validation or encryption beyond passthrough.
type Credentials struct {
	OpenAI string `json:"openai"`
	Groq   string `json:"groq"`
	Gemini string `json:"gemini"`
}

// DefaultCredentials returns the blob used when nothing has been persisted
// yet: empty keys, with the Gemini entry managed externally.
func DefaultCredentials() Credentials {
	return Credentials{Gemini: ManagedCredential}
}

// ForProvider returns the stored key for the given provider.
func (c Credentials) ForProvider(p Provider) string {
	switch p {
	case ProviderOpenAI:
		return c.OpenAI
	case ProviderGroq:
		return c.Groq
	case ProviderGemini:
		return c.Gemini
	}
	return ""
}

// Set updates the key for a provider named by its blob key ("openai",
// "groq", "gemini"). Returns ErrUnknownProvider for anything else.
func (c *Credentials) Set(name, value string) error {
	switch name {
	case "openai":
		c.OpenAI = value
	case "groq":
		c.Groq = value
	case "gemini":
		c.Gemini = value
	default:
		return ErrUnknownProvider
	}
	return nil
}
