package domain

// AIModel describes one entry of the static model catalog.
type AIModel struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Provider    Provider `json:"provider"`
}

// AvailableModels is the catalog offered at the presentation boundary.
// The first entry is the default selection.
var AvailableModels = []AIModel{
	{
		ID:          "gemini-2.5-flash",
		Name:        "Gemini 2.5 Flash",
		Description: "Fast multimodal workhorse for everyday queries",
		Provider:    ProviderGemini,
	},
	{
		ID:          "gemini-2.5-pro",
		Name:        "Gemini 2.5 Pro",
		Description: "Strongest reasoning for complex engineering tasks",
		Provider:    ProviderGemini,
	},
	{
		ID:          "gpt-4o",
		Name:        "GPT-4o",
		Description: "OpenAI flagship omni model",
		Provider:    ProviderOpenAI,
	},
	{
		ID:          "gpt-4o-mini",
		Name:        "GPT-4o mini",
		Description: "Cheaper OpenAI model for lightweight chats",
		Provider:    ProviderOpenAI,
	},
	{
		ID:          "llama-3.3-70b-versatile",
		Name:        "Llama 3.3 70B",
		Description: "Low-latency open model served by Groq",
		Provider:    ProviderGroq,
	},
}

// DefaultModelID returns the id selected before the user picks a model.
func DefaultModelID() string {
	return AvailableModels[0].ID
}

// FindModel looks a model up by id.
func FindModel(id string) (AIModel, bool) {
	for _, m := range AvailableModels {
		if m.ID == id {
			return m, true
		}
	}
	return AIModel{}, false
}
