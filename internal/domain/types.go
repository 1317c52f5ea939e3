package domain

import "time"

type SessionID string
type MessageID string

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Provider identifies which hosted completion API serves a model.
type Provider string

const (
	ProviderGemini Provider = "Gemini"
	ProviderOpenAI Provider = "OpenAI"
	ProviderGroq   Provider = "Groq"
)

type Timestamp = time.Time
