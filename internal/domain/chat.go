package domain

// Message represents any message in a session's timeline (user, assistant or system).
// Content is mutable only while the message is in flight; once streaming settles
// the content is frozen.
type Message struct {
	ID        MessageID
	SessionID SessionID
	Role      Role
	Content   string
	CreatedAt Timestamp
}

// Session represents one independent conversation thread with its own
// message history and model selection.
type Session struct {
	ID        SessionID
	Title     string
	Messages  []*Message
	ModelID   string
	CreatedAt Timestamp
}

// DefaultSessionTitle is the placeholder shown before the first user message
// names the session.
const DefaultSessionTitle = "Active Workspace"

const (
	titleMaxRunes = 25
	titleEllipsis = "..."
)

// DeriveTitle turns the first user message of a session into its display
// title: up to 25 characters verbatim, longer input is truncated with an
// ellipsis marker.
func DeriveTitle(firstUserMessage string) string {
	runes := []rune(firstUserMessage)
	if len(runes) <= titleMaxRunes {
		return firstUserMessage
	}
	return string(runes[:titleMaxRunes]) + titleEllipsis
}

// ModelConfig holds the sampling parameters sent with every completion
// request. Pure value object: replaced wholesale or merged field-by-field
// via ConfigPatch.
type ModelConfig struct {
	Temperature       float64
	TopP              float64
	TopK              int
	MaxOutputTokens   *int
	SystemInstruction string
}

// ConfigPatch is a partial ModelConfig update; nil fields are left untouched.
type ConfigPatch struct {
	Temperature       *float64
	TopP              *float64
	TopK              *int
	MaxOutputTokens   *int
	SystemInstruction *string
}

// Apply merges the patch into cfg and returns the result.
func (p ConfigPatch) Apply(cfg ModelConfig) ModelConfig {
	if p.Temperature != nil {
		cfg.Temperature = *p.Temperature
	}
	if p.TopP != nil {
		cfg.TopP = *p.TopP
	}
	if p.TopK != nil {
		cfg.TopK = *p.TopK
	}
	if p.MaxOutputTokens != nil {
		cfg.MaxOutputTokens = p.MaxOutputTokens
	}
	if p.SystemInstruction != nil {
		cfg.SystemInstruction = *p.SystemInstruction
	}
	return cfg
}

const defaultSystemInstruction = "You are Nexus Pro, a sophisticated AI engineering platform. " +
	"You assist users with advanced technical queries, system architecture, and creative " +
	"development while maintaining professional integrity."

// DefaultConfig returns the generation configuration used until the user
// edits it.
func DefaultConfig() ModelConfig {
	return ModelConfig{
		Temperature:       0.7,
		TopP:              0.9,
		TopK:              40,
		SystemInstruction: defaultSystemInstruction,
	}
}
