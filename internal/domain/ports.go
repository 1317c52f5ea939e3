package domain

import "context"

// Fragment is one incremental piece of generated text delivered by a
// completion provider before the full response is complete. A fragment
// with a non-nil Err terminates the stream; fragments delivered before
// it stay valid.
type Fragment struct {
	Text string
	Err  error
}

// CompletionRequest is the by-value snapshot handed to a streamer for a
// single round-trip. History holds the turns that existed before the new
// user input; UserText is never duplicated into it. System-role history
// entries are not forwarded as turns, only Config.SystemInstruction
// travels as the provider's dedicated system field.
type CompletionRequest struct {
	ModelID  string
	History  []Message
	UserText string
	Config   ModelConfig
}

// CompletionStreamer defines how the core application talks to a hosted
// completion API. The returned channel yields fragments in arrival order
// and is closed on end-of-stream; the stream is finite and cannot be
// restarted. Implementations retain no state across calls and must honor
// ctx cancellation on the producing side.
type CompletionStreamer interface {
	StreamCompletion(ctx context.Context, req CompletionRequest) (<-chan Fragment, error)
}

// CredentialStore defines persistence for the credential blob.
type CredentialStore interface {
	Load() (Credentials, error)
	Save(Credentials) error
}
