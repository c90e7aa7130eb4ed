package transcription

import (
	"context"

	"github.com/kbukum/audioscribe/provider"
)

// Provider is the interface that transcription backends must implement. A
// Provider instance is bound to one loaded model.
type Provider interface {
	provider.Provider // embeds Name() and IsAvailable()

	// Load loads this provider's model. It is expensive and is invoked at
	// most once per model name by the engine's model cache.
	Load(ctx context.Context) error

	// Transcribe sends audio for transcription and returns the result.
	Transcribe(ctx context.Context, req Request) (*Result, error)
}
