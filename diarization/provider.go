package diarization

import (
	"context"

	"github.com/kbukum/audioscribe/provider"
)

// Provider is the interface that diarization backends must implement. A
// Provider instance is bound to one loaded pipeline configuration.
type Provider interface {
	provider.Provider // embeds Name() and IsAvailable()

	// Load loads the diarization pipeline for this provider's configuration.
	// It is expensive and is invoked at most once per configuration by the
	// engine's model cache.
	Load(ctx context.Context) error

	// Diarize sends audio for speaker diarization and returns the result.
	Diarize(ctx context.Context, req Request) (*Response, error)
}
