package transcription

import (
	"context"
	"strings"

	"github.com/kbukum/audioscribe/errors"
	"github.com/kbukum/audioscribe/logger"
	"github.com/kbukum/audioscribe/modelcache"
)

// NewProviderFunc creates an unloaded Provider bound to a model name.
// Backends supply one (see whisper.NewProviderFunc).
type NewProviderFunc func(model string) (Provider, error)

// Engine coordinates transcription for jobs. One backend instance is loaded
// per distinct model name and shared across all concurrent jobs; distinct
// names load distinct resident models.
type Engine struct {
	cache       *modelcache.Cache[string, Provider]
	newProvider NewProviderFunc
	log         *logger.Logger
}

// NewEngine creates an Engine backed by the given provider constructor.
func NewEngine(newProvider NewProviderFunc, log *logger.Logger) *Engine {
	e := &Engine{
		newProvider: newProvider,
		log:         log.WithComponent("transcription"),
	}
	e.cache = modelcache.New(func(ctx context.Context, model string) (Provider, error) {
		p, err := newProvider(model)
		if err != nil {
			return nil, err
		}
		if err := p.Load(ctx); err != nil {
			return nil, err
		}
		return p, nil
	})
	return e
}

// Transcribe converts the audio span in req into text. Returned text is
// whitespace-trimmed; Language is populated only when req.DetectLanguage is
// set.
func (e *Engine) Transcribe(ctx context.Context, req Request) (*Result, error) {
	p, err := e.cache.GetOrLoad(ctx, req.Model)
	if err != nil {
		return nil, errors.ModelLoadFailed("transcription", req.Model, err)
	}

	result, err := p.Transcribe(ctx, req)
	if err != nil {
		return nil, errors.InferenceFailed("transcription", err)
	}

	out := &Result{Text: strings.TrimSpace(result.Text)}
	if req.DetectLanguage {
		out.Language = result.Language
	}
	return out, nil
}

// LoadedModels returns the number of resident transcription models, counting
// in-flight loads.
func (e *Engine) LoadedModels() int {
	return e.cache.Len()
}

// Available reports whether the transcription backend is reachable. The
// throwaway provider used for the check is never loaded and never cached.
func (e *Engine) Available(ctx context.Context) bool {
	p, err := e.newProvider("")
	if err != nil {
		return false
	}
	return p.IsAvailable(ctx)
}
