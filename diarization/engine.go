package diarization

import (
	"context"
	"os"
	"path/filepath"

	"github.com/kbukum/audioscribe/errors"
	"github.com/kbukum/audioscribe/logger"
	"github.com/kbukum/audioscribe/modelcache"
)

// NewProviderFunc creates an unloaded Provider bound to a diarizer
// configuration path. Backends supply one (see pyannote.NewProviderFunc).
type NewProviderFunc func(configPath string) (Provider, error)

// Engine coordinates diarization for jobs. Loaded providers are shared across
// all concurrent jobs through a model cache keyed by the resolved absolute
// configuration path, so identical configurations load exactly once per
// process regardless of which job asks first.
type Engine struct {
	cache       *modelcache.Cache[string, Provider]
	newProvider NewProviderFunc
	log         *logger.Logger
}

// NewEngine creates an Engine backed by the given provider constructor.
func NewEngine(newProvider NewProviderFunc, log *logger.Logger) *Engine {
	e := &Engine{
		newProvider: newProvider,
		log:         log.WithComponent("diarization"),
	}
	e.cache = modelcache.New(func(ctx context.Context, configPath string) (Provider, error) {
		p, err := newProvider(configPath)
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

// Diarize returns the speaker turns for audioPath in backend arrival order.
// Turns with End <= Start are dropped; no time sorting happens here.
//
// configPath must reference an existing readable file, checked before any
// model load is attempted. All paths are resolved to absolute form up front;
// nothing downstream depends on the process working directory.
func (e *Engine) Diarize(ctx context.Context, audioPath, configPath string) ([]Turn, error) {
	absConfig, err := filepath.Abs(configPath)
	if err != nil {
		return nil, errors.ConfigNotFound(configPath).WithCause(err)
	}
	info, err := os.Stat(absConfig)
	if err != nil || info.IsDir() {
		return nil, errors.ConfigNotFound(absConfig)
	}

	p, err := e.cache.GetOrLoad(ctx, absConfig)
	if err != nil {
		return nil, errors.ModelLoadFailed("diarization", absConfig, err)
	}

	resp, err := p.Diarize(ctx, Request{AudioPath: audioPath})
	if err != nil {
		return nil, errors.InferenceFailed("diarization", err)
	}

	turns := make([]Turn, 0, len(resp.Turns))
	for _, turn := range resp.Turns {
		if turn.End <= turn.Start {
			continue
		}
		turns = append(turns, turn)
	}

	e.log.Debug("diarization complete", logger.Fields(
		"audio", audioPath,
		"turns", len(turns),
		"speakers", resp.NumSpeakers,
	))
	return turns, nil
}

// LoadedPipelines returns the number of resident diarization pipelines,
// counting in-flight loads.
func (e *Engine) LoadedPipelines() int {
	return e.cache.Len()
}

// Available reports whether the diarization backend is reachable. The
// throwaway provider used for the check is never loaded and never cached.
func (e *Engine) Available(ctx context.Context) bool {
	p, err := e.newProvider("")
	if err != nil {
		return false
	}
	return p.IsAvailable(ctx)
}
