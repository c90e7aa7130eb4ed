package transcription

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/kbukum/audioscribe/errors"
	"github.com/kbukum/audioscribe/logger"
)

type stubProvider struct {
	model       string
	text        string
	loadErr     error
	loads       *atomic.Int64
	unavailable bool
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) IsAvailable(context.Context) bool { return !s.unavailable }

func (s *stubProvider) Load(context.Context) error {
	if s.loads != nil {
		s.loads.Add(1)
	}
	return s.loadErr
}

func (s *stubProvider) Transcribe(_ context.Context, _ Request) (*Result, error) {
	return &Result{Text: s.text, Language: "en"}, nil
}

func TestEngine_Transcribe_TrimsWhitespace(t *testing.T) {
	engine := NewEngine(func(model string) (Provider, error) {
		return &stubProvider{model: model, text: "  hello world \n"}, nil
	}, logger.NewDefault("test"))

	result, err := engine.Transcribe(context.Background(), Request{AudioPath: "a.wav", Model: "base"})
	if err != nil {
		t.Fatal(err)
	}
	if result.Text != "hello world" {
		t.Errorf("expected trimmed text, got %q", result.Text)
	}
}

func TestEngine_Transcribe_LanguageOnlyWhenRequested(t *testing.T) {
	engine := NewEngine(func(model string) (Provider, error) {
		return &stubProvider{model: model, text: "hello"}, nil
	}, logger.NewDefault("test"))

	slice, err := engine.Transcribe(context.Background(), Request{AudioPath: "slice.wav", Model: "base"})
	if err != nil {
		t.Fatal(err)
	}
	if slice.Language != "" {
		t.Errorf("slices must not carry a detected language, got %q", slice.Language)
	}

	whole, err := engine.Transcribe(context.Background(), Request{AudioPath: "full.wav", Model: "base", DetectLanguage: true})
	if err != nil {
		t.Fatal(err)
	}
	if whole.Language != "en" {
		t.Errorf("expected detected language en, got %q", whole.Language)
	}
}

func TestEngine_Transcribe_OneLoadPerModelName(t *testing.T) {
	var loads atomic.Int64
	engine := NewEngine(func(model string) (Provider, error) {
		return &stubProvider{model: model, text: "x", loads: &loads}, nil
	}, logger.NewDefault("test"))

	for i := 0; i < 3; i++ {
		if _, err := engine.Transcribe(context.Background(), Request{AudioPath: "a.wav", Model: "small.en"}); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := engine.Transcribe(context.Background(), Request{AudioPath: "a.wav", Model: "large-v3"}); err != nil {
		t.Fatal(err)
	}

	if got := loads.Load(); got != 2 {
		t.Errorf("expected one load per distinct model name, got %d", got)
	}
	if engine.LoadedModels() != 2 {
		t.Errorf("expected 2 resident models, got %d", engine.LoadedModels())
	}
}

func TestEngine_Transcribe_LoadFailureRetries(t *testing.T) {
	var loads atomic.Int64
	engine := NewEngine(func(model string) (Provider, error) {
		return &stubProvider{model: model, loadErr: fmt.Errorf("whisper is not installed"), loads: &loads}, nil
	}, logger.NewDefault("test"))

	for i := 0; i < 2; i++ {
		_, err := engine.Transcribe(context.Background(), Request{AudioPath: "a.wav", Model: "base"})
		if !errors.IsCode(err, errors.ErrCodeModelLoadFailed) {
			t.Fatalf("expected MODEL_LOAD_FAILED, got %v", err)
		}
	}
	if got := loads.Load(); got != 2 {
		t.Errorf("expected a fresh load attempt per call, got %d", got)
	}
	if engine.LoadedModels() != 0 {
		t.Errorf("failed loads must not stay resident, got %d", engine.LoadedModels())
	}
}

func TestEngine_Available(t *testing.T) {
	var loads atomic.Int64
	up := NewEngine(func(model string) (Provider, error) {
		return &stubProvider{model: model, loads: &loads}, nil
	}, logger.NewDefault("test"))
	if !up.Available(context.Background()) {
		t.Error("expected reachable backend to report available")
	}

	down := NewEngine(func(model string) (Provider, error) {
		return &stubProvider{model: model, unavailable: true}, nil
	}, logger.NewDefault("test"))
	if down.Available(context.Background()) {
		t.Error("expected unreachable backend to report unavailable")
	}

	if got := loads.Load(); got != 0 {
		t.Errorf("availability check must not load a model, got %d loads", got)
	}
	if up.LoadedModels() != 0 {
		t.Errorf("availability check must not stay resident, got %d", up.LoadedModels())
	}
}
