// Package whisper implements transcription.Provider against a
// faster-whisper HTTP sidecar. A Provider instance is bound to one model
// name; the sidecar keeps the loaded model resident between calls.
package whisper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/kbukum/audioscribe/provider"
	"github.com/kbukum/audioscribe/transcription"
)

const (
	// ProviderName is the name reported by Whisper providers.
	ProviderName = "whisper"

	defaultWhisperURL     = "http://localhost:8387"
	defaultWhisperTimeout = 120 * time.Second
)

// Config holds configuration for the Whisper transcription sidecar.
type Config struct {
	URL         string        `json:"url" yaml:"url" mapstructure:"url"`
	Device      string        `json:"device,omitempty" yaml:"device" mapstructure:"device"`
	ComputeType string        `json:"compute_type,omitempty" yaml:"compute_type" mapstructure:"compute_type"`
	Timeout     time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
}

// ApplyDefaults applies default values to the sidecar configuration.
func (c *Config) ApplyDefaults() {
	if c.URL == "" {
		c.URL = defaultWhisperURL
	}
	if c.Timeout == 0 {
		c.Timeout = defaultWhisperTimeout
	}
}

// Provider implements transcription.Provider using the Whisper HTTP sidecar.
type Provider struct {
	cfg    Config
	model  string
	client *http.Client
}

// NewProviderFunc returns a transcription.NewProviderFunc that binds Whisper
// providers to model names. The engine's model cache decides when a new
// provider (and model load) is actually needed.
func NewProviderFunc(cfg Config) transcription.NewProviderFunc {
	cfg.ApplyDefaults()
	return func(model string) (transcription.Provider, error) {
		return &Provider{
			cfg:   cfg,
			model: model,
			client: &http.Client{
				Timeout: cfg.Timeout,
			},
		}, nil
	}
}

// Name returns the provider name.
func (p *Provider) Name() string { return ProviderName }

// IsAvailable checks if the Whisper sidecar is reachable.
func (p *Provider) IsAvailable(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.cfg.URL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// Load asks the sidecar to load this provider's model. The sidecar fails the
// call when the model artifact or its backend dependency is missing, which
// surfaces as a load failure here.
func (p *Provider) Load(ctx context.Context) error {
	payload, err := json.Marshal(map[string]string{
		"model":        p.model,
		"device":       p.cfg.Device,
		"compute_type": p.cfg.ComputeType,
	})
	if err != nil {
		return fmt.Errorf("encode load request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.URL+"/load", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create load request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("model load request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("model load error (status %d): %s", resp.StatusCode, string(body))
	}
	return nil
}

// Transcribe sends an audio file to the Whisper sidecar and returns the
// transcription.
func (p *Provider) Transcribe(ctx context.Context, req transcription.Request) (*transcription.Result, error) {
	body, contentType, err := (&provider.MultipartBody{
		Fields: map[string]string{
			"model":           p.model,
			"detect_language": strconv.FormatBool(req.DetectLanguage),
		},
		Files: []provider.FileField{
			{FieldName: "audio", FileName: "audio.wav", Path: req.AudioPath},
		},
	}).Encode()
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.URL+"/transcribe", body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", contentType)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("whisper request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("whisper error (status %d): %s", resp.StatusCode, string(body))
	}

	var result whisperResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode whisper response: %w", err)
	}

	return &transcription.Result{
		Text:     result.Text,
		Language: result.Language,
	}, nil
}

// --- internal Whisper API response types ---

type whisperResponse struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}
