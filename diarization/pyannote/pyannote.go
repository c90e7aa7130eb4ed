// Package pyannote implements diarization.Provider against a Pyannote HTTP
// sidecar. A Provider instance is bound to one pipeline configuration; the
// sidecar keeps the loaded pipeline resident between calls.
package pyannote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kbukum/audioscribe/diarization"
	"github.com/kbukum/audioscribe/provider"
)

const (
	// ProviderName is the name reported by Pyannote providers.
	ProviderName = "pyannote"

	defaultPyannoteURL     = "http://localhost:8388"
	defaultPyannoteTimeout = 300 * time.Second
)

// Config holds configuration for the Pyannote diarization sidecar.
type Config struct {
	BaseURL string        `json:"base_url" yaml:"base_url" mapstructure:"base_url"`
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
}

// ApplyDefaults applies default values to the sidecar configuration.
func (c *Config) ApplyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = defaultPyannoteURL
	}
	if c.Timeout == 0 {
		c.Timeout = defaultPyannoteTimeout
	}
}

// Provider implements diarization.Provider using the Pyannote HTTP sidecar.
type Provider struct {
	cfg        Config
	configPath string
	client     *http.Client
}

// NewProviderFunc returns a diarization.NewProviderFunc that binds Pyannote
// providers to configuration paths. The engine's model cache decides when a
// new provider (and pipeline load) is actually needed.
func NewProviderFunc(cfg Config) diarization.NewProviderFunc {
	cfg.ApplyDefaults()
	return func(configPath string) (diarization.Provider, error) {
		return &Provider{
			cfg:        cfg,
			configPath: configPath,
			client: &http.Client{
				Timeout: cfg.Timeout,
			},
		}, nil
	}
}

// Name returns the provider name.
func (p *Provider) Name() string { return ProviderName }

// IsAvailable checks if the Pyannote sidecar is reachable.
func (p *Provider) IsAvailable(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.cfg.BaseURL+"/health", nil)
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

// Load asks the sidecar to load the pipeline for this provider's
// configuration. The sidecar fails the call when pyannote.audio or the model
// artifacts are missing, which surfaces as a load failure here.
func (p *Provider) Load(ctx context.Context) error {
	payload, err := json.Marshal(map[string]string{"config_path": p.configPath})
	if err != nil {
		return fmt.Errorf("encode load request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.BaseURL+"/load", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create load request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("pipeline load request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("pipeline load error (status %d): %s", resp.StatusCode, string(body))
	}
	return nil
}

// Diarize sends audio to the Pyannote sidecar and returns speaker turns.
func (p *Provider) Diarize(ctx context.Context, req diarization.Request) (*diarization.Response, error) {
	body, contentType, err := (&provider.MultipartBody{
		Fields: map[string]string{"config_path": p.configPath},
		Files: []provider.FileField{
			{FieldName: "audio", FileName: "audio.wav", Path: req.AudioPath},
		},
	}).Encode()
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.BaseURL+"/diarize", body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", contentType)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("diarization request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("diarization error (status %d): %s", resp.StatusCode, string(body))
	}

	var result pyannoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode diarization response: %w", err)
	}
	if result.Error != "" {
		return nil, fmt.Errorf("diarization error: %s", result.Error)
	}

	return toResponse(&result), nil
}

// --- internal Pyannote API types ---

type pyannoteResponse struct {
	Segments    []pyannoteSegment `json:"segments"`
	NumSpeakers int               `json:"num_speakers"`
	Error       string            `json:"error,omitempty"`
}

type pyannoteSegment struct {
	SpeakerID string  `json:"speaker_id"`
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
}

func toResponse(resp *pyannoteResponse) *diarization.Response {
	turns := make([]diarization.Turn, len(resp.Segments))
	for i, seg := range resp.Segments {
		turns[i] = diarization.Turn{
			Speaker: seg.SpeakerID,
			Start:   seg.StartTime,
			End:     seg.EndTime,
		}
	}
	return &diarization.Response{
		Turns:       turns,
		NumSpeakers: resp.NumSpeakers,
	}
}
