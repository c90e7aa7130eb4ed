package config

import (
	"fmt"

	"github.com/kbukum/audioscribe/diarization/pyannote"
	"github.com/kbukum/audioscribe/logger"
	"github.com/kbukum/audioscribe/server"
	"github.com/kbukum/audioscribe/transcription/whisper"
	"github.com/kbukum/audioscribe/validation"
)

// ServiceName is the canonical service identifier used for config discovery,
// logging and telemetry.
const ServiceName = "audioscribe"

// StorageConfig holds the filesystem layout for job data.
type StorageConfig struct {
	// UploadDir receives raw uploads, one subdirectory per job.
	UploadDir string `yaml:"upload_dir" mapstructure:"upload_dir" validate:"required"`
	// ProcessedDir receives normalized audio, segment slices and artifacts.
	ProcessedDir string `yaml:"processed_dir" mapstructure:"processed_dir" validate:"required"`
}

// ApplyDefaults applies default values to storage configuration.
func (c *StorageConfig) ApplyDefaults() {
	if c.UploadDir == "" {
		c.UploadDir = "data/uploads"
	}
	if c.ProcessedDir == "" {
		c.ProcessedDir = "data/processed"
	}
}

// PipelineConfig holds transcription pipeline settings.
type PipelineConfig struct {
	// DefaultModel is used when the request carries no model_name.
	DefaultModel string `yaml:"default_model" mapstructure:"default_model" validate:"required"`
	// DiarizationConfig is the diarizer configuration path.
	DiarizationConfig string `yaml:"diarization_config" mapstructure:"diarization_config"`
	// FFmpegPath overrides the ffmpeg binary location. Empty means PATH.
	FFmpegPath string `yaml:"ffmpeg_path" mapstructure:"ffmpeg_path"`
}

// ApplyDefaults applies default values to pipeline configuration.
func (c *PipelineConfig) ApplyDefaults() {
	if c.DefaultModel == "" {
		c.DefaultModel = "small.en"
	}
}

// ObservabilityConfig holds OTLP metrics and tracing settings.
type ObservabilityConfig struct {
	Enabled    bool    `yaml:"enabled" mapstructure:"enabled"`
	Endpoint   string  `yaml:"endpoint" mapstructure:"endpoint"`
	Insecure   bool    `yaml:"insecure" mapstructure:"insecure"`
	SampleRate float64 `yaml:"sample_rate" mapstructure:"sample_rate" validate:"gte=0,lte=1"`
}

// ApplyDefaults applies default values to observability configuration.
func (c *ObservabilityConfig) ApplyDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = "localhost:4318"
		c.Insecure = true
	}
	if c.SampleRate == 0 {
		c.SampleRate = 1.0
	}
}

// Config is the root audioscribe configuration.
type Config struct {
	Name          string              `yaml:"name" mapstructure:"name" validate:"required"`
	Environment   string              `yaml:"environment" mapstructure:"environment" validate:"oneof=development staging production"`
	Version       string              `yaml:"version" mapstructure:"version"`
	Logging       logger.Config       `yaml:"logging" mapstructure:"logging"`
	Server        server.Config       `yaml:"server" mapstructure:"server"`
	Storage       StorageConfig       `yaml:"storage" mapstructure:"storage"`
	Pipeline      PipelineConfig      `yaml:"pipeline" mapstructure:"pipeline"`
	Whisper       whisper.Config      `yaml:"whisper" mapstructure:"whisper"`
	Pyannote      pyannote.Config     `yaml:"pyannote" mapstructure:"pyannote"`
	Observability ObservabilityConfig `yaml:"observability" mapstructure:"observability"`
}

// ApplyDefaults applies default values across the whole configuration.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = ServiceName
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Version == "" {
		c.Version = "dev"
	}
	c.Logging.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Storage.ApplyDefaults()
	c.Pipeline.ApplyDefaults()
	c.Whisper.ApplyDefaults()
	c.Pyannote.ApplyDefaults()
	c.Observability.ApplyDefaults()
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config.logging: %w", err)
	}
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("config.server: %w", err)
	}
	return nil
}

// Load reads, defaults and validates the audioscribe configuration.
func Load(opts ...LoaderOption) (*Config, error) {
	cfg := &Config{}
	if err := LoadConfig(ServiceName, cfg, opts...); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
