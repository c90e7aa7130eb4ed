package server

import (
	"context"
	"math"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kbukum/audioscribe/audio"
	"github.com/kbukum/audioscribe/errors"
	"github.com/kbukum/audioscribe/logger"
	"github.com/kbukum/audioscribe/observability"
	"github.com/kbukum/audioscribe/persistence"
	"github.com/kbukum/audioscribe/pipeline"
	"github.com/kbukum/audioscribe/util"
	"github.com/kbukum/audioscribe/version"
)

// Normalizer converts an uploaded file into canonical WAV.
// *audio.Normalizer implements it.
type Normalizer interface {
	ToCanonical(ctx context.Context, inputPath, outDir string) (string, error)
}

// Runner executes one transcription job. *pipeline.Orchestrator implements it.
type Runner interface {
	Run(ctx context.Context, req pipeline.Request) (*pipeline.Result, error)
}

// Saver persists job artifacts. *persistence.Store implements it.
type Saver interface {
	Save(outputDir string, rec *persistence.Record) (*persistence.Paths, error)
}

// TranscriptionStatus reports the transcription backend's health.
// *transcription.Engine implements it.
type TranscriptionStatus interface {
	LoadedModels() int
	Available(ctx context.Context) bool
}

// DiarizationStatus reports the diarization backend's health.
// *diarization.Engine implements it.
type DiarizationStatus interface {
	LoadedPipelines() int
	Available(ctx context.Context) bool
}

// HandlerConfig holds the per-deployment settings the handler needs.
type HandlerConfig struct {
	// ServiceName is reported by the health endpoint.
	ServiceName string
	// UploadDir receives raw uploads, one subdirectory per job.
	UploadDir string
	// ProcessedDir receives normalized audio, segment slices and artifacts.
	ProcessedDir string
	// DefaultModel is used when the request carries no model_name.
	DefaultModel string
	// DiarizationConfig is the diarizer configuration path.
	DiarizationConfig string
}

// Handler serves the transcription API.
type Handler struct {
	cfg           HandlerConfig
	normalizer    Normalizer
	runner        Runner
	saver         Saver
	transcription TranscriptionStatus
	diarization   DiarizationStatus
	log           *logger.Logger
}

// NewHandler creates a Handler.
func NewHandler(cfg HandlerConfig, normalizer Normalizer, runner Runner, saver Saver,
	transcription TranscriptionStatus, diarization DiarizationStatus, log *logger.Logger) *Handler {
	if cfg.ServiceName == "" {
		cfg.ServiceName = "audioscribe"
	}
	return &Handler{
		cfg:           cfg,
		normalizer:    normalizer,
		runner:        runner,
		saver:         saver,
		transcription: transcription,
		diarization:   diarization,
		log:           log.WithComponent("handler"),
	}
}

// RegisterRoutes mounts the API on engine. metrics may be nil. When
// frontendDir is non-empty it is served for any path outside /api.
func (h *Handler) RegisterRoutes(engine *gin.Engine, metrics *observability.Metrics, frontendDir string) {
	api := engine.Group("/api")
	api.Use(RequestMetrics(metrics))
	api.GET("/health", h.health)
	api.POST("/transcribe", h.transcribe)

	if frontendDir != "" {
		fs := http.FileServer(http.Dir(frontendDir))
		engine.NoRoute(func(c *gin.Context) {
			if strings.HasPrefix(c.Request.URL.Path, "/api/") {
				c.JSON(http.StatusNotFound, errors.NotFound("route", c.Request.URL.Path).ToResponse())
				return
			}
			fs.ServeHTTP(c.Writer, c.Request)
		})
	}
}

func (h *Handler) health(c *gin.Context) {
	ctx := c.Request.Context()
	c.JSON(http.StatusOK, gin.H{
		"status":                  "ok",
		"service":                 h.cfg.ServiceName,
		"version":                 version.Short(),
		"loaded_models":           h.transcription.LoadedModels(),
		"loaded_pipelines":        h.diarization.LoadedPipelines(),
		"transcription_available": h.transcription.Available(ctx),
		"diarization_available":   h.diarization.Available(ctx),
	})
}

// transcribe accepts a multipart upload and runs it through the pipeline.
//
// Form fields: file (required), model_name (optional), diarize (optional
// bool). The normalized WAV, segment slices and artifacts land under
// ProcessedDir/<job_id>/.
func (h *Handler) transcribe(c *gin.Context) {
	ctx := c.Request.Context()

	fileHeader, err := c.FormFile("file")
	if err != nil {
		RespondWithError(c, h.log, errors.MissingField("file"))
		return
	}
	if err := audio.EnsureSupportedExtension(fileHeader.Filename); err != nil {
		RespondWithError(c, h.log, err)
		return
	}

	model := strings.TrimSpace(c.PostForm("model_name"))
	if model == "" {
		model = h.cfg.DefaultModel
	}
	diarize := false
	if raw := c.PostForm("diarize"); raw != "" {
		diarize, err = strconv.ParseBool(raw)
		if err != nil {
			RespondWithError(c, h.log, errors.InvalidInput("diarize", "must be a boolean"))
			return
		}
	}

	jobID := newJobID()
	log := h.log.WithFields(logger.Fields(logger.FieldJobID, jobID))

	uploadPath := filepath.Join(h.cfg.UploadDir, jobID, util.SanitizeFileName(fileHeader.Filename))
	if err := c.SaveUploadedFile(fileHeader, uploadPath); err != nil {
		RespondWithError(c, log, err)
		return
	}

	jobDir := filepath.Join(h.cfg.ProcessedDir, jobID)
	wavPath, err := h.normalizer.ToCanonical(ctx, uploadPath, jobDir)
	if err != nil {
		RespondWithError(c, log, err)
		return
	}

	handle, err := audio.Load(wavPath)
	if err != nil {
		RespondWithError(c, log, err)
		return
	}

	log.Info("job started", logger.Fields(
		logger.FieldModel, model,
		"file", fileHeader.Filename,
		"diarize", diarize,
	))

	result, err := h.runner.Run(ctx, pipeline.Request{
		WAVPath:           wavPath,
		SegmentDir:        filepath.Join(jobDir, "segments"),
		Model:             model,
		Diarize:           diarize,
		DiarizationConfig: h.cfg.DiarizationConfig,
	})
	if err != nil {
		RespondWithError(c, log, err)
		return
	}

	rec := &persistence.Record{
		JobID:              jobID,
		FileName:           fileHeader.Filename,
		DurationSeconds:    math.Round(handle.Duration()*100) / 100,
		ModelName:          model,
		DiarizationEnabled: diarize,
		DetectedLanguage:   result.DetectedLanguage,
		Transcript:         result.Transcript,
		Segments:           result.Segments,
	}
	if _, err := h.saver.Save(jobDir, rec); err != nil {
		RespondWithError(c, log, err)
		return
	}

	log.Info("job complete", logger.Fields(
		logger.FieldModel, model,
		"segments", len(rec.Segments),
	))
	c.JSON(http.StatusOK, rec)
}

// newJobID returns a 32 character hex job identifier.
func newJobID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
