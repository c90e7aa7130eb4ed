package pipeline

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/audioscribe/audio"
	"github.com/kbukum/audioscribe/logger"
	"github.com/kbukum/audioscribe/observability"
	"github.com/kbukum/audioscribe/transcription"
)

// Orchestrator is the top-level pipeline entry point. It selects single-pass
// transcription or diarization plus stitching, and is the only component
// callers invoke directly. Normalization and persistence happen outside it.
type Orchestrator struct {
	diarizer    Diarizer
	transcriber Transcriber
	stitcher    *Stitcher
	metrics     *observability.Metrics
	log         *logger.Logger
}

// NewOrchestrator creates an Orchestrator. metrics may be nil when
// observability is disabled.
func NewOrchestrator(diarizer Diarizer, transcriber Transcriber, metrics *observability.Metrics, log *logger.Logger) *Orchestrator {
	return &Orchestrator{
		diarizer:    diarizer,
		transcriber: transcriber,
		stitcher:    NewStitcher(transcriber, log),
		metrics:     metrics,
		log:         log.WithComponent("orchestrator"),
	}
}

// Run executes one pipeline job.
//
// With req.Diarize set the result is speaker-attributed and DetectedLanguage
// is always nil; otherwise the whole file is transcribed in one pass with
// language detection and Segments is empty. Jobs only share state through the
// engines' model caches, so any error here terminates this job alone.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*Result, error) {
	ctx, span := observability.StartSpan(ctx, "pipeline.run", trace.WithAttributes(
		attribute.String("model", req.Model),
		attribute.Bool("diarize", req.Diarize),
	))
	defer span.End()

	if req.Diarize {
		return o.runDiarized(ctx, req)
	}
	return o.runWholeFile(ctx, req)
}

func (o *Orchestrator) runDiarized(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()

	turns, err := o.diarizer.Diarize(ctx, req.WAVPath, req.DiarizationConfig)
	if err != nil {
		o.recordOperation(ctx, "diarize", "error", time.Since(start))
		o.log.Error("diarization failed", logger.ErrorFields("diarize", err))
		return nil, err
	}
	o.recordOperation(ctx, "diarize", "ok", time.Since(start))

	handle, err := audio.Load(req.WAVPath)
	if err != nil {
		return nil, err
	}

	stitchStart := time.Now()
	out, err := o.stitcher.Stitch(ctx, StitchInput{
		Turns:      turns,
		Audio:      handle,
		SegmentDir: req.SegmentDir,
		Model:      req.Model,
	})
	if err != nil {
		o.recordOperation(ctx, "stitch", "error", time.Since(stitchStart))
		o.log.Error("stitching failed", logger.ErrorFields("stitch", err))
		return nil, err
	}
	o.recordOperation(ctx, "stitch", "ok", time.Since(stitchStart))

	o.log.Info("diarized transcription complete",
		logger.DurationFields("stitch", time.Since(stitchStart)),
		logger.Fields(
			"model", req.Model,
			"segments", len(out.Segments),
		))
	return &Result{
		Transcript:       out.Transcript,
		Segments:         out.Segments,
		DetectedLanguage: nil,
	}, nil
}

func (o *Orchestrator) runWholeFile(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()

	result, err := o.transcriber.Transcribe(ctx, transcription.Request{
		AudioPath:      req.WAVPath,
		Model:          req.Model,
		DetectLanguage: true,
	})
	if err != nil {
		o.recordOperation(ctx, "transcribe", "error", time.Since(start))
		o.log.Error("transcription failed", logger.ErrorFields("transcribe", err))
		return nil, err
	}
	o.recordOperation(ctx, "transcribe", "ok", time.Since(start))

	var lang *string
	if result.Language != "" {
		lang = &result.Language
	}

	o.log.Info("whole-file transcription complete",
		logger.DurationFields("transcribe", time.Since(start)),
		logger.Fields(
			"model", req.Model,
			"language", result.Language,
		))
	return &Result{
		Transcript:       result.Text,
		Segments:         []Segment{},
		DetectedLanguage: lang,
	}, nil
}

func (o *Orchestrator) recordOperation(ctx context.Context, op, status string, d time.Duration) {
	if o.metrics == nil {
		return
	}
	o.metrics.RecordOperation(ctx, "pipeline", op, status, d)
}
