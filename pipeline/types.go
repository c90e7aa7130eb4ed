package pipeline

import (
	"context"

	"github.com/kbukum/audioscribe/diarization"
	"github.com/kbukum/audioscribe/transcription"
)

// Segment is a speaker-attributed, transcribed time range.
type Segment struct {
	// ID is the 1-based arrival index of the originating speaker turn. It
	// survives the start-time sort unchanged.
	ID int `json:"id"`
	// Speaker is the backend-assigned speaker label.
	Speaker string `json:"speaker"`
	// Start is the segment start time in seconds, rounded to 2 decimals.
	Start float64 `json:"start"`
	// End is the segment end time in seconds, rounded to 2 decimals.
	End float64 `json:"end"`
	// Text is the transcribed text for this segment, possibly empty.
	Text string `json:"text"`
}

// Result is the pipeline output for one job.
type Result struct {
	// Transcript is derived from Segments (or from the whole-file text on
	// the non-diarized path), never independently authored.
	Transcript string `json:"transcript"`
	// Segments is ordered by start time. Empty (non-nil) on the
	// non-diarized path.
	Segments []Segment `json:"segments"`
	// DetectedLanguage is populated only on the non-diarized path.
	DetectedLanguage *string `json:"detected_language"`
}

// Request describes one pipeline run.
type Request struct {
	// WAVPath is the canonical audio file for the job.
	WAVPath string
	// SegmentDir receives the per-turn audio slices on the diarized path.
	SegmentDir string
	// Model is the transcription model name.
	Model string
	// Diarize selects speaker attribution.
	Diarize bool
	// DiarizationConfig is the diarizer configuration path, required when
	// Diarize is set.
	DiarizationConfig string
}

// Diarizer produces speaker turns in backend arrival order.
// *diarization.Engine implements it.
type Diarizer interface {
	Diarize(ctx context.Context, audioPath, configPath string) ([]diarization.Turn, error)
}

// Transcriber converts an audio span into text. *transcription.Engine
// implements it.
type Transcriber interface {
	Transcribe(ctx context.Context, req transcription.Request) (*transcription.Result, error)
}
