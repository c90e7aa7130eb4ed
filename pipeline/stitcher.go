package pipeline

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kbukum/audioscribe/audio"
	"github.com/kbukum/audioscribe/diarization"
	"github.com/kbukum/audioscribe/logger"
	"github.com/kbukum/audioscribe/transcription"
	"github.com/kbukum/audioscribe/util"
)

// Stitcher slices audio per speaker turn, transcribes each slice, and
// assembles the ordered segment list and merged transcript.
type Stitcher struct {
	transcriber Transcriber
	log         *logger.Logger
}

// NewStitcher creates a Stitcher over the given transcriber.
func NewStitcher(transcriber Transcriber, log *logger.Logger) *Stitcher {
	return &Stitcher{
		transcriber: transcriber,
		log:         log.WithComponent("stitcher"),
	}
}

// StitchInput carries one stitching run. Turns arrive in backend arrival
// order and have already been filtered to positive spans.
type StitchInput struct {
	Turns      []diarization.Turn
	Audio      *audio.Handle
	SegmentDir string
	Model      string
}

// StitchOutput is the assembled result of a stitching run.
type StitchOutput struct {
	// Segments is sorted by start time; IDs keep arrival-order numbering.
	Segments []Segment
	// Transcript joins "{speaker}: {text}" for non-empty segments in
	// sorted order.
	Transcript string
}

// Stitch processes turns in arrival order: slice, transcribe, record. IDs are
// assigned before the final sort and never renumbered. Segments whose
// transcription came back empty stay in the segment list (their timing is
// still useful) but are left out of the transcript.
func (s *Stitcher) Stitch(ctx context.Context, in StitchInput) (*StitchOutput, error) {
	if err := os.MkdirAll(in.SegmentDir, 0o755); err != nil {
		return nil, fmt.Errorf("create segment dir: %w", err)
	}

	segments := make([]Segment, 0, len(in.Turns))
	for i, turn := range in.Turns {
		id := i + 1

		slice := in.Audio.Slice(turn.Start, turn.End)
		// The speaker label is backend-controlled and opaque; keep it out of
		// path syntax. Segments still carry the raw label.
		slicePath := filepath.Join(in.SegmentDir,
			fmt.Sprintf("speaker_%s_segment_%d.wav", util.SanitizeFileName(turn.Speaker), id))
		if err := slice.Save(slicePath); err != nil {
			return nil, fmt.Errorf("export segment %d: %w", id, err)
		}

		result, err := s.transcriber.Transcribe(ctx, transcription.Request{
			AudioPath: slicePath,
			Model:     in.Model,
		})
		if err != nil {
			return nil, err
		}

		segments = append(segments, Segment{
			ID:      id,
			Speaker: turn.Speaker,
			Start:   round2(turn.Start),
			End:     round2(turn.End),
			Text:    result.Text,
		})
	}

	// Stable: turns with equal start keep arrival order.
	sort.SliceStable(segments, func(a, b int) bool {
		return segments[a].Start < segments[b].Start
	})

	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		if seg.Text == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", seg.Speaker, seg.Text))
	}
	transcript := strings.TrimSpace(strings.Join(parts, " "))

	s.log.Debug("segments assembled", logger.Fields(
		"turns", len(in.Turns),
		"segments", len(segments),
	))
	return &StitchOutput{
		Segments:   segments,
		Transcript: transcript,
	}, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
