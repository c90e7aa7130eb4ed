package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/kbukum/audioscribe/audio"
	"github.com/kbukum/audioscribe/diarization"
	"github.com/kbukum/audioscribe/logger"
	"github.com/kbukum/audioscribe/transcription"
)

// scriptedTranscriber returns canned texts in call (arrival) order.
type scriptedTranscriber struct {
	texts    []string
	language string
	calls    int
	paths    []string
}

func (s *scriptedTranscriber) Transcribe(_ context.Context, req transcription.Request) (*transcription.Result, error) {
	text := ""
	if s.calls < len(s.texts) {
		text = s.texts[s.calls]
	}
	s.calls++
	s.paths = append(s.paths, req.AudioPath)

	result := &transcription.Result{Text: text}
	if req.DetectLanguage {
		result.Language = s.language
	}
	return result, nil
}

// tenSecondAudio returns 10s of 16kHz mono 16-bit silence.
func tenSecondAudio() *audio.Handle {
	return audio.FromPCM(16000, make([]byte, 16000*2*10))
}

func TestStitch_ArrivalIDsSurviveSort(t *testing.T) {
	// The later-starting turn arrives first, so it gets ID 1.
	turns := []diarization.Turn{
		{Speaker: "B", Start: 5, End: 8},
		{Speaker: "A", Start: 0, End: 3},
	}
	tr := &scriptedTranscriber{texts: []string{"later", "earlier"}}
	st := NewStitcher(tr, logger.NewDefault("test"))

	out, err := st.Stitch(context.Background(), StitchInput{
		Turns:      turns,
		Audio:      tenSecondAudio(),
		SegmentDir: t.TempDir(),
		Model:      "base",
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(out.Segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(out.Segments))
	}
	// Sorted by start: A's turn first, but it keeps ID 2.
	if out.Segments[0].Speaker != "A" || out.Segments[0].ID != 2 {
		t.Errorf("expected first segment A with id 2, got %+v", out.Segments[0])
	}
	if out.Segments[1].Speaker != "B" || out.Segments[1].ID != 1 {
		t.Errorf("expected second segment B with id 1, got %+v", out.Segments[1])
	}
	if out.Transcript != "A: earlier B: later" {
		t.Errorf("unexpected transcript %q", out.Transcript)
	}
}

func TestStitch_EmptyTextStaysInSegmentsOnly(t *testing.T) {
	turns := []diarization.Turn{
		{Speaker: "speakerA", Start: 0, End: 2},
		{Speaker: "speakerB", Start: 3, End: 5},
	}
	tr := &scriptedTranscriber{texts: []string{"", "hello"}}
	st := NewStitcher(tr, logger.NewDefault("test"))

	out, err := st.Stitch(context.Background(), StitchInput{
		Turns:      turns,
		Audio:      tenSecondAudio(),
		SegmentDir: t.TempDir(),
		Model:      "base",
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(out.Segments) != 2 {
		t.Fatalf("empty-text segment must stay in the list, got %d segments", len(out.Segments))
	}
	if out.Segments[0].Text != "" {
		t.Errorf("expected empty text preserved, got %q", out.Segments[0].Text)
	}
	if out.Transcript != "speakerB: hello" {
		t.Errorf("expected transcript %q, got %q", "speakerB: hello", out.Transcript)
	}
}

func TestStitch_TieKeepsArrivalOrder(t *testing.T) {
	turns := []diarization.Turn{
		{Speaker: "X", Start: 1, End: 2},
		{Speaker: "Y", Start: 1, End: 3},
	}
	tr := &scriptedTranscriber{texts: []string{"one", "two"}}
	st := NewStitcher(tr, logger.NewDefault("test"))

	out, err := st.Stitch(context.Background(), StitchInput{
		Turns:      turns,
		Audio:      tenSecondAudio(),
		SegmentDir: t.TempDir(),
		Model:      "base",
	})
	if err != nil {
		t.Fatal(err)
	}
	if out.Segments[0].ID != 1 || out.Segments[1].ID != 2 {
		t.Errorf("stable sort must keep arrival order on ties: %+v", out.Segments)
	}
}

func TestStitch_RoundsTimesToTwoDecimals(t *testing.T) {
	turns := []diarization.Turn{{Speaker: "S", Start: 1.23456, End: 4.56789}}
	tr := &scriptedTranscriber{texts: []string{"hi"}}
	st := NewStitcher(tr, logger.NewDefault("test"))

	out, err := st.Stitch(context.Background(), StitchInput{
		Turns:      turns,
		Audio:      tenSecondAudio(),
		SegmentDir: t.TempDir(),
		Model:      "base",
	})
	if err != nil {
		t.Fatal(err)
	}
	if out.Segments[0].Start != 1.23 || out.Segments[0].End != 4.57 {
		t.Errorf("expected rounded times 1.23/4.57, got %v/%v", out.Segments[0].Start, out.Segments[0].End)
	}
}

func TestStitch_ExportsSliceFiles(t *testing.T) {
	turns := []diarization.Turn{
		{Speaker: "SPEAKER_00", Start: 0, End: 2},
		{Speaker: "SPEAKER_01", Start: 2, End: 4},
	}
	tr := &scriptedTranscriber{texts: []string{"a", "b"}}
	st := NewStitcher(tr, logger.NewDefault("test"))
	dir := t.TempDir()

	if _, err := st.Stitch(context.Background(), StitchInput{
		Turns:      turns,
		Audio:      tenSecondAudio(),
		SegmentDir: dir,
		Model:      "base",
	}); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"speaker_SPEAKER_00_segment_1.wav", "speaker_SPEAKER_01_segment_2.wav"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			t.Errorf("expected slice file %s: %v", name, err)
		}
	}
	// The transcriber must have been handed the exported slices, in arrival order.
	if len(tr.paths) != 2 || filepath.Base(tr.paths[0]) != "speaker_SPEAKER_00_segment_1.wav" {
		t.Errorf("unexpected transcription inputs: %v", tr.paths)
	}

	// Slice durations follow the turn spans.
	h, err := audio.Load(filepath.Join(dir, "speaker_SPEAKER_00_segment_1.wav"))
	if err != nil {
		t.Fatal(err)
	}
	if h.Duration() != 2.0 {
		t.Errorf("expected 2s slice, got %v", h.Duration())
	}
}

func TestStitch_SanitizesSpeakerInSliceNames(t *testing.T) {
	// Backend labels are opaque and may carry path syntax.
	turns := []diarization.Turn{{Speaker: "SPK/00\x01", Start: 0, End: 1}}
	tr := &scriptedTranscriber{texts: []string{"hi"}}
	st := NewStitcher(tr, logger.NewDefault("test"))
	dir := t.TempDir()

	out, err := st.Stitch(context.Background(), StitchInput{
		Turns:      turns,
		Audio:      tenSecondAudio(),
		SegmentDir: dir,
		Model:      "base",
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(filepath.Join(dir, "speaker_00_segment_1.wav")); err != nil {
		t.Errorf("expected sanitized slice file name: %v", err)
	}
	// The segment itself keeps the label the backend reported.
	if out.Segments[0].Speaker != "SPK/00\x01" {
		t.Errorf("expected raw speaker label preserved, got %q", out.Segments[0].Speaker)
	}
}

func TestStitch_Deterministic(t *testing.T) {
	turns := []diarization.Turn{
		{Speaker: "B", Start: 5, End: 8},
		{Speaker: "A", Start: 0, End: 3},
		{Speaker: "B", Start: 3, End: 5},
	}
	run := func() *StitchOutput {
		tr := &scriptedTranscriber{texts: []string{"three", "one", "two"}}
		st := NewStitcher(tr, logger.NewDefault("test"))
		out, err := st.Stitch(context.Background(), StitchInput{
			Turns:      turns,
			Audio:      tenSecondAudio(),
			SegmentDir: t.TempDir(),
			Model:      "base",
		})
		if err != nil {
			t.Fatal(err)
		}
		return out
	}

	first, second := run(), run()
	if !reflect.DeepEqual(first.Segments, second.Segments) {
		t.Errorf("segments differ across identical runs:\n%+v\n%+v", first.Segments, second.Segments)
	}
	if first.Transcript != second.Transcript {
		t.Errorf("transcripts differ: %q vs %q", first.Transcript, second.Transcript)
	}
}
