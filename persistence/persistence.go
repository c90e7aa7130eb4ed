package persistence

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/kbukum/audioscribe/logger"
	"github.com/kbukum/audioscribe/pipeline"
)

// Record is the structured output of one transcription job.
type Record struct {
	JobID              string             `json:"job_id"`
	FileName           string             `json:"file_name"`
	DurationSeconds    float64            `json:"duration_seconds"`
	ModelName          string             `json:"model_name"`
	DiarizationEnabled bool               `json:"diarization_enabled"`
	DetectedLanguage   *string            `json:"detected_language"`
	Transcript         string             `json:"transcript"`
	Segments           []pipeline.Segment `json:"segments"`
}

// Paths lists the artifacts written for one job.
type Paths struct {
	Transcript  string `json:"transcript"`
	SegmentsCSV string `json:"segments_csv"`
	ResultJSON  string `json:"result_json"`
}

// Store writes job artifacts to the local filesystem.
type Store struct {
	log *logger.Logger
}

// NewStore creates a Store.
func NewStore(log *logger.Logger) *Store {
	return &Store{log: log.WithComponent("persistence")}
}

// Save writes the transcript, segment table and structured record for a job
// under outputDir, creating it as needed.
func (s *Store) Save(outputDir string, rec *Record) (*Paths, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	paths := &Paths{
		Transcript:  filepath.Join(outputDir, "transcript.txt"),
		SegmentsCSV: filepath.Join(outputDir, "segments.csv"),
		ResultJSON:  filepath.Join(outputDir, "result.json"),
	}

	if err := os.WriteFile(paths.Transcript, []byte(rec.Transcript), 0o644); err != nil {
		return nil, fmt.Errorf("write transcript: %w", err)
	}
	if err := s.writeSegmentsCSV(paths.SegmentsCSV, rec.Segments); err != nil {
		return nil, err
	}
	if err := s.writeResultJSON(paths.ResultJSON, rec); err != nil {
		return nil, err
	}

	s.log.Debug("job artifacts saved", logger.Fields(
		logger.FieldJobID, rec.JobID,
		"dir", outputDir,
	))
	return paths, nil
}

func (s *Store) writeSegmentsCSV(path string, segments []pipeline.Segment) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create segments csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"id", "speaker", "start", "end", "text"}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, seg := range segments {
		row := []string{
			strconv.Itoa(seg.ID),
			seg.Speaker,
			strconv.FormatFloat(seg.Start, 'f', 2, 64),
			strconv.FormatFloat(seg.End, 'f', 2, 64),
			seg.Text,
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

func (s *Store) writeResultJSON(path string, rec *Record) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write result json: %w", err)
	}
	return nil
}
