package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/audioscribe/audio"
	"github.com/kbukum/audioscribe/logger"
	"github.com/kbukum/audioscribe/persistence"
	"github.com/kbukum/audioscribe/pipeline"
	"github.com/kbukum/audioscribe/util"
)

// stubNormalizer writes canonical WAV silence instead of shelling out to
// ffmpeg. pcmBytes controls the audio length; zero means one second.
type stubNormalizer struct{ pcmBytes int }

func (s stubNormalizer) ToCanonical(_ context.Context, inputPath, outDir string) (string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", err
	}
	n := s.pcmBytes
	if n == 0 {
		n = 16000 * 2
	}
	base := filepath.Base(inputPath)
	outPath := filepath.Join(outDir, base[:len(base)-len(filepath.Ext(base))]+".wav")
	handle := audio.FromPCM(16000, make([]byte, n))
	return outPath, handle.Save(outPath)
}

type stubRunner struct {
	result *pipeline.Result
	err    error
	last   pipeline.Request
}

func (s *stubRunner) Run(_ context.Context, req pipeline.Request) (*pipeline.Result, error) {
	s.last = req
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

type stubSaver struct {
	saved *persistence.Record
}

func (s *stubSaver) Save(outputDir string, rec *persistence.Record) (*persistence.Paths, error) {
	s.saved = rec
	return &persistence.Paths{
		Transcript:  filepath.Join(outputDir, "transcript.txt"),
		SegmentsCSV: filepath.Join(outputDir, "segments.csv"),
		ResultJSON:  filepath.Join(outputDir, "result.json"),
	}, nil
}

type stubStatus struct {
	models, pipelines int
	down              bool
}

func (s stubStatus) LoadedModels() int              { return s.models }
func (s stubStatus) LoadedPipelines() int           { return s.pipelines }
func (s stubStatus) Available(context.Context) bool { return !s.down }

func newTestRouter(t *testing.T, runner *stubRunner, saver *stubSaver) *gin.Engine {
	return newTestRouterWith(t, runner, saver, stubNormalizer{})
}

func newTestRouterWith(t *testing.T, runner *stubRunner, saver *stubSaver, normalizer Normalizer) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	log := logger.NewDefault("audioscribe-test")
	h := NewHandler(HandlerConfig{
		UploadDir:         filepath.Join(dir, "uploads"),
		ProcessedDir:      filepath.Join(dir, "processed"),
		DefaultModel:      "small.en",
		DiarizationConfig: filepath.Join(dir, "diarization.yaml"),
	}, normalizer, runner, saver, stubStatus{models: 2, pipelines: 1}, stubStatus{models: 2, pipelines: 1}, log)

	engine := gin.New()
	h.RegisterRoutes(engine, nil, "")
	return engine
}

func multipartUpload(t *testing.T, fileName string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	if fileName != "" {
		part, err := w.CreateFormFile("file", fileName)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write([]byte("fake media bytes")); err != nil {
			t.Fatalf("write form file: %v", err)
		}
	}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field %s: %v", k, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return body, w.FormDataContentType()
}

func TestHealthReportsResidentModels(t *testing.T) {
	engine := newTestRouter(t, &stubRunner{result: &pipeline.Result{}}, &stubSaver{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %v, want ok", body["status"])
	}
	if body["service"] != "audioscribe" {
		t.Errorf("service field = %v, want audioscribe", body["service"])
	}
	if body["loaded_models"] != float64(2) {
		t.Errorf("loaded_models = %v, want 2", body["loaded_models"])
	}
	if body["loaded_pipelines"] != float64(1) {
		t.Errorf("loaded_pipelines = %v, want 1", body["loaded_pipelines"])
	}
	if body["transcription_available"] != true {
		t.Errorf("transcription_available = %v, want true", body["transcription_available"])
	}
	if body["diarization_available"] != true {
		t.Errorf("diarization_available = %v, want true", body["diarization_available"])
	}
}

func TestHealthReportsUnreachableSidecar(t *testing.T) {
	gin.SetMode(gin.TestMode)
	dir := t.TempDir()
	log := logger.NewDefault("audioscribe-test")
	h := NewHandler(HandlerConfig{
		UploadDir:    filepath.Join(dir, "uploads"),
		ProcessedDir: filepath.Join(dir, "processed"),
		DefaultModel: "small.en",
	}, stubNormalizer{}, &stubRunner{result: &pipeline.Result{}}, &stubSaver{},
		stubStatus{}, stubStatus{down: true}, log)

	engine := gin.New()
	h.RegisterRoutes(engine, nil, "")

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["diarization_available"] != false {
		t.Errorf("diarization_available = %v, want false", body["diarization_available"])
	}
	if body["transcription_available"] != true {
		t.Errorf("transcription_available = %v, want true", body["transcription_available"])
	}
}

func TestTranscribeRejectsUnsupportedExtension(t *testing.T) {
	engine := newTestRouter(t, &stubRunner{result: &pipeline.Result{}}, &stubSaver{})

	body, contentType := multipartUpload(t, "notes.txt", nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/transcribe", body)
	req.Header.Set("Content-Type", contentType)
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var resp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Error.Code != "UNSUPPORTED_FORMAT" {
		t.Errorf("error code = %s, want UNSUPPORTED_FORMAT", resp.Error.Code)
	}
}

func TestTranscribeRejectsMissingFile(t *testing.T) {
	engine := newTestRouter(t, &stubRunner{result: &pipeline.Result{}}, &stubSaver{})

	body, contentType := multipartUpload(t, "", map[string]string{"model_name": "base"})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/transcribe", body)
	req.Header.Set("Content-Type", contentType)
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestTranscribeHappyPath(t *testing.T) {
	runner := &stubRunner{result: &pipeline.Result{
		Transcript:       "hello world",
		Segments:         []pipeline.Segment{},
		DetectedLanguage: util.Ptr("en"),
	}}
	saver := &stubSaver{}
	engine := newTestRouter(t, runner, saver)

	body, contentType := multipartUpload(t, "meeting.mp3", map[string]string{
		"model_name": "base",
		"diarize":    "false",
	})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/transcribe", body)
	req.Header.Set("Content-Type", contentType)
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var resp persistence.Record
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.JobID) != 32 {
		t.Errorf("job_id length = %d, want 32", len(resp.JobID))
	}
	if resp.FileName != "meeting.mp3" {
		t.Errorf("file_name = %s, want meeting.mp3", resp.FileName)
	}
	if resp.ModelName != "base" {
		t.Errorf("model_name = %s, want base", resp.ModelName)
	}
	if resp.DiarizationEnabled {
		t.Error("diarization_enabled = true, want false")
	}
	if resp.Transcript != "hello world" {
		t.Errorf("transcript = %q, want %q", resp.Transcript, "hello world")
	}
	if resp.DetectedLanguage == nil || *resp.DetectedLanguage != "en" {
		t.Errorf("detected_language = %v, want en", resp.DetectedLanguage)
	}
	if resp.DurationSeconds != 1 {
		t.Errorf("duration_seconds = %v, want 1", resp.DurationSeconds)
	}

	if runner.last.Model != "base" {
		t.Errorf("pipeline model = %s, want base", runner.last.Model)
	}
	if runner.last.Diarize {
		t.Error("pipeline diarize = true, want false")
	}
	if saver.saved == nil {
		t.Fatal("artifacts were not saved")
	}
	if saver.saved.JobID != resp.JobID {
		t.Errorf("saved job_id = %s, response job_id = %s", saver.saved.JobID, resp.JobID)
	}
}

func TestTranscribeRoundsDuration(t *testing.T) {
	runner := &stubRunner{result: &pipeline.Result{Segments: []pipeline.Segment{}}}
	// 12345 PCM bytes at 16kHz s16 mono is 0.38578125s of audio.
	engine := newTestRouterWith(t, runner, &stubSaver{}, stubNormalizer{pcmBytes: 12345})

	body, contentType := multipartUpload(t, "clip.wav", nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/transcribe", body)
	req.Header.Set("Content-Type", contentType)
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var resp persistence.Record
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.DurationSeconds != 0.39 {
		t.Errorf("duration_seconds = %v, want 0.39", resp.DurationSeconds)
	}
}

func TestTranscribeDefaultsModelName(t *testing.T) {
	runner := &stubRunner{result: &pipeline.Result{Segments: []pipeline.Segment{}}}
	engine := newTestRouter(t, runner, &stubSaver{})

	body, contentType := multipartUpload(t, "call.wav", nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/transcribe", body)
	req.Header.Set("Content-Type", contentType)
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if runner.last.Model != "small.en" {
		t.Errorf("pipeline model = %s, want small.en", runner.last.Model)
	}
}

func TestTranscribeRejectsBadDiarizeFlag(t *testing.T) {
	engine := newTestRouter(t, &stubRunner{result: &pipeline.Result{}}, &stubSaver{})

	body, contentType := multipartUpload(t, "call.wav", map[string]string{"diarize": "maybe"})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/transcribe", body)
	req.Header.Set("Content-Type", contentType)
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
