package audio

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/kbukum/audioscribe/errors"
	"github.com/kbukum/audioscribe/logger"
)

// allowedExtensions is the upload allow-list. Anything else is rejected
// before the pipeline runs.
var allowedExtensions = map[string]bool{
	".wav":  true,
	".mp3":  true,
	".m4a":  true,
	".aac":  true,
	".flac": true,
	".ogg":  true,
	".mp4":  true,
	".webm": true,
}

// AllowedExtensions returns the sorted upload allow-list.
func AllowedExtensions() []string {
	exts := make([]string, 0, len(allowedExtensions))
	for ext := range allowedExtensions {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// EnsureSupportedExtension rejects file names whose extension is not in the
// allow-list.
func EnsureSupportedExtension(fileName string) error {
	ext := strings.ToLower(filepath.Ext(fileName))
	if !allowedExtensions[ext] {
		return errors.UnsupportedFormat(ext, AllowedExtensions())
	}
	return nil
}

// Normalizer converts uploaded media into canonical WAV using ffmpeg.
type Normalizer struct {
	ffmpegPath string
	log        *logger.Logger
}

// NewNormalizer creates a Normalizer. ffmpegPath defaults to "ffmpeg" on PATH.
func NewNormalizer(ffmpegPath string, log *logger.Logger) *Normalizer {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &Normalizer{
		ffmpegPath: ffmpegPath,
		log:        log.WithComponent("normalizer"),
	}
}

// ToCanonical transcodes inputPath into a canonical WAV under outDir and
// returns the output path.
//
// ffmpeg -y -i input -ac 1 -ar 16000 -sample_fmt s16 -f wav output
func (n *Normalizer) ToCanonical(ctx context.Context, inputPath, outDir string) (string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	outPath := filepath.Join(outDir, base+".wav")

	cmd := exec.CommandContext(ctx, n.ffmpegPath,
		"-y", "-i", inputPath,
		"-ac", "1", "-ar", "16000",
		"-sample_fmt", "s16",
		"-f", "wav",
		outPath,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	// Run ffmpeg in its own process group so cancellation kills the whole
	// tree, SIGTERM first and SIGKILL after the wait delay.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGTERM)
	}
	cmd.WaitDelay = 5 * time.Second

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("ffmpeg killed: %w", ctx.Err())
		}
		n.log.Error("ffmpeg failed", logger.Fields(
			"input", inputPath,
			"stderr", strings.TrimSpace(stderr.String()),
		))
		return "", fmt.Errorf("ffmpeg: %w", err)
	}

	n.log.Debug("audio normalized", logger.Fields(
		"input", inputPath,
		"wav", outPath,
	))
	return outPath, nil
}
