package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
)

// Handle is an in-memory reference to canonical PCM audio. It is immutable
// once loaded and owned by its job for the job's duration.
type Handle struct {
	sampleRate    int
	numChannels   int
	bitsPerSample int
	data          []byte
}

// FromPCM wraps raw mono 16-bit PCM samples in a Handle. Used by callers that
// synthesize audio, mainly tests.
func FromPCM(sampleRate int, data []byte) *Handle {
	return &Handle{
		sampleRate:    sampleRate,
		numChannels:   1,
		bitsPerSample: 16,
		data:          data,
	}
}

// Load reads a canonical WAV file into a Handle.
func Load(path string) (*Handle, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read wav: %w", err)
	}
	return decode(raw)
}

// decode parses a RIFF/WAVE byte stream, walking chunks until it finds
// "fmt " and "data".
func decode(raw []byte) (*Handle, error) {
	if len(raw) < 12 || string(raw[0:4]) != "RIFF" || string(raw[8:12]) != "WAVE" {
		return nil, fmt.Errorf("not a RIFF/WAVE stream")
	}

	h := &Handle{}
	offset := 12
	for offset+8 <= len(raw) {
		chunkID := string(raw[offset : offset+4])
		chunkSize := int(binary.LittleEndian.Uint32(raw[offset+4 : offset+8]))
		body := offset + 8
		if body+chunkSize > len(raw) {
			chunkSize = len(raw) - body
		}

		switch chunkID {
		case "fmt ":
			if chunkSize < 16 {
				return nil, fmt.Errorf("fmt chunk too short: %d bytes", chunkSize)
			}
			h.numChannels = int(binary.LittleEndian.Uint16(raw[body+2 : body+4]))
			h.sampleRate = int(binary.LittleEndian.Uint32(raw[body+4 : body+8]))
			h.bitsPerSample = int(binary.LittleEndian.Uint16(raw[body+14 : body+16]))
		case "data":
			h.data = raw[body : body+chunkSize]
		}

		// Chunks are word-aligned.
		offset = body + chunkSize + chunkSize%2
	}

	if h.sampleRate == 0 || h.data == nil {
		return nil, fmt.Errorf("missing fmt or data chunk")
	}
	return h, nil
}

// SampleRate returns the sample rate in Hz.
func (h *Handle) SampleRate() int { return h.sampleRate }

// Duration returns the audio length in seconds.
func (h *Handle) Duration() float64 {
	if h.sampleRate == 0 {
		return 0
	}
	return float64(len(h.data)) / float64(h.bytesPerFrame()*h.sampleRate)
}

// Slice returns the half-open interval [start, end) in seconds as a new
// Handle sharing the underlying samples. Start and end are truncated to
// millisecond granularity (toward zero) and clamped to the audio bounds.
func (h *Handle) Slice(start, end float64) *Handle {
	startMS := int(start * 1000)
	endMS := int(end * 1000)

	frame := h.bytesPerFrame()
	startByte := clamp(startMS*h.sampleRate/1000*frame, 0, len(h.data))
	endByte := clamp(endMS*h.sampleRate/1000*frame, startByte, len(h.data))

	return &Handle{
		sampleRate:    h.sampleRate,
		numChannels:   h.numChannels,
		bitsPerSample: h.bitsPerSample,
		data:          h.data[startByte:endByte],
	}
}

// Save writes the handle as a WAV file.
func (h *Handle) Save(path string) error {
	var buf bytes.Buffer

	byteRate := h.sampleRate * h.bytesPerFrame()
	dataLen := len(h.data)

	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+dataLen))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(h.numChannels))
	binary.Write(&buf, binary.LittleEndian, uint32(h.sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(byteRate))
	binary.Write(&buf, binary.LittleEndian, uint16(h.bytesPerFrame()))
	binary.Write(&buf, binary.LittleEndian, uint16(h.bitsPerSample))

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(dataLen))
	buf.Write(h.data)

	return os.WriteFile(path, buf.Bytes(), 0o644)
}

func (h *Handle) bytesPerFrame() int {
	return h.numChannels * h.bitsPerSample / 8
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
