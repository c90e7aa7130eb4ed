// Package audio normalizes uploaded media into canonical PCM audio and
// provides slicing over it.
//
// Canonical audio is 16 kHz mono signed 16-bit little-endian WAV, produced by
// an ffmpeg subprocess from any container in the upload allow-list. The
// Handle type wraps a canonical file in memory and supports half-open
// [start, end) slicing at millisecond granularity, which is how the stitcher
// cuts per-speaker spans out of a recording.
package audio
