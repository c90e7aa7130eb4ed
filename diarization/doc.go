// Package diarization produces speaker-turn boundaries for a recording.
//
// The Engine is the job-facing entry point: it resolves the diarizer
// configuration to an absolute path, loads the backend once per distinct
// configuration through modelcache, and returns speaker turns in backend
// arrival order with non-positive spans dropped. Time ordering is the
// stitcher's concern, not this package's.
//
// # Backends
//
//   - diarization/pyannote: Pyannote-based speaker diarization over an HTTP
//     sidecar
package diarization
