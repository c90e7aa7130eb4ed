// Package pipeline coordinates diarization and transcription into a single
// time-ordered, speaker-attributed transcript.
//
// The Orchestrator is the only entry point jobs call. Depending on the
// request it either transcribes the whole file in one pass (with language
// detection) or runs diarization and hands the speaker turns to the Stitcher,
// which slices the audio per turn, transcribes each slice, and assembles the
// final segment list.
//
// Segment IDs are assigned in turn arrival order before the list is sorted by
// start time, and are not renumbered afterwards, so the visible ID sequence
// can be non-monotonic. Downstream consumers rely on this pass-through
// numbering; do not "fix" it.
package pipeline
