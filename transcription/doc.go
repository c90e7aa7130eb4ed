// Package transcription converts speech audio into text.
//
// The Engine is the job-facing entry point: it loads one backend instance per
// model name through modelcache and shares it across concurrent jobs. There
// is no bound on the number of resident models; that is an operational
// concern, not enforced here.
//
// Language detection is only requested for whole-file transcription. Short
// diarized slices do not carry enough signal for reliable detection, so the
// engine deliberately omits it for them rather than guessing.
//
// # Backends
//
//   - transcription/whisper: Whisper speech-to-text over an HTTP sidecar
package transcription
