// Package provider defines the base interface shared by audioscribe's model
// backends.
//
// Domain packages (diarization, transcription) embed Provider in their own
// backend interfaces, so every backend reports a name and can be asked about
// availability before work is sent to it. Loaded backend instances are
// memoized by package modelcache rather than registered globally.
package provider
