// Package persistence writes finished transcription jobs to disk.
//
// Each job produces three artifacts under its output directory: the plain
// transcript (transcript.txt), a tabular segment listing (segments.csv) and
// the full structured record (result.json). The Record mirrors the API
// response, so a saved job can be replayed to a client unchanged.
package persistence
