// Package server exposes the audioscribe HTTP API.
//
// It wraps a Gin engine in an http.Server with h2c support, applies the
// service middleware (recovery, request logging, CORS, request metrics) and
// registers the API routes:
//
//	GET  /api/health      — service liveness plus resident model counts
//	POST /api/transcribe  — multipart upload; runs the pipeline for one job
//
// The transcribe handler talks to the rest of the system through small
// interfaces so tests can stub the normalizer, pipeline and store.
package server
