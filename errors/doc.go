// Package errors provides unified error handling for the audioscribe service.
// It implements structured error types with machine-readable codes, HTTP
// status mapping, and retryable detection following RFC 7807.
//
// Pipeline failures carry dedicated codes so handlers and clients can tell a
// rejected upload (UNSUPPORTED_FORMAT), a missing diarizer configuration
// (CONFIG_NOT_FOUND), a failed model load (MODEL_LOAD_FAILED, retryable after
// remediation) and a failed inference call (INFERENCE_FAILED) apart.
package errors
