// Package logger provides structured logging for audioscribe using zerolog.
//
// It supports JSON and console output formats, log level configuration,
// and component-scoped loggers with structured fields.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "console"
//
// # Usage
//
//	log := logger.New(&cfg, "audioscribe").WithComponent("stitcher")
//	log.Info("segments assembled", logger.Fields("count", 12))
package logger
