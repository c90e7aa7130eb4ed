// Package config loads and validates the audioscribe service configuration.
//
// Configuration is layered: config.yml provides the base, a .env file and
// process environment variables override it. LoadConfig searches standard
// locations relative to the working directory, so the service runs unchanged
// from the repository root or from cmd/audioscribe.
package config
