// Package util provides small shared helpers.
package util
