package version

import (
	"strings"
	"testing"
)

func TestGetReportsVersion(t *testing.T) {
	info := Get()
	if info.Version != Version {
		t.Errorf("Version = %s, want %s", info.Version, Version)
	}
}

func TestShortStartsWithVersion(t *testing.T) {
	if !strings.HasPrefix(Short(), Version) {
		t.Errorf("Short() = %s, want %s prefix", Short(), Version)
	}
}
