package version

import (
	"strings"
	"testing"
)

func TestString(t *testing.T) {
	if got := String(); !strings.HasPrefix(got, "prebuild dev (") {
		t.Errorf("String() = %q", got)
	}
}

func TestUserAgent(t *testing.T) {
	defer func(v string) { Version = v }(Version)
	Version = "1.2.3"
	if got := UserAgent(); got != "prebuild/1.2.3" {
		t.Errorf("UserAgent() = %q", got)
	}
}
