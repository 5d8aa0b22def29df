package version

import (
	"runtime"
	"strings"
	"testing"
)

func TestUserAgent(t *testing.T) {
	old := Version
	Version = "1.4.0"
	t.Cleanup(func() { Version = old })

	if got := UserAgent(); got != "cw-sslcheck/1.4.0" {
		t.Errorf("UserAgent() = %q, want cw-sslcheck/1.4.0", got)
	}
}

func TestInfoString(t *testing.T) {
	info := GetInfo()
	s := info.String()

	if !strings.HasPrefix(s, "cw-sslcheck\n") {
		t.Errorf("String() = %q, want program name first", s)
	}
	if !strings.Contains(s, runtime.GOOS+"/"+runtime.GOARCH) {
		t.Errorf("String() = %q, want platform", s)
	}
	if info.GoVersion != runtime.Version() {
		t.Errorf("GoVersion = %q, want %q", info.GoVersion, runtime.Version())
	}
}
