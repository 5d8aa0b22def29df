// Package version exposes build metadata stamped in with -ldflags.
package version

import (
	"fmt"
	"runtime"
)

// Name is the program name used in output and the User-Agent header
const Name = "cw-sslcheck"

// Build-time variables (set via ldflags)
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Info contains version information
type Info struct {
	Version   string
	GitCommit string
	BuildDate string
	GoVersion string
	OS        string
	Arch      string
}

// GetInfo returns the full version information
func GetInfo() Info {
	return Info{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// String renders the multi-line block printed by the version command
func (i Info) String() string {
	return fmt.Sprintf("%s\n  Version:    %s\n  Commit:     %s\n  Build Date: %s\n  Go Version: %s\n  Platform:   %s/%s",
		Name, i.Version, i.GitCommit, i.BuildDate, i.GoVersion, i.OS, i.Arch)
}

// GetVersion returns just the version string
func GetVersion() string {
	return Version
}

// UserAgent is sent with certificate checks and webhook posts
func UserAgent() string {
	return Name + "/" + Version
}
