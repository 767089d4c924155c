package version

import (
	"fmt"
	"runtime"
)

// Set at build time with -ldflags "-X github.com/guarzo/schooladmin/pkg/version.gitCommit=...".
var (
	gitCommit = "unknown"
	buildDate = "unknown"
)

// Info describes the running binary.
type Info struct {
	GitCommit string `json:"gitCommit" yaml:"gitCommit"`
	BuildDate string `json:"buildDate" yaml:"buildDate"`
	GoVersion string `json:"goVersion" yaml:"goVersion"`
	Platform  string `json:"platform" yaml:"platform"`
}

func Get() Info {
	return Info{
		GitCommit: gitCommit,
		BuildDate: buildDate,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

// UserAgent is sent with every API request.
func UserAgent() string {
	return fmt.Sprintf("schooladmin/%s (%s)", gitCommit, runtime.GOOS)
}
