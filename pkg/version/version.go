// Package version holds build metadata for the routerbot binary.
package version

import "fmt"

// Version, GitCommit, and BuildDate are set at build time via ldflags:
//
//	go build -ldflags "-X github.com/routerbot/routerbot/pkg/version.Version=v0.3.0 \
//	  -X github.com/routerbot/routerbot/pkg/version.GitCommit=abc1234 \
//	  -X github.com/routerbot/routerbot/pkg/version.BuildDate=2026-01-01T00:00:00Z"
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Info returns a formatted version string for display.
func Info() string {
	return fmt.Sprintf("%s (%s) built %s", Version, GitCommit, BuildDate)
}

// UserAgent is sent on every RESTCONF request.
func UserAgent() string {
	return "routerbot/" + Version
}
