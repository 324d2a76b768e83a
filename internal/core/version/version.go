// Package version holds the build version, set at link time with
// -ldflags "-X github.com/guiyumin/linkbot/internal/core/version.Version=1.2.3".
package version

var Version = "dev"
