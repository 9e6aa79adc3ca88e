// Package version exposes build information for the /info endpoint and the
// startup banner.
//
// Version, commit and build time are set at compile time via -ldflags:
//
//	go build -ldflags "-X github.com/kbukum/sessionstream/version.Version=1.0.0" ./cmd/sessionstream
//
// Unset values fall back to the VCS stamps of debug.ReadBuildInfo.
package version
