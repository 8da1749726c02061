// Package version resolves the application version from build metadata.
package version

import (
	"runtime/debug"
	"strings"
)

const (
	unknownVersionFallbackConstant = "unknown"
	develVersionValueConstant      = "devel"
)

// BuildInfoProvider exposes runtime build metadata.
type BuildInfoProvider interface {
	Read() (*debug.BuildInfo, bool)
}

type runtimeBuildInfoProvider struct{}

func (runtimeBuildInfoProvider) Read() (*debug.BuildInfo, bool) {
	return debug.ReadBuildInfo()
}

// Detector resolves application version strings.
type Detector struct {
	buildInfoProvider BuildInfoProvider
}

// NewDetector constructs a Detector backed by the supplied provider or the runtime default.
func NewDetector(buildInfoProvider BuildInfoProvider) *Detector {
	if buildInfoProvider == nil {
		buildInfoProvider = runtimeBuildInfoProvider{}
	}
	return &Detector{buildInfoProvider: buildInfoProvider}
}

// Version returns the module version recorded in the binary's build metadata.
//
// Binaries built outside module resolution report the unknown fallback.
func (detector *Detector) Version() string {
	if detector == nil || detector.buildInfoProvider == nil {
		return unknownVersionFallbackConstant
	}

	buildInfo, available := detector.buildInfoProvider.Read()
	if !available || buildInfo == nil {
		return unknownVersionFallbackConstant
	}

	moduleVersion := strings.TrimSpace(buildInfo.Main.Version)
	if len(moduleVersion) == 0 {
		return unknownVersionFallbackConstant
	}
	if strings.Contains(moduleVersion, develVersionValueConstant) {
		return unknownVersionFallbackConstant
	}

	return moduleVersion
}
