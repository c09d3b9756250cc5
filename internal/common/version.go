package common

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// ServiceName identifies this service in banners, health payloads, and logs.
const ServiceName = "fvs-server"

// Build metadata injected via -ldflags at release time. Local builds fall
// back to the .version file the build script writes next to the binary.
var (
	Version   = "dev"
	Build     = "unknown"
	GitCommit = "unknown"
)

// BuildInfo bundles the build metadata served by the version endpoint.
type BuildInfo struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Build   string `json:"build"`
	Commit  string `json:"commit"`
}

// VersionInfo returns the current build metadata.
func VersionInfo() BuildInfo {
	return BuildInfo{
		Service: ServiceName,
		Version: Version,
		Build:   Build,
		Commit:  GitCommit,
	}
}

// GetVersion returns the semantic version string.
func GetVersion() string {
	return Version
}

// LoadVersionFromFile fills build metadata from the .version file beside
// the binary, when one exists.
func LoadVersionFromFile() {
	exe, err := os.Executable()
	if err != nil {
		return
	}
	applyVersionFile(filepath.Join(filepath.Dir(exe), ".version"))
}

// applyVersionFile reads "key: value" lines (version, build, commit) and
// applies them only to fields still at their defaults, so ldflags-injected
// values always win over the file.
func applyVersionFile(path string) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, val, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		val = strings.TrimSpace(val)
		if val == "" {
			continue
		}
		switch key {
		case "version":
			if Version == "dev" {
				Version = val
			}
		case "build":
			if Build == "unknown" {
				Build = val
			}
		case "commit":
			if GitCommit == "unknown" {
				GitCommit = val
			}
		}
	}
}
