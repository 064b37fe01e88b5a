package config

// Set at link time, for example:
//
//	go build -ldflags "-X paddle/internal/config.version=1.2.3 \
//	    -X paddle/internal/config.commit=$(git rev-parse --short HEAD) \
//	    -X paddle/internal/config.buildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
var (
	version   = "dev"
	commit    = "none"
	buildTime = "unknown"
)

// NewBuildInfo returns the linker-injected build metadata.
func NewBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   version,
		Commit:    commit,
		BuildTime: buildTime,
	}
}

// UserAgentSuffix renders the build as "version (commit)" for User-Agent
// strings.
func (b BuildInfo) UserAgentSuffix() string {
	return b.Version + " (" + b.Commit + ")"
}
