// Package version provides version information for the gold-forecast-bot application.
package version

// Version is the current version of the gold-forecast-bot application.
const Version = "1.0.0"

// AgentString returns the full agent string with versioning.
// Format: gold-forecast-bot@v{version}
func AgentString() string {
	return "gold-forecast-bot@v" + Version
}
