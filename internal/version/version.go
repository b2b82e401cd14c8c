// ABOUTME: Version constants
// ABOUTME: Product identification reported in logs and the autostart entry
package version

const (
	// Product is the tool name.
	Product = "keepaudio"
	// Manufacturer identifies the project.
	Manufacturer = "keepaudio project"
	// Version is the semantic version of this build.
	Version = "0.2.0"
)
