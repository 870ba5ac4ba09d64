package version

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Build metadata. Override at link time, e.g.
// -ldflags "-X tukun/internal/version.GitCommit=$(git rev-parse HEAD)".
var (
	// Version is the semantic version of the tukun tool.
	Version = "0.1.0-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

var (
	majorColor = color.New(color.FgYellow, color.Bold)
	minorColor = color.New(color.FgGreen, color.Bold)
	patchColor = color.New(color.FgBlue, color.Bold)
)

// Colored renders Version with each numeric component highlighted. Any
// pre-release suffix is left plain; versions that are not x.y.z come back
// unchanged.
func Colored() string {
	core, suffix, _ := strings.Cut(Version, "-")
	parts := strings.Split(core, ".")
	if len(parts) != 3 {
		return Version
	}
	out := majorColor.Sprint(parts[0]) + "." + minorColor.Sprint(parts[1]) + "." + patchColor.Sprint(parts[2])
	if suffix != "" {
		out += "-" + suffix
	}
	return out
}

// Short is "tukun <version>".
func Short() string { return fmt.Sprintf("tukun %s", Version) }
