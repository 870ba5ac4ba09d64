package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"tukun/internal/version"
)

type versionPayload struct {
	Tool      string `json:"tool"`
	Version   string `json:"version"`
	GitCommit string `json:"git_commit,omitempty"`
	BuildDate string `json:"build_date,omitempty"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show tukun build information",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := cmd.Flags().GetString("format")
		if err != nil {
			return fmt.Errorf("failed to get format flag: %w", err)
		}
		full, err := cmd.Flags().GetBool("full")
		if err != nil {
			return fmt.Errorf("failed to get full flag: %w", err)
		}
		return renderVersion(cmd.OutOrStdout(), strings.ToLower(format), full)
	},
}

func init() {
	versionCmd.Flags().String("format", "pretty", "output format (pretty|short|json)")
	versionCmd.Flags().Bool("full", false, "include commit and build date")
}

func renderVersion(out io.Writer, format string, full bool) error {
	switch format {
	case "short":
		fmt.Fprintln(out, version.Short())
	case "pretty":
		fmt.Fprintf(out, "tukun %s\n", version.Colored())
		if full {
			fmt.Fprintf(out, "commit: %s\n", valueOrUnknown(version.GitCommit))
			fmt.Fprintf(out, "built:  %s\n", valueOrUnknown(version.BuildDate))
		}
	case "json":
		payload := versionPayload{Tool: "tukun", Version: version.Version}
		if full {
			payload.GitCommit = valueOrUnknown(version.GitCommit)
			payload.BuildDate = valueOrUnknown(version.BuildDate)
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(payload)
	default:
		return fmt.Errorf("unsupported format %q (must be pretty, short or json)", format)
	}
	return nil
}

func valueOrUnknown(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return "unknown"
	}
	return s
}
