package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"tukun/internal/config"
)

// project is the tukun.toml in effect for the current command, or nil.
var project *config.Project

func loadProject(cmd *cobra.Command) (*config.Project, error) {
	project = nil
	flags := cmd.Root().PersistentFlags()
	skip, err := flags.GetBool("no-config")
	if err != nil {
		return nil, fmt.Errorf("failed to get no-config flag: %w", err)
	}
	if skip {
		return nil, nil
	}
	path, err := flags.GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}

	var p *config.Project
	if path != "" {
		p, err = config.Load(path)
	} else {
		p, _, err = config.Discover(".")
	}
	if err != nil {
		return nil, err
	}
	project = p
	return p, nil
}

// setting returns the flag value unless the flag was left at its default
// and the project file sets the key.
func setting[T any](flags *pflag.FlagSet, name string, get func(string) (T, error), fromConfig func(*config.Project) (T, bool)) (T, error) {
	v, err := get(name)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("failed to get %s flag: %w", name, err)
	}
	if !flags.Changed(name) && project != nil {
		if cv, ok := fromConfig(project); ok {
			return cv, nil
		}
	}
	return v, nil
}
