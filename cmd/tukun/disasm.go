package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"tukun/internal/bytecode"
	"tukun/internal/module"
)

var disasmCmd = &cobra.Command{
	Use:   "disasm [flags] <module.tkm>",
	Short: "Print a listing of every function in a module",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fnName, err := cmd.Flags().GetString("function")
		if err != nil {
			return fmt.Errorf("failed to get function flag: %w", err)
		}
		def, err := module.ReadFile(args[0])
		if err != nil {
			return err
		}
		return disassemble(cmd.OutOrStdout(), def, fnName)
	},
}

func init() {
	disasmCmd.Flags().String("function", "", "only list this function")
}

// disassemble lists the functions of def, or only fnName when set.
func disassemble(w io.Writer, def *module.ModuleDef, fnName string) error {
	pool := def.RenderedPool()
	found := false
	for _, f := range def.Functions {
		if fnName != "" && f.Name != fnName {
			continue
		}
		found = true
		if err := bytecode.Disassemble(w, def.Name+"."+f.Name, f.Body, pool); err != nil {
			return err
		}
	}
	if fnName != "" && !found {
		return fmt.Errorf("module %s has no function %s", def.Name, fnName)
	}
	return nil
}
