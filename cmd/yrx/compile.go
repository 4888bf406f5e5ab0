package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var compileCmd = &cobra.Command{
	Use:   "compile [flags] <rules>...",
	Short: "Compile rule sources into a rules artifact",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCompile,
}

func init() {
	compileCmd.Flags().StringP("output", "o", "rules.yrc", "output file for compiled rules")
	compileCmd.Flags().String("emit-wasm", "", "also write the binary module to this file")
	compileCmd.Flags().Bool("relaxed", false, "do not warn about non-boolean conditions")
}

func runCompile(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")
	wasmOut, _ := cmd.Flags().GetString("emit-wasm")

	c, rules, err := compileSources(cmd, args)
	if err != nil {
		return err
	}

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", output, err)
	}
	if err := rules.Serialize(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	app.log.Info().Str("path", output).Int("rules", len(rules.Rules())).Msg("rules written")

	if wasmOut != "" {
		if _, err := c.EmitWasmFile(wasmOut); err != nil {
			return fmt.Errorf("failed to write %s: %w", wasmOut, err)
		}
	}
	return nil
}
