package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"yarax/internal/compiler"
	"yarax/internal/diag"
	"yarax/internal/diagfmt"
	"yarax/internal/source"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] <rules>...",
	Short: "Check rule sources for errors without writing anything",
	Long: `Each file is compiled on its own so that one broken file does not hide errors in the others.
With --format json one JSON document is printed per file.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().Bool("relaxed", false, "do not warn about non-boolean conditions")
	checkCmd.Flags().Bool("quiet", false, "print nothing for files without diagnostics")
	checkCmd.Flags().String("format", "pretty", "diagnostics format (pretty|short|json)")
	checkCmd.Flags().String("fail-on", "error", "lowest severity that fails a file (warning|error)")
}

// checkReport is what compiling one file produced.
type checkReport struct {
	path     string
	fs       *source.FileSet
	diags    []diag.Diagnostic
	rendered []string
	failed   bool
}

func runCheck(cmd *cobra.Command, args []string) error {
	quiet, _ := cmd.Flags().GetBool("quiet")
	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "pretty", "short", "json":
	default:
		return fmt.Errorf("unknown format %q (must be pretty, short or json)", format)
	}

	failOnFlag, _ := cmd.Flags().GetString("fail-on")
	failOn, ok := diag.ParseSeverity(failOnFlag)
	if !ok || failOn == diag.SevInfo {
		return fmt.Errorf("unknown severity %q (must be warning or error)", failOnFlag)
	}

	done := app.timer.Start("check")
	failed := 0
	for _, path := range args {
		rep, err := checkFile(cmd, path, failOn)
		if err != nil {
			return err
		}
		if rep.failed {
			failed++
		}
		if err := rep.write(os.Stdout, os.Stderr, format, quiet); err != nil {
			return err
		}
	}
	done(fmt.Sprintf("%d files", len(args)))
	if failed > 0 {
		fmt.Fprintf(os.Stderr, "%d of %d files failed\n", failed, len(args))
		return errReported
	}
	return nil
}

// checkFile compiles path alone; the file fails on a compile error or on
// any diagnostic at failOn or above.
func checkFile(cmd *cobra.Command, path string, failOn diag.Severity) (checkReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return checkReport{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	c := compiler.New(compilerOptions(cmd)...)
	if err := defineConfigGlobals(c); err != nil {
		return checkReport{}, err
	}
	_, addErr := c.AddSource(compiler.SourceCode{Origin: path, Data: data})

	rep := checkReport{path: path, fs: c.FileSet()}
	for _, w := range c.Warnings() {
		rep.diags = append(rep.diags, w.Diagnostic)
		rep.rendered = append(rep.rendered, w.Report)
	}
	if addErr != nil {
		var cerr *compiler.Error
		if !errors.As(addErr, &cerr) {
			return checkReport{}, addErr
		}
		rep.failed = true
		rep.diags = append(rep.diags, cerr.Diagnostic)
		rep.rendered = append(rep.rendered, cerr.Report)
	}
	for _, d := range rep.diags {
		if d.Severity >= failOn {
			rep.failed = true
		}
	}
	return rep, nil
}

// write prints diagnostics to errOut, or JSON to out.
func (r checkReport) write(out, errOut io.Writer, format string, quiet bool) error {
	switch format {
	case "json":
		return diagfmt.JSON(out, r.diags, r.fs, diagfmt.JSONOpts{
			IncludePositions: true,
			IncludeNotes:     true,
		})
	case "short":
		if len(r.diags) > 0 {
			fmt.Fprintln(errOut, diag.FormatShort(r.diags, r.fs))
		}
	default:
		for _, s := range r.rendered {
			fmt.Fprint(errOut, s)
		}
	}
	if len(r.diags) == 0 && !quiet {
		fmt.Fprintf(out, "%s: ok\n", r.path)
	}
	return nil
}
