package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"yarax/internal/compiler"
)

func compilerOptions(cmd *cobra.Command) []compiler.Option {
	relaxed := app.cfg.Compiler.Relaxed
	if cmd.Flags().Lookup("relaxed") != nil {
		if v, _ := cmd.Flags().GetBool("relaxed"); v {
			relaxed = true
		}
	}
	return []compiler.Option{
		compiler.WithColorizeErrors(app.color),
		compiler.WithLogger(app.log),
		compiler.WithMaxDiagnostics(app.cfg.Compiler.MaxDiagnostics),
		compiler.WithRelaxed(relaxed),
	}
}

// defineConfigGlobals declares the [globals] table of yrx.toml, in name order
// so that identifiers are interned deterministically.
func defineConfigGlobals(c *compiler.Compiler) error {
	names := make([]string, 0, len(app.cfg.Globals))
	for name := range app.cfg.Globals {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if _, err := c.DefineGlobal(name, app.cfg.Globals[name]); err != nil {
			return fmt.Errorf("global %q from %s: %w", name, app.cfg.Path, err)
		}
	}
	return nil
}

// compileSources adds every file to one compiler and builds it. Warnings go
// to stderr; the first error stops compilation.
func compileSources(cmd *cobra.Command, paths []string) (*compiler.Compiler, *compiler.Rules, error) {
	done := app.timer.Start("compile")
	c := compiler.New(compilerOptions(cmd)...)
	if err := defineConfigGlobals(c); err != nil {
		return nil, nil, err
	}
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		before := len(c.Warnings())
		_, addErr := c.AddSource(compiler.SourceCode{Origin: path, Data: data})
		printWarnings(os.Stderr, c.Warnings()[before:])
		if addErr != nil {
			var cerr *compiler.Error
			if errors.As(addErr, &cerr) {
				fmt.Fprint(os.Stderr, cerr.Report)
				return nil, nil, errReported
			}
			return nil, nil, addErr
		}
	}
	rules, err := c.Build()
	if err != nil {
		return nil, nil, err
	}
	done(fmt.Sprintf("%d files, %d rules", len(paths), len(rules.Rules())))
	return c, rules, nil
}

// loadRules accepts either one compiled artifact or rule sources.
func loadRules(cmd *cobra.Command, paths []string) (*compiler.Rules, error) {
	if len(paths) == 1 {
		data, err := os.ReadFile(paths[0])
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", paths[0], err)
		}
		rules, err := compiler.Deserialize(bytes.NewReader(data))
		switch {
		case err == nil:
			app.log.Debug().Str("path", paths[0]).Msg("loaded compiled rules")
			return rules, nil
		case !errors.Is(err, compiler.ErrNotRules):
			return nil, fmt.Errorf("%s: %w", paths[0], err)
		}
	}
	_, rules, err := compileSources(cmd, paths)
	return rules, err
}

func printWarnings(w io.Writer, warnings []compiler.Warning) {
	for _, warn := range warnings {
		fmt.Fprint(w, warn.Report)
	}
}
