package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"yarax/internal/diag"
	"yarax/internal/diagfmt"
	"yarax/internal/lexer"
	"yarax/internal/source"
	"yarax/internal/token"
)

var dumpCmd = &cobra.Command{
	Use:   "dump [flags] <rules>...",
	Short: "Print the compiled module of rules",
	Long: `Dump disassembles the module produced for the given rule sources or compiled artifact.
With --tokens the first file is only lexed and its tokens are printed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDump,
}

func init() {
	dumpCmd.Flags().Bool("tokens", false, "print lexer tokens instead of the module")
	dumpCmd.Flags().Bool("relaxed", false, "do not warn about non-boolean conditions")
}

func runDump(cmd *cobra.Command, args []string) error {
	if tokens, _ := cmd.Flags().GetBool("tokens"); tokens {
		return dumpTokens(args[0])
	}

	rules, err := loadRules(cmd, args)
	if err != nil {
		return err
	}
	m := rules.Module()
	fmt.Fprintf(os.Stdout, ";; rules: %d, patterns: %d, literals: %d, instructions: %d\n",
		len(rules.Rules()), len(rules.Patterns()), len(m.Literals), m.InstrCount())
	return m.Disassemble(os.Stdout)
}

func dumpTokens(path string) error {
	fs := source.NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	bag := diag.NewBag(app.cfg.Compiler.MaxDiagnostics)
	lx := lexer.New(fs.Get(id), lexer.Options{Reporter: &diag.BagReporter{Bag: bag}})

	var toks []token.Token
	for {
		tok := lx.Next()
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			break
		}
	}

	// Выводим диагностику в stderr, если есть
	if bag.Len() > 0 {
		bag.Sort()
		diagfmt.Pretty(os.Stderr, bag, fs, diagfmt.PrettyOpts{Color: app.color, Context: 1, ShowNotes: true})
	}
	if err := diagfmt.FormatTokensPretty(os.Stdout, toks, fs); err != nil {
		return err
	}
	if bag.HasErrors() {
		return errReported
	}
	return nil
}
