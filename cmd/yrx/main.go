package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"yarax/internal/config"
	"yarax/internal/logging"
	"yarax/internal/observ"
	"yarax/internal/prof"
	"yarax/internal/version"
)

var rootCmd = &cobra.Command{
	Use:               "yrx",
	Short:             "Compile pattern-matching rules and scan files with them",
	Long:              `yrx compiles rule sources into a portable artifact and runs it against files`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// session is what every command shares once flags and config are resolved.
type session struct {
	cfg   config.Config
	log   zerolog.Logger
	color bool
	timer *observ.Timer
	prof  *prof.Session
}

var app session

// errReported means the diagnostics were already printed; main only sets
// the exit code.
var errReported = errors.New("errors reported")

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(compileCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(versionCmd)

	// Глобальные флаги
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().String("config", "", "path to yrx.toml (default: search upwards from the working directory)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (trace|debug|info|warn|error); overrides "+logging.EnvLevel)
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")
	rootCmd.PersistentFlags().String("cpu-profile", "", "write a CPU profile to file")
	rootCmd.PersistentFlags().String("mem-profile", "", "write a heap profile to file on exit")
	rootCmd.PersistentFlags().String("trace-out", "", "write a runtime execution trace to file")

	err := rootCmd.Execute()
	if perr := app.prof.Stop(); perr != nil {
		fmt.Fprintf(os.Stderr, "failed to write profiles: %v\n", perr)
	}
	if app.timer != nil {
		app.timer.WriteSummary(os.Stderr)
	}
	if err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func setup(cmd *cobra.Command, _ []string) error {
	flags := cmd.Root().PersistentFlags()

	cfgPath, _ := flags.GetString("config")
	var err error
	if cfgPath != "" {
		app.cfg, err = config.Load(cfgPath)
	} else {
		app.cfg, err = config.Discover(".")
	}
	if err != nil {
		return err
	}

	colorFlag, _ := flags.GetString("color")
	switch colorFlag {
	case "on":
		app.color = true
	case "off":
		app.color = false
	case "auto":
		app.color = app.cfg.Compiler.ColorizeErrors && isTerminal(os.Stderr)
	default:
		return fmt.Errorf("invalid --color %q (must be auto, on or off)", colorFlag)
	}

	levelFlag, _ := flags.GetString("log-level")
	app.log, err = logging.New(os.Stderr, logging.ResolveLevel(levelFlag, app.cfg.Log.Level), isTerminal(os.Stderr))
	if err != nil {
		return err
	}
	if app.cfg.Path != "" {
		app.log.Debug().Str("path", app.cfg.Path).Msg("config loaded")
	}

	if timings, _ := flags.GetBool("timings"); timings {
		app.timer = observ.NewTimer()
	}

	var paths prof.Paths
	paths.CPU, _ = flags.GetString("cpu-profile")
	paths.Mem, _ = flags.GetString("mem-profile")
	paths.Trace, _ = flags.GetString("trace-out")
	if paths != (prof.Paths{}) {
		app.prof, err = prof.Start(paths)
		if err != nil {
			return err
		}
	}
	return nil
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
