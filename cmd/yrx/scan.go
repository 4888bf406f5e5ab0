package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"yarax/internal/compiler"
	"yarax/internal/scanner"
	"yarax/internal/ui"
)

var scanCmd = &cobra.Command{
	Use:   "scan [flags] <rules> <target>...",
	Short: "Scan files or directories with rules",
	Long: `Rules are a rule source or a compiled artifact produced by "yrx compile".
A directory target is walked recursively and every regular file is scanned.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringArrayP("define", "d", nil, "set an external variable (name=value)")
	scanCmd.Flags().IntP("jobs", "j", 0, "files scanned in parallel (default: config or number of CPUs)")
	scanCmd.Flags().Int64("timeout-ms", 0, "per-file scan timeout in milliseconds (0 = config value)")
	scanCmd.Flags().String("output-format", "", "output format (text|json|yaml)")
	scanCmd.Flags().Bool("print-tags", false, "print rule tags")
	scanCmd.Flags().Bool("print-meta", false, "print rule metadata")
	scanCmd.Flags().Bool("print-patterns", false, "print pattern matches")
	scanCmd.Flags().Bool("progress", false, "show live progress on a terminal")
	scanCmd.Flags().Bool("relaxed", false, "do not warn about non-boolean conditions")
}

// fileResult is the report for one scanned file.
type fileResult struct {
	Path  string                 `json:"path" yaml:"path"`
	Rules []scanner.MatchingRule `json:"rules" yaml:"rules"`
	Error string                 `json:"error,omitempty" yaml:"error,omitempty"`
}

func (r fileResult) event() ui.Event {
	if r.Error != "" {
		return ui.Event{File: r.Path, Status: ui.StatusError, Err: errors.New(r.Error)}
	}
	return ui.Event{File: r.Path, Status: ui.StatusDone, Matches: len(r.Rules)}
}

type scanOutput struct {
	format        string
	printTags     bool
	printMeta     bool
	printPatterns bool
}

func runScan(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	defines, _ := flags.GetStringArray("define")
	jobs, _ := flags.GetInt("jobs")
	timeoutMS, _ := flags.GetInt64("timeout-ms")

	out := scanOutput{format: app.cfg.Scan.OutputFormat}
	if f, _ := flags.GetString("output-format"); f != "" {
		out.format = f
	}
	switch out.format {
	case "", "text":
		out.format = "text"
	case "json", "yaml":
	default:
		return fmt.Errorf("unknown output format %q (must be text, json or yaml)", out.format)
	}
	out.printTags, _ = flags.GetBool("print-tags")
	out.printTags = out.printTags || app.cfg.Scan.PrintTags
	out.printMeta, _ = flags.GetBool("print-meta")
	out.printMeta = out.printMeta || app.cfg.Scan.PrintMeta
	out.printPatterns, _ = flags.GetBool("print-patterns")

	if jobs <= 0 {
		jobs = app.cfg.Scan.Jobs
	}
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	timeout := app.cfg.Scan.Timeout()
	if timeoutMS > 0 {
		timeout = time.Duration(timeoutMS) * time.Millisecond
	}

	vars := make([]define, 0, len(defines))
	for _, d := range defines {
		v, err := parseDefine(d)
		if err != nil {
			return err
		}
		vars = append(vars, v)
	}

	rules, err := loadRules(cmd, args[:1])
	if err != nil {
		return err
	}
	var files []string
	seen := make(map[string]bool)
	for _, target := range args[1:] {
		found, err := collectTargets(target)
		if err != nil {
			return err
		}
		for _, f := range found {
			if !seen[f] {
				seen[f] = true
				files = append(files, f)
			}
		}
	}
	// проверяем -d один раз до запуска воркеров
	if _, err := newScanner(rules, vars, timeout); err != nil {
		return err
	}

	progress, _ := flags.GetBool("progress")
	done := app.timer.Start("scan")
	results := make([]fileResult, len(files))
	work := func(sink ui.Sink) error {
		g, ctx := errgroup.WithContext(cmd.Context())
		g.SetLimit(jobs)
		for i, path := range files {
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				s, err := newScanner(rules, vars, timeout)
				if err != nil {
					return err
				}
				sink.OnEvent(ui.Event{File: path, Status: ui.StatusScanning})
				results[i] = scanFile(ctx, s, path)
				sink.OnEvent(results[i].event())
				return nil
			})
		}
		return g.Wait()
	}
	if progress && isTerminal(os.Stderr) {
		err = ui.RunProgress(os.Stderr, "scanning", files, work)
	} else {
		err = work(ui.NopSink{})
	}
	if err != nil {
		return err
	}
	done(fmt.Sprintf("%d files", len(files)))

	if err := out.write(os.Stdout, results); err != nil {
		return err
	}
	for _, r := range results {
		if r.Error != "" {
			return errReported
		}
	}
	return nil
}

func newScanner(rules *compiler.Rules, vars []define, timeout time.Duration) (*scanner.Scanner, error) {
	s := scanner.New(rules, scanner.WithLogger(app.log), scanner.WithTimeout(timeout))
	for _, v := range vars {
		if err := s.SetGlobal(v.name, v.value); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func scanFile(ctx context.Context, s *scanner.Scanner, path string) fileResult {
	res := fileResult{Path: path}
	data, err := os.ReadFile(path)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	scanned, err := s.ScanContext(ctx, data)
	if err != nil {
		res.Error = err.Error()
		app.log.Warn().Str("path", path).Err(err).Msg("scan failed")
		return res
	}
	res.Rules = scanned.MatchingRules()
	return res
}

// collectTargets returns target itself or, for a directory, all regular
// files below it in lexical order.
func collectTargets(target string) ([]string, error) {
	info, err := os.Stat(target)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{target}, nil
	}
	var files []string
	err = filepath.WalkDir(target, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrPermission) {
				app.log.Warn().Str("path", path).Msg("permission denied, skipped")
				return nil
			}
			return err
		}
		if d.Type().IsRegular() {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

type define struct {
	name  string
	value any
}

// parseDefine reads name=value. Values are tried as bool, integer and float;
// anything else, or a double-quoted value, is a string.
func parseDefine(s string) (define, error) {
	name, raw, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return define{}, fmt.Errorf("invalid define %q (expected name=value)", s)
	}
	if unq, err := strconv.Unquote(raw); err == nil && strings.HasPrefix(raw, `"`) {
		return define{name, unq}, nil
	}
	if raw == "true" || raw == "false" {
		return define{name, raw == "true"}, nil
	}
	if i, err := strconv.ParseInt(raw, 0, 64); err == nil {
		return define{name, i}, nil
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return define{name, f}, nil
	}
	return define{name, raw}, nil
}

func (o scanOutput) write(w io.Writer, results []fileResult) error {
	switch o.format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(o.trim(results))
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(o.trim(results)); err != nil {
			return err
		}
		return enc.Close()
	}
	for _, r := range results {
		if r.Error != "" {
			fmt.Fprintf(os.Stderr, "error: %s: %s\n", r.Path, r.Error)
			continue
		}
		for _, mr := range r.Rules {
			fmt.Fprintln(w, o.textLine(mr, r.Path))
			if o.printPatterns {
				for _, p := range mr.Patterns {
					for _, m := range p.Matches {
						fmt.Fprintf(w, "0x%x:%d:%s\n", m.Offset, m.Length, p.Ident)
					}
				}
			}
		}
	}
	return nil
}

// textLine formats "namespace:rule [tags] [meta] path"; the default
// namespace is omitted.
func (o scanOutput) textLine(mr scanner.MatchingRule, path string) string {
	var sb strings.Builder
	if mr.Namespace != compiler.DefaultNamespace {
		sb.WriteString(mr.Namespace)
		sb.WriteByte(':')
	}
	sb.WriteString(mr.Name)
	if o.printTags {
		fmt.Fprintf(&sb, " [%s]", strings.Join(mr.Tags, ","))
	}
	if o.printMeta {
		parts := make([]string, 0, len(mr.Meta))
		for _, m := range mr.Meta {
			if s, ok := m.Value.(string); ok {
				parts = append(parts, fmt.Sprintf("%s=%q", m.Key, s))
			} else {
				parts = append(parts, fmt.Sprintf("%s=%v", m.Key, m.Value))
			}
		}
		fmt.Fprintf(&sb, " [%s]", strings.Join(parts, ","))
	}
	sb.WriteByte(' ')
	sb.WriteString(path)
	return sb.String()
}

// trim drops the fields not asked for from structured output.
func (o scanOutput) trim(results []fileResult) []fileResult {
	out := make([]fileResult, len(results))
	for i, r := range results {
		out[i] = r
		out[i].Rules = make([]scanner.MatchingRule, len(r.Rules))
		for j, mr := range r.Rules {
			if !o.printTags {
				mr.Tags = nil
			}
			if !o.printMeta {
				mr.Meta = nil
			}
			if !o.printPatterns {
				mr.Patterns = nil
			}
			out[i].Rules[j] = mr
		}
	}
	return out
}
