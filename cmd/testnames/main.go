package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/unbound-force/testnames/internal/assertion"
	"github.com/unbound-force/testnames/internal/config"
	"github.com/unbound-force/testnames/internal/engine"
	"github.com/unbound-force/testnames/internal/javasrc"
	"github.com/unbound-force/testnames/internal/loader"
	"github.com/unbound-force/testnames/internal/logging"
	"github.com/unbound-force/testnames/internal/model"
	"github.com/unbound-force/testnames/internal/project"
	"github.com/unbound-force/testnames/internal/report"
	"github.com/unbound-force/testnames/internal/rules"
)

// logger is the application-wide structured logger (writes to stderr).
var logger = charmlog.NewWithOptions(os.Stderr, charmlog.Options{
	ReportTimestamp: false,
})

// Set by build flags.
var version = "dev"

func main() {
	var logLevel string

	root := &cobra.Command{
		Use:   "testnames",
		Short: "testnames checks the naming and assertion quality of tests",
		Long: `testnames inspects Go and Java test suites and reports test
names that are not written in present simple, test names that mention
the word "test", assertions without a human-readable explanation and
test classes without a production class.`,
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := logging.New(os.Stderr, logLevel)
			if err != nil {
				return err
			}
			logger = l
			return nil
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"log level: debug, info, warn, or error")

	root.AddCommand(newCheckCmd())
	root.AddCommand(newRulesCmd())
	root.AddCommand(newSchemaCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// checkParams holds the parsed flags for the check command.
type checkParams struct {
	ctx           context.Context
	patterns      []string
	lang          string
	format        string
	cfg           *config.Config
	maxComplaints int
	verbose       bool
	interactive   bool
	stdout        io.Writer
	stderr        io.Writer
}

// runCheck is the extracted, testable body of the check command.
func runCheck(p checkParams) error {
	if p.format != "text" && p.format != "json" {
		return fmt.Errorf("invalid format %q: must be 'text' or 'json'", p.format)
	}
	if p.lang != string(model.LanguageGo) && p.lang != string(model.LanguageJava) {
		return fmt.Errorf("invalid language %q: must be 'go' or 'java'", p.lang)
	}
	if p.ctx == nil {
		p.ctx = context.Background()
	}
	if p.cfg == nil {
		p.cfg = config.DefaultConfig()
	}
	ctx := logging.WithLogger(p.ctx, logger)

	table, err := loadTable(p.cfg.Assertions.Table)
	if err != nil {
		return err
	}

	start := time.Now()
	loaded, err := loadProject(ctx, p.lang, p.patterns, p.cfg)
	if err != nil {
		return err
	}
	proj := project.WithoutFrameworkExtensions(loaded)
	skipped := len(loaded.TestClasses()) - len(proj.TestClasses())
	logger.Info("project loaded",
		logging.FieldLanguage, p.lang,
		logging.FieldClasses, len(proj.TestClasses()))

	reg := rules.DefaultRegistry()
	enabled := p.cfg.EnabledRules(reg.DefaultEnabled())
	logger.Debug("running rules",
		logging.FieldRules, enabled,
		logging.FieldJobs, p.cfg.Jobs)
	res, err := engine.Run(ctx, proj, engine.Options{
		Jobs:          p.cfg.Jobs,
		Enabled:       enabled,
		Registry:      reg,
		Table:         table,
		MaxComplexity: p.cfg.Rules.MaxComplexity,
		Logger:        logger,
	})
	if err != nil {
		return err
	}
	logger.Info("check complete",
		logging.FieldCases, res.Cases(),
		logging.FieldComplaints, res.Count())

	rep := report.New(res, version, time.Since(start))
	if len(proj.TestClasses()) == 0 {
		rep.Warn("no test classes found")
	}
	if skipped > 0 {
		rep.Warn("skipped %d framework extension class(es)", skipped)
	}
	for _, w := range rep.Metadata.Warnings {
		logger.Warn(w)
	}

	if p.interactive {
		if err := runInteractiveCheck(rep); err != nil {
			return err
		}
	} else if err := writeReport(p.stdout, p.format, rep, p.verbose); err != nil {
		return err
	}

	printCISummary(p.stderr, rep, p.maxComplaints)
	return checkMaxComplaints(rep, p.maxComplaints)
}

// loadTable returns the assertion table at path, or the embedded one.
func loadTable(path string) (*assertion.Table, error) {
	if path == "" {
		return assertion.DefaultTable()
	}
	return assertion.LoadTable(path)
}

// loadProject builds the project model for lang. Go patterns default
// to "./..."; Java takes a single source root defaulting to ".".
func loadProject(ctx context.Context, lang string, patterns []string, cfg *config.Config) (model.Project, error) {
	logger.Debug("loading project", logging.FieldPatterns, patterns)
	if lang == string(model.LanguageJava) {
		root := "."
		if len(patterns) > 0 {
			root = patterns[0]
		}
		if len(patterns) > 1 {
			return nil, fmt.Errorf("java takes a single source root, got %d", len(patterns))
		}
		return javasrc.LoadProject(ctx, root, javasrc.Options{
			Include:    cfg.Scan.Include,
			Exclude:    cfg.Scan.Exclude,
			Timeout:    cfg.Scan.Timeout,
			Namespaces: cfg.ExtensionNamespaces,
			Jobs:       cfg.Jobs,
		})
	}
	return loader.LoadProject(patterns, loader.Options{
		Namespaces: cfg.ExtensionNamespaces,
	})
}

// writeReport outputs the report in the requested format.
func writeReport(w io.Writer, format string, rep *report.JSONReport, verbose bool) error {
	switch format {
	case "json":
		return report.WriteJSON(w, rep)
	default:
		return report.WriteText(w, rep, report.TextOptions{Verbose: verbose})
	}
}

// printCISummary prints a one-line CI summary to stderr when a
// threshold is set.
func printCISummary(w io.Writer, rep *report.JSONReport, maxComplaints int) {
	if maxComplaints < 0 {
		return
	}
	status := "PASS"
	if rep.Summary.Complaints > maxComplaints {
		status = "FAIL"
	}
	fmt.Fprintf(w, "Complaints: %d/%d (%s)\n", rep.Summary.Complaints, maxComplaints, status)
}

// checkMaxComplaints returns an error if the complaint count exceeds
// maxComplaints. A negative maximum disables the check.
func checkMaxComplaints(rep *report.JSONReport, maxComplaints int) error {
	if maxComplaints >= 0 && rep.Summary.Complaints > maxComplaints {
		return fmt.Errorf("%d complaint(s) exceed maximum %d",
			rep.Summary.Complaints, maxComplaints)
	}
	return nil
}

// loadConfig reads the config file and applies CLI overrides. Negative
// values and nil slices leave the file values in place.
func loadConfig(path string, maxComplexity, jobs int, enable, disable []string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if maxComplexity >= 0 {
		cfg.Rules.MaxComplexity = maxComplexity
	}
	if jobs >= 0 {
		cfg.Jobs = jobs
	}
	cfg.Rules.Enable = append(cfg.Rules.Enable, enable...)
	cfg.Rules.Disable = append(cfg.Rules.Disable, disable...)

	if err := validateRuleIDs(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validateRuleIDs(cfg *config.Config) error {
	reg := rules.DefaultRegistry()
	for _, ids := range [][]string{cfg.Rules.Enable, cfg.Rules.Disable} {
		for _, id := range ids {
			if _, ok := reg.Definition(id); !ok {
				return fmt.Errorf("unknown rule %q (see 'testnames rules')", id)
			}
		}
	}
	return nil
}

func newCheckCmd() *cobra.Command {
	var (
		lang          string
		format        string
		configPath    string
		enable        []string
		disable       []string
		maxComplexity int
		maxComplaints int
		jobs          int
		verbose       bool
		interactive   bool
	)

	cmd := &cobra.Command{
		Use:   "check [packages... | source-root]",
		Short: "Check test names and assertions",
		Long: `Check the tests of Go packages (default "./...") or of a Java
source tree (--lang=java, default ".") and report every complaint
raised by the enabled rules.

Exits with an error when the number of complaints exceeds
--max-complaints.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath, maxComplexity, jobs, enable, disable)
			if err != nil {
				return err
			}
			return runCheck(checkParams{
				ctx:           cmd.Context(),
				patterns:      args,
				lang:          lang,
				format:        format,
				cfg:           cfg,
				maxComplaints: maxComplaints,
				verbose:       verbose,
				interactive:   interactive,
				stdout:        os.Stdout,
				stderr:        os.Stderr,
			})
		},
	}

	cmd.Flags().StringVar(&lang, "lang", "go",
		"source language: go or java")
	cmd.Flags().StringVar(&format, "format", "text",
		"output format: text or json")
	cmd.Flags().StringVar(&configPath, "config", "",
		"path to config file (default: "+config.FileName+" if present)")
	cmd.Flags().StringSliceVar(&enable, "enable", nil,
		"enable additional rules by ID")
	cmd.Flags().StringSliceVar(&disable, "disable", nil,
		"disable rules by ID")
	cmd.Flags().IntVar(&maxComplexity, "max-complexity", -1,
		"simple-test-case complexity limit (default: from config)")
	cmd.Flags().IntVar(&maxComplaints, "max-complaints", 0,
		"fail if complaints exceed this (-1 = no limit)")
	cmd.Flags().IntVarP(&jobs, "jobs", "j", -1,
		"classes checked concurrently (default: from config, 0 = one per CPU)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false,
		"also list classes without complaints")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false,
		"launch interactive TUI for browsing results")

	return cmd
}

// rulesParams holds the parsed flags for the rules command.
type rulesParams struct {
	format string
	stdout io.Writer
}

// runRules is the extracted, testable body of the rules command.
func runRules(p rulesParams) error {
	defs := rules.DefaultRegistry().Definitions()
	switch p.format {
	case "json":
		enc := json.NewEncoder(p.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(defs)
	case "text":
		return report.WriteRules(p.stdout, defs)
	default:
		return fmt.Errorf("invalid format %q: must be 'text' or 'json'", p.format)
	}
}

func newRulesCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List the available rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRules(rulesParams{
				format: format,
				stdout: cmd.OutOrStdout(),
			})
		},
	}
	cmd.Flags().StringVar(&format, "format", "text",
		"output format: text or json")
	return cmd
}

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema for check output",
		Long: `Print the JSON Schema (Draft 2020-12) that documents the
structure of testnames check --format=json output. Useful for
validating output or generating client types.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), report.Schema)
			return err
		},
	}
}
