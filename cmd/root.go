// Package cmd implements the tasknest CLI commands.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/twiced-technology-gmbh/tasknest/internal/board"
	"github.com/twiced-technology-gmbh/tasknest/internal/clierr"
	"github.com/twiced-technology-gmbh/tasknest/internal/config"
	"github.com/twiced-technology-gmbh/tasknest/internal/output"
)

// version is set at build time via ldflags.
var version = "dev"

// Global flags.
var (
	flagJSON    bool
	flagYAML    bool
	flagTable   bool
	flagCompact bool
	flagDir     string
	flagSeed    string
	flagNoColor bool
	flagVerbose bool
)

// settings layers environment variables under the persistent flags:
// TASKNEST_DIR, TASKNEST_SEED and TASKNEST_OUTPUT.
var settings = viper.New()

var rootCmd = &cobra.Command{
	Use:   "tasknest",
	Short: "In-memory task manager with subtasks, tags and reminders",
	Long: `tasknest keeps a list of tasks with subtasks, tags, colors and reminders.
Run tasknest to open the interactive list. Use "tasknest shell" for a command
prompt over the same session, or "tasknest run FILE" to replay a script.
Tasks live in memory for the lifetime of the process; a seed file can
preload them.`,
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE:          runTUI,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if settings.GetBool("no_color") {
			output.DisableColor()
		}
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.BoolVar(&flagJSON, "json", false, "output as JSON")
	pf.BoolVar(&flagYAML, "yaml", false, "output as YAML")
	pf.BoolVar(&flagTable, "table", false, "output as table")
	pf.BoolVar(&flagCompact, "compact", false, "compact one-line-per-record output")
	pf.BoolVar(&flagCompact, "oneline", false, "alias for --compact")
	pf.StringVar(&flagDir, "dir", "", "path to the tasknest config directory")
	pf.StringVar(&flagSeed, "seed", "", "YAML file of tasks to preload")
	pf.BoolVar(&flagNoColor, "no-color", false, "disable color output")
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "log at debug level")

	settings.SetEnvPrefix("TASKNEST")
	settings.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	settings.AutomaticEnv()
	_ = settings.BindPFlag("dir", pf.Lookup("dir"))
	_ = settings.BindPFlag("seed", pf.Lookup("seed"))
	_ = settings.BindPFlag("no_color", pf.Lookup("no-color"))
	_ = settings.BindEnv("no_color", "NO_COLOR", "TASKNEST_NO_COLOR")
	_ = settings.BindEnv("output")

	for _, c := range sessionCommands(currentSession) {
		rootCmd.AddCommand(c)
	}
}

// Execute runs the root command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	if code != 0 {
		os.Exit(code)
	}
}

// run executes one CLI invocation and returns the process exit code.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	current = nil
	defer closeSession()

	rootCmd.SetArgs(args)
	rootCmd.SetIn(stdin)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	c, err := rootCmd.ExecuteContextC(ctx)
	if err == nil {
		return 0
	}
	if c == nil {
		c = rootCmd
	}
	return reportError(stdout, stderr, outputFormat(c), err)
}

// reportError prints err the way the active output format expects and
// returns the matching exit code.
func reportError(stdout, stderr io.Writer, format output.Format, err error) int {
	// SilentError: exit with its code, no output.
	var silent *clierr.SilentError
	if errors.As(err, &silent) {
		return silent.Code
	}

	if errors.Is(err, config.ErrInvalid) && clierr.CodeOf(err) == "" {
		err = clierr.New(clierr.InvalidConfig, err.Error())
	}

	if format == output.FormatJSON {
		var cliErr *clierr.Error
		if errors.As(err, &cliErr) {
			output.JSONError(stdout, cliErr.Code, err.Error(), cliErr.Details)
			return cliErr.ExitCode()
		}
		// Anything else is reported as INTERNAL_ERROR.
		output.JSONError(stdout, clierr.InternalError, err.Error(), nil)
		return 2 //nolint:mnd // exit code 2 for internal errors
	}

	fmt.Fprintln(stderr, "Error:", err)
	var cliErr *clierr.Error
	if errors.As(err, &cliErr) {
		return cliErr.ExitCode()
	}
	return 1
}

// resolveDir returns the absolute path to the config directory: --dir or
// TASKNEST_DIR, then the nearest .tasknest upward from the working
// directory, then the per-user config directory.
func resolveDir() (string, error) {
	if dir := settings.GetString("dir"); dir != "" {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return "", fmt.Errorf("resolving path: %w", err)
		}
		return abs, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting working directory: %w", err)
	}

	dir, err := config.FindDir(cwd)
	if err == nil {
		return dir, nil
	}
	return config.UserDir()
}

// loadConfig finds and loads the config. The per-user directory is created
// with defaults on first use; any other missing directory is an error.
func loadConfig() (*config.Config, error) {
	dir, err := resolveDir()
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(dir)
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, config.ErrNotFound) {
		return nil, err
	}

	userDir, userErr := config.UserDir()
	if userErr != nil || dir != userDir {
		return nil, clierr.Newf(clierr.ConfigNotFound, "no tasknest config in %s (run 'tasknest init')", dir).
			WithDetails(map[string]any{"dir": dir})
	}
	return config.Init(userDir)
}

// outputFormat returns the detected output format from the flags visible
// to cmd and TASKNEST_OUTPUT.
func outputFormat(cmd *cobra.Command) output.Format {
	fs := cmd.Flags()
	get := func(name string) bool {
		v, _ := fs.GetBool(name)
		return v
	}
	return output.Detect(get("json"), get("yaml"), get("table"), get("compact"), settings.GetString("output"))
}

// normalizeTaskFlags accepts common aliases on commands that set task fields.
func normalizeTaskFlags(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	switch name {
	case "tag":
		name = "tags"
	case "desc", "body":
		name = "description"
	case "remind", "due":
		name = "reminder"
	}
	return pflag.NormalizedName(name)
}

// parseRefs splits a comma-separated reference argument.
func parseRefs(arg string) ([]string, error) {
	return board.ParseRefs(arg)
}

// runBatch executes fn for each reference and collects results. Returns a
// SilentError with exit code 1 if any operation failed (after outputting
// results).
func runBatch(cmd *cobra.Command, refs []string, fn func(string) error) error {
	results := make([]output.BatchResult, 0, len(refs))
	anyFailed := false

	for _, ref := range refs {
		err := fn(ref)
		if err != nil {
			anyFailed = true
			var cliErr *clierr.Error
			if errors.As(err, &cliErr) {
				results = append(results, output.BatchResult{ID: ref, OK: false, Error: cliErr.Message, Code: cliErr.Code})
			} else {
				results = append(results, output.BatchResult{ID: ref, OK: false, Error: err.Error()})
			}
		} else {
			results = append(results, output.BatchResult{ID: ref, OK: true})
		}
	}

	if format := outputFormat(cmd); format.IsStructured() {
		if err := output.Structured(cmd.OutOrStdout(), format, results); err != nil {
			return err
		}
	} else {
		var succeeded int
		for _, r := range results {
			if r.OK {
				succeeded++
			} else {
				fmt.Fprintf(cmd.ErrOrStderr(), "Error: task %s: %s\n", r.ID, r.Error)
			}
		}
		output.Messagef(cmd.OutOrStdout(), "Completed %d/%d operations", succeeded, len(refs))
	}

	if anyFailed {
		return &clierr.SilentError{Code: 1}
	}
	return nil
}
