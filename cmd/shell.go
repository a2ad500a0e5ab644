package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-shellwords"
	"github.com/spf13/cobra"
)

const shellPrompt = "tasknest> "

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Run task commands interactively against one session",
	Long: `Reads commands line by line and runs them against a single in-memory
session, so tasks added on one line are visible on the next. Lines are split
like a POSIX shell; "exit" or end of input leaves the shell.`,
	Args: cobra.NoArgs,
	RunE: runShell,
}

var runCmd = &cobra.Command{
	Use:   "run FILE",
	Short: "Run a script of task commands",
	Long: `Runs each line of FILE as a task command against one session. Blank lines
and lines starting with # are skipped. The first failing line stops the script.
Use - to read the script from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: runScript,
}

func init() {
	rootCmd.AddCommand(shellCmd)
	rootCmd.AddCommand(runCmd)
}

func runShell(cmd *cobra.Command, _ []string) error {
	s, err := currentSession(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()

	for ctx.Err() == nil {
		if s.interactive {
			fmt.Fprint(stderr, shellPrompt)
		}
		line, readErr := s.in.ReadString('\n')
		if line != "" {
			stop, err := execLine(ctx, s, line, stdout, stderr)
			if stop {
				return nil
			}
			if err != nil {
				var lineErr *lineError
				if errors.As(err, &lineErr) {
					reportError(stdout, stderr, outputFormat(lineErr.cmd), lineErr.err)
				} else {
					reportError(stdout, stderr, outputFormat(cmd), err)
				}
			}
		}
		if errors.Is(readErr, io.EOF) {
			if s.interactive {
				fmt.Fprintln(stderr)
			}
			return nil
		}
		if readErr != nil {
			return fmt.Errorf("reading input: %w", readErr)
		}
	}
	return nil
}

func runScript(cmd *cobra.Command, args []string) error {
	s, err := currentSession(cmd)
	if err != nil {
		return err
	}

	name := args[0]
	var r io.Reader = s.in
	if name != "-" {
		f, err := os.Open(name) //nolint:gosec // user-chosen script path
		if err != nil {
			return fmt.Errorf("opening script: %w", err)
		}
		defer f.Close()
		r = f
	}

	ctx := cmd.Context()
	sc := bufio.NewScanner(r)
	for n := 1; sc.Scan(); n++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		stop, err := execLine(ctx, s, sc.Text(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		if stop {
			return nil
		}
		if err != nil {
			var lineErr *lineError
			if errors.As(err, &lineErr) {
				err = lineErr.err
			}
			return fmt.Errorf("%s:%d: %w", name, n, err)
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("reading script: %w", err)
	}
	return nil
}

// lineError remembers which command of a line failed so its output flags
// decide how the error is reported.
type lineError struct {
	cmd *cobra.Command
	err error
}

func (e *lineError) Error() string { return e.err.Error() }
func (e *lineError) Unwrap() error { return e.err }

// execLine parses and runs one line against s. stop reports an exit request.
func execLine(ctx context.Context, s *session, line string, stdout, stderr io.Writer) (stop bool, err error) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return false, nil
	}

	p := shellwords.NewParser()
	p.ParseEnv = true
	args, err := p.Parse(line)
	if err != nil {
		return false, fmt.Errorf("parsing %q: %w", line, err)
	}
	if len(args) == 0 {
		return false, nil
	}
	switch args[0] {
	case "exit", "quit":
		return true, nil
	}

	root := newSessionRoot(s)
	root.SetArgs(args)
	root.SetIn(s.in)
	root.SetOut(stdout)
	root.SetErr(stderr)
	c, err := root.ExecuteContextC(ctx)
	if err != nil {
		if c == nil {
			c = root
		}
		return false, &lineError{cmd: c, err: err}
	}
	return false, nil
}

// newSessionRoot builds a fresh command tree bound to s. Building it per
// line gives every line default flag values; the output flags start from
// whatever the outer invocation was given.
func newSessionRoot(s *session) *cobra.Command {
	root := &cobra.Command{
		Use:           "tasknest",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.CompletionOptions.DisableDefaultCmd = true

	var compact bool
	pf := root.PersistentFlags()
	pf.Bool("json", flagJSON, "output as JSON")
	pf.Bool("yaml", flagYAML, "output as YAML")
	pf.Bool("table", flagTable, "output as table")
	pf.BoolVar(&compact, "compact", flagCompact, "compact one-line-per-record output")
	pf.BoolVar(&compact, "oneline", flagCompact, "alias for --compact")

	root.AddCommand(sessionCommands(func(*cobra.Command) (*session, error) { return s, nil })...)
	return root
}
