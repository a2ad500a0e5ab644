package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/tasknest/internal/output"
	"github.com/twiced-technology-gmbh/tasknest/internal/seed"
)

const exportFileMode = 0o600

func newExportCmd(get sessionFunc) *cobra.Command {
	c := &cobra.Command{
		Use:   "export",
		Short: "Write the session's tasks as a seed file",
		Long: `Writes every task and tag in the seed file format, so the output can be
loaded again with --seed. YAML is the default; --json writes JSON.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := get(cmd)
			if err != nil {
				return err
			}
			path, _ := cmd.Flags().GetString("output")

			var w io.Writer = cmd.OutOrStdout()
			if path != "" {
				f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, exportFileMode) //nolint:gosec // user-chosen output path
				if err != nil {
					return fmt.Errorf("creating export file: %w", err)
				}
				defer f.Close()
				w = f
			}

			format := output.FormatYAML
			if outputFormat(cmd) == output.FormatJSON {
				format = output.FormatJSON
			}
			if err := output.Structured(w, format, seed.Export(s.store)); err != nil {
				return err
			}
			if path != "" {
				output.Messagef(cmd.ErrOrStderr(), "Exported %d task(s) to %s", s.store.Len(), path)
			}
			return nil
		},
	}
	c.Flags().StringP("output", "o", "", "write to FILE instead of stdout")
	return c
}
