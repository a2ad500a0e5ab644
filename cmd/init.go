package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/tasknest/internal/config"
	"github.com/twiced-technology-gmbh/tasknest/internal/filelock"
	"github.com/twiced-technology-gmbh/tasknest/internal/output"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a tasknest config directory",
	Long: `Creates a .tasknest directory with a default config.yml in the current
directory, or in --dir. With --user the per-user config directory is used.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().Bool("user", false, "initialize the per-user config directory")
	initCmd.Flags().String("priority", "", "default priority for new tasks")
	initCmd.Flags().Bool("strict-moves", false, "reject moves that would nest subtasks")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, _ []string) error {
	dir := settings.GetString("dir")
	if user, _ := cmd.Flags().GetBool("user"); user {
		userDir, err := config.UserDir()
		if err != nil {
			return err
		}
		dir = userDir
	}
	if dir == "" {
		dir = config.DefaultDir
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolving path: %w", err)
	}
	const dirMode = 0o750
	if err := os.MkdirAll(absDir, dirMode); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	var cfg *config.Config
	err = filelock.With(absDir, func() error {
		var err error
		if cfg, err = config.Init(absDir); err != nil {
			return err
		}
		changed := false
		if p, _ := cmd.Flags().GetString("priority"); p != "" {
			cfg.Defaults.Priority = p
			changed = true
		}
		if strict, _ := cmd.Flags().GetBool("strict-moves"); strict {
			cfg.Hierarchy.StrictMoves = true
			changed = true
		}
		if !changed {
			return nil
		}
		if err := cfg.Validate(); err != nil {
			_ = os.Remove(cfg.ConfigPath())
			return err
		}
		return cfg.Save()
	})
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if format := outputFormat(cmd); format.IsStructured() {
		return output.Structured(w, format, map[string]string{
			"status": "initialized",
			"dir":    absDir,
			"config": cfg.ConfigPath(),
			"log":    cfg.LogPath(),
		})
	}

	output.Messagef(w, "Initialized tasknest in %s", absDir)
	output.Messagef(w, "  Config: %s", cfg.ConfigPath())
	output.Messagef(w, "  Log:    %s", cfg.LogPath())
	return nil
}
