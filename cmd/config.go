package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/tasknest/internal/clierr"
	"github.com/twiced-technology-gmbh/tasknest/internal/config"
	"github.com/twiced-technology-gmbh/tasknest/internal/filelock"
	"github.com/twiced-technology-gmbh/tasknest/internal/output"
	"github.com/twiced-technology-gmbh/tasknest/internal/task"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or modify configuration",
	Long:  `View the full configuration, get a specific key, or set a writable value.`,
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configGetCmd = &cobra.Command{
	Use:   "get KEY",
	Short: "Get a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2), //nolint:mnd // key and value
	RunE:  runConfigSet,
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

// configAccessor describes how to get and set a config key.
type configAccessor struct {
	get      func(*config.Config) any
	set      func(*config.Config, string) error
	writable bool
}

func stringAccessor(field func(*config.Config) *string) configAccessor {
	return configAccessor{
		get:      func(c *config.Config) any { return *field(c) },
		set:      func(c *config.Config, v string) error { *field(c) = v; return nil },
		writable: true,
	}
}

func boolAccessor(key string, field func(*config.Config) *bool) configAccessor {
	return configAccessor{
		get: func(c *config.Config) any { return *field(c) },
		set: func(c *config.Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return clierr.Newf(clierr.InvalidInput, "invalid %s %q: must be true or false", key, v)
			}
			*field(c) = b
			return nil
		},
		writable: true,
	}
}

// configAccessors maps each key to its accessor. Range and format checks
// are left to Config.Validate.
func configAccessors() map[string]configAccessor {
	return map[string]configAccessor{
		"version": {
			get: func(c *config.Config) any { return c.Version },
		},
		"defaults.priority": {
			get: func(c *config.Config) any { return c.Defaults.Priority },
			set: func(c *config.Config, v string) error {
				if err := task.ValidatePriority(v); err != nil {
					return err
				}
				c.Defaults.Priority = v
				return nil
			},
			writable: true,
		},
		"defaults.color": {
			get: func(c *config.Config) any { return c.Defaults.Color },
			set: func(c *config.Config, v string) error {
				color, err := task.NormalizeColor(v)
				if err != nil {
					return err
				}
				c.Defaults.Color = color
				return nil
			},
			writable: true,
		},
		"reminders.window": stringAccessor(func(c *config.Config) *string { return &c.Reminders.Window }),
		"tui.refresh":      stringAccessor(func(c *config.Config) *string { return &c.TUI.Refresh }),
		"log.level":        stringAccessor(func(c *config.Config) *string { return &c.Log.Level }),
		"log.file":         stringAccessor(func(c *config.Config) *string { return &c.Log.File }),
		"seed":             stringAccessor(func(c *config.Config) *string { return &c.Seed }),
		"hierarchy.strict_moves": boolAccessor("hierarchy.strict_moves",
			func(c *config.Config) *bool { return &c.Hierarchy.StrictMoves }),
		"tui.show_completed_subtasks": boolAccessor("tui.show_completed_subtasks",
			func(c *config.Config) *bool { return &c.TUI.ShowCompletedSubtasks }),
	}
}

// allConfigKeys returns config keys in display order.
func allConfigKeys() []string {
	return []string{
		"version",
		"defaults.priority",
		"defaults.color",
		"reminders.window",
		"hierarchy.strict_moves",
		"tui.refresh",
		"tui.show_completed_subtasks",
		"log.level",
		"log.file",
		"seed",
	}
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	accessors := configAccessors()
	w := cmd.OutOrStdout()

	if format := outputFormat(cmd); format.IsStructured() {
		m := make(map[string]any, len(accessors))
		for _, key := range allConfigKeys() {
			m[key] = accessors[key].get(cfg)
		}
		return output.Structured(w, format, m)
	}

	for _, key := range allConfigKeys() {
		fmt.Fprintf(w, "%-28s %s\n", key, formatConfigValue(accessors[key].get(cfg)))
	}
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	key := args[0]
	acc, ok := configAccessors()[key]
	if !ok {
		return unknownConfigKey(key)
	}

	val := acc.get(cfg)
	if format := outputFormat(cmd); format.IsStructured() {
		return output.Structured(cmd.OutOrStdout(), format, val)
	}
	fmt.Fprintln(cmd.OutOrStdout(), formatConfigValue(val))
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	key, value := args[0], args[1]
	acc, ok := configAccessors()[key]
	if !ok {
		return unknownConfigKey(key)
	}
	if !acc.writable {
		return clierr.Newf(clierr.InvalidInput, "config key %q is read-only", key)
	}

	err = filelock.With(cfg.Dir(), func() error {
		// Re-read under the lock so a concurrent set is not lost.
		locked, err := config.Load(cfg.Dir())
		if err != nil {
			return err
		}
		if err := acc.set(locked, value); err != nil {
			return err
		}
		if err := locked.Validate(); err != nil {
			return err
		}
		if err := locked.Save(); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		cfg = locked
		return nil
	})
	if err != nil {
		return err
	}

	if format := outputFormat(cmd); format.IsStructured() {
		return output.Structured(cmd.OutOrStdout(), format, map[string]any{"key": key, "value": acc.get(cfg)})
	}
	output.Messagef(cmd.OutOrStdout(), "Set %s = %s", key, formatConfigValue(acc.get(cfg)))
	return nil
}

func unknownConfigKey(key string) error {
	return clierr.Newf(clierr.InvalidInput, "unknown config key %q; known keys: %s",
		key, strings.Join(allConfigKeys(), ", "))
}

func formatConfigValue(val any) string {
	if s, ok := val.(string); ok && s == "" {
		return "--"
	}
	return fmt.Sprintf("%v", val)
}
