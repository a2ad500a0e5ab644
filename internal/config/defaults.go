// Package config handles tasknest configuration.
package config

import "time"

const (
	// DefaultDir is the project-local config directory name.
	DefaultDir = ".tasknest"
	// UserDirName is the directory under the user config dir used when no
	// project-local directory is found.
	UserDirName = "tasknest"
	// ConfigFileName is the name of the config file within the config directory.
	ConfigFileName = "config.yml"
	// DefaultLogFile is the activity log file name, relative to the config directory.
	DefaultLogFile = "activity.log"

	// DefaultPriority is the default priority for new tasks.
	DefaultPriority = "medium"
	// DefaultReminderWindow is how far ahead a reminder counts as due soon.
	DefaultReminderWindow = "1h"
	// DefaultRefresh is how often the TUI re-evaluates reminder state.
	DefaultRefresh = "30s"
	// DefaultLogLevel is the activity log level.
	DefaultLogLevel = "info"

	// CurrentVersion is the current config schema version.
	CurrentVersion = 1

	minRefresh = time.Second
)
