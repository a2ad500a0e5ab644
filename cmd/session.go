package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	"github.com/twiced-technology-gmbh/tasknest/internal/activity"
	"github.com/twiced-technology-gmbh/tasknest/internal/clierr"
	"github.com/twiced-technology-gmbh/tasknest/internal/config"
	"github.com/twiced-technology-gmbh/tasknest/internal/output"
	"github.com/twiced-technology-gmbh/tasknest/internal/reminder"
	"github.com/twiced-technology-gmbh/tasknest/internal/seed"
	"github.com/twiced-technology-gmbh/tasknest/internal/store"
	"github.com/twiced-technology-gmbh/tasknest/internal/task"
)

// session is the in-memory state the task commands operate on. A one-shot
// invocation gets a fresh session; shell, run and the TUI keep one for their
// whole lifetime.
type session struct {
	cfg       *config.Config
	store     *store.Store
	dismissed reminder.Dismissals
	log       *zap.Logger
	now       func() time.Time
	detach    func()

	// created lists task ids in creation order for @ references.
	created []string

	// in is shared by the shell loop and confirmation prompts so neither
	// loses input buffered by the other.
	in          *bufio.Reader
	interactive bool
}

// sessionFunc returns the session a command should act on.
type sessionFunc func(cmd *cobra.Command) (*session, error)

// current is the session of the running invocation, created on first use.
var current *session

func currentSession(cmd *cobra.Command) (*session, error) {
	if current != nil {
		return current, nil
	}
	s, err := openSession(cmd)
	if err != nil {
		return nil, err
	}
	current = s
	return s, nil
}

func closeSession() {
	if current == nil {
		return
	}
	current.close()
	current = nil
}

// openSession loads the config, starts the activity log and applies the
// seed file, if any.
func openSession(cmd *cobra.Command) (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	trimErr := activity.Trim(cfg.LogPath(), activity.MaxEntries)
	log, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}
	if trimErr != nil {
		log.Warn("trimming activity log", zap.Error(trimErr))
	}

	policy := store.MoveLenient
	if cfg.Hierarchy.StrictMoves {
		policy = store.MoveStrict
	}
	s := &session{
		cfg:   cfg,
		store: store.New(store.WithLogger(log.Named("store")), store.WithMovePolicy(policy)),
		log:   log,
		now:   time.Now,
		in:    bufio.NewReader(cmd.InOrStdin()),
	}
	if f, ok := cmd.InOrStdin().(*os.File); ok {
		s.interactive = term.IsTerminal(int(f.Fd()))
	}
	output.ReminderWindow = cfg.ReminderWindow()
	s.store.Subscribe(func(ev store.Event) {
		if ev.Kind == store.EventCreated {
			s.created = append(s.created, ev.TaskIDs...)
		}
	})

	if err := s.loadSeed(); err != nil {
		s.close()
		return nil, err
	}
	s.detach = activity.Attach(s.store, log)
	return s, nil
}

func (s *session) loadSeed() error {
	path := settings.GetString("seed")
	if path == "" {
		path = s.cfg.SeedPath()
	}
	if path == "" {
		return nil
	}

	f, err := seed.Read(path)
	if err != nil {
		return err
	}
	n, err := seed.Apply(s.store, f, seed.Options{
		Now:             s.now(),
		DefaultPriority: s.cfg.Defaults.Priority,
		DefaultColor:    s.cfg.Defaults.Color,
	})
	if err != nil {
		return fmt.Errorf("loading seed %s: %w", path, err)
	}
	s.log.Info("seed loaded", zap.String("path", path), zap.Int("tasks", n))
	return nil
}

func (s *session) close() {
	if s.detach != nil {
		s.detach()
	}
	_ = s.log.Sync()
}

// resolve looks up the task a user-typed reference names: an id prefix,
// "@" for the most recently created task, or "@N" for the Nth task created
// in this session.
func (s *session) resolve(ref string) (*task.Task, error) {
	id, err := s.refID(ref)
	if err != nil {
		return nil, err
	}
	t, ok := s.store.Get(id)
	if !ok {
		return nil, task.NotFound(ref)
	}
	return t, nil
}

func (s *session) refID(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if !strings.HasPrefix(ref, "@") {
		return s.store.Resolve(ref)
	}
	n := len(s.created)
	if ref != "@" {
		i, err := strconv.Atoi(ref[1:])
		if err != nil || i < 1 {
			return "", task.ValidateTaskID(ref)
		}
		n = i
	}
	if n < 1 || n > len(s.created) {
		return "", task.NotFound(ref)
	}
	return s.created[n-1], nil
}

// confirm asks a yes/no question on an interactive terminal. Non-interactive
// sessions must pass --yes instead.
func (s *session) confirm(cmd *cobra.Command, prompt string) (bool, error) {
	if !s.interactive {
		return false, clierr.New(clierr.ConfirmationReq,
			"cannot prompt for confirmation (not a terminal); use --yes")
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%s [y/N] ", prompt)
	answer, _ := s.in.ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	}
	fmt.Fprintln(cmd.ErrOrStderr(), "Canceled.")
	return false, nil
}

// newLogger builds the activity logger writing JSON lines to the configured
// log file.
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(cfg.LogLevel())
	if flagVerbose {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	zc.Sampling = nil
	zc.OutputPaths = []string{cfg.LogPath()}
	zc.ErrorOutputPaths = []string{"stderr"}
	zc.EncoderConfig.TimeKey = "ts"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	log, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}
	return log.With(zap.Int("pid", os.Getpid())), nil
}

// sessionCommands builds the task commands bound to the session get returns.
func sessionCommands(get sessionFunc) []*cobra.Command {
	return []*cobra.Command{
		newAddCmd(get),
		newSubCmd(get),
		newEditCmd(get),
		newDeleteCmd(get),
		newToggleCmd(get),
		newMoveCmd(get),
		newTagCmd(get),
		newTagsCmd(get),
		newColorsCmd(get),
		newListCmd(get),
		newShowCmd(get),
		newStatsCmd(get),
		newRemindersCmd(get),
		newDismissCmd(get),
		newExportCmd(get),
	}
}
