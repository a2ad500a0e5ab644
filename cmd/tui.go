package cmd

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/twiced-technology-gmbh/tasknest/internal/config"
	"github.com/twiced-technology-gmbh/tasknest/internal/tui"
	"github.com/twiced-technology-gmbh/tasknest/internal/watcher"
)

func runTUI(cmd *cobra.Command, _ []string) error {
	s, err := currentSession(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	model := tui.NewBoard(s.store, s.cfg)
	p := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithContext(gctx),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
	)

	g.Go(func() error {
		defer cancel()
		_, err := p.Run()
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	})
	g.Go(func() error {
		watchConfig(gctx, s, p)
		return nil
	})
	return g.Wait()
}

// watchConfig reloads the config whenever its file changes and hands the
// result to the board. The TUI keeps working without it.
func watchConfig(ctx context.Context, s *session, p *tea.Program) {
	dir := s.cfg.Dir()
	w, err := watcher.New([]string{s.cfg.ConfigPath()}, func() {
		cfg, err := config.Load(dir)
		p.Send(tui.ConfigMsg{Cfg: cfg, Err: err})
	})
	if err != nil {
		s.log.Warn("config watcher unavailable", zap.Error(err))
		return
	}
	defer w.Close()
	w.Run(ctx, func(err error) {
		s.log.Warn("config watcher", zap.Error(err))
	})
}
