package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Iron-Ham/fairlock/internal/bench"
	"github.com/Iron-Ham/fairlock/internal/scenario"
)

// Run drives a benchmark under the dashboard. It starts the runner's
// workers, keeps the dashboard up until the context ends or the user
// quits, and returns once the workers have drained, so the runner's
// counters are final.
func Run(ctx context.Context, cancel context.CancelFunc, r *bench.Runner, c *scenario.Compiled, locker, engine string, duration time.Duration) error {
	program := tea.NewProgram(
		New(r, c, locker, engine, duration, cancel),
		tea.WithAltScreen(),
	)

	drained := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(drained)
		program.Send(DoneMsg{})
	}()

	_, err := program.Run()

	// The dashboard may have exited without stopping the run
	cancel()
	<-drained
	return err
}
