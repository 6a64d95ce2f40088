package tui

import (
	"context"
	"errors"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"sportanalyzer/internal/playback"
)

// EventSource streams engine events until it is closed or ctx ends.
type EventSource interface {
	Run(ctx context.Context, sink playback.EventSink) error
}

// RunOptions configures Run. Input and Output default to the terminal.
type RunOptions struct {
	Options
	Input     io.Reader
	Output    io.Writer
	AltScreen bool
}

// Run shows the player screen until the user quits or the engine closes.
func Run(ctx context.Context, ctrl *playback.Controller, source EventSource, opts RunOptions) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	programOpts := []tea.ProgramOption{tea.WithContext(ctx)}
	if opts.AltScreen {
		programOpts = append(programOpts, tea.WithAltScreen())
	}
	if opts.Input != nil {
		programOpts = append(programOpts, tea.WithInput(opts.Input))
	}
	if opts.Output != nil {
		programOpts = append(programOpts, tea.WithOutput(opts.Output))
	}
	program := tea.NewProgram(New(ctrl, opts.Options), programOpts...)

	go func() {
		err := source.Run(ctx, NewSink(program.Send))
		program.Send(EngineClosedMsg{Err: err})
	}()

	final, err := program.Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	if m, ok := final.(Model); ok {
		if closed, closedErr := m.Closed(); closed && closedErr != nil && !errors.Is(closedErr, context.Canceled) {
			return closedErr
		}
	}
	return nil
}
