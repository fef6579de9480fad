package main

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"byval/internal/ui"
)

type checkOutcome struct {
	results []*catalogResult
	err     error
}

func runChecksWithUI(ctx context.Context, title string, paths []string, opts checkOptions, out io.Writer) ([]*catalogResult, error) {
	events := make(chan ui.Event, 256)
	outcomeCh := make(chan checkOutcome, 1)

	go func() {
		results, err := runChecks(ctx, paths, opts, func(ev ui.Event) { events <- ev })
		outcomeCh <- checkOutcome{results: results, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, paths, events)
	program := tea.NewProgram(model, tea.WithOutput(out), tea.WithContext(ctx))
	_, uiErr := program.Run()
	if uiErr != nil {
		// keep draining so the workers never block on a dead UI
		go func() {
			for range events {
			}
		}()
	}
	outcome := <-outcomeCh
	if uiErr != nil && outcome.err == nil {
		return outcome.results, uiErr
	}
	return outcome.results, outcome.err
}
