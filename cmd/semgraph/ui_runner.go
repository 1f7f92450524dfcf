package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"semgraph/internal/pipeline"
	"semgraph/internal/ui"
)

// uiMode is the --ui setting.
type uiMode string

const (
	uiModeAuto uiMode = "auto"
	uiModeOn   uiMode = "on"
	uiModeOff  uiMode = "off"
)

func readUIMode(value string) (uiMode, error) {
	mode := uiMode(strings.ToLower(strings.TrimSpace(value)))
	switch mode {
	case "":
		return uiModeAuto, nil
	case uiModeAuto, uiModeOn, uiModeOff:
		return mode, nil
	}
	return "", fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
}

// useTUI decides whether progress is drawn on out; auto means only on a
// terminal.
func useTUI(mode uiMode, out *os.File) bool {
	if mode == uiModeAuto {
		return isTerminal(out)
	}
	return mode == uiModeOn
}

type runOutcome struct {
	result *pipeline.Result
	err    error
}

// runWithUI runs the pipeline in the background while a progress model
// renders its events.
func runWithUI(ctx context.Context, title string, s *session) (*pipeline.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	events := make(chan pipeline.Event, 256)
	outcomeCh := make(chan runOutcome, 1)

	go func() {
		res, err := s.run(ctx, pipeline.ChannelSink{Ch: events}, nil)
		outcomeCh <- runOutcome{result: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, s.unitPaths(), events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	final, uiErr := program.Run()
	if ui.Interrupted(final) {
		cancel()
	}
	// The model may quit early; keep the pipeline from blocking on send.
	go func() {
		for range events {
		}
	}()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}
