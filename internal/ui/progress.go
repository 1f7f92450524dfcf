// Package ui renders check progress in the terminal.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"semgraph/internal/pipeline"
)

type progressModel struct {
	title   string
	events  <-chan pipeline.Event
	spinner spinner.Model
	prog    progress.Model
	units   []unitItem
	index   map[string]int
	stage   pipeline.Stage
	stages  int // completed stages
	width   int
	done    bool
	quit    bool // interrupted by the user
	failed  error
}

type unitItem struct {
	path   string
	status pipeline.Status
	stage  pipeline.Stage
}

type eventMsg pipeline.Event
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model that renders pipeline events
// for the given units until events is closed.
func NewProgressModel(title string, units []string, events <-chan pipeline.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 76

	m := &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		prog:    prog,
		index:   make(map[string]int, len(units)),
		width:   80,
	}
	for _, u := range units {
		m.track(u)
	}
	return m
}

// Interrupted reports whether the user quit a model made by
// NewProgressModel before the pipeline finished.
func Interrupted(model tea.Model) bool {
	m, ok := model.(*progressModel)
	return ok && m.quit
}

func (m *progressModel) track(unit string) int {
	if i, ok := m.index[unit]; ok {
		return i
	}
	m.units = append(m.units, unitItem{path: unit, status: pipeline.StatusQueued})
	m.index[unit] = len(m.units) - 1
	return len(m.units) - 1
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listen())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		return m, tea.Batch(m.apply(pipeline.Event(msg)), m.listen())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.quit = true
			return m, tea.Quit
		}
		return m, nil
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.prog.Width = msg.Width - 4
		}
		return m, nil
	case progress.FrameMsg:
		pm, cmd := m.prog.Update(msg)
		m.prog = pm.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) View() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	header := m.title
	if m.stage != "" {
		header = fmt.Sprintf("%s (%s)", header, stageLabel(m.stage))
	}
	switch {
	case m.failed != nil:
		header = fmt.Sprintf("stopped: %s: %v", header, m.failed)
	case m.done:
		header = "done: " + m.title
	default:
		header = m.spinner.View() + " " + header
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	nameWidth := max(m.width-16, 20)
	for _, u := range m.units {
		label := string(u.status)
		if u.status == pipeline.StatusWorking {
			label = stageLabel(u.stage)
		}
		fmt.Fprintf(&b, "  %s %s\n", styleStatus(u.status).Render(fmt.Sprintf("%12s", label)), truncate(u.path, nameWidth))
	}

	b.WriteString("\n")
	if m.done && m.failed == nil {
		b.WriteString(m.prog.ViewAs(1.0))
	} else {
		b.WriteString(m.prog.View())
	}
	b.WriteString("\n")
	return b.String()
}

func (m *progressModel) listen() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

// apply folds one event into the model. Unit events move a row; stage
// events move the header and the bar.
func (m *progressModel) apply(ev pipeline.Event) tea.Cmd {
	if ev.Unit == "" {
		switch ev.Status {
		case pipeline.StatusWorking:
			m.stage = ev.Stage
			for i := range m.units {
				m.units[i].status = pipeline.StatusQueued
			}
		case pipeline.StatusDone:
			m.stages++
		case pipeline.StatusError:
			m.failed = ev.Err
		}
		return m.prog.SetPercent(m.percent())
	}
	i := m.track(ev.Unit)
	m.units[i].stage = ev.Stage
	m.units[i].status = ev.Status
	if ev.Status == pipeline.StatusQueued {
		m.units[i].status = pipeline.StatusWorking
	}
	return m.prog.SetPercent(m.percent())
}

// percent counts finished stages plus the finished share of units in the
// running one.
func (m *progressModel) percent() float64 {
	total := float64(len(pipeline.Stages))
	share := 0.0
	if len(m.units) > 0 && m.stages < len(pipeline.Stages) {
		var finished int
		for _, u := range m.units {
			if u.stage == m.stage && u.status == pipeline.StatusDone {
				finished++
			}
		}
		share = float64(finished) / float64(len(m.units))
	}
	return min((float64(m.stages)+share)/total, 1)
}

func stageLabel(stage pipeline.Stage) string {
	switch stage {
	case pipeline.StageMergePartialTypes:
		return "merging"
	case pipeline.StageResolveTypeDeclarations:
		return "declaring"
	case pipeline.StageResolveTypeBodies:
		return "typing"
	case pipeline.StageEvaluateExpressions:
		return "evaluating"
	}
	return string(stage)
}

func styleStatus(status pipeline.Status) lipgloss.Style {
	switch status {
	case pipeline.StatusDone:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	case pipeline.StatusError:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	case pipeline.StatusWorking:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	}
}

func truncate(value string, width int) string {
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}
