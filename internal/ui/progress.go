package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"bridgeir/internal/driver"
)

const labelWidth = 10

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	faintStyle  = lipgloss.NewStyle().Faint(true)
)

// fileRow is the display state of one input file.
type fileRow struct {
	path   string
	state  driver.Status
	stage  driver.Stage
	cached bool
	err    error
}

func (r fileRow) label() string {
	switch r.state {
	case driver.StatusWorking:
		return r.stage.String()
	case driver.StatusDone:
		if r.cached {
			return "cached"
		}
		return "done"
	case driver.StatusError:
		return "error"
	}
	return "queued"
}

// weight is the fraction of the file's work already finished.
func (r fileRow) weight() float64 {
	switch r.state {
	case driver.StatusDone, driver.StatusError:
		return 1
	case driver.StatusWorking:
		if r.stage == driver.StageResolve {
			return 0.5
		}
		return 0.2
	}
	return 0
}

type progressModel struct {
	title    string
	events   <-chan driver.Event
	spin     spinner.Model
	bar      progress.Model
	rows     []fileRow
	byPath   map[string]int
	width    int
	elapsed  time.Duration
	finished bool
}

type progressMsg driver.Event
type closedMsg struct{}

// NewProgressModel returns a Bubble Tea model listing each file's resolution
// state. The program quits once events is closed.
func NewProgressModel(title string, files []string, events <-chan driver.Event) tea.Model {
	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 76

	m := &progressModel{
		title:  title,
		events: events,
		spin:   spin,
		bar:    bar,
		rows:   make([]fileRow, len(files)),
		byPath: make(map[string]int, len(files)),
		width:  80,
	}
	for i, file := range files {
		m.rows[i] = fileRow{path: file, state: driver.StatusQueued}
		m.byPath[file] = i
	}
	return m
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.next())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case progressMsg:
		return m, tea.Batch(m.applyEvent(driver.Event(msg)), m.next())
	case closedMsg:
		m.finished = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.finished {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.bar.Width = msg.Width - 4
		}
	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) View() string {
	if len(m.rows) == 0 {
		return ""
	}
	finished := 0
	for _, r := range m.rows {
		if r.weight() == 1 {
			finished++
		}
	}

	var b strings.Builder
	lead := m.spin.View()
	if m.finished {
		lead = "✓"
	}
	b.WriteString(headerStyle.Render(fmt.Sprintf("%s %s (%d/%d)", lead, m.title, finished, len(m.rows))))
	b.WriteString("\n\n")

	pathWidth := max(m.width-labelWidth-4, 20)
	for _, r := range m.rows {
		label := fmt.Sprintf("%*s", labelWidth, r.label())
		fmt.Fprintf(&b, "  %s %s", labelStyle(r).Render(label), truncate(r.path, pathWidth))
		if r.err != nil {
			b.WriteString(errorStyle.Render("  " + truncate(r.err.Error(), pathWidth)))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.finished {
		b.WriteString(m.bar.ViewAs(1))
		if m.elapsed > 0 {
			b.WriteString(faintStyle.Render(fmt.Sprintf("  %s", m.elapsed.Round(time.Millisecond))))
		}
	} else {
		b.WriteString(m.bar.View())
	}
	b.WriteString("\n")
	return b.String()
}

func (m *progressModel) next() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return closedMsg{}
		}
		return progressMsg(ev)
	}
}

func (m *progressModel) applyEvent(ev driver.Event) tea.Cmd {
	if ev.File == "" {
		// run-level event
		m.elapsed = ev.Elapsed
		return nil
	}
	idx, ok := m.byPath[ev.File]
	if !ok {
		return nil
	}
	row := &m.rows[idx]
	row.state, row.stage, row.cached = ev.Status, ev.Stage, ev.Cached
	if ev.Err != nil {
		row.err = ev.Err
	}
	return m.bar.SetPercent(m.percent())
}

func (m *progressModel) percent() float64 {
	if len(m.rows) == 0 {
		return 0
	}
	var sum float64
	for _, r := range m.rows {
		sum += r.weight()
	}
	return sum / float64(len(m.rows))
}

func labelStyle(r fileRow) lipgloss.Style {
	switch r.state {
	case driver.StatusDone:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	case driver.StatusError:
		return errorStyle
	case driver.StatusWorking:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
}

// truncate shortens value to width display cells, marking the cut with "...".
func truncate(value string, width int) string {
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}
