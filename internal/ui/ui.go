package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/digger/internal/collection"
	"github.com/desertthunder/digger/internal/shared"
	"github.com/desertthunder/digger/internal/tasks"
)

const (
	maxLogLines = 5
	maxBarWidth = 72
	progressBuf = 50
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	JobView ViewState = iota
	ResultView
)

// RunFunc runs a job that reports through progress. It must not close progress.
type RunFunc func(ctx context.Context, progress chan<- tasks.ProgressUpdate) (*tasks.Telemetry, error)

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	cancel       context.CancelFunc
	view         ViewState
	title        string
	run          RunFunc
	tracks       map[string]*collection.Track
	width        int
	height       int
	progressChan chan tasks.ProgressUpdate
	done         chan jobResult
	exited       chan struct{}
	outcome      jobResult
	progress     tasks.ProgressUpdate
	telemetry    tasks.Telemetry
	log          []string
	cancelling   bool
	result       *tasks.Telemetry
	err          error
	bar          progress.Model
	spinner      spinner.Model
	unresolved   list.Model
	help         help.Model
	keys         keyMap
}

// NewModel creates a monitor for a job over tracks. Cancelling ctx or pressing q stops the job.
func NewModel(ctx context.Context, title string, tracks []*collection.Track, run RunFunc) *Model {
	ctx, cancel := context.WithCancel(ctx)
	byID := make(map[string]*collection.Track, len(tracks))
	for _, t := range tracks {
		byID[t.ID()] = t
	}
	return &Model{
		ctx:       ctx,
		cancel:    cancel,
		view:      JobView,
		title:     title,
		run:       run,
		tracks:    byID,
		telemetry: tasks.Telemetry{ItemsTotal: len(byID)},
		bar:       progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styles.stat)),
		help:      help.New(),
		keys:      newKeyMap(),
	}
}

// Run starts the monitor on the terminal and returns the job's outcome once the user exits.
// It does not return before the job has.
func Run(ctx context.Context, title string, tracks []*collection.Track, run RunFunc) (*tasks.Telemetry, error) {
	m := NewModel(ctx, title, tracks, run)
	_, err := tea.NewProgram(m, tea.WithContext(ctx)).Run()

	r, started := m.wait()
	if !started {
		return nil, err
	}
	return r.telemetry, r.err
}

// wait cancels a job still running, blocks until it exits and returns its outcome. A job stopped from the monitor
// reports [shared.ErrJobCancelled]. It returns false when the job never ran.
func (m *Model) wait() (jobResult, bool) {
	m.cancel()
	if m.exited == nil {
		return jobResult{}, false
	}
	<-m.exited

	r := m.outcome
	if m.cancelling && r.err == nil {
		r.err = fmt.Errorf("%w: stopped from the monitor", shared.ErrJobCancelled)
	}
	return r, true
}

// Init starts the job and the spinner.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.start())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.bar.Width = min(max(msg.Width-4, 10), maxBarWidth)
		if m.view == ResultView {
			m.unresolved.SetSize(msg.Width-4, max(msg.Height-12, 5))
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case JobView:
			return m.handleJobKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case spinner.TickMsg:
		if m.view != JobView {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case Msg:
		switch msg.kind {
		case MsgProgressUpdate:
			m.observe(msg.data.(tasks.ProgressUpdate))
			return m, m.waitForProgress()
		case MsgJobComplete:
			return m.complete(msg.data.(jobResult))
		}
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case JobView:
		return m.renderJob()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleJobKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		if m.cancelling {
			return m, tea.Quit
		}
		m.cancelling = true
		m.cancel()
	case "?":
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "?":
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	var cmd tea.Cmd
	m.unresolved, cmd = m.unresolved.Update(msg)
	return m, cmd
}

// observe records an update and its telemetry snapshot.
func (m *Model) observe(u tasks.ProgressUpdate) {
	m.progress = u
	if tel, ok := u.Data.(tasks.Telemetry); ok {
		m.telemetry = tel
	}
	if u.Message == "" {
		return
	}
	m.log = append(m.log, u.Message)
	if len(m.log) > maxLogLines {
		m.log = m.log[len(m.log)-maxLogLines:]
	}
}

func (m *Model) complete(r jobResult) (tea.Model, tea.Cmd) {
	m.result, m.err = r.telemetry, r.err
	m.view = ResultView
	if r.telemetry != nil {
		m.telemetry = *r.telemetry
	}

	items := make([]list.Item, 0, len(m.telemetry.Unresolved))
	for _, id := range m.telemetry.Unresolved {
		items = append(items, newTrackItem(id, m.tracks[id]))
	}
	m.unresolved = list.New(items, list.NewDefaultDelegate(), max(m.width-4, 0), max(m.height-12, 5))
	m.unresolved.Title = "Unresolved tracks"
	m.unresolved.SetShowHelp(false)

	if m.cancelling {
		return m, tea.Quit
	}
	return m, nil
}

// start launches the job. The job's outcome is handed over before progress closes.
func (m *Model) start() tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, progressBuf)
	m.done = make(chan jobResult, 1)
	m.exited = make(chan struct{})

	ctx, run, ch, done, exited, outcome := m.ctx, m.run, m.progressChan, m.done, m.exited, &m.outcome
	go func() {
		tel, err := run(ctx, ch)
		*outcome = jobResult{tel, err}
		done <- *outcome
		close(ch)
		close(exited)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	ch, done := m.progressChan, m.done
	return func() tea.Msg {
		update, ok := <-ch
		if !ok {
			r := <-done
			return jobCompleteMsg(r.telemetry, r.err)
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) percent() float64 {
	if m.telemetry.ItemsTotal == 0 {
		return 0
	}
	return min(float64(m.telemetry.ItemsProcessed)/float64(m.telemetry.ItemsTotal), 1)
}

func (m *Model) renderJob() string {
	var b strings.Builder
	b.WriteString(styles.title.Render(m.title))
	b.WriteString("\n")

	status := "Starting..."
	switch {
	case m.cancelling:
		status = styles.warn.Render("Cancelling, waiting for in-flight chunks...")
	case m.progress.Phase == tasks.Escalate:
		status = styles.warn.Render(m.progress.Message)
	case m.progress.Message != "":
		status = m.progress.Message
	}
	fmt.Fprintf(&b, "%s %s\n\n", m.spinner.View(), status)
	fmt.Fprintf(&b, "%s\n\n", m.bar.ViewAs(m.percent()))
	b.WriteString(m.renderTelemetry())

	if len(m.log) > 0 {
		b.WriteString("\n")
		for _, line := range m.log {
			fmt.Fprintf(&b, "\n%s", styles.help.Render(line))
		}
	}

	fmt.Fprintf(&b, "\n\n%s", m.help.View(m.keys))
	return b.String()
}

func (m *Model) renderTelemetry() string {
	t := m.telemetry
	lines := []string{
		fmt.Sprintf("Tracks:   %d/%d (cache hits %d)", t.ItemsProcessed, t.ItemsTotal, t.CacheHits),
		fmt.Sprintf("Requests: %d (failed chunks %d, levels %d)", t.Requests, t.FailedChunks, t.Levels),
		fmt.Sprintf("Usage:    %d in / %d out, cost %.4f", t.InputUnits, t.OutputUnits, t.Cost),
	}
	if t.RatePerMinute > 0 {
		lines = append(lines, fmt.Sprintf("Rate:     %.1f/min, ETA %s", t.RatePerMinute, t.ETA.Round(time.Second)))
	}
	return styles.stat.Render(strings.Join(lines, "\n"))
}

func (m *Model) renderResult() string {
	var b strings.Builder
	switch {
	case m.err != nil:
		b.WriteString(styles.err.Render(fmt.Sprintf("✗ Job stopped: %v", m.err)))
	case len(m.telemetry.Unresolved) > 0:
		b.WriteString(styles.warn.Render(fmt.Sprintf("✓ Job complete, %d tracks unresolved", len(m.telemetry.Unresolved))))
	default:
		b.WriteString(styles.ok.Render("✓ Job complete!"))
	}
	b.WriteString("\n\n")
	b.WriteString(m.renderTelemetry())
	if d := m.telemetry.Elapsed(); d > 0 {
		fmt.Fprintf(&b, "\n%s", styles.stat.Render(fmt.Sprintf("Elapsed:  %s", d.Round(time.Millisecond))))
	}

	if len(m.unresolved.Items()) > 0 {
		fmt.Fprintf(&b, "\n\n%s", m.unresolved.View())
	}

	fmt.Fprintf(&b, "\n\n%s", m.help.View(m.keys))
	return b.String()
}
