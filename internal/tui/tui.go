// Package tui provides a Bubble Tea terminal user interface for anexos-downloader.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/perini/anexos-downloader/internal/config"
	"github.com/perini/anexos-downloader/internal/model"
	"github.com/perini/anexos-downloader/internal/pipeline"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(1, 2)

	fileStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8B500"))
)

// maxLogs is the number of log lines kept on screen.
const maxLogs = 10

// State represents the current UI state.
type State int

const (
	StateInput State = iota
	StateExtracting
	StateDownloading
	StateArchiving
	StateComplete
	StateError
)

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   model.ProgressLevel
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state     State
	textInput textinput.Model
	spinner   spinner.Model
	progress  progress.Model
	settings  *config.Settings
	logs      []LogEntry
	result    *pipeline.Result
	err       error

	// Run context
	ctx    context.Context
	cancel context.CancelFunc

	pipeline *pipeline.Pipeline
	events   chan model.ProgressEvent

	// Download progress
	totalFiles    int32
	finishedFiles int32
	receivedBytes int64

	// Options
	caseInsensitive bool
	dedupe          bool
	verbose         bool

	width  int
	height int
}

// NewModel creates a new TUI model. The page URL field is prefilled from
// settings.
func NewModel(settings *config.Settings) Model {
	if settings == nil {
		settings = config.DefaultSettings()
	}

	ti := textinput.New()
	ti.Placeholder = "https://www.gov.br/ans/..."
	ti.SetValue(settings.PageURL)
	ti.Focus()
	ti.CharLimit = 500
	ti.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		state:           StateInput,
		textInput:       ti,
		spinner:         sp,
		progress:        prog,
		settings:        settings,
		logs:            make([]LogEntry, 0),
		ctx:             ctx,
		cancel:          cancel,
		caseInsensitive: settings.CaseInsensitive,
		dedupe:          settings.DeduplicateLinks,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Message types
type (
	// ProgressMsg carries one pipeline event.
	ProgressMsg struct {
		Event model.ProgressEvent
	}

	// RunDoneMsg is sent when the pipeline returns.
	RunDoneMsg struct {
		Result *pipeline.Result
		Err    error
	}

	// TickMsg is for periodic progress updates.
	TickMsg struct{}
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = msg.Width - 20
		if m.progress.Width > 80 {
			m.progress.Width = 80
		}
		if m.progress.Width < 20 {
			m.progress.Width = 20
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancel()
			return m, tea.Quit

		case "esc":
			if m.state == StateInput {
				return m, tea.Quit
			}
			if m.running() {
				m.cancel()
			}

		case "enter":
			if m.state == StateInput && strings.TrimSpace(m.textInput.Value()) != "" {
				return m.start()
			}

		case "ctrl+t":
			if m.state == StateInput {
				m.caseInsensitive = !m.caseInsensitive
				return m, nil
			}

		case "ctrl+r":
			if m.state == StateInput {
				m.dedupe = !m.dedupe
				return m, nil
			}

		case "ctrl+o":
			if m.state == StateInput {
				m.verbose = !m.verbose
				return m, nil
			}

		case "q":
			if m.state == StateComplete || m.state == StateError {
				return m, tea.Quit
			}

		case "r":
			if m.state == StateComplete || m.state == StateError {
				// Reset for a new run
				m.state = StateInput
				m.logs = nil
				m.result = nil
				m.err = nil
				m.finishedFiles = 0
				m.totalFiles = 0
				m.receivedBytes = 0
				m.pipeline = nil
				m.events = nil
				m.ctx, m.cancel = context.WithCancel(context.Background())
				m.textInput.Focus()
				return m, nil
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case ProgressMsg:
		if m.events != nil {
			cmds = append(cmds, waitForEvent(m.events))
		}
		// Filter verbose messages if not in verbose mode
		if msg.Event.Level == model.LevelVerbose && !m.verbose {
			break
		}
		m.logs = append(m.logs, LogEntry{
			Message: formatEvent(msg.Event),
			Level:   msg.Event.Level,
		})
		if len(m.logs) > maxLogs {
			m.logs = m.logs[len(m.logs)-maxLogs:]
		}

	case RunDoneMsg:
		m.result = msg.Result
		m.updateProgress()
		switch {
		case m.ctx.Err() != nil:
			m.state = StateError
			m.err = fmt.Errorf("cancelled by user")
		case msg.Err != nil:
			m.state = StateError
			m.err = msg.Err
		default:
			m.state = StateComplete
		}

	case TickMsg:
		if m.pipeline != nil && m.running() {
			m.updateProgress()

			var percent float64
			if m.totalFiles > 0 {
				percent = float64(m.finishedFiles) / float64(m.totalFiles)
			}
			cmds = append(cmds, m.progress.SetPercent(percent), tickProgress())
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	// Update text input
	if m.state == StateInput {
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// start builds the pipeline from the current options and launches it.
func (m Model) start() (tea.Model, tea.Cmd) {
	settings := *m.settings
	settings.PageURL = strings.TrimSpace(m.textInput.Value())
	settings.CaseInsensitive = m.caseInsensitive
	settings.DeduplicateLinks = m.dedupe

	if err := settings.Validate(); err != nil {
		m.state = StateError
		m.err = err
		return m, nil
	}

	events := make(chan model.ProgressEvent, 64)
	ctx := m.ctx
	onProgress := func(e model.ProgressEvent) {
		select {
		case events <- e:
		case <-ctx.Done():
		}
	}

	m.events = events
	m.pipeline = pipeline.New(&settings, onProgress)
	m.state = StateExtracting
	m.textInput.Blur()

	return m, tea.Batch(
		runPipeline(ctx, m.pipeline, events),
		waitForEvent(events),
		tickProgress(),
		m.spinner.Tick,
	)
}

func (m Model) running() bool {
	return m.state == StateExtracting || m.state == StateDownloading || m.state == StateArchiving
}

func (m *Model) updateProgress() {
	if m.pipeline == nil {
		return
	}
	stage, received, finished, total := m.pipeline.Progress()
	m.receivedBytes = received
	m.finishedFiles = finished
	m.totalFiles = total

	if !m.running() {
		return
	}
	switch stage {
	case pipeline.StageExtracting:
		m.state = StateExtracting
	case pipeline.StageDownloading:
		m.state = StateDownloading
	case pipeline.StageArchiving:
		m.state = StateArchiving
	}
}

// runPipeline runs p in the background and reports its outcome. events is
// closed once the run returns.
func runPipeline(ctx context.Context, p *pipeline.Pipeline, events chan model.ProgressEvent) tea.Cmd {
	return func() tea.Msg {
		result, err := p.Run(ctx)
		close(events)
		return RunDoneMsg{Result: result, Err: err}
	}
}

// waitForEvent delivers the next pipeline event, or nothing once events is
// closed.
func waitForEvent(events <-chan model.ProgressEvent) tea.Cmd {
	return func() tea.Msg {
		e, ok := <-events
		if !ok {
			return nil
		}
		return ProgressMsg{Event: e}
	}
}

// tickProgress returns a command to tick progress updates.
func tickProgress() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	// Header
	b.WriteString(titleStyle.Render("Anexos Downloader"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Download and archive the annexes of a page"))
	b.WriteString("\n\n")

	switch m.state {
	case StateInput:
		b.WriteString(m.viewInput())
	case StateExtracting:
		b.WriteString(m.viewWorking("Searching the page for annexes..."))
	case StateDownloading:
		b.WriteString(m.viewDownloading())
	case StateArchiving:
		b.WriteString(m.viewWorking("Creating ZIP archive..."))
	case StateComplete:
		b.WriteString(m.viewComplete())
	case StateError:
		b.WriteString(m.viewError())
	}

	// Footer
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.helpText()))

	return b.String()
}

func (m Model) viewInput() string {
	var b strings.Builder

	b.WriteString(subtitleStyle.Render("Page URL:"))
	b.WriteString("\n\n")
	b.WriteString(m.textInput.View())
	b.WriteString("\n\n")

	b.WriteString(infoStyle.Render("Options:"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s Ignore case (ctrl+t)\n", checkbox(m.caseInsensitive)))
	b.WriteString(fmt.Sprintf("  %s Skip duplicate links (ctrl+r)\n", checkbox(m.dedupe)))
	b.WriteString(fmt.Sprintf("  %s Verbose output (ctrl+o)\n", checkbox(m.verbose)))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Markers: %s | Extensions: %s",
		strings.Join(m.settings.Markers, ", "), strings.Join(m.settings.Extensions, ", "))))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Download dir: %s | Archive: %s", m.settings.DownloadDir, m.settings.ArchivePath)))
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewWorking(label string) string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(subtitleStyle.Render(label))
	b.WriteString("\n\n")

	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewDownloading() string {
	var b strings.Builder

	var percent float64
	if m.totalFiles > 0 {
		percent = float64(m.finishedFiles) / float64(m.totalFiles)
	}
	b.WriteString(m.progress.ViewAs(percent))
	b.WriteString("\n")

	b.WriteString(infoStyle.Render(fmt.Sprintf(
		"Files: %d/%d | Downloaded: %.2f MB",
		m.finishedFiles,
		m.totalFiles,
		float64(m.receivedBytes)/1024/1024,
	)))
	b.WriteString("\n\n")

	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewComplete() string {
	var b strings.Builder

	links, succeeded, failed, entries := 0, 0, 0, 0
	archivePath := m.settings.ArchivePath
	if r := m.result; r != nil {
		links = len(r.Links)
		if r.Report != nil {
			succeeded = r.Report.Succeeded()
			failed = r.Report.Failed()
		}
		if r.Archive != nil {
			entries = len(r.Archive.Entries)
			archivePath = r.Archive.Path
		}
	}

	box := boxStyle.Render(fmt.Sprintf(
		"Run complete!\n\n"+
			"Links: %d\n"+
			"Downloaded: %d\n"+
			"Failed: %d\n"+
			"Size: %.2f MB\n\n"+
			"%s (%d entries)",
		links,
		succeeded,
		failed,
		float64(m.receivedBytes)/1024/1024,
		fileStyle.Render(archivePath),
		entries,
	))
	b.WriteString(box)

	if m.result != nil && m.result.Report != nil && failed > 0 {
		b.WriteString("\n\n")
		b.WriteString(warningStyle.Render("Failed downloads:"))
		b.WriteString("\n")
		for _, task := range m.result.Report.Tasks {
			if task.Status == model.StatusFailed {
				b.WriteString(errorStyle.Render(fmt.Sprintf("  ✗ %s: %s", task.URL, task.LastError)))
				b.WriteString("\n")
			}
		}
	}

	return b.String()
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("Error occurred:"))
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString(fmt.Sprintf("  %s", m.err.Error()))
	}
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, log := range m.logs {
		var style lipgloss.Style
		prefix := "•"
		switch log.Level {
		case model.LevelError:
			style = errorStyle
			prefix = "✗"
		case model.LevelWarning:
			style = warningStyle
			prefix = "!"
		case model.LevelSuccess:
			style = successStyle
			prefix = "✓"
		case model.LevelInfo:
			style = infoStyle
			prefix = "›"
		default:
			style = dimStyle
		}
		b.WriteString(style.Render(prefix + " " + log.Message))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) helpText() string {
	switch m.state {
	case StateInput:
		return "enter: start • ctrl+t: ignore case • ctrl+r: dedupe • ctrl+o: verbose • esc: quit"
	case StateExtracting, StateDownloading, StateArchiving:
		return "esc: cancel"
	case StateComplete, StateError:
		return "r: new run • q: quit"
	}
	return ""
}

func checkbox(on bool) string {
	if on {
		return "[×]"
	}
	return "[ ]"
}

// formatEvent appends the file an event refers to.
func formatEvent(e model.ProgressEvent) string {
	if e.File == "" {
		return e.Message
	}
	if e.Attempt > 0 {
		return fmt.Sprintf("%s [%s #%d]", e.Message, e.File, e.Attempt)
	}
	return fmt.Sprintf("%s [%s]", e.Message, e.File)
}

// Run starts the TUI application.
func Run(settings *config.Settings) error {
	p := tea.NewProgram(NewModel(settings), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
