// Package tui provides a Bubble Tea terminal user interface for amscrape.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/handiism/applemusic-scraper/internal/config"
	"github.com/handiism/applemusic-scraper/internal/download"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FA2D48")).
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

	recordStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8B500"))
)

// maxLogs is how many progress lines stay on screen.
const maxLogs = 10

var errCancelled = errors.New("cancelled by user")

// State represents the current UI state.
type State int

const (
	StateInput State = iota
	StateExtracting
	StateSaving
	StateComplete
	StateError
)

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   download.ProgressLevel
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state     State
	textInput textinput.Model
	spinner   spinner.Model
	progress  progress.Model
	settings  *config.Settings
	logs      []LogEntry
	records   []string
	err       error

	ctx    context.Context
	cancel context.CancelFunc

	manager *download.Manager
	events  chan download.ProgressEvent

	extracted int32
	saved     int32
	total     int32

	// Options
	artwork  bool
	preview  bool
	playlist bool
	verbose  bool

	width  int
	height int
}

// NewModel creates a new TUI model. A nil settings uses the defaults.
func NewModel(settings *config.Settings) Model {
	if settings == nil {
		settings = config.DefaultSettings()
	}

	ti := textinput.New()
	ti.Placeholder = "https://music.apple.com/us/album/1965/1817707266"
	ti.Focus()
	ti.CharLimit = 2000
	ti.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FA2D48"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		state:     StateInput,
		textInput: ti,
		spinner:   sp,
		progress:  prog,
		settings:  settings,
		ctx:       ctx,
		cancel:    cancel,
		artwork:   settings.SaveArtwork,
		preview:   settings.SavePreview,
		playlist:  settings.CreatePlaylist,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Message types
type (
	// ProgressMsg carries one event from the download manager.
	ProgressMsg struct {
		Event download.ProgressEvent
	}

	// ExtractDoneMsg is sent when every page has been fetched and extracted.
	ExtractDoneMsg struct {
		Records []string
		Manager *download.Manager
		Err     error
	}

	// SaveDoneMsg is sent when all records have been saved.
	SaveDoneMsg struct {
		Err error
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
		m.progress.Width = min(max(msg.Width-20, 20), 80)
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
			if m.state == StateSaving || m.state == StateExtracting {
				m.cancel()
				m.state = StateError
				m.err = errCancelled
			}

		case "enter":
			if m.state == StateInput && strings.TrimSpace(m.textInput.Value()) != "" {
				m.state = StateExtracting
				m.events = make(chan download.ProgressEvent, 64)
				return m, tea.Batch(m.startExtraction(), m.listen(), m.spinner.Tick, m.tickProgress())
			}

		case "ctrl+a":
			if m.state == StateInput {
				m.artwork = !m.artwork
			}

		case "ctrl+p":
			if m.state == StateInput {
				m.preview = !m.preview
			}

		case "ctrl+l":
			if m.state == StateInput {
				m.playlist = !m.playlist
			}

		case "ctrl+v":
			if m.state == StateInput {
				m.verbose = !m.verbose
			}

		case "q":
			if m.state == StateComplete || m.state == StateError {
				return m, tea.Quit
			}

		case "r":
			if m.state == StateComplete || m.state == StateError {
				m.state = StateInput
				m.logs = nil
				m.records = nil
				m.err = nil
				m.extracted, m.saved, m.total = 0, 0, 0
				m.manager = nil
				m.ctx, m.cancel = context.WithCancel(context.Background())
				m.textInput.SetValue("")
				m.textInput.Focus()
				return m, nil
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case ProgressMsg:
		cmds = append(cmds, m.listen())
		if msg.Event.Level == download.LevelVerbose && !m.verbose {
			break
		}
		m.logs = append(m.logs, LogEntry{Message: msg.Event.Message, Level: msg.Event.Level})
		if len(m.logs) > maxLogs {
			m.logs = m.logs[len(m.logs)-maxLogs:]
		}

	case ExtractDoneMsg:
		if msg.Err != nil || len(msg.Records) == 0 {
			m.closeEvents()
		}
		switch {
		case m.ctx.Err() != nil:
			m.state = StateError
			m.err = errCancelled
		case msg.Err != nil:
			m.state = StateError
			m.err = msg.Err
		case len(msg.Records) == 0:
			m.state = StateError
			m.err = errors.New("no page could be extracted")
		default:
			m.records = msg.Records
			m.manager = msg.Manager
			m.state = StateSaving
			cmds = append(cmds, m.startSaving())
		}

	case SaveDoneMsg:
		m.closeEvents()
		if m.manager != nil {
			m.extracted, m.saved, m.total = m.manager.GetProgress()
		}
		switch {
		case m.ctx.Err() != nil:
			m.state = StateError
			m.err = errCancelled
		case msg.Err != nil:
			m.state = StateError
			m.err = msg.Err
		default:
			m.state = StateComplete
		}

	case TickMsg:
		if m.manager != nil && (m.state == StateExtracting || m.state == StateSaving) {
			m.extracted, m.saved, m.total = m.manager.GetProgress()
			cmds = append(cmds, m.progress.SetPercent(m.percent()))
		}
		if m.state == StateExtracting || m.state == StateSaving {
			cmds = append(cmds, m.tickProgress())
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	if m.state == StateInput {
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) percent() float64 {
	if m.total == 0 {
		return 0
	}
	if m.state == StateSaving {
		return float64(m.saved) / float64(len(m.records))
	}
	return float64(m.extracted) / float64(m.total)
}

func (m Model) tickProgress() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// closeEvents ends the listen loop. Only call it once the manager has
// returned, since its callback sends on the channel.
func (m *Model) closeEvents() {
	if m.events != nil {
		close(m.events)
		m.events = nil
	}
}

// listen waits for the next manager event.
func (m Model) listen() tea.Cmd {
	events := m.events
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return ProgressMsg{Event: ev}
	}
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("♫ Apple Music Scraper"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Extract songs, albums, artists and playlists from music.apple.com"))
	b.WriteString("\n\n")

	switch m.state {
	case StateInput:
		b.WriteString(m.viewInput())
	case StateExtracting:
		b.WriteString(m.viewExtracting())
	case StateSaving:
		b.WriteString(m.viewSaving())
	case StateComplete:
		b.WriteString(m.viewComplete())
	case StateError:
		b.WriteString(m.viewError())
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.getHelpText()))

	return b.String()
}

func check(on bool) string {
	if on {
		return "[×]"
	}
	return "[ ]"
}

func (m Model) viewInput() string {
	var b strings.Builder

	b.WriteString(subtitleStyle.Render("Enter Apple Music URL(s), separated by spaces:"))
	b.WriteString("\n\n")
	b.WriteString(m.textInput.View())
	b.WriteString("\n\n")

	b.WriteString(infoStyle.Render("Options:"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "  %s Save artwork (ctrl+a)\n", check(m.artwork))
	fmt.Fprintf(&b, "  %s Save preview audio (ctrl+p)\n", check(m.preview))
	fmt.Fprintf(&b, "  %s Create playlist (ctrl+l)\n", check(m.playlist))
	fmt.Fprintf(&b, "  %s Verbose output (ctrl+v)\n", check(m.verbose))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Output path: %s", m.settings.OutputPath)))
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewExtracting() string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(subtitleStyle.Render("Fetching pages..."))
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewSaving() string {
	var b strings.Builder

	b.WriteString(successStyle.Render(fmt.Sprintf("Extracted %d record(s):", len(m.records))))
	b.WriteString("\n")
	for _, rec := range m.records {
		b.WriteString(recordStyle.Render("  ♪ " + rec))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(m.progress.ViewAs(m.percent()))
	b.WriteString("\n")
	b.WriteString(infoStyle.Render(fmt.Sprintf("Saved: %d/%d", m.saved, len(m.records))))
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewComplete() string {
	return boxStyle.Render(fmt.Sprintf(
		"✨ Done!\n\n"+
			"Pages: %d\n"+
			"Extracted: %d\n"+
			"Saved: %d",
		m.total,
		len(m.records),
		m.saved,
	))
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("✗ Error occurred:"))
	b.WriteString("\n\n")
	if m.err != nil {
		fmt.Fprintf(&b, "  %s", m.err.Error())
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
		case download.LevelError:
			style = errorStyle
			prefix = "✗"
		case download.LevelWarning:
			style = warningStyle
			prefix = "!"
		case download.LevelSuccess:
			style = successStyle
			prefix = "✓"
		case download.LevelInfo:
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

func (m Model) getHelpText() string {
	switch m.state {
	case StateInput:
		return "enter: start • ctrl+a: artwork • ctrl+p: preview • ctrl+l: playlist • ctrl+v: verbose • esc: quit"
	case StateExtracting, StateSaving:
		return "esc: cancel"
	case StateComplete, StateError:
		return "r: start over • q: quit"
	}
	return ""
}

// startExtraction creates the manager and extracts every input URL.
func (m Model) startExtraction() tea.Cmd {
	input := m.textInput.Value()
	ctx := m.ctx
	events := m.events

	settings := *m.settings
	settings.SaveArtwork = m.artwork
	settings.SavePreview = m.preview
	settings.CreatePlaylist = m.playlist

	return func() tea.Msg {
		manager := download.NewManager(&settings, nil, func(event download.ProgressEvent) {
			select {
			case events <- event:
			default:
			}
		})

		if err := manager.Initialize(ctx, input); err != nil {
			return ExtractDoneMsg{Err: err}
		}

		return ExtractDoneMsg{
			Records: manager.GetRecordNames(),
			Manager: manager,
		}
	}
}

// startSaving saves the extracted records in the background.
func (m Model) startSaving() tea.Cmd {
	manager := m.manager
	ctx := m.ctx
	return func() tea.Msg {
		return SaveDoneMsg{Err: manager.StartDownloads(ctx)}
	}
}

// Run starts the TUI application.
func Run(settings *config.Settings) error {
	p := tea.NewProgram(NewModel(settings), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
