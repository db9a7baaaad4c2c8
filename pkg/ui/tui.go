package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fd1az/swap-settler/pkg/ui/components"
)

// Phase represents the current UI phase.
type Phase string

const (
	PhaseWelcome   Phase = "welcome"   // Initial welcome screen
	PhaseStartup   Phase = "startup"   // Loading/connecting
	PhaseDashboard Phase = "dashboard" // Settlement in progress or done
)

// WelcomeDuration is how long the welcome screen shows before auto-advancing.
const WelcomeDuration = 2 * time.Second

const (
	maxErrors = 3
	maxLogs   = 6
)

// ErrorEntry represents an error with timestamp.
type ErrorEntry struct {
	Message   string
	Timestamp time.Time
}

// Model is the main Bubble Tea model for the TUI.
type Model struct {
	// Components
	stages *components.StagesComponent
	report *components.ReportComponent
	result *components.ResultComponent

	spinner spinner.Model
	help    help.Model
	keys    KeyMap

	// Phase state
	phase        Phase
	welcomeStart time.Time
	startupTime  time.Time

	// State
	ready    bool
	quitting bool
	width    int
	height   int

	pair       string
	sellAmount string
	mode       string
	started    time.Time
	finished   time.Time

	errors       []ErrorEntry
	logs         []string
	showActivity bool
}

// New creates a new TUI model.
func New() Model {
	now := time.Now()
	return Model{
		stages: components.NewStagesComponent(),
		report: components.NewReportComponent(),
		result: components.NewResultComponent(),
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(ColorWarning)),
		),
		help:         help.New(),
		keys:         DefaultKeyMap(),
		phase:        PhaseWelcome,
		welcomeStart: now,
		startupTime:  now,
		errors:       make([]ErrorEntry, 0, maxErrors),
		logs:         make([]string, 0, maxLogs),
		showActivity: true,
	}
}

// Init initializes the TUI model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(), m.spinner.Tick)
}

// tickCmd returns a command that sends a tick every 100ms for smooth animations.
func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg{}
	})
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}
		// During welcome phase, any other key skips to startup
		if m.phase == PhaseWelcome {
			m.enterStartup()
			return m, nil
		}
		switch {
		case key.Matches(msg, m.keys.Activity):
			m.showActivity = !m.showActivity
		case key.Matches(msg, m.keys.Clear):
			m.errors = make([]ErrorEntry, 0, maxErrors)
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ready = true

	case TickMsg:
		if m.phase == PhaseWelcome && time.Since(m.welcomeStart) >= WelcomeDuration {
			m.enterStartup()
		}
		return m, tickCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case StartedMsg:
		m.phase = PhaseDashboard
		m.pair = msg.Pair
		m.sellAmount = msg.SellAmount
		m.mode = msg.Mode
		m.started = time.Now()
		m.stages.Begin()
		m.logs = appendLog(m.logs, "settlement started")

	case StageMsg:
		m.stages.Advance(msg.To, msg.FailedStage)
		m.logs = appendLog(m.logs, fmt.Sprintf("%s → %s", msg.From, msg.To))

	case ReportMsg:
		m.report.Update(msg.Report, msg.BuyAmount, msg.MinBuyAmount)

	case FinishedMsg:
		m.finished = time.Now()
		m.result.Update(components.Result{
			Succeeded: msg.Succeeded,
			TxHash:    msg.TxHash,
			TxURL:     msg.TxURL,
			Error:     msg.Error,
			Duration:  msg.Duration,
		})

	case ErrorMsg:
		if msg.Error != nil {
			m.errors = append(m.errors, ErrorEntry{Message: msg.Error.Error(), Timestamp: time.Now()})
			if len(m.errors) > maxErrors {
				m.errors = m.errors[len(m.errors)-maxErrors:]
			}
		}

	case LogMsg:
		m.logs = appendLog(m.logs, fmt.Sprintf("[%s] %s", msg.Level, msg.Message))
	}

	return m, nil
}

func (m *Model) enterStartup() {
	m.phase = PhaseStartup
	m.startupTime = time.Now()
	// Trigger callback directly (don't use Send() from within Update)
	if OnStartModules != nil {
		go OnStartModules()
	}
}

// appendLog adds a timestamped line, keeping the most recent entries.
func appendLog(logs []string, message string) []string {
	logs = append(logs, fmt.Sprintf("[%s] %s", time.Now().Format("15:04:05"), message))
	if len(logs) > maxLogs {
		logs = logs[len(logs)-maxLogs:]
	}
	return logs
}

// View renders the TUI.
func (m Model) View() string {
	if m.quitting {
		return "\n  Goodbye!\n\n"
	}

	switch m.phase {
	case PhaseWelcome:
		return m.renderWelcomeScreen()
	case PhaseStartup:
		return m.renderStartupScreen()
	}

	var b strings.Builder

	b.WriteString(TitleStyle.Render(" ⇄ Swap Settler "))
	b.WriteString("\n\n")
	b.WriteString(m.renderStatusBar())
	b.WriteString("\n\n")

	leftCol := m.stages.View(m.spinner.View())
	if m.showActivity {
		leftCol += "\n" + m.renderActivity()
	}
	rightCol := m.report.View()

	if m.width > 100 {
		left := BoxStyle.Width(m.width/2 - 2).Render(leftCol)
		right := BoxStyle.Width(m.width/2 - 2).Render(rightCol)
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, right))
	} else {
		width := m.width - 4
		if width < 40 {
			width = 40
		}
		b.WriteString(BoxStyle.Width(width).Render(leftCol))
		b.WriteString("\n")
		b.WriteString(BoxStyle.Width(width).Render(rightCol))
	}
	b.WriteString("\n\n")

	if m.result.Done() {
		b.WriteString(m.result.View())
		b.WriteString("\n")
	}

	if len(m.errors) > 0 {
		errorHeader := lipgloss.NewStyle().Bold(true).Foreground(ColorDanger)
		b.WriteString(errorHeader.Render("ERRORS"))
		b.WriteString(MutedValue.Render(" (e: clear)"))
		b.WriteString("\n")
		for _, err := range m.errors {
			ago := time.Since(err.Timestamp).Round(time.Second)
			b.WriteString(ErrorValue.Render(fmt.Sprintf("  • %s ", err.Message)))
			b.WriteString(MutedValue.Render(fmt.Sprintf("(%s ago)", ago)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(HelpStyle.Render(m.help.View(m.keys)))
	return b.String()
}

func (m Model) renderActivity() string {
	var sb strings.Builder
	sb.WriteString(HeaderStyle.Render("ACTIVITY"))
	sb.WriteString("\n")
	if len(m.logs) == 0 {
		sb.WriteString(MutedValue.Render("  Waiting..."))
		return sb.String()
	}
	for _, line := range m.logs {
		sb.WriteString(MutedValue.Render("  " + line))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m Model) renderStatusBar() string {
	var parts []string

	if m.pair != "" {
		parts = append(parts, "Pair: "+m.pair)
	}
	if m.sellAmount != "" {
		parts = append(parts, "Sell: "+m.sellAmount)
	}
	if m.mode != "" {
		parts = append(parts, "Mode: "+ModeBadge(m.mode))
	}

	if !m.started.IsZero() {
		end := time.Now()
		if !m.finished.IsZero() {
			end = m.finished
		}
		elapsed := end.Sub(m.started).Round(100 * time.Millisecond)
		parts = append(parts, MutedValue.Render(fmt.Sprintf("Elapsed: %s", elapsed)))
	}

	return strings.Join(parts, "  │  ")
}

// renderWelcomeScreen renders the animated welcome screen.
func (m Model) renderWelcomeScreen() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)
	greenStyle := lipgloss.NewStyle().Foreground(ColorSuccess)

	// Animated dots based on time
	dotCount := int(time.Since(m.welcomeStart).Milliseconds()/300) % 4
	dots := strings.Repeat(".", dotCount)

	var sb strings.Builder
	sb.WriteString("\n\n\n\n")

	logo := `
   ███████╗██╗    ██╗ █████╗ ██████╗
   ██╔════╝██║    ██║██╔══██╗██╔══██╗
   ███████╗██║ █╗ ██║███████║██████╔╝
   ╚════██║██║███╗██║██╔══██║██╔═══╝
   ███████║╚███╔███╔╝██║  ██║██║
   ╚══════╝ ╚══╝╚══╝ ╚═╝  ╚═╝╚═╝
`
	sb.WriteString(titleStyle.Render(logo))
	sb.WriteString("\n")
	sb.WriteString(MutedValue.Render("        S E T T L E R   ·   0x permit2"))
	sb.WriteString("\n\n\n")
	sb.WriteString(greenStyle.Render(fmt.Sprintf("          Initializing%s", dots)))
	sb.WriteString("\n\n")
	sb.WriteString(MutedValue.Render("    Press any key to skip, or wait..."))
	sb.WriteString("\n")

	return sb.String()
}

// renderStartupScreen renders the loading/startup screen.
func (m Model) renderStartupScreen() string {
	var sb strings.Builder

	sb.WriteString("\n\n")
	sb.WriteString(HeaderStyle.Render(" ⇄ Swap Settler"))
	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf("  %s Connecting to chain and aggregator...\n", m.spinner.View()))
	sb.WriteString("\n")
	elapsed := time.Since(m.startupTime).Round(time.Second)
	sb.WriteString(MutedValue.Render(fmt.Sprintf("  Elapsed: %s", elapsed)))
	sb.WriteString("\n")

	for _, err := range m.errors {
		sb.WriteString(ErrorValue.Render("  ✗ " + err.Message))
		sb.WriteString("\n")
	}
	return sb.String()
}

// Program holds the Bubble Tea program instance for external access.
var Program *tea.Program

// OnStartModules is called when the welcome screen completes and modules should start.
// This is set by main.go to signal when to begin loading modules.
var OnStartModules func()

// Send sends a message to the running program.
func Send(msg tea.Msg) {
	if Program != nil {
		Program.Send(msg)
	}
}
