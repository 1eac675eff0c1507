// internal/tui/app.go
//
// This is the main TUI (Terminal User Interface) for SecureAware.
// It uses bubbletea, which follows The Elm Architecture:
//
// 1. Model: Your application state
// 2. Update: A function that updates state based on messages
// 3. View: A function that renders state to a string
//
// The flow is: User Input -> Message -> Update -> New Model -> View -> Screen

package tui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/secureaware/internal/training"
)

// appState represents which "screen" we're on
type appState int

const (
	stateMainMenu          appState = iota // Dashboard, Modules, Certificates, ...
	stateDashboard                         // Progress summary and recommendations
	stateModules                           // Searchable module list
	stateModuleContent                     // Reading one module
	stateQuiz                              // Answering a module quiz
	stateCertificates                      // Certificate list
	stateCertificateDetail                 // One certificate
	stateNotifications                     // Notification center
	stateSettings                          // Profile, password, preferences
)

const activityPanelLines = 6

var (
	accentColor = lipgloss.Color("#5B8DEF")
	mutedColor  = lipgloss.Color("#888888")
	borderColor = lipgloss.Color("#444444")
	goodColor   = lipgloss.Color("#4CAF50")
	badColor    = lipgloss.Color("#FF6B6B")
)

// AppOption customizes App construction for tests and alternate runtimes.
type AppOption func(*App)

// WithClock injects a deterministic clock (primarily for tests).
func WithClock(clock func() time.Time) AppOption {
	return func(a *App) {
		if clock != nil {
			a.clock = clock
		}
	}
}

// WithExportDir sets where certificate PDFs are written.
func WithExportDir(dir string) AppOption {
	return func(a *App) {
		a.exportDir = dir
	}
}

// App is the main application model. In bubbletea, this holds ALL your state.
type App struct {
	state     appState
	svc       *training.Service
	clock     func() time.Time
	exportDir string

	// UI components
	mainMenu  list.Model
	modules   *modulesView
	quiz      *quizView
	certs     *certificatesView
	inbox     *notificationsView
	settings  *settingsView
	statusMsg string

	// Window size (we get this from bubbletea)
	width  int
	height int
}

// menuItem implements list.Item interface for our menu items
type menuItem struct {
	title string
	desc  string
	state appState
}

func (i menuItem) Title() string       { return i.title }
func (i menuItem) Description() string { return i.desc }
func (i menuItem) FilterValue() string { return i.title }

// NewApp creates a new App instance over a wired training service.
func NewApp(svc *training.Service, opts ...AppOption) (*App, error) {
	if svc == nil {
		return nil, fmt.Errorf("tui: training service is required")
	}
	mainMenu := newList("🛡 SECUREAWARE", buildMainMenu(svc))

	app := &App{
		state:    stateMainMenu,
		svc:      svc,
		clock:    time.Now,
		mainMenu: mainMenu,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(app)
		}
	}
	app.modules = newModulesView(svc)
	app.quiz = newQuizView(svc)
	app.certs = newCertificatesView(svc)
	app.inbox = newNotificationsView(svc, app.clock)
	app.settings = newSettingsView(svc)
	return app, nil
}

func newList(title string, items []list.Item) list.Model {
	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()
	return l
}

// buildMainMenu creates the main menu items with live counters
func buildMainMenu(svc *training.Service) []list.Item {
	summary := svc.Dashboard()
	unread := svc.Notifications().UnreadCount()
	certs := len(svc.Completed())
	return []list.Item{
		menuItem{title: "Dashboard", desc: fmt.Sprintf("%d%% complete · %d of %d modules", summary.Percentage, summary.Completed, summary.Total), state: stateDashboard},
		menuItem{title: "Training Modules", desc: "Browse modules and take quizzes", state: stateModules},
		menuItem{title: "Certificates", desc: fmt.Sprintf("%d earned", certs), state: stateCertificates},
		menuItem{title: "Notifications", desc: fmt.Sprintf("%d unread", unread), state: stateNotifications},
		menuItem{title: "Settings", desc: "Profile, password and notification preferences", state: stateSettings},
		menuItem{title: "Exit", desc: "Quit SecureAware", state: -1},
	}
}

func (a *App) logInfo(format string, args ...any) {
	a.svc.Logger().Sugar().Infof(format, args...)
}

// Init is called once when the program starts.
func (a *App) Init() tea.Cmd {
	return nil
}

// typing reports whether a text input currently owns the keyboard.
func (a *App) typing() bool {
	switch a.state {
	case stateModules:
		return a.modules.searching()
	case stateCertificates:
		return a.certs.searching()
	case stateSettings:
		return a.settings.typing()
	}
	return false
}

// Update is called when a message is received.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		w, h := max(0, msg.Width-6), max(0, msg.Height-12)
		a.mainMenu.SetSize(w, h)
		a.modules.setSize(w, h)
		a.certs.setSize(w, h)
		a.inbox.setSize(w, h)
		return a, nil

	case statusMsg:
		a.statusMsg = string(msg)
		return a, nil

	case quizSubmittedMsg:
		a.quiz.finish(msg)
		if msg.err == nil && msg.outcome.NewlyCompleted {
			a.statusMsg = "Module completed · certificate earned"
		}
		return a, nil

	case tea.KeyMsg:
		key := msg.String()
		switch key {
		case "ctrl+c":
			return a, tea.Quit
		case "q":
			if a.state == stateMainMenu {
				return a, tea.Quit
			}
			if !a.typing() {
				return a.back()
			}
		case "esc":
			if a.state != stateMainMenu {
				if a.state == stateModules && a.modules.searching() {
					a.modules.stopSearch()
					return a, nil
				}
				if a.state == stateCertificates && a.certs.searching() {
					a.certs.stopSearch()
					return a, nil
				}
				return a.back()
			}
		case "enter":
			if a.state == stateMainMenu {
				return a.handleMainMenuSelection()
			}
		}
	}

	var cmd tea.Cmd
	switch a.state {
	case stateMainMenu:
		a.mainMenu, cmd = a.mainMenu.Update(msg)
	case stateDashboard:
		cmd = a.updateDashboard(msg)
	case stateModules:
		var open bool
		open, cmd = a.modules.Update(msg)
		if open {
			a.state = stateModuleContent
		}
	case stateModuleContent:
		if k, ok := msg.(tea.KeyMsg); ok && (k.String() == "t" || k.String() == "enter") {
			if mod, ok := a.modules.current(); ok {
				a.quiz.start(mod)
				a.state = stateQuiz
				a.logInfo("quiz started: %s", mod.ID)
			}
			return a, nil
		}
		cmd = a.modules.updateContent(msg)
	case stateQuiz:
		cmd = a.quiz.Update(msg)
		if a.quiz.done {
			a.quiz.done = false
			a.modules.refresh()
			a.state = stateModules
		}
	case stateCertificates, stateCertificateDetail:
		var detail bool
		detail, cmd = a.certs.Update(msg, a.state == stateCertificateDetail, a.exportDir)
		if detail {
			a.state = stateCertificateDetail
		} else {
			a.state = stateCertificates
		}
	case stateNotifications:
		cmd = a.inbox.Update(msg)
	case stateSettings:
		cmd = a.settings.Update(msg)
	}
	return a, cmd
}

func (a *App) updateDashboard(msg tea.Msg) tea.Cmd {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	if k.String() == "m" {
		a.open(stateModules)
	}
	return nil
}

// handleMainMenuSelection processes menu item selection
func (a *App) handleMainMenuSelection() (tea.Model, tea.Cmd) {
	item, ok := a.mainMenu.SelectedItem().(menuItem)
	if !ok {
		return a, nil
	}
	if item.state < 0 {
		return a, tea.Quit
	}
	a.open(item.state)
	return a, nil
}

func (a *App) open(state appState) {
	a.statusMsg = ""
	switch state {
	case stateModules:
		a.modules.refresh()
	case stateCertificates:
		a.certs.refresh()
	case stateNotifications:
		a.inbox.refresh()
	case stateSettings:
		a.settings.reset()
	}
	a.state = state
}

// back moves one screen up, ending at the main menu.
func (a *App) back() (tea.Model, tea.Cmd) {
	switch a.state {
	case stateModuleContent:
		a.state = stateModules
	case stateQuiz:
		a.state = stateModuleContent
	case stateCertificateDetail:
		a.state = stateCertificates
	default:
		a.state = stateMainMenu
		a.mainMenu.SetItems(buildMainMenu(a.svc))
	}
	return a, nil
}

// View renders the current state to a string.
func (a *App) View() string {
	width := a.width
	if width <= 0 {
		width = 100
	}
	var content string
	switch a.state {
	case stateMainMenu:
		content = a.mainMenu.View()
	case stateDashboard:
		content = a.renderDashboard()
	case stateModules:
		content = a.modules.View()
	case stateModuleContent:
		content = a.modules.contentView()
	case stateQuiz:
		content = a.quiz.View()
	case stateCertificates:
		content = a.certs.View()
	case stateCertificateDetail:
		content = a.certs.detailView()
	case stateNotifications:
		content = a.inbox.View()
	case stateSettings:
		content = a.settings.View()
	}
	return a.renderBoard(content, width)
}

func (a *App) renderBoard(mainContent string, width int) string {
	unread := a.svc.Notifications().UnreadCount()
	badge := ""
	if unread > 0 {
		badge = lipgloss.NewStyle().Foreground(badColor).Render(fmt.Sprintf("  🔔 %d unread", unread))
	}
	p := a.svc.Profile()
	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(badColor).
		MarginBottom(1).
		Render("🛡 SECUREAWARE") +
		lipgloss.NewStyle().Foreground(mutedColor).Render(fmt.Sprintf("  %s · %s", p.Name, p.Department)) +
		badge

	mainBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Padding(0, 1).
		Width(max(20, width-4)).
		Render(mainContent)

	sections := []string{header, mainBox}
	if panel := a.renderActivityPanel(width - 4); panel != "" {
		sections = append(sections, panel)
	}
	footer := lipgloss.NewStyle().
		Foreground(mutedColor).
		MarginTop(1).
		Render(a.footerText())
	sections = append(sections, footer)
	return strings.Join(sections, "\n")
}

func (a *App) footerText() string {
	hint := "Enter → open    Esc → back    q → quit"
	if a.state != stateMainMenu {
		hint = "Esc → back"
	}
	if a.statusMsg == "" {
		return hint
	}
	return a.statusMsg + "    " + hint
}

func (a *App) renderActivityPanel(width int) string {
	lines, total := a.svc.Activity(activityPanelLines)
	if len(lines) == 0 {
		return ""
	}
	head := lipgloss.NewStyle().
		Bold(true).
		Foreground(accentColor).
		Render(fmt.Sprintf("ACTIVITY · %d entries", total))
	body := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#AAAAAA")).
		Render(strings.Join(lines, "\n"))
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Padding(0, 1).
		Width(max(20, width)).
		Render(fmt.Sprintf("%s\n%s", head, body))
}

func (a *App) renderDashboard() string {
	s := a.svc.Dashboard()
	title := lipgloss.NewStyle().Bold(true).Foreground(accentColor).Render("Dashboard")
	lines := []string{
		title,
		"",
		fmt.Sprintf("Overall progress  %s %d%%", progressBar(s.Percentage, 30), s.Percentage),
		fmt.Sprintf("Completed %d · Remaining %d · Total %d", s.Completed, s.Remaining, s.Total),
		"",
	}
	if len(s.Recommended) > 0 {
		lines = append(lines, lipgloss.NewStyle().Bold(true).Render("Recommended next"))
		for _, mod := range s.Recommended {
			lines = append(lines, fmt.Sprintf("  • %s  (%s · %d min)", mod.Title, mod.Level, mod.Duration))
		}
	} else {
		lines = append(lines, lipgloss.NewStyle().Foreground(goodColor).Render("All modules completed. Great work!"))
	}
	lines = append(lines, "")
	if len(s.Achievements) > 0 {
		lines = append(lines, lipgloss.NewStyle().Bold(true).Render("Achievements"))
		for _, ach := range s.Achievements {
			lines = append(lines, fmt.Sprintf("  ★ %s · %s", ach.Title, ach.Description))
		}
	} else {
		lines = append(lines, lipgloss.NewStyle().Foreground(mutedColor).Render("Complete a module to earn your first achievement."))
	}
	lines = append(lines, "", lipgloss.NewStyle().Foreground(mutedColor).Render("m → browse modules"))
	return strings.Join(lines, "\n")
}

func progressBar(percent, width int) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := percent * width / 100
	return lipgloss.NewStyle().Foreground(goodColor).Render(strings.Repeat("█", filled)) +
		lipgloss.NewStyle().Foreground(borderColor).Render(strings.Repeat("░", width-filled))
}

// statusMsg replaces the footer status line.
type statusMsg string

func exportedStatus(path string) string {
	return fmt.Sprintf("Certificate saved to %s", filepath.Clean(path))
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
