package tui

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/lox/uno-cli/internal/deck"
	"github.com/lox/uno-cli/internal/game"
	"github.com/lox/uno-cli/internal/session"
)

// Controller is the command surface the TUI drives. *session.Session
// implements it.
type Controller interface {
	StartMatch(ctx context.Context) error
	PlayCard(index int) (deck.Card, error)
	DrawCard() (deck.Card, error)
	ChooseColor(color deck.Color) error
	DeclareSelf() error
	DeclareOnOpponent() error
	Save(ctx context.Context) error
	Load(ctx context.Context) error
	View() (game.View, error)
}

var _ Controller = (*session.Session)(nil)

// TUIModel represents the Bubble Tea model for a match
type TUIModel struct {
	ctx    context.Context
	ctrl   Controller
	bridge *Bridge
	logger *log.Logger

	// UI components
	logViewport viewport.Model
	actionInput textinput.Model

	// State
	gameLog     []string
	view        game.View
	hasView     bool
	result      *game.Result
	quitting    bool
	focusedPane int // 0 = log, 1 = input

	// Dimensions
	width       int
	height      int
	initialized bool // log scrolled to the top after the first real size

	// Test mode
	testMode    bool
	capturedLog []string // For test assertions
}

// scrollKeys move the log while it has focus.
var scrollKeys = map[string]func(*viewport.Model){
	"up":     func(v *viewport.Model) { v.ScrollUp(1) },
	"k":      func(v *viewport.Model) { v.ScrollUp(1) },
	"down":   func(v *viewport.Model) { v.ScrollDown(1) },
	"j":      func(v *viewport.Model) { v.ScrollDown(1) },
	"pgup":   func(v *viewport.Model) { v.HalfPageUp() },
	"b":      func(v *viewport.Model) { v.HalfPageUp() },
	"pgdown": func(v *viewport.Model) { v.HalfPageDown() },
	"f":      func(v *viewport.Model) { v.HalfPageDown() },
	"home":   func(v *viewport.Model) { v.GotoTop() },
	"g":      func(v *viewport.Model) { v.GotoTop() },
	"end":    func(v *viewport.Model) { v.GotoBottom() },
	"G":      func(v *viewport.Model) { v.GotoBottom() },
}

// commandResultMsg reports a command that ran outside Update.
type commandResultMsg struct {
	action string
	err    error
}

const helpText = "play N • draw • color C • uno • call • save • load • new • quit"

// NewTUIModel creates a TUI driving ctrl. bridge must be the notifier the
// controller reports to.
func NewTUIModel(ctx context.Context, ctrl Controller, bridge *Bridge, logger *log.Logger) *TUIModel {
	return NewTUIModelWithOptions(ctx, ctrl, bridge, logger, false)
}

// NewTUIModelWithOptions is NewTUIModel with log capture for tests.
func NewTUIModelWithOptions(ctx context.Context, ctrl Controller, bridge *Bridge, logger *log.Logger, testMode bool) *TUIModel {
	// resized on the first render
	vp := viewport.New(10, 5)
	vp.SetContent("")

	ti := textinput.New()
	ti.Placeholder = "Enter a command (play 1, draw, uno, call, help)"
	ti.Focus()
	ti.CharLimit = 100
	ti.Width = 100
	ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
	ti.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FAFAFA"))
	ti.Prompt = "> "

	if logger == nil {
		logger = log.Default()
	}

	m := &TUIModel{
		ctx:         ctx,
		ctrl:        ctrl,
		bridge:      bridge,
		logger:      logger.WithPrefix("tui"),
		logViewport: vp,
		actionInput: ti,
		gameLog:     []string{},
		focusedPane: 1, // Start with input focused
		testMode:    testMode,
		capturedLog: []string{},
	}
	m.refresh()
	return m
}

// Init starts listening for worker notifications.
func (m *TUIModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.bridge.Wait())
}

// Update routes notifications, command results and keys.
func (m *TUIModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case notificationsMsg:
		for _, n := range msg {
			m.handleNotification(n)
		}
		return m, m.bridge.Wait()

	case commandResultMsg:
		if msg.err != nil {
			m.AddLogEntry(ErrorStyle.Render(fmt.Sprintf("%s failed: %s", msg.action, describeError(msg.err))))
		}
		m.refresh()
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.logger.Debug("Updating dimensions", "width", m.width, "height", m.height)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Sequence(tea.ClearScreen, tea.Quit)
		case "tab":
			if m.focusedPane == 0 {
				m.focusedPane = 1
				m.actionInput.Focus()
			} else {
				m.focusedPane = 0
				m.actionInput.Blur()
			}
		case "enter":
			if m.focusedPane == 1 {
				input := strings.TrimSpace(m.actionInput.Value())
				m.actionInput.SetValue("")
				if cmd := m.processCommand(input); cmd != nil {
					return m, cmd
				}
			}
		default:
			if scroll, ok := scrollKeys[msg.String()]; ok && m.focusedPane == 0 {
				scroll(&m.logViewport)
			}
		}
	}

	var cmd tea.Cmd
	if m.focusedPane == 1 {
		m.actionInput, cmd = m.actionInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	m.logViewport, cmd = m.logViewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m *TUIModel) handleNotification(msg tea.Msg) {
	switch msg := msg.(type) {
	case stateChangedMsg:
		m.refresh()
	case statusMsg:
		m.AddLogEntry(string(msg))
	case matchOverMsg:
		result := msg.result
		m.result = &result
		m.AddBoldLogEntry("GAME OVER: " + result.String())
		m.refresh()
	}
}

// refresh pulls the current match view from the controller.
func (m *TUIModel) refresh() {
	view, err := m.ctrl.View()
	if err != nil {
		m.hasView = false
		return
	}
	if view.MatchID != m.view.MatchID {
		m.result = nil
	}
	m.view = view
	m.hasView = true
}

// processCommand runs one line of input. Commands that may block on I/O or
// on stopping the workers run as tea.Cmds so Update never waits on them.
func (m *TUIModel) processCommand(input string) tea.Cmd {
	parts := strings.Fields(strings.ToLower(input))
	if len(parts) == 0 {
		return nil
	}
	action, args := parts[0], parts[1:]

	var err error
	switch action {
	case "play", "p":
		if len(args) != 1 {
			err = fmt.Errorf("usage: play N")
			break
		}
		n, convErr := strconv.Atoi(args[0])
		if convErr != nil {
			err = fmt.Errorf("not a card number: %s", args[0])
			break
		}
		_, err = m.ctrl.PlayCard(n - 1)
	case "draw", "d":
		_, err = m.ctrl.DrawCard()
	case "color", "colour", "c":
		if len(args) != 1 {
			err = fmt.Errorf("usage: color red|green|blue|yellow")
			break
		}
		color, parseErr := deck.ParseColor(args[0])
		if parseErr != nil {
			err = parseErr
			break
		}
		err = m.ctrl.ChooseColor(color)
	case "uno", "u":
		err = m.ctrl.DeclareSelf()
	case "call":
		err = m.ctrl.DeclareOnOpponent()
	case "save":
		return m.background("Save", m.ctrl.Save)
	case "load":
		return m.background("Load", m.ctrl.Load)
	case "new":
		return m.background("New match", m.ctrl.StartMatch)
	case "help", "?":
		m.AddLogEntry(InfoStyle.Render(helpText))
	case "quit", "exit", "q":
		m.quitting = true
		return tea.Sequence(tea.ClearScreen, tea.Quit)
	default:
		err = fmt.Errorf("unknown command %q, try help", action)
	}

	if err != nil {
		m.AddLogEntry(ErrorStyle.Render(describeError(err)))
	}
	m.refresh()
	return nil
}

func (m *TUIModel) background(action string, fn func(context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return commandResultMsg{action: action, err: fn(ctx)}
	}
}

// describeError turns engine and session errors into short player facing text.
func describeError(err error) string {
	switch {
	case errors.Is(err, game.ErrNotYourTurn):
		return "It is not your turn"
	case errors.Is(err, game.ErrAwaitingColor):
		return "Choose a colour first: color red|green|blue|yellow"
	case errors.Is(err, game.ErrNotAwaitingColor):
		return "There is no wild card waiting for a colour"
	case errors.Is(err, game.ErrMatchOver):
		return "The match is over. Type new to deal again"
	case errors.Is(err, session.ErrNoMatch):
		return "No match running. Type new to deal"
	case errors.Is(err, session.ErrEventsBusy):
		return "Already declared, wait a moment"
	case errors.Is(err, session.ErrNoStore):
		return "Saving is not configured"
	default:
		return err.Error()
	}
}

// Pane border colours.
var (
	borderColor  = lipgloss.Color("#626262")
	focusedColor = lipgloss.Color("#04B575")
)

// pane boxes content in a rounded border sized to the inner width and height.
func pane(content string, width, height int, focused bool) string {
	color := borderColor
	if focused {
		color = focusedColor
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color).
		Width(max(width, 1)).
		Height(max(height, 1)).
		Render(content)
}

// View lays out the log and the table side by side above the command pane.
func (m *TUIModel) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	command := m.renderActionPane()
	commandHeight := lipgloss.Height(command)
	bottom := pane(command, m.width-2, commandHeight, m.focusedPane == 1)

	table := m.renderSidebarPane()
	tableWidth := max(lipgloss.Width(table), 25)
	topHeight := max(m.height-commandHeight-4, 1)

	logWidth := max(m.width-tableWidth-4, 1)
	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	m.logViewport.Width = logWidth
	m.logViewport.Height = topHeight
	if !m.initialized && logWidth > 1 && topHeight > 1 {
		m.logViewport.GotoTop()
		m.initialized = true
	}

	top := lipgloss.JoinHorizontal(lipgloss.Top,
		pane(m.logViewport.View(), logWidth, topHeight, m.focusedPane == 0),
		pane(table, tableWidth, topHeight, false),
	)
	return lipgloss.JoinVertical(lipgloss.Top, top, bottom)
}

// renderSidebarPane shows the table: top card, pile sizes and whose turn it is.
func (m *TUIModel) renderSidebarPane() string {
	var content strings.Builder

	content.WriteString(HeaderStyle.Render(" UNO "))
	content.WriteString("\n\n")

	if !m.hasView {
		content.WriteString(InfoStyle.Render("No match running"))
		return content.String()
	}

	v := m.view
	content.WriteString("Top:      " + CardStyle(v.Top).Render(v.Top.String()))
	content.WriteString("\n")
	content.WriteString(fmt.Sprintf("Opponent: %d cards\n", v.OpponentCount))
	content.WriteString(fmt.Sprintf("Draw:     %d\n", v.DrawCount))
	content.WriteString(fmt.Sprintf("Discard:  %d\n\n", v.DiscardCount))

	switch {
	case v.Over:
		content.WriteString(WarningStyle.Render("Match over"))
	case v.State.Turn == game.Human:
		content.WriteString(SuccessStyle.Render("Your turn"))
	default:
		content.WriteString(InfoStyle.Render("Opponent's turn"))
	}
	content.WriteString("\n")

	if v.State.HumanCanDeclareSelf {
		content.WriteString(WarningStyle.Render("Say uno!"))
		content.WriteString("\n")
	}
	if v.State.HumanCanDeclareOnOpponent {
		content.WriteString(WarningStyle.Render("Call the opponent!"))
		content.WriteString("\n")
	}

	content.WriteString("\n")
	content.WriteString(InfoStyle.Render("Match " + shortID(v.MatchID)))
	return content.String()
}

// renderActionPane renders the hand, the prompt and the help line.
func (m *TUIModel) renderActionPane() string {
	var content strings.Builder

	switch {
	case !m.hasView:
		content.WriteString(HandInfoStyle.Render("Type new to deal a match"))
	case m.result != nil:
		content.WriteString(HandInfoStyle.Render(m.result.String()))
	default:
		content.WriteString(HandInfoStyle.Render("Hand: ") + m.formatHand(m.view.HumanHand))
	}
	content.WriteString("\n")

	if m.hasView && !m.view.Over {
		content.WriteString(m.renderAvailableActions())
		content.WriteString("\n")
	}

	content.WriteString(m.actionInput.View())
	content.WriteString("\n")

	if m.focusedPane == 0 {
		content.WriteString(InfoStyle.Render("Log focused: ↑↓ scroll, PgUp/PgDn half page, Home/End, Tab to input"))
	} else {
		content.WriteString(InfoStyle.Render("Tab to scroll log • Enter to submit • Ctrl+C to quit"))
	}
	return content.String()
}

// renderAvailableActions lists what the human can do right now.
func (m *TUIModel) renderAvailableActions() string {
	state := m.view.State
	var actions []string

	switch {
	case state.Turn != game.Human:
	case state.AwaitingColor:
		actions = append(actions, WarningStyle.Render("[color red|green|blue|yellow]"))
	default:
		actions = append(actions, SuccessStyle.Render("[play N]"))
		if !state.HumanHasDrawn {
			actions = append(actions, SuccessStyle.Render("[draw]"))
		}
	}
	if state.HumanCanDeclareSelf {
		actions = append(actions, WarningStyle.Render("[uno]"))
	}
	if state.HumanCanDeclareOnOpponent {
		actions = append(actions, WarningStyle.Render("[call]"))
	}

	if len(actions) == 0 {
		return InfoStyle.Render("Waiting for the opponent...")
	}
	return ActionsStyle.Render("Actions: " + strings.Join(actions, " "))
}

// formatHand numbers each card from 1, the way play expects them.
func (m *TUIModel) formatHand(cards []deck.Card) string {
	if len(cards) == 0 {
		return InfoStyle.Render("(empty)")
	}

	formatted := make([]string, 0, len(cards))
	for i, card := range cards {
		label := CardStyle(card).Render(card.String())
		if m.view.State.Turn == game.Human && !game.CanPlay(card, m.view.Top) {
			label = InfoStyle.Render(card.String())
		}
		formatted = append(formatted, fmt.Sprintf("[%d] %s", i+1, label))
	}
	return strings.Join(formatted, "  ")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[len(id)-8:]
	}
	return id
}

// AddLogEntry appends a line to the log and follows it.
func (m *TUIModel) AddLogEntry(entry string) {
	m.gameLog = append(m.gameLog, entry)
	if m.testMode {
		m.capturedLog = append(m.capturedLog, entry)
		return
	}

	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	if m.logViewport.Height > 0 && m.logViewport.Width > 0 {
		m.logViewport.GotoBottom()
	}
}

// AddBoldLogEntry pins a bold line above the rest of the log.
func (m *TUIModel) AddBoldLogEntry(entry string) {
	m.gameLog = slices.Insert(m.gameLog, 0, lipgloss.NewStyle().Bold(true).Render(entry))
	if m.testMode {
		m.capturedLog = slices.Insert(m.capturedLog, 0, entry)
		return
	}
	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	m.logViewport.GotoTop()
}

// GetCapturedLog returns a copy of the unstyled log (test mode only).
func (m *TUIModel) GetCapturedLog() []string {
	if !m.testMode {
		return nil
	}
	return slices.Clone(m.capturedLog)
}

// InjectCommand runs a command line as if it was typed (test mode only).
func (m *TUIModel) InjectCommand(input string) (tea.Cmd, error) {
	if !m.testMode {
		return nil, fmt.Errorf("command injection only available in test mode")
	}
	return m.processCommand(input), nil
}

// IsTestMode reports whether log capture and injection are enabled.
func (m *TUIModel) IsTestMode() bool {
	return m.testMode
}
