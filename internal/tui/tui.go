package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/lox/withoutx/internal/deck"
	"github.com/lox/withoutx/internal/game"
)

const (
	sidebarWidth   = 28
	commandTimeout = 10 * time.Second
)

// EventMsg carries a room event into the Bubble Tea loop.
type EventMsg struct {
	Event game.Event
}

// DisconnectedMsg reports that the server connection dropped.
type DisconnectedMsg struct {
	Err error
}

// errMsg reports a failed command.
type errMsg struct {
	err error
}

// Model represents the Bubble Tea model for a withoutx room
type Model struct {
	sender Sender
	logger *log.Logger
	table  *Table

	// UI components
	logViewport viewport.Model
	input       textinput.Model

	gameLog     []string
	focusedPane int // 0 = log, 1 = input
	quitting    bool
	connected   bool

	width       int
	height      int
	initialized bool
}

// NewModel creates a new TUI model that sends commands through sender.
func NewModel(sender Sender, logger *log.Logger) *Model {
	// Will be properly sized when WindowSizeMsg arrives
	vp := viewport.New(10, 5)
	vp.SetContent("")

	ti := textinput.New()
	ti.Placeholder = "card, /command or chat"
	ti.Focus()
	ti.CharLimit = 200
	ti.Width = 100
	ti.PromptStyle = lipgloss.NewStyle().Foreground(focusColor).Bold(true)
	ti.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FAFAFA"))
	ti.Prompt = "> "

	return &Model{
		sender:      sender,
		logger:      logger.WithPrefix("tui"),
		table:       NewTable(),
		logViewport: vp,
		input:       ti,
		focusedPane: 1,
		connected:   true,
	}
}

// Table returns the room state shown by the model.
func (m *Model) Table() *Table {
	return m.table
}

// Log returns the log lines shown so far.
func (m *Model) Log() []string {
	return append([]string(nil), m.gameLog...)
}

// Init initializes the TUI model
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages in the TUI
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case EventMsg:
		m.logger.Debug("Event", "type", msg.Event.EventType())
		for _, line := range m.table.Apply(msg.Event) {
			m.AddLogEntry(line)
		}
		if _, ok := msg.Event.(game.Joined); ok {
			m.connected = true
		}
		return m, nil

	case DisconnectedMsg:
		m.connected = false
		m.AddLogEntry(ErrorStyle.Render(fmt.Sprintf("Disconnected: %v", msg.Err)))
		m.AddLogEntry("Type /reconnect to rejoin")
		return m, nil

	case errMsg:
		m.AddLogEntry(ErrorStyle.Render("Error: " + msg.err.Error()))
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "tab":
			// Switch focus between log and input
			if m.focusedPane == 0 {
				m.focusedPane = 1
				m.input.Focus()
			} else {
				m.focusedPane = 0
				m.input.Blur()
			}
		case "enter":
			if m.focusedPane == 1 {
				line := m.input.Value()
				m.input.SetValue("")
				if cmd := m.submit(line); cmd != nil {
					cmds = append(cmds, cmd)
				}
				if m.quitting {
					return m, tea.Quit
				}
			}
		case "up", "k":
			if m.focusedPane == 0 {
				m.logViewport.ScrollUp(1)
			}
		case "down", "j":
			if m.focusedPane == 0 {
				m.logViewport.ScrollDown(1)
			}
		case "home", "g":
			if m.focusedPane == 0 {
				m.logViewport.GotoTop()
			}
		case "end", "G":
			if m.focusedPane == 0 {
				m.logViewport.GotoBottom()
			}
		}
	}

	var cmd tea.Cmd
	if m.focusedPane == 1 {
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}
	m.logViewport, cmd = m.logViewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// submit parses a line of input and returns the command that sends it.
func (m *Model) submit(line string) tea.Cmd {
	parsed, err := ParseCommand(line)
	if err != nil {
		m.AddLogEntry(ErrorStyle.Render(err.Error()))
		return nil
	}

	switch parsed.Kind {
	case CmdNone:
		return nil
	case CmdHelp:
		for _, l := range HelpLines {
			m.AddLogEntry(l)
		}
		return nil
	case CmdQuit:
		m.quitting = true
		return nil
	}

	sender := m.sender
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		if err := Execute(ctx, sender, parsed); err != nil {
			return errMsg{err: err}
		}
		return nil
	}
}

// AddLogEntry adds an entry to the game log
func (m *Model) AddLogEntry(entry string) {
	m.gameLog = append(m.gameLog, entry)
	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))

	// Only call GotoBottom if viewport has valid dimensions
	if m.logViewport.Height > 0 && m.logViewport.Width > 0 {
		m.logViewport.GotoBottom()
	}
}

// View renders the TUI
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	actionContent := m.renderActionPane()
	actionHeight := lipgloss.Height(actionContent)
	actionStyle := paneStyle.
		Width(max(m.width-2, 1)).
		Height(max(actionHeight, 1))
	if m.focusedPane == 1 {
		actionStyle = actionStyle.BorderForeground(focusColor)
	}
	actionPane := actionStyle.Render(actionContent)

	topHeight := max(m.height-actionHeight-4, 1)
	sidebarPane := paneStyle.
		Width(sidebarWidth).
		Height(topHeight).
		Render(m.renderSidebar())

	logWidth := max(m.width-sidebarWidth-4, 1)
	m.logViewport.Width = logWidth
	m.logViewport.Height = topHeight
	if !m.initialized && logWidth > 1 && topHeight > 1 {
		m.logViewport.GotoBottom()
		m.initialized = true
	}

	logStyle := paneStyle.Width(logWidth).Height(topHeight)
	if m.focusedPane == 0 {
		logStyle = logStyle.BorderForeground(focusColor)
	}
	logPane := logStyle.Render(m.logViewport.View())

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, logPane, sidebarPane)
	return lipgloss.JoinVertical(lipgloss.Top, topRow, actionPane)
}

// renderSidebar shows the room, the round and the scoreboard.
func (m *Model) renderSidebar() string {
	t := m.table
	var b strings.Builder

	if t.Room == "" {
		b.WriteString(InfoStyle.Render("Not in a room"))
		b.WriteString("\n")
		b.WriteString(InfoStyle.Render("/create or /join"))
		return b.String()
	}

	b.WriteString(HeaderStyle.Render(" " + t.Room + " "))
	b.WriteString("\n")
	if t.Label != "" {
		b.WriteString(WarningStyle.Render(roundTitle(t)))
		b.WriteString("\n")
	}
	if t.Trump != nil {
		fmt.Fprintf(&b, "Trump: %s\n", formatSuit(*t.Trump))
	}
	b.WriteString("\n")

	scores := make(map[int]int, len(t.Scores))
	for _, s := range t.Scores {
		scores[s.Seat] = s.Points
	}
	for _, seat := range t.Seats {
		marker := "  "
		if t.Turn != nil && t.Turn.Seat == seat.Seat {
			marker = "▶ "
		}
		name := seat.Name
		if seat.Seat == t.Seat && !t.Spectator {
			name += " (you)"
		}
		line := fmt.Sprintf("%s%-14s %+5d", marker, name, scores[seat.Seat])
		if !seat.Connected {
			line = InfoStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	if !m.connected {
		b.WriteString("\n")
		b.WriteString(ErrorStyle.Render("offline"))
	}
	return b.String()
}

// renderActionPane shows the trick, the hand and the prompt.
func (m *Model) renderActionPane() string {
	t := m.table
	var b strings.Builder

	if len(t.Plays) > 0 {
		plays := make([]string, len(t.Plays))
		for i, p := range t.Plays {
			plays[i] = fmt.Sprintf("%s %s", p.Player, formatCard(p.Card))
		}
		b.WriteString("Table: " + strings.Join(plays, "  "))
		b.WriteString("\n")
	}

	if t.Phase == game.PhaseSolitaire {
		for seat := range game.NumSeats {
			cards, ok := t.OpenHands[seat]
			if !ok {
				continue
			}
			fmt.Fprintf(&b, "%s: %s\n", seatName(t, seat), formatCards(cards))
		}
	} else if len(t.Hand) > 0 {
		b.WriteString(HandInfoStyle.Render("Hand: "))
		b.WriteString(formatCards(t.Hand))
		b.WriteString("\n")
	}

	switch {
	case t.MustCallTrump():
		b.WriteString(ActionsStyle.Render("Choose trump: /trump s|h|d|c"))
	case t.MyTurn():
		b.WriteString(ActionsStyle.Render("Your turn: type a card"))
	case t.Phase == game.PhaseSolitaire:
		b.WriteString(ActionsStyle.Render("Solitaire: /done when your hand is empty"))
	case t.Phase == game.PhaseGameOver:
		b.WriteString(ActionsStyle.Render("Game over"))
	default:
		b.WriteString(HandInfoStyle.Render("Waiting..."))
	}
	b.WriteString("\n")

	b.WriteString(m.input.View())
	b.WriteString("\n")
	if m.focusedPane == 0 {
		b.WriteString(InfoStyle.Render("Log focused: ↑↓ scroll, Home/End, Tab to input"))
	} else {
		b.WriteString(InfoStyle.Render("Tab to scroll log • /help • Ctrl+C to quit"))
	}
	return b.String()
}

func roundTitle(t *Table) string {
	switch t.Phase {
	case game.PhaseContract:
		return fmt.Sprintf("%d/%d %s", t.Number, game.NumContracts, t.Label)
	case game.PhaseSolitaire:
		return fmt.Sprintf("%s %d/%d", t.Label, t.Number, game.SolitaireRounds)
	}
	return t.Label
}

func seatName(t *Table, seat int) string {
	for _, s := range t.Seats {
		if s.Seat == seat {
			return s.Name
		}
	}
	return fmt.Sprintf("Seat %d", seat+1)
}

func isRed(s deck.Suit) bool {
	return s == deck.Hearts || s == deck.Diamonds
}

func formatSuit(s deck.Suit) string {
	if isRed(s) {
		return RedCardStyle.Render(s.String())
	}
	return BlackCardStyle.Render(s.String())
}

func formatCard(c deck.Card) string {
	if isRed(c.Suit) {
		return RedCardStyle.Render(c.String())
	}
	return BlackCardStyle.Render(c.String())
}

// formatCards formats cards with colors
func formatCards(cards []deck.Card) string {
	if len(cards) == 0 {
		return ""
	}
	formatted := make([]string, len(cards))
	for i, card := range cards {
		formatted[i] = formatCard(card)
	}
	return "[" + strings.Join(formatted, " ") + "]"
}
