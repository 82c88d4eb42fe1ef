package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jwebster45206/mansion-engine/internal/handlers"
	"github.com/jwebster45206/mansion-engine/pkg/engine"
	"github.com/jwebster45206/mansion-engine/pkg/state"
)

const (
	NarratorName       = "Mansion"
	PlaceHolderText = "Type a number or a command (go north, take candle, use key)..."
)

type entryKind int

const (
	entryNarration entryKind = iota
	entryUser
	entryError
	entrySystem
)

// entry is one line of the transcript.
type entry struct {
	kind entryKind
	text string
}

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	config       *ConsoleConfig
	client       *apiClient
	game         *handlers.GameResponse
	transcript   []entry
	transcriptViewport viewport.Model
	metaViewport viewport.Model
	textarea     textarea.Model
	ready        bool
	width        int
	height       int
	err          error
	loading      bool

	// A use or drop picked from the menu waits here for the item choice.
	pendingItem state.ActionType

	// Scenario selection state
	showScenarioModal bool
	scenarios         []handlers.ScenarioSummary
	selectedScenario  int
	loadingScenarios  bool

	// Quit confirmation state
	showQuitModal bool
}

type turnMsg struct {
	turn *handlers.TurnResponse
	err  error
}

type scenariosLoadedMsg struct {
	scenarios []handlers.ScenarioSummary
	err       error
}

type gameCreatedMsg struct {
	game *handlers.GameResponse
	err  error
}

var (
	transcriptPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(0)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(0).
			PaddingLeft(0).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	narrationStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	lockedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)

	modalItemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	modalSelectedItemStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("205")).
				Bold(true)
)

var separatorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("240")) // dark grey

var titleCaser = cases.Title(language.English)

func NewConsoleUI(cfg *ConsoleConfig, client *apiClient) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Focus()
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = 200
	ta.SetWidth(50)
	ta.SetHeight(1)
	ta.ShowLineNumbers = false

	transcriptVp := viewport.New(50, 20)
	transcriptVp.MouseWheelEnabled = true

	metaVp := viewport.New(20, 20)

	return ConsoleUI{
		config:            cfg,
		client:            client,
		textarea:          ta,
		transcriptViewport:      transcriptVp,
		metaViewport:      metaVp,
		showScenarioModal: true,
		loadingScenarios:  true,
	}
}

func writeMetadata(game *handlers.GameResponse) string {
	var content strings.Builder
	content.WriteString(titleStyle.Render("GAME STATE") + "\n\n")

	content.WriteString("Player:\n")
	content.WriteString(game.Player.Name + "\n\n")

	content.WriteString("Room:\n")
	content.WriteString(game.Room.Name + "\n\n")

	content.WriteString("Exits:\n")
	if len(game.Room.Exits) == 0 {
		content.WriteString("None\n")
	}
	for _, exit := range game.Room.Exits {
		line := fmt.Sprintf("• %s: %s", titleCaser.String(string(exit.Direction)), exit.ToName)
		if exit.Door != nil && exit.Door.Locked {
			line += lockedStyle.Render(" (locked)")
		}
		content.WriteString(line + "\n")
	}
	content.WriteString("\n")

	content.WriteString(fmt.Sprintf("Bag (%d/%d):\n", len(game.Player.Inventory), game.Player.Capacity))
	if len(game.Player.Inventory) == 0 {
		content.WriteString("Empty\n")
	}
	for _, item := range game.Player.Inventory {
		content.WriteString("• " + item.Name + "\n")
	}
	content.WriteString("\n")

	content.WriteString(fmt.Sprintf("Turn: %d\n", game.Turn))
	content.WriteString(fmt.Sprintf("Status: %s\n", titleCaser.String(strings.ReplaceAll(string(game.Status), "_", " "))))

	if len(game.Actions) > 0 {
		content.WriteString("\nActions:\n")
		for i, action := range game.Actions {
			content.WriteString(fmt.Sprintf("%d. %s\n", i+1, action.Label))
		}
	}

	content.WriteString("\n")
	content.WriteString("Commands:\n")
	content.WriteString("• Ctrl+C: Quit\n")
	content.WriteString("• Enter: Send\n")
	content.WriteString("• Ctrl+Y: Copy transcript\n")
	content.WriteString("• /help: Help\n")

	return content.String()
}

// writeTranscript renders the transcript for the current viewport width.
func (m *ConsoleUI) writeTranscript() {
	transcriptWidth := m.transcriptViewport.Width - 6 // Account for left(3) + right(3) padding

	var content strings.Builder
	content.WriteString(titleStyle.Render("MANSION ENGINE") + "\n\n")
	content.WriteString("Pick an action by number or type a command below.\n\n")
	content.WriteString(separatorStyle.Render(strings.Repeat("─", max(transcriptWidth-6, 1))) + "\n\n")

	for _, e := range m.transcript {
		switch e.kind {
		case entryNarration:
			content.WriteString(narrationStyle.Render(NarratorName+": ") + wordwrap.String(e.text, transcriptWidth-len(NarratorName)-2) + "\n\n")
		case entryUser:
			content.WriteString(userStyle.Render("You: ") + wordwrap.String(e.text, transcriptWidth-6) + "\n\n")
		case entryError:
			content.WriteString(errorStyle.Render(wordwrap.String(e.text, transcriptWidth)) + "\n\n")
		case entrySystem:
			content.WriteString(promptStyle.Render(wordwrap.String(e.text, transcriptWidth)) + "\n\n")
		}
	}

	if m.loading {
		content.WriteString(loadingStyle.Render("...") + "\n")
	}

	m.transcriptViewport.SetContent(content.String())
	m.transcriptViewport.GotoBottom()
}

// plainTranscript is the transcript without styling, for the clipboard.
func (m ConsoleUI) plainTranscript() string {
	var out strings.Builder
	for _, e := range m.transcript {
		switch e.kind {
		case entryNarration:
			out.WriteString(NarratorName + ": ")
		case entryUser:
			out.WriteString("You: ")
		}
		out.WriteString(e.text + "\n\n")
	}
	return out.String()
}

func (m *ConsoleUI) addEntry(kind entryKind, text string) {
	m.transcript = append(m.transcript, entry{kind: kind, text: text})
}

func (m *ConsoleUI) addEvents(events []engine.Event) {
	for _, ev := range events {
		if ev.Text == "" {
			continue
		}
		m.addEntry(entryNarration, ev.Text)
	}
}

func (m ConsoleUI) Init() tea.Cmd {
	if m.showScenarioModal {
		return m.loadScenarios()
	}
	return textarea.Blink
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Handle scenario modal first
	if m.showScenarioModal {
		return m.updateScenarioModal(msg)
	}

	// Handle quit modal second
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		mvCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.transcriptViewport, vpCmd = m.transcriptViewport.Update(msg)
		m.metaViewport, mvCmd = m.metaViewport.Update(msg)
		return m, tea.Batch(vpCmd, mvCmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		m.ready = true
		m.writeTranscript()
		if m.game != nil {
			m.metaViewport.SetContent(writeMetadata(m.game))
		}

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyCtrlY:
			if err := clipboard.WriteAll(m.plainTranscript()); err != nil {
				m.addEntry(entryError, "Could not copy transcript: "+err.Error())
			} else {
				m.addEntry(entrySystem, "Transcript copied to clipboard.")
			}
			m.writeTranscript()
			return m, nil
		case tea.KeyEnter:
			if m.loading {
				return m, nil
			}

			input := strings.TrimSpace(m.textarea.Value())
			m.textarea.Reset()
			if input == "" {
				return m, nil
			}

			if strings.HasPrefix(input, "/") {
				return m.handleCommand(input)
			}

			m.addEntry(entryUser, input)
			req, ok := m.buildRequest(input)
			if !ok {
				m.writeTranscript()
				return m, nil
			}
			m.loading = true
			m.writeTranscript()
			return m, m.sendAction(req)
		}

	case turnMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			m.addEntry(entryError, "Error: "+msg.err.Error())
		} else {
			m.game = &msg.turn.Game
			m.addEvents(msg.turn.Result.Events)
			if !msg.turn.Result.OK {
				m.addEntry(entryError, msg.turn.Result.Message)
			}
			if m.game.Status.IsTerminal() {
				m.addEntry(entrySystem, "The game is over. Press Ctrl+C to exit.")
			}
			m.metaViewport.SetContent(writeMetadata(m.game))
		}
		m.writeTranscript()
		return m, nil
	}

	// Update components for non-mouse events
	m.textarea, tiCmd = m.textarea.Update(msg)
	m.transcriptViewport, vpCmd = m.transcriptViewport.Update(msg)
	m.metaViewport, mvCmd = m.metaViewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd, mvCmd)
}

// buildRequest turns player input into an API request. It returns false when
// the input only opened an item prompt.
func (m *ConsoleUI) buildRequest(input string) (handlers.ActionRequest, bool) {
	if m.pendingItem != "" {
		actionType := m.pendingItem
		m.pendingItem = ""
		if n, err := strconv.Atoi(input); err == nil {
			inv := m.game.Player.Inventory
			if n < 1 || n > len(inv) {
				m.addEntry(entryError, fmt.Sprintf("Invalid selection. Choose an item from 1 to %d.", len(inv)))
				return handlers.ActionRequest{}, false
			}
			return handlers.ActionRequest{Action: &state.Action{Type: actionType, Item: inv[n-1].ID}}, true
		}
		command := string(actionType) + " " + input
		return handlers.ActionRequest{Command: &command}, true
	}

	if n, err := strconv.Atoi(input); err == nil {
		if n >= 1 && n <= len(m.game.Actions) && m.promptForItem(m.game.Actions[n-1].Action.Type) {
			return handlers.ActionRequest{}, false
		}
		return handlers.ActionRequest{Selection: &n}, true
	}

	switch verb := strings.ToLower(input); verb {
	case "use", "drop", "remove":
		actionType := state.ActUse
		if verb != "use" {
			actionType = state.ActDrop
		}
		if m.promptForItem(actionType) {
			return handlers.ActionRequest{}, false
		}
	}
	return handlers.ActionRequest{Command: &input}, true
}

// promptForItem lists the bag and remembers the pending action. Nothing is
// prompted when the action needs no item or the bag is empty.
func (m *ConsoleUI) promptForItem(actionType state.ActionType) bool {
	if actionType != state.ActUse && actionType != state.ActDrop {
		return false
	}
	inv := m.game.Player.Inventory
	if len(inv) == 0 {
		return false
	}

	var prompt strings.Builder
	if actionType == state.ActUse {
		prompt.WriteString("Which item would you like to use?")
	} else {
		prompt.WriteString("Which item would you like to drop?")
	}
	for i, item := range inv {
		prompt.WriteString(fmt.Sprintf("\n  %d. %s", i+1, item.Name))
	}
	m.addEntry(entrySystem, prompt.String())
	m.pendingItem = actionType
	return true
}

func (m ConsoleUI) handleCommand(input string) (tea.Model, tea.Cmd) {
	cmd := strings.ToLower(strings.TrimSpace(input))

	switch cmd {
	case "/help":
		m.addEntry(entrySystem, `Commands:
• /help - Show this help
• Ctrl+Y - Copy the transcript
• Ctrl+C - Quit game

How to play:
• Type the number of an action from the side panel
• Or type a command: go north, take candle, use key, drop rope, bag, look, quit
• Bare directions work too: n, s, e, w, up, down`)
	default:
		m.addEntry(entryError, fmt.Sprintf("Unknown command %q. Type /help for help.", cmd))
	}

	m.writeTranscript()
	return m, nil
}

func (m ConsoleUI) sendAction(req handlers.ActionRequest) tea.Cmd {
	gameID := m.game.ID
	return func() tea.Msg {
		turn, err := m.client.act(gameID, req)
		return turnMsg{turn, err}
	}
}

func (m ConsoleUI) loadScenarios() tea.Cmd {
	return func() tea.Msg {
		scenarios, err := m.client.listScenarios()
		return scenariosLoadedMsg{scenarios, err}
	}
}

func (m ConsoleUI) createGame(scenarioFile string) tea.Cmd {
	return func() tea.Msg {
		game, err := m.client.createGame(scenarioFile, m.config.PlayerName)
		return gameCreatedMsg{game, err}
	}
}

// layout sizes the panels: the transcript takes three quarters of the width.
func (m *ConsoleUI) layout() {
	if m.width == 0 || m.height == 0 {
		return
	}
	transcriptWidth := int(float64(m.width)*0.75) - 4
	metaWidth := m.width - transcriptWidth - 6
	m.transcriptViewport.Width = transcriptWidth - 2
	m.transcriptViewport.Height = m.height - 5
	m.metaViewport.Width = metaWidth - 2
	m.metaViewport.Height = m.height - 4
	m.textarea.SetWidth(transcriptWidth - 4)
}

func (m ConsoleUI) updateScenarioModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case scenariosLoadedMsg:
		m.loadingScenarios = false
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.scenarios = msg.scenarios
		}

	case gameCreatedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.game = msg.game
		m.showScenarioModal = false
		m.layout()
		m.addEvents(m.game.Events)
		m.writeTranscript()
		m.metaViewport.SetContent(writeMetadata(m.game))
		m.textarea.Focus()
		m.ready = true
		return m, textarea.Blink

	case tea.KeyMsg:
		if m.loadingScenarios {
			if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyEsc {
				return m, tea.Quit
			}
			return m, nil
		}

		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		}

		if m.err != nil || m.loading {
			return m, nil
		}

		switch msg.Type {
		case tea.KeyUp:
			if m.selectedScenario > 0 {
				m.selectedScenario--
			}
		case tea.KeyDown:
			if m.selectedScenario < len(m.scenarios)-1 {
				m.selectedScenario++
			}
		case tea.KeyEnter:
			if len(m.scenarios) > 0 {
				m.loading = true
				return m, m.createGame(m.scenarios[m.selectedScenario].FileName)
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				if m.showScenarioModal {
					return m, nil
				}
				m.textarea.Focus()
				return m, textarea.Blink
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Quit Game?"))
	content.WriteString("\n\n")
	content.WriteString("Are you sure you want to leave the mansion?")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue, or Ctrl+C to force quit"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) renderScenarioModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder

	switch {
	case m.loadingScenarios:
		content.WriteString(modalTitleStyle.Render("Loading Scenarios..."))
		content.WriteString("\n\n")
		content.WriteString(loadingStyle.Render("Please wait while we fetch available scenarios..."))
	case m.err != nil:
		content.WriteString(modalTitleStyle.Render("Error"))
		content.WriteString("\n\n")
		content.WriteString(errorStyle.Render(m.err.Error()))
		content.WriteString("\n\n")
		content.WriteString("Press Ctrl+C to exit")
	case m.loading:
		content.WriteString(modalTitleStyle.Render("Creating Game..."))
		content.WriteString("\n\n")
		content.WriteString(loadingStyle.Render("Unlocking the front door..."))
	default:
		content.WriteString(modalTitleStyle.Render("Select a Scenario"))
		content.WriteString("\n\n")

		for i, s := range m.scenarios {
			if i == m.selectedScenario {
				content.WriteString(modalSelectedItemStyle.Render(fmt.Sprintf("▶ %s", s.Name)))
			} else {
				content.WriteString(modalItemStyle.Render(fmt.Sprintf("  %s", s.Name)))
			}
			content.WriteString("\n")
		}

		content.WriteString("\n")
		content.WriteString(promptStyle.Render("Use ↑/↓ to navigate, Enter to select, Ctrl+C to exit"))
	}

	modal := modalStyle.Width(60).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showQuitModal {
		return m.renderQuitModal()
	}

	if m.showScenarioModal {
		return m.renderScenarioModal()
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	transcriptWidth := int(float64(m.width)*0.75) - 4
	metaWidth := m.width - transcriptWidth - 6

	transcriptPanel := transcriptPanelStyle.Width(transcriptWidth).Height(m.height - 3).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.transcriptViewport.View(),
			"",
			separatorStyle.Render(strings.Repeat("─", max(transcriptWidth-4, 1))),
			m.textarea.View(),
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, transcriptPanel, metaPanel)
}
