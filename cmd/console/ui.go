package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jwebster45206/adventure-engine/pkg/content"
	"github.com/jwebster45206/adventure-engine/pkg/engine"
	"github.com/muesli/reflow/wordwrap"
)

const (
	PlaceHolderText = "What do you do?"
	maxSuggestions  = 6
)

const helpText = `Commands:
• /help - Show this help
• /copy - Copy the last narrative to the clipboard
• /quit - Leave the manor
• Ctrl+C - Quit

How to play:
• Type actions in plain words: "look around", "go to the library",
  "take the candle", "read the tome", "ask the butler about the family"
• Suggestions on the right change with the room
• Keep an eye on your fear and sanity`

type lineKind int

const (
	lineNarrator lineKind = iota
	linePlayer
	lineSystem
	lineError
)

type transcriptLine struct {
	kind lineKind
	text string
}

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	game         Game
	transcript   []transcriptLine
	last         *engine.ActionResult
	chatViewport viewport.Model
	metaViewport viewport.Model
	textarea     textarea.Model
	ready        bool
	width        int
	height       int
	err          error
	loading      bool

	// Scenario selection state
	showScenarioModal bool
	scenarios         []content.Summary
	selectedScenario  int
	loadingScenarios  bool

	// Quit confirmation state
	showQuitModal bool

	// Progress bar state
	progressTick int
}

type actionMsg struct {
	result *engine.ActionResult
	err    error
}

type scenariosLoadedMsg struct {
	scenarios []content.Summary
	err       error
}

type gameStartedMsg struct {
	result *engine.ActionResult
	err    error
}

type progressTickMsg struct{}

type keyMap struct {
	Leave   key.Binding
	Send    key.Binding
	Up      key.Binding
	Down    key.Binding
	Confirm key.Binding
	Decline key.Binding
}

var keys = keyMap{
	Leave:   key.NewBinding(key.WithKeys("ctrl+c", "esc"), key.WithHelp("ctrl+c", "leave")),
	Send:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "act")),
	Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑", "previous")),
	Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓", "next")),
	Confirm: key.NewBinding(key.WithKeys("y", "Y", "enter"), key.WithHelp("y", "yes")),
	Decline: key.NewBinding(key.WithKeys("n", "N"), key.WithHelp("n", "no")),
}

// Palette. Reds deepen as the player's fear rises.
const (
	colorBlood  = lipgloss.Color("124")
	colorDeep   = lipgloss.Color("88")
	colorAlarm  = lipgloss.Color("196")
	colorCandle = lipgloss.Color("214")
	colorText   = lipgloss.Color("252")
	colorDim    = lipgloss.Color("244")
	colorShadow = lipgloss.Color("240")
	colorVoice  = lipgloss.Color("39")
)

var (
	chatPanelStyle = lipgloss.NewStyle().Padding(2, 0, 1, 3)
	metaPanelStyle = lipgloss.NewStyle().Padding(2, 2, 0, 0)

	titleStyle     = lipgloss.NewStyle().Foreground(colorBlood).Bold(true)
	labelStyle     = lipgloss.NewStyle().Foreground(colorDim).Bold(true)
	narratorStyle  = lipgloss.NewStyle().Foreground(colorText)
	userStyle      = lipgloss.NewStyle().Foreground(colorVoice)
	systemStyle    = lipgloss.NewStyle().Foreground(colorDim).Italic(true)
	errorStyle     = lipgloss.NewStyle().Foreground(colorAlarm)
	endingStyle    = errorStyle.Bold(true)
	loadingStyle   = lipgloss.NewStyle().Foreground(colorCandle)
	promptStyle    = lipgloss.NewStyle().Foreground(colorShadow)
	separatorStyle = promptStyle

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorDeep).
			Padding(1, 2).
			Background(lipgloss.Color("233")).
			Foreground(lipgloss.Color("255"))
	modalTitleStyle        = titleStyle.Align(lipgloss.Center)
	modalItemStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	modalSelectedItemStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(colorBlood).Bold(true)
)

// fearStyle colors the fear meter: calm, uneasy, then terrified.
func fearStyle(fear int) lipgloss.Style {
	switch {
	case fear >= 8:
		return lipgloss.NewStyle().Foreground(colorAlarm).Bold(true)
	case fear >= 5:
		return lipgloss.NewStyle().Foreground(colorBlood)
	default:
		return lipgloss.NewStyle().Foreground(colorDim)
	}
}

func NewConsoleUI(game Game) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Focus()
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = 500
	ta.SetWidth(50)
	ta.SetHeight(2)
	ta.ShowLineNumbers = false

	chatVp := viewport.New(50, 20)
	chatVp.MouseWheelEnabled = true

	metaVp := viewport.New(20, 20)

	return ConsoleUI{
		game:              game,
		textarea:          ta,
		chatViewport:      chatVp,
		metaViewport:      metaVp,
		showScenarioModal: true,
		loadingScenarios:  true,
	}
}

// meterBar renders a value as a ten-cell bar.
func meterBar(value, maxValue int) string {
	if maxValue <= 0 {
		return ""
	}
	filled := min(max(value*10/maxValue, 0), 10)
	return strings.Repeat("█", filled) + strings.Repeat("░", 10-filled)
}

func writeMetadata(res *engine.ActionResult) string {
	var content strings.Builder
	if res == nil {
		return content.String()
	}

	content.WriteString(titleStyle.Render(strings.ToUpper(res.RoomName)) + "\n")
	content.WriteString(systemStyle.Render(string(res.Atmosphere)) + "\n\n")

	fmt.Fprintf(&content, "%s %s %d\n", labelStyle.Render("Fear   "), fearStyle(res.Fear).Render(meterBar(res.Fear, 10)), res.Fear)
	fmt.Fprintf(&content, "%s %s %d\n", labelStyle.Render("Sanity "), meterBar(res.Sanity, 100), res.Sanity)
	fmt.Fprintf(&content, "%s %s %d\n", labelStyle.Render("Health "), meterBar(res.Health, 100), res.Health)
	if res.Awareness > 0 {
		fmt.Fprintf(&content, "%s %s %d\n", labelStyle.Render("Sight  "), meterBar(res.Awareness, 10), res.Awareness)
	}
	fmt.Fprintf(&content, "\nStory progress: %d\n", res.StoryProgress)
	fmt.Fprintf(&content, "Time in manor: %dh%02dm\n\n", res.TimeInWorld/60, res.TimeInWorld%60)

	content.WriteString(labelStyle.Render("Inventory:") + "\n")
	if len(res.Inventory) == 0 {
		content.WriteString("Empty\n")
	}
	for _, it := range res.Inventory {
		content.WriteString("• " + it.Name + "\n")
	}

	if len(res.NPCs) > 0 {
		content.WriteString("\n" + labelStyle.Render("Present:") + "\n")
		for _, n := range res.NPCs {
			fmt.Fprintf(&content, "• %s (%s)\n", n.Name, n.Mood)
		}
	}
	if len(res.Threats) > 0 {
		content.WriteString("\n" + errorStyle.Render("Danger:") + "\n")
		for _, th := range res.Threats {
			fmt.Fprintf(&content, "• %s %d/%d\n", th.Name, th.HP, th.MaxHP)
		}
	}

	if res.IsGameOver {
		content.WriteString("\n" + endingStyle.Render("THE END") + "\n")
		return content.String()
	}
	if len(res.Actions) > 0 {
		content.WriteString("\n" + labelStyle.Render("Try:") + "\n")
		for _, a := range res.Actions[:min(len(res.Actions), maxSuggestions)] {
			content.WriteString("• " + a + "\n")
		}
	}
	return content.String()
}

// writeChatContent rebuilds the transcript for the current viewport width
func (m *ConsoleUI) writeChatContent() {
	chatWidth := max(m.chatViewport.Width-6, 20) // Account for left(3) + right(3) padding

	var content strings.Builder
	content.WriteString(titleStyle.Render("ADVENTURE ENGINE") + "\n\n")
	content.WriteString(separatorStyle.Render(strings.Repeat("─", chatWidth)) + "\n\n")

	for _, line := range m.transcript {
		switch line.kind {
		case linePlayer:
			content.WriteString(userStyle.Render("> ") + wordwrap.String(line.text, chatWidth-2) + "\n\n")
		case lineSystem:
			content.WriteString(systemStyle.Render(wordwrap.String(line.text, chatWidth)) + "\n\n")
		case lineError:
			content.WriteString(errorStyle.Render("Error: "+wordwrap.String(line.text, chatWidth-7)) + "\n\n")
		default:
			content.WriteString(narratorStyle.Render(wordwrap.String(line.text, chatWidth)) + "\n\n")
		}
	}

	if m.last != nil && m.last.IsGameOver && m.last.Ending != "" {
		content.WriteString(endingStyle.Render(wordwrap.String(m.last.Ending, chatWidth)) + "\n\n")
	}

	if m.loading {
		content.WriteString(m.renderProgressBar())
	}

	m.chatViewport.SetContent(content.String())
	m.chatViewport.GotoBottom()
}

func (m *ConsoleUI) layout() {
	chatWidth := int(float64(m.width)*0.7) - 4
	metaWidth := m.width - chatWidth - 6

	m.chatViewport.Width = chatWidth - 2
	m.chatViewport.Height = m.height - 7
	m.metaViewport.Width = metaWidth - 2
	m.metaViewport.Height = m.height - 4
	m.textarea.SetWidth(chatWidth - 4)
}

func (m *ConsoleUI) addLine(kind lineKind, text string) {
	m.transcript = append(m.transcript, transcriptLine{kind: kind, text: text})
}

func (m *ConsoleUI) showResult(res *engine.ActionResult) {
	m.last = res
	m.addLine(lineNarrator, res.Narrative)
	m.metaViewport.SetContent(writeMetadata(res))
	m.writeChatContent()
}

func (m ConsoleUI) Init() tea.Cmd {
	return m.loadScenarios()
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showScenarioModal {
		return m.updateScenarioModal(msg)
	}
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
		m.chatViewport, vpCmd = m.chatViewport.Update(msg)
		m.metaViewport, mvCmd = m.metaViewport.Update(msg)
		return m, tea.Batch(vpCmd, mvCmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		m.ready = true
		m.writeChatContent()
		m.metaViewport.SetContent(writeMetadata(m.last))

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Leave):
			m.showQuitModal = true
			return m, nil
		case key.Matches(msg, keys.Send):
			return m.submit()
		}

	case actionMsg:
		m.loading = false
		if msg.err != nil {
			m.addLine(lineError, msg.err.Error())
			m.writeChatContent()
			return m, nil
		}
		m.showResult(msg.result)
		return m, nil

	case progressTickMsg:
		if m.loading {
			m.progressTick++
			m.writeChatContent()
			return m, progressTick()
		}
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.chatViewport, vpCmd = m.chatViewport.Update(msg)
	m.metaViewport, mvCmd = m.metaViewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd, mvCmd)
}

// submit sends the typed line as an action, or runs it as a /command.
func (m ConsoleUI) submit() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.textarea.Value())
	if m.loading || input == "" {
		return m, nil
	}
	m.textarea.Reset()
	if strings.HasPrefix(input, "/") {
		return m.handleCommand(input)
	}

	m.loading = true
	m.progressTick = 0
	m.addLine(linePlayer, input)
	m.writeChatContent()
	return m, tea.Batch(m.act(input), progressTick())
}

func (m ConsoleUI) handleCommand(input string) (tea.Model, tea.Cmd) {
	cmd := strings.ToLower(strings.TrimSpace(input))

	switch cmd {
	case "/help":
		m.addLine(lineSystem, helpText)

	case "/copy":
		if m.last == nil {
			m.addLine(lineSystem, "Nothing to copy yet.")
			break
		}
		if err := clipboard.WriteAll(m.last.Narrative); err != nil {
			m.addLine(lineError, "could not copy to the clipboard: "+err.Error())
			break
		}
		m.addLine(lineSystem, "Copied the last narrative to the clipboard.")

	case "/quit", "/exit":
		return m, tea.Quit

	default:
		m.addLine(lineSystem, fmt.Sprintf("Unknown command %s. Type /help for commands.", cmd))
	}

	m.writeChatContent()
	return m, nil
}

func (m ConsoleUI) act(input string) tea.Cmd {
	game := m.game
	return func() tea.Msg {
		ctx, cancel := background()
		defer cancel()
		res, err := game.Act(ctx, input)
		return actionMsg{res, err}
	}
}

func (m ConsoleUI) loadScenarios() tea.Cmd {
	game := m.game
	return func() tea.Msg {
		ctx, cancel := background()
		defer cancel()
		list, err := game.Scenarios(ctx)
		return scenariosLoadedMsg{list, err}
	}
}

func (m ConsoleUI) startGame(scenario string) tea.Cmd {
	game := m.game
	return func() tea.Msg {
		ctx, cancel := background()
		defer cancel()
		res, err := game.Start(ctx, scenario)
		return gameStartedMsg{res, err}
	}
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

	case gameStartedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.showScenarioModal = false
		if m.width > 0 && m.height > 0 {
			m.layout()
		}
		m.ready = true
		m.showResult(msg.result)
		m.textarea.Focus()
		return m, textarea.Blink

	case tea.KeyMsg:
		stuck := m.loadingScenarios || m.err != nil
		switch {
		case key.Matches(msg, keys.Leave) && stuck:
			return m, tea.Quit
		case stuck:
			return m, nil
		case key.Matches(msg, keys.Leave):
			m.showQuitModal = true
		case key.Matches(msg, keys.Up):
			m.selectedScenario = max(m.selectedScenario-1, 0)
		case key.Matches(msg, keys.Down):
			m.selectedScenario = min(m.selectedScenario+1, max(len(m.scenarios)-1, 0))
		case key.Matches(msg, keys.Send) && len(m.scenarios) > 0 && !m.loading:
			m.loading = true
			return m, m.startGame(m.scenarios[m.selectedScenario].ID)
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
		switch {
		case key.Matches(msg, keys.Leave, keys.Confirm):
			return m, tea.Quit
		case key.Matches(msg, keys.Decline):
			m.showQuitModal = false
			if m.showScenarioModal {
				return m, nil
			}
			m.textarea.Focus()
			return m, textarea.Blink
		}
	}

	return m, nil
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Leave the Manor?"))
	content.WriteString("\n\n")
	content.WriteString("The house will remember you.")
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
	case m.err != nil:
		content.WriteString(modalTitleStyle.Render("Error"))
		content.WriteString("\n\n")
		content.WriteString(errorStyle.Render(m.err.Error()))
		content.WriteString("\n\n")
		content.WriteString("Press Ctrl+C to exit")
	case m.loading:
		content.WriteString(modalTitleStyle.Render("Opening the doors..."))
		content.WriteString("\n\n")
		content.WriteString(loadingStyle.Render("Setting up your adventure..."))
	default:
		content.WriteString(modalTitleStyle.Render("Select a Scenario"))
		content.WriteString("\n\n")

		for i, s := range m.scenarios {
			label := fmt.Sprintf("%s (%d rooms)", s.Name, s.Rooms)
			if i == m.selectedScenario {
				content.WriteString(modalSelectedItemStyle.Render("▶ " + label))
			} else {
				content.WriteString(modalItemStyle.Render("  " + label))
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
	if m.showScenarioModal {
		return m.renderScenarioModal()
	}
	if m.showQuitModal {
		return m.renderQuitModal()
	}
	if !m.ready {
		return "\n  Initializing..."
	}

	chatWidth := int(float64(m.width)*0.7) - 4
	metaWidth := m.width - chatWidth - 6

	chatPanel := chatPanelStyle.Width(chatWidth).Height(m.height - 3).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.chatViewport.View(),
			"",
			separatorStyle.Render(strings.Repeat("─", max(chatWidth-4, 0))),
			m.textarea.View(),
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, chatPanel, metaPanel)
}

// renderProgressBar draws an animated bar while an action is in flight
func (m ConsoleUI) renderProgressBar() string {
	usable := min(max(m.chatViewport.Width-6, 10), 80)

	const totalFrames = 40
	frame := m.progressTick % totalFrames
	filled := (frame * usable) / totalFrames

	var bar strings.Builder
	for i := range usable {
		switch {
		case i < filled:
			bar.WriteString("█")
		case i == filled && frame%4 < 2:
			bar.WriteString("▓")
		default:
			bar.WriteString("░")
		}
	}
	return separatorStyle.Render(bar.String())
}

func progressTick() tea.Cmd {
	return tea.Tick(time.Millisecond*200, func(time.Time) tea.Msg {
		return progressTickMsg{}
	})
}
