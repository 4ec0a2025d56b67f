// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Avery Hallewell

package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hallewell/modelink/pkg/tether"
)

const controlMaxLogEntries = 200

//////////////////////////////////////////////////////////////
// Messages
//////////////////////////////////////////////////////////////

type controlTickMsg time.Time

type controlFrameMsg struct {
	frame     *tether.Frame
	decodeErr error
}

type controlSentMsg struct {
	command uint8
	payload []byte
}

type controlLogMsg struct {
	text    string
	isError bool
}

type connectionLostMsg struct{}

type reconnectedMsg struct {
	connInfo string
}

//////////////////////////////////////////////////////////////
// Styles
//////////////////////////////////////////////////////////////

var (
	controlTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("57")).
				Padding(0, 1)

	controlStatusStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("252"))

	controlModeStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("42"))

	controlErrorStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("196"))

	controlDimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	controlPanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("240")).
				Padding(0, 1)
)

//////////////////////////////////////////////////////////////
// Model
//////////////////////////////////////////////////////////////

type controlLogEntry struct {
	timestamp time.Time
	text      string
	isError   bool
}

// controlModel is the Bubble Tea model for the peer control TUI.
type controlModel struct {
	linkMgr  *linkManager
	connInfo string

	// Peer state learned from the frame stream
	peerMode     int // -1 until the peer announces a mode
	paired       int // -1 unknown, 0 no, 1 yes
	lastResponse string

	// Log and statistics
	log      []controlLogEntry
	logView  viewport.Model
	stats    *tether.Statistics
	showHelp bool

	// UI state
	width          int
	height         int
	showStats      bool
	connectionLost bool
	quitting       bool
}

func initialControlModel(lm *linkManager, connInfo string) controlModel {
	vp := viewport.New(80, 14)
	return controlModel{
		linkMgr:  lm,
		connInfo: connInfo,
		peerMode: -1,
		paired:   -1,
		logView:  vp,
		stats:    tether.NewStatistics(),
		width:    80,
		height:   24,
	}
}

//////////////////////////////////////////////////////////////
// Bubble Tea Interface
//////////////////////////////////////////////////////////////

func (m controlModel) Init() tea.Cmd {
	return controlTickCmd()
}

func controlTickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return controlTickMsg(t)
	})
}

func (m controlModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeLog()

	case controlTickMsg:
		m.stats.CalculateRates()
		return m, controlTickCmd()

	case controlFrameMsg:
		m.handleFrame(msg)
		m.refreshLog()

	case controlSentMsg:
		m.addLog(fmt.Sprintf("TX %s", describeFrame(msg.command, msg.payload)), false)
		m.refreshLog()

	case controlLogMsg:
		m.addLog(msg.text, msg.isError)
		m.refreshLog()

	case connectionLostMsg:
		m.connectionLost = true
		m.addLog("connection lost, reconnecting...", true)
		m.refreshLog()

	case reconnectedMsg:
		m.connectionLost = false
		m.connInfo = msg.connInfo
		m.addLog(fmt.Sprintf("reconnected: %s", msg.connInfo), false)
		m.refreshLog()
	}

	var cmd tea.Cmd
	m.logView, cmd = m.logView.Update(msg)
	return m, cmd
}

func (m controlModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case "h":
		go m.linkMgr.send(tether.CmdHello, nil)
	case "g":
		go m.linkMgr.send(tether.CmdPing, nil)
	case "t":
		go m.linkMgr.send(tether.CmdTrigger, nil)
	case "0", "1", "2", "3":
		mode := msg.String()[0] - '0'
		go m.linkMgr.send(tether.CmdSetMode, []byte{mode})
	case "s":
		m.showStats = !m.showStats
		m.resizeLog()
	case "?":
		m.showHelp = !m.showHelp
	default:
		var cmd tea.Cmd
		m.logView, cmd = m.logView.Update(msg)
		return m, cmd
	}
	return m, nil
}

//////////////////////////////////////////////////////////////
// Frame handling
//////////////////////////////////////////////////////////////

func (m *controlModel) handleFrame(msg controlFrameMsg) {
	if msg.decodeErr != nil {
		m.stats.Update(nil, msg.decodeErr)
		m.addLog(msg.decodeErr.Error(), true)
		return
	}

	f := msg.frame
	m.stats.Update(f, nil)

	switch f.Command() {
	case tether.CmdSetMode:
		// The peer announces its debounced executions as SET_MODE.
		if mode, err := tether.ParseSetMode(f.Payload()); err == nil {
			m.peerMode = int(mode)
			m.addLog(fmt.Sprintf("peer switched to mode %d", mode), false)
			return
		}
	case tether.StatusPaired:
		m.paired = 1
		m.addLog("peer paired with an observer", false)
		return
	case tether.StatusUnpaired:
		m.paired = 0
		m.addLog("peer unpaired", false)
		return
	}

	if f.IsResponse() {
		m.lastResponse = tether.FormatCommand(f.Command())
		m.addLog(fmt.Sprintf("RX %s", tether.FormatCommand(f.Command())), f.Command() == tether.RspErr)
		return
	}
	m.addLog(fmt.Sprintf("RX %s", describeFrame(f.Command(), f.Payload())), false)
}

func describeFrame(command uint8, payload []byte) string {
	if command == tether.CmdSetMode && len(payload) == 1 {
		return fmt.Sprintf("%s mode=%d", tether.FormatCommand(command), payload[0])
	}
	if len(payload) > 0 {
		return fmt.Sprintf("%s payload=%X", tether.FormatCommand(command), payload)
	}
	return tether.FormatCommand(command)
}

//////////////////////////////////////////////////////////////
// Log handling
//////////////////////////////////////////////////////////////

func (m *controlModel) addLog(text string, isError bool) {
	m.log = append(m.log, controlLogEntry{timestamp: time.Now(), text: text, isError: isError})
	if len(m.log) > controlMaxLogEntries {
		m.log = m.log[len(m.log)-controlMaxLogEntries:]
	}
}

func (m *controlModel) refreshLog() {
	var b strings.Builder
	for _, e := range m.log {
		line := fmt.Sprintf("%s  %s", e.timestamp.Format("15:04:05.000"), e.text)
		if e.isError {
			line = controlErrorStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	atBottom := m.logView.AtBottom()
	m.logView.SetContent(b.String())
	if atBottom {
		m.logView.GotoBottom()
	}
}

func (m *controlModel) resizeLog() {
	headerLines := 5
	if m.showStats {
		headerLines += 10
	}
	h := m.height - headerLines - 2
	if h < 3 {
		h = 3
	}
	m.logView.Width = m.width - 4
	m.logView.Height = h
	m.refreshLog()
}

//////////////////////////////////////////////////////////////
// View
//////////////////////////////////////////////////////////////

func (m controlModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(controlTitleStyle.Render("Modelink Control"))
	b.WriteString("  ")
	if m.connectionLost {
		b.WriteString(controlErrorStyle.Render("RECONNECTING"))
	} else {
		b.WriteString(controlStatusStyle.Render(m.connInfo))
	}
	b.WriteString("\n\n")

	b.WriteString(m.renderPeerStatus())
	b.WriteString("\n")

	if m.showStats {
		b.WriteString(controlPanelStyle.Render(strings.TrimRight(m.stats.String(), "\n")))
		b.WriteString("\n")
	}

	b.WriteString(controlPanelStyle.Render(m.logView.View()))
	b.WriteString("\n")

	if m.showHelp {
		b.WriteString(controlDimStyle.Render("h hello | g ping | t trigger | 0-3 set mode | s stats | ? help | q quit"))
	} else {
		b.WriteString(controlDimStyle.Render("press ? for keys, q to quit"))
	}
	return b.String()
}

func (m controlModel) renderPeerStatus() string {
	mode := "unknown"
	if m.peerMode >= 0 {
		mode = fmt.Sprintf("%d", m.peerMode)
	}
	paired := "unknown"
	switch m.paired {
	case 0:
		paired = "no"
	case 1:
		paired = "yes"
	}
	last := m.lastResponse
	if last == "" {
		last = "-"
	}
	return fmt.Sprintf("%s %s   %s %s   %s %s",
		controlDimStyle.Render("peer mode:"), controlModeStyle.Render(mode),
		controlDimStyle.Render("paired:"), controlStatusStyle.Render(paired),
		controlDimStyle.Render("last response:"), controlStatusStyle.Render(last))
}
