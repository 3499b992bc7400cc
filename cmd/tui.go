// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Tidemark Labs

package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/tidemark/aquaflow/pkg/aquahid"
	"github.com/tidemark/aquaflow/pkg/hiddev"
)

//////////////////////////////////////////////////////////////
// Constants
//////////////////////////////////////////////////////////////

// Focus states
const (
	focusFanList = iota
	focusPWMInput
)

//////////////////////////////////////////////////////////////
// Types
//////////////////////////////////////////////////////////////

// fanItem is one fan channel in the selection list
type fanItem struct {
	index int
	label string
	ctrl  bool
}

// Implement list.Item interface
func (f fanItem) Title() string { return fmt.Sprintf("%d: %s", f.index, f.label) }
func (f fanItem) Description() string {
	if f.ctrl {
		return "controllable"
	}
	return "sensor only"
}
func (f fanItem) FilterValue() string { return f.label }

// eventLogEntry is one line of the dashboard event log
type eventLogEntry struct {
	timestamp time.Time
	message   string
	isError   bool
}

// dashModel is the Bubble Tea model for the live dashboard
type dashModel struct {
	sess *aquahid.Session
	dev  *hiddev.Device
	desc *aquahid.DeviceDescriptor

	// Latest decoded snapshot, nil until the first report arrives
	snapshot *aquahid.SensorSnapshot
	stale    bool

	// Control
	fanList      list.Model
	pwmInput     textinput.Model
	focusedField int

	// Event log
	eventLog      []eventLogEntry
	maxLogEntries int

	// UI state
	width    int
	height   int
	quitting bool
}

//////////////////////////////////////////////////////////////
// Messages
//////////////////////////////////////////////////////////////

type dashTickMsg time.Time

type applyResultMsg struct {
	channel int
	percent float64
	err     error
}

//////////////////////////////////////////////////////////////
// Model Initialization
//////////////////////////////////////////////////////////////

func initialDashModel(sess *aquahid.Session, dev *hiddev.Device, desc *aquahid.DeviceDescriptor) dashModel {
	ti := textinput.New()
	ti.Placeholder = "50"
	ti.CharLimit = 6
	ti.Width = 8

	items := make([]list.Item, 0, len(desc.Fans))
	for i, f := range desc.Fans {
		items = append(items, fanItem{index: i, label: f.Label, ctrl: f.CtrlOffset >= 0})
	}

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = true
	delegate.SetHeight(2)
	fanList := list.New(items, delegate, 30, 10)
	fanList.Title = "Channels"
	fanList.SetShowStatusBar(false)
	fanList.SetShowHelp(false)
	fanList.SetFilteringEnabled(false)

	return dashModel{
		sess:          sess,
		dev:           dev,
		desc:          desc,
		fanList:       fanList,
		pwmInput:      ti,
		focusedField:  focusFanList,
		eventLog:      make([]eventLogEntry, 0),
		maxLogEntries: 100,
		width:         80,
		height:        24,
	}
}

//////////////////////////////////////////////////////////////
// Bubble Tea Interface
//////////////////////////////////////////////////////////////

func (m dashModel) Init() tea.Cmd {
	return tea.Batch(
		dashTickCmd(),
		tea.EnterAltScreen,
	)
}

func dashTickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return dashTickMsg(t)
	})
}

func (m dashModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "tab":
			if m.focusedField == focusFanList {
				m.focusedField = focusPWMInput
				cmds = append(cmds, m.pwmInput.Focus())
			} else {
				m.focusedField = focusFanList
				m.pwmInput.Blur()
			}
		case "enter":
			if m.focusedField == focusPWMInput {
				return m.applySetpoint()
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case dashTickMsg:
		snap, err := m.sess.Snapshot()
		if err == nil {
			m.snapshot = snap
			m.stale = false
		} else if errors.Is(err, aquahid.ErrNoData) {
			if m.snapshot != nil && !m.stale {
				m.addLogEntry("Sensor data stale", true)
			}
			m.stale = true
		}
		return m, dashTickCmd()

	case applyResultMsg:
		if msg.err != nil {
			m.addLogEntry(fmt.Sprintf("Channel %d: %v", msg.channel, msg.err), true)
		} else {
			m.addLogEntry(fmt.Sprintf("Channel %d setpoint set to %.2f%%", msg.channel, msg.percent), false)
		}
	}

	// Update child components
	var cmd tea.Cmd
	if m.focusedField == focusPWMInput {
		m.pwmInput, cmd = m.pwmInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	if m.focusedField == focusFanList {
		m.fanList, cmd = m.fanList.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// applySetpoint parses the input and runs the write transaction off the
// update loop.
func (m dashModel) applySetpoint() (tea.Model, tea.Cmd) {
	item, ok := m.fanList.SelectedItem().(fanItem)
	if !ok {
		return m, nil
	}

	centi, err := parsePercent(strings.TrimSpace(m.pwmInput.Value()))
	if err != nil {
		m.addLogEntry(err.Error(), true)
		return m, nil
	}

	sess := m.sess
	ch := item.index
	return m, func() tea.Msg {
		err := sess.SetPWM(ch, aquahid.PercentToPWM(centi))
		return applyResultMsg{channel: ch, percent: float64(centi) / 100, err: err}
	}
}

func (m *dashModel) addLogEntry(message string, isError bool) {
	entry := eventLogEntry{
		timestamp: time.Now(),
		message:   message,
		isError:   isError,
	}
	m.eventLog = append(m.eventLog, entry)

	// Keep only last N entries
	if len(m.eventLog) > m.maxLogEntries {
		m.eventLog = m.eventLog[len(m.eventLog)-m.maxLogEntries:]
	}
}

//////////////////////////////////////////////////////////////
// View
//////////////////////////////////////////////////////////////

func (m dashModel) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	// Styles
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		Background(lipgloss.Color("235")).
		Padding(0, 1)

	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("12")).
		Bold(true)

	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("10"))

	errorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("9")).
		Bold(true)

	warningStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("11"))

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	var s strings.Builder
	s.WriteString(titleStyle.Render("AQUAFLOW - " + strings.ToUpper(m.desc.Name)))
	s.WriteString("\n")
	s.WriteString(headerStyle.Render(fmt.Sprintf("Serial: %s | Tab: switch focus | Enter: apply setpoint | Press 'q' to quit",
		m.dev.Info().Serial)))
	s.WriteString("\n\n")

	// Sensors
	if m.snapshot == nil {
		s.WriteString(warningStyle.Render("Waiting for first sensor report..."))
		s.WriteString("\n\n")
	} else {
		if m.stale {
			s.WriteString(errorStyle.Render("SENSOR DATA STALE"))
			s.WriteString("\n")
		}
		s.WriteString(boxStyle.Render(aquahid.FormatSnapshot(m.desc, m.snapshot)))
		s.WriteString("\n\n")
	}

	// Control pane
	if len(m.desc.Fans) > 0 && m.desc.HasConfig() {
		control := strings.Builder{}
		control.WriteString(m.fanList.View())
		control.WriteString("\n")
		control.WriteString(labelStyle.Render("Setpoint %: "))
		control.WriteString(m.pwmInput.View())
		s.WriteString(boxStyle.Render(control.String()))
		s.WriteString("\n\n")
	}

	// Statistics
	stats := m.sess.Stats()
	s.WriteString(fmt.Sprintf("%s %s   %s %s\n",
		labelStyle.Render("Reports:"), valueStyle.Render(fmt.Sprintf("%d", stats.TotalReports.Load())),
		labelStyle.Render("Rate:"), valueStyle.Render(fmt.Sprintf("%.1f/s", stats.ReportRate())),
	))
	s.WriteString("\n")

	// Event log
	s.WriteString(labelStyle.Render("Recent Events:"))
	s.WriteString("\n")

	logHeight := m.height - 25 // Reserve space for header, sensors and control
	if logHeight < 3 {
		logHeight = 3
	}

	logContent := strings.Builder{}
	startIdx := len(m.eventLog) - logHeight
	if startIdx < 0 {
		startIdx = 0
	}

	if len(m.eventLog) == 0 {
		logContent.WriteString(headerStyle.Render("  (no events yet)"))
	} else {
		for i := startIdx; i < len(m.eventLog); i++ {
			entry := m.eventLog[i]
			timestamp := entry.timestamp.Format("15:04:05.000")
			if entry.isError {
				logContent.WriteString(fmt.Sprintf("%s %s\n",
					headerStyle.Render(timestamp),
					errorStyle.Render("✗ "+entry.message),
				))
			} else {
				logContent.WriteString(fmt.Sprintf("%s %s\n",
					headerStyle.Render(timestamp),
					valueStyle.Render("ℹ "+entry.message),
				))
			}
		}
	}

	s.WriteString(boxStyle.Width(m.width - 4).Render(logContent.String()))

	return s.String()
}

//////////////////////////////////////////////////////////////
// Command
//////////////////////////////////////////////////////////////

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Live sensor dashboard",
	Long: `Full-screen dashboard showing decoded sensor readings as they arrive,
with interactive manual setpoint control for controllable fan channels.`,
	RunE: runTui,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTui(cmd *cobra.Command, args []string) error {
	sess, dev, desc, err := OpenSession()
	if err != nil {
		return err
	}
	defer dev.Close()
	defer sess.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := dev.ReadLoop(ctx, sess.HandlePeriodicReport); err != nil && ctx.Err() == nil {
			log.Printf("Read loop error: %v", err)
		}
	}()

	p := tea.NewProgram(initialDashModel(sess, dev, desc), tea.WithAltScreen())
	_, err = p.Run()
	return err
}
