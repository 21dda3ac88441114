package sim

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"warpomatic/core"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	oledStyle  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Foreground(lipgloss.Color("117")).
			Padding(0, 1)
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
	onStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	offStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
)

const barWidth = 16

func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	oled := oledStyle.Render(strings.Join(m.Display.Lines(), "\n"))
	panels := lipgloss.JoinHorizontal(lipgloss.Top, oled, " ", panelStyle.Render(m.outputView()))

	var out strings.Builder
	out.WriteString(titleStyle.Render("Time-Warp-O-Matic"))
	out.WriteString("\n\n")
	out.WriteString(panels)
	out.WriteString("\n")
	out.WriteString(panelStyle.Render(m.statusView()))
	out.WriteString("\n")
	if len(m.events) > 0 {
		out.WriteString(dimStyle.Render(strings.Join(m.events, "\n")))
		out.WriteString("\n")
	}
	if m.message != "" {
		out.WriteString(m.message)
		out.WriteString("\n")
	}
	out.WriteString(dimStyle.Render("←/→:turn  space:click  d:double  l:long press  t:tap  p:pedal  f:flush  q:quit"))
	return out.String()
}

func (m *Model) outputView() string {
	frame := m.Output.Frame

	var b strings.Builder
	for i, d := range frame.Delay {
		fmt.Fprintf(&b, "delay %c %s %3d\n", 'A'+i, bar(d), d)
	}
	b.WriteString("switch ")
	for i, on := range frame.Switches {
		b.WriteString(lamp(on))
		b.WriteByte(byte('A' + i))
		if i < core.NumSwitches-1 {
			b.WriteByte(' ')
		}
	}
	b.WriteString("\nled    " + lamp(m.LED.On))
	b.WriteString("\npedal  " + lamp(m.pedal))
	return b.String()
}

func (m *Model) statusView() string {
	c := m.Manager.Controller()
	sched := m.Manager.Scheduler()

	clock := "no clock"
	if c.ClockPresent() {
		clock = fmt.Sprintf("clock %d us (%.1f bpm)", c.CycleTime(), 60e6/float64(c.CycleTime()))
	}
	store := fmt.Sprintf("writes %d  cursor %d", sched.Writes(), m.Manager.Store().Cursor())
	if sched.Pending() {
		store += "  pending"
	}
	if err := sched.LastError(); err != nil {
		store += "  error: " + err.Error()
	}
	return fmt.Sprintf("mode %s  fine %v  counter %d\n%s\n%s",
		c.State().Mode, c.State().FineTune, c.Counter(), clock, store)
}

func bar(v uint8) string {
	n := int(v) * barWidth / 255
	return onStyle.Render(strings.Repeat("█", n)) + offStyle.Render(strings.Repeat("░", barWidth-n))
}

func lamp(on bool) string {
	if on {
		return onStyle.Render("●")
	}
	return offStyle.Render("○")
}
