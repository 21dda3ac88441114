package pedal

import (
	"warpomatic/core"
)

// Console commands, one byte each. Replies are text lines.
const (
	CmdStatus      = 's'
	CmdEvents      = 'e'
	CmdClearEvents = 'c'
	CmdFlush       = 'f'
	CmdDump        = 'd'
	CmdHelp        = '?'
)

// Reply line prefixes
const (
	StatusPrefix = "status "
	ErrorPrefix  = "error "
	OKLine       = "ok"
	EndLine      = "." // Ends every reply
)

// Console runs one console command and writes the reply lines to out,
// followed by EndLine. It returns false for unknown commands.
func (m *Manager) Console(cmd byte, out func(string)) bool {
	defer out(EndLine)

	if !m.booted && cmd != CmdHelp {
		out(ErrorPrefix + "not booted")
		return true
	}

	switch cmd {
	case CmdStatus:
		out(StatusPrefix + m.statusLine())
	case CmdEvents:
		restore := core.SetDebugWriterScoped(out)
		core.DumpEvents()
		restore()
	case CmdClearEvents:
		core.ClearEvents()
		out(OKLine)
	case CmdFlush:
		if err := m.Flush(); err != nil {
			out(ErrorPrefix + err.Error())
		} else {
			out(OKLine)
		}
	case CmdDump:
		w := &lineWriter{out: out}
		if err := m.store.Dump(w); err != nil {
			out(ErrorPrefix + err.Error())
		}
		w.flush()
	case CmdHelp:
		out("s status, e events, c clear events, f flush, d dump memory")
	default:
		out(ErrorPrefix + "unknown command")
		return false
	}
	return true
}

// statusLine is a key=value summary of the pedal state
func (m *Manager) statusLine() string {
	c := m.controller
	state := c.State()
	effect := c.Effect()

	line := "effect=" + core.Itoa(effect) +
		" name=" + quote(m.table.Get(effect).Name) +
		" counter=" + core.Itoa(int(c.Counter())) +
		" ratio=" + core.Itoa(int(m.settings.Ratio[effect])) +
		" wetdry=" + flag(m.settings.WetDry) +
		" mode=" + state.Mode.String() +
		" fine=" + flag(state.FineTune) +
		" clock=" + flag(c.ClockPresent()) +
		" cycle=" + core.Utoa(c.CycleTime()) +
		" pedal=" + flag(m.pedal.Load()) +
		" pending=" + flag(m.scheduler.Pending()) +
		" writes=" + core.Utoa(m.scheduler.Writes()) +
		" cursor=" + core.Itoa(m.store.Cursor()) +
		" dropped=" + core.Utoa(m.queue.Dropped()) +
		" uptime=" + core.Utoa(core.TimerToMS(core.GetUptime())/1000)
	if err := m.scheduler.LastError(); err != nil {
		line += " last_error=" + quote(err.Error())
	}
	return line
}

func flag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func quote(s string) string {
	return "\"" + s + "\""
}

// lineWriter splits written bytes into lines
type lineWriter struct {
	out func(string)
	buf []byte
}

func (w *lineWriter) Write(p []byte) (int, error) {
	for _, b := range p {
		if b == '\n' {
			w.flush()
			continue
		}
		w.buf = append(w.buf, b)
	}
	return len(p), nil
}

func (w *lineWriter) flush() {
	if len(w.buf) > 0 {
		w.out(string(w.buf))
		w.buf = w.buf[:0]
	}
}
