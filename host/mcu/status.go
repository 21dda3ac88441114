package mcu

import (
	"fmt"
	"strconv"
	"strings"

	"warpomatic/pedal"
)

// Status is the pedal state reported by the status command
type Status struct {
	Effect    int
	Name      string
	Counter   int
	Ratio     int
	WetDry    bool
	Mode      string
	FineTune  bool
	Clock     bool
	CycleUS   uint32
	Pedal     bool
	Pending   bool
	Writes    uint32
	Cursor    int
	Dropped   uint32
	UptimeS   uint32
	LastError string
}

// ParseStatus parses a status line of key=value fields. Values may be
// double quoted.
func ParseStatus(line string) (*Status, error) {
	if !strings.HasPrefix(line, pedal.StatusPrefix) {
		return nil, fmt.Errorf("not a status line: %q", line)
	}
	fields, err := splitFields(strings.TrimPrefix(line, pedal.StatusPrefix))
	if err != nil {
		return nil, err
	}

	s := &Status{}
	p := fieldParser{fields: fields}
	s.Effect = p.intField("effect")
	s.Name = p.strField("name")
	s.Counter = p.intField("counter")
	s.Ratio = p.intField("ratio")
	s.WetDry = p.flagField("wetdry")
	s.Mode = p.strField("mode")
	s.FineTune = p.flagField("fine")
	s.Clock = p.flagField("clock")
	s.CycleUS = p.uintField("cycle")
	s.Pedal = p.flagField("pedal")
	s.Pending = p.flagField("pending")
	s.Writes = p.uintField("writes")
	s.Cursor = p.intField("cursor")
	s.Dropped = p.uintField("dropped")
	s.UptimeS = p.uintField("uptime")
	s.LastError = fields["last_error"]
	if p.err != nil {
		return nil, p.err
	}
	return s, nil
}

// String formats the status for the terminal
func (s *Status) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-10s (effect %d)  mode %s  up %ds", s.Name, s.Effect, s.Mode, s.UptimeS)
	if s.FineTune {
		b.WriteString(" fine")
	}
	fmt.Fprintf(&b, "\n  counter %d  ratio %d  wet+dry %v  pedal %v", s.Counter, s.Ratio, s.WetDry, s.Pedal)
	if s.Clock {
		fmt.Fprintf(&b, "\n  clock %d us (%.1f bpm)", s.CycleUS, 60e6/float64(s.CycleUS))
	} else {
		b.WriteString("\n  no clock")
	}
	fmt.Fprintf(&b, "\n  writes %d  cursor %d  pending %v  dropped %d", s.Writes, s.Cursor, s.Pending, s.Dropped)
	if s.LastError != "" {
		b.WriteString("\n  last error: " + s.LastError)
	}
	return b.String()
}

func splitFields(text string) (map[string]string, error) {
	fields := make(map[string]string)
	for text = strings.TrimSpace(text); text != ""; text = strings.TrimSpace(text) {
		eq := strings.IndexByte(text, '=')
		if eq <= 0 {
			return nil, fmt.Errorf("malformed field in %q", text)
		}
		key := text[:eq]
		text = text[eq+1:]

		var value string
		if strings.HasPrefix(text, "\"") {
			end := strings.IndexByte(text[1:], '"')
			if end < 0 {
				return nil, fmt.Errorf("unterminated value for %s", key)
			}
			value = text[1 : end+1]
			text = text[end+2:]
		} else {
			end := strings.IndexByte(text, ' ')
			if end < 0 {
				end = len(text)
			}
			value = text[:end]
			text = text[end:]
		}
		fields[key] = value
	}
	return fields, nil
}

// fieldParser keeps the first conversion error
type fieldParser struct {
	fields map[string]string
	err    error
}

func (p *fieldParser) strField(key string) string {
	v, ok := p.fields[key]
	if !ok && p.err == nil {
		p.err = fmt.Errorf("status lacks %s", key)
	}
	return v
}

func (p *fieldParser) intField(key string) int {
	v := p.strField(key)
	if p.err != nil {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.err = fmt.Errorf("status field %s: %w", key, err)
	}
	return n
}

func (p *fieldParser) uintField(key string) uint32 {
	v := p.strField(key)
	if p.err != nil {
		return 0
	}
	n, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		p.err = fmt.Errorf("status field %s: %w", key, err)
	}
	return uint32(n)
}

func (p *fieldParser) flagField(key string) bool {
	return p.strField(key) == "1"
}
