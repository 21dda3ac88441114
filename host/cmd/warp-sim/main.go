package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"warpomatic/host/sim"
	"warpomatic/pedal"
	"warpomatic/pedal/config"
	"warpomatic/storage"
)

var (
	eepromPath = flag.String("eeprom", "warpomatic.eeprom", "EEPROM image file")
	configPath = flag.String("config", "", "JSON configuration file")
	midiPort   = flag.String("midi", "", "Take the external clock from the MIDI input whose name contains this")
	listMIDI   = flag.Bool("list-midi", false, "List MIDI inputs and exit")
)

func main() {
	flag.Parse()

	if *listMIDI {
		for _, name := range sim.MIDIPorts() {
			fmt.Println(name)
		}
		return
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	mem, err := storage.OpenFile(*eepromPath, int64(cfg.MemoryCapacity))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer mem.Close()

	model, err := sim.New(cfg, mem)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(model, tea.WithAltScreen())

	if *midiPort != "" {
		stop, err := sim.ListenMIDIClock(*midiPort, func() { p.Send(sim.BeatMsg{}) })
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v (inputs: %s)\n", err, strings.Join(sim.MIDIPorts(), ", "))
			os.Exit(1)
		}
		defer stop()
	}

	if _, err := p.Run(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*pedal.Config, error) {
	if path == "" {
		return config.DefaultConfig(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return config.LoadConfig(data)
}
