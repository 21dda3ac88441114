package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"warpomatic/host/mcu"
	"warpomatic/host/serial"
	"warpomatic/pedal"
)

var (
	device  = flag.String("device", "/dev/ttyACM0", "Serial device path")
	baud    = flag.Int("baud", 115200, "Baud rate (ignored for USB CDC)")
	verbose = flag.Bool("verbose", false, "Show debug output from the pedal")
)

func main() {
	flag.Parse()

	fmt.Println("Time-Warp-O-Matic monitor")
	fmt.Println("=========================")

	mcuConn := mcu.NewMCU()
	if *verbose {
		mcuConn.OnLog = func(line string) {
			fmt.Println("  | " + line)
		}
	}

	fmt.Printf("Connecting to pedal on %s...\n", *device)
	cfg := serial.DefaultConfig(*device)
	cfg.Baud = *baud
	if err := mcuConn.ConnectWithConfig(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer mcuConn.Close()

	if err := printStatus(mcuConn); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Enter commands (type 'help' for available commands, 'quit' to exit):")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		var err error

		switch parts[0] {
		case "quit", "exit", "q":
			fmt.Println("Goodbye!")
			return

		case "help", "?":
			printHelp()

		case "status", "s":
			err = printStatus(mcuConn)

		case "events", "e":
			err = printReply(mcuConn, pedal.CmdEvents)

		case "clear":
			err = printReply(mcuConn, pedal.CmdClearEvents)

		case "flush", "f":
			err = printReply(mcuConn, pedal.CmdFlush)

		case "dump", "d":
			err = printReply(mcuConn, pedal.CmdDump)

		case "watch", "w":
			interval := time.Second
			if len(parts) > 1 {
				secs, convErr := strconv.ParseFloat(parts[1], 64)
				if convErr != nil || secs <= 0 {
					fmt.Printf("Invalid interval: %s\n", parts[1])
					continue
				}
				interval = time.Duration(secs * float64(time.Second))
			}
			err = watch(mcuConn, interval)

		default:
			fmt.Printf("Unknown command: %s (type 'help' for available commands)\n", parts[0])
		}

		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	}

	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println("\nAvailable commands:")
	fmt.Println("  help           - Show this help message")
	fmt.Println("  status         - Show effect, parameters, clock and store state")
	fmt.Println("  events         - Dump the event ring")
	fmt.Println("  clear          - Clear the event ring")
	fmt.Println("  flush          - Write pending settings now")
	fmt.Println("  dump           - Dump the settings memory")
	fmt.Println("  watch [secs]   - Show the status until interrupted")
	fmt.Println("  quit/exit/q    - Exit the program")
	fmt.Println()
}

func printStatus(mcuConn *mcu.MCU) error {
	s, err := mcuConn.Status()
	if err != nil {
		return fmt.Errorf("status: %w", err)
	}
	fmt.Println(s)
	return nil
}

func printReply(mcuConn *mcu.MCU, cmd byte) error {
	reply, err := mcuConn.Command(cmd)
	for _, line := range reply {
		fmt.Println(line)
	}
	return err
}

// watch prints the status whenever it changes, until Ctrl-C
func watch(mcuConn *mcu.MCU, interval time.Duration) error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	defer signal.Stop(stop)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var last mcu.Status
	for {
		s, err := mcuConn.Status()
		if err != nil {
			return err
		}
		// Uptime alone does not count as a change
		cur := *s
		cur.UptimeS = 0
		if cur != last {
			fmt.Printf("[%s]\n%s\n", time.Now().Format("15:04:05"), s)
			last = cur
		}

		select {
		case <-stop:
			return nil
		case <-ticker.C:
		}
	}
}
