package main

import (
	"fmt"
	"github.com/callebjorkell/lcd-chardev/internal/driver"
	"github.com/chzyer/readline"
	log "github.com/sirupsen/logrus"
	"io"
	"strings"
)

const consoleHelp = `Every line entered is written to the display.
  .clear   clear the display
  .read    read the device
  .help    show this help
  .quit    exit`

func runConsole(d *driver.Driver) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "lcd> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("failed to create readline: %w", err)
	}
	defer rl.Close()
	log.SetOutput(rl.Stderr())

	fmt.Fprintln(rl.Stdout(), consoleHelp)
	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err != nil {
			return nil
		}

		if quit := runConsoleLine(d, rl.Stdout(), line); quit {
			return nil
		}
	}
}

func runConsoleLine(d *driver.Driver, out io.Writer, line string) (quit bool) {
	var err error
	switch strings.TrimSpace(line) {
	case ".quit", ".exit":
		return true
	case ".help":
		fmt.Fprintln(out, consoleHelp)
	case ".clear":
		err = clearDisplay(d)
	case ".read":
		err = readDevice(d.Device(), out)
	default:
		err = writeText(d.Device(), line)
	}
	if err != nil {
		fmt.Fprintln(out, "error:", err)
	}
	return false
}
