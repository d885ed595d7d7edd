package main

import (
	"context"
	"errors"
	"fmt"
	"github.com/callebjorkell/lcd-chardev/internal/button"
	"github.com/callebjorkell/lcd-chardev/internal/chardev"
	"github.com/callebjorkell/lcd-chardev/internal/driver"
	"github.com/callebjorkell/lcd-chardev/internal/server"
	log "github.com/sirupsen/logrus"
	"gopkg.in/alecthomas/kingpin.v2"
	"io"
	"net"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
)

var (
	app        = kingpin.New("lcdchardev", "Character LCD exposed as a stream device")
	debug      = app.Flag("debug", "Turn on debug logging.").Bool()
	configFile = app.Flag("config", "Configuration file.").Short('c').Default(defaultConfigFile).String()
	backend    = app.Flag("backend", "Override the configured backend.").Enum("sim", "mem", "gpiomem", "periph")

	serve    = app.Command("serve", "Attach the display and serve it over HTTP.")
	write    = app.Command("write", "Write text to the display.")
	text     = write.Arg("text", "Text to write, at most one display full.").Required().String()
	read     = app.Command("read", "Read the device.")
	clearCmd = app.Command("clear", "Clear the display.")
	console  = app.Command("console", "Write every entered line to the display.")
	version  = app.Command("version", "Show current version.")
)

var buildTime, buildVersion string

func showVersion() {
	if buildTime != "" && buildVersion != "" {
		fmt.Printf("%s (built: %s)\n", buildVersion, buildTime)
	} else {
		fmt.Println("lcdchardev: dev")
	}
}

func main() {
	cmd, err := app.Parse(os.Args[1:])
	if err != nil {
		fmt.Printf("%v: Try --help\n", err.Error())
		os.Exit(1)
	}

	log.SetFormatter(&log.TextFormatter{
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if *debug {
		log.Info("Enabling debug output...")
		log.SetLevel(log.DebugLevel)
	}

	if cmd == version.FullCommand() {
		showVersion()
		return
	}

	conf, err := readConfig(*configFile)
	if err != nil {
		log.Fatal("Unable to read configuration: ", err)
	}
	if *backend != "" {
		conf.Backend = driver.Backend(*backend)
	}

	d, err := driver.Attach(conf.DriverConfig())
	if err != nil {
		log.Fatal("Unable to attach LCD: ", err)
	}
	defer func() {
		if err := d.Detach(); err != nil {
			log.Error(err)
		}
	}()

	switch cmd {
	case serve.FullCommand():
		err = startServer(conf, d)
	case write.FullCommand():
		err = writeText(d.Device(), *text)
	case read.FullCommand():
		err = readDevice(d.Device(), os.Stdout)
	case clearCmd.FullCommand():
		err = clearDisplay(d)
	case console.FullCommand():
		err = runConsole(d)
	default:
		kingpin.FatalUsage("Unrecognized command")
	}
	if err != nil {
		log.Error(err)
	}
}

// writeText writes one line the way `echo text > device` would.
func writeText(dev *chardev.Device, text string) error {
	s, err := dev.Open()
	if err != nil {
		return err
	}
	defer s.Close()

	_, err = s.Write([]byte(text + "\n"))
	return err
}

func readDevice(dev *chardev.Device, w io.Writer) error {
	s, err := dev.Open()
	if err != nil {
		return err
	}
	defer s.Close()

	_, err = io.Copy(w, s)
	return err
}

func clearDisplay(d *driver.Driver) error {
	s, err := d.Device().Open()
	if err != nil {
		return err
	}
	defer s.Close()

	d.Display().Reset()
	return nil
}

func startServer(conf *Config, d *driver.Driver) error {
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := server.NewServer(conf.HTTP.Addr, d.Device(), d.Display())
	errChan := make(chan error, 1)
	go func() {
		errChan <- p.Listen()
	}()
	defer p.Close()

	if conf.HTTP.MDNS {
		port, err := listenPort(conf.HTTP.Addr)
		if err != nil {
			return err
		}
		if err := p.Advertise(conf.HTTP.Instance, port); err != nil {
			log.Warn("Unable to advertise: ", err)
		}
	}

	var wg sync.WaitGroup
	// the button handler must be done before the driver is detached
	defer func() {
		cancel()
		wg.Wait()
	}()

	if conf.Button != "" {
		events, err := button.Watch(ctx, conf.Button)
		if err != nil {
			log.Warn("Button disabled: ", err)
		} else {
			wg.Add(1)
			go func() {
				defer wg.Done()
				handleButton(events, d)
			}()
		}
	}

	select {
	case <-signalChan:
	case err := <-errChan:
		return err
	}

	log.Info("Done...")
	return nil
}

// handleButton clears the display on every press until events is closed.
func handleButton(events <-chan button.Event, d *driver.Driver) {
	for e := range events {
		log.Infof("Event: %v", e)
		if e.Pressed {
			if err := clearDisplay(d); err != nil {
				log.Warn("Unable to clear display: ", err)
			}
		}
	}
}

func listenPort(addr string) (int, error) {
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return 0, err
	}
	p, err := strconv.Atoi(port)
	if err != nil {
		return 0, errors.New("listen address needs a numeric port for mDNS")
	}
	return p, nil
}
