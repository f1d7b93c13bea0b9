// synergyc is the client entry point: it connects to a Synergy server and
// hands over local keyboard, mouse, and clipboard control while this
// screen is the active input sink.
//
// It can be launched non-interactively via flags, or with no -server flag
// it falls back to an interactive prompt for the server address.
package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/pterm/pterm"

	"github.com/synergy-core/synergyc/internal/client"
	"github.com/synergy-core/synergyc/internal/config"
	"github.com/synergy-core/synergyc/internal/screen"
	"github.com/synergy-core/synergyc/internal/screen/console"
	"github.com/synergy-core/synergyc/internal/screen/robotgo"
	"github.com/synergy-core/synergyc/internal/supervisor"
	"github.com/synergy-core/synergyc/internal/supervisor/status"
	"github.com/synergy-core/synergyc/internal/util"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	name := flag.String("name", "", "Screen name (defaults to hostname)")
	server := flag.String("server", "", "Server address, host[:port] (default port 24800)")
	noRestart := flag.Bool("1", false, "Exit instead of retrying after a disconnect")
	restart := flag.Bool("restart", false, "Retry after a disconnect (default)")
	yscroll := flag.Int("yscroll", config.DefaultYScrollDelta, "Vertical scroll wheel delta")
	driver := flag.String("screen", string(config.DriverConsole), "Screen driver: robotgo or console")
	statusAddr := flag.String("status-addr", "", "Bind a loopback status WebSocket at host:port (disabled by default)")
	debug := flag.Bool("debug", false, "Enable debug logging")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("synergyc %s\n", version)
		return
	}

	if *debug {
		util.EnableDebug()
	}

	cfg := config.New()
	cfg.ScreenName = *name
	if cfg.ScreenName == "" {
		if h, err := os.Hostname(); err == nil {
			cfg.ScreenName = h
		}
	}
	cfg.YScrollDelta = *yscroll
	cfg.StatusAddr = *statusAddr
	cfg.Debug = *debug
	cfg.AutoRestart = !*noRestart || *restart

	switch config.ScreenDriver(*driver) {
	case config.DriverRobotgo, config.DriverConsole:
		cfg.Driver = config.ScreenDriver(*driver)
	default:
		util.LogError("invalid -screen: must be 'robotgo' or 'console'")
		os.Exit(1)
	}

	addr := *server
	if addr == "" {
		addr = askServerAddress()
	}
	addr, err := normalizeServerAddress(addr)
	if err != nil {
		util.LogError("%v", err)
		os.Exit(1)
	}
	cfg.ServerAddr = addr

	pterm.Info.Println(fmt.Sprintf("synergyc — v%s", version))
	pterm.Println()

	scr := newScreen(cfg.Driver)
	defer scr.Close()

	var statusFn client.StatusFunc
	if cfg.StatusAddr != "" {
		sink := status.NewSink()
		fn, err := sink.Listen(cfg.StatusAddr)
		if err != nil {
			util.LogError("failed to start status sink: %v", err)
			os.Exit(1)
		}
		defer sink.Close()
		statusFn = fn
		util.LogInfo("status sink listening on ws://%s/status", cfg.StatusAddr)
	}

	util.StartStatsReporter(ctx)

	sup := supervisor.New(cfg, scr, statusFn)
	if err := sup.Run(ctx); err != nil {
		util.LogError("exiting: %v", err)
		os.Exit(1)
	}

	util.LogInfo("synergyc exiting cleanly")
}

func newScreen(driver config.ScreenDriver) screen.Screen {
	switch driver {
	case config.DriverRobotgo:
		return robotgo.New()
	default:
		return console.New(console.StdoutFD())
	}
}

func normalizeServerAddress(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("a server address is required")
	}
	if _, _, err := net.SplitHostPort(raw); err == nil {
		return raw, nil
	}
	return net.JoinHostPort(raw, strconv.Itoa(defaultPort)), nil
}

const defaultPort = 24800

func askServerAddress() string {
	for {
		raw, _ := pterm.DefaultInteractiveTextInput.
			WithDefaultText("Server address (host[:port])").
			Show()

		if strings.TrimSpace(raw) != "" {
			pterm.Println()
			return raw
		}

		util.LogWarning("a server address is required")
		pterm.Println()
	}
}
