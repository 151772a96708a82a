// Package watch runs the call display: it follows the repeater logs,
// reduces them to the current call and history, and shows them in the
// terminal UI and, optionally, over the REST API.
package watch

import (
	"context"
	"net"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/txn2/parrot/pkg/prtapi"
	"github.com/txn2/parrot/pkg/prtcall"
	"github.com/txn2/parrot/pkg/prtcfg"
	"github.com/txn2/parrot/pkg/prtmonitor"
	"github.com/txn2/parrot/pkg/prtstream"
	"github.com/txn2/parrot/pkg/prttui"
	"github.com/txn2/parrot/pkg/prttui/events"
	"github.com/txn2/parrot/pkg/prttui/styles"
)

// cmdline arguments
var cfgPath string
var verbose bool
var serverURL string
var logDir string
var logFile string
var secondaryPrefix string
var dedup string
var historyLimit int
var theme string
var callsign string
var apiMode bool
var apiPort int
var noTUI bool
var expanded bool
var fromStart bool

// Version is set by the main package
var Version string

func init() {
	Cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "Path to a YAML or JSON config file.")
	Cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output.")
	Cmd.Flags().StringVarP(&serverURL, "server", "s", "", "Follow a remote log server (parrot serve) instead of local files, e.g. http://pi-star.local:8000")
	Cmd.Flags().StringVar(&logDir, "log-dir", "", "Directory holding the repeater logs.")
	Cmd.Flags().StringVarP(&logFile, "log-file", "f", "", "Follow this primary log file instead of the newest one in --log-dir.")
	Cmd.Flags().StringVar(&secondaryPrefix, "secondary-prefix", "", "Log prefix of the gateway log that reports linked rooms. Empty disables the secondary stream.")
	Cmd.Flags().StringVar(&dedup, "dedup", "", "Duplicate detection: full or ignore-timestamp.")
	Cmd.Flags().IntVar(&historyLimit, "history-limit", 0, "Maximum history rows kept (0 keeps all).")
	Cmd.Flags().StringVar(&theme, "theme", "", "Color theme: auto, dark or light.")
	Cmd.Flags().StringVar(&callsign, "callsign", "", "Station callsign shown in the header.")
	Cmd.Flags().BoolVar(&apiMode, "api", false, "Serve the monitor REST API alongside the display.")
	Cmd.Flags().IntVar(&apiPort, "api-port", 0, "Port for the monitor REST API.")
	Cmd.Flags().BoolVar(&noTUI, "no-tui", false, "Log calls to the terminal instead of running the interactive display.")
	Cmd.Flags().BoolVar(&expanded, "expanded", false, "Start with the history table expanded over the logs pane.")
	Cmd.Flags().BoolVar(&fromStart, "from-start", false, "Replay local log files from the beginning instead of following new lines only.")
}

var Cmd = &cobra.Command{
	Use:   "watch",
	Short: "Display repeater calls",
	Long: `Follow the repeater logs and display the current call.

The primary log (MMDVM) supplies calls. The secondary log (YSFGateway)
supplies room link changes. Both are followed locally by default, or from
a remote "parrot serve" instance with --server.

Keys:
  x    clear history
  c    toggle compact view
  tab  switch focus between history and logs
  ?    help
  q    quit`,
	Example: "  parrot watch                                  # Local logs in /var/log/pi-star\n" +
		"  parrot watch -s http://pi-star.local:8000     # Remote log server\n" +
		"  parrot watch -c parrot.yaml --api             # With monitor REST API\n" +
		"  parrot watch --no-tui -v                      # Plain log output",
	RunE: runCmd,
}

// loadConfig reads the config file and applies flags that were set explicitly
func loadConfig(cmd *cobra.Command) (*prtcfg.Config, error) {
	cfg, err := prtcfg.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("server") {
		cfg.ServerURL = serverURL
	}
	if flags.Changed("log-dir") {
		cfg.LogDir = logDir
	}
	if flags.Changed("log-file") {
		cfg.LogFile = logFile
	}
	if flags.Changed("secondary-prefix") {
		cfg.SecondaryPrefix = secondaryPrefix
	}
	if flags.Changed("dedup") {
		cfg.Dedup = dedup
	}
	if flags.Changed("history-limit") {
		cfg.HistoryLimit = historyLimit
	}
	if flags.Changed("theme") {
		cfg.Theme = theme
	}
	if flags.Changed("callsign") {
		cfg.Callsign = callsign
	}
	if flags.Changed("api-port") {
		cfg.APIPort = apiPort
	}
	if verbose {
		cfg.Debug = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return cfg, nil
}

// buildSources returns the primary source and, when configured, the secondary one
func buildSources(cfg *prtcfg.Config) (primary, secondary prtstream.Source, err error) {
	if cfg.ServerURL != "" {
		primary, err = prtstream.NewSSESource(cfg.ServerURL, "")
		if err != nil {
			return nil, nil, err
		}
		if cfg.SecondaryPrefix != "" {
			secondary, err = prtstream.NewSSESource(cfg.ServerURL, cfg.SecondaryPrefix)
			if err != nil {
				return nil, nil, err
			}
		}
		return primary, secondary, nil
	}

	dir := cfg.ResolveDir()
	if cfg.PrimaryLog() != "" {
		primary = &prtstream.FileSource{Path: cfg.PrimaryLog(), FromStart: fromStart}
	} else {
		primary = &prtstream.FileSource{Dir: dir, Prefix: cfg.LogPrefix, FromStart: fromStart}
	}
	if cfg.SecondaryPrefix != "" {
		secondary = &prtstream.FileSource{Dir: dir, Prefix: cfg.SecondaryPrefix, FromStart: fromStart}
	}
	return primary, secondary, nil
}

// startStreams runs one reconnecting runner per source
func startStreams(ctx context.Context, wg *sync.WaitGroup, mon *prtmonitor.Monitor, primary, secondary prtstream.Source) {
	runners := []*prtstream.Runner{{Stream: prtcall.StreamPrimary, Source: primary}}
	if secondary != nil {
		runners = append(runners, &prtstream.Runner{Stream: prtcall.StreamSecondary, Source: secondary})
	}

	for _, r := range runners {
		r.Handler = mon.HandleLine
		r.Status = mon.Store()
		r.Publish = mon.Bus().Publish

		wg.Add(1)
		go func(r *prtstream.Runner) {
			defer wg.Done()
			r.Run(ctx)
		}(r)
	}
}

// setupSignalHandler sets up graceful shutdown on signals
func setupSignalHandler(bus *events.Bus, triggerShutdown func()) {
	go func() {
		sigChan := make(chan os.Signal, 2)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(sigChan)

		<-sigChan
		bus.Publish(events.NewLifecycleEvent(events.ShutdownStarted))
		if noTUI {
			log.Infof("Shutting down... (press Ctrl+C again to force)")
		}
		triggerShutdown()

		<-sigChan
		log.Warnf("Forced shutdown")
		os.Exit(1)
	}()
}

// setupAPIManager builds the monitor API when --api is set
func setupAPIManager(cfg *prtcfg.Config, mon *prtmonitor.Monitor) *prtapi.Manager {
	if !apiMode {
		return nil
	}

	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.APIPort))
	apiManager := prtapi.NewManager(addr, Version)
	apiManager.SetMonitor(mon, mon)
	apiManager.SetEventStreamer(prtapi.NewEventStreamerAdapter(mon.Bus))
	apiManager.SetCallsign(cfg.Callsign)
	apiManager.SetTUIEnabled(!noTUI)
	if len(cfg.CORSOrigins) > 0 {
		apiManager.SetCORSOrigins(cfg.CORSOrigins)
	}
	return apiManager
}

// logCalls writes displayed calls and link changes to the log when the TUI is off
func logCalls(bus *events.Bus) events.UnsubscribeFunc {
	unsubDisplayed := bus.Subscribe(events.CallDisplayed, func(e events.Event) {
		log.WithFields(log.Fields{
			"source":    e.Call.Source.String(),
			"timestamp": e.Call.Timestamp.Format(prtcall.TimestampLayout),
		}).Infof("Call %s", e.Call.Callsign)
	})
	unsubRoom := bus.Subscribe(events.RoomChanged, func(e events.Event) {
		if e.Room == "" {
			log.Info("Unlinked")
			return
		}
		log.Infof("Linked to %s", e.Room)
	})
	return func() {
		unsubDisplayed()
		unsubRoom()
	}
}

// performShutdown stops every component and waits for each with a timeout
func performShutdown(cancel context.CancelFunc, streams *sync.WaitGroup, mon *prtmonitor.Monitor, tuiManager *prttui.Manager, apiManager *prtapi.Manager) {
	cancel()

	done := make(chan struct{})
	go func() {
		streams.Wait()
		close(done)
	}()
	select {
	case <-done:
		log.Debugf("All streams are done")
	case <-time.After(3 * time.Second):
		log.Debugf("Timeout waiting for streams, forcing exit")
	}

	if tuiManager != nil {
		select {
		case <-tuiManager.Done():
			log.Debugf("TUI cleanup complete")
		case <-time.After(1 * time.Second):
			log.Debugf("Timeout waiting for TUI cleanup")
		}
	}

	if apiManager != nil {
		apiManager.Stop()
		select {
		case <-apiManager.Done():
			log.Debugf("API server cleanup complete")
		case <-time.After(1 * time.Second):
			log.Debugf("Timeout waiting for API cleanup")
		}
	}

	mon.Bus().Publish(events.NewLifecycleEvent(events.ShutdownComplete))
	mon.Stop()
	log.Infof("Clean exit")
}

func runCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}

	primary, secondary, err := buildSources(cfg)
	if err != nil {
		return err
	}

	mon := prtmonitor.New(prtmonitor.Config{
		TickInterval:  cfg.TickInterval,
		BlinkInterval: cfg.BlinkInterval,
		Dedup:         cfg.DedupMode(),
		HistoryLimit:  cfg.HistoryLimit,
	})
	log.AddHook(mon.LogHook())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stopListenCh := make(chan struct{})
	var stopOnce sync.Once
	triggerShutdown := func() {
		stopOnce.Do(func() {
			close(stopListenCh)
		})
	}

	var tuiManager *prttui.Manager
	if !noTUI {
		styles.SetDarkTheme(styles.ResolveTheme(cfg.Theme))
		compact := !expanded
		tuiManager = prttui.New(mon, prttui.Config{
			Version:  Version,
			Callsign: cfg.Callsign,
			Compact:  compact,
		}, stopListenCh, triggerShutdown)
	} else {
		defer logCalls(mon.Bus())()
	}

	apiManager := setupAPIManager(cfg, mon)
	setupSignalHandler(mon.Bus(), triggerShutdown)

	mon.Start(ctx)

	var streams sync.WaitGroup
	startStreams(ctx, &streams, mon, primary, secondary)

	if apiManager != nil {
		go func() {
			if err := apiManager.Run(); err != nil {
				log.Errorf("API server error: %s", err)
			}
		}()
	}

	if tuiManager != nil {
		if err := tuiManager.Run(); err != nil {
			log.Errorf("TUI error: %s", err)
		}
	} else {
		log.Infof("Watching %s", primary.Target())
		if secondary != nil {
			log.Infof("Watching %s for room changes", secondary.Target())
		}
		log.Println("Press [Ctrl-C] to stop.")
		<-stopListenCh
	}

	performShutdown(cancel, &streams, mon, tuiManager, apiManager)
	return nil
}
