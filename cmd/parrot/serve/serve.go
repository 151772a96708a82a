// Package serve runs the log server on the repeater host. Remote
// "parrot watch --server" instances and browser dashboards read the
// repeater logs through it.
package serve

import (
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/txn2/parrot/pkg/prtapi"
	"github.com/txn2/parrot/pkg/prtcfg"
)

// cmdline arguments
var cfgPath string
var verbose bool
var host string
var port int
var logDir string
var logFile string
var logPrefix string
var corsOrigins []string

// Version is set by the main package
var Version string

func init() {
	Cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "Path to a YAML or JSON config file.")
	Cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output.")
	Cmd.Flags().StringVar(&host, "host", "", "Address to listen on.")
	Cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on.")
	Cmd.Flags().StringVar(&logDir, "log-dir", "", "Directory holding the repeater logs.")
	Cmd.Flags().StringVarP(&logFile, "log-file", "f", "", "Serve this log file instead of the newest one in --log-dir.")
	Cmd.Flags().StringVar(&logPrefix, "log-prefix", "", "Prefix of the default log files in --log-dir.")
	Cmd.Flags().StringSliceVar(&corsOrigins, "cors-origin", []string{}, "Allowed CORS origin. Specify multiple origins by duplicating this argument.")
}

var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve repeater logs over HTTP",
	Long: `Serve the repeater logs for remote monitors.

Endpoints:
  GET /read_log?lines=N&filter=S&log_override=P   last N lines of the log
  GET /watch_log?log_override=P                   follow the log (Server-Sent Events)
  GET /api/health                                 health check

log_override selects the newest "<P>-*.log" in the log directory, for
example log_override=YSFGateway.`,
	Example: "  parrot serve                                  # /var/log/pi-star on :8000\n" +
		"  parrot serve -c config.json                   # Existing config.json\n" +
		"  parrot serve -f /tmp/MMDVM-2024-04-04.log -p 9000",
	RunE: runCmd,
}

// loadConfig reads the config file and applies flags that were set explicitly
func loadConfig(cmd *cobra.Command) (*prtcfg.Config, error) {
	cfg, err := prtcfg.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("host") {
		cfg.Host = host
	}
	if flags.Changed("port") {
		cfg.APIPort = port
	}
	if flags.Changed("log-dir") {
		cfg.LogDir = logDir
	}
	if flags.Changed("log-file") {
		cfg.LogFile = logFile
	}
	if flags.Changed("log-prefix") {
		cfg.LogPrefix = logPrefix
	}
	if flags.Changed("cors-origin") {
		cfg.CORSOrigins = corsOrigins
	}
	if verbose {
		cfg.Debug = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return cfg, nil
}

// allowedOrigins returns the configured origins, or the origins a dashboard
// served from this host would use
func allowedOrigins(cfg *prtcfg.Config) []string {
	if len(cfg.CORSOrigins) > 0 {
		return cfg.CORSOrigins
	}
	hostname, err := os.Hostname()
	if err != nil {
		log.Debugf("Unable to read hostname: %v", err)
		hostname = ""
	}
	return prtapi.DefaultOrigins(prtapi.ServerIP(), hostname, cfg.WebPort)
}

// newManager wires the log reader into an API manager
func newManager(cfg *prtcfg.Config) *prtapi.Manager {
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.APIPort))
	apiManager := prtapi.NewManager(addr, Version)
	apiManager.SetCallsign(cfg.Callsign)
	apiManager.SetLogReader(&prtapi.LogFiles{
		Dir:    cfg.ResolveDir(),
		File:   cfg.PrimaryLog(),
		Prefix: cfg.LogPrefix,
	})
	apiManager.SetCORSOrigins(allowedOrigins(cfg))
	return apiManager
}

func runCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}

	apiManager := newManager(cfg)

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(sigChan)

		<-sigChan
		log.Infof("Shutting down...")
		apiManager.Stop()
	}()

	if cfg.PrimaryLog() != "" {
		log.Infof("Serving %s", cfg.PrimaryLog())
	} else {
		log.Infof("Serving newest %s-*.log in %s", cfg.LogPrefix, cfg.ResolveDir())
	}
	log.Println("Press [Ctrl-C] to stop.")

	if err := apiManager.Run(); err != nil {
		return err
	}
	log.Infof("Clean exit")
	return nil
}
