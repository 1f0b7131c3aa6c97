// Package main is the CLI entry point for SimDesk.
// cmd/ only does assembly and I/O; all behavior lives in internal/.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/whhaicheng/SimDesk/internal/config"
	"github.com/whhaicheng/SimDesk/internal/logging"
)

const Version = "1.0.0"

// errUsage marks errors caused by a malformed command line.
var errUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	global := flag.NewFlagSet("simdesk-cli", flag.ContinueOnError)
	global.SetOutput(io.Discard)
	configPath := global.String("config", os.Getenv(config.EnvPrefix+"CONFIG"), "path to a YAML config file")
	if err := global.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	args = global.Args()

	if len(args) == 0 {
		showHelp(stdout)
		return fmt.Errorf("%w: no command given", errUsage)
	}

	// Commands that need no configuration
	switch args[0] {
	case "version", "-v", "--version":
		fmt.Fprintf(stdout, "SimDesk CLI v%s\n", Version)
		return nil
	case "help", "-h", "--help":
		showHelp(stdout)
		return nil
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	_, logFile, err := logging.Setup("simdesk-cli", cfg.Log.Dir, cfg.Log.Level, os.Stderr)
	if err != nil {
		return err
	}
	defer logFile.Close()
	slog.Debug("SimDesk CLI started", "version", Version, "command", args[0])

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	cmd := &commands{app: a, out: stdout}
	switch args[0] {
	case "runs":
		return cmd.runs(ctx, args[1:])
	case "projects":
		return cmd.projects(ctx, args[1:])
	case "prefs":
		return cmd.prefs(ctx, args[1:])
	case "prune":
		return cmd.prune(ctx)
	case "daemon":
		return cmd.daemon(ctx)
	default:
		showHelp(stdout)
		return fmt.Errorf("%w: unknown command: %s", errUsage, args[0])
	}
}

func showHelp(w io.Writer) {
	fmt.Fprintf(w, `SimDesk CLI v%s - Simulation run history and project management

USAGE:
    simdesk-cli [-config FILE] <command> [arguments]

COMMANDS:
    runs create -project PATH -name NAME -tool-version V [-input JSON|@FILE]
                [-duration SEC] [-units N] [-sub-units N] [-recorded RFC3339]
                [-status STATUS] [-report LOCATION]
    runs list [-name TEXT] [-path PATH] [-status STATUS] [-from T] [-to T]
              [-page N] [-per-page N] [-json]
    runs show ID [-json]
    runs start ID
    runs complete ID [-result JSON|@FILE]
    runs fail ID [-result JSON|@FILE]
    runs cancel ID
    runs retry ID
    runs result ID -result JSON|@FILE
    runs report ID [-format markdown|json]
    runs delete ID

    projects open PATH [-name NAME] [-tool-version V]
    projects list [-name TEXT] [-tool-version V] [-page N] [-per-page N]
    projects remove PATH
    projects clear

    prefs show
    prefs set KEY VALUE
    prefs reset

    prune       Delete runs older than the history retention period
    daemon      Run scheduled retention and serve /healthz, /metrics, /runs
    version     Show version information
    help        Show this help message

ENVIRONMENT:
    SIMDESK_CONFIG, SIMDESK_DATA_DIR, SIMDESK_DB_DIALECT, SIMDESK_DB_DSN,
    SIMDESK_LOG_LEVEL, SIMDESK_REDIS_ADDR, SIMDESK_METRICS_ADDR, ...
`, Version)
}
