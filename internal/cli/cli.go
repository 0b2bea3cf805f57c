// Package cli parses command-line arguments into an app.Config.
package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ethe/numagroup/internal/app"
	"github.com/ethe/numagroup/internal/config"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating the program should exit cleanly (help was printed),
// or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	flagSet := flag.NewFlagSet("numagroup", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
numagroup - run a group of CPU-pinned execution runtimes.

Usage:
  numagroup [options] [CONFIG_PATH]

Arguments:
  CONFIG_PATH
    Optional path to an .hcl file with a 'group' block. Flags override it.

Options:
`)
		flagSet.PrintDefaults()
	}

	configFlag := flagSet.String("config", "", "Path to the group config file.")
	cFlag := flagSet.String("c", "", "Path to the group config file (shorthand).")
	numaFlag := flagSet.Bool("numa", false, "Enable NUMA-aware shard placement.")
	workersPerNodeFlag := flagSet.Int("workers-per-node", 1, "Shards per NUMA node (with -numa).")
	workersFlag := flagSet.Int("workers", 0, "Shard count override for non-NUMA placement. 0 means one shard per core.")
	noAffinityFlag := flagSet.Bool("no-affinity", false, "Run unpinned shards; never touch the CPU affinity mask.")
	spinFlag := flagSet.Duration("spin", 0, "How long each shard runs the built-in benchmark workload. 0 uses the default.")
	inspectFlag := flagSet.Bool("inspect", false, "Print the topology and shard plan, then exit without running.")
	healthPortFlag := flagSet.Int("healthcheck-port", 0, "Port for the HTTP health check server. 0 is disabled.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	path := ""
	if *configFlag != "" {
		path = *configFlag
	} else if *cFlag != "" {
		path = *cFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	// Only explicitly-passed group flags become overrides, so the config
	// file keeps authority over everything the user didn't mention.
	overrides := collectOverrides(flagSet, *numaFlag, *workersPerNodeFlag, *workersFlag, *noAffinityFlag, *spinFlag)

	cfg, err := app.NewConfig(app.Config{
		ConfigPath:      path,
		Overrides:       overrides,
		Inspect:         *inspectFlag,
		LogFormat:       logFormat,
		LogLevel:        logLevel,
		HealthcheckPort: *healthPortFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	return cfg, false, nil
}

// collectOverrides builds the override model from the flags the user
// actually set on the command line.
func collectOverrides(flagSet *flag.FlagSet, numa bool, workersPerNode, workers int, noAffinity bool, spin time.Duration) config.Model {
	var overrides config.Model
	flagSet.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "numa":
			overrides.Numa = &numa
		case "workers-per-node":
			overrides.WorkersPerNode = &workersPerNode
		case "workers":
			overrides.Workers = &workers
		case "no-affinity":
			overrides.NoAffinity = &noAffinity
		case "spin":
			overrides.Spin = &spin
		}
	})
	return overrides
}
