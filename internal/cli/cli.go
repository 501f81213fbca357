// Package cli implements the chidata command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"chidata/internal/config"
	"chidata/internal/logging"
	"chidata/internal/metrics"
	"chidata/internal/metrics/datadog"
	"chidata/internal/metrics/prompush"
	"chidata/internal/storage"

	// every backend is compiled in; storage.kind picks one at runtime.
	_ "chidata/internal/storage/all"
)

// skipValidation marks commands that run against an invalid configuration.
const skipValidation = "chidata/skip-validation"

// defaultDatadogAddr is the local agent address used when none is configured.
const defaultDatadogAddr = "127.0.0.1:8125"

// app carries state shared by the commands of one invocation.
type app struct {
	cfgFile string
	envFile string

	cfg    *config.Config
	out    io.Writer
	errOut io.Writer
	clock  clockwork.Clock
}

// NewRootCmd builds the command tree. Output goes to out and errOut.
func NewRootCmd(out, errOut io.Writer) *cobra.Command {
	return newRootCmd(&app{out: out, errOut: errOut, clock: clockwork.NewRealClock()})
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "chidata",
		Short: "Load Chicago business-license and food-inspection exports into a normalized database",
		Long: `chidata downloads the City of Chicago business license and food
inspection exports and decomposes them into a normalized relational schema:
deduplicated dimension tables with surrogate ids, fact tables rewritten to
reference them, and a final pruning pass so every foreign key resolves.`,
		PersistentPreRunE: a.setup,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default: ./chidata.yaml)")
	pf.StringVar(&a.envFile, "env-file", "", "dotenv file loaded before the environment is read (default: .env)")
	pf.String("log-level", "", "log level (debug, info, warn, error)")
	pf.String("data-dir", "", "directory holding the downloaded exports")
	pf.String("storage-kind", "", "target database kind (sqlite, postgres, mysql, mssql)")
	pf.String("dsn", "", "target database DSN")
	pf.String("metrics", "", "metrics backend (none, pushgateway, datadog)")

	root.AddCommand(
		a.pullCmd(),
		a.loadCmd(),
		a.updateCmd(),
		a.pruneCmd(),
		a.infoCmd(),
		a.queryCmd(),
		a.validateCmd(),
	)
	return root
}

// Execute runs the command line and returns the process exit code. Metrics
// are flushed before returning, whatever the outcome.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := NewRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx)
	if ferr := metrics.Flush(); ferr != nil {
		logging.Warn().Err(ferr).Msg("metrics flush failed")
	}
	if err != nil {
		if !errors.Is(err, errInvalidConfig) {
			logging.Error().Err(err).Msg("chidata failed")
		}
		return 1
	}
	return 0
}

// setup loads the configuration, reinitializes logging and installs the
// metrics backend.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	config.KnownStorageKinds = storage.ListKinds()

	cfg, err := config.Load(config.Options{File: a.cfgFile, DotEnv: a.envFile, Flags: cmd.Flags()})
	if err != nil {
		return err
	}
	a.cfg = cfg

	logging.Init(logging.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty, Out: a.errOut})

	if cmd.Annotations[skipValidation] != "" {
		return nil
	}
	issues := config.Validate(cfg)
	for _, iss := range issues {
		if iss.Severity == config.SeverityWarning {
			logging.Warn().Str("path", iss.Path).Msg(iss.Message)
		}
	}
	if config.HasErrors(issues) {
		printIssues(a.errOut, issues)
		return errInvalidConfig
	}
	return installMetrics(cfg)
}

func installMetrics(cfg *config.Config) error {
	switch cfg.Metrics.Backend {
	case "", "none":
		return nil
	case "pushgateway":
		b, err := prompush.NewBackend(cfg.Job, cfg.Metrics.PushgatewayURL)
		if err != nil {
			return err
		}
		metrics.SetBackend(b)
	case "datadog":
		addr := cfg.Metrics.DatadogAddr
		if addr == "" {
			addr = defaultDatadogAddr
		}
		b, err := datadog.NewBackend(datadog.Config{Addr: addr, GlobalTags: []string{"job:" + cfg.Job}})
		if err != nil {
			return err
		}
		metrics.SetBackend(b)
	default:
		return fmt.Errorf("unknown metrics backend %q", cfg.Metrics.Backend)
	}
	logging.Debug().Str("backend", cfg.Metrics.Backend).Msg("metrics enabled")
	return nil
}

// openStore opens the configured target database.
func (a *app) openStore(ctx context.Context) (storage.Repository, error) {
	repo, err := storage.New(ctx, storage.Config{Kind: a.cfg.Storage.Kind, DSN: a.cfg.Storage.DSN})
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", a.cfg.Storage.Kind, err)
	}
	return repo, nil
}
