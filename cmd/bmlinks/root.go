package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/nikbrunner/bmlinks/internal/checker"
	"github.com/nikbrunner/bmlinks/internal/logging"
	"github.com/nikbrunner/bmlinks/internal/storage"
)

// NewRootCmd creates the root command for bmlinks.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bmlinks",
		Short: "Bookmark manager with a link checker",
		Long: `bmlinks stores bookmarks in folders and checks whether their URLs are
still reachable. Redirects are followed hop by hop; each bookmark records
whether it is accessible, not found, or failing, and where it now points.

Configuration is read from $XDG_CONFIG_HOME/bmlinks/config.json unless
--config is given. Flags override configuration values.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringP("config", "c", "", "Path to config file (.json, .yaml or .yml)")
	flags.BoolP("verbose", "v", false, "Enable verbose logging")
	flags.Bool("log-json", false, "Write logs to stderr as JSON")
	flags.Duration("timeout", checker.DefaultTimeout, "Timeout for each HTTP request")
	flags.Int("max-redirects", checker.DefaultMaxRedirects, "Maximum redirects followed per URL")
	flags.Float64("rate", 0, "Maximum URLs checked per second (0 = unlimited)")

	cmd.AddCommand(NewCheckCmd())
	cmd.AddCommand(NewProbeCmd())
	cmd.AddCommand(NewImportCmd())
	cmd.AddCommand(NewExportCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// env is what every subcommand needs: configuration, a logger and storage.
type env struct {
	cfg     *storage.Config
	logger  *slog.Logger
	storage storage.Storage
}

// loadEnv reads the config file, applies flag overrides and opens storage.
func loadEnv(cmd *cobra.Command) (*env, error) {
	flags := cmd.Flags()

	path, _ := flags.GetString("config")
	if path == "" {
		path = storage.DefaultConfigFilePath()
	}
	cfg, err := storage.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if flags.Changed("timeout") {
		d, _ := flags.GetDuration("timeout")
		cfg.CheckTimeout = storage.Duration(d)
	}
	if flags.Changed("max-redirects") {
		cfg.MaxRedirects, _ = flags.GetInt("max-redirects")
	}
	if flags.Changed("rate") {
		cfg.RateLimit, _ = flags.GetFloat64("rate")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := newLogger(cmd)

	s, err := storage.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	logger.Debug("storage opened", "backend", fmt.Sprintf("%T", s), "dir", cfg.DataDir())

	return &env{cfg: cfg, logger: logger, storage: s}, nil
}

func newLogger(cmd *cobra.Command) *slog.Logger {
	verbose, _ := cmd.Flags().GetBool("verbose")
	if asJSON, _ := cmd.Flags().GetBool("log-json"); asJSON {
		return logging.NewJSONLogger(cmd.ErrOrStderr(), verbose)
	}
	return logging.NewLogger(cmd.ErrOrStderr(), verbose)
}

// Close releases the storage backend.
func (e *env) Close() error {
	return storage.Close(e.storage)
}

// newChecker wires the prober, resolver and orchestrator from configuration.
func (e *env) newChecker() *checker.Checker {
	prober := checker.NewHTTPProber(
		checker.WithTimeout(e.cfg.Timeout()),
		checker.WithUserAgent(e.cfg.UserAgent),
	)
	resolver := checker.NewResolver(prober,
		checker.WithMaxRedirects(e.cfg.MaxRedirects),
		checker.WithPrivateDomains(e.cfg.PrivateDomains...),
		checker.WithResolverLogger(e.logger),
	)
	return checker.New(resolver,
		checker.WithLogger(e.logger),
		checker.WithRateLimit(e.cfg.RateLimit),
	)
}
