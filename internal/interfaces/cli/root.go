// Package cli defines the relna command tree: tag runs the pipeline
// over a dataset file, serve exposes it over HTTP.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ashishbaghudana/relna/internal/config"
	"github.com/ashishbaghudana/relna/internal/infrastructure/monitoring/logging"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// RootOptions holds global CLI flags.
type RootOptions struct {
	ConfigPath string
	LogLevel   string
}

// runtime carries the dependencies initialized by the root command for
// its subcommands.
type runtime struct {
	cfg    *config.Config
	logger logging.Logger
}

// NewRootCommand creates the root command with global flags and
// subcommands.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}
	rt := &runtime{}

	cmd := &cobra.Command{
		Use:     "relna",
		Short:   "relna tags transcription factors in biomedical text",
		Long: "relna annotates gene mentions in biomedical documents, normalizes\n" +
			"them to protein identifiers, and marks proteins annotated with the\n" +
			"configured ontology terms as transcription factors.",
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return rt.init(opts)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "",
		"path to the YAML config file (RELNA_* env vars apply on top)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "",
		"override the configured log level")

	cmd.AddCommand(newTagCommand(rt))
	cmd.AddCommand(newServeCommand(rt))

	return cmd
}

func (rt *runtime) init(opts *RootOptions) error {
	var (
		cfg *config.Config
		err error
	)
	if opts.ConfigPath != "" {
		cfg, err = config.Load(opts.ConfigPath)
	} else {
		cfg, err = config.LoadFromEnv()
	}
	if err != nil {
		return err
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}

	logger, err := logging.NewLogger(logging.LogConfig{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	if err != nil {
		return err
	}

	rt.cfg = cfg
	rt.logger = logger
	return nil
}

// Execute runs the CLI.
func Execute() error {
	return NewRootCommand().Execute()
}

// ExitOnError prints err and exits non-zero. Used by main.
func ExitOnError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
