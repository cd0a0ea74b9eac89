package main

import (
	"fmt"
	"io"

	"framematch/config"
	"framematch/logging"
	"framematch/signalhandler"

	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

type runFlags struct {
	configPath     string
	inDir          string
	poolDir        string
	outDir         string
	metric         string
	comparator     string
	mode           string
	workers        int
	decoder        string
	decodeFailures string
	timeout        string
	logLevel       string
	logFormat      string
	logFile        string
}

func newRootCommand() *cobra.Command {
	flags := &runFlags{}

	rootCmd := &cobra.Command{
		Use:   "framematch",
		Short: "Pick the most similar pool frame for every input frame",
		Long: `framematch compares every frame in the input directory against every frame
in the pool directory and copies (or reports) the best match for each one.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadRunConfig(cmd, flags)
			if err != nil {
				return err
			}
			return runCommand(cmd, cfg)
		},
	}

	f := rootCmd.Flags()
	f.StringVarP(&flags.inDir, "in-dir", "i", "", "Directory of frames to match")
	f.StringVarP(&flags.poolDir, "frame-pool-dir", "f", "", "Directory of candidate frames")
	f.StringVarP(&flags.outDir, "out-dir", "o", "", "Directory the matched frames are written to")
	f.StringVar(&flags.metric, "metric", "", "Similarity metric: ssim or rms")
	f.StringVar(&flags.comparator, "comparator", "", "Selection policy: max or absmax")
	f.StringVar(&flags.mode, "mode", "", "Output mode: copy or report")
	f.IntVar(&flags.workers, "workers", 0, "Worker goroutines (0 = three quarters of the CPUs)")
	f.StringVar(&flags.decoder, "decoder", "", "Image decoder: native or opencv")
	f.StringVar(&flags.decodeFailures, "decode-failures", "", "On undecodable files: skip or abort")
	f.StringVar(&flags.timeout, "timeout", "", "Overall deadline, e.g. 10m")
	f.StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	f.StringVar(&flags.logFormat, "log-format", "", "Log format: console or json")
	f.StringVar(&flags.logFile, "log-file", "", "Also append the log to this file")
	rootCmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Configuration file path")

	rootCmd.AddCommand(newConfigCommand(flags))
	rootCmd.AddCommand(newVersionCommand())
	return rootCmd
}

// loadRunConfig reads the config file and applies the flags the user set on top of it
func loadRunConfig(cmd *cobra.Command, flags *runFlags) (*config.Config, error) {
	cfg, _, _, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}

	set := cmd.Flags().Changed
	overrides := []struct {
		name  string
		value string
		dst   *string
	}{
		{"in-dir", flags.inDir, &cfg.InDir},
		{"frame-pool-dir", flags.poolDir, &cfg.PoolDir},
		{"out-dir", flags.outDir, &cfg.OutDir},
		{"metric", flags.metric, &cfg.Metric},
		{"comparator", flags.comparator, &cfg.Comparator},
		{"mode", flags.mode, &cfg.Mode},
		{"decoder", flags.decoder, &cfg.Decoder},
		{"decode-failures", flags.decodeFailures, &cfg.DecodeFailures},
		{"timeout", flags.timeout, &cfg.Timeout},
		{"log-level", flags.logLevel, &cfg.Logging.Level},
		{"log-format", flags.logFormat, &cfg.Logging.Format},
		{"log-file", flags.logFile, &cfg.Logging.File},
	}
	for _, o := range overrides {
		if set(o.name) {
			*o.dst = o.value
		}
	}
	if set("workers") {
		cfg.Workers = flags.workers
	}

	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runCommand(cmd *cobra.Command, cfg *config.Config) error {
	if err := logging.SetupLogger(logging.Options{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		LogFile: cfg.Logging.File,
		Output:  cmd.ErrOrStderr(),
	}); err != nil {
		return err
	}
	defer logging.CloseLogger()

	timeout, err := cfg.TimeoutDuration()
	if err != nil {
		return err
	}
	ctx, stop := signalhandler.SetupHandler(cmd.Context(), timeout)
	defer stop()

	out := cmd.OutOrStdout()
	result, err := runMatching(ctx, cfg, out)
	printSummary(out, cfg, result)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "Matching complete.")
	return nil
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the framematch version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := io.WriteString(cmd.OutOrStdout(), "framematch "+version+"\n")
			return err
		},
	}
}
