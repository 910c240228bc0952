package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/phrazzld/forgebatch/internal/config"
	"github.com/phrazzld/forgebatch/internal/platform/logger"
	"github.com/spf13/cobra"
)

// Version is the current release.
const Version = "0.1.0"

// globalOptions holds the persistent flags shared by every subcommand.
type globalOptions struct {
	configFile string
	envFile    string
	logLevel   string
}

// newRootCmd builds the command tree.
func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "forgebatch",
		Short: "Batch image generation against a Forge WebUI server",
		Long: `forgebatch runs a queue of image generation tasks one at a time.

Each non-blank, non-comment line of the queue file is a task descriptor such as
  flux --prompt "a lighthouse at dusk" --seed 7
Successful tasks move to the done file, failed ones stay queued for the next run,
and every task leaves a log under task_logs/ next to the done file.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file (yaml, json or toml)")
	rootCmd.PersistentFlags().StringVar(&opts.envFile, "env-file", "", "dotenv file to read (default .env if present)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn or error")

	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(
		newRunCmd(opts),
		newGenerateCmd(opts),
		newInfoCmd(opts),
		newCaptureCmd(opts),
	)
	return rootCmd
}

// app is the configuration and logger every subcommand starts from.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	closer io.Closer
}

// Close releases the log file, if any.
func (a *app) Close() {
	_ = a.closer.Close()
}

// initializeApp loads configuration and sets up logging. Records go to the
// command's error stream.
func initializeApp(cmd *cobra.Command, opts *globalOptions) (*app, error) {
	cfg, err := config.Load(config.LoadOptions{
		ConfigFile: opts.configFile,
		EnvFile:    opts.envFile,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
		if err := config.Validate(cfg); err != nil {
			return nil, fmt.Errorf("invalid --log-level: %w", err)
		}
	}

	log, closer, err := logger.SetupWithWriter(cfg.Log, cmd.ErrOrStderr())
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	log.Debug("configuration loaded",
		"command", cmd.Name(),
		"webui_url", cfg.WebUI.URL,
		"models_dir_set", cfg.Models.Dir != "",
		"log_level", cfg.Log.Level)

	return &app{cfg: cfg, logger: log, closer: closer}, nil
}
