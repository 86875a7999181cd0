// Package main - точка входа CLI blogdigest.
package main

import (
	"blogdigest/internal/app"
	"blogdigest/internal/config"
	"blogdigest/internal/domain"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var version = "0.1.0"

const defaultConfigPath = "config.yaml"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type flagValues struct {
	configPath       string
	sourceURL        string
	output           string
	channelLink      string
	logLevel         string
	interval         string
	skipInvalidDates bool
}

// newRootCmd создает корневую команду CLI blogdigest.
func newRootCmd() *cobra.Command {
	var flags flagValues

	cmd := &cobra.Command{
		Use:   "blogdigest",
		Short: "Republish the last 24 hours of a blog's RSS feed",
		Long: "blogdigest fetches a blog's RSS feed, keeps the items published in the last 24 hours " +
			"and writes them to a new RSS 2.0 document.",
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, flags)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "error [config]: %v\n", err)
				return err
			}
			a, err := app.New(cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "error [setup]: %v\n", err)
				return err
			}
			defer a.Close()
			if err := a.Run(cmd.Context()); err != nil {
				reportError(cmd.ErrOrStderr(), err)
				return err
			}
			return nil
		},
	}

	cmd.SetVersionTemplate("blogdigest version {{.Version}}\n")

	cmd.Flags().StringVarP(&flags.configPath, "config", "c", defaultConfigPath, "Path to YAML config file")
	cmd.Flags().StringVar(&flags.sourceURL, "source-url", "", "Source RSS feed URL")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Output RSS file path")
	cmd.Flags().StringVar(&flags.channelLink, "channel-link", "", "Link of the output channel")
	cmd.Flags().StringVar(&flags.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	cmd.Flags().StringVar(&flags.interval, "interval", "", "Re-run every interval (e.g. 1h) instead of once")
	cmd.Flags().BoolVar(&flags.skipInvalidDates, "skip-invalid-dates", false, "Skip items with unparseable pubDate instead of failing")

	return cmd
}

// loadConfig собирает конфигурацию: значения по умолчанию, файл конфигурации,
// переменные окружения BLOGDIGEST_* и затем флаги. Файл .env загружается
// первым, чтобы его значения были доступны для ${VAR} в файле конфигурации.
func loadConfig(cmd *cobra.Command, flags flagValues) (*config.Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg, err := config.Load(flags.configPath)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) || cmd.Flags().Changed("config") {
			return nil, err
		}
		cfg = config.New()
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("source-url") {
		cfg.Source.URL = flags.sourceURL
	}
	if cmd.Flags().Changed("output") {
		cfg.Output.Path = flags.output
	}
	if cmd.Flags().Changed("channel-link") {
		cfg.Channel.Link = flags.channelLink
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Logger.Level = flags.logLevel
	}
	if cmd.Flags().Changed("interval") {
		cfg.Schedule.Interval = flags.interval
	}
	if cmd.Flags().Changed("skip-invalid-dates") {
		cfg.Parser.SkipInvalidDates = flags.skipInvalidDates
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// reportError выводит фатальную ошибку конвейера вместе с ее видом.
func reportError(w io.Writer, err error) {
	fmt.Fprintf(w, "error [%s]: %v\n", domain.Kind(err), err)
}
