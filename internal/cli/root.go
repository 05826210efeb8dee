package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"index-cleaner/internal/app"
	"index-cleaner/internal/settings"
	"index-cleaner/internal/shared"
)

// version is set at build time via ldflags.
var version = "dev"

var newAppService = app.NewService

type RootConfig struct {
	ConfigFile string
	LogLevel   string
	Host       string
	Port       int
	Scheme     string
	Region     string
	Signing    bool
	TimeoutSec int
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	root := newRootCommand()
	if err := root.ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg(errorMessage(err))
		stop()
		os.Exit(exitCodeForError(err))
	}
}

func newRootCommand() *cobra.Command {
	cfg := RootConfig{}
	cmd := &cobra.Command{
		Use:           "index-cleaner",
		Short:         "Delete dated search cluster indices past their retention age",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := initConfig(cfg.ConfigFile); err != nil {
				return err
			}
			setupLogging(viper.GetString("log_level"))
			return nil
		},
	}
	flags := cmd.PersistentFlags()
	flags.StringVar(&cfg.ConfigFile, "config", "", "Config file path")
	flags.StringVar(&cfg.LogLevel, "log-level", "info", "Log level")
	flags.StringVar(&cfg.Host, "es-host", "", "Search cluster hostname (env ES_HOST)")
	flags.IntVar(&cfg.Port, "es-port", 443, "Search cluster port")
	flags.StringVar(&cfg.Scheme, "es-scheme", "https", "Search cluster scheme (https or http)")
	flags.StringVar(&cfg.Region, "aws-region", "", "Region used to sign requests (env AWS_REGION)")
	flags.BoolVar(&cfg.Signing, "signing", true, "Sign requests with ambient AWS credentials")
	flags.IntVar(&cfg.TimeoutSec, "timeout", 60, "Cluster request timeout in seconds")

	_ = viper.BindPFlag("log_level", flags.Lookup("log-level"))
	_ = viper.BindPFlag(settings.KeyHost, flags.Lookup("es-host"))
	_ = viper.BindPFlag(settings.KeyPort, flags.Lookup("es-port"))
	_ = viper.BindPFlag(settings.KeyScheme, flags.Lookup("es-scheme"))
	_ = viper.BindPFlag(settings.KeyRegion, flags.Lookup("aws-region"))
	_ = viper.BindPFlag(settings.KeySigning, flags.Lookup("signing"))
	_ = viper.BindPFlag(settings.KeyTimeoutSec, flags.Lookup("timeout"))

	cmd.AddCommand(newCleanCommand())
	cmd.AddCommand(newScheduleCommand())
	return cmd
}

func initConfig(configFile string) error {
	settings.Configure(viper.GetViper())

	if configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("failed to read config file").
				WithCause(err)
		}
		return nil
	}

	viper.SetConfigName("index-cleaner")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.config/index-cleaner")
	if err := viper.ReadInConfig(); err != nil {
		return nil
	}
	return nil
}

func setupLogging(level string) {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

func exitCodeForError(err error) int {
	code := errbuilder.CodeOf(err)
	switch code {
	case errbuilder.CodeInvalidArgument:
		return 2
	case errbuilder.CodePermissionDenied:
		return 3
	case errbuilder.CodeNotFound, errbuilder.CodeInternal:
		return 5
	default:
		return 1
	}
}

func errorMessage(err error) string {
	return shared.ErrorMessage(err)
}
