package main

import (
	"context"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"index-cleaner/internal/app"
	"index-cleaner/internal/handler"
	"index-cleaner/internal/settings"
)

func main() {
	v := viper.New()
	settings.Configure(v)
	v.SetDefault("log_level", "info")
	v.SetDefault("dry_run", false)

	level, err := zerolog.ParseLevel(v.GetString("log_level"))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

	clusterSettings, err := settings.Load(context.Background(), v)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	log.Info().
		Str("endpoint", clusterSettings.Endpoint()).
		Str("region", clusterSettings.Region).
		Msg("index cleaner configured")

	h := handler.New(app.NewService(), clusterSettings, v.GetBool("dry_run"))
	lambda.Start(h.Handle)
}
