// Package settings turns viper state (flags, environment, config file) into
// an explicit types.ClusterSettings value. It is called once at startup; the
// rest of the program never reads the environment.
package settings

import (
	"context"
	"strings"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/spf13/viper"

	"index-cleaner/internal/types"
)

const EnvPrefix = "INDEX_CLEANER"

const (
	KeyHost       = "es_host"
	KeyPort       = "es_port"
	KeyScheme     = "es_scheme"
	KeyRegion     = "aws_region"
	KeySigning    = "signing"
	KeyTimeoutSec = "timeout_sec"
)

// Configure registers defaults and environment bindings on v. ES_HOST and
// AWS_REGION are read without the INDEX_CLEANER_ prefix.
func Configure(v *viper.Viper) {
	defaults := types.DefaultClusterSettings()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv(KeyHost, "ES_HOST", EnvPrefix+"_ES_HOST")
	_ = v.BindEnv(KeyRegion, "AWS_REGION", EnvPrefix+"_AWS_REGION")
	v.SetDefault(KeyHost, defaults.Host)
	v.SetDefault(KeyPort, defaults.Port)
	v.SetDefault(KeyScheme, defaults.Scheme)
	v.SetDefault(KeyRegion, defaults.Region)
	v.SetDefault(KeySigning, defaults.Signing)
	v.SetDefault(KeyTimeoutSec, defaults.TimeoutSec)
}

func Load(ctx context.Context, v *viper.Viper) (types.ClusterSettings, error) {
	defaults := types.DefaultClusterSettings()
	settings := types.ClusterSettings{
		Host:       strings.TrimSpace(v.GetString(KeyHost)),
		Port:       v.GetInt(KeyPort),
		Scheme:     strings.ToLower(strings.TrimSpace(v.GetString(KeyScheme))),
		Region:     strings.TrimSpace(v.GetString(KeyRegion)),
		Signing:    v.GetBool(KeySigning),
		TimeoutSec: v.GetInt(KeyTimeoutSec),
	}
	if settings.Host == "" {
		settings.Host = defaults.Host
	}
	if settings.Region == "" {
		settings.Region = defaults.Region
	}
	if settings.Scheme == "" {
		settings.Scheme = defaults.Scheme
	}
	if settings.Port == 0 {
		settings.Port = defaults.Port
	}
	if settings.TimeoutSec == 0 {
		settings.TimeoutSec = defaults.TimeoutSec
	}
	if err := validate(settings); err != nil {
		return types.ClusterSettings{}, err
	}
	assert.NotEmpty(ctx, settings.Host, "es_host must be set")
	assert.NotEmpty(ctx, settings.Region, "aws_region must be set")
	return settings, nil
}

// FromEnvironment loads settings from the process environment only.
func FromEnvironment(ctx context.Context) (types.ClusterSettings, error) {
	v := viper.New()
	Configure(v)
	return Load(ctx, v)
}

func validate(settings types.ClusterSettings) error {
	if settings.Port < 1 || settings.Port > 65535 {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("es_port must be between 1 and 65535")
	}
	if settings.Scheme != "https" && settings.Scheme != "http" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("es_scheme must be http or https")
	}
	if settings.TimeoutSec < 0 {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("timeout_sec must not be negative")
	}
	return nil
}
