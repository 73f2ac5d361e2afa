// Copyright 2021 The restx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables which override
// options, for example RESTX_ENDPOINT or RESTX_LOG_LEVEL.
const EnvPrefix = "RESTX"

type loader struct {
	configFile string
	envFile    string
}

// An Option changes how Load finds its inputs.
type Option func(*loader)

// WithConfigFile reads options from the file at path. The format is
// taken from the extension, for example ".yaml", ".json" or ".toml".
func WithConfigFile(path string) Option {
	return func(l *loader) { l.configFile = path }
}

// WithEnvFile loads the .env file at path into the process environment
// before environment overrides are read. Variables already set in the
// environment are not overwritten.
func WithEnvFile(path string) Option {
	return func(l *loader) { l.envFile = path }
}

// Load assembles Options from, in increasing order of precedence, the
// built-in defaults, the config file and the environment. The result
// has its defaults applied and is validated.
func Load(opts ...Option) (Options, error) {
	var l loader
	for _, opt := range opts {
		opt(&l)
	}

	if l.envFile != "" {
		if err := godotenv.Load(l.envFile); err != nil {
			return Options{}, fmt.Errorf("restx/config: load env file %s: %w", l.envFile, err)
		}
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if l.configFile != "" {
		v.SetConfigFile(l.configFile)
		if err := v.ReadInConfig(); err != nil {
			return Options{}, fmt.Errorf("restx/config: read config file %s: %w", l.configFile, err)
		}
	}

	var o Options
	if err := v.Unmarshal(&o); err != nil {
		return Options{}, fmt.Errorf("restx/config: decode options: %w", err)
	}
	o.ApplyDefaults()
	if err := o.Validate(); err != nil {
		return Options{}, err
	}
	return o, nil
}

// setDefaults registers every key, which is also what makes viper
// consult the environment for it during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("endpoint", "")
	v.SetDefault("timeout", DefaultTimeout)
	v.SetDefault("buffer_size", DefaultBufferSize)
	v.SetDefault("serializer", DefaultSerializer)
	v.SetDefault("gzip", false)
	v.SetDefault("http2", false)
	v.SetDefault("escape_parameters", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output", "stderr")
}
