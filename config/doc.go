// Copyright 2021 The restx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package config loads the externally configurable options of a restx
builder from a config file, a .env file and the environment.

	opts, err := config.Load(
		config.WithConfigFile("restx.yaml"),
		config.WithEnvFile(".env"),
	)
	...
	b, err := restx.FromOptions(opts)

Environment variables take precedence over the config file. They use
the prefix RESTX and underscores for nesting, so RESTX_LOG_LEVEL sets
log.level.
*/
package config
