// Copyright 2021 The restx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Command restx sends one REST request, or the same request several
// times, and prints the response.
//
//	restx [flags] [METHOD] URL
//
// Options not given as flags are read from the config file, the .env
// file and RESTX_ environment variables, as described in package config.
package main

import (
	"fmt"
	"os"
)

var version = "dev"

func main() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
