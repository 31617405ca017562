// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/apex/log"
	"github.com/joho/godotenv"

	"github.com/staranto/vhsecgo/internal/command"
	"github.com/staranto/vhsecgo/internal/config"
	mylog "github.com/staranto/vhsecgo/internal/log"
	"github.com/staranto/vhsecgo/internal/version"
)

var ctx = context.Background()

func main() {
	os.Exit(realMain(os.Args))
}

func realMain(args []string) int {
	// A .env next to the invocation may carry VHSEC_API_KEY and friends.
	_ = godotenv.Load()

	mylog.InitLogger()

	// The config file may be named by a VHSEC_CFG that only .env set.
	if _, err := config.Load(); err != nil {
		log.WithError(err).Debug("no config file")
	}

	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "No command specified.")
		args = append(args, "--help")
	} else {
		args = mangleArguments(args)
	}

	// Short-circuit --version/-v.
	for _, a := range args {
		if a == "--version" || a == "-v" {
			fmt.Println(version.Full())
			return 0
		}
	}

	app, err := command.InitApp(ctx, args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if err := app.Run(ctx, args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	return 0
}

// mangleArguments expands an @set argument into the args listed under
// "<command>.<set>" in the config file. Without an @set, the "defaults" set is
// used when the config file has one. Set args are inserted where the @set was,
// or straight after the command, so later args still win.
func mangleArguments(args []string) []string {
	// Short-circuit for --help/-h.
	for _, a := range args {
		if a == "--help" || a == "-h" {
			return args
		}
	}

	// The cache command carries its own subcommand before any flags.
	idx := 2
	if args[1] == "cache" && len(args) > 2 && !strings.HasPrefix(args[2], "-") {
		idx = 3
	}

	working := make([]string, 0, len(args))
	working = append(working, args...)

	// See if there is a @set specified. If so, that becomes our insertion point
	// and the @set entry is removed from args.
	set := "defaults"
	explicit := false
	for i := idx; i < len(working); i++ {
		if strings.HasPrefix(working[i], "@") && len(working[i]) > 1 {
			set = working[i][1:]
			idx = i
			explicit = true
			working = append(working[:i], working[i+1:]...)
			break
		}
	}

	setArgs, err := config.GetStringSlice(args[1] + "." + set)
	if err != nil && explicit {
		log.Warnf("argument set %s.%s not found in config", args[1], set)
	}

	for _, arg := range setArgs {
		parts := strings.Fields(arg)
		working = append(working[:idx], append(parts, working[idx:]...)...)
		idx += len(parts)
	}

	log.Debugf("idx=%d, set=%s, args=%v", idx, set, working)
	return working
}
