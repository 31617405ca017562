// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"os"
	"time"

	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/staranto/vhsecgo/internal/config"
	"github.com/staranto/vhsecgo/pkg/vladhog"
)

const (
	defaultTimeout  = 30 * time.Second
	defaultParallel = 4
)

func newSchemaFlag() *cli.BoolFlag {
	return &cli.BoolFlag{
		Name:        "schema",
		Usage:       "list the attributes of the result rows",
		HideDefault: true,
	}
}

// sources builds a value chain of env vars followed by the namespaced and
// global keys of the config file.
func sources(ns string, path string, name string, envs ...string) cli.ValueSourceChain {
	chain := cli.NewValueSourceChain()
	for _, e := range envs {
		chain.Chain = append(chain.Chain, cli.EnvVar(e))
	}
	if ns != "" {
		chain.Chain = append(chain.Chain, yaml.YAML(ns+"."+name, altsrc.StringSourcer(path)))
	}
	chain.Chain = append(chain.Chain, yaml.YAML(name, altsrc.StringSourcer(path)))
	return chain
}

// NewGlobalFlags returns the flags that shape output, namespaced to the
// command ns for config file lookups.
func NewGlobalFlags(ns string, cfg config.Type) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "attrs",
			Aliases: []string{"a"},
			Usage:   "comma-separated list of attributes to include in results",
			Sources: sources(ns, cfg.Source, "attrs"),
		},
		&cli.BoolWithInverseFlag{
			Name:    "color",
			Aliases: []string{"c"},
			Usage:   "enable colored text output",
			Sources: sources(ns, cfg.Source, "color", "VHSEC_COLOR"),
			Value:   isTerminal(os.Stdout),
		},
		&cli.StringFlag{
			Name:    "filter",
			Aliases: []string{"f"},
			Usage:   "comma-separated list of filters to apply to results",
		},
		&cli.BoolFlag{
			Name:        "local",
			Aliases:     []string{"l"},
			Usage:       "show timestamps in VHSEC_TZ or TZ",
			HideDefault: true,
			Sources:     sources(ns, cfg.Source, "local"),
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format (text, json, yaml, raw)",
			Sources: sources(ns, cfg.Source, "output", "VHSEC_OUTPUT"),
			Value:   "text",
			Validator: func(value string) error {
				return FlagValidators(value, OutputValidator)
			},
		},
		&cli.StringFlag{
			Name:    "sort",
			Aliases: []string{"s"},
			Usage:   "comma-separated list of attributes to sort the results by",
			Sources: sources(ns, cfg.Source, "sort"),
		},
		&cli.BoolWithInverseFlag{
			Name:    "titles",
			Aliases: []string{"t"},
			Usage:   "show titles with text output",
			Sources: sources(ns, cfg.Source, "titles"),
			Value:   false,
		},
	}
}

// NewServiceFlags returns the flags that configure the client and its cache.
func NewServiceFlags(ns string, cfg config.Type) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "api-key",
			Aliases: []string{"k"},
			Usage:   "service API key",
			Sources: sources(ns, cfg.Source, "api_key", "VHSEC_API_KEY"),
			Validator: func(value string) error {
				return FlagValidators(value, JammedFlagValidator)
			},
		},
		&cli.StringFlag{
			Name:    "endpoint",
			Usage:   "base URL for URL checks, classification and screenshots",
			Sources: sources(ns, cfg.Source, "endpoint", "VHSEC_ENDPOINT"),
			Value:   vladhog.DefaultEndpoint,
		},
		&cli.StringFlag{
			Name:    "service-endpoint",
			Usage:   "base URL for dynamic analysis and domain similarity",
			Sources: sources(ns, cfg.Source, "service_endpoint", "VHSEC_SERVICE_ENDPOINT"),
			Value:   vladhog.DefaultServiceEndpoint,
		},
		&cli.StringFlag{
			Name:    "cache-backend",
			Usage:   "where the response cache lives (file, s3, memory)",
			Sources: sources(ns, cfg.Source, "cache.backend", "VHSEC_CACHE_BACKEND"),
			Value:   "file",
		},
		&cli.StringFlag{
			Name:    "cache-file",
			Usage:   "cache file for the file backend",
			Sources: sources(ns, cfg.Source, "cache.file", "VHSEC_CACHE_FILE"),
			Validator: func(value string) error {
				return FlagValidators(value, JammedFlagValidator)
			},
		},
		&cli.StringFlag{
			Name:    "s3-bucket",
			Usage:   "bucket for the s3 backend",
			Sources: sources(ns, cfg.Source, "cache.s3.bucket", "VHSEC_S3_BUCKET"),
		},
		&cli.StringFlag{
			Name:    "s3-key",
			Usage:   "object key for the s3 backend",
			Sources: sources(ns, cfg.Source, "cache.s3.key", "VHSEC_S3_KEY"),
			Value:   "vhsec/cache.json",
		},
		&cli.StringFlag{
			Name:    "s3-region",
			Usage:   "region for the s3 backend, defaults to the AWS config chain",
			Sources: sources(ns, cfg.Source, "cache.s3.region", "VHSEC_S3_REGION"),
		},
		&cli.StringFlag{
			Name:    "s3-endpoint",
			Usage:   "S3-compatible endpoint for the s3 backend",
			Sources: sources(ns, cfg.Source, "cache.s3.endpoint", "VHSEC_S3_ENDPOINT"),
		},
		&cli.DurationFlag{
			Name:    "timeout",
			Usage:   "per request timeout, 0 for none",
			Sources: sources(ns, cfg.Source, "timeout", "VHSEC_TIMEOUT"),
			Value:   defaultTimeout,
		},
		&cli.IntFlag{
			Name:    "parallel",
			Aliases: []string{"p"},
			Usage:   "lookups in flight at once",
			Sources: sources(ns, cfg.Source, "parallel", "VHSEC_PARALLEL"),
			Value:   defaultParallel,
		},
	}
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return f != nil && term.IsTerminal(int(f.Fd()))
}
