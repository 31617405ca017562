// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"reflect"

	"github.com/urfave/cli/v3"

	"github.com/staranto/vhsecgo/internal/meta"
	"github.com/staranto/vhsecgo/pkg/vladhog"
)

// CheckCommandAction is the action handler for the "check" subcommand. It
// scores every URL, cache first, and emits one row per URL.
func CheckCommandAction(ctx context.Context, cmd *cli.Command) error {
	runner := &LookupActionRunner[CheckRow]{
		CommandName:  "check",
		SchemaType:   reflect.TypeOf(CheckRow{}),
		DefaultAttrs: []string{"url", "score", "rating", "error"},
		Noun:         "URL",
		FetchFn: func(ctx context.Context, cmd *cli.Command, targets []string) ([]CheckRow, error) {
			client, err := NewClient(ctx, cmd)
			if err != nil {
				return nil, err
			}
			return Batch(ctx, targets, int(cmd.Int("parallel")),
				func(ctx context.Context, url string) (CheckRow, error) {
					row := CheckRow{URL: url}
					score, err := client.CheckURL(ctx, url)
					if err != nil {
						row.Error = err.Error()
						return row, err
					}
					row.Score = &score
					row.Rating = rating(score)
					return row, nil
				})
		},
		VerdictFn: func(cmd *cli.Command, rows []CheckRow) error {
			if !cmd.Bool("strict") {
				return nil
			}
			return strictVerdict(len(rows), func(i int) *float64 { return rows[i].Score })
		},
	}
	return runner.Run(ctx, cmd)
}

// strictVerdict fails when any of the n scores marks its URL as malicious.
func strictVerdict(n int, score func(int) *float64) error {
	var bad int
	for i := range n {
		if s := score(i); s != nil && *s >= vladhog.ScoreMalicious {
			bad++
		}
	}
	if bad > 0 {
		return fmt.Errorf("%d of %d URLs might be malicious", bad, n)
	}
	return nil
}

func newStrictFlag() *cli.BoolFlag {
	return &cli.BoolFlag{
		Name:        "strict",
		Usage:       "fail when any URL might be malicious",
		HideDefault: true,
	}
}

// CheckCommandBuilder constructs the cli.Command for "check".
func CheckCommandBuilder(meta meta.Meta) *cli.Command {
	b := &LookupCommandBuilder{
		Name:      "check",
		Usage:     "score URLs",
		UsageText: `vhsec check [options] URL... | -`,
		Flags:     []cli.Flag{newStrictFlag()},
		Action:    CheckCommandAction,
		Meta:      meta,
	}
	return b.Build()
}
