// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"reflect"

	"github.com/urfave/cli/v3"

	"github.com/staranto/vhsecgo/internal/meta"
)

// DynamicCommandAction is the action handler for the "dynamic" subcommand. An
// analysis that did not complete scores -1.
func DynamicCommandAction(ctx context.Context, cmd *cli.Command) error {
	runner := &LookupActionRunner[DynamicRow]{
		CommandName:  "dynamic",
		SchemaType:   reflect.TypeOf(DynamicRow{}),
		DefaultAttrs: []string{"url", "score", "rating", "error"},
		Noun:         "URL",
		FetchFn: func(ctx context.Context, cmd *cli.Command, targets []string) ([]DynamicRow, error) {
			client, err := NewClient(ctx, cmd)
			if err != nil {
				return nil, err
			}
			return Batch(ctx, targets, int(cmd.Int("parallel")),
				func(ctx context.Context, url string) (DynamicRow, error) {
					row := DynamicRow{URL: url}
					score, err := client.PerformDynamicAnalysis(ctx, url)
					if err != nil {
						row.Error = err.Error()
						return row, err
					}
					row.Score = &score
					row.Rating = rating(score)
					return row, nil
				})
		},
		VerdictFn: func(cmd *cli.Command, rows []DynamicRow) error {
			if !cmd.Bool("strict") {
				return nil
			}
			return strictVerdict(len(rows), func(i int) *float64 { return rows[i].Score })
		},
	}
	return runner.Run(ctx, cmd)
}

// DynamicCommandBuilder constructs the cli.Command for "dynamic".
func DynamicCommandBuilder(meta meta.Meta) *cli.Command {
	b := &LookupCommandBuilder{
		Name:      "dynamic",
		Usage:     "score URLs by dynamic analysis",
		UsageText: `vhsec dynamic [options] URL... | -`,
		Flags:     []cli.Flag{newStrictFlag()},
		Action:    DynamicCommandAction,
		Meta:      meta,
	}
	return b.Build()
}
