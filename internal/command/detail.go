// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"reflect"

	"github.com/urfave/cli/v3"

	"github.com/staranto/vhsecgo/internal/meta"
)

// DetailCommandAction is the action handler for the "detail" subcommand. The
// classification is shown as the service returned it.
func DetailCommandAction(ctx context.Context, cmd *cli.Command) error {
	runner := &LookupActionRunner[DetailRow]{
		CommandName:  "detail",
		SchemaType:   reflect.TypeOf(DetailRow{}),
		DefaultAttrs: []string{"url", "result", "tag", "screenshot_url", "error"},
		Noun:         "URL",
		FetchFn: func(ctx context.Context, cmd *cli.Command, targets []string) ([]DetailRow, error) {
			client, err := NewClient(ctx, cmd)
			if err != nil {
				return nil, err
			}
			return Batch(ctx, targets, int(cmd.Int("parallel")),
				func(ctx context.Context, url string) (DetailRow, error) {
					row := DetailRow{URL: url}
					res, err := client.GetDetailedCheck(ctx, url)
					if err != nil {
						row.Error = err.Error()
						return row, err
					}
					row.Result = res.Result
					row.Tag = res.Tag
					row.ScreenshotURL = res.ScreenshotURL
					return row, nil
				})
		},
	}
	return runner.Run(ctx, cmd)
}

// DetailCommandBuilder constructs the cli.Command for "detail".
func DetailCommandBuilder(meta meta.Meta) *cli.Command {
	b := &LookupCommandBuilder{
		Name:      "detail",
		Usage:     "classify URLs",
		UsageText: `vhsec detail [options] URL... | -`,
		Action:    DetailCommandAction,
		Meta:      meta,
	}
	return b.Build()
}
