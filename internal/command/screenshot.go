// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"reflect"

	"github.com/urfave/cli/v3"

	"github.com/staranto/vhsecgo/internal/meta"
	"github.com/staranto/vhsecgo/pkg/cache"
	"github.com/staranto/vhsecgo/pkg/vladhog"
)

// ScreenshotCommandAction is the action handler for the "screenshot"
// subcommand. It only formats URLs; neither the service nor the cache is
// touched.
func ScreenshotCommandAction(ctx context.Context, cmd *cli.Command) error {
	runner := &LookupActionRunner[ScreenshotRow]{
		CommandName:  "screenshot",
		SchemaType:   reflect.TypeOf(ScreenshotRow{}),
		DefaultAttrs: []string{"file", "url"},
		Noun:         "file name",
		FetchFn: func(ctx context.Context, cmd *cli.Command, targets []string) ([]ScreenshotRow, error) {
			client := vladhog.New(ctx, vladhog.Options{
				Endpoint: cmd.String("endpoint"),
				Store:    cache.NewMemoryStore(nil),
			})
			rows := make([]ScreenshotRow, 0, len(targets))
			for _, f := range targets {
				rows = append(rows, ScreenshotRow{File: f, URL: client.GetScreenshotURL(f)})
			}
			return rows, nil
		},
	}
	return runner.Run(ctx, cmd)
}

// ScreenshotCommandBuilder constructs the cli.Command for "screenshot".
func ScreenshotCommandBuilder(meta meta.Meta) *cli.Command {
	b := &LookupCommandBuilder{
		Name:      "screenshot",
		Usage:     "build screenshot URLs",
		UsageText: `vhsec screenshot [options] FILE... | -`,
		Action:    ScreenshotCommandAction,
		Meta:      meta,
	}
	return b.Build()
}
