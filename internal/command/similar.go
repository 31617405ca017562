// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"reflect"

	"github.com/urfave/cli/v3"

	"github.com/staranto/vhsecgo/internal/meta"
)

// SimilarCommandAction is the action handler for the "similar" subcommand.
// Each look-alike of a domain becomes its own row.
func SimilarCommandAction(ctx context.Context, cmd *cli.Command) error {
	runner := &LookupActionRunner[SimilarRow]{
		CommandName:  "similar",
		SchemaType:   reflect.TypeOf(SimilarRow{}),
		DefaultAttrs: []string{"domain", "similar_to", "similarity_percent", "error"},
		Noun:         "domain",
		FetchFn: func(ctx context.Context, cmd *cli.Command, targets []string) ([]SimilarRow, error) {
			client, err := NewClient(ctx, cmd)
			if err != nil {
				return nil, err
			}
			groups, err := Batch(ctx, targets, int(cmd.Int("parallel")),
				func(ctx context.Context, domain string) ([]SimilarRow, error) {
					res, err := client.CheckDomainSimilarity(ctx, domain)
					if err != nil {
						return []SimilarRow{{Domain: domain, Error: err.Error()}}, err
					}
					if len(res) == 0 {
						return []SimilarRow{{Domain: domain}}, nil
					}
					rows := make([]SimilarRow, 0, len(res))
					for _, r := range res {
						pct := r.SimilarityPercent
						rows = append(rows, SimilarRow{
							Domain:            domain,
							SimilarTo:         r.SimilarTo,
							SimilarityPercent: &pct,
						})
					}
					return rows, nil
				})

			var rows []SimilarRow
			for _, g := range groups {
				rows = append(rows, g...)
			}
			return rows, err
		},
	}
	return runner.Run(ctx, cmd)
}

// SimilarCommandBuilder constructs the cli.Command for "similar".
func SimilarCommandBuilder(meta meta.Meta) *cli.Command {
	b := &LookupCommandBuilder{
		Name:      "similar",
		Usage:     "find look-alike domains",
		UsageText: `vhsec similar [options] DOMAIN... | -`,
		Action:    SimilarCommandAction,
		Meta:      meta,
	}
	return b.Build()
}
